// Package view turns the todo collection into the pending and completed
// containers and draws them.
package view

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/tada/internal/model"
)

const (
	PendingPlaceholder   = "No pending task to display"
	CompletedPlaceholder = "No completed task to display"
)

// Action is a per-row button.
type Action int

const (
	ActionEdit Action = iota
	ActionComplete
	ActionResume
	ActionDelete
)

var (
	pendingActions   = []Action{ActionEdit, ActionComplete, ActionDelete}
	completedActions = []Action{ActionResume, ActionDelete}
)

func (a Action) Label() string {
	switch a {
	case ActionEdit:
		return "Edit"
	case ActionComplete:
		return "Complete"
	case ActionResume:
		return "Resume"
	case ActionDelete:
		return "Delete"
	}
	return ""
}

// Class is the markup class of the button; complete and resume share one.
func (a Action) Class() string {
	switch a {
	case ActionEdit:
		return "edit-btn"
	case ActionComplete, ActionResume:
		return "complete-btn"
	case ActionDelete:
		return "delete-btn"
	}
	return ""
}

// Row is one rendered entry.
type Row struct {
	ID        int64
	Content   string
	Completed bool
	Actions   []Action
}

// Container is one of the two fixed lists. An empty container shows its
// placeholder.
type Container struct {
	Rows        []Row
	Placeholder string
}

func (c Container) Empty() bool { return len(c.Rows) == 0 }

// Partition splits items by IsCompleted, keeping relative order.
func Partition(items []model.Item) (pending, completed []model.Item) {
	for _, it := range items {
		if it.IsCompleted {
			completed = append(completed, it)
		} else {
			pending = append(pending, it)
		}
	}
	return pending, completed
}

func toRows(items []model.Item, actions []Action) []Row {
	rows := make([]Row, 0, len(items))
	for _, it := range items {
		rows = append(rows, Row{
			ID:        it.ID,
			Content:   it.Content,
			Completed: it.IsCompleted,
			Actions:   actions,
		})
	}
	return rows
}

// Containers builds both lists for items.
func Containers(items []model.Item) (pending, completed Container) {
	p, c := Partition(items)
	return Container{Rows: toRows(p, pendingActions), Placeholder: PendingPlaceholder},
		Container{Rows: toRows(c, completedActions), Placeholder: CompletedPlaceholder}
}

// View owns the two containers and the new-task input.
type View struct {
	Pending   Container
	Completed Container
	Input     textinput.Model

	width int
}

func New() *View {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "What needs to be done?"
	ti.CharLimit = 200

	v := &View{Input: ti, width: 80}
	v.RenderTodos(nil)
	return v
}

// RenderTodos replaces both containers wholesale from items.
func (v *View) RenderTodos(items []model.Item) {
	v.Pending, v.Completed = Containers(items)
}

func (v *View) ClearInput() {
	v.Input.SetValue("")
}

func (v *View) FocusInput() tea.Cmd {
	return v.Input.Focus()
}

func (v *View) BlurInput() {
	v.Input.Blur()
}

// SetWidth sets the drawing width in cells.
func (v *View) SetWidth(w int) {
	if w < 30 {
		w = 30
	}
	v.width = w
}
