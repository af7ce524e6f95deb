package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/Makepad-fr/tada/internal/ui"
)

// Pane identifies what has keyboard focus.
type Pane int

const (
	PaneInput Pane = iota
	PanePending
	PaneCompleted
)

// Cursor is the controller's selection, passed in at draw time so the
// containers themselves stay a pure function of the collection.
type Cursor struct {
	Focus Pane
	Index int
	// EditingID is the row in Editing state (0: none); EditField is its
	// rendered inline input.
	EditingID int64
	EditField string
}

// ActionLabels renders the button strip of a row. An edited row shows
// Save in place of Edit.
func ActionLabels(actions []Action, editing bool) string {
	parts := make([]string, 0, len(actions))
	for _, a := range actions {
		label := a.Label()
		if a == ActionEdit && editing {
			label = "Save"
		}
		parts = append(parts, "["+label+"]")
	}
	return strings.Join(parts, " ")
}

// Draw renders the whole screen: header, input, pending, completed.
func (v *View) Draw(c Cursor) string {
	t := ui.Current()
	inner := v.width - 4

	return lipgloss.JoinVertical(lipgloss.Left,
		v.header(t),
		v.inputBox(t, c.Focus == PaneInput),
		v.listBox(t, "Pending", v.Pending, c, c.Focus == PanePending, inner),
		v.listBox(t, "Completed", v.Completed, c, c.Focus == PaneCompleted, inner),
	)
}

func (v *View) header(t ui.Theme) string {
	done, pending := len(v.Completed.Rows), len(v.Pending.Rows)
	title := fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		t.Title.Render("Todos"),
		t.Success.Render(t.SymDone), done,
		t.Pending.Render(t.SymPending), pending,
		t.Accent.Render("Total"), done+pending,
	)
	return title + "\n" + t.Muted.Render(ui.ProgressBar(done, done+pending, 28))
}

func (v *View) inputBox(t ui.Theme, focused bool) string {
	heading := t.Title.Render("New task")
	if focused {
		heading = t.Accent.Render("New task")
	}
	return t.Box().Width(v.width - 2).Render(heading + "\n" + v.Input.View())
}

func (v *View) listBox(t ui.Theme, name string, ctr Container, c Cursor, focused bool, inner int) string {
	heading := t.Title.Render(name)
	if focused {
		heading = t.Accent.Render(name)
	}
	lines := []string{heading}
	if ctr.Empty() {
		lines = append(lines, t.Muted.Render(ctr.Placeholder))
	}
	for i, r := range ctr.Rows {
		selected := focused && i == c.Index
		editing := c.EditingID != 0 && r.ID == c.EditingID
		lines = append(lines, rowLine(t, r, selected, editing, c.EditField, inner))
	}
	return t.Box().Width(v.width - 2).Render(strings.Join(lines, "\n"))
}

func rowLine(t ui.Theme, r Row, selected, editing bool, editField string, inner int) string {
	prefix := "  "
	if selected {
		prefix = t.Selected.Render(">") + " "
	}
	box := t.Muted.Render(t.BoxUnchecked)
	if r.Completed {
		box = t.Success.Render(t.BoxChecked)
	}
	labels := ActionLabels(r.Actions, editing)

	avail := inner - ansi.StringWidth(prefix) - ansi.StringWidth(box) - ansi.StringWidth(labels) - 2
	if avail < 1 {
		avail = 1
	}

	var text string
	switch {
	case editing:
		text = ansi.Truncate(editField, avail, "")
	case r.Completed:
		text = t.Done.Render(ansi.Truncate(r.Content, avail, "…"))
	default:
		text = ansi.Truncate(r.Content, avail, "…")
	}
	if pad := avail - ansi.StringWidth(text); pad > 0 {
		text += strings.Repeat(" ", pad)
	}
	return prefix + box + " " + text + " " + t.Muted.Render(labels)
}
