// Package tui is the interactive controller: it maps key presses to API
// calls and applies their results to the State, which redraws the View.
package tui

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/state"
	"github.com/Makepad-fr/tada/internal/transport"
	"github.com/Makepad-fr/tada/internal/ui"
	"github.com/Makepad-fr/tada/internal/view"
)

// editSession is a row in Editing state. Without one every row is Locked.
type editSession struct {
	id     int64
	input  textinput.Model
	saving bool
}

type Model struct {
	ctx   context.Context
	api   TodoAPI
	state *state.State
	view  *view.View
	log   zerolog.Logger

	keys    keyMap
	help    help.Model
	spinner spinner.Model

	focus        view.Pane
	pendingIdx   int
	completedIdx int
	editing      *editSession

	loading   bool
	status    string
	statusErr bool

	unsubscribe func()
}

// New wires a fresh State to a fresh View: every replacement of the
// collection re-renders both containers.
func New(ctx context.Context, api TodoAPI, log zerolog.Logger) Model {
	st := state.New()
	v := view.New()
	v.FocusInput()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = ui.Current().Accent

	m := Model{
		ctx:     ctx,
		api:     api,
		state:   st,
		view:    v,
		log:     log,
		keys:    defaultKeyMap(),
		help:    help.New(),
		spinner: sp,
		focus:   view.PaneInput,
		loading: true,
	}
	m.unsubscribe = st.Subscribe(func() { v.RenderTodos(st.Todos()) })
	return m
}

// State exposes the collection the model owns.
func (m Model) State() *state.State { return m.state }

// Close drops the render subscription.
func (m Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, m.loadCmd())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.view.SetWidth(msg.Width)
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case todosLoadedMsg:
		m.loading = false
		items := slices.Clone(msg.items)
		slices.Reverse(items)
		m.state.SetTodos(items)
		m.clamp()
		m.setStatus(fmt.Sprintf("loaded %d todos", len(items)), false)
		m.log.Info().Int("count", len(items)).Msg("todos loaded")
		return m, nil

	case todoCreatedMsg:
		m.state.Prepend(msg.item)
		m.view.ClearInput()
		m.focus = view.PaneInput
		m.clamp()
		m.setStatus("added", false)
		m.log.Info().Int64("id", msg.item.ID).Msg("todo created")
		return m, m.view.FocusInput()

	case todoDeletedMsg:
		m.state.Remove(msg.id)
		if m.editing != nil && m.editing.id == msg.id {
			m.editing = nil
		}
		m.clamp()
		m.setStatus("deleted", false)
		m.log.Info().Int64("id", msg.id).Msg("todo deleted")
		return m, nil

	case todoUpdatedMsg:
		m.state.Patch(msg.id, msg.patch)
		if msg.op == opEdit && m.editing != nil && m.editing.id == msg.id {
			m.editing = nil
		}
		m.clamp()
		m.setStatus(updatedStatus(msg), false)
		m.log.Info().Int64("id", msg.id).Str("op", string(msg.op)).Msg("todo updated")
		return m, nil

	case apiErrMsg:
		return m.handleErr(msg), nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Abort) {
			return m, tea.Quit
		}
		if m.editing != nil {
			return m.updateEditing(msg)
		}
		if m.focus == view.PaneInput {
			return m.updateInput(msg)
		}
		return m.updateList(msg)
	}

	if m.editing != nil {
		var cmd tea.Cmd
		m.editing.input, cmd = m.editing.input.Update(msg)
		return m, cmd
	}
	var cmd tea.Cmd
	m.view.Input, cmd = m.view.Input.Update(msg)
	return m, cmd
}

func updatedStatus(msg todoUpdatedMsg) string {
	if msg.op == opEdit {
		return "saved"
	}
	if msg.patch.IsCompleted != nil && *msg.patch.IsCompleted {
		return "completed"
	}
	return "resumed"
}

func (m Model) handleErr(msg apiErrMsg) Model {
	if msg.op == opLoad {
		m.loading = false
	}
	if msg.op == opEdit && m.editing != nil && m.editing.id == msg.id {
		m.editing.saving = false
	}
	ev := m.log.Error().Err(msg.err).Str("op", string(msg.op))
	if msg.id != 0 {
		ev = ev.Int64("id", msg.id)
	}
	ev.Msg("request failed")
	m.setStatus(fmt.Sprintf("%s failed: %s", msg.op, errText(msg.err)), true)
	return m
}

func errText(err error) string {
	var se *transport.StatusError
	if errors.As(err, &se) {
		return fmt.Sprintf("server answered %d", se.StatusCode)
	}
	if errors.Is(err, transport.ErrTransport) {
		return transport.ErrTransport.Error()
	}
	return err.Error()
}

// updateInput handles keys while the new-task input has focus.
func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		return m, m.createCmd(m.view.Input.Value())
	case key.Matches(msg, m.keys.Cancel), key.Matches(msg, m.keys.Next):
		m.setFocus(view.PanePending)
		return m, nil
	case key.Matches(msg, m.keys.Prev):
		m.setFocus(view.PaneCompleted)
		return m, nil
	}
	var cmd tea.Cmd
	m.view.Input, cmd = m.view.Input.Update(msg)
	return m, cmd
}

// updateEditing handles keys while a row is in Editing state.
func (m Model) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		if m.editing.saving {
			return m, nil
		}
		m.editing.saving = true
		return m, m.updateCmd(opEdit, m.editing.id, model.ContentPatch(m.editing.input.Value()))
	case key.Matches(msg, m.keys.Cancel):
		m.editing = nil
		return m, nil
	}
	var cmd tea.Cmd
	m.editing.input, cmd = m.editing.input.Update(msg)
	return m, cmd
}

// updateList handles keys while one of the two lists has focus.
func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Next):
		m.setFocus((m.focus + 1) % 3)
	case key.Matches(msg, m.keys.Prev):
		m.setFocus((m.focus + 2) % 3)
	case key.Matches(msg, m.keys.Up):
		m.move(-1)
	case key.Matches(msg, m.keys.Down):
		m.move(1)
	case key.Matches(msg, m.keys.Add):
		m.setFocus(view.PaneInput)
		return m, textinput.Blink
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Reload):
		m.loading = true
		return m, tea.Batch(m.spinner.Tick, m.loadCmd())
	case key.Matches(msg, m.keys.Edit):
		row, ok := m.selected()
		if !ok || row.Completed {
			return m, nil
		}
		return m.startEdit(row)
	case key.Matches(msg, m.keys.Toggle):
		row, ok := m.selected()
		if !ok {
			return m, nil
		}
		return m, m.updateCmd(opComplete, row.ID, model.CompletedPatch(!row.Completed))
	case key.Matches(msg, m.keys.Delete):
		row, ok := m.selected()
		if !ok {
			return m, nil
		}
		return m, m.deleteCmd(row.ID)
	}
	return m, nil
}

func (m Model) startEdit(row view.Row) (tea.Model, tea.Cmd) {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = m.view.Input.CharLimit
	ti.SetValue(row.Content)
	ti.CursorEnd()
	cmd := ti.Focus()
	m.editing = &editSession{id: row.ID, input: ti}
	return m, cmd
}

func (m *Model) setFocus(p view.Pane) {
	m.focus = p
	if p == view.PaneInput {
		m.view.FocusInput()
	} else {
		m.view.BlurInput()
	}
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status, m.statusErr = s, isErr
}

func (m *Model) move(delta int) {
	switch m.focus {
	case view.PanePending:
		m.pendingIdx += delta
	case view.PaneCompleted:
		m.completedIdx += delta
	}
	m.clamp()
}

func (m *Model) clamp() {
	m.pendingIdx = clampIndex(m.pendingIdx, len(m.view.Pending.Rows))
	m.completedIdx = clampIndex(m.completedIdx, len(m.view.Completed.Rows))
}

func clampIndex(i, n int) int {
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

func (m Model) cursorIndex() int {
	if m.focus == view.PaneCompleted {
		return m.completedIdx
	}
	return m.pendingIdx
}

// selected is the row under the cursor of the focused list.
func (m Model) selected() (view.Row, bool) {
	var rows []view.Row
	switch m.focus {
	case view.PanePending:
		rows = m.view.Pending.Rows
	case view.PaneCompleted:
		rows = m.view.Completed.Rows
	default:
		return view.Row{}, false
	}
	i := m.cursorIndex()
	if i < 0 || i >= len(rows) {
		return view.Row{}, false
	}
	return rows[i], true
}

func (m Model) View() string {
	t := ui.Current()
	cur := view.Cursor{Focus: m.focus, Index: m.cursorIndex()}
	if m.editing != nil {
		cur.EditingID = m.editing.id
		cur.EditField = m.editing.input.View()
	}

	var status string
	switch {
	case m.loading:
		status = m.spinner.View() + " " + t.Muted.Render("loading todos…")
	case m.statusErr:
		status = t.Error.Render("✖ " + m.status)
	case m.status != "":
		status = t.Muted.Render(m.status)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.view.Draw(cur),
		status,
		t.Help.Render(m.help.View(m.keys)),
	)
}
