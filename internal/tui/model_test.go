package tui

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/transport"
	"github.com/Makepad-fr/tada/internal/view"
)

func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

type updateCall struct {
	id    int64
	patch model.Patch
}

// fakeAPI is an in-memory backend that records every call.
type fakeAPI struct {
	mu      sync.Mutex
	items   []model.Item
	nextID  int64
	err     error
	creates []model.NewItem
	deletes []int64
	updates []updateCall
}

func (f *fakeAPI) List(context.Context) ([]model.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]model.Item{}, f.items...), nil
}

func (f *fakeAPI) Create(_ context.Context, it model.NewItem) (model.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates = append(f.creates, it)
	if f.err != nil {
		return model.Item{}, f.err
	}
	f.nextID++
	out := model.Item{ID: f.nextID, Content: it.Content, IsCompleted: it.IsCompleted}
	f.items = append(f.items, out)
	return out, nil
}

func (f *fakeAPI) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, id)
	return f.err
}

func (f *fakeAPI) Update(_ context.Context, id int64, p model.Patch) (model.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, updateCall{id: id, patch: p})
	if f.err != nil {
		return model.Item{}, f.err
	}
	return model.Item{}, nil
}

func newModel(t *testing.T, api *fakeAPI) Model {
	t.Helper()
	m := New(context.Background(), api, zerolog.Nop())
	t.Cleanup(m.Close)
	return m
}

// loaded runs the initial List and feeds its result back.
func loaded(t *testing.T, api *fakeAPI) Model {
	t.Helper()
	m := newModel(t, api)
	return send(t, m, m.loadCmd()())
}

func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

// press sends a key and drops whatever command comes back.
func press(t *testing.T, m Model, k tea.KeyMsg) Model {
	t.Helper()
	return send(t, m, k)
}

// do sends a key that must start a request, runs it and feeds the result
// back in.
func do(t *testing.T, m Model, k tea.KeyMsg) Model {
	t.Helper()
	next, cmd := m.Update(k)
	require.NotNil(t, cmd)
	msg := cmd()
	switch msg.(type) {
	case todoCreatedMsg, todoDeletedMsg, todoUpdatedMsg, apiErrMsg:
	default:
		require.Failf(t, "unexpected message", "%T", msg)
	}
	return send(t, next.(Model), msg)
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	return send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var (
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
)

func ids(rows []view.Row) []int64 {
	out := make([]int64, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ID)
	}
	return out
}

func TestInitialLoadIsReversed(t *testing.T) {
	api := &fakeAPI{items: []model.Item{
		{ID: 1, Content: "a"},
		{ID: 2, Content: "b"},
	}}
	m := loaded(t, api)

	assert.False(t, m.loading)
	assert.Equal(t, []int64{2, 1}, ids(m.view.Pending.Rows))
	assert.True(t, m.view.Completed.Empty())

	screen := ansi.Strip(m.View())
	assert.Contains(t, screen, view.CompletedPlaceholder)
	assert.NotContains(t, screen, view.PendingPlaceholder)
}

func TestInitialLoadSplitsByCompletion(t *testing.T) {
	api := &fakeAPI{items: []model.Item{
		{ID: 1, Content: "a", IsCompleted: true},
		{ID: 2, Content: "b"},
		{ID: 3, Content: "c", IsCompleted: true},
	}}
	m := loaded(t, api)

	assert.Equal(t, []int64{2}, ids(m.view.Pending.Rows))
	assert.Equal(t, []int64{3, 1}, ids(m.view.Completed.Rows))
}

func TestLoadFailureKeepsStateEmpty(t *testing.T) {
	api := &fakeAPI{err: transport.ErrTransport}
	m := loaded(t, api)

	assert.Equal(t, 0, m.State().Len())
	assert.True(t, m.statusErr)
	assert.False(t, m.loading)

	screen := ansi.Strip(m.View())
	assert.Contains(t, screen, view.PendingPlaceholder)
	assert.Contains(t, screen, view.CompletedPlaceholder)
	assert.Contains(t, screen, "load failed: an error occurred")
}

func TestCreatePrependsAndResetsInput(t *testing.T) {
	api := &fakeAPI{}
	m := loaded(t, api)
	require.Equal(t, view.PaneInput, m.focus)

	m = typeText(t, m, "buy milk")
	require.Equal(t, "buy milk", m.view.Input.Value())

	m = do(t, m, keyEnter)

	require.Len(t, api.creates, 1)
	assert.Equal(t, model.NewItem{Content: "buy milk", IsCompleted: false}, api.creates[0])

	require.Len(t, m.view.Pending.Rows, 1)
	assert.Equal(t, "buy milk", m.view.Pending.Rows[0].Content)
	assert.Equal(t, "", m.view.Input.Value())
	assert.True(t, m.view.Input.Focused())
	assert.Equal(t, view.PaneInput, m.focus)
}

func TestCreateGoesFirst(t *testing.T) {
	api := &fakeAPI{items: []model.Item{{ID: 1, Content: "old"}}, nextID: 1}
	m := loaded(t, api)

	m = typeText(t, m, "new")
	m = do(t, m, keyEnter)

	assert.Equal(t, []int64{2, 1}, ids(m.view.Pending.Rows))
}

func TestCreateFailureLeavesInput(t *testing.T) {
	api := &fakeAPI{}
	m := loaded(t, api)
	api.err = errors.New("boom")

	m = typeText(t, m, "x")
	m = do(t, m, keyEnter)

	assert.Equal(t, 0, m.State().Len())
	assert.Equal(t, "x", m.view.Input.Value())
	assert.True(t, m.statusErr)
}

func TestEditIssuesOneUpdate(t *testing.T) {
	api := &fakeAPI{items: []model.Item{{ID: 7, Content: "a"}}}
	m := loaded(t, api)

	m = press(t, m, keyTab)
	require.Equal(t, view.PanePending, m.focus)

	m = press(t, m, runes("e"))
	require.NotNil(t, m.editing)
	assert.Equal(t, int64(7), m.editing.id)
	assert.Contains(t, ansi.Strip(m.View()), "[Save]")

	m = typeText(t, m, "b")
	m = do(t, m, keyEnter)

	require.Len(t, api.updates, 1)
	assert.Equal(t, int64(7), api.updates[0].id)
	require.NotNil(t, api.updates[0].patch.Content)
	assert.Equal(t, "ab", *api.updates[0].patch.Content)
	assert.Nil(t, api.updates[0].patch.IsCompleted)

	assert.Nil(t, m.editing)
	assert.Equal(t, "ab", m.view.Pending.Rows[0].Content)
	screen := ansi.Strip(m.View())
	assert.Contains(t, screen, "[Edit]")
	assert.NotContains(t, screen, "[Save]")
}

func TestEditSaveIgnoresSecondEnterWhileSaving(t *testing.T) {
	api := &fakeAPI{items: []model.Item{{ID: 7, Content: "a"}}}
	m := loaded(t, api)
	m = press(t, m, keyTab)
	m = press(t, m, runes("e"))

	next, cmd := m.Update(keyEnter)
	require.NotNil(t, cmd)
	m = next.(Model)
	_, cmd = m.Update(keyEnter)
	assert.Nil(t, cmd)
}

func TestEditFailureStaysEditing(t *testing.T) {
	api := &fakeAPI{items: []model.Item{{ID: 7, Content: "a"}}}
	m := loaded(t, api)
	m = press(t, m, keyTab)
	m = press(t, m, runes("e"))

	api.err = &transport.StatusError{Method: "PATCH", StatusCode: 500}
	m = do(t, m, keyEnter)

	require.NotNil(t, m.editing)
	assert.False(t, m.editing.saving)
	assert.Equal(t, "a", m.view.Pending.Rows[0].Content)
	assert.Contains(t, ansi.Strip(m.View()), "edit failed: server answered 500")
}

func TestEditCancelSendsNothing(t *testing.T) {
	api := &fakeAPI{items: []model.Item{{ID: 7, Content: "a"}}}
	m := loaded(t, api)
	m = press(t, m, keyTab)
	m = press(t, m, runes("e"))
	m = typeText(t, m, "zzz")
	m = press(t, m, keyEsc)

	assert.Nil(t, m.editing)
	assert.Empty(t, api.updates)
	assert.Equal(t, "a", m.view.Pending.Rows[0].Content)
}

func TestCompletedRowsCannotBeEdited(t *testing.T) {
	api := &fakeAPI{items: []model.Item{{ID: 1, Content: "a", IsCompleted: true}}}
	m := loaded(t, api)
	m = press(t, m, keyTab)
	m = press(t, m, keyTab)
	require.Equal(t, view.PaneCompleted, m.focus)

	m = press(t, m, runes("e"))
	assert.Nil(t, m.editing)
}

func TestToggleTwiceRestores(t *testing.T) {
	api := &fakeAPI{items: []model.Item{{ID: 1, Content: "a"}, {ID: 2, Content: "b"}}}
	m := loaded(t, api)
	before := m.State().Todos()

	m = press(t, m, keyTab)
	m = do(t, m, runes("c"))

	require.Len(t, api.updates, 1)
	assert.Equal(t, int64(2), api.updates[0].id)
	require.NotNil(t, api.updates[0].patch.IsCompleted)
	assert.True(t, *api.updates[0].patch.IsCompleted)

	assert.Equal(t, []int64{1}, ids(m.view.Pending.Rows))
	require.Equal(t, []int64{2}, ids(m.view.Completed.Rows))
	assert.Equal(t, []view.Action{view.ActionResume, view.ActionDelete}, m.view.Completed.Rows[0].Actions)

	m = press(t, m, keyTab)
	require.Equal(t, view.PaneCompleted, m.focus)
	m = do(t, m, runes(" "))

	require.Len(t, api.updates, 2)
	assert.False(t, *api.updates[1].patch.IsCompleted)
	assert.Equal(t, before, m.State().Todos())
	assert.Equal(t, []int64{2, 1}, ids(m.view.Pending.Rows))
	assert.Equal(t, []view.Action{view.ActionEdit, view.ActionComplete, view.ActionDelete}, m.view.Pending.Rows[0].Actions)
}

func TestToggleDoesNotMutatePreviousCollection(t *testing.T) {
	api := &fakeAPI{items: []model.Item{{ID: 1, Content: "a"}}}
	m := loaded(t, api)
	before := m.State().Todos()

	m = press(t, m, keyTab)
	m = do(t, m, runes("c"))

	assert.False(t, before[0].IsCompleted)
	assert.True(t, m.State().Todos()[0].IsCompleted)
}

func TestDeleteRemovesFromBothLists(t *testing.T) {
	api := &fakeAPI{items: []model.Item{
		{ID: 1, Content: "a", IsCompleted: true},
		{ID: 2, Content: "b"},
		{ID: 3, Content: "c"},
	}}
	m := loaded(t, api)

	m = press(t, m, keyTab)
	m = press(t, m, keyDown)
	m = do(t, m, runes("d"))

	assert.Equal(t, []int64{2}, api.deletes)
	assert.Equal(t, []int64{3}, ids(m.view.Pending.Rows))
	assert.Equal(t, []int64{1}, ids(m.view.Completed.Rows))
	assert.Equal(t, 0, m.pendingIdx)
}

func TestDeleteFailureKeepsItem(t *testing.T) {
	api := &fakeAPI{items: []model.Item{{ID: 1, Content: "a"}}}
	m := loaded(t, api)
	api.err = errors.New("nope")

	m = press(t, m, keyTab)
	m = do(t, m, runes("d"))

	assert.Equal(t, 1, m.State().Len())
	assert.True(t, m.statusErr)
}

func TestActionsOnEmptyListDoNothing(t *testing.T) {
	api := &fakeAPI{}
	m := loaded(t, api)
	m = press(t, m, keyTab)

	for _, k := range []string{"e", "c", "d"} {
		_, cmd := m.Update(runes(k))
		assert.Nil(t, cmd, k)
	}
	assert.Empty(t, api.updates)
	assert.Empty(t, api.deletes)
}

func TestFocusCycle(t *testing.T) {
	m := loaded(t, &fakeAPI{})

	m = press(t, m, keyTab)
	assert.Equal(t, view.PanePending, m.focus)
	assert.False(t, m.view.Input.Focused())
	m = press(t, m, keyTab)
	assert.Equal(t, view.PaneCompleted, m.focus)
	m = press(t, m, keyTab)
	assert.Equal(t, view.PaneInput, m.focus)
	assert.True(t, m.view.Input.Focused())

	m = press(t, m, keyEsc)
	assert.Equal(t, view.PanePending, m.focus)
	m = press(t, m, runes("a"))
	assert.Equal(t, view.PaneInput, m.focus)
}

func TestQuitKeys(t *testing.T) {
	m := loaded(t, &fakeAPI{})

	// q is text while typing
	next, _ := m.Update(runes("q"))
	m = next.(Model)
	assert.Equal(t, "q", m.view.Input.Value())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())

	m = press(t, m, keyTab)
	_, cmd = m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestReloadReplacesCollection(t *testing.T) {
	api := &fakeAPI{items: []model.Item{{ID: 1, Content: "a"}}}
	m := loaded(t, api)
	api.items = append(api.items, model.Item{ID: 2, Content: "b"})

	m = press(t, m, keyTab)
	next, cmd := m.Update(runes("r"))
	m = next.(Model)
	require.NotNil(t, cmd)
	assert.True(t, m.loading)

	m = send(t, m, m.loadCmd()())
	assert.False(t, m.loading)
	assert.Equal(t, []int64{2, 1}, ids(m.view.Pending.Rows))
}

func TestHelpToggle(t *testing.T) {
	m := loaded(t, &fakeAPI{})
	m = press(t, m, keyTab)
	short := ansi.Strip(m.View())

	m = press(t, m, runes("?"))
	assert.True(t, m.help.ShowAll)
	full := ansi.Strip(m.View())
	assert.Contains(t, full, "reload")
	assert.NotEqual(t, short, full)
}

func TestWindowResize(t *testing.T) {
	m := loaded(t, &fakeAPI{items: []model.Item{{ID: 1, Content: strings.Repeat("x", 200)}}})
	m = send(t, m, tea.WindowSizeMsg{Width: 50, Height: 20})

	for _, line := range strings.Split(ansi.Strip(m.View()), "\n") {
		assert.LessOrEqual(t, ansi.StringWidth(line), 50, line)
	}
}

func TestSubscriptionRendersOnSetTodos(t *testing.T) {
	m := newModel(t, &fakeAPI{})
	m.State().SetTodos([]model.Item{{ID: 9, Content: "z", IsCompleted: true}})
	assert.Equal(t, []int64{9}, ids(m.view.Completed.Rows))

	m.Close()
	m.State().SetTodos(nil)
	assert.Equal(t, []int64{9}, ids(m.view.Completed.Rows))
}
