package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/tada/internal/model"
)

// TodoAPI is the backend the controller talks to; *api.Client implements it.
type TodoAPI interface {
	List(ctx context.Context) ([]model.Item, error)
	Create(ctx context.Context, it model.NewItem) (model.Item, error)
	Delete(ctx context.Context, id int64) error
	Update(ctx context.Context, id int64, p model.Patch) (model.Item, error)
}

type op string

const (
	opLoad     op = "load"
	opCreate   op = "create"
	opDelete   op = "delete"
	opEdit     op = "edit"
	opComplete op = "complete"
)

type todosLoadedMsg struct{ items []model.Item }

type todoCreatedMsg struct{ item model.Item }

type todoDeletedMsg struct{ id int64 }

type todoUpdatedMsg struct {
	op    op
	id    int64
	patch model.Patch
}

// apiErrMsg carries a failed call. State is never touched on failure.
type apiErrMsg struct {
	op  op
	id  int64
	err error
}

func (m Model) loadCmd() tea.Cmd {
	ctx, api := m.ctx, m.api
	return func() tea.Msg {
		items, err := api.List(ctx)
		if err != nil {
			return apiErrMsg{op: opLoad, err: err}
		}
		return todosLoadedMsg{items: items}
	}
}

func (m Model) createCmd(content string) tea.Cmd {
	ctx, api := m.ctx, m.api
	return func() tea.Msg {
		it, err := api.Create(ctx, model.NewItem{Content: content, IsCompleted: false})
		if err != nil {
			return apiErrMsg{op: opCreate, err: err}
		}
		return todoCreatedMsg{item: it}
	}
}

func (m Model) deleteCmd(id int64) tea.Cmd {
	ctx, api := m.ctx, m.api
	return func() tea.Msg {
		if err := api.Delete(ctx, id); err != nil {
			return apiErrMsg{op: opDelete, id: id, err: err}
		}
		return todoDeletedMsg{id: id}
	}
}

func (m Model) updateCmd(o op, id int64, p model.Patch) tea.Cmd {
	ctx, api := m.ctx, m.api
	return func() tea.Msg {
		// The echoed record is ignored; the patch we sent is what gets applied.
		if _, err := api.Update(ctx, id, p); err != nil {
			return apiErrMsg{op: o, id: id, err: err}
		}
		return todoUpdatedMsg{op: o, id: id, patch: p}
	}
}
