package api

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/tada/internal/api/apitest"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/transport"
)

// stubRequester answers every request with a fixed body.
type stubRequester struct {
	body string
	err  error
	reqs []transport.Request
}

func (s *stubRequester) Do(_ context.Context, req transport.Request) (*transport.Response, error) {
	s.reqs = append(s.reqs, req)
	if s.err != nil {
		return nil, s.err
	}
	return &transport.Response{StatusCode: http.StatusOK, Body: []byte(s.body)}, nil
}

func newClient(t *testing.T, items ...model.Item) (*Client, *apitest.Backend) {
	t.Helper()
	b := apitest.New(t, items...)
	return New(b.URL, transport.New()), b
}

func TestListReturnsServerOrder(t *testing.T) {
	c, _ := newClient(t,
		model.Item{ID: 1, Content: "a"},
		model.Item{ID: 2, Content: "b", IsCompleted: true},
	)

	items, err := c.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []model.Item{
		{ID: 1, Content: "a"},
		{ID: 2, Content: "b", IsCompleted: true},
	}, items)
}

func TestListEmptyCollection(t *testing.T) {
	c, _ := newClient(t)
	items, err := c.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestCreatePostsContentAndFlag(t *testing.T) {
	c, b := newClient(t, model.Item{ID: 2, Content: "b"})

	got, err := c.Create(context.Background(), model.NewItem{Content: "buy milk"})
	require.NoError(t, err)
	assert.Equal(t, model.Item{ID: 3, Content: "buy milk"}, got)

	calls := b.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, http.MethodPost, calls[0].Method)
	assert.Equal(t, "/todos", calls[0].Path)
	assert.JSONEq(t, `{"content":"buy milk","isCompleted":false}`, calls[0].Body)
}

func TestDeleteByID(t *testing.T) {
	c, b := newClient(t, model.Item{ID: 1, Content: "a"}, model.Item{ID: 2, Content: "b"})

	require.NoError(t, c.Delete(context.Background(), 1))
	assert.Equal(t, []model.Item{{ID: 2, Content: "b"}}, b.Items())
	assert.Equal(t, "/todos/1", b.Calls()[0].Path)
}

func TestUpdateSendsOnlyPatchedFields(t *testing.T) {
	c, b := newClient(t, model.Item{ID: 7, Content: "old"})

	got, err := c.Update(context.Background(), 7, model.ContentPatch("new"))
	require.NoError(t, err)
	assert.Equal(t, model.Item{ID: 7, Content: "new"}, got)
	assert.JSONEq(t, `{"content":"new"}`, b.Calls()[0].Body)

	_, err = c.Update(context.Background(), 7, model.CompletedPatch(false))
	require.NoError(t, err)
	assert.JSONEq(t, `{"isCompleted":false}`, b.Calls()[1].Body, "false is still sent")
	assert.Equal(t, http.MethodPatch, b.Calls()[1].Method)
}

func TestUpdateToleratesForeignBody(t *testing.T) {
	s := &stubRequester{body: `"ok"`}
	got, err := New("http://backend/todos/", s).Update(context.Background(), 4, model.CompletedPatch(true))
	require.NoError(t, err)
	assert.Zero(t, got)
	assert.Equal(t, "http://backend/todos/4", s.reqs[0].URL, "trailing slash on base is trimmed")
}

func TestNon2xxSurfacesAsStatusError(t *testing.T) {
	c, b := newClient(t, model.Item{ID: 1, Content: "a"})
	b.FailWith(http.MethodDelete, http.StatusInternalServerError)

	err := c.Delete(context.Background(), 1)
	require.Error(t, err)
	var se *transport.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
	assert.Len(t, b.Items(), 1)
}

func TestMissingIDIsNotFound(t *testing.T) {
	c, _ := newClient(t, model.Item{ID: 1, Content: "a"})

	_, err := c.Update(context.Background(), 99, model.ContentPatch("x"))
	var se *transport.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
}

func TestSchemaRejectsMalformedPayloads(t *testing.T) {
	cases := map[string]string{
		"string id":     `[{"id":"a3f1","content":"x","isCompleted":false}]`,
		"fractional id": `[{"id":1.5,"content":"x"}]`,
		"missing id":    `[{"content":"x"}]`,
		"wrong flag":    `[{"id":1,"isCompleted":"yes"}]`,
		"not an array":  `{"id":1}`,
		"not json":      `<html>`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := New("http://backend/todos", &stubRequester{body: body}).List(context.Background())
			require.Error(t, err)
			var ve *ValidationError
			assert.True(t, errors.As(err, &ve))
			assert.Equal(t, "list todos", ve.Op)
		})
	}
}

func TestCreateRequiresID(t *testing.T) {
	_, err := New("http://backend/todos", &stubRequester{body: `{"content":"x"}`}).
		Create(context.Background(), model.NewItem{Content: "x"})
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "create todo", ve.Op)
}

func TestTransportErrorIsWrapped(t *testing.T) {
	s := &stubRequester{err: transport.ErrTransport}
	_, err := New("http://backend/todos", s).List(context.Background())
	assert.True(t, errors.Is(err, transport.ErrTransport))
}
