// Package api binds the four todo operations to one REST collection.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/transport"
)

// Requester is satisfied by *transport.Client.
type Requester interface {
	Do(ctx context.Context, req transport.Request) (*transport.Response, error)
}

type Client struct {
	baseURL string
	tr      Requester
}

// New returns a client for the collection at baseURL, for example
// http://localhost:3000/todos.
func New(baseURL string, tr Requester) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tr:      tr,
	}
}

func (c *Client) itemURL(id int64) string {
	return c.baseURL + "/" + model.FormatID(id)
}

// List fetches the whole collection in server order.
func (c *Client) List(ctx context.Context) ([]model.Item, error) {
	resp, err := c.tr.Do(ctx, transport.Request{URL: c.baseURL})
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	items := []model.Item{}
	if err := validate("list todos", itemListSchema, resp.Body, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Create posts a new entry and returns the stored record with its id.
func (c *Client) Create(ctx context.Context, it model.NewItem) (model.Item, error) {
	body, err := json.Marshal(it)
	if err != nil {
		return model.Item{}, fmt.Errorf("create todo: marshal: %w", err)
	}
	resp, err := c.tr.Do(ctx, transport.Request{
		Method: http.MethodPost,
		URL:    c.baseURL,
		Header: transport.JSONHeader(),
		Body:   body,
	})
	if err != nil {
		return model.Item{}, fmt.Errorf("create todo: %w", err)
	}
	var created model.Item
	if err := validate("create todo", itemSchema, resp.Body, &created); err != nil {
		return model.Item{}, err
	}
	return created, nil
}

// Delete removes the entry. The response body is ignored.
func (c *Client) Delete(ctx context.Context, id int64) error {
	_, err := c.tr.Do(ctx, transport.Request{
		Method: http.MethodDelete,
		URL:    c.itemURL(id),
	})
	if err != nil {
		return fmt.Errorf("delete todo %d: %w", id, err)
	}
	return nil
}

// Update sends a partial change. The returned record is decoded on a best
// effort basis; backends that answer with an empty or foreign body yield
// a zero Item and no error.
func (c *Client) Update(ctx context.Context, id int64, p model.Patch) (model.Item, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return model.Item{}, fmt.Errorf("update todo %d: marshal: %w", id, err)
	}
	resp, err := c.tr.Do(ctx, transport.Request{
		Method: http.MethodPatch,
		URL:    c.itemURL(id),
		Header: transport.JSONHeader(),
		Body:   body,
	})
	if err != nil {
		return model.Item{}, fmt.Errorf("update todo %d: %w", id, err)
	}
	var updated model.Item
	if resp.Decode(&updated) != nil {
		updated = model.Item{}
	}
	return updated, nil
}
