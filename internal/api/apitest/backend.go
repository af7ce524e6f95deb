// Package apitest serves an in-memory /todos collection for tests.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Makepad-fr/tada/internal/model"
)

// Call records one request the backend received.
type Call struct {
	Method        string
	Path          string
	Body          string
	Authorization string
}

// Backend behaves like a generic REST resource store (json-server style).
type Backend struct {
	URL string // collection URL, e.g. http://127.0.0.1:1234/todos

	mu     sync.Mutex
	items  []model.Item
	nextID int64
	calls  []Call
	fail   map[string]int // method -> forced status
}

// New starts a backend seeded with items and closes it when t ends.
func New(t testing.TB, items ...model.Item) *Backend {
	t.Helper()
	gin.SetMode(gin.TestMode)

	b := &Backend{items: append([]model.Item(nil), items...), nextID: 1, fail: map[string]int{}}
	for _, it := range items {
		if it.ID >= b.nextID {
			b.nextID = it.ID + 1
		}
	}

	r := gin.New()
	r.Use(b.record)
	r.GET("/todos", b.list)
	r.POST("/todos", b.create)
	r.DELETE("/todos/:id", b.remove)
	r.PATCH("/todos/:id", b.patch)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	b.URL = srv.URL + "/todos"
	return b
}

// FailWith makes every request with method answer status. A zero status
// clears the override.
func (b *Backend) FailWith(method string, status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if status == 0 {
		delete(b.fail, method)
		return
	}
	b.fail[method] = status
}

// Items returns a copy of the stored collection.
func (b *Backend) Items() []model.Item {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]model.Item{}, b.items...)
}

// Calls returns the requests seen so far.
func (b *Backend) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Call(nil), b.calls...)
}

func (b *Backend) record(c *gin.Context) {
	raw, _ := c.GetRawData()
	b.mu.Lock()
	b.calls = append(b.calls, Call{
		Method:        c.Request.Method,
		Path:          c.Request.URL.Path,
		Body:          string(raw),
		Authorization: c.GetHeader("Authorization"),
	})
	status, forced := b.fail[c.Request.Method]
	b.mu.Unlock()

	if forced {
		c.AbortWithStatusJSON(status, gin.H{"error": http.StatusText(status)})
		return
	}
	c.Set("body", raw)
	c.Next()
}

func (b *Backend) list(c *gin.Context) {
	c.JSON(http.StatusOK, b.Items())
}

func (b *Backend) create(c *gin.Context) {
	var in model.NewItem
	if err := json.Unmarshal(c.MustGet("body").([]byte), &in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	b.mu.Lock()
	it := model.Item{ID: b.nextID, Content: in.Content, IsCompleted: in.IsCompleted}
	b.nextID++
	b.items = append(b.items, it)
	b.mu.Unlock()
	c.JSON(http.StatusCreated, it)
}

func (b *Backend) remove(c *gin.Context) {
	idx, ok := b.index(c)
	if !ok {
		return
	}
	b.mu.Lock()
	b.items = append(b.items[:idx], b.items[idx+1:]...)
	b.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{})
}

func (b *Backend) patch(c *gin.Context) {
	idx, ok := b.index(c)
	if !ok {
		return
	}
	var p model.Patch
	if err := json.Unmarshal(c.MustGet("body").([]byte), &p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	b.mu.Lock()
	b.items[idx] = p.Apply(b.items[idx])
	it := b.items[idx]
	b.mu.Unlock()
	c.JSON(http.StatusOK, it)
}

// index resolves :id to a slice position, answering 404 when absent.
func (b *Backend) index(c *gin.Context) (int, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err == nil {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, it := range b.items {
			if it.ID == id {
				return i, true
			}
		}
	}
	c.JSON(http.StatusNotFound, gin.H{})
	return 0, false
}
