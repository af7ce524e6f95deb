// Package state holds the current todo collection and tells subscribers
// when it is replaced.
package state

import (
	"sync"

	"github.com/Makepad-fr/tada/internal/model"
)

type subscriber struct {
	id int
	fn func()
}

// State owns the ordered collection (display order). It is replaced
// wholesale; every replacement notifies each subscriber exactly once,
// synchronously, before SetTodos returns.
type State struct {
	mu     sync.RWMutex
	todos  []model.Item
	subs   []subscriber
	nextID int
}

func New() *State {
	return &State{todos: []model.Item{}}
}

// Todos returns a copy of the current collection.
func (s *State) Todos() []model.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Item(nil), s.todos...)
}

// Len is the number of items without copying.
func (s *State) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.todos)
}

// SetTodos replaces the collection and notifies subscribers. Callbacks
// run outside the lock so they may read the state back.
func (s *State) SetTodos(todos []model.Item) {
	next := append([]model.Item{}, todos...)

	s.mu.Lock()
	s.todos = next
	subs := append([]subscriber(nil), s.subs...)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn()
	}
}

// Subscribe registers fn for change notifications. The returned func
// removes it; calling it more than once is harmless.
func (s *State) Subscribe(fn func()) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs = append(s.subs, subscriber{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// Prepend puts it in front of the collection (newest first).
func (s *State) Prepend(it model.Item) {
	s.SetTodos(append([]model.Item{it}, s.Todos()...))
}

// Remove drops every item with id. The collection is reassigned, and
// subscribers notified, even when nothing matched.
func (s *State) Remove(id int64) {
	cur := s.Todos()
	out := make([]model.Item, 0, len(cur))
	for _, it := range cur {
		if it.ID != id {
			out = append(out, it)
		}
	}
	s.SetTodos(out)
}

// Patch replaces the item with id by p applied to a copy of it.
func (s *State) Patch(id int64, p model.Patch) {
	cur := s.Todos()
	for i, it := range cur {
		if it.ID == id {
			cur[i] = p.Apply(it)
		}
	}
	s.SetTodos(cur)
}
