package model

// Item is the domain model for a todo entry as the backend stores it.
// Items are treated as values: changes produce a new slice, never an
// in-place edit.
type Item struct {
	ID          int64  `json:"id"`
	Content     string `json:"content"`
	IsCompleted bool   `json:"isCompleted"`
}

// NewItem is the body posted to create an entry. The server assigns the id.
type NewItem struct {
	Content     string `json:"content"`
	IsCompleted bool   `json:"isCompleted"`
}

// Patch is a partial update. Nil fields are left out of the request.
type Patch struct {
	Content     *string `json:"content,omitempty"`
	IsCompleted *bool   `json:"isCompleted,omitempty"`
}

// ContentPatch builds a patch that only changes the text.
func ContentPatch(content string) Patch {
	return Patch{Content: &content}
}

// CompletedPatch builds a patch that only changes the completion flag.
func CompletedPatch(done bool) Patch {
	return Patch{IsCompleted: &done}
}

// Apply returns a copy of it with the patch fields set.
func (p Patch) Apply(it Item) Item {
	if p.Content != nil {
		it.Content = *p.Content
	}
	if p.IsCompleted != nil {
		it.IsCompleted = *p.IsCompleted
	}
	return it
}
