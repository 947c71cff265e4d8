package model

import (
	"time"
)

type Note struct {
	ID        string    `bson:"_id" json:"id"`
	UserID    string    `bson:"user_id" json:"user_id"`
	Title     string    `bson:"title" json:"title"`
	Content   string    `bson:"content" json:"content"`
	Category  Category  `bson:"category" json:"category"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Clone returns a copy that shares no state with n.
func (n *Note) Clone() *Note {
	if n == nil {
		return nil
	}
	c := *n
	return &c
}

// CreateNoteInput carries everything the caller chooses for a new note.
// Id, owner and timestamps are assigned by the service.
type CreateNoteInput struct {
	Title    string   `json:"title" validate:"max=200"`
	Content  string   `json:"content" validate:"max=50000"`
	Category Category `json:"category" validate:"required,category"`
}

// UpdateNoteInput is a partial update; nil fields are left untouched.
type UpdateNoteInput struct {
	ID       string    `json:"id" validate:"required"`
	Title    *string   `json:"title,omitempty" validate:"omitempty,max=200"`
	Content  *string   `json:"content,omitempty" validate:"omitempty,max=50000"`
	Category *Category `json:"category,omitempty" validate:"omitempty,category"`
}

// IsEmpty reports whether the update changes no content field.
func (in UpdateNoteInput) IsEmpty() bool {
	return in.Title == nil && in.Content == nil && in.Category == nil
}

// NotePatch is the set of fields merged into a stored note.
type NotePatch struct {
	Title     *string
	Content   *string
	Category  *Category
	UpdatedAt time.Time
}

// Apply merges the patch into n in place.
func (p NotePatch) Apply(n *Note) {
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Content != nil {
		n.Content = *p.Content
	}
	if p.Category != nil {
		n.Category = *p.Category
	}
	if !p.UpdatedAt.IsZero() {
		n.UpdatedAt = p.UpdatedAt
	}
}
