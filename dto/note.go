package dto

import (
	"time"

	"quicknotes/model"
)

type NoteLink struct {
	Href   string `json:"href"`
	Method string `json:"method,omitempty"` // Optional: GET, POST, PUT, PATCH, DELETE
}

type NoteResponse struct {
	ID        string              `json:"id"`
	UserID    string              `json:"user_id"`
	Title     string              `json:"title"`
	Content   string              `json:"content"`
	Category  model.Category      `json:"category"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
	Links     map[string]NoteLink `json:"_links,omitempty"`
}

type NotesListResponse struct {
	Notes    []NoteResponse `json:"notes"`
	Count    int            `json:"count"`
	Category model.Category `json:"category"`
}

type CreateNoteRequest struct {
	Title    string         `json:"title"`
	Content  string         `json:"content"`
	Category model.Category `json:"category"`
}

// UpdateNoteRequest is a partial update, absent fields are left untouched.
type UpdateNoteRequest struct {
	Title    *string         `json:"title,omitempty"`
	Content  *string         `json:"content,omitempty"`
	Category *model.Category `json:"category,omitempty"`
}

func (r CreateNoteRequest) ToInput() model.CreateNoteInput {
	return model.CreateNoteInput{
		Title:    r.Title,
		Content:  r.Content,
		Category: r.Category,
	}
}

func (r UpdateNoteRequest) ToInput(noteID string) model.UpdateNoteInput {
	return model.UpdateNoteInput{
		ID:       noteID,
		Title:    r.Title,
		Content:  r.Content,
		Category: r.Category,
	}
}

// NoteLinks builds the links advertised with every note
func NoteLinks(baseURL string, note *model.Note) map[string]NoteLink {
	self := baseURL + "/notes/" + note.ID
	return map[string]NoteLink{
		"self":   {Href: self, Method: "GET"},
		"update": {Href: self, Method: "PATCH"},
		"delete": {Href: self, Method: "DELETE"},
	}
}

// Convert a single note to NoteResponse
func ToNoteResponse(note *model.Note, links map[string]NoteLink) NoteResponse {
	return NoteResponse{
		ID:        note.ID,
		UserID:    note.UserID,
		Title:     note.Title,
		Content:   note.Content,
		Category:  note.Category,
		CreatedAt: note.CreatedAt,
		UpdatedAt: note.UpdatedAt,
		Links:     links,
	}
}

// Convert slice of notes to slice of NoteResponse
func ToNoteResponses(notes []*model.Note, getNoteLinks func(note *model.Note) map[string]NoteLink) []NoteResponse {
	responses := make([]NoteResponse, len(notes))
	for i, note := range notes {
		var links map[string]NoteLink
		if getNoteLinks != nil {
			links = getNoteLinks(note)
		}
		responses[i] = ToNoteResponse(note, links)
	}
	return responses
}

func (r NoteResponse) ToModel() *model.Note {
	return &model.Note{
		ID:        r.ID,
		UserID:    r.UserID,
		Title:     r.Title,
		Content:   r.Content,
		Category:  r.Category,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
