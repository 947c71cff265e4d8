package repository

import (
	"context"
	"sync"

	"quicknotes/model"
)

// MemoryNotesRepo keeps notes in process memory. Every instance is isolated,
// create one per server (or per test).
type MemoryNotesRepo struct {
	mu    sync.RWMutex
	notes []*model.Note
	byID  map[string]int
}

func NewMemoryNotesRepo() *MemoryNotesRepo {
	return &MemoryNotesRepo{
		byID: make(map[string]int),
	}
}

// FindAll returns the owner's notes in insertion order
func (r *MemoryNotesRepo) FindAll(_ context.Context, userID string) ([]*model.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	notes := make([]*model.Note, 0)
	for _, n := range r.notes {
		if n.UserID == userID {
			notes = append(notes, n.Clone())
		}
	}
	return notes, nil
}

// FindByCategory returns the owner's notes of one category
func (r *MemoryNotesRepo) FindByCategory(_ context.Context, userID string, category model.Category) ([]*model.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	notes := make([]*model.Note, 0)
	for _, n := range r.notes {
		if n.UserID == userID && n.Category == category {
			notes = append(notes, n.Clone())
		}
	}
	return notes, nil
}

// FindOne returns nil, nil when the note is absent or owned by someone else
func (r *MemoryNotesRepo) FindOne(_ context.Context, noteID, userID string) (*model.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := r.lookup(noteID, userID)
	return n.Clone(), nil
}

func (r *MemoryNotesRepo) Insert(_ context.Context, note *model.Note) error {
	if note == nil || note.ID == "" {
		return ErrInvalidNote
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[note.ID]; exists {
		return ErrDuplicateNoteID
	}
	r.byID[note.ID] = len(r.notes)
	r.notes = append(r.notes, note.Clone())
	return nil
}

// Update merges the patch into the stored note. It never creates a note.
func (r *MemoryNotesRepo) Update(_ context.Context, noteID, userID string, patch model.NotePatch) (*model.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := r.lookup(noteID, userID)
	if n == nil {
		return nil, nil
	}
	patch.Apply(n)
	return n.Clone(), nil
}

func (r *MemoryNotesRepo) Remove(_ context.Context, noteID, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.lookup(noteID, userID) == nil {
		return false, nil
	}

	idx := r.byID[noteID]
	r.notes = append(r.notes[:idx], r.notes[idx+1:]...)
	delete(r.byID, noteID)
	for i := idx; i < len(r.notes); i++ {
		r.byID[r.notes[i].ID] = i
	}
	return true, nil
}

// Count returns the number of stored notes across all owners
func (r *MemoryNotesRepo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.notes)
}

// lookup must be called with the lock held
func (r *MemoryNotesRepo) lookup(noteID, userID string) *model.Note {
	idx, ok := r.byID[noteID]
	if !ok {
		return nil
	}
	n := r.notes[idx]
	if n.UserID != userID {
		return nil
	}
	return n
}
