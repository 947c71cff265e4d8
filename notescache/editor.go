package notescache

import (
	"context"
	"errors"
	"sync"
	"time"

	"quicknotes/model"
)

// DefaultDebounce is the idle window after the last keystroke before an edit
// is sent.
const DefaultDebounce = time.Second

// Edit carries the text fields typed into the editor. Nil fields are unchanged.
type Edit struct {
	Title   *string
	Content *string
}

type EditorOption func(*Editor)

func WithDebounce(d time.Duration) EditorOption {
	return func(e *Editor) { e.delay = d }
}

// Editor buffers edits of one note and sends them through the cache once
// typing pauses. Category changes are sent at once. Sends are applied in
// the order they were issued. A failed send puts its values back into the
// pending edit, so the next send carries them again.
type Editor struct {
	cache *Cache
	ctx   context.Context
	delay time.Duration

	mu      sync.Mutex
	saved   model.Note // last known or sent values
	pending model.UpdateNoteInput
	dirty   bool
	timer   *time.Timer
	last    *Mutation
	closed  bool
	issued  uint64 // sends issued so far
	err     error  // first failed send not yet recovered
	errAt   uint64 // issued count when err was recorded
}

// NewEditor opens an editor on note. ctx supplies request values such as the
// session; its cancellation does not stop sends.
func (c *Cache) NewEditor(ctx context.Context, note *model.Note, opts ...EditorOption) *Editor {
	e := &Editor{
		cache: c,
		ctx:   context.WithoutCancel(ctx),
		delay: DefaultDebounce,
		saved: *note,
	}
	e.pending.ID = note.ID
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Edit merges the change into the pending update and restarts the idle window.
// It reports false, keeping nothing, once the editor is closed.
func (e *Editor) Edit(edit Edit) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return false
	}
	if edit.Title != nil {
		e.pending.Title = edit.Title
		e.dirty = true
	}
	if edit.Content != nil {
		e.pending.Content = edit.Content
		e.dirty = true
	}
	if !e.dirty {
		return true
	}

	if e.timer == nil {
		e.timer = time.AfterFunc(e.delay, e.fire)
	} else {
		e.timer.Reset(e.delay)
	}
	return true
}

// SetCategory sends the category together with any pending text edits
// without waiting for the idle window.
func (e *Editor) SetCategory(category model.Category) *Mutation {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.pending.Category = &category
	e.dirty = true
	return e.flushLocked()
}

// Pending reports whether edits are waiting to be sent, including values of
// a failed send.
func (e *Editor) Pending() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dirty
}

// Err returns the first failed send that no later send has recovered.
func (e *Editor) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.err
}

// Flush sends pending edits now. It returns nil when nothing changed.
func (e *Editor) Flush() *Mutation {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.flushLocked()
}

// Close flushes pending edits and waits until every send issued by the editor
// has completed. It returns the first send failure not recovered by a later
// send; the failed values stay pending, so Flush and Close can be retried.
// ctx bounds only the wait.
func (e *Editor) Close(ctx context.Context) error {
	e.mu.Lock()
	e.closed = true
	e.flushLocked()
	last := e.last
	e.mu.Unlock()

	if last != nil {
		if _, err := last.Wait(ctx); err != nil && ctx.Err() != nil {
			return err
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.err
}

func (e *Editor) fire() {
	e.Flush()
}

func (e *Editor) flushLocked() *Mutation {
	if e.timer != nil {
		e.timer.Stop()
	}
	if !e.dirty {
		return nil
	}

	input := e.diffLocked()
	e.pending = model.UpdateNoteInput{ID: e.saved.ID}
	e.dirty = false
	if input.IsEmpty() {
		return nil
	}

	before := e.saved
	patch := model.NotePatch{Title: input.Title, Content: input.Content, Category: input.Category}
	patch.Apply(&e.saved)
	e.issued++
	seq := e.issued

	prev := e.last
	m := e.cache.mutate(e.ctx, "update", func(ctx context.Context) (*model.Note, error) {
		if prev != nil {
			<-prev.Done()
		}
		note, err := e.cache.api.Update(ctx, input)

		e.mu.Lock()
		e.settleLocked(seq, input, before, err)
		e.mu.Unlock()
		return note, err
	})
	// a closed cache finishes the mutation without running it
	if err := m.Err(); errors.Is(err, ErrClosed) {
		e.settleLocked(seq, input, before, err)
	}
	e.last = m
	return m
}

// settleLocked records the outcome of send seq. On failure every field still
// showing the failed value reverts to what was stored before and goes back
// into the pending edit, unless the user typed a newer value meanwhile.
func (e *Editor) settleLocked(seq uint64, sent model.UpdateNoteInput, before model.Note, err error) {
	if err == nil {
		// sends issued after the failure carried the restored values
		if e.err != nil && seq > e.errAt {
			e.err = nil
		}
		return
	}

	if v := sent.Title; v != nil && e.saved.Title == *v {
		e.saved.Title = before.Title
		if e.pending.Title == nil {
			e.pending.Title = v
		}
		e.dirty = true
	}
	if v := sent.Content; v != nil && e.saved.Content == *v {
		e.saved.Content = before.Content
		if e.pending.Content == nil {
			e.pending.Content = v
		}
		e.dirty = true
	}
	if v := sent.Category; v != nil && e.saved.Category == *v {
		e.saved.Category = before.Category
		if e.pending.Category == nil {
			e.pending.Category = v
		}
		e.dirty = true
	}

	if e.err == nil {
		e.err = err
		e.errAt = e.issued
	}
}

// diffLocked drops fields equal to what was last sent
func (e *Editor) diffLocked() model.UpdateNoteInput {
	in := model.UpdateNoteInput{ID: e.saved.ID}
	if p := e.pending.Title; p != nil && *p != e.saved.Title {
		in.Title = p
	}
	if p := e.pending.Content; p != nil && *p != e.saved.Content {
		in.Content = p
	}
	if p := e.pending.Category; p != nil && *p != e.saved.Category {
		in.Category = p
	}
	return in
}
