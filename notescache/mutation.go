package notescache

import (
	"context"

	"quicknotes/model"
)

// Mutation is the handle of a create, update or delete running in the
// background. The operation completes whether or not anybody waits for it.
type Mutation struct {
	op   string
	done chan struct{}
	note *model.Note
	err  error
}

func newMutation(op string) *Mutation {
	return &Mutation{op: op, done: make(chan struct{})}
}

func (m *Mutation) finish(note *model.Note, err error) {
	m.note = note
	m.err = err
	close(m.done)
}

// Op names the operation: create, update or delete.
func (m *Mutation) Op() string { return m.op }

// Done is closed once the operation has completed.
func (m *Mutation) Done() <-chan struct{} { return m.done }

// Wait blocks until the operation completes or ctx ends. Ending ctx only stops
// the wait, never the operation.
func (m *Mutation) Wait(ctx context.Context) (*model.Note, error) {
	select {
	case <-m.done:
		return m.note, m.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Note is the resulting note, nil until done and for deletes.
func (m *Mutation) Note() *model.Note {
	select {
	case <-m.done:
		return m.note
	default:
		return nil
	}
}

// Err is the operation error, nil until done.
func (m *Mutation) Err() error {
	select {
	case <-m.done:
		return m.err
	default:
		return nil
	}
}
