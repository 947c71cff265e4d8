// Package notescache keeps the notes list of one session in memory on the
// client side. Reads go through the cache with concurrent fetches merged into
// one; every successful mutation marks the list stale so the next read
// refetches.
package notescache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"quicknotes/model"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// NotesAPI is the note CRUD contract the cache sits on. Both the in-process
// service and the HTTP client implement it.
type NotesAPI interface {
	List(ctx context.Context) ([]*model.Note, error)
	Create(ctx context.Context, input model.CreateNoteInput) (*model.Note, error)
	Update(ctx context.Context, input model.UpdateNoteInput) (*model.Note, error)
	Delete(ctx context.Context, noteID string) error
}

var ErrClosed = errors.New("notes cache closed")

type Status int

const (
	// StatusLoading means no list has been fetched yet.
	StatusLoading Status = iota
	// StatusError means the last fetch failed. Notes holds older data, if any.
	StatusError
	// StatusReady means Notes holds a fetched list.
	StatusReady
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusError:
		return "error"
	case StatusReady:
		return "ready"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// State is a snapshot of the cached list.
type State struct {
	Status   Status
	Notes    []*model.Note
	Err      error
	Stale    bool // invalidated since the last successful fetch
	Fetching bool // a fetch is in flight
}

const (
	defaultTimeout    = 30 * time.Second
	subscriberBacklog = 1
)

type Option func(*Cache)

// WithTimeout bounds every fetch and mutation.
func WithTimeout(d time.Duration) Option {
	return func(c *Cache) { c.timeout = d }
}

type Cache struct {
	api     NotesAPI
	timeout time.Duration
	group   singleflight.Group

	mu         sync.Mutex
	notes      []*model.Note
	hasData    bool
	err        error
	fresh      bool
	generation uint64
	fetching   int
	subs       map[chan State]struct{}
	closed     bool
	inflight   sync.WaitGroup
}

func New(api NotesAPI, opts ...Option) *Cache {
	c := &Cache{
		api:     api,
		timeout: defaultTimeout,
		subs:    make(map[chan State]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Notes returns the cached list, fetching it when nothing fresh is held.
// Callers arriving while a fetch is in flight share its result. Ending ctx
// abandons the wait, the shared fetch keeps running for the others.
func (c *Cache) Notes(ctx context.Context) ([]*model.Note, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	if c.fresh {
		notes := cloneNotes(c.notes)
		c.mu.Unlock()
		return notes, nil
	}
	gen := c.generation
	c.mu.Unlock()

	// a new generation never joins a fetch started before the invalidation
	key := fmt.Sprintf("notes:%d", gen)
	ch := c.group.DoChan(key, func() (interface{}, error) {
		return c.fetch(context.WithoutCancel(ctx), gen)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return cloneNotes(res.Val.([]*model.Note)), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Refresh drops the cached list and fetches it again.
func (c *Cache) Refresh(ctx context.Context) ([]*model.Note, error) {
	c.Invalidate()
	return c.Notes(ctx)
}

// Invalidate marks the list stale. Data stays readable through State until
// the next fetch replaces it.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.fresh = false
	c.notifyLocked()
}

func (c *Cache) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

// Subscribe delivers a State after every change. A slow reader only misses
// intermediate states, never the latest one. The channel is closed by cancel
// or by Close.
func (c *Cache) Subscribe() (<-chan State, func()) {
	ch := make(chan State, subscriberBacklog)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		close(ch)
		return ch, func() {}
	}
	c.subs[ch] = struct{}{}

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if _, ok := c.subs[ch]; ok {
				delete(c.subs, ch)
				close(ch)
			}
		})
	}
	return ch, cancel
}

func (c *Cache) CreateNote(ctx context.Context, input model.CreateNoteInput) *Mutation {
	return c.mutate(ctx, "create", func(ctx context.Context) (*model.Note, error) {
		return c.api.Create(ctx, input)
	})
}

func (c *Cache) UpdateNote(ctx context.Context, input model.UpdateNoteInput) *Mutation {
	return c.mutate(ctx, "update", func(ctx context.Context) (*model.Note, error) {
		return c.api.Update(ctx, input)
	})
}

func (c *Cache) DeleteNote(ctx context.Context, noteID string) *Mutation {
	return c.mutate(ctx, "delete", func(ctx context.Context) (*model.Note, error) {
		return nil, c.api.Delete(ctx, noteID)
	})
}

// Close waits for running mutations and releases subscribers. Reads and new
// mutations fail with ErrClosed afterwards.
func (c *Cache) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	c.inflight.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()
	for ch := range c.subs {
		delete(c.subs, ch)
		close(ch)
	}
}

func (c *Cache) fetch(ctx context.Context, gen uint64) ([]*model.Note, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	c.mu.Lock()
	// a late caller may arrive after the previous fetch of gen completed
	if c.fresh && gen == c.generation {
		notes := cloneNotes(c.notes)
		c.mu.Unlock()
		return notes, nil
	}
	c.fetching++
	c.notifyLocked()
	c.mu.Unlock()

	notes, err := c.api.List(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.fetching--

	if err != nil {
		// an older generation failing says nothing about newer data
		if gen == c.generation {
			c.err = err
			c.fresh = false
		}
		c.notifyLocked()
		log.WithError(err).WithField("generation", gen).Debug("notes fetch failed")
		return nil, err
	}

	// an older generation may not overwrite data fetched after it
	if gen == c.generation || !c.hasData {
		c.notes = cloneNotes(notes)
		c.hasData = true
		c.err = nil
		c.fresh = gen == c.generation
	}
	c.notifyLocked()
	return notes, nil
}

// mutate runs fn in the background on a context detached from the caller's
// cancellation. The list is invalidated before the handle reports success.
func (c *Cache) mutate(ctx context.Context, op string, fn func(context.Context) (*model.Note, error)) *Mutation {
	m := newMutation(op)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		m.finish(nil, ErrClosed)
		return m
	}
	c.inflight.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.inflight.Done()

		mctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()

		note, err := fn(mctx)
		if err != nil {
			log.WithError(err).WithField("op", op).Debug("notes mutation failed")
		} else {
			c.Invalidate()
		}
		m.finish(note, err)
	}()

	return m
}

func (c *Cache) stateLocked() State {
	st := State{
		Notes:    cloneNotes(c.notes),
		Err:      c.err,
		Stale:    c.hasData && !c.fresh,
		Fetching: c.fetching > 0,
	}
	switch {
	case c.err != nil:
		st.Status = StatusError
	case c.hasData:
		st.Status = StatusReady
	default:
		st.Status = StatusLoading
	}
	return st
}

func (c *Cache) notifyLocked() {
	if len(c.subs) == 0 {
		return
	}
	st := c.stateLocked()
	for ch := range c.subs {
		select {
		case ch <- st:
		default:
			// replace the unread state with the newer one
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- st:
			default:
			}
		}
	}
}

func cloneNotes(notes []*model.Note) []*model.Note {
	if notes == nil {
		return nil
	}
	out := make([]*model.Note, len(notes))
	for i, n := range notes {
		out[i] = n.Clone()
	}
	return out
}
