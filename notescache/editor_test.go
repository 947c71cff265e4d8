package notescache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"quicknotes/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func str(s string) *string { return &s }

func newEditorFixture(t *testing.T, delay time.Duration) (*fakeAPI, *Cache, *Editor) {
	t.Helper()
	note := &model.Note{ID: "n1", Title: "start", Content: "", Category: model.CategoryRandom}
	api := &fakeAPI{notes: []*model.Note{note.Clone()}}
	c := New(api)
	t.Cleanup(c.Close)
	return api, c, c.NewEditor(context.Background(), note, WithDebounce(delay))
}

func TestEditorCoalescesEdits(t *testing.T) {
	api, _, e := newEditorFixture(t, 100*time.Millisecond)

	assert.True(t, e.Edit(Edit{Title: str("G")}))
	e.Edit(Edit{Title: str("Gr")})
	e.Edit(Edit{Title: str("Groceries")})
	e.Edit(Edit{Content: str("milk")})
	assert.True(t, e.Pending())
	assert.Empty(t, api.recordedUpdates())

	require.Eventually(t, func() bool { return len(api.recordedUpdates()) == 1 }, time.Second, 5*time.Millisecond)

	up := api.recordedUpdates()[0]
	assert.Equal(t, "n1", up.ID)
	assert.Equal(t, "Groceries", *up.Title)
	assert.Equal(t, "milk", *up.Content)
	assert.Nil(t, up.Category)
	assert.False(t, e.Pending())

	require.NoError(t, e.Close(context.Background()))
	assert.Len(t, api.recordedUpdates(), 1)
}

func TestEditorIdleWindowRestartsOnEdit(t *testing.T) {
	api, _, e := newEditorFixture(t, 200*time.Millisecond)

	for i := 0; i < 5; i++ {
		e.Edit(Edit{Content: str(string(rune('a' + i)))})
		time.Sleep(20 * time.Millisecond)
	}
	// 100ms of typing with gaps below the window, nothing sent yet
	assert.Empty(t, api.recordedUpdates())

	require.Eventually(t, func() bool { return len(api.recordedUpdates()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "e", *api.recordedUpdates()[0].Content)
	require.NoError(t, e.Close(context.Background()))
}

func TestEditorCloseFlushesPendingEdit(t *testing.T) {
	api, c, e := newEditorFixture(t, time.Hour)

	e.Edit(Edit{Title: str("typed then left")})
	require.NoError(t, e.Close(context.Background()))

	ups := api.recordedUpdates()
	require.Len(t, ups, 1)
	assert.Equal(t, "typed then left", *ups[0].Title)

	notes, err := c.Notes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "typed then left", notes[0].Title)

	// closed editors ignore further input
	assert.False(t, e.Edit(Edit{Title: str("ignored")}))
	assert.Nil(t, e.SetCategory(model.CategorySchool))
	require.NoError(t, e.Close(context.Background()))
	assert.Len(t, api.recordedUpdates(), 1)
}

func TestEditorSetCategorySendsImmediately(t *testing.T) {
	api, _, e := newEditorFixture(t, time.Hour)

	e.Edit(Edit{Content: str("draft")})
	m := e.SetCategory(model.CategorySchool)
	require.NotNil(t, m)

	_, err := m.Wait(context.Background())
	require.NoError(t, err)

	ups := api.recordedUpdates()
	require.Len(t, ups, 1)
	assert.Equal(t, model.CategorySchool, *ups[0].Category)
	assert.Equal(t, "draft", *ups[0].Content)
	assert.False(t, e.Pending())

	require.NoError(t, e.Close(context.Background()))
	assert.Len(t, api.recordedUpdates(), 1)
}

func TestEditorSendsOnlyChangedFields(t *testing.T) {
	api, _, e := newEditorFixture(t, time.Hour)

	e.Edit(Edit{Title: str("start")})
	assert.Nil(t, e.Flush())
	assert.Nil(t, e.SetCategory(model.CategoryRandom))

	e.Edit(Edit{Title: str("start"), Content: str("new body")})
	m := e.Flush()
	require.NotNil(t, m)
	_, err := m.Wait(context.Background())
	require.NoError(t, err)

	ups := api.recordedUpdates()
	require.Len(t, ups, 1)
	assert.Nil(t, ups[0].Title)
	assert.Equal(t, "new body", *ups[0].Content)

	require.NoError(t, e.Close(context.Background()))
}

func TestEditorSendsInIssueOrder(t *testing.T) {
	var (
		mu    sync.Mutex
		first = true
	)
	release := make(chan struct{})

	api, c, e := newEditorFixture(t, time.Hour)
	// the first update stalls so a later one could overtake it
	api.updateHook = func(model.UpdateNoteInput) {
		mu.Lock()
		stall := first
		first = false
		mu.Unlock()
		if stall {
			<-release
		}
	}

	e.Edit(Edit{Title: str("one")})
	m1 := e.Flush()
	e.Edit(Edit{Title: str("two")})
	m2 := e.Flush()
	require.NotNil(t, m1)
	require.NotNil(t, m2)

	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, api.recordedUpdates())
	close(release)

	require.NoError(t, e.Close(context.Background()))
	ups := api.recordedUpdates()
	require.Len(t, ups, 2)
	assert.Equal(t, "one", *ups[0].Title)
	assert.Equal(t, "two", *ups[1].Title)

	notes, err := c.Notes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "two", notes[0].Title)
}

func TestEditorCloseReportsSendError(t *testing.T) {
	api, _, e := newEditorFixture(t, time.Hour)
	boom := errors.New("offline")
	api.setMutateErr(boom)

	e.Edit(Edit{Content: str("unsaved")})
	assert.ErrorIs(t, e.Close(context.Background()), boom)
}

func TestEditorResendsValuesOfFailedSend(t *testing.T) {
	api, c, e := newEditorFixture(t, time.Hour)
	ctx := context.Background()
	boom := errors.New("offline")
	api.setMutateErr(boom)

	e.Edit(Edit{Title: str("important")})
	m := e.Flush()
	require.NotNil(t, m)
	_, err := m.Wait(ctx)
	require.ErrorIs(t, err, boom)
	assert.True(t, e.Pending())
	assert.ErrorIs(t, e.Err(), boom)

	api.setMutateErr(nil)
	e.Edit(Edit{Content: str("later")})
	require.NoError(t, e.Close(ctx))

	ups := api.recordedUpdates()
	require.Len(t, ups, 1)
	require.NotNil(t, ups[0].Title)
	assert.Equal(t, "important", *ups[0].Title)
	assert.Equal(t, "later", *ups[0].Content)
	assert.False(t, e.Pending())
	assert.NoError(t, e.Err())

	notes, err := c.Notes(ctx)
	require.NoError(t, err)
	assert.Equal(t, "important", notes[0].Title)
	assert.Equal(t, "later", notes[0].Content)
}

func TestEditorCloseReportsFailedTimerSend(t *testing.T) {
	api, _, e := newEditorFixture(t, 20*time.Millisecond)
	ctx := context.Background()
	boom := errors.New("offline")
	api.setMutateErr(boom)

	e.Edit(Edit{Title: str("draft")})
	require.Eventually(t, func() bool { return e.Err() != nil }, time.Second, 5*time.Millisecond)
	assert.True(t, e.Pending())

	assert.ErrorIs(t, e.Close(ctx), boom)
	assert.True(t, e.Pending())

	// closing again retries what is still pending
	api.setMutateErr(nil)
	require.NoError(t, e.Close(ctx))

	ups := api.recordedUpdates()
	require.Len(t, ups, 1)
	assert.Equal(t, "draft", *ups[0].Title)
	assert.False(t, e.Pending())
}

func TestEditorKeepsNewerTypingOverFailedValue(t *testing.T) {
	release := make(chan struct{})
	api, _, e := newEditorFixture(t, time.Hour)
	boom := errors.New("offline")
	api.setMutateErr(boom)
	api.updateHook = func(model.UpdateNoteInput) { <-release }

	e.Edit(Edit{Title: str("first")})
	m := e.Flush()
	require.NotNil(t, m)
	e.Edit(Edit{Title: str("second")})
	close(release)
	_, err := m.Wait(context.Background())
	require.ErrorIs(t, err, boom)

	api.setMutateErr(nil)
	require.NoError(t, e.Close(context.Background()))

	ups := api.recordedUpdates()
	require.Len(t, ups, 1)
	assert.Equal(t, "second", *ups[0].Title)
}
