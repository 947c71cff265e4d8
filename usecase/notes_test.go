package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"quicknotes/model"
	"quicknotes/repository"
	"quicknotes/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// tickingClock advances by one millisecond on every read
type tickingClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTickingClock() *tickingClock {
	return &tickingClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Millisecond)
	return c.now
}

// sessionsByUser resolves the user id stored on the context by asUser
type userKey struct{}

func asUser(userID string) context.Context {
	return context.WithValue(context.Background(), userKey{}, userID)
}

var sessionsByUser = services.SessionAccessorFunc(func(ctx context.Context) (*model.Session, error) {
	id, _ := ctx.Value(userKey{}).(string)
	if id == "" {
		return nil, nil
	}
	return &model.Session{UserID: id}, nil
})

func newTestService(t *testing.T) (*NotesService, *repository.MemoryNotesRepo) {
	t.Helper()
	store := repository.NewMemoryNotesRepo()
	svc := NewNotesService(store, sessionsByUser)
	svc.Now = newTickingClock().Now
	return svc, store
}

func strPtr(s string) *string { return &s }

func catPtr(c model.Category) *model.Category { return &c }

func TestUnauthenticated(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	_, err := svc.List(ctx)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = svc.ListByCategory(ctx, "school")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = svc.Create(ctx, model.CreateNoteInput{Category: model.CategoryRandom})
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = svc.Update(ctx, model.UpdateNoteInput{ID: "n1", Title: strPtr("x")})
	assert.ErrorIs(t, err, ErrUnauthenticated)

	assert.ErrorIs(t, svc.Delete(ctx, "n1"), ErrUnauthenticated)
	assert.Zero(t, store.Count())
}

func TestSessionProviderFailure(t *testing.T) {
	store := repository.NewMemoryNotesRepo()
	svc := NewNotesService(store, services.StaticSessionAccessor{Err: errors.New("provider down")})

	_, err := svc.List(context.Background())
	assert.ErrorIs(t, err, ErrUnauthenticated)

	svc.Sessions = nil
	_, err = svc.List(context.Background())
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestCreateThenList(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := asUser("u1")

	created, err := svc.Create(ctx, model.CreateNoteInput{
		Title:    "Groceries",
		Content:  "milk, eggs",
		Category: model.CategoryPersonal,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "u1", created.UserID)
	assert.True(t, created.CreatedAt.Equal(created.UpdatedAt))

	notes, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, created, notes[0])
}

func TestCreateAssignsUniqueIDs(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := asUser("u1")

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		n, err := svc.Create(ctx, model.CreateNoteInput{Category: model.CategoryRandom})
		require.NoError(t, err)
		assert.False(t, seen[n.ID], "duplicate id %s", n.ID)
		seen[n.ID] = true
	}
}

func TestCreateValidation(t *testing.T) {
	svc, store := newTestService(t)
	ctx := asUser("u1")

	bad := []model.CreateNoteInput{
		{Category: ""},
		{Category: model.CategoryAll},
		{Category: "work"},
		{Category: model.CategoryRandom, Title: strings.Repeat("t", 201)},
		{Category: model.CategoryRandom, Content: strings.Repeat("c", 50001)},
	}
	for _, in := range bad {
		_, err := svc.Create(ctx, in)
		assert.ErrorIs(t, err, ErrInvalidInput, "input %+v", in.Category)
	}
	assert.Zero(t, store.Count())

	// limits count characters, not bytes
	_, err := svc.Create(ctx, model.CreateNoteInput{
		Category: model.CategorySchool,
		Title:    strings.Repeat("ü", 200),
	})
	assert.NoError(t, err)
}

func TestUpdateMergesSuppliedFields(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := asUser("u1")

	created, err := svc.Create(ctx, model.CreateNoteInput{
		Title:    "old",
		Content:  "body",
		Category: model.CategoryRandom,
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, model.UpdateNoteInput{ID: created.ID, Title: strPtr("X")})
	require.NoError(t, err)
	assert.Equal(t, "X", updated.Title)
	assert.Equal(t, "body", updated.Content)
	assert.Equal(t, model.CategoryRandom, updated.Category)
	assert.True(t, updated.CreatedAt.Equal(created.CreatedAt))
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))

	notes, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, updated, notes[0])
}

func TestUpdateEmptyPatchRefreshesTimestamp(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := asUser("u1")

	created, err := svc.Create(ctx, model.CreateNoteInput{Title: "t", Content: "c", Category: model.CategorySchool})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, model.UpdateNoteInput{ID: created.ID})
	require.NoError(t, err)
	assert.Equal(t, created.Title, updated.Title)
	assert.Equal(t, created.Content, updated.Content)
	assert.Equal(t, created.Category, updated.Category)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))
}

func TestUpdateNeverMovesTimestampBackwards(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := asUser("u1")

	created, err := svc.Create(ctx, model.CreateNoteInput{Category: model.CategorySchool})
	require.NoError(t, err)

	svc.Now = func() time.Time { return created.UpdatedAt.Add(-time.Hour) }
	updated, err := svc.Update(ctx, model.UpdateNoteInput{ID: created.ID, Title: strPtr("later")})
	require.NoError(t, err)
	assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))
	assert.False(t, updated.UpdatedAt.Before(updated.CreatedAt))
}

func TestUpdateValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := asUser("u1")

	created, err := svc.Create(ctx, model.CreateNoteInput{Category: model.CategorySchool})
	require.NoError(t, err)

	bad := []model.UpdateNoteInput{
		{},
		{ID: created.ID, Category: catPtr(model.CategoryAll)},
		{ID: created.ID, Category: catPtr("")},
		{ID: created.ID, Title: strPtr(strings.Repeat("t", 201))},
	}
	for _, in := range bad {
		_, err := svc.Update(ctx, in)
		assert.ErrorIs(t, err, ErrInvalidInput)
	}

	n, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CategorySchool, n.Category)
}

func TestUpdateUnknownNote(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Update(asUser("u1"), model.UpdateNoteInput{ID: "missing", Title: strPtr("x")})
	assert.ErrorIs(t, err, ErrNotFoundOrUnauthorized)
}

func TestDeleteTwice(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := asUser("u1")

	created, err := svc.Create(ctx, model.CreateNoteInput{Category: model.CategoryRandom})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))

	notes, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, notes)

	assert.ErrorIs(t, svc.Delete(ctx, created.ID), ErrNotFoundOrUnauthorized)
}

func TestListByCategory(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := asUser("u1")

	for _, c := range []model.Category{model.CategoryRandom, model.CategorySchool, model.CategorySchool} {
		_, err := svc.Create(ctx, model.CreateNoteInput{Category: c})
		require.NoError(t, err)
	}

	school, err := svc.ListByCategory(ctx, "school")
	require.NoError(t, err)
	assert.Len(t, school, 2)

	all, err := svc.ListByCategory(ctx, "all")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	all, err = svc.ListByCategory(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = svc.ListByCategory(ctx, "work")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestEndToEndScenario(t *testing.T) {
	svc, _ := newTestService(t)
	u := asUser("U")
	v := asUser("V")

	n1, err := svc.Create(u, model.CreateNoteInput{Title: "", Content: "", Category: model.CategoryRandom})
	require.NoError(t, err)
	assert.Equal(t, "", n1.Title)
	assert.Equal(t, "", n1.Content)
	assert.Equal(t, model.CategoryRandom, n1.Category)
	assert.Equal(t, "U", n1.UserID)
	t0 := n1.CreatedAt
	assert.True(t, n1.UpdatedAt.Equal(t0))

	updated, err := svc.Update(u, model.UpdateNoteInput{
		ID:       n1.ID,
		Title:    strPtr("Groceries"),
		Category: catPtr(model.CategorySchool),
	})
	require.NoError(t, err)
	assert.Equal(t, "Groceries", updated.Title)
	assert.Equal(t, model.CategorySchool, updated.Category)
	assert.Equal(t, "", updated.Content)
	assert.True(t, updated.UpdatedAt.After(t0))

	_, err = svc.Update(v, model.UpdateNoteInput{ID: n1.ID, Title: strPtr("hijack")})
	assert.ErrorIs(t, err, ErrNotFoundOrUnauthorized)

	notes, err := svc.List(u)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "Groceries", notes[0].Title)
}

func TestConcurrentUpdatesLastWriteWins(t *testing.T) {
	svc, store := newTestService(t)
	ctx := asUser("u1")

	created, err := svc.Create(ctx, model.CreateNoteInput{Category: model.CategoryRandom})
	require.NoError(t, err)

	const writers = 20
	var wg sync.WaitGroup
	titles := make(chan string, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			title := fmt.Sprintf("title-%d", i)
			if _, err := svc.Update(ctx, model.UpdateNoteInput{ID: created.ID, Title: strPtr(title)}); err == nil {
				titles <- title
			}
		}(i)
	}
	wg.Wait()
	close(titles)

	written := map[string]bool{}
	for title := range titles {
		written[title] = true
	}
	assert.Len(t, written, writers)

	final, err := store.FindOne(context.Background(), created.ID, "u1")
	require.NoError(t, err)
	assert.True(t, written[final.Title], "final title %q was never written", final.Title)
}

func TestCrossSessionIsolation(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		store := repository.NewMemoryNotesRepo()
		svc := NewNotesService(store, sessionsByUser)
		svc.Now = newTickingClock().Now

		users := []string{"alice", "bob", "carol"}
		owned := map[string][]string{}

		steps := rapid.IntRange(1, 30).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			user := rapid.SampledFrom(users).Draw(t, "user")
			category := rapid.SampledFrom([]model.Category{model.CategoryRandom, model.CategorySchool, model.CategoryPersonal}).Draw(t, "category")
			title := rapid.StringN(0, 20, -1).Draw(t, "title")

			n, err := svc.Create(asUser(user), model.CreateNoteInput{Title: title, Category: category})
			if err != nil {
				t.Fatalf("create: %v", err)
			}
			owned[user] = append(owned[user], n.ID)
		}

		for _, user := range users {
			notes, err := svc.List(asUser(user))
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(notes) != len(owned[user]) {
				t.Fatalf("%s sees %d notes, owns %d", user, len(notes), len(owned[user]))
			}
			for _, n := range notes {
				if n.UserID != user {
					t.Fatalf("%s sees note of %s", user, n.UserID)
				}
			}
		}

		// every foreign id is invisible to update and delete
		attacker := rapid.SampledFrom(users).Draw(t, "attacker")
		for owner, ids := range owned {
			if owner == attacker {
				continue
			}
			for _, id := range ids {
				if _, err := svc.Update(asUser(attacker), model.UpdateNoteInput{ID: id, Title: strPtr("hijack")}); !errors.Is(err, ErrNotFoundOrUnauthorized) {
					t.Fatalf("update of foreign note: %v", err)
				}
				if err := svc.Delete(asUser(attacker), id); !errors.Is(err, ErrNotFoundOrUnauthorized) {
					t.Fatalf("delete of foreign note: %v", err)
				}
			}
		}

		if store.Count() != steps {
			t.Fatalf("store holds %d notes, want %d", store.Count(), steps)
		}
	})
}
