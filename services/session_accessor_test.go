package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"quicknotes/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextSessionAccessor(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	a := ContextSessionAccessor{Now: fixedClock(now)}

	s, err := a.CurrentSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, s)

	live := &model.Session{UserID: "u1", ExpiresAt: now.Add(time.Minute)}
	s, err = a.CurrentSession(model.ContextWithSession(context.Background(), live))
	require.NoError(t, err)
	assert.Same(t, live, s)

	expired := &model.Session{UserID: "u1", ExpiresAt: now.Add(-time.Minute)}
	s, err = a.CurrentSession(model.ContextWithSession(context.Background(), expired))
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestStaticSessionAccessor(t *testing.T) {
	s, err := StaticSessionAccessor{}.CurrentSession(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, s)

	want := &model.Session{UserID: "dev"}
	s, err = StaticSessionAccessor{Session: want}.CurrentSession(context.Background())
	assert.NoError(t, err)
	assert.Same(t, want, s)

	boom := errors.New("provider down")
	_, err = StaticSessionAccessor{Session: want, Err: boom}.CurrentSession(context.Background())
	assert.ErrorIs(t, err, boom)
}
