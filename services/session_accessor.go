package services

import (
	"context"
	"time"

	"quicknotes/model"
)

// SessionAccessor resolves the identity behind the current call.
// A nil session with a nil error means nobody is signed in.
type SessionAccessor interface {
	CurrentSession(ctx context.Context) (*model.Session, error)
}

// ContextSessionAccessor reads the session that SessionMiddleware attached to
// the request context.
type ContextSessionAccessor struct {
	Now func() time.Time
}

func (a ContextSessionAccessor) CurrentSession(ctx context.Context) (*model.Session, error) {
	s := model.SessionFromContext(ctx)
	if s == nil {
		return nil, nil
	}
	now := time.Now
	if a.Now != nil {
		now = a.Now
	}
	if s.Expired(now()) {
		return nil, nil
	}
	return s, nil
}

// StaticSessionAccessor always answers with the same session, or with none
// when Session is nil. Err simulates a provider failure.
type StaticSessionAccessor struct {
	Session *model.Session
	Err     error
}

func (a StaticSessionAccessor) CurrentSession(context.Context) (*model.Session, error) {
	if a.Err != nil {
		return nil, a.Err
	}
	return a.Session, nil
}

type SessionAccessorFunc func(ctx context.Context) (*model.Session, error)

func (f SessionAccessorFunc) CurrentSession(ctx context.Context) (*model.Session, error) {
	return f(ctx)
}
