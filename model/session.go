package model

import (
	"context"
	"time"
)

// Session is the identity proven by a provider-issued access token.
type Session struct {
	UserID     string    `json:"user_id"`
	Email      string    `json:"email,omitempty"`
	Token      string    `json:"-"`
	IssuedAt   time.Time `json:"issued_at"`
	ExpiresAt  time.Time `json:"expires_at"`
	DeviceInfo string    `json:"device_info,omitempty"`
}

func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

type sessionCtxKey struct{}

func ContextWithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionCtxKey{}, s)
}

// SessionFromContext returns nil when no session was attached.
func SessionFromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionCtxKey{}).(*Session)
	return s
}
