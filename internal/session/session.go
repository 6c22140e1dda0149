// Package session carries the authenticated caller through a request. It
// replaces any process-wide "current user": a Session is built by the auth
// middleware after the token is verified and is gone when the request ends.
package session

import (
	"context"

	"brandflowAPI/internal/profile"
)

type Session struct {
	UID     string
	Email   string
	IsAdmin bool
	Profile *profile.Profile
}

// Plan is the entitlement the session's profile grants.
func (s *Session) Plan() profile.Status {
	if s == nil {
		return profile.StatusFree
	}
	return s.Profile.Plan()
}

type ctxKey struct{}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	return s, ok && s != nil
}
