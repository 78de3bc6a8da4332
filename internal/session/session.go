// Package session carries the authenticated actor of a request on its context.
package session

import (
	"context"

	"github.com/google/uuid"

	"reviewflow/internal/store"
)

// Session describes who is acting. A nil Actor is an anonymous visitor.
type Session struct {
	Actor *store.Person
	// SpecialGroups are groups granted to this request by the authentication
	// layer rather than by stored membership.
	SpecialGroups []uuid.UUID
}

type sessionKey struct{}

// With returns a context carrying s.
func With(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// FromContext returns the session on ctx, or an anonymous session.
func FromContext(ctx context.Context) Session {
	if ctx == nil {
		return Session{}
	}
	if s, ok := ctx.Value(sessionKey{}).(Session); ok {
		return s
	}
	return Session{}
}

// Actor returns the person acting on ctx, or nil when anonymous.
func Actor(ctx context.Context) *store.Person {
	return FromContext(ctx).Actor
}

// Anonymous reports whether the session has no authenticated actor.
func (s Session) Anonymous() bool {
	return s.Actor == nil
}

// HasSpecialGroup reports whether id was granted to the session.
func (s Session) HasSpecialGroup(id uuid.UUID) bool {
	for _, candidate := range s.SpecialGroups {
		if candidate == id {
			return true
		}
	}
	return false
}
