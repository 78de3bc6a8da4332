package services

import "context"

type scopeKey struct{}

// Scope identifies the review work a context is performing. Zero fields are
// unset.
type Scope struct {
	ItemID    int64
	Step      string
	RequestID string
}

// WithScope layers the non-zero fields of s over any scope already carried by
// ctx.
func WithScope(ctx context.Context, s Scope) context.Context {
	merged := ScopeFrom(ctx)
	if s.ItemID != 0 {
		merged.ItemID = s.ItemID
	}
	if s.Step != "" {
		merged.Step = s.Step
	}
	if s.RequestID != "" {
		merged.RequestID = s.RequestID
	}
	return context.WithValue(ctx, scopeKey{}, merged)
}

// ForItem is shorthand for a scope naming only the item.
func ForItem(ctx context.Context, itemID int64) context.Context {
	return WithScope(ctx, Scope{ItemID: itemID})
}

// ScopeFrom returns the scope carried by ctx, or the zero Scope.
func ScopeFrom(ctx context.Context) Scope {
	if ctx == nil {
		return Scope{}
	}
	s, _ := ctx.Value(scopeKey{}).(Scope)
	return s
}
