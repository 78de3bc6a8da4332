// Package privilege models the elevated-privilege scope trusted system operations
// use to bypass ordinary authorization checks, such as writing provenance notes or
// creating a reviewer group.
//
// Elevation is a capability carried on a context. It only exists inside the
// callback passed to Run and is revoked when the callback returns, panics, or
// fails, so it cannot leak past the operation that asked for it.
package privilege

import (
	"context"
	"fmt"
	"sync/atomic"

	"reviewflow/internal/services"
)

// ErrRequired reports a write attempted outside an elevated scope.
var ErrRequired = fmt.Errorf("%w: elevated privilege required", services.ErrPermission)

type scopeKey struct{}

type scope struct {
	active atomic.Bool
}

// Run executes fn with an elevated context. The capability is revoked when fn
// returns, so a context captured by fn and used afterwards is no longer elevated.
func Run(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	s := &scope{}
	s.active.Store(true)
	defer s.active.Store(false)
	return fn(context.WithValue(ctx, scopeKey{}, s))
}

// Active reports whether ctx carries a live elevated scope.
func Active(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	s, ok := ctx.Value(scopeKey{}).(*scope)
	return ok && s.active.Load()
}

// Require returns an error wrapping ErrRequired when ctx is not elevated.
func Require(ctx context.Context, operation string) error {
	if Active(ctx) {
		return nil
	}
	return fmt.Errorf("%s: %w", operation, ErrRequired)
}
