package processing

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"reviewflow/internal/action"
	"reviewflow/internal/config"
	"reviewflow/internal/logging"
	"reviewflow/internal/store"
)

// GroupFinder resolves groups by name or identifier.
type GroupFinder interface {
	FindGroup(ctx context.Context, id uuid.UUID) (*store.Group, error)
	FindGroupByName(ctx context.Context, name string) (*store.Group, error)
}

// ReviewerPool resolves the configured reviewer pool group once and caches the
// result until Invalidate is called. Resolve and Invalidate are mutually
// exclusive.
type ReviewerPool struct {
	groups GroupFinder
	props  action.ConfigProvider
	logger *slog.Logger

	mu       sync.Mutex
	resolved bool
	group    *store.Group
}

// NewReviewerPool constructs a pool resolver reading the
// action.selectrevieweraction.group property.
func NewReviewerPool(groups GroupFinder, props action.ConfigProvider, logger *slog.Logger) *ReviewerPool {
	return &ReviewerPool{
		groups: groups,
		props:  props,
		logger: logging.NewComponentLogger(logger, "reviewer-pool"),
	}
}

// Configured returns the raw configured group name or identifier.
func (p *ReviewerPool) Configured() string {
	if p == nil || p.props == nil {
		return ""
	}
	return p.props.String(config.KeyReviewerGroup)
}

// Resolve returns the reviewer pool group, or nil when none is configured or the
// configured value matches no group. Store failures are returned and leave the
// cache untouched so the next call retries.
func (p *ReviewerPool) Resolve(ctx context.Context) (*store.Group, error) {
	if p == nil {
		return nil, nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.resolved {
		return p.group, nil
	}

	configured := p.Configured()
	if configured == "" {
		p.resolved = true
		p.group = nil
		return nil, nil
	}

	group, err := p.groups.FindGroupByName(ctx, configured)
	if err != nil {
		return nil, fmt.Errorf("resolve reviewer pool %q: %w", configured, err)
	}
	if group == nil {
		if id, parseErr := uuid.Parse(configured); parseErr == nil {
			group, err = p.groups.FindGroup(ctx, id)
			if err != nil {
				return nil, fmt.Errorf("resolve reviewer pool %q: %w", configured, err)
			}
		}
	}
	if group == nil {
		logging.WithContext(ctx, p.logger).Warn("configured reviewer pool group not found",
			logging.String("key", config.KeyReviewerGroup),
			logging.String(logging.FieldGroup, configured),
		)
	}

	p.group = group
	p.resolved = true
	return group, nil
}

// Invalidate clears the cached resolution.
func (p *ReviewerPool) Invalidate() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resolved = false
	p.group = nil
}
