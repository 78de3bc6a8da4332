package authz

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"

	"reviewflow/internal/action"
	"reviewflow/internal/config"
	"reviewflow/internal/logging"
	"reviewflow/internal/session"
	"reviewflow/internal/store"
)

// DefaultReviewerPoolName is matched when no reviewer pool is configured.
const DefaultReviewerPoolName = "Professores"

// DefaultReviewManagersGroup names the group whose members may always read the
// reviewer pool.
const DefaultReviewManagersGroup = "reviewmanagers"

// Permission is the kind of access requested.
type Permission string

const (
	PermissionRead  Permission = "READ"
	PermissionWrite Permission = "WRITE"
	PermissionAdmin Permission = "ADMIN"
)

// ResourceType is the kind of object access is requested on.
type ResourceType string

const (
	ResourceGroup  ResourceType = "group"
	ResourcePerson ResourceType = "person"
	ResourceItem   ResourceType = "item"
)

// Target identifies the object of an access check.
type Target struct {
	Type ResourceType
	ID   uuid.UUID
}

// Reasons attached to decisions, also used as the metrics label.
const (
	ReasonNotApplicable   = "not_applicable"
	ReasonTargetMissing   = "target_missing"
	ReasonSpecialGroup    = "special_group"
	ReasonAnonymous       = "anonymous"
	ReasonMember          = "member"
	ReasonAccountAdmin    = "account_admin"
	ReasonReviewManager   = "review_manager"
	ReasonActiveSubmitter = "active_submitter"
	ReasonSiteAdmin       = "site_admin"
	ReasonElevated        = "elevated"
	ReasonNoRelationship  = "no_relationship"
	ReasonStoreError      = "store_error"
)

// Decision is the result of one access check.
type Decision struct {
	Allowed bool
	Reason  string
}

// Directory is the read-only identity view the evaluator consults.
type Directory interface {
	FindGroup(ctx context.Context, id uuid.UUID) (*store.Group, error)
	FindGroupByName(ctx context.Context, name string) (*store.Group, error)
	IsMember(ctx context.Context, personID, groupID uuid.UUID) (bool, error)
	IsAdmin(ctx context.Context, personID uuid.UUID, scope store.AdminScope) (bool, error)
	ActiveItemsBySubmitter(ctx context.Context, personID uuid.UUID) ([]*store.Item, error)
	GroupMembers(ctx context.Context, groupID uuid.UUID) ([]store.Person, error)
}

// DecisionObserver records decisions, typically as metrics.
type DecisionObserver interface {
	ObserveDecision(allowed bool, reason string)
}

// GroupReadEvaluator grants read access to groups beyond explicit permissions.
type GroupReadEvaluator struct {
	dir      Directory
	props    action.ConfigProvider
	observer DecisionObserver
	logger   *slog.Logger
}

// NewGroupReadEvaluator constructs the evaluator. props and observer may be nil.
func NewGroupReadEvaluator(dir Directory, props action.ConfigProvider, observer DecisionObserver, logger *slog.Logger) *GroupReadEvaluator {
	return &GroupReadEvaluator{
		dir:      dir,
		props:    props,
		observer: observer,
		logger:   logging.NewComponentLogger(logger, "authz"),
	}
}

// Authorize reports whether the session on ctx may exercise perm on target.
// It returns false both for denials and for checks it does not handle.
func (e *GroupReadEvaluator) Authorize(ctx context.Context, target Target, perm Permission) bool {
	return e.Decide(ctx, target, perm).Allowed
}

// Decide evaluates the group read rules in order; the first rule that matches
// wins. Store failures deny.
func (e *GroupReadEvaluator) Decide(ctx context.Context, target Target, perm Permission) Decision {
	decision, err := e.decide(ctx, target, perm)
	logger := logging.WithContext(ctx, e.logger).With(
		logging.String("target", target.ID.String()),
		logging.String("permission", string(perm)),
	)
	if err != nil {
		logger.Error("group read check failed; denying",
			logging.Args(append(logging.DecisionAttrs("deny", ReasonStoreError), logging.Error(err))...)...)
		decision = Decision{Allowed: false, Reason: ReasonStoreError}
	} else {
		verdict := "deny"
		if decision.Allowed {
			verdict = "allow"
		}
		logger.Debug("group read decision", logging.Args(logging.DecisionAttrs(verdict, decision.Reason)...)...)
	}
	if e.observer != nil {
		e.observer.ObserveDecision(decision.Allowed, decision.Reason)
	}
	return decision
}

func (e *GroupReadEvaluator) decide(ctx context.Context, target Target, perm Permission) (Decision, error) {
	if perm != PermissionRead || target.Type != ResourceGroup {
		return deny(ReasonNotApplicable), nil
	}

	group, err := e.dir.FindGroup(ctx, target.ID)
	if err != nil {
		return Decision{}, err
	}
	if group == nil {
		return deny(ReasonTargetMissing), nil
	}

	sess := session.FromContext(ctx)
	if group.Special || sess.HasSpecialGroup(group.ID) {
		return allow(ReasonSpecialGroup), nil
	}
	if sess.Anonymous() {
		return deny(ReasonAnonymous), nil
	}
	actor := sess.Actor

	member, err := e.dir.IsMember(ctx, actor.ID, group.ID)
	if err != nil {
		return Decision{}, err
	}
	if member {
		return allow(ReasonMember), nil
	}

	admin, err := e.accountAdmin(ctx, actor.ID)
	if err != nil {
		return Decision{}, err
	}
	if admin {
		return allow(ReasonAccountAdmin), nil
	}

	if !e.isReviewerPool(group) {
		return deny(ReasonNoRelationship), nil
	}
	return e.reviewerPoolAccess(ctx, actor.ID)
}

// accountAdmin reports community or collection administration combined with the
// matching account-management setting.
func (e *GroupReadEvaluator) accountAdmin(ctx context.Context, personID uuid.UUID) (bool, error) {
	checks := []struct {
		scope store.AdminScope
		key   string
	}{
		{store.AdminCommunity, config.KeyCommunityAdminAccounts},
		{store.AdminCollection, config.KeyCollectionAdminAccount},
	}
	for _, check := range checks {
		if !e.boolProp(check.key) {
			continue
		}
		ok, err := e.dir.IsAdmin(ctx, personID, check.scope)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// reviewerPoolAccess allows review managers and submitters of active items.
func (e *GroupReadEvaluator) reviewerPoolAccess(ctx context.Context, personID uuid.UUID) (Decision, error) {
	manager, err := e.isReviewManager(ctx, personID)
	if err != nil {
		return Decision{}, err
	}
	if manager {
		return allow(ReasonReviewManager), nil
	}
	items, err := e.dir.ActiveItemsBySubmitter(ctx, personID)
	if err != nil {
		return Decision{}, err
	}
	if len(items) > 0 {
		return allow(ReasonActiveSubmitter), nil
	}
	return deny(ReasonNoRelationship), nil
}

func (e *GroupReadEvaluator) isReviewManager(ctx context.Context, personID uuid.UUID) (bool, error) {
	name := e.stringProp(config.KeyReviewManagersGroup, DefaultReviewManagersGroup)
	managers, err := e.dir.FindGroupByName(ctx, name)
	if err != nil {
		return false, err
	}
	if managers == nil {
		return false, nil
	}
	return e.dir.IsMember(ctx, personID, managers.ID)
}

// isReviewerPool matches the configured pool by case-folded name, or by id when
// the configured value is a UUID.
func (e *GroupReadEvaluator) isReviewerPool(group *store.Group) bool {
	configured := e.stringProp(config.KeyReviewerGroup, DefaultReviewerPoolName)
	if id, err := uuid.Parse(configured); err == nil && id == group.ID {
		return true
	}
	fold := cases.Fold()
	return fold.String(strings.TrimSpace(group.Name)) == fold.String(configured)
}

func (e *GroupReadEvaluator) stringProp(key, fallback string) string {
	if e.props == nil {
		return fallback
	}
	if value := e.props.String(key); value != "" {
		return value
	}
	return fallback
}

func (e *GroupReadEvaluator) boolProp(key string) bool {
	if e.props == nil {
		return false
	}
	return e.props.Bool(key, false)
}

func allow(reason string) Decision { return Decision{Allowed: true, Reason: reason} }

func deny(reason string) Decision { return Decision{Allowed: false, Reason: reason} }
