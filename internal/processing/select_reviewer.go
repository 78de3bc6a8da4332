package processing

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"reviewflow/internal/action"
	"reviewflow/internal/config"
	"reviewflow/internal/logging"
	"reviewflow/internal/privilege"
	"reviewflow/internal/session"
	"reviewflow/internal/store"
)

// SelectReviewerID identifies the reviewer selection action in workflow definitions.
const SelectReviewerID = "selectrevieweraction"

// Role identifiers bound by reviewer selection.
const (
	RoleReviewer = "reviewer"
	RoleAdvisor  = "advisor"
)

const (
	paramReviewer = "eperson"
	paramAdvisor  = "advisor"
)

// ReviewerGroupName returns the name of the ad-hoc group holding the reviewers of
// an item when more than one was selected.
func ReviewerGroupName(itemID int64) string {
	return "selectedReviewsGroup_" + strconv.FormatInt(itemID, 10)
}

// AssignmentObserver is notified of each reviewer binding. mode is "person" or "group".
type AssignmentObserver interface {
	ObserveAssignment(mode string)
}

// SelectReviewerDeps bundles the collaborators of SelectReviewer.
type SelectReviewerDeps struct {
	Identity action.IdentityStore
	Roles    action.RoleStore
	Pool     *ReviewerPool
	Props    action.ConfigProvider
	Observer AssignmentObserver
	Logger   *slog.Logger
}

// SelectReviewer binds one or more reviewers, and optionally an advisor, to an item.
type SelectReviewer struct {
	identity action.IdentityStore
	roles    action.RoleStore
	pool     *ReviewerPool
	props    action.ConfigProvider
	observer AssignmentObserver
	logger   *slog.Logger
	// reviewerRole is the role id bound to the selected reviewers.
	reviewerRole string
}

// NewSelectReviewer constructs the reviewer selection action.
func NewSelectReviewer(deps SelectReviewerDeps) *SelectReviewer {
	return &SelectReviewer{
		identity:     deps.Identity,
		roles:        deps.Roles,
		pool:         deps.Pool,
		props:        deps.Props,
		observer:     deps.Observer,
		logger:       logging.NewComponentLogger(deps.Logger, SelectReviewerID),
		reviewerRole: RoleReviewer,
	}
}

func (a *SelectReviewer) ID() string { return SelectReviewerID }

func (a *SelectReviewer) Activate(context.Context, *store.Item) error { return nil }

// Execute dispatches on the submit button: cancel short-circuits, the select
// button assigns reviewers, anything else is rejected.
func (a *SelectReviewer) Execute(ctx context.Context, item *store.Item, _ action.Step, req action.Request) (action.Outcome, error) {
	logger := logging.WithContext(ctx, a.logger)
	actor := session.Actor(ctx)
	if actor != nil && actor.ID == item.SubmitterID {
		logger.Info("submitter selecting reviewers", logging.String(logging.FieldActor, actor.Email))
	} else {
		logger.Debug("reviewer selection by non-submitter", logging.String(logging.FieldActor, actor.DisplayName()))
	}

	button := action.SubmitButton(req, action.OptionCancel)
	switch {
	case button == action.OptionCancel:
		return action.Cancel{}, nil
	case strings.HasPrefix(button, action.OptionSubmitSelectReviewer):
		return a.selectReviewers(ctx, logger, item, req)
	default:
		return action.Fail(fmt.Sprintf("unsupported option %q", button)), nil
	}
}

func (a *SelectReviewer) selectReviewers(ctx context.Context, logger *slog.Logger, item *store.Item, req action.Request) (action.Outcome, error) {
	ids := req.Values(paramReviewer)
	if len(ids) == 0 {
		logger.Warn("no reviewer selected")
		return action.Fail("no reviewer selected"), nil
	}

	reviewers, err := a.resolveReviewers(ctx, logger, ids)
	if err != nil {
		return nil, err
	}
	if len(reviewers) == 0 {
		logger.Warn("none of the selected reviewers could be resolved", logging.Int("requested", len(ids)))
		return action.Fail("none of the selected reviewers exist"), nil
	}

	pool, err := a.pool.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	if pool != nil {
		for _, reviewer := range reviewers {
			member, err := a.identity.IsMember(ctx, reviewer.ID, pool.ID)
			if err != nil {
				return nil, fmt.Errorf("check reviewer pool membership: %w", err)
			}
			if !member {
				logger.Error("reviewer is not in the reviewer pool",
					logging.String(logging.FieldActor, reviewer.Email),
					logging.String(logging.FieldGroup, pool.ID.String()),
				)
				return action.Fail(fmt.Sprintf("%s is not a member of the reviewer pool", reviewer.Email)), nil
			}
		}
	}

	mode, err := a.bindReviewers(ctx, item, reviewers)
	if err != nil {
		return nil, err
	}
	if a.observer != nil {
		a.observer.ObserveAssignment(mode)
	}
	logger.Info("reviewers assigned",
		logging.String(logging.FieldRole, a.reviewerRole),
		logging.String("mode", mode),
		logging.Int("reviewers", len(reviewers)),
	)

	if err := a.assignAdvisor(ctx, logger, item, req.Param(paramAdvisor)); err != nil {
		return nil, err
	}
	return action.Complete(), nil
}

// resolveReviewers drops malformed, unknown, and duplicate identifiers.
func (a *SelectReviewer) resolveReviewers(ctx context.Context, logger *slog.Logger, ids []string) ([]*store.Person, error) {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	reviewers := make([]*store.Person, 0, len(ids))
	for _, raw := range ids {
		id, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil {
			logger.Warn("invalid reviewer identifier", logging.String("eperson", raw))
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		person, err := a.identity.FindPerson(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("find reviewer: %w", err)
		}
		if person == nil {
			logger.Warn("reviewer not found", logging.String("eperson", raw))
			continue
		}
		seen[id] = struct{}{}
		reviewers = append(reviewers, person)
	}
	return reviewers, nil
}

// bindReviewers upserts the reviewer role: a single reviewer is bound directly,
// several are bound through the item's reviewer group.
func (a *SelectReviewer) bindReviewers(ctx context.Context, item *store.Item, reviewers []*store.Person) (string, error) {
	existing, err := a.findRole(ctx, item.ID, a.reviewerRole)
	if err != nil {
		return "", err
	}
	assignment := existing
	if assignment == nil {
		assignment = &store.RoleAssignment{ItemID: item.ID, RoleID: a.reviewerRole}
	}

	mode := "person"
	if len(reviewers) == 1 {
		id := reviewers[0].ID
		assignment.PersonID = &id
		assignment.GroupID = nil
	} else {
		mode = "group"
		group, err := a.syncReviewerGroup(ctx, item, reviewers)
		if err != nil {
			return "", err
		}
		id := group.ID
		assignment.PersonID = nil
		assignment.GroupID = &id
	}

	if existing != nil {
		if err := a.roles.UpdateRole(ctx, assignment); err != nil {
			return "", fmt.Errorf("update reviewer role: %w", err)
		}
		return mode, nil
	}
	if err := a.roles.CreateRole(ctx, assignment); err != nil {
		return "", fmt.Errorf("create reviewer role: %w", err)
	}
	return mode, nil
}

// syncReviewerGroup finds or creates the item's reviewer group and makes its
// membership exactly reviewers.
func (a *SelectReviewer) syncReviewerGroup(ctx context.Context, item *store.Item, reviewers []*store.Person) (*store.Group, error) {
	var group *store.Group
	err := privilege.Run(ctx, func(ctx context.Context) error {
		name := ReviewerGroupName(item.ID)
		var err error
		group, err = a.identity.FindGroupByName(ctx, name)
		if err != nil {
			return fmt.Errorf("find reviewer group: %w", err)
		}
		if group == nil {
			if group, err = a.identity.CreateGroup(ctx, name); err != nil {
				return fmt.Errorf("create reviewer group: %w", err)
			}
		}

		wanted := make(map[uuid.UUID]struct{}, len(reviewers))
		for _, reviewer := range reviewers {
			wanted[reviewer.ID] = struct{}{}
		}
		current, err := a.identity.GroupMembers(ctx, group.ID)
		if err != nil {
			return fmt.Errorf("list reviewer group: %w", err)
		}
		for _, member := range current {
			if _, keep := wanted[member.ID]; keep {
				continue
			}
			if err := a.identity.RemoveMember(ctx, group.ID, member.ID); err != nil {
				return fmt.Errorf("remove reviewer: %w", err)
			}
		}
		for _, reviewer := range reviewers {
			if err := a.identity.AddMember(ctx, group.ID, reviewer.ID); err != nil {
				return fmt.Errorf("add reviewer: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return group, nil
}

// assignAdvisor upserts the advisor role. Missing, malformed, and unknown
// identifiers are logged and ignored.
func (a *SelectReviewer) assignAdvisor(ctx context.Context, logger *slog.Logger, item *store.Item, raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		logger.Info("no advisor selected")
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		logger.Warn("invalid advisor identifier", logging.String(paramAdvisor, raw))
		return nil
	}
	advisor, err := a.identity.FindPerson(ctx, id)
	if err != nil {
		return fmt.Errorf("find advisor: %w", err)
	}
	if advisor == nil {
		logger.Warn("advisor not found", logging.String(paramAdvisor, raw))
		return nil
	}

	existing, err := a.findRole(ctx, item.ID, RoleAdvisor)
	if err != nil {
		return err
	}
	if existing == nil {
		role := &store.RoleAssignment{ItemID: item.ID, RoleID: RoleAdvisor, PersonID: &advisor.ID}
		if err := a.roles.CreateRole(ctx, role); err != nil {
			return fmt.Errorf("create advisor role: %w", err)
		}
		logger.Info("advisor assigned", logging.String(logging.FieldActor, advisor.Email))
		return nil
	}
	if existing.PersonID != nil && *existing.PersonID == advisor.ID {
		logger.Info("advisor already assigned", logging.String(logging.FieldActor, advisor.Email))
		return nil
	}
	existing.PersonID = &advisor.ID
	existing.GroupID = nil
	if err := a.roles.UpdateRole(ctx, existing); err != nil {
		return fmt.Errorf("update advisor role: %w", err)
	}
	logger.Info("advisor updated", logging.String(logging.FieldActor, advisor.Email))
	return nil
}

func (a *SelectReviewer) findRole(ctx context.Context, itemID int64, roleID string) (*store.RoleAssignment, error) {
	roles, err := a.roles.RolesForItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("load roles: %w", err)
	}
	for i := range roles {
		if roles[i].RoleID == roleID {
			return &roles[i], nil
		}
	}
	return nil, nil
}

// Options returns the select button and return to pool.
func (a *SelectReviewer) Options() []string {
	return []string{action.OptionSubmitSelectReviewer, action.OptionReturnToPool}
}

func (a *SelectReviewer) AdvancedOptions() []string {
	return []string{action.OptionSubmitSelectReviewer}
}

// AdvancedInfo reports the reviewer pool and whether an advisor is expected.
func (a *SelectReviewer) AdvancedInfo(ctx context.Context) ([]action.AdvancedInfo, error) {
	info := action.SelectReviewerInfo{}
	pool, err := a.pool.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	if pool != nil {
		info.Group = pool.ID.String()
	}
	if a.props != nil {
		info.AdvisorRequired = a.props.Bool(config.KeyAdvisorRequired, false)
	}
	return []action.AdvancedInfo{info}, nil
}

// HealthCheck reports an unresolvable reviewer pool configuration.
func (a *SelectReviewer) HealthCheck(ctx context.Context) action.Health {
	pool, err := a.pool.Resolve(ctx)
	if err != nil {
		return action.Unhealthy(a.ID(), err.Error())
	}
	if pool == nil && a.pool.Configured() != "" {
		return action.Unhealthy(a.ID(), fmt.Sprintf("reviewer pool %q not found", a.pool.Configured()))
	}
	return action.Healthy(a.ID())
}
