package authz

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"reviewflow/internal/logging"
	"reviewflow/internal/privilege"
	"reviewflow/internal/services"
	"reviewflow/internal/session"
	"reviewflow/internal/store"
)

// GroupMembers lists the members of a group on behalf of the session on ctx.
// Site administrators and members may list any group. The reviewer pool may also
// be listed by review managers and by submitters of active items. Unlike
// Decide, store failures are returned to the caller.
func (e *GroupReadEvaluator) GroupMembers(ctx context.Context, groupID uuid.UUID) ([]store.Person, error) {
	group, err := e.dir.FindGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("find group: %w", err)
	}
	if group == nil {
		return nil, services.Wrap(services.ErrNotFound, "authz", "list members", fmt.Sprintf("group %s", groupID), nil)
	}

	reason, err := e.listingReason(ctx, group)
	if err != nil {
		return nil, err
	}
	logger := logging.WithContext(ctx, e.logger).With(logging.String(logging.FieldGroup, group.Name))
	if reason == "" {
		logger.Info("group member listing denied", logging.String(logging.FieldActor, session.Actor(ctx).DisplayName()))
		return nil, services.Wrap(services.ErrPermission, "authz", "list members", fmt.Sprintf("group %q", group.Name), nil)
	}
	logger.Debug("group member listing allowed", logging.String(logging.FieldReason, reason))

	members, err := e.dir.GroupMembers(ctx, group.ID)
	if err != nil {
		return nil, fmt.Errorf("list group members: %w", err)
	}
	return members, nil
}

// listingReason returns why the listing is allowed, or "" when it is not.
func (e *GroupReadEvaluator) listingReason(ctx context.Context, group *store.Group) (string, error) {
	if privilege.Active(ctx) {
		return ReasonElevated, nil
	}
	actor := session.Actor(ctx)
	if actor == nil {
		return "", nil
	}
	admin, err := e.dir.IsAdmin(ctx, actor.ID, store.AdminSite)
	if err != nil {
		return "", fmt.Errorf("check site admin: %w", err)
	}
	if admin {
		return ReasonSiteAdmin, nil
	}
	member, err := e.dir.IsMember(ctx, actor.ID, group.ID)
	if err != nil {
		return "", fmt.Errorf("check membership: %w", err)
	}
	if member {
		return ReasonMember, nil
	}
	if !e.isReviewerPool(group) {
		return "", nil
	}
	decision, err := e.reviewerPoolAccess(ctx, actor.ID)
	if err != nil {
		return "", fmt.Errorf("check reviewer pool access: %w", err)
	}
	if decision.Allowed {
		return decision.Reason, nil
	}
	return "", nil
}
