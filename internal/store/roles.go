package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"reviewflow/internal/services"
)

// RolesForItem returns the role assignments on an item ordered by role id.
func (s *Store) RolesForItem(ctx context.Context, itemID int64) ([]RoleAssignment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+roleColumns+` FROM role_assignments WHERE item_id = ? ORDER BY role_id`, itemID)
	if err != nil {
		return nil, fmt.Errorf("roles for item: %w", err)
	}
	defer rows.Close()

	var roles []RoleAssignment
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		roles = append(roles, *role)
	}
	return roles, rows.Err()
}

// CreateRole inserts a role assignment and sets its ID. A second assignment for
// the same (item, role) pair fails with services.ErrConflict.
func (s *Store) CreateRole(ctx context.Context, role *RoleAssignment) error {
	if err := validateRole(role); err != nil {
		return err
	}
	res, err := s.execWithRetry(ctx,
		`INSERT INTO role_assignments (item_id, role_id, person_id, group_id) VALUES (?, ?, ?, ?)`,
		role.ItemID, role.RoleID, nullableUUID(role.PersonID), nullableUUID(role.GroupID),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return services.Wrap(services.ErrConflict, "store", "create role", fmt.Sprintf("role %q already assigned on item %d", role.RoleID, role.ItemID), err)
		}
		return fmt.Errorf("create role: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	role.ID = id
	return nil
}

// UpdateRole rebinds an existing role assignment to its current person or group.
func (s *Store) UpdateRole(ctx context.Context, role *RoleAssignment) error {
	if err := validateRole(role); err != nil {
		return err
	}
	res, err := s.execWithRetry(ctx,
		`UPDATE role_assignments SET person_id = ?, group_id = ? WHERE id = ?`,
		nullableUUID(role.PersonID), nullableUUID(role.GroupID), role.ID,
	)
	if err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return services.Wrap(services.ErrNotFound, "store", "update role", fmt.Sprintf("assignment %d", role.ID), nil)
	}
	return nil
}

// DeleteRolesForItem removes every role assignment on an item.
func (s *Store) DeleteRolesForItem(ctx context.Context, itemID int64) error {
	if _, err := s.execWithRetry(ctx, `DELETE FROM role_assignments WHERE item_id = ?`, itemID); err != nil {
		return fmt.Errorf("delete roles: %w", err)
	}
	return nil
}

func validateRole(role *RoleAssignment) error {
	if role == nil {
		return errors.New("role assignment is nil")
	}
	if strings.TrimSpace(role.RoleID) == "" {
		return services.Wrap(services.ErrValidation, "store", "role assignment", "role id is required", nil)
	}
	if (role.PersonID == nil) == (role.GroupID == nil) {
		return services.Wrap(services.ErrValidation, "store", "role assignment", "exactly one of person or group is required", nil)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
