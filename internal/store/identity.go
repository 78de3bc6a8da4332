package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"reviewflow/internal/privilege"
	"reviewflow/internal/services"
)

// CreatePerson registers a person identified by email.
func (s *Store) CreatePerson(ctx context.Context, email, name string) (*Person, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, services.Wrap(services.ErrValidation, "store", "create person", "email is required", nil)
	}
	person := &Person{ID: uuid.New(), Email: email, Name: strings.TrimSpace(name)}
	if _, err := s.execWithRetry(ctx,
		`INSERT INTO persons (id, email, name, created_at) VALUES (?, ?, ?, ?)`,
		person.ID.String(), person.Email, nullableString(person.Name), nowString(),
	); err != nil {
		return nil, fmt.Errorf("insert person: %w", err)
	}
	return person, nil
}

// FindPerson returns the person with id, or nil when absent.
func (s *Store) FindPerson(ctx context.Context, id uuid.UUID) (*Person, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+personColumns+` FROM persons WHERE id = ?`, id.String())
	person, err := scanPerson(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find person: %w", err)
	}
	return person, nil
}

// FindPersonByEmail returns the person registered under email, or nil when absent.
func (s *Store) FindPersonByEmail(ctx context.Context, email string) (*Person, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+personColumns+` FROM persons WHERE email = ?`, strings.TrimSpace(email))
	person, err := scanPerson(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find person by email: %w", err)
	}
	return person, nil
}

// ListPersons returns every person ordered by email.
func (s *Store) ListPersons(ctx context.Context) ([]Person, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+personColumns+` FROM persons ORDER BY email`)
	if err != nil {
		return nil, fmt.Errorf("list persons: %w", err)
	}
	defer rows.Close()
	return collectPersons(rows)
}

func collectPersons(rows *sql.Rows) ([]Person, error) {
	var persons []Person
	for rows.Next() {
		person, err := scanPerson(rows)
		if err != nil {
			return nil, err
		}
		persons = append(persons, *person)
	}
	return persons, rows.Err()
}

// CreateGroup creates an empty, non-special group. Requires an elevated context.
func (s *Store) CreateGroup(ctx context.Context, name string) (*Group, error) {
	if err := privilege.Require(ctx, "create group"); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, services.Wrap(services.ErrValidation, "store", "create group", "name is required", nil)
	}
	group := &Group{ID: uuid.New(), Name: name}
	if _, err := s.execWithRetry(ctx,
		`INSERT INTO user_groups (id, name, special, created_at) VALUES (?, ?, 0, ?)`,
		group.ID.String(), group.Name, nowString(),
	); err != nil {
		return nil, fmt.Errorf("insert group: %w", err)
	}
	return group, nil
}

// SetGroupName renames a group. Requires an elevated context.
func (s *Store) SetGroupName(ctx context.Context, groupID uuid.UUID, name string) error {
	if err := privilege.Require(ctx, "rename group"); err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return services.Wrap(services.ErrValidation, "store", "rename group", "name is required", nil)
	}
	res, err := s.execWithRetry(ctx, `UPDATE user_groups SET name = ? WHERE id = ?`, name, groupID.String())
	if err != nil {
		return fmt.Errorf("rename group: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return services.Wrap(services.ErrNotFound, "store", "rename group", groupID.String(), nil)
	}
	return nil
}

// FindGroup returns the group with id, or nil when absent.
func (s *Store) FindGroup(ctx context.Context, id uuid.UUID) (*Group, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+groupColumns+` FROM user_groups WHERE id = ?`, id.String())
	group, err := scanGroup(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find group: %w", err)
	}
	return group, nil
}

// FindGroupByName returns the group with the exact name, or nil when absent.
func (s *Store) FindGroupByName(ctx context.Context, name string) (*Group, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+groupColumns+` FROM user_groups WHERE name = ?`, strings.TrimSpace(name))
	group, err := scanGroup(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find group by name: %w", err)
	}
	return group, nil
}

// ListGroups returns every group ordered by name.
func (s *Store) ListGroups(ctx context.Context) ([]Group, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+groupColumns+` FROM user_groups ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	defer rows.Close()

	var groups []Group
	for rows.Next() {
		group, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, *group)
	}
	return groups, rows.Err()
}

// AddMember adds a person to a group. Adding an existing member is a no-op.
// Requires an elevated context.
func (s *Store) AddMember(ctx context.Context, groupID, personID uuid.UUID) error {
	if err := privilege.Require(ctx, "add group member"); err != nil {
		return err
	}
	if _, err := s.execWithRetry(ctx,
		`INSERT OR IGNORE INTO group_members (group_id, person_id) VALUES (?, ?)`,
		groupID.String(), personID.String(),
	); err != nil {
		return fmt.Errorf("add group member: %w", err)
	}
	return nil
}

// RemoveMember removes a person from a group. Requires an elevated context.
func (s *Store) RemoveMember(ctx context.Context, groupID, personID uuid.UUID) error {
	if err := privilege.Require(ctx, "remove group member"); err != nil {
		return err
	}
	if _, err := s.execWithRetry(ctx,
		`DELETE FROM group_members WHERE group_id = ? AND person_id = ?`,
		groupID.String(), personID.String(),
	); err != nil {
		return fmt.Errorf("remove group member: %w", err)
	}
	return nil
}

// IsMember reports whether the person belongs to the group. Everyone is a member
// of the anonymous group.
func (s *Store) IsMember(ctx context.Context, personID, groupID uuid.UUID) (bool, error) {
	if groupID == AnonymousGroupID {
		return true, nil
	}
	var count int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM group_members WHERE group_id = ? AND person_id = ?`,
		groupID.String(), personID.String(),
	).Scan(&count); err != nil {
		return false, fmt.Errorf("check membership: %w", err)
	}
	return count > 0, nil
}

// GroupMembers returns the direct members of a group ordered by email.
func (s *Store) GroupMembers(ctx context.Context, groupID uuid.UUID) ([]Person, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT p.id, p.email, p.name FROM persons p
         JOIN group_members m ON m.person_id = p.id
         WHERE m.group_id = ?
         ORDER BY p.email`,
		groupID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("group members: %w", err)
	}
	defer rows.Close()
	return collectPersons(rows)
}

// GrantAdmin records that a person administers the repository at scope.
func (s *Store) GrantAdmin(ctx context.Context, personID uuid.UUID, scope AdminScope) error {
	if _, ok := ParseAdminScope(string(scope)); !ok {
		return services.Wrap(services.ErrValidation, "store", "grant admin", fmt.Sprintf("unknown scope %q", scope), nil)
	}
	if _, err := s.execWithRetry(ctx,
		`INSERT OR IGNORE INTO administrators (person_id, scope) VALUES (?, ?)`,
		personID.String(), string(scope),
	); err != nil {
		return fmt.Errorf("grant admin: %w", err)
	}
	return nil
}

// AdminScopes returns the administrator scopes held by a person.
func (s *Store) AdminScopes(ctx context.Context, personID uuid.UUID) ([]AdminScope, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT scope FROM administrators WHERE person_id = ? ORDER BY scope`, personID.String())
	if err != nil {
		return nil, fmt.Errorf("admin scopes: %w", err)
	}
	defer rows.Close()

	var scopes []AdminScope
	for rows.Next() {
		var scope string
		if err := rows.Scan(&scope); err != nil {
			return nil, err
		}
		scopes = append(scopes, AdminScope(scope))
	}
	return scopes, rows.Err()
}

// IsAdmin reports whether a person holds the given administrator scope.
func (s *Store) IsAdmin(ctx context.Context, personID uuid.UUID, scope AdminScope) (bool, error) {
	var count int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM administrators WHERE person_id = ? AND scope = ?`,
		personID.String(), string(scope),
	).Scan(&count); err != nil {
		return false, fmt.Errorf("check admin: %w", err)
	}
	return count > 0, nil
}
