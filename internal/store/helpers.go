package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type rowScanner interface {
	Scan(dest ...any) error
}

const itemColumns = "id, submitter_id, title, step, status, created_at, updated_at"

func scanItem(scanner rowScanner) (*Item, error) {
	var (
		id         int64
		submitter  string
		title      sql.NullString
		step       sql.NullString
		statusStr  string
		createdRaw sql.NullString
		updatedRaw sql.NullString
	)
	if err := scanner.Scan(&id, &submitter, &title, &step, &statusStr, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}
	submitterID, err := uuid.Parse(submitter)
	if err != nil {
		return nil, fmt.Errorf("item %d submitter: %w", id, err)
	}
	item := &Item{
		ID:          id,
		SubmitterID: submitterID,
		Title:       title.String,
		Step:        step.String,
		Status:      Status(statusStr),
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		item.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		item.UpdatedAt = updated
	}
	return item, nil
}

const personColumns = "id, email, name"

func scanPerson(scanner rowScanner) (*Person, error) {
	var (
		rawID string
		email string
		name  sql.NullString
	)
	if err := scanner.Scan(&rawID, &email, &name); err != nil {
		return nil, err
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("person id %q: %w", rawID, err)
	}
	return &Person{ID: id, Email: email, Name: name.String}, nil
}

const groupColumns = "id, name, special"

func scanGroup(scanner rowScanner) (*Group, error) {
	var (
		rawID   string
		name    string
		special int
	)
	if err := scanner.Scan(&rawID, &name, &special); err != nil {
		return nil, err
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("group id %q: %w", rawID, err)
	}
	return &Group{ID: id, Name: name, Special: special != 0}, nil
}

const roleColumns = "id, item_id, role_id, person_id, group_id"

func scanRole(scanner rowScanner) (*RoleAssignment, error) {
	var (
		role     RoleAssignment
		personID sql.NullString
		groupID  sql.NullString
	)
	if err := scanner.Scan(&role.ID, &role.ItemID, &role.RoleID, &personID, &groupID); err != nil {
		return nil, err
	}
	var err error
	if role.PersonID, err = nullableUUIDPtr(personID); err != nil {
		return nil, fmt.Errorf("role %d person: %w", role.ID, err)
	}
	if role.GroupID, err = nullableUUIDPtr(groupID); err != nil {
		return nil, fmt.Errorf("role %d group: %w", role.ID, err)
	}
	return &role, nil
}

func nullableUUIDPtr(value sql.NullString) (*uuid.UUID, error) {
	if !value.Valid || value.String == "" {
		return nil, nil
	}
	id, err := uuid.Parse(value.String)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableUUID(value *uuid.UUID) any {
	if value == nil {
		return nil
	}
	return value.String()
}

func nowString() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
