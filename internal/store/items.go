package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"reviewflow/internal/services"
)

// CreateItem inserts a new active item owned by submitter. The item has no step
// until the workflow engine starts it.
func (s *Store) CreateItem(ctx context.Context, submitterID uuid.UUID, title string) (*Item, error) {
	if submitterID == uuid.Nil {
		return nil, services.Wrap(services.ErrValidation, "store", "create item", "submitter is required", nil)
	}
	timestamp := nowString()
	res, err := s.execWithRetry(ctx,
		`INSERT INTO workflow_items (submitter_id, title, step, status, created_at, updated_at)
         VALUES (?, ?, NULL, ?, ?, ?)`,
		submitterID.String(), nullableString(strings.TrimSpace(title)), StatusActive, timestamp, timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert item: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetItem(ctx, id)
}

// GetItem fetches an item by identifier, or nil when absent.
func (s *Store) GetItem(ctx context.Context, id int64) (*Item, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM workflow_items WHERE id = ?`, id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// UpdateItem persists the step, status, and title of an existing item.
func (s *Store) UpdateItem(ctx context.Context, item *Item) error {
	if item == nil {
		return errors.New("item is nil")
	}
	item.UpdatedAt = time.Now().UTC()
	if _, err := s.execWithRetry(ctx,
		`UPDATE workflow_items SET title = ?, step = ?, status = ?, updated_at = ? WHERE id = ?`,
		nullableString(item.Title), nullableString(item.Step), item.Status,
		item.UpdatedAt.Format(time.RFC3339Nano), item.ID,
	); err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

// TouchItem bumps the modification time of an item after metadata changes.
func (s *Store) TouchItem(ctx context.Context, itemID int64) error {
	if _, err := s.execWithRetry(ctx,
		`UPDATE workflow_items SET updated_at = ? WHERE id = ?`, nowString(), itemID,
	); err != nil {
		return fmt.Errorf("touch item: %w", err)
	}
	return nil
}

// ListItems returns items ordered by id, optionally filtered by status.
func (s *Store) ListItems(ctx context.Context, statuses ...Status) ([]*Item, error) {
	query := `SELECT ` + itemColumns + ` FROM workflow_items`
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		query += ` WHERE status IN (` + makePlaceholders(len(statuses)) + `)`
		for _, status := range statuses {
			args = append(args, status)
		}
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()
	return collectItems(rows)
}

// ActiveItemsBySubmitter returns the active items submitted by a person.
func (s *Store) ActiveItemsBySubmitter(ctx context.Context, personID uuid.UUID) ([]*Item, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM workflow_items WHERE submitter_id = ? AND status = ? ORDER BY id`,
		personID.String(), StatusActive,
	)
	if err != nil {
		return nil, fmt.Errorf("active items by submitter: %w", err)
	}
	defer rows.Close()
	return collectItems(rows)
}

func collectItems(rows *sql.Rows) ([]*Item, error) {
	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Stats returns a count of items grouped by status.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM workflow_items GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("item stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", count), ",")
}
