package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// RecordCompletion marks that a person finished a step on an item. Recording the
// same completion twice is a no-op.
func (s *Store) RecordCompletion(ctx context.Context, itemID int64, step string, personID uuid.UUID) error {
	if _, err := s.execWithRetry(ctx,
		`INSERT OR IGNORE INTO step_completions (item_id, step, person_id, completed_at) VALUES (?, ?, ?, ?)`,
		itemID, step, personID.String(), nowString(),
	); err != nil {
		return fmt.Errorf("record completion: %w", err)
	}
	return nil
}

// Completions returns the people who finished a step on an item.
func (s *Store) Completions(ctx context.Context, itemID int64, step string) ([]uuid.UUID, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT person_id FROM step_completions WHERE item_id = ? AND step = ? ORDER BY completed_at`,
		itemID, step)
	if err != nil {
		return nil, fmt.Errorf("completions: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("completion person %q: %w", raw, err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ClearCompletions removes the completion records of an item.
func (s *Store) ClearCompletions(ctx context.Context, itemID int64) error {
	if _, err := s.execWithRetry(ctx, `DELETE FROM step_completions WHERE item_id = ?`, itemID); err != nil {
		return fmt.Errorf("clear completions: %w", err)
	}
	return nil
}
