package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"golang.org/x/text/language"

	"reviewflow/internal/metadata"
	"reviewflow/internal/privilege"
	"reviewflow/internal/services"
)

// GetMetadata returns the values of field on an item in insertion order. Pass
// metadata.AnyLanguage to ignore language tags; any other value matches the
// canonical form of that tag, with "" matching untagged values.
func (s *Store) GetMetadata(ctx context.Context, itemID int64, field metadata.Field, lang string) ([]string, error) {
	query := `SELECT value FROM metadata_values
              WHERE item_id = ? AND schema_name = ? AND element = ? AND qualifier = ?`
	args := []any{itemID, field.Schema, field.Element, field.Qualifier}
	if lang != metadata.AnyLanguage {
		canonical, err := canonicalLanguage(lang)
		if err != nil {
			return nil, err
		}
		query += ` AND language = ?`
		args = append(args, canonical)
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get metadata %s: %w", field, err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, err
		}
		values = append(values, value)
	}
	return values, rows.Err()
}

// AddMetadata appends values to field on an item. Provenance notes require an
// elevated context.
func (s *Store) AddMetadata(ctx context.Context, itemID int64, field metadata.Field, lang string, values ...string) error {
	if field == metadata.Provenance {
		if err := privilege.Require(ctx, "add provenance"); err != nil {
			return err
		}
	}
	if len(values) == 0 {
		return nil
	}
	canonical, err := canonicalLanguage(lang)
	if err != nil {
		return err
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, value := range values {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO metadata_values (item_id, schema_name, element, qualifier, language, value)
                 VALUES (?, ?, ?, ?, ?, ?)`,
				itemID, field.Schema, field.Element, field.Qualifier, canonical, value,
			); err != nil {
				return fmt.Errorf("add metadata %s: %w", field, err)
			}
		}
		return nil
	})
}

// ClearMetadata removes the values of field on an item. Language follows the
// same matching rules as GetMetadata.
func (s *Store) ClearMetadata(ctx context.Context, itemID int64, field metadata.Field, lang string) error {
	query := `DELETE FROM metadata_values
              WHERE item_id = ? AND schema_name = ? AND element = ? AND qualifier = ?`
	args := []any{itemID, field.Schema, field.Element, field.Qualifier}
	if lang != metadata.AnyLanguage {
		canonical, err := canonicalLanguage(lang)
		if err != nil {
			return err
		}
		query += ` AND language = ?`
		args = append(args, canonical)
	}
	if _, err := s.execWithRetry(ctx, query, args...); err != nil {
		return fmt.Errorf("clear metadata %s: %w", field, err)
	}
	return nil
}

// ListMetadata returns every metadata value on an item in insertion order.
func (s *Store) ListMetadata(ctx context.Context, itemID int64) ([]MetadataValue, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT schema_name, element, qualifier, language, value FROM metadata_values
         WHERE item_id = ? ORDER BY id`, itemID)
	if err != nil {
		return nil, fmt.Errorf("list metadata: %w", err)
	}
	defer rows.Close()

	var values []MetadataValue
	for rows.Next() {
		var field metadata.Field
		var entry MetadataValue
		if err := rows.Scan(&field.Schema, &field.Element, &field.Qualifier, &entry.Language, &entry.Value); err != nil {
			return nil, err
		}
		entry.Field = field.String()
		values = append(values, entry)
	}
	return values, rows.Err()
}

func canonicalLanguage(lang string) (string, error) {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return "", nil
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "store", "metadata language", fmt.Sprintf("invalid tag %q", lang), err)
	}
	return tag.String(), nil
}
