package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"reviewflow/internal/config"
)

// Store manages reviewflow persistence backed by SQLite.
type Store struct {
	db    *sql.DB
	path  string
	retry busyRetry
}

// connectionPragmas are applied by the driver to every pooled connection.
var connectionPragmas = []string{
	"journal_mode(WAL)",
	"foreign_keys(1)",
	"busy_timeout(5000)",
}

// Open initializes or connects to the reviewflow database.
func Open(cfg *config.Config) (*Store, error) {
	if cfg == nil {
		return nil, errors.New("open store: config is nil")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.DatabasePath()
	db, err := sql.Open("sqlite", dataSourceName(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect sqlite db %s: %w", dbPath, err)
	}

	store := &Store{db: db, path: dbPath, retry: defaultBusyRetry}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func dataSourceName(path string) string {
	query := url.Values{"_pragma": connectionPragmas}
	return "file:" + path + "?" + query.Encode()
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

// busyRetry bounds how long a write waits out SQLITE_BUSY from a concurrent
// writer beyond the driver's busy_timeout.
type busyRetry struct {
	attempts int
	initial  time.Duration
	ceiling  time.Duration
}

var defaultBusyRetry = busyRetry{attempts: 5, initial: 10 * time.Millisecond, ceiling: 200 * time.Millisecond}

const sqliteBusyCode = 5

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) {
		return coder.Code()&0xff == sqliteBusyCode
	}
	return strings.Contains(err.Error(), "database is locked")
}

func (r busyRetry) do(ctx context.Context, op func() error) error {
	wait := r.initial
	for attempt := 1; ; attempt++ {
		err := op()
		if err == nil || !isSQLiteBusy(err) || attempt >= r.attempts {
			return err
		}
		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
		wait = min(wait*2, r.ceiling)
	}
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ctx = ensureContext(ctx)
	var res sql.Result
	err := s.retry.do(ctx, func() error {
		var execErr error
		res, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	})
	return res, err
}

// withTx runs fn inside a transaction, retrying the whole unit on SQLITE_BUSY.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	ctx = ensureContext(ctx)
	return s.retry.do(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if err := fn(tx); err != nil {
			_ = tx.Rollback()
			return err
		}
		return tx.Commit()
	})
}
