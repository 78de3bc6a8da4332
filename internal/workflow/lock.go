package workflow

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gofrs/flock"

	"reviewflow/internal/logging"
	"reviewflow/internal/services"
)

const lockRetryDelay = 25 * time.Millisecond

// lockItem takes the per-item execution lock, waiting up to the configured
// timeout. The returned function releases it.
func (e *Engine) lockItem(ctx context.Context, itemID int64) (func(), error) {
	if e.lockDir == "" {
		return func() {}, nil
	}
	if err := os.MkdirAll(e.lockDir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock dir: %w", err)
	}
	path := filepath.Join(e.lockDir, "item-"+strconv.FormatInt(itemID, 10)+".lock")
	lock := flock.New(path)

	var (
		ok  bool
		err error
	)
	if e.lockTimeout <= 0 {
		ok, err = lock.TryLock()
	} else {
		waitCtx, cancel := context.WithTimeout(ctx, e.lockTimeout)
		defer cancel()
		ok, err = lock.TryLockContext(waitCtx, lockRetryDelay)
	}
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return nil, fmt.Errorf("acquire item lock: %w", err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrConflict, "workflow", "lock item",
			fmt.Sprintf("item %d is being processed by another request", itemID), nil)
	}
	return func() {
		if err := lock.Unlock(); err != nil {
			e.logger.Warn("failed to release item lock", logging.String("lock", path), logging.Error(err))
		}
	}, nil
}
