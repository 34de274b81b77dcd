// Package dirlock implements the single advisory exclusive lock the driver
// must hold for the full duration of a merge/remove operation (spec §5):
// backup -> load -> merge/remove -> commit -> service restarts. It wraps
// github.com/gofrs/flock, a file-backed advisory lock usable across
// separate processes (an in-process sync.Mutex would not serialize two
// separate invocations of the tool against the same liveDir).
package dirlock

import (
	"context"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/sineer/routerconf/errs"
)

// DefaultTimeout is the spec default LockTimeout (spec §5).
const DefaultTimeout = 5 * time.Second

// Lock guards a configuration directory with an advisory exclusive lock at
// "<liveDir>/.lock".
type Lock struct {
	fl *flock.Flock
}

// New returns a Lock for liveDir. The lock file itself is not created until
// Acquire is called.
func New(liveDir string) *Lock {
	return &Lock{fl: flock.New(filepath.Join(liveDir, ".lock"))}
}

// Acquire attempts to take the exclusive lock, retrying until timeout
// elapses or ctx is cancelled. If the lock cannot be acquired within
// timeout, it fails with errs.KindBusy (no blocking wait longer than
// timeout). A timeout <= 0 uses DefaultTimeout.
func (l *Lock) Acquire(ctx context.Context, timeout time.Duration) error {
	const op = "dirlock.Acquire"
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	deadline := time.Now().Add(timeout)
	lockCtx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	ok, err := l.fl.TryLockContext(lockCtx, 25*time.Millisecond)
	if err != nil {
		if ctx.Err() != nil {
			return errs.New(errs.KindCancelled, op, ctx.Err())
		}
		return errs.New(errs.KindBusy, op, err)
	}
	if !ok {
		return errs.Newf(errs.KindBusy, op, "could not acquire lock on %s within %s", l.fl.Path(), timeout)
	}
	return nil
}

// Release drops the lock. It is safe to call even if Acquire never
// succeeded.
func (l *Lock) Release() error {
	const op = "dirlock.Release"
	if !l.fl.Locked() {
		return nil
	}
	if err := l.fl.Unlock(); err != nil {
		return errs.New(errs.KindIO, op, err)
	}
	return nil
}
