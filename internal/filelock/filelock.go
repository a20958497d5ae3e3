// Package filelock provides advisory file locking for serializing
// read-modify-write cycles on the task store across processes.
package filelock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/flock"
)

// FileName is the lock file name inside the data directory.
const FileName = ".lock"

const retryDelay = 20 * time.Millisecond

// ErrTimeout is returned by LockContext when the context ends before the
// lock is acquired.
var ErrTimeout = errors.New("timed out waiting for the task store lock")

// Lock acquires an exclusive advisory lock on the file at path,
// creating it if it does not exist. The returned function releases
// the lock and must be called when the critical section is done.
//
// Only one process can hold the lock at a time; other callers block
// until the lock is available.
func Lock(path string) (unlock func() error, err error) {
	fl := flock.New(path)
	if err := fl.Lock(); err != nil {
		return nil, fmt.Errorf("locking %s: %w", path, err)
	}
	return fl.Unlock, nil
}

// LockContext is Lock with a deadline: it polls until the lock is free or
// ctx is done.
func LockContext(ctx context.Context, path string) (unlock func() error, err error) {
	fl := flock.New(path)
	locked, err := fl.TryLockContext(ctx, retryDelay)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ErrTimeout
		}
		return nil, fmt.Errorf("locking %s: %w", path, err)
	}
	if !locked {
		return nil, ErrTimeout
	}
	return fl.Unlock, nil
}

// TryLock acquires the lock only if it is free right now. The second
// result is false when another holder has it.
func TryLock(path string) (unlock func() error, ok bool, err error) {
	fl := flock.New(path)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, false, fmt.Errorf("locking %s: %w", path, err)
	}
	if !locked {
		return nil, false, nil
	}
	return fl.Unlock, true, nil
}
