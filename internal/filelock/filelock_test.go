package filelock

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func TestLockExcludesOthers(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)

	unlock, err := Lock(path)
	if err != nil {
		t.Fatalf("lock: %v", err)
	}

	if _, ok, err := TryLock(path); err != nil || ok {
		t.Fatalf("TryLock while held = %v, %v", ok, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := LockContext(ctx, path); !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}

	if err := unlock(); err != nil {
		t.Fatalf("unlock: %v", err)
	}

	again, ok, err := TryLock(path)
	if err != nil || !ok {
		t.Fatalf("TryLock after release = %v, %v", ok, err)
	}
	_ = again()
}

func TestLockContextAcquiresWhenReleased(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	unlock, err := Lock(path)
	if err != nil {
		t.Fatalf("lock: %v", err)
	}

	go func() {
		time.Sleep(30 * time.Millisecond)
		_ = unlock()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	second, err := LockContext(ctx, path)
	if err != nil {
		t.Fatalf("LockContext: %v", err)
	}
	_ = second()
}
