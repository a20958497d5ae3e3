package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func startWatcher(t *testing.T, dir string) (*atomic.Int32, context.CancelFunc) {
	t.Helper()
	var calls atomic.Int32
	w, err := New([]string{dir}, func() { calls.Add(1) }, WithDebounce(50*time.Millisecond))
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	go w.Run(ctx, nil)
	t.Cleanup(func() {
		cancel()
		_ = w.Close()
	})
	return &calls, cancel
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for !cond() {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for watcher callback")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestWatcherDebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	calls, _ := startWatcher(t, dir)

	for i := range 5 {
		data := []byte{byte('0' + i)}
		if err := os.WriteFile(filepath.Join(dir, "tasks"), data, 0o600); err != nil {
			t.Fatal(err)
		}
	}

	waitFor(t, func() bool { return calls.Load() > 0 })
	time.Sleep(200 * time.Millisecond)
	if n := calls.Load(); n != 1 {
		t.Fatalf("callback ran %d times, want 1", n)
	}
}

func TestWatcherIgnoresHiddenFiles(t *testing.T) {
	dir := t.TempDir()
	calls, _ := startWatcher(t, dir)

	if err := os.WriteFile(filepath.Join(dir, ".lock"), nil, 0o600); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)
	if n := calls.Load(); n != 0 {
		t.Fatalf("hidden file triggered %d callbacks", n)
	}
}

func TestNewFailsOnMissingPath(t *testing.T) {
	if _, err := New([]string{filepath.Join(t.TempDir(), "missing")}, func() {}); err == nil {
		t.Fatal("expected error for missing path")
	}
}
