package backend

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func openAll(t *testing.T) map[string]Backend {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()

	dv, err := Open(ctx, KindDiskv, filepath.Join(dir, "diskv"))
	if err != nil {
		t.Fatalf("open diskv: %v", err)
	}
	sq, err := Open(ctx, KindSQLite, filepath.Join(dir, "sqlite", "tasks.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		_ = dv.Close()
		_ = sq.Close()
	})
	return map[string]Backend{
		KindDiskv:  dv,
		KindSQLite: sq,
		"memory":   NewMemory(),
	}
}

func TestBackendReadWrite(t *testing.T) {
	ctx := context.Background()
	for name, b := range openAll(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := b.Read(ctx, "tasks"); !errors.Is(err, ErrNotExist) {
				t.Fatalf("missing key: got %v, want ErrNotExist", err)
			}

			err := b.Write(ctx,
				Entry{Key: "tasks", Value: []byte(`[{"id":1}]`)},
				Entry{Key: "state", Value: []byte(`{"next_id":2}`)},
			)
			if err != nil {
				t.Fatalf("write: %v", err)
			}

			got, err := b.Read(ctx, "tasks")
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if !bytes.Equal(got, []byte(`[{"id":1}]`)) {
				t.Fatalf("read %q", got)
			}

			if err := b.Write(ctx, Entry{Key: "tasks", Value: []byte(`[]`)}); err != nil {
				t.Fatalf("overwrite: %v", err)
			}
			got, _ = b.Read(ctx, "tasks")
			if string(got) != `[]` {
				t.Fatalf("overwrite not visible, read %q", got)
			}
			state, _ := b.Read(ctx, "state")
			if string(state) != `{"next_id":2}` {
				t.Fatalf("unrelated key changed: %q", state)
			}
		})
	}
}

func TestSQLiteReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tasks.db")

	first, err := OpenSQLite(ctx, path, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := first.Write(ctx, Entry{Key: "tasks", Value: []byte("x")}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Migrations must be idempotent across opens.
	second, err := OpenSQLite(ctx, path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()

	got, err := second.Read(ctx, "tasks")
	if err != nil || string(got) != "x" {
		t.Fatalf("read after reopen = %q, %v", got, err)
	}
}

func TestOpenUnknownKind(t *testing.T) {
	if _, err := Open(context.Background(), "redis", t.TempDir()); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestMemoryFailWrites(t *testing.T) {
	m := NewMemory()
	m.FailWrites = errors.New("disk full")
	if err := m.Write(context.Background(), Entry{Key: "k", Value: []byte("v")}); err == nil {
		t.Fatal("expected injected failure")
	}
	if _, err := m.Read(context.Background(), "k"); !errors.Is(err, ErrNotExist) {
		t.Fatalf("failed write must not store, got %v", err)
	}
}

func TestWatchPaths(t *testing.T) {
	dir := t.TempDir()
	d, err := OpenDiskv(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if p := d.WatchPaths(); len(p) != 1 || p[0] != dir {
		t.Fatalf("diskv watch paths = %v", p)
	}
}
