// Package backend provides the durable key-value stores the task list is
// persisted in.
package backend

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// ErrNotExist is returned by Read for a key that was never written.
var ErrNotExist = errors.New("key does not exist")

// Supported backend kinds.
const (
	KindDiskv  = "diskv"
	KindSQLite = "sqlite"
)

// Kinds lists the configurable backend kinds.
var Kinds = []string{KindDiskv, KindSQLite}

const dirMode = 0o750

// Entry is one key-value pair in a write.
type Entry struct {
	Key   string
	Value []byte
}

// Backend is a small key-value store. Implementations need not be safe for
// concurrent use.
type Backend interface {
	// Read returns the value for key, or ErrNotExist.
	Read(ctx context.Context, key string) ([]byte, error)
	// Write stores every entry. Backends that can do so apply the whole
	// batch atomically.
	Write(ctx context.Context, entries ...Entry) error
	// WatchPaths returns filesystem paths whose changes signal that another
	// process wrote to the store.
	WatchPaths() []string
	Close() error
}

// Open creates the backend of the given kind rooted at path. For diskv the
// path is a directory; for sqlite it is the database file.
func Open(ctx context.Context, kind, path string, opts ...Option) (Backend, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	switch kind {
	case KindDiskv, "":
		return OpenDiskv(path)
	case KindSQLite:
		return OpenSQLite(ctx, path, o.logger)
	}
	return nil, fmt.Errorf("unknown storage backend %q", kind)
}

// Option configures Open.
type Option func(*options)

type options struct {
	logger Logger
}

// Logger receives migration progress. *logrus.Logger and *logrus.Entry
// satisfy it.
type Logger interface {
	Printf(format string, args ...any)
	Fatalf(format string, args ...any)
}

// WithLogger routes migration output to l instead of discarding it.
func WithLogger(l Logger) Option {
	return func(o *options) { o.logger = l }
}

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return fmt.Errorf("creating storage directory: %w", err)
	}
	return nil
}
