package backend

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/peterbourgon/diskv/v3"
)

const diskvTempDir = ".tmp"

// Diskv stores each key as a file in a single flat directory.
type Diskv struct {
	d        *diskv.Diskv
	basePath string
}

// OpenDiskv opens (creating if needed) a diskv store in dir.
func OpenDiskv(dir string) (*Diskv, error) {
	if err := ensureDir(dir); err != nil {
		return nil, err
	}
	return &Diskv{
		d: diskv.New(diskv.Options{
			BasePath:     dir,
			Transform:    flatTransform,
			TempDir:      filepath.Join(dir, diskvTempDir),
			CacheSizeMax: 0, // other processes write the same files
		}),
		basePath: dir,
	}, nil
}

func flatTransform(string) []string { return []string{} }

// Read implements Backend.
func (s *Diskv) Read(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	val, err := s.d.Read(key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotExist
		}
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	return val, nil
}

// Write implements Backend. Each file is replaced atomically; the batch as a
// whole is not.
func (s *Diskv) Write(ctx context.Context, entries ...Entry) error {
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.d.Write(e.Key, e.Value); err != nil {
			return fmt.Errorf("writing %s: %w", e.Key, err)
		}
	}
	return nil
}

// WatchPaths implements Backend.
func (s *Diskv) WatchPaths() []string {
	return []string{s.basePath}
}

// Close implements Backend.
func (s *Diskv) Close() error { return nil }
