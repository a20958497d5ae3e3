package store

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/twiced-technology-gmbh/tasktracker/internal/task"
)

const exportFileMode = 0o600

// ExportFilename names an export taken at t: notes-YYYY-MM-DD_HH-MM.json,
// in t's location.
func ExportFilename(t time.Time) string {
	return "notes-" + t.Format("2006-01-02") + "_" + t.Format("15-04") + ".json"
}

// Export writes the full sequence, in current order, as indented JSON.
// It does not change the Store.
func (s *Store) Export(w io.Writer) error {
	data, err := task.Encode(s.tasks)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}
	return nil
}

// ExportTo writes an export file into dir and returns its path.
func (s *Store) ExportTo(dir string) (string, error) {
	path := filepath.Join(dir, ExportFilename(s.now().Local()))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, exportFileMode) //nolint:gosec // user-chosen export dir
	if err != nil {
		return "", fmt.Errorf("creating export file: %w", err)
	}
	if err := s.Export(f); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing export file: %w", err)
	}
	return path, nil
}
