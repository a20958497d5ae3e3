package backend

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io"
	"log"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

//go:embed migrations/*.sql
var migrations embed.FS

// SQLite stores keys as rows of a single kv table.
type SQLite struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens the database file at path and runs migrations.
func OpenSQLite(ctx context.Context, path string, logger Logger) (*SQLite, error) {
	if err := ensureDir(filepath.Dir(path)); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", sqliteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	if err := migrate(ctx, db, logger); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &SQLite{db: db, path: path}, nil
}

func migrate(ctx context.Context, db *sql.DB, logger Logger) error {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	goose.SetLogger(logger)
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting dialect: %w", err)
	}
	return goose.UpContext(ctx, db, "migrations")
}

func sqliteDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	u := url.URL{Scheme: "file", Path: path}
	q := u.Query()
	q.Set("mode", "rwc")
	q.Add("_pragma", "busy_timeout(5000)")
	q.Add("_pragma", "journal_mode(WAL)")
	u.RawQuery = q.Encode()
	return u.String()
}

// Read implements Backend.
func (s *SQLite) Read(ctx context.Context, key string) ([]byte, error) {
	var val []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&val)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotExist
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	return val, nil
}

// Write implements Backend. The batch is applied in one transaction.
func (s *SQLite) Write(ctx context.Context, entries ...Entry) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	return s.transaction(ctx, func(tx *sql.Tx) error {
		for _, e := range entries {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
				ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
				e.Key, e.Value, now)
			if err != nil {
				return fmt.Errorf("writing %s: %w", e.Key, err)
			}
		}
		return nil
	})
}

func (s *SQLite) transaction(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// WatchPaths implements Backend. The directory is watched rather than the
// file so WAL and journal updates are seen.
func (s *SQLite) WatchPaths() []string {
	return []string{filepath.Dir(s.path)}
}

// Close implements Backend.
func (s *SQLite) Close() error {
	return s.db.Close()
}
