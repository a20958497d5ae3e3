package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/twiced-technology-gmbh/tasktracker/internal/clierr"
)

func TestInitAndLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), DefaultDir)

	cfg, err := Init(dir)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if cfg.StoragePath() != filepath.Join(dir, DefaultStoragePath) {
		t.Fatalf("StoragePath = %s", cfg.StoragePath())
	}

	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Storage.Backend != DefaultBackend || loaded.TickInterval() != time.Minute {
		t.Fatalf("loaded = %+v", loaded)
	}

	if _, err := Init(dir); !clierr.Is(err, clierr.AlreadyInitialized) {
		t.Fatalf("second init: expected ALREADY_INITIALIZED, got %v", err)
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load(t.TempDir()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	data := "version: 1\nstorage:\n  backend: sqlite\n  path: tasks.db\ncountdown:\n  tick_interval: 30s\n"
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(data), fileMode); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Storage.Backend != "sqlite" || cfg.TickInterval() != 30*time.Second {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.Log.Level != DefaultLogLevel || cfg.View.Filter != DefaultFilter {
		t.Fatalf("defaults lost: %+v", cfg)
	}
}

func TestLoadMigratesUnversionedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	if err := os.WriteFile(path, []byte("view:\n  hide_completed: true\n"), fileMode); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Version != CurrentVersion || !cfg.View.HideCompleted {
		t.Fatalf("cfg = %+v", cfg)
	}
	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "version: 1") {
		t.Fatalf("migrated config not saved:\n%s", data)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"future version", func(c *Config) { c.Version = 99 }},
		{"unknown backend", func(c *Config) { c.Storage.Backend = "redis" }},
		{"empty path", func(c *Config) { c.Storage.Path = "" }},
		{"bad filter", func(c *Config) { c.View.Filter = "urgent" }},
		{"bad format", func(c *Config) { c.View.Format = "yaml" }},
		{"tiny tick", func(c *Config) { c.Countdown.TickInterval = time.Millisecond }},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefault()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Fatalf("expected ErrInvalid, got %v", err)
			}
		})
	}

	if err := NewDefault().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestFindDir(t *testing.T) {
	root := t.TempDir()
	if _, err := Init(filepath.Join(root, DefaultDir)); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, dirMode); err != nil {
		t.Fatal(err)
	}

	want := filepath.Join(root, DefaultDir)
	for _, start := range []string{root, nested, want} {
		got, err := FindDir(start)
		if err != nil {
			t.Fatalf("FindDir(%s): %v", start, err)
		}
		if got != want {
			t.Fatalf("FindDir(%s) = %s, want %s", start, got, want)
		}
	}
}

func TestPathResolution(t *testing.T) {
	cfg := NewDefault()
	cfg.SetDir("/data")
	cfg.Storage.Path = "/abs/tasks.db"
	if cfg.StoragePath() != "/abs/tasks.db" {
		t.Fatalf("absolute path rewritten: %s", cfg.StoragePath())
	}

	home, err := GlobalDirPath()
	if err != nil {
		t.Fatalf("GlobalDirPath: %v", err)
	}
	if strings.HasPrefix(home, "~") {
		t.Fatalf("home not expanded: %s", home)
	}

	cfg.Export.Dir = "~/exports"
	if strings.HasPrefix(cfg.ExportDir(), "~") {
		t.Fatalf("export dir not expanded: %s", cfg.ExportDir())
	}
}

func TestGetSet(t *testing.T) {
	cfg := NewDefault()

	if err := cfg.Set("storage.backend", "sqlite"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if v, _ := cfg.Get("storage.backend"); v != "sqlite" {
		t.Fatalf("get = %v", v)
	}
	if cfg.Storage.Path != DefaultSQLitePath {
		t.Fatalf("default path did not follow the backend: %s", cfg.Storage.Path)
	}
	if err := cfg.Set("countdown.tick_interval", "5m"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if cfg.TickInterval() != 5*time.Minute {
		t.Fatalf("tick = %v", cfg.TickInterval())
	}
	if err := cfg.Set("view.hide_completed", "true"); err != nil || !cfg.View.HideCompleted {
		t.Fatalf("hide_completed: %v %v", err, cfg.View.HideCompleted)
	}

	if err := cfg.Set("view.format", "compact"); err != nil || cfg.View.Format != "compact" {
		t.Fatalf("format: %v %q", err, cfg.View.Format)
	}
	if err := cfg.Set("view.format", "yaml"); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for yaml, got %v", err)
	}

	if err := cfg.Set("storage.backend", "redis"); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	if cfg.Storage.Backend != "sqlite" {
		t.Fatal("rejected set changed the config")
	}
	if _, err := cfg.Get("nope"); !clierr.Is(err, clierr.InvalidInput) {
		t.Fatalf("unknown key: %v", err)
	}
}
