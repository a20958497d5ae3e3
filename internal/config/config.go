package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/mitchellh/go-homedir"
	log "github.com/sirupsen/logrus"
	"go.yaml.in/yaml/v3"

	"github.com/twiced-technology-gmbh/tasktracker/internal/backend"
	"github.com/twiced-technology-gmbh/tasktracker/internal/board"
	"github.com/twiced-technology-gmbh/tasktracker/internal/clierr"
	"github.com/twiced-technology-gmbh/tasktracker/internal/output"
)

const (
	fileMode = 0o600
	dirMode  = 0o750
)

// Sentinel errors.
var (
	ErrNotFound = errors.New("no tasktracker directory found (run 'tasktracker init' to create one)")
	ErrInvalid  = errors.New("invalid config")
)

// Config represents the tasktracker configuration.
type Config struct {
	Version   int             `yaml:"version"`
	Storage   StorageConfig   `yaml:"storage"`
	View      ViewConfig      `yaml:"view"`
	Countdown CountdownConfig `yaml:"countdown"`
	Export    ExportConfig    `yaml:"export"`
	Log       LogConfig       `yaml:"log"`

	// dir is the absolute path to the data directory (not serialized).
	dir string `yaml:"-"`
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
}

// ViewConfig holds the initial list view.
type ViewConfig struct {
	Filter        string `yaml:"filter"`
	HideCompleted bool   `yaml:"hide_completed"`
	Format        string `yaml:"format,omitempty"` // table, json or compact
}

// CountdownConfig controls countdown refresh.
type CountdownConfig struct {
	TickInterval time.Duration `yaml:"tick_interval"`
}

// ExportConfig holds export defaults.
type ExportConfig struct {
	Dir string `yaml:"dir"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file,omitempty"`
}

// NewDefault creates a Config with default values.
func NewDefault() *Config {
	return &Config{
		Version:   CurrentVersion,
		Storage:   StorageConfig{Backend: DefaultBackend, Path: DefaultStoragePath},
		View:      ViewConfig{Filter: DefaultFilter},
		Countdown: CountdownConfig{TickInterval: DefaultTickInterval},
		Export:    ExportConfig{Dir: DefaultExportDir},
		Log:       LogConfig{Level: DefaultLogLevel},
	}
}

// Dir returns the absolute path to the data directory.
func (c *Config) Dir() string {
	return c.dir
}

// SetDir sets the data directory path on the config.
func (c *Config) SetDir(dir string) {
	c.dir = dir
}

// ConfigPath returns the absolute path to the config file.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.dir, ConfigFileName)
}

// StoragePath returns the backend location. Relative paths are resolved
// against the data directory.
func (c *Config) StoragePath() string {
	return c.resolve(c.Storage.Path, c.dir)
}

// ExportDir returns the export directory. Relative paths are resolved
// against the working directory.
func (c *Config) ExportDir() string {
	return c.resolve(c.Export.Dir, "")
}

// LogFile returns the configured log file path, or "".
func (c *Config) LogFile() string {
	if c.Log.File == "" {
		return ""
	}
	return c.resolve(c.Log.File, c.dir)
}

// LogLevel returns the parsed log level.
func (c *Config) LogLevel() log.Level {
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.WarnLevel
	}
	return lvl
}

// TickInterval returns the countdown refresh interval.
func (c *Config) TickInterval() time.Duration {
	if c.Countdown.TickInterval <= 0 {
		return DefaultTickInterval
	}
	return c.Countdown.TickInterval
}

// InitialFilter returns the configured status filter.
func (c *Config) InitialFilter() board.StatusFilter {
	f, err := board.ParseStatusFilter(c.View.Filter)
	if err != nil {
		return board.StatusAll
	}
	return f
}

func (c *Config) resolve(p, base string) string {
	expanded, err := homedir.Expand(p)
	if err == nil {
		p = expanded
	}
	if filepath.IsAbs(p) || base == "" {
		return p
	}
	return filepath.Join(base, p)
}

// Validate checks the config for errors.
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return fmt.Errorf("%w: unsupported version %d (expected %d)", ErrInvalid, c.Version, CurrentVersion)
	}
	if !slices.Contains(backend.Kinds, c.Storage.Backend) {
		return fmt.Errorf("%w: storage.backend must be one of %v, got %q", ErrInvalid, backend.Kinds, c.Storage.Backend)
	}
	if c.Storage.Path == "" {
		return fmt.Errorf("%w: storage.path is required", ErrInvalid)
	}
	if _, err := board.ParseStatusFilter(c.View.Filter); err != nil {
		return fmt.Errorf("%w: view.filter %q is not a status filter", ErrInvalid, c.View.Filter)
	}
	if _, err := output.ParseFormat(c.View.Format); err != nil {
		return fmt.Errorf("%w: view.format: %w", ErrInvalid, err)
	}
	if c.Countdown.TickInterval < time.Second {
		return fmt.Errorf("%w: countdown.tick_interval must be at least 1s", ErrInvalid)
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %w", ErrInvalid, err)
	}
	return nil
}

// Init creates a data directory in dir with default settings.
func Init(dir string) (*Config, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	if _, err := os.Stat(filepath.Join(absDir, ConfigFileName)); err == nil {
		return nil, clierr.New(clierr.AlreadyInitialized,
			"tasktracker directory already exists: "+absDir).
			WithDetails(map[string]any{"dir": absDir})
	}

	cfg := NewDefault()
	cfg.SetDir(absDir)

	if err := os.MkdirAll(absDir, dirMode); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	if err := cfg.Save(); err != nil {
		return nil, fmt.Errorf("writing config: %w", err)
	}
	return cfg, nil
}

// Save writes the config to its config file.
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(c.ConfigPath(), data, fileMode)
}

// Load reads and validates a config from the given data directory.
func Load(dir string) (*Config, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	data, err := os.ReadFile(filepath.Join(absDir, ConfigFileName)) //nolint:gosec // config path from trusted source
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Unset fields keep their defaults.
	cfg := NewDefault()
	cfg.Version = 0
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.dir = absDir

	oldVersion := cfg.Version
	if err := migrate(cfg); err != nil {
		return nil, err
	}
	if cfg.Version != oldVersion {
		if err := cfg.Save(); err != nil {
			return nil, fmt.Errorf("saving migrated config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrInit loads the config in dir, creating a default one when absent.
func LoadOrInit(dir string) (*Config, error) {
	cfg, err := Load(dir)
	if errors.Is(err, ErrNotFound) {
		return Init(dir)
	}
	return cfg, err
}

// FindDir walks upward from startDir looking for a .tasktracker directory
// containing config.yml. Returns the absolute path to that directory.
func FindDir(startDir string) (string, error) {
	absStart, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	dir := absStart
	for {
		candidate := filepath.Join(dir, DefaultDir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return filepath.Join(dir, DefaultDir), nil
		}

		// Also check if we're inside the data directory itself.
		if filepath.Base(dir) == DefaultDir {
			if _, err := os.Stat(filepath.Join(dir, ConfigFileName)); err == nil {
				return dir, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", clierr.New(clierr.ConfigNotFound,
				"no tasktracker directory found (run 'tasktracker init' to create one)")
		}
		dir = parent
	}
}

// GlobalDirPath returns the expanded fallback data directory.
func GlobalDirPath() (string, error) {
	p, err := homedir.Expand(GlobalDir)
	if err != nil {
		return "", fmt.Errorf("expanding %s: %w", GlobalDir, err)
	}
	return p, nil
}
