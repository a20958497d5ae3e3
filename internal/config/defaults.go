// Package config handles tasktracker configuration.
package config

import "time"

const (
	// DefaultDir is the name of a project-local data directory.
	DefaultDir = ".tasktracker"
	// GlobalDir is the fallback data directory when no project-local one exists.
	GlobalDir = "~/.config/tasktracker"

	// ConfigFileName is the name of the config file within the data directory.
	ConfigFileName = "config.yml"

	// CurrentVersion is the current config schema version.
	CurrentVersion = 1

	// DefaultBackend is the storage backend for new data directories.
	DefaultBackend = "diskv"
	// DefaultStoragePath is where the backend keeps its data, relative to the data directory.
	DefaultStoragePath = "data"
	// DefaultSQLitePath is the database file used when the backend is sqlite.
	DefaultSQLitePath = "tasks.db"
	// DefaultFilter is the initial status filter.
	DefaultFilter = "all"
	// DefaultTickInterval is how often deadline countdowns refresh.
	DefaultTickInterval = time.Minute
	// DefaultExportDir is where exports land, relative to the working directory.
	DefaultExportDir = "."
	// DefaultLogLevel is the logrus level used when none is configured.
	DefaultLogLevel = "warn"
)
