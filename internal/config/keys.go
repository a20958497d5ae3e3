package config

import (
	"strconv"
	"time"

	"github.com/twiced-technology-gmbh/tasktracker/internal/clierr"
)

// accessor describes how to get and set a config key.
type accessor struct {
	get func(*Config) any
	set func(*Config, string) error
}

var accessors = map[string]accessor{
	"version": {
		get: func(c *Config) any { return c.Version },
	},
	"storage.backend": {
		get: func(c *Config) any { return c.Storage.Backend },
		set: setBackend,
	},
	"storage.path": {
		get: func(c *Config) any { return c.Storage.Path },
		set: func(c *Config, v string) error { c.Storage.Path = v; return nil },
	},
	"view.filter": {
		get: func(c *Config) any { return c.View.Filter },
		set: func(c *Config, v string) error { c.View.Filter = v; return nil },
	},
	"view.hide_completed": {
		get: func(c *Config) any { return c.View.HideCompleted },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return clierr.Newf(clierr.InvalidInput, "invalid view.hide_completed %q: must be true or false", v)
			}
			c.View.HideCompleted = b
			return nil
		},
	},
	"view.format": {
		get: func(c *Config) any { return c.View.Format },
		set: func(c *Config, v string) error { c.View.Format = v; return nil },
	},
	"countdown.tick_interval": {
		get: func(c *Config) any { return c.Countdown.TickInterval.String() },
		set: func(c *Config, v string) error {
			d, err := time.ParseDuration(v)
			if err != nil {
				return clierr.Newf(clierr.InvalidInput, "invalid countdown.tick_interval %q: %v", v, err)
			}
			c.Countdown.TickInterval = d
			return nil
		},
	},
	"export.dir": {
		get: func(c *Config) any { return c.Export.Dir },
		set: func(c *Config, v string) error { c.Export.Dir = v; return nil },
	},
	"log.level": {
		get: func(c *Config) any { return c.Log.Level },
		set: func(c *Config, v string) error { c.Log.Level = v; return nil },
	},
	"log.file": {
		get: func(c *Config) any { return c.Log.File },
		set: func(c *Config, v string) error { c.Log.File = v; return nil },
	},
}

// setBackend switches the backend kind. A path still at the other kind's
// default follows the switch, since diskv wants a directory and sqlite a file.
func setBackend(c *Config, v string) error {
	switch {
	case v == "sqlite" && c.Storage.Path == DefaultStoragePath:
		c.Storage.Path = DefaultSQLitePath
	case v == "diskv" && c.Storage.Path == DefaultSQLitePath:
		c.Storage.Path = DefaultStoragePath
	}
	c.Storage.Backend = v
	return nil
}

// Keys returns config keys in display order.
func Keys() []string {
	return []string{
		"version",
		"storage.backend",
		"storage.path",
		"view.filter",
		"view.hide_completed",
		"view.format",
		"countdown.tick_interval",
		"export.dir",
		"log.level",
		"log.file",
	}
}

// Get returns the value of a config key.
func (c *Config) Get(key string) (any, error) {
	acc, ok := accessors[key]
	if !ok {
		return nil, clierr.Newf(clierr.InvalidInput, "unknown config key %q", key)
	}
	return acc.get(c), nil
}

// Set assigns a config key and validates the result. On failure the config
// is left unchanged.
func (c *Config) Set(key, value string) error {
	acc, ok := accessors[key]
	if !ok {
		return clierr.Newf(clierr.InvalidInput, "unknown config key %q", key)
	}
	if acc.set == nil {
		return clierr.Newf(clierr.InvalidInput, "config key %q is read-only", key)
	}

	prev := *c
	if err := acc.set(c, value); err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		*c = prev
		return err
	}
	return nil
}
