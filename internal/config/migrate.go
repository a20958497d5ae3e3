package config

import "fmt"

// migrate upgrades a config from its stored version to CurrentVersion.
// Each migration function transforms the config one version forward.
// Returns an error if the config version is newer than this binary supports.
func migrate(cfg *Config) error {
	if cfg.Version == CurrentVersion {
		return nil
	}
	if cfg.Version > CurrentVersion {
		return fmt.Errorf(
			"%w: config version %d is newer than supported version %d (upgrade tasktracker)",
			ErrInvalid, cfg.Version, CurrentVersion,
		)
	}
	if cfg.Version < 0 {
		return fmt.Errorf("%w: config version %d is invalid", ErrInvalid, cfg.Version)
	}

	for cfg.Version < CurrentVersion {
		fn, ok := migrations[cfg.Version]
		if !ok {
			return fmt.Errorf("%w: no migration path from version %d", ErrInvalid, cfg.Version)
		}
		if err := fn(cfg); err != nil {
			return fmt.Errorf("migrating config from v%d: %w", cfg.Version, err)
		}
	}
	return nil
}

// migrations maps each version to the function that migrates it to the next version.
var migrations = map[int]func(*Config) error{
	0: migrateV0ToV1,
}

// migrateV0ToV1 handles hand-written files without a version key. Missing
// sections already hold defaults from NewDefault.
func migrateV0ToV1(cfg *Config) error { //nolint:unparam // signature must match migrations map type
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = DefaultBackend
	}
	cfg.Version = 1
	return nil
}
