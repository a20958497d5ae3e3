package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/twiced-technology-gmbh/tasktracker/internal/backend"
	"github.com/twiced-technology-gmbh/tasktracker/internal/config"
	"github.com/twiced-technology-gmbh/tasktracker/internal/filelock"
	"github.com/twiced-technology-gmbh/tasktracker/internal/output"
	"github.com/twiced-technology-gmbh/tasktracker/internal/store"
)

const lockTimeout = 10 * time.Second

// session is one command's handle on the task list: the config, a loaded
// store and, for mutating commands, the directory lock held until Close.
type session struct {
	cfg        *config.Config
	store      *store.Store
	log        *log.Entry
	unlock     func() error
	closeLog   func()
	celebrated bool
}

// openSession loads config and tasks. Mutating commands pass lock so the
// whole read-modify-write runs under the directory lock.
func openSession(ctx context.Context, lock bool) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	closeLog, err := configureLogger(cfg, false)
	if err != nil {
		return nil, err
	}
	s := &session{
		cfg:      cfg,
		log:      logger.WithField("dir", cfg.Dir()),
		closeLog: closeLog,
	}

	if lock {
		unlock, err := lockDir(ctx, cfg, s.log)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.unlock = unlock
	}

	st, err := openStore(ctx, cfg, s.log, store.WithCelebrate(func() { s.celebrated = true }))
	if err != nil {
		s.Close()
		return nil, err
	}
	s.store = st
	return s, nil
}

// Close releases the store, the lock and the log file.
func (s *session) Close() {
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.log.WithError(err).Warn("closing storage")
		}
	}
	if s.unlock != nil {
		_ = s.unlock()
	}
	s.closeLog()
}

// reportCelebration prints the celebration when the last mutation completed
// the list.
func (s *session) reportCelebration() {
	if s.celebrated && outputFormat() != output.FormatJSON {
		output.Celebrate(os.Stdout)
	}
}

// lockDir takes the directory lock, waiting up to lockTimeout for another
// tasktracker process to finish.
func lockDir(ctx context.Context, cfg *config.Config, entry *log.Entry) (func() error, error) {
	path := filepath.Join(cfg.Dir(), filelock.FileName)
	unlock, ok, err := filelock.TryLock(path)
	if err != nil {
		return nil, fmt.Errorf("acquiring lock: %w", err)
	}
	if ok {
		return unlock, nil
	}

	entry.WithField("lock", path).Debug("waiting for another tasktracker process")
	ctx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()
	unlock, err = filelock.LockContext(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("acquiring lock: %w", err)
	}
	return unlock, nil
}

// openStore opens the configured backend and loads the task list. Recovered
// load problems are printed as warnings.
func openStore(ctx context.Context, cfg *config.Config, entry *log.Entry, opts ...store.Option) (*store.Store, error) {
	path := cfg.StoragePath()
	b, err := backend.Open(ctx, cfg.Storage.Backend, path,
		backend.WithLogger(entry.WithField("component", "backend")))
	if err != nil {
		return nil, fmt.Errorf("opening %s storage: %w", cfg.Storage.Backend, err)
	}
	entry.WithFields(log.Fields{"backend": cfg.Storage.Backend, "path": path}).Debug("storage opened")

	opts = append([]store.Option{store.WithLogger(entry.WithField("component", "store"))}, opts...)
	st := store.New(b, opts...)
	warnings, err := st.Load(ctx)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	printWarnings(warnings)
	return st, nil
}
