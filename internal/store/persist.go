package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/twiced-technology-gmbh/tasktracker/internal/backend"
	"github.com/twiced-technology-gmbh/tasktracker/internal/board"
	"github.com/twiced-technology-gmbh/tasktracker/internal/clierr"
	"github.com/twiced-technology-gmbh/tasktracker/internal/task"
)

// Backend keys.
const (
	KeyTasks = "tasks"
	KeyState = "state"
)

// corruptKeyFormat names the backup of an unreadable task list.
const corruptKeyFormat = KeyTasks + ".corrupt-%s"

// state is everything besides the sequence that must survive a restart.
type state struct {
	NextID        int   `json:"next_id"`
	Sorted        bool  `json:"sorted"`
	OriginalOrder []int `json:"original_order,omitempty"`
	Celebrated    bool  `json:"celebrated"`
}

// Load replaces the in-memory state with what the backend holds. It never
// fails on bad data: a missing or malformed task list loads as empty (the
// malformed value is first copied to a backup key), and records that cannot
// be used are skipped. Every recovery is returned as a warning. Only context
// cancellation is returned as an error.
func (s *Store) Load(ctx context.Context) ([]task.ReadWarning, error) {
	tasks, warnings := s.loadTasks(ctx)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	st, hasState := s.loadState(ctx)

	s.tasks = tasks
	s.nextID = max(st.NextID, task.MaxID(tasks)+1)
	s.sorted = hasState && st.Sorted
	s.original = nil
	if s.sorted {
		// Keep only ids that still exist, then append tasks the snapshot
		// does not know about, mirroring an add while sorted.
		s.original = idsOf(arrange(tasks, st.OriginalOrder))
	}

	celebrated := st.Celebrated
	if !hasState {
		celebrated = board.AllCompleted(tasks)
	}
	s.tracker = board.NewCompletionTracker(celebrated)

	for _, w := range warnings {
		s.log.WithField("warning", w.String()).Warn("recovered while loading tasks")
	}
	s.log.WithFields(log.Fields{"tasks": len(s.tasks), "sorted": s.sorted}).Debug("tasks loaded")
	return warnings, nil
}

func (s *Store) loadTasks(ctx context.Context) ([]*task.Task, []task.ReadWarning) {
	data, err := s.backend.Read(ctx, KeyTasks)
	if errors.Is(err, backend.ErrNotExist) {
		return []*task.Task{}, nil
	}
	if err != nil {
		return []*task.Task{}, []task.ReadWarning{{Index: -1, Err: fmt.Errorf("reading stored tasks: %w", err)}}
	}

	tasks, warnings, err := task.Decode(data)
	if err != nil {
		warnings = []task.ReadWarning{{Index: -1, Err: err}}
		key := fmt.Sprintf(corruptKeyFormat, s.now().UTC().Format("20060102T150405Z"))
		if backupErr := s.backend.Write(ctx, backend.Entry{Key: key, Value: data}); backupErr != nil {
			warnings = append(warnings, task.ReadWarning{Index: -1, Err: fmt.Errorf("backing up unreadable tasks: %w", backupErr)})
		} else {
			warnings = append(warnings, task.ReadWarning{Index: -1, Err: fmt.Errorf("unreadable tasks saved as %q", key)})
		}
		return []*task.Task{}, warnings
	}
	return tasks, warnings
}

// loadState reports false when no usable state is stored.
func (s *Store) loadState(ctx context.Context) (state, bool) {
	data, err := s.backend.Read(ctx, KeyState)
	if err != nil {
		if !errors.Is(err, backend.ErrNotExist) {
			s.log.WithError(err).Warn("reading store state")
		}
		return state{}, false
	}
	var st state
	if err := json.Unmarshal(data, &st); err != nil {
		s.log.WithError(err).Warn("ignoring malformed store state")
		return state{}, false
	}
	return st, true
}

// persist writes the sequence and state. On failure the in-memory state is
// kept and a STORAGE_PERSIST_FAILED error tells the caller the stored copy
// is stale.
func (s *Store) persist(ctx context.Context) error {
	tasksData, err := task.Encode(s.tasks)
	if err != nil {
		return s.persistFailed(err)
	}
	stateData, err := json.Marshal(state{
		NextID:        s.nextID,
		Sorted:        s.sorted,
		OriginalOrder: s.original,
		Celebrated:    s.tracker.Celebrated(),
	})
	if err != nil {
		return s.persistFailed(err)
	}

	err = s.backend.Write(ctx,
		backend.Entry{Key: KeyTasks, Value: tasksData},
		backend.Entry{Key: KeyState, Value: stateData},
	)
	if err != nil {
		return s.persistFailed(err)
	}
	return nil
}

func (s *Store) persistFailed(err error) error {
	s.log.WithError(err).Warn("persisting tasks failed; changes are kept in memory only")
	return clierr.Wrap(clierr.StoragePersistFailed, err, "saving tasks")
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// WatchPaths returns the filesystem paths that change when the backend is
// written, for live reload.
func (s *Store) WatchPaths() []string {
	return s.backend.WatchPaths()
}
