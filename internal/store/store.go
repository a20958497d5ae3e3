// Package store owns the canonical, ordered task list. Every mutation goes
// through a Store, which keeps manual order, the reversible deadline sort and
// the completion latch consistent and persists the result to a backend.
package store

import (
	"context"
	"io"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/twiced-technology-gmbh/tasktracker/internal/backend"
	"github.com/twiced-technology-gmbh/tasktracker/internal/board"
	"github.com/twiced-technology-gmbh/tasktracker/internal/clierr"
	"github.com/twiced-technology-gmbh/tasktracker/internal/task"
)

// Store is the single owner of the task sequence. It is not safe for
// concurrent use; callers serialize access.
type Store struct {
	backend backend.Backend

	tasks    []*task.Task
	original []int // manual order snapshot (ids), only while sorted
	sorted   bool
	nextID   int
	tracker  *board.CompletionTracker

	log       *log.Entry
	now       func() time.Time
	celebrate func()
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for createdAt and deadline sorting.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger for storage diagnostics.
func WithLogger(l *log.Entry) Option {
	return func(s *Store) { s.log = l }
}

// WithCelebrate registers fn to run once each time the list becomes fully
// completed.
func WithCelebrate(fn func()) Option {
	return func(s *Store) { s.celebrate = fn }
}

// OnCelebrate replaces the celebrate callback after construction.
func (s *Store) OnCelebrate(fn func()) {
	s.celebrate = fn
}

// New creates an empty Store over b. Call Load to read persisted state.
func New(b backend.Backend, opts ...Option) *Store {
	s := &Store{
		backend: b,
		tasks:   []*task.Task{},
		nextID:  1,
		tracker: board.NewCompletionTracker(false),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		l := log.New()
		l.SetOutput(io.Discard)
		s.log = log.NewEntry(l)
	}
	return s
}

// Add appends a new task built from draft and returns it with its assigned
// id and creation time. The draft's ID, CreatedAt and Completed are ignored.
func (s *Store) Add(ctx context.Context, draft task.Task) (task.Task, error) {
	if err := task.ValidateTitle(draft.Title); err != nil {
		return task.Task{}, err
	}

	t := draft.Clone()
	t.ID = s.nextID
	t.CreatedAt = s.now()
	t.Completed = false
	s.nextID++

	s.tasks = append(s.tasks, t)
	if s.sorted {
		s.original = append(s.original, t.ID)
	}

	return *t.Clone(), s.commit(ctx, "add", t.ID)
}

// Update replaces the task whose id matches edit.ID, keeping its position,
// id and creation time.
func (s *Store) Update(ctx context.Context, edit task.Task) (task.Task, error) {
	if err := task.ValidateTitle(edit.Title); err != nil {
		return task.Task{}, err
	}
	i := task.IndexOf(s.tasks, edit.ID)
	if i < 0 {
		return task.Task{}, task.NotFound(edit.ID)
	}

	s.tasks[i] = task.Merge(s.tasks[i], &edit)
	return *s.tasks[i].Clone(), s.commit(ctx, "update", edit.ID)
}

// Remove deletes the task with the given id. Removing an absent id is a
// no-op and does not write.
func (s *Store) Remove(ctx context.Context, id int) error {
	i := task.IndexOf(s.tasks, id)
	if i < 0 {
		return nil
	}
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	s.original = removeID(s.original, id)
	return s.commit(ctx, "remove", id)
}

// ToggleCompleted flips the completion flag of the task with the given id.
// An absent id is a no-op.
func (s *Store) ToggleCompleted(ctx context.Context, id int) error {
	i := task.IndexOf(s.tasks, id)
	if i < 0 {
		return nil
	}
	task.Toggle(s.tasks[i])
	return s.commit(ctx, "toggle", id)
}

// ClearCompleted removes every completed task, keeping the relative order of
// the rest, and returns how many were removed.
func (s *Store) ClearCompleted(ctx context.Context) (int, error) {
	kept := s.tasks[:0]
	removed := 0
	for _, t := range s.tasks {
		if t.Completed {
			s.original = removeID(s.original, t.ID)
			removed++
			continue
		}
		kept = append(kept, t)
	}
	s.tasks = kept
	if removed == 0 {
		return 0, nil
	}
	return removed, s.commit(ctx, "clear-completed", 0)
}

// Move swaps the task with its neighbour in the given direction. Moves past
// either end are no-ops. Manual moves are rejected while the deadline sort
// is engaged.
func (s *Store) Move(ctx context.Context, id int, dir board.Direction) error {
	if s.sorted {
		return clierr.New(clierr.ReorderDisabled,
			"manual reordering is disabled while sorted by deadline (restore the order first)").
			WithDetails(map[string]any{"id": id})
	}
	i := task.IndexOf(s.tasks, id)
	if i < 0 {
		return task.NotFound(id)
	}
	if !board.Swap(s.tasks, i, dir) {
		return nil
	}
	return s.commit(ctx, "move", id)
}

// SortByDeadline snapshots the manual order and reorders the list by
// urgency. It is a no-op when already sorted.
func (s *Store) SortByDeadline(ctx context.Context) error {
	if s.sorted {
		return nil
	}
	s.original = idsOf(s.tasks)
	board.SortByDeadline(s.tasks, s.now())
	s.sorted = true
	return s.commit(ctx, "sort", 0)
}

// RestoreOrder puts the list back into the manual order captured by
// SortByDeadline. Tasks added while sorted follow at the end in the order
// they were added; removed tasks stay removed.
func (s *Store) RestoreOrder(ctx context.Context) error {
	if !s.sorted {
		return nil
	}
	s.tasks = arrange(s.tasks, s.original)
	s.original = nil
	s.sorted = false
	return s.commit(ctx, "restore-order", 0)
}

// ToggleSort engages the deadline sort or restores manual order, and returns
// the new sorted state.
func (s *Store) ToggleSort(ctx context.Context) (bool, error) {
	if s.sorted {
		return false, s.RestoreOrder(ctx)
	}
	return true, s.SortByDeadline(ctx)
}

// Sorted reports whether the deadline sort is engaged.
func (s *Store) Sorted() bool { return s.sorted }

// Celebrated reports the completion latch.
func (s *Store) Celebrated() bool { return s.tracker.Celebrated() }

// Len returns the number of tasks.
func (s *Store) Len() int { return len(s.tasks) }

// Tasks returns a copy of the current sequence.
func (s *Store) Tasks() []*task.Task {
	return task.CloneAll(s.tasks)
}

// Get returns a copy of the task with the given id.
func (s *Store) Get(id int) (task.Task, error) {
	t, err := task.FindByID(s.tasks, id)
	if err != nil {
		return task.Task{}, err
	}
	return *t.Clone(), nil
}

// View returns the filtered view of the current sequence.
func (s *Store) View(opts board.FilterOptions) []*task.Task {
	return board.Filter(s.Tasks(), opts)
}

// Overview summarizes the current sequence.
func (s *Store) Overview() board.Overview {
	o := board.Summary(s.tasks, s.now())
	o.Sorted = s.sorted
	return o
}

// commit runs the post-mutation steps: completion tracking, then persistence.
func (s *Store) commit(ctx context.Context, action string, id int) error {
	if s.tracker.Observe(s.tasks) {
		s.log.WithField("tasks", len(s.tasks)).Debug("all tasks completed")
		if s.celebrate != nil {
			s.celebrate()
		}
	}
	s.log.WithFields(log.Fields{"action": action, "id": id}).Debug("mutation applied")
	return s.persist(ctx)
}

func idsOf(tasks []*task.Task) []int {
	out := make([]int, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func removeID(ids []int, id int) []int {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

// arrange orders tasks by ids. Ids without a task are skipped; tasks missing
// from ids keep their relative order at the end.
func arrange(tasks []*task.Task, ids []int) []*task.Task {
	byID := make(map[int]*task.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}
	out := make([]*task.Task, 0, len(tasks))
	for _, id := range ids {
		if t, ok := byID[id]; ok {
			out = append(out, t)
			delete(byID, id)
		}
	}
	for _, t := range tasks {
		if _, ok := byID[t.ID]; ok {
			out = append(out, t)
		}
	}
	return out
}
