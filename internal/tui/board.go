// Package tui implements the terminal UI for tasktracker.
package tui

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"

	"github.com/twiced-technology-gmbh/tasktracker/internal/board"
	"github.com/twiced-technology-gmbh/tasktracker/internal/clierr"
	"github.com/twiced-technology-gmbh/tasktracker/internal/countdown"
	"github.com/twiced-technology-gmbh/tasktracker/internal/store"
	"github.com/twiced-technology-gmbh/tasktracker/internal/task"
)

// view represents the current screen state.
type view int

const (
	viewList view = iota
	viewForm
	viewSearch
	viewConfirmDelete
	viewConfirmClear
)

const (
	toastDuration = 3 * time.Second
	listChrome    = 5 // header, blank, blank, progress, hints
)

// Options configures a Board.
type Options struct {
	// Filter is the initial status filter.
	Filter        board.StatusFilter
	HideCompleted bool
	// TickInterval is how often countdowns refresh while a deadline is visible.
	TickInterval time.Duration
	// ExportDir receives files written by the export key.
	ExportDir string
	// ActivityDir, when set, receives activity log entries for mutations.
	ActivityDir string
	// WatchPaths are reported by Board.WatchPaths for live reload.
	WatchPaths []string
	// Lock, when set, is held around every store mutation.
	Lock func() (unlock func() error, err error)
	Log  *log.Entry
}

// Board is the top-level bubbletea model: one list of tasks with filter,
// search, manual and deadline ordering.
type Board struct {
	store *store.Store
	opts  Options
	ctx   context.Context
	keys  keyMap
	now   func() time.Time // clock for countdowns; defaults to time.Now

	filter   board.FilterOptions
	visible  []*task.Task
	overview board.Overview
	cursor   int
	selected int // id of the task under the cursor
	offset   int

	view   view
	width  int
	height int
	err    error

	form   form
	search textinput.Model

	// Delete confirmation.
	deleteID    int
	deleteTitle string
	// Clear completed confirmation.
	clearCount int

	toast          string
	toastGen       int
	toastScheduled int

	// Countdown polling. tickGen invalidates ticks scheduled before the
	// last start or stop.
	ticking bool
	tickGen int
}

// NewBoard creates a Board over a loaded store.
func NewBoard(s *store.Store, opts Options) *Board {
	if opts.TickInterval <= 0 {
		opts.TickInterval = countdown.DefaultInterval
	}
	if opts.Filter == "" {
		opts.Filter = board.StatusAll
	}
	if opts.ExportDir == "" {
		opts.ExportDir = "."
	}
	if opts.Log == nil {
		l := log.New()
		l.SetOutput(io.Discard)
		opts.Log = log.NewEntry(l)
	}

	search := textinput.New()
	search.Prompt = "/"
	search.Placeholder = "search"
	search.CharLimit = task.MaxTitleLength

	b := &Board{
		store:  s,
		opts:   opts,
		ctx:    context.Background(),
		keys:   defaultKeyMap(),
		now:    time.Now,
		filter: board.FilterOptions{Status: opts.Filter, HideCompleted: opts.HideCompleted},
		search: search,
		form:   newForm(),
	}
	s.OnCelebrate(b.celebrate)
	b.refresh()
	return b
}

// SetNow overrides the clock function used for countdown display (for testing).
func (b *Board) SetNow(fn func() time.Time) {
	b.now = fn
	b.refresh()
}

// WatchPaths returns the paths that should be watched for changes made by
// other processes.
func (b *Board) WatchPaths() []string {
	return b.opts.WatchPaths
}

// --- Messages ---

// ReloadMsg is sent by the file watcher to trigger a reload from storage.
type ReloadMsg struct{}

// TickMsg refreshes countdowns. Gen identifies the schedule that produced it.
type TickMsg struct {
	Gen int
}

type toastExpiredMsg struct{ gen int }

// Init implements tea.Model.
func (b *Board) Init() tea.Cmd {
	return b.syncTick()
}

// Update implements tea.Model.
func (b *Board) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd = b.handleKey(msg)
	case tea.WindowSizeMsg:
		b.width = msg.Width
		b.height = msg.Height
		b.ensureVisible()
	case ReloadMsg:
		b.reload()
	case TickMsg:
		if msg.Gen != b.tickGen {
			return b, nil // stale schedule
		}
		b.ticking = false
		b.refresh()
	case toastExpiredMsg:
		if msg.gen == b.toastGen {
			b.toast = ""
		}
		return b, nil
	default:
		switch b.view {
		case viewForm:
			cmd = b.form.update(msg)
		case viewSearch:
			b.search, cmd = b.search.Update(msg)
		}
	}
	return b, tea.Batch(cmd, b.syncTick(), b.toastCmd())
}

func (b *Board) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, b.keys.ForceQuit) {
		return tea.Quit
	}

	switch b.view {
	case viewForm:
		return b.handleFormKey(msg)
	case viewSearch:
		return b.handleSearchKey(msg)
	case viewConfirmDelete:
		b.handleDeleteKey(msg)
	case viewConfirmClear:
		b.handleClearKey(msg)
	default:
		return b.handleListKey(msg)
	}
	return nil
}

func (b *Board) handleListKey(msg tea.KeyMsg) tea.Cmd {
	k := b.keys
	switch {
	case key.Matches(msg, k.Quit):
		if b.filter.Search != "" {
			b.filter.Search = ""
			b.search.SetValue("")
			b.refresh()
			return nil
		}
		return tea.Quit
	case key.Matches(msg, k.Down):
		b.moveCursor(1)
	case key.Matches(msg, k.Up):
		b.moveCursor(-1)
	case key.Matches(msg, k.Add):
		b.view = viewForm
		return b.form.openAdd()
	case key.Matches(msg, k.Edit):
		if t := b.selectedTask(); t != nil {
			b.view = viewForm
			return b.form.openEdit(*t)
		}
	case key.Matches(msg, k.Toggle):
		if t := b.selectedTask(); t != nil {
			id := t.ID
			b.mutate("toggle", id, t.Title, func(ctx context.Context) error {
				return b.store.ToggleCompleted(ctx, id)
			})
		}
	case key.Matches(msg, k.Delete):
		if t := b.selectedTask(); t != nil {
			b.deleteID = t.ID
			b.deleteTitle = t.Title
			b.view = viewConfirmDelete
		}
	case key.Matches(msg, k.MoveUp):
		b.move(board.Up)
	case key.Matches(msg, k.MoveDown):
		b.move(board.Down)
	case key.Matches(msg, k.Sort):
		b.mutate("sort", 0, "", func(ctx context.Context) error {
			_, err := b.store.ToggleSort(ctx)
			return err
		})
	case key.Matches(msg, k.Filter):
		b.filter.Status = b.filter.Status.Next()
		b.refresh()
	case key.Matches(msg, k.Hide):
		if b.filter.HideCompleted || b.overview.Completed > 0 {
			b.filter.HideCompleted = !b.filter.HideCompleted
			b.refresh()
		}
	case key.Matches(msg, k.Search):
		b.view = viewSearch
		b.search.SetValue(b.filter.Search)
		b.search.CursorEnd()
		return b.search.Focus()
	case key.Matches(msg, k.Clear):
		if b.overview.Completed > 0 {
			b.clearCount = b.overview.Completed
			b.view = viewConfirmClear
		}
	case key.Matches(msg, k.Export):
		b.export()
	}
	return nil
}

func (b *Board) handleFormKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, b.keys.Cancel):
		b.view = viewList
		return nil
	case key.Matches(msg, b.keys.NextField):
		return b.form.next()
	case key.Matches(msg, b.keys.PrevField):
		return b.form.prev()
	case key.Matches(msg, b.keys.Submit):
		b.submitForm()
		return nil
	}
	return b.form.update(msg)
}

func (b *Board) submitForm() {
	draft, err := b.form.draft(b.now())
	if err != nil {
		b.form.err = err
		return
	}

	if draft.ID == 0 {
		var added task.Task
		ok := b.mutate("add", 0, draft.Title, func(ctx context.Context) error {
			var err error
			added, err = b.store.Add(ctx, draft)
			return err
		})
		if ok {
			b.selected = added.ID
		}
	} else {
		b.mutate("edit", draft.ID, draft.Title, func(ctx context.Context) error {
			_, err := b.store.Update(ctx, draft)
			return err
		})
	}
	b.view = viewList
	b.refresh()
}

func (b *Board) handleSearchKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, b.keys.Cancel):
		b.search.SetValue("")
		b.filter.Search = ""
		b.search.Blur()
		b.view = viewList
		b.refresh()
		return nil
	case key.Matches(msg, b.keys.Submit):
		b.search.Blur()
		b.view = viewList
		return nil
	}
	var cmd tea.Cmd
	b.search, cmd = b.search.Update(msg)
	b.filter.Search = b.search.Value()
	b.refresh()
	return cmd
}

func (b *Board) handleDeleteKey(msg tea.KeyMsg) {
	switch {
	case key.Matches(msg, b.keys.Confirm):
		id := b.deleteID
		b.mutate("delete", id, b.deleteTitle, func(ctx context.Context) error {
			return b.store.Remove(ctx, id)
		})
		b.view = viewList
	case key.Matches(msg, b.keys.Deny):
		b.view = viewList
	}
}

func (b *Board) handleClearKey(msg tea.KeyMsg) {
	switch {
	case key.Matches(msg, b.keys.Confirm):
		b.mutate("clear-completed", 0, "", func(ctx context.Context) error {
			_, err := b.store.ClearCompleted(ctx)
			return err
		})
		b.view = viewList
	case key.Matches(msg, b.keys.Deny):
		b.view = viewList
	}
}

func (b *Board) move(dir board.Direction) {
	t := b.selectedTask()
	if t == nil {
		return
	}
	id := t.ID
	b.mutate("move", id, string(dir), func(ctx context.Context) error {
		return b.store.Move(ctx, id, dir)
	})
}

func (b *Board) export() {
	path, err := b.store.ExportTo(b.opts.ExportDir)
	if err != nil {
		b.err = err
		return
	}
	b.err = nil
	b.showToast("Exported to " + path)
}

// mutate runs fn under the store lock and records it in the activity log.
// It reports whether the in-memory change was applied; a failed persist
// still counts as applied and is shown as an error.
func (b *Board) mutate(action string, id int, detail string, fn func(context.Context) error) bool {
	if b.opts.Lock != nil {
		unlock, err := b.opts.Lock()
		if err != nil {
			b.err = err
			return false
		}
		defer func() { _ = unlock() }()
	}

	err := fn(b.ctx)
	b.err = err
	b.refresh()
	if err != nil && !clierr.IsWarning(err) {
		return false
	}
	if b.opts.ActivityDir != "" {
		board.LogMutation(b.opts.ActivityDir, action, id, detail)
	}
	b.opts.Log.WithFields(log.Fields{"action": action, "id": id}).Debug("tui mutation")
	return true
}

// reload replaces the store contents with what storage holds.
func (b *Board) reload() {
	warnings, err := b.store.Load(b.ctx)
	if err != nil {
		b.err = err
		return
	}
	b.err = nil
	if len(warnings) > 0 {
		b.err = fmt.Errorf("reloading: %s", warnings[0].String())
	}
	b.refresh()
}

func (b *Board) celebrate() {
	b.showToast(board.CelebrationMessage)
}

func (b *Board) showToast(text string) {
	b.toast = text
	b.toastGen++
}

// toastCmd schedules expiry of the current toast once per toast.
func (b *Board) toastCmd() tea.Cmd {
	if b.toast == "" || b.toastScheduled == b.toastGen {
		return nil
	}
	gen := b.toastGen
	b.toastScheduled = gen
	return tea.Tick(toastDuration, func(time.Time) tea.Msg { return toastExpiredMsg{gen: gen} })
}

// syncTick starts countdown polling when a visible task has a deadline and
// stops it otherwise.
func (b *Board) syncTick() tea.Cmd {
	need := countdown.HasDeadline(b.visible)
	switch {
	case need && !b.ticking:
		b.ticking = true
		b.tickGen++
		gen := b.tickGen
		b.opts.Log.WithField("gen", gen).Debug("countdown polling started")
		return tea.Tick(b.opts.TickInterval, func(time.Time) tea.Msg { return TickMsg{Gen: gen} })
	case !need && b.ticking:
		b.ticking = false
		b.tickGen++
		b.opts.Log.Debug("countdown polling stopped")
	}
	return nil
}

// refresh recomputes the visible list and keeps the cursor on the same task
// when it is still visible.
func (b *Board) refresh() {
	tasks := b.store.Tasks()
	b.visible = board.Filter(tasks, b.filter)
	b.overview = b.store.Overview()

	for i, t := range b.visible {
		if t.ID == b.selected {
			b.cursor = i
			break
		}
	}
	b.clampCursor()
}

func (b *Board) moveCursor(delta int) {
	b.cursor += delta
	b.clampCursor()
}

func (b *Board) clampCursor() {
	if b.cursor >= len(b.visible) {
		b.cursor = len(b.visible) - 1
	}
	if b.cursor < 0 {
		b.cursor = 0
	}
	b.selected = 0
	if t := b.selectedTask(); t != nil {
		b.selected = t.ID
	}
	b.ensureVisible()
}

func (b *Board) ensureVisible() {
	rows := b.listHeight()
	if rows <= 0 {
		return
	}
	if b.cursor < b.offset {
		b.offset = b.cursor
	}
	if b.cursor >= b.offset+rows {
		b.offset = b.cursor - rows + 1
	}
	if b.offset < 0 {
		b.offset = 0
	}
}

func (b *Board) listHeight() int {
	h := b.height - listChrome
	if b.err != nil || b.toast != "" {
		h--
	}
	return h
}

func (b *Board) selectedTask() *task.Task {
	if b.cursor >= 0 && b.cursor < len(b.visible) {
		return b.visible[b.cursor]
	}
	return nil
}
