package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/twiced-technology-gmbh/tasktracker/internal/backend"
	"github.com/twiced-technology-gmbh/tasktracker/internal/board"
	"github.com/twiced-technology-gmbh/tasktracker/internal/clierr"
	"github.com/twiced-technology-gmbh/tasktracker/internal/task"
)

var testNow = time.Date(2025, 4, 10, 10, 0, 0, 0, time.UTC)

func clock() time.Time { return testNow }

func newTestStore(t *testing.T, opts ...Option) (*Store, *backend.Memory) {
	t.Helper()
	mem := backend.NewMemory()
	s := New(mem, append([]Option{WithClock(clock)}, opts...)...)
	if _, err := s.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return s, mem
}

func mustAdd(t *testing.T, s *Store, title string, deadline *time.Time) task.Task {
	t.Helper()
	added, err := s.Add(context.Background(), task.Task{Title: title, Deadline: deadline})
	if err != nil {
		t.Fatalf("add %q: %v", title, err)
	}
	return added
}

func at(d time.Duration) *time.Time {
	v := testNow.Add(d)
	return &v
}

func titles(tasks []*task.Task) string {
	parts := make([]string, len(tasks))
	for i, t := range tasks {
		parts[i] = t.Title
	}
	return strings.Join(parts, ",")
}

func TestAddAssignsIdentity(t *testing.T) {
	s, _ := newTestStore(t)

	a := mustAdd(t, s, "first", nil)
	b := mustAdd(t, s, "second", nil)

	if a.ID != 1 || b.ID != 2 {
		t.Fatalf("ids = %d, %d", a.ID, b.ID)
	}
	if !a.CreatedAt.Equal(testNow) {
		t.Fatalf("createdAt = %v", a.CreatedAt)
	}
	if got := titles(s.Tasks()); got != "first,second" {
		t.Fatalf("order = %s", got)
	}
}

func TestAddRejectsBlankTitle(t *testing.T) {
	s, mem := newTestStore(t)

	_, err := s.Add(context.Background(), task.Task{Title: "   "})
	if !clierr.Is(err, clierr.ValidationError) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
	if s.Len() != 0 {
		t.Fatal("state changed on validation failure")
	}
	if len(mem.Keys()) != 0 {
		t.Fatalf("validation failure wrote to storage: %v", mem.Keys())
	}
}

func TestUpdateKeepsPositionAndIdentity(t *testing.T) {
	s, _ := newTestStore(t)
	mustAdd(t, s, "a", nil)
	b := mustAdd(t, s, "b", nil)
	mustAdd(t, s, "c", nil)

	edit := b
	edit.Title = "b2"
	edit.Description = "details"
	edit.CreatedAt = testNow.Add(time.Hour)
	edit.Deadline = at(time.Hour)

	got, err := s.Update(context.Background(), edit)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !got.CreatedAt.Equal(b.CreatedAt) {
		t.Fatal("createdAt changed on update")
	}
	if titles(s.Tasks()) != "a,b2,c" {
		t.Fatalf("position changed: %s", titles(s.Tasks()))
	}
	stored, _ := s.Get(b.ID)
	if stored.Description != "details" || stored.Deadline == nil {
		t.Fatalf("fields not applied: %+v", stored)
	}
}

func TestUpdateErrors(t *testing.T) {
	s, _ := newTestStore(t)
	a := mustAdd(t, s, "a", nil)

	_, err := s.Update(context.Background(), task.Task{ID: 42, Title: "x"})
	if !clierr.Is(err, clierr.TaskNotFound) {
		t.Fatalf("expected TASK_NOT_FOUND, got %v", err)
	}

	a.Title = ""
	if _, err := s.Update(context.Background(), a); !clierr.Is(err, clierr.ValidationError) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
	if got, _ := s.Get(a.ID); got.Title != "a" {
		t.Fatalf("failed update changed state: %+v", got)
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	s, _ := newTestStore(t)
	mustAdd(t, s, "a", nil)
	b := mustAdd(t, s, "b", nil)
	mustAdd(t, s, "c", nil)

	ctx := context.Background()
	if err := s.Remove(ctx, b.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	after := titles(s.Tasks())
	if err := s.Remove(ctx, b.ID); err != nil {
		t.Fatalf("second remove should be a no-op, got %v", err)
	}
	if titles(s.Tasks()) != after || after != "a,c" {
		t.Fatalf("state after removes = %s", titles(s.Tasks()))
	}
}

func TestToggleOnlyFlipsCompleted(t *testing.T) {
	s, _ := newTestStore(t)
	a := mustAdd(t, s, "a", at(time.Hour))
	ctx := context.Background()

	if err := s.ToggleCompleted(ctx, a.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	got, _ := s.Get(a.ID)
	want := a
	want.Completed = true
	if got.Title != want.Title || !got.Deadline.Equal(*want.Deadline) || !got.CreatedAt.Equal(want.CreatedAt) || !got.Completed {
		t.Fatalf("toggle changed more than completed: %+v", got)
	}

	if err := s.ToggleCompleted(ctx, 999); err != nil {
		t.Fatalf("toggle of missing id should be a no-op, got %v", err)
	}
}

func TestClearCompleted(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	for _, title := range []string{"a", "b", "c", "d"} {
		mustAdd(t, s, title, nil)
	}
	_ = s.ToggleCompleted(ctx, 1)
	_ = s.ToggleCompleted(ctx, 3)

	n, err := s.ClearCompleted(ctx)
	if err != nil || n != 2 {
		t.Fatalf("ClearCompleted = %d, %v", n, err)
	}
	if titles(s.Tasks()) != "b,d" {
		t.Fatalf("remaining = %s", titles(s.Tasks()))
	}
	if n, _ := s.ClearCompleted(ctx); n != 0 {
		t.Fatalf("second clear removed %d", n)
	}
}

func TestMove(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	for _, title := range []string{"a", "b", "c", "d"} {
		mustAdd(t, s, title, nil)
	}

	steps := []struct {
		id   int
		dir  board.Direction
		want string
	}{
		{1, board.Up, "a,b,c,d"},
		{4, board.Down, "a,b,c,d"},
		{3, board.Up, "a,c,b,d"},
		{1, board.Down, "c,a,b,d"},
	}
	for _, st := range steps {
		if err := s.Move(ctx, st.id, st.dir); err != nil {
			t.Fatalf("move %d %s: %v", st.id, st.dir, err)
		}
		if got := titles(s.Tasks()); got != st.want {
			t.Fatalf("after move %d %s: %s, want %s", st.id, st.dir, got, st.want)
		}
	}

	if err := s.Move(ctx, 77, board.Up); !clierr.Is(err, clierr.TaskNotFound) {
		t.Fatalf("expected TASK_NOT_FOUND, got %v", err)
	}
}

func TestMoveRejectedWhileSorted(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	mustAdd(t, s, "a", nil)
	mustAdd(t, s, "b", at(time.Hour))

	if err := s.SortByDeadline(ctx); err != nil {
		t.Fatalf("sort: %v", err)
	}
	before := titles(s.Tasks())
	if err := s.Move(ctx, 1, board.Up); !clierr.Is(err, clierr.ReorderDisabled) {
		t.Fatalf("expected REORDER_DISABLED, got %v", err)
	}
	if titles(s.Tasks()) != before {
		t.Fatal("rejected move changed order")
	}
}

func TestSortByDeadlineAndRestore(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	a := mustAdd(t, s, "A", at(-time.Hour))
	mustAdd(t, s, "B", at(time.Hour))
	mustAdd(t, s, "C", nil)
	mustAdd(t, s, "D", at(-time.Hour))
	_ = s.ToggleCompleted(ctx, a.ID)

	sorted, err := s.ToggleSort(ctx)
	if err != nil || !sorted {
		t.Fatalf("ToggleSort = %v, %v", sorted, err)
	}
	if got := titles(s.Tasks()); got != "B,D,C,A" {
		t.Fatalf("sorted order = %s, want B,D,C,A", got)
	}

	sorted, err = s.ToggleSort(ctx)
	if err != nil || sorted {
		t.Fatalf("ToggleSort = %v, %v", sorted, err)
	}
	if got := titles(s.Tasks()); got != "A,B,C,D" {
		t.Fatalf("restored order = %s, want A,B,C,D", got)
	}
}

func TestSortRestoreIsReversibleAfterEdits(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	for i, title := range []string{"p", "q", "r", "s", "t"} {
		mustAdd(t, s, title, at(time.Duration(5-i)*time.Hour))
	}
	_ = s.Move(ctx, 5, board.Up)
	_ = s.Remove(ctx, 2)
	_ = s.ToggleCompleted(ctx, 3)
	edit, _ := s.Get(1)
	edit.Deadline = nil
	_, _ = s.Update(ctx, edit)

	before := s.Tasks()
	if err := s.SortByDeadline(ctx); err != nil {
		t.Fatalf("sort: %v", err)
	}
	if err := s.RestoreOrder(ctx); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if titles(s.Tasks()) != titles(before) {
		t.Fatalf("restore gave %s, want %s", titles(s.Tasks()), titles(before))
	}
}

func TestAddAndRemoveWhileSorted(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	mustAdd(t, s, "a", nil)
	b := mustAdd(t, s, "b", at(time.Hour))
	mustAdd(t, s, "c", at(2*time.Hour))

	_ = s.SortByDeadline(ctx)
	mustAdd(t, s, "new", nil)
	if err := s.Remove(ctx, b.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	_ = s.RestoreOrder(ctx)

	if got := titles(s.Tasks()); got != "a,c,new" {
		t.Fatalf("restored = %s, want a,c,new", got)
	}
}

func TestSortAndRestoreAreNoOpsWhenRepeated(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	mustAdd(t, s, "x", at(2*time.Hour))
	mustAdd(t, s, "y", at(time.Hour))

	_ = s.RestoreOrder(ctx)
	if titles(s.Tasks()) != "x,y" || s.Sorted() {
		t.Fatal("restore without sort changed state")
	}
	_ = s.SortByDeadline(ctx)
	_ = s.SortByDeadline(ctx)
	_ = s.RestoreOrder(ctx)
	if titles(s.Tasks()) != "x,y" {
		t.Fatalf("double sort lost the snapshot: %s", titles(s.Tasks()))
	}
}

func TestCelebration(t *testing.T) {
	fired := 0
	s, _ := newTestStore(t, WithCelebrate(func() { fired++ }))
	ctx := context.Background()
	for _, title := range []string{"a", "b", "c"} {
		mustAdd(t, s, title, nil)
	}

	for id := 1; id <= 3; id++ {
		_ = s.ToggleCompleted(ctx, id)
	}
	if fired != 1 {
		t.Fatalf("completing all fired %d times, want 1", fired)
	}

	// A mutation that keeps everything completed does not fire.
	edit, _ := s.Get(2)
	edit.Title = "b!"
	_, _ = s.Update(ctx, edit)
	if fired != 1 {
		t.Fatalf("redundant mutation fired (%d)", fired)
	}

	_ = s.ToggleCompleted(ctx, 2)
	_ = s.ToggleCompleted(ctx, 2)
	if fired != 2 {
		t.Fatalf("re-completing fired %d times total, want 2", fired)
	}

	// Adding a pending task re-arms; clearing it out by completing fires again.
	extra := mustAdd(t, s, "d", nil)
	_ = s.ToggleCompleted(ctx, extra.ID)
	if fired != 3 {
		t.Fatalf("fired %d, want 3", fired)
	}
}

func TestCelebrationLatchSurvivesReload(t *testing.T) {
	fired := 0
	mem := backend.NewMemory()
	ctx := context.Background()

	first := New(mem, WithClock(clock), WithCelebrate(func() { fired++ }))
	_, _ = first.Load(ctx)
	a, _ := first.Add(ctx, task.Task{Title: "only"})
	_ = first.ToggleCompleted(ctx, a.ID)
	if fired != 1 {
		t.Fatalf("fired %d", fired)
	}

	second := New(mem, WithClock(clock), WithCelebrate(func() { fired++ }))
	_, _ = second.Load(ctx)
	edit, _ := second.Get(a.ID)
	edit.Description = "still done"
	_, _ = second.Update(ctx, edit)
	if fired != 1 {
		t.Fatal("latch was not restored; celebration fired twice for one run")
	}
}

func TestPersistLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	dv, err := backend.OpenDiskv(filepath.Join(dir, "diskv"))
	if err != nil {
		t.Fatalf("diskv: %v", err)
	}
	sq, err := backend.OpenSQLite(ctx, filepath.Join(dir, "tasks.db"), nil)
	if err != nil {
		t.Fatalf("sqlite: %v", err)
	}
	defer sq.Close()

	for name, b := range map[string]backend.Backend{"diskv": dv, "sqlite": sq, "memory": backend.NewMemory()} {
		t.Run(name, func(t *testing.T) {
			s := New(b, WithClock(clock))
			_, _ = s.Load(ctx)
			mustAdd(t, s, "one", at(90*time.Minute))
			two := mustAdd(t, s, "two", nil)
			mustAdd(t, s, "three", at(-time.Hour))
			_ = s.ToggleCompleted(ctx, two.ID)
			_ = s.Move(ctx, 3, board.Up)

			reloaded := New(b, WithClock(clock))
			warnings, err := reloaded.Load(ctx)
			if err != nil || len(warnings) > 0 {
				t.Fatalf("reload: %v %v", err, warnings)
			}

			want, got := s.Tasks(), reloaded.Tasks()
			if len(want) != len(got) {
				t.Fatalf("len %d != %d", len(got), len(want))
			}
			for i := range want {
				w, g := want[i], got[i]
				if w.ID != g.ID || w.Title != g.Title || w.Description != g.Description ||
					w.Completed != g.Completed || !w.CreatedAt.Equal(g.CreatedAt) ||
					(w.Deadline == nil) != (g.Deadline == nil) ||
					(w.Deadline != nil && !w.Deadline.Equal(*g.Deadline)) {
					t.Fatalf("record %d differs: %+v vs %+v", i, w, g)
				}
			}
		})
	}
}

func TestSortedStateSurvivesReload(t *testing.T) {
	ctx := context.Background()
	mem := backend.NewMemory()
	s := New(mem, WithClock(clock))
	_, _ = s.Load(ctx)
	mustAdd(t, s, "late", at(5*time.Hour))
	mustAdd(t, s, "soon", at(time.Hour))
	_ = s.SortByDeadline(ctx)

	again := New(mem, WithClock(clock))
	_, _ = again.Load(ctx)
	if !again.Sorted() {
		t.Fatal("sorted flag lost")
	}
	if err := again.Move(ctx, 1, board.Down); !clierr.Is(err, clierr.ReorderDisabled) {
		t.Fatalf("expected REORDER_DISABLED after reload, got %v", err)
	}
	_ = again.RestoreOrder(ctx)
	if titles(again.Tasks()) != "late,soon" {
		t.Fatalf("restore after reload = %s", titles(again.Tasks()))
	}
}

func TestIDsAreNeverReused(t *testing.T) {
	ctx := context.Background()
	mem := backend.NewMemory()
	s := New(mem, WithClock(clock))
	_, _ = s.Load(ctx)
	mustAdd(t, s, "a", nil)
	b := mustAdd(t, s, "b", nil)
	_ = s.Remove(ctx, b.ID)

	again := New(mem, WithClock(clock))
	_, _ = again.Load(ctx)
	c := mustAdd(t, again, "c", nil)
	if c.ID == b.ID {
		t.Fatalf("id %d reused", c.ID)
	}
}

func TestLoadMalformedYieldsEmpty(t *testing.T) {
	ctx := context.Background()
	for _, raw := range []string{`{not json`, `{"id": 1}`, `42`} {
		mem := backend.NewMemory()
		mem.Set(KeyTasks, []byte(raw))
		mem.Set(KeyState, []byte(`also broken`))

		s := New(mem, WithClock(clock))
		warnings, err := s.Load(ctx)
		if err != nil {
			t.Fatalf("%q: load must not fail: %v", raw, err)
		}
		if s.Len() != 0 {
			t.Fatalf("%q: expected empty list, got %d tasks", raw, s.Len())
		}
		if len(warnings) == 0 {
			t.Fatalf("%q: expected a recovery warning", raw)
		}
		backup, err := mem.Read(ctx, "tasks.corrupt-20250410T100000Z")
		if err != nil || string(backup) != raw {
			t.Fatalf("%q: backup = %q, %v", raw, backup, err)
		}

		added := mustAdd(t, s, "fresh", nil)
		if added.ID != 1 {
			t.Fatalf("%q: first id after recovery = %d", raw, added.ID)
		}
	}
}

func TestLoadMissingYieldsEmpty(t *testing.T) {
	s, _ := newTestStore(t)
	if s.Len() != 0 || s.Sorted() {
		t.Fatal("fresh store should be empty and unsorted")
	}
}

func TestPersistFailureKeepsMemoryState(t *testing.T) {
	s, mem := newTestStore(t)
	mem.FailWrites = errors.New("read-only file system")

	added, err := s.Add(context.Background(), task.Task{Title: "kept"})
	if !clierr.Is(err, clierr.StoragePersistFailed) {
		t.Fatalf("expected STORAGE_PERSIST_FAILED, got %v", err)
	}
	if !clierr.IsWarning(err) {
		t.Fatal("persist failure should be a warning")
	}
	if added.ID == 0 || s.Len() != 1 {
		t.Fatalf("in-memory add lost: %+v, len %d", added, s.Len())
	}

	mem.FailWrites = nil
	if err := s.ToggleCompleted(context.Background(), added.ID); err != nil {
		t.Fatalf("toggle after recovery: %v", err)
	}
	stored, _ := mem.Read(context.Background(), KeyTasks)
	if !strings.Contains(string(stored), `"kept"`) {
		t.Fatalf("next successful write should include earlier change:\n%s", stored)
	}
}

func TestTasksReturnsCopies(t *testing.T) {
	s, _ := newTestStore(t)
	mustAdd(t, s, "a", nil)

	list := s.Tasks()
	list[0].Title = "mutated"
	if got, _ := s.Get(1); got.Title != "a" {
		t.Fatal("caller mutation leaked into the store")
	}
}

func TestExport(t *testing.T) {
	s, mem := newTestStore(t)
	mustAdd(t, s, "a", at(time.Hour))
	mustAdd(t, s, "b", nil)
	before, _ := mem.Read(context.Background(), KeyTasks)

	var buf bytes.Buffer
	if err := s.Export(&buf); err != nil {
		t.Fatalf("export: %v", err)
	}

	var records []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &records); err != nil {
		t.Fatalf("export is not a JSON list: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("exported %d records", len(records))
	}
	for _, field := range []string{"id", "title", "description", "deadline", "completed", "createdAt"} {
		if _, ok := records[0][field]; !ok {
			t.Fatalf("export record lacks %q: %v", field, records[0])
		}
	}
	if records[1]["deadline"] != nil {
		t.Fatalf("absent deadline should export as null, got %v", records[1]["deadline"])
	}
	if !strings.Contains(buf.String(), "\n  {") {
		t.Fatal("export should be indented")
	}

	after, _ := mem.Read(context.Background(), KeyTasks)
	if !bytes.Equal(before, after) || s.Len() != 2 {
		t.Fatal("export mutated the store")
	}
}

func TestExportTo(t *testing.T) {
	s, _ := newTestStore(t)
	mustAdd(t, s, "a", nil)
	dir := t.TempDir()

	path, err := s.ExportTo(dir)
	if err != nil {
		t.Fatalf("ExportTo: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Fatalf("exported to %s", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("export file missing: %v", err)
	}
}

func TestExportFilename(t *testing.T) {
	ts := time.Date(2025, 1, 7, 9, 5, 59, 0, time.UTC)
	if got := ExportFilename(ts); got != "notes-2025-01-07_09-05.json" {
		t.Fatalf("ExportFilename = %q", got)
	}
}

func TestOverview(t *testing.T) {
	s, _ := newTestStore(t)
	mustAdd(t, s, "a", at(-time.Minute))
	mustAdd(t, s, "b", nil)
	_ = s.ToggleCompleted(context.Background(), 2)
	_ = s.SortByDeadline(context.Background())

	o := s.Overview()
	if o.Total != 2 || o.Completed != 1 || o.Expired != 1 || !o.Sorted {
		t.Fatalf("overview = %+v", o)
	}
}
