package board

import (
	"strconv"
	"strings"
	"time"

	"github.com/twiced-technology-gmbh/tasktracker/internal/clierr"
	"github.com/twiced-technology-gmbh/tasktracker/internal/task"
)

// ListOptions controls how a list view is derived.
type ListOptions struct {
	Filter FilterOptions
	// ByDeadline presents the view in urgency order without touching the
	// stored manual order.
	ByDeadline bool
	Limit      int
}

// List derives a view from the full sequence. The returned slice is new; the
// tasks in it are shared with the input.
func List(tasks []*task.Task, opts ListOptions, now time.Time) []*task.Task {
	view := Filter(tasks, opts.Filter)
	if opts.ByDeadline {
		SortByDeadline(view, now)
	}
	if opts.Limit > 0 && len(view) > opts.Limit {
		view = view[:opts.Limit]
	}
	return view
}

// Overview is the progress summary of a task list.
type Overview struct {
	Total        int     `json:"total"`
	Completed    int     `json:"completed"`
	Pending      int     `json:"pending"`
	Percent      float64 `json:"percent"`
	WithDeadline int     `json:"with_deadline"`
	Expired      int     `json:"expired"`
	DueToday     int     `json:"due_today"`
	AllCompleted bool    `json:"all_completed"`
	Sorted       bool    `json:"sorted"`
}

// Summary computes progress and deadline counts. Expired and due-today only
// count incomplete tasks.
func Summary(tasks []*task.Task, now time.Time) Overview {
	o := Overview{Total: len(tasks), AllCompleted: AllCompleted(tasks)}
	endOfDay := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())

	for _, t := range tasks {
		if t.Deadline != nil {
			o.WithDeadline++
		}
		if t.Completed {
			o.Completed++
			continue
		}
		o.Pending++
		switch {
		case t.Deadline == nil:
		case t.Expired(now):
			o.Expired++
		case t.Deadline.Before(endOfDay):
			o.DueToday++
		}
	}

	if o.Total > 0 {
		o.Percent = float64(o.Completed*100) / float64(o.Total) //nolint:mnd // percent
	}
	return o
}

// Progress renders the "N of M tasks completed" line.
func (o Overview) Progress() string {
	return strconv.Itoa(o.Completed) + " of " + strconv.Itoa(o.Total) + " tasks completed"
}

// ParseIDs parses a comma-separated list of task IDs, deduplicating while
// preserving order. Returns an error for invalid or empty input.
func ParseIDs(arg string) ([]int, error) {
	parts := strings.Split(arg, ",")
	ids := make([]int, 0, len(parts))
	seen := make(map[int]bool, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.Atoi(strings.TrimPrefix(p, "#"))
		if err != nil || id <= 0 {
			return nil, task.ValidateTaskID(p)
		}
		if !seen[id] {
			ids = append(ids, id)
			seen[id] = true
		}
	}
	if len(ids) == 0 {
		return nil, clierr.New(clierr.InvalidTaskID, "no valid task IDs provided")
	}
	return ids, nil
}
