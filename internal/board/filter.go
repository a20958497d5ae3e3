// Package board provides list-level operations on task sequences: filtered
// views, deadline ordering, neighbour swaps, completion tracking and summaries.
package board

import (
	"strings"

	"github.com/twiced-technology-gmbh/tasktracker/internal/clierr"
	"github.com/twiced-technology-gmbh/tasktracker/internal/task"
)

// StatusFilter selects tasks by completion state.
type StatusFilter string

// Status filter values.
const (
	StatusAll       StatusFilter = "all"
	StatusCompleted StatusFilter = "completed"
	StatusPending   StatusFilter = "pending"
)

// StatusFilters lists the filters in display order.
var StatusFilters = []StatusFilter{StatusAll, StatusCompleted, StatusPending}

// ParseStatusFilter validates a filter name. The empty string means all.
func ParseStatusFilter(s string) (StatusFilter, error) {
	switch StatusFilter(strings.ToLower(strings.TrimSpace(s))) {
	case "", StatusAll:
		return StatusAll, nil
	case StatusCompleted, "done":
		return StatusCompleted, nil
	case StatusPending, "open":
		return StatusPending, nil
	}
	return "", clierr.Newf(clierr.InvalidFilter, "invalid status filter %q", s).
		WithDetails(map[string]any{
			"filter":  s,
			"allowed": StatusFilters,
		})
}

// Next returns the filter after f in display order, wrapping around.
func (f StatusFilter) Next() StatusFilter {
	for i, s := range StatusFilters {
		if s == f {
			return StatusFilters[(i+1)%len(StatusFilters)]
		}
	}
	return StatusAll
}

// FilterOptions defines which tasks a view includes.
type FilterOptions struct {
	Status        StatusFilter
	HideCompleted bool   // drops completed tasks on top of Status
	Search        string // case-insensitive substring of title + " " + description
}

// Filter returns the tasks that pass every stage, in their original order.
// Stages run in a fixed order: status, hide-completed, search. The input
// slice and its tasks are not modified.
func Filter(tasks []*task.Task, opts FilterOptions) []*task.Task {
	query := strings.ToLower(opts.Search)
	result := make([]*task.Task, 0, len(tasks))
	for _, t := range tasks {
		if !matchesStatus(t, opts.Status) {
			continue
		}
		if opts.HideCompleted && t.Completed {
			continue
		}
		if query != "" && !matchesSearch(t, query) {
			continue
		}
		result = append(result, t)
	}
	return result
}

func matchesStatus(t *task.Task, f StatusFilter) bool {
	switch f {
	case StatusCompleted:
		return t.Completed
	case StatusPending:
		return !t.Completed
	default:
		return true
	}
}

// matchesSearch expects an already lower-cased query.
func matchesSearch(t *task.Task, query string) bool {
	return strings.Contains(strings.ToLower(t.Title+" "+t.Description), query)
}

// HasCompleted reports whether any task is completed. Controls that only
// make sense for completed tasks (clear, hide) key off this.
func HasCompleted(tasks []*task.Task) bool {
	for _, t := range tasks {
		if t.Completed {
			return true
		}
	}
	return false
}
