package board

import (
	"sort"
	"time"

	"github.com/twiced-technology-gmbh/tasktracker/internal/task"
)

// urgency ranks, lowest sorts first.
const (
	rankPending = iota // incomplete, deadline in the future
	rankExpired        // incomplete, deadline reached
	rankNoDeadline     // incomplete, no deadline
	rankCompleted
)

func urgencyRank(t *task.Task, now time.Time) int {
	switch {
	case t.Completed:
		return rankCompleted
	case t.Deadline == nil:
		return rankNoDeadline
	// The exact deadline instant still ranks live; labels already read Expired.
	case t.Deadline.Sub(now) < 0:
		return rankExpired
	default:
		return rankPending
	}
}

// SortByDeadline orders tasks in place by urgency: incomplete tasks with a
// live deadline first (soonest first), then expired ones, then tasks without
// a deadline, then completed tasks. The sort is stable, so manual order
// breaks every tie.
func SortByDeadline(tasks []*task.Task, now time.Time) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return lessByDeadline(tasks[i], tasks[j], now)
	})
}

func lessByDeadline(a, b *task.Task, now time.Time) bool {
	ra, rb := urgencyRank(a, now), urgencyRank(b, now)
	if ra != rb {
		return ra < rb
	}
	if ra != rankPending {
		return false
	}
	return a.Deadline.Before(*b.Deadline)
}
