// Package countdown turns task deadlines into remaining-time labels.
package countdown

import (
	"strconv"
	"time"

	"github.com/twiced-technology-gmbh/tasktracker/internal/task"
)

// Expired is the terminal label once the deadline has been reached.
const Expired = "Expired"

// DefaultInterval is how often visible countdowns are re-evaluated.
const DefaultInterval = time.Minute

const day = 24 * time.Hour

// Format returns the remaining-time label for a deadline. A nil deadline has
// no label. Units are floored so the label never grows as now advances.
func Format(deadline *time.Time, now time.Time) string {
	if deadline == nil {
		return ""
	}
	remaining := deadline.Sub(now)
	if remaining <= 0 {
		return Expired
	}
	return formatRemaining(remaining) + " left"
}

func formatRemaining(d time.Duration) string {
	switch {
	case d >= day:
		days := int(d / day)
		hours := int((d % day) / time.Hour)
		return strconv.Itoa(days) + "d " + strconv.Itoa(hours) + "h"
	case d >= time.Hour:
		hours := int(d / time.Hour)
		minutes := int((d % time.Hour) / time.Minute)
		return strconv.Itoa(hours) + "h " + strconv.Itoa(minutes) + "m"
	case d >= time.Minute:
		return strconv.Itoa(int(d/time.Minute)) + "m"
	default:
		return "<1m"
	}
}

// Label is Format applied to a task.
func Label(t *task.Task, now time.Time) string {
	return Format(t.Deadline, now)
}

// HasDeadline reports whether any of the tasks carries a deadline, i.e.
// whether a view showing them needs periodic re-evaluation.
func HasDeadline(tasks []*task.Task) bool {
	for _, t := range tasks {
		if t.Deadline != nil {
			return true
		}
	}
	return false
}
