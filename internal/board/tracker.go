package board

import "github.com/twiced-technology-gmbh/tasktracker/internal/task"

// CelebrationMessage is shown when the list becomes fully completed.
const CelebrationMessage = "All tasks completed!"

// CompletionTracker latches on the transition into "every task completed".
// The zero value is ready to use.
type CompletionTracker struct {
	celebrated bool
}

// NewCompletionTracker returns a tracker with a restored latch state.
func NewCompletionTracker(celebrated bool) *CompletionTracker {
	return &CompletionTracker{celebrated: celebrated}
}

// Observe updates the latch for the current list and reports whether this
// observation is the edge into the all-completed state. An empty list is
// never all-completed.
func (c *CompletionTracker) Observe(tasks []*task.Task) bool {
	if !AllCompleted(tasks) {
		c.celebrated = false
		return false
	}
	if c.celebrated {
		return false
	}
	c.celebrated = true
	return true
}

// Celebrated returns the latch state.
func (c *CompletionTracker) Celebrated() bool {
	return c.celebrated
}

// AllCompleted reports whether the list is non-empty and fully completed.
func AllCompleted(tasks []*task.Task) bool {
	if len(tasks) == 0 {
		return false
	}
	for _, t := range tasks {
		if !t.Completed {
			return false
		}
	}
	return true
}
