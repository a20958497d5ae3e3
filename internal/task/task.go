// Package task defines the to-do item record and its validation.
package task

import (
	"time"
)

// Input limits enforced at the form boundary (CLI flags and TUI inputs).
const (
	MaxTitleLength       = 50
	MaxDescriptionLength = 200
)

// Task is a single to-do item. The JSON field names are the persisted and
// exported wire format.
type Task struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Deadline    *time.Time `json:"deadline"`
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// HasDeadline reports whether the task carries a deadline.
func (t *Task) HasDeadline() bool {
	return t.Deadline != nil
}

// Expired reports whether the task's deadline is at or before now.
// Tasks without a deadline never expire.
func (t *Task) Expired(now time.Time) bool {
	return t.Deadline != nil && !now.Before(*t.Deadline)
}

// Remaining returns the time left until the deadline. The second result is
// false when the task has no deadline.
func (t *Task) Remaining(now time.Time) (time.Duration, bool) {
	if t.Deadline == nil {
		return 0, false
	}
	return t.Deadline.Sub(now), true
}

// Clone returns a deep copy of t.
func (t *Task) Clone() *Task {
	c := *t
	if t.Deadline != nil {
		d := *t.Deadline
		c.Deadline = &d
	}
	return &c
}
