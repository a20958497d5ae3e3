package board

import (
	"time"

	"github.com/twiced-technology-gmbh/tasktracker/internal/clierr"
	"github.com/twiced-technology-gmbh/tasktracker/internal/task"
)

const (
	fieldDeadline = "deadline"
	fieldStatus   = "status"
)

// GroupFields lists the supported --group-by values.
var GroupFields = []string{fieldDeadline, fieldStatus}

// Deadline buckets in display order.
const (
	BucketExpired    = "expired"
	BucketToday      = "today"
	BucketThisWeek   = "this week"
	BucketLater      = "later"
	BucketNoDeadline = "no deadline"
	BucketCompleted  = "completed"
	BucketPending    = "pending"
)

var (
	deadlineBuckets = []string{BucketExpired, BucketToday, BucketThisWeek, BucketLater, BucketNoDeadline, BucketCompleted}
	statusBuckets   = []string{BucketPending, BucketCompleted}
)

// GroupedSummary holds tasks grouped by a field.
type GroupedSummary struct {
	Field  string         `json:"field"`
	Groups []GroupSummary `json:"groups"`
}

// GroupSummary is one group within a grouped view.
type GroupSummary struct {
	Key   string       `json:"key"`
	Total int          `json:"total"`
	Tasks []*task.Task `json:"tasks"`
}

// ValidateGroupBy checks that field is a supported grouping.
func ValidateGroupBy(field string) error {
	for _, f := range GroupFields {
		if f == field {
			return nil
		}
	}
	return clierr.Newf(clierr.InvalidGroupBy, "invalid group-by field %q", field).
		WithDetails(map[string]any{
			"field":   field,
			"allowed": GroupFields,
		})
}

// GroupBy buckets tasks by the given field. Groups come out in a fixed
// display order, empty groups are dropped, and tasks keep their list order
// within a group.
func GroupBy(tasks []*task.Task, field string, now time.Time) GroupedSummary {
	order := deadlineBuckets
	keyFn := func(t *task.Task) string { return deadlineBucket(t, now) }
	if field == fieldStatus {
		order = statusBuckets
		keyFn = statusBucket
	}

	groups := make(map[string][]*task.Task, len(order))
	for _, t := range tasks {
		k := keyFn(t)
		groups[k] = append(groups[k], t)
	}

	result := GroupedSummary{Field: field}
	for _, key := range order {
		ts := groups[key]
		if len(ts) == 0 {
			continue
		}
		result.Groups = append(result.Groups, GroupSummary{Key: key, Total: len(ts), Tasks: ts})
	}
	return result
}

func statusBucket(t *task.Task) string {
	if t.Completed {
		return BucketCompleted
	}
	return BucketPending
}

func deadlineBucket(t *task.Task, now time.Time) string {
	switch {
	case t.Completed:
		return BucketCompleted
	case t.Deadline == nil:
		return BucketNoDeadline
	case t.Expired(now):
		return BucketExpired
	}
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch {
	case t.Deadline.Before(startOfDay.AddDate(0, 0, 1)):
		return BucketToday
	case t.Deadline.Before(startOfDay.AddDate(0, 0, 7)): //nolint:mnd // one week
		return BucketThisWeek
	default:
		return BucketLater
	}
}
