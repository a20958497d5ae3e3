// Package date parses and formats task deadlines.
package date

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// InputLayout is the layout deadlines are shown and edited in.
const InputLayout = "2006-01-02 15:04"

// layouts are tried in order for absolute deadlines.
var layouts = []string{
	InputLayout,
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

const dateOnly = "2006-01-02"

// Parse reads a deadline. Accepted forms:
//   - "2006-01-02 15:04", "2006-01-02T15:04" (local time, like a datetime-local field)
//   - RFC3339 with an explicit offset
//   - "2006-01-02", meaning the end of that day (23:59)
//   - relative offsets from now: "+90m", "+2h30m", "+3d"
//
// An empty string returns nil (no deadline).
func Parse(s string, now time.Time) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "none") {
		return nil, nil
	}

	if strings.HasPrefix(s, "+") {
		d, err := parseOffset(s[1:])
		if err != nil {
			return nil, err
		}
		t := now.Add(d).Truncate(time.Minute)
		return &t, nil
	}

	loc := now.Location()
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return &t, nil
		}
	}
	if t, err := time.ParseInLocation(dateOnly, s, loc); err == nil {
		t = t.Add(23*time.Hour + 59*time.Minute)
		return &t, nil
	}

	return nil, fmt.Errorf("cannot parse %q: expected YYYY-MM-DD HH:MM, YYYY-MM-DD, or +DURATION", s)
}

// parseOffset accepts Go durations plus a whole-day suffix ("3d").
func parseOffset(s string) (time.Duration, error) {
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid day offset %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid offset %q: %w", s, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("offset %q must be positive", s)
	}
	return d, nil
}

// Format renders a deadline in local time using InputLayout. Nil renders
// as the empty string.
func Format(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Local().Format(InputLayout)
}
