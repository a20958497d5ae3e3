package board

import (
	"strings"

	"github.com/twiced-technology-gmbh/tasktracker/internal/clierr"
	"github.com/twiced-technology-gmbh/tasktracker/internal/task"
)

// Direction is a manual move direction.
type Direction string

// Move directions.
const (
	Up   Direction = "up"
	Down Direction = "down"
)

// ParseDirection validates a direction argument.
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case Up, "u", "prev":
		return Up, nil
	case Down, "d", "next":
		return Down, nil
	}
	return "", clierr.Newf(clierr.InvalidDirection, "invalid direction %q (expected up or down)", s).
		WithDetails(map[string]any{
			"direction": s,
			"allowed":   []Direction{Up, Down},
		})
}

// Swap exchanges the task at index i with its neighbour in direction dir.
// It reports whether anything moved; the first task moving up and the last
// moving down are no-ops.
func Swap(tasks []*task.Task, i int, dir Direction) bool {
	if i < 0 || i >= len(tasks) {
		return false
	}
	j := i - 1
	if dir == Down {
		j = i + 1
	}
	if j < 0 || j >= len(tasks) {
		return false
	}
	tasks[i], tasks[j] = tasks[j], tasks[i]
	return true
}
