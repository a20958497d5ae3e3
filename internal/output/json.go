package output

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/twiced-technology-gmbh/tasktracker/internal/countdown"
	"github.com/twiced-technology-gmbh/tasktracker/internal/task"
)

// JSON writes data as indented JSON to the given writer.
func JSON(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// ErrorResponse is the JSON envelope for structured error output.
type ErrorResponse struct {
	Error   string         `json:"error"`
	Code    string         `json:"code"`
	Details map[string]any `json:"details,omitempty"`
}

// JSONError writes a structured error to the given writer as JSON.
func JSONError(w io.Writer, code, msg string, details map[string]any) {
	resp := ErrorResponse{Error: msg, Code: code, Details: details}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(resp) // best-effort; if writer fails, nothing we can do
}

// BatchResult represents the outcome of a single operation within a batch.
type BatchResult struct {
	ID    int    `json:"id"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
	Code  string `json:"code,omitempty"`
}

// TaskView is a task as printed by --json: the stored record plus the
// derived countdown fields.
type TaskView struct {
	*task.Task
	Expired   bool   `json:"expired"`
	Countdown string `json:"countdown,omitempty"`
}

// TaskViews annotates tasks with their countdown state at now.
func TaskViews(tasks []*task.Task, now time.Time) []TaskView {
	out := make([]TaskView, len(tasks))
	for i, t := range tasks {
		out[i] = TaskView{
			Task:      t,
			Expired:   !t.Completed && t.Expired(now),
			Countdown: countdown.Label(t, now),
		}
	}
	return out
}
