package output

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/twiced-technology-gmbh/tasktracker/internal/board"
	"github.com/twiced-technology-gmbh/tasktracker/internal/countdown"
	"github.com/twiced-technology-gmbh/tasktracker/internal/date"
	"github.com/twiced-technology-gmbh/tasktracker/internal/task"
)

// TaskCompact renders a list of tasks in one-line-per-record compact format.
func TaskCompact(w io.Writer, tasks []*task.Task, now time.Time) {
	if len(tasks) == 0 {
		fmt.Fprintln(os.Stderr, "No tasks found.")
		return
	}

	for _, t := range tasks {
		fmt.Fprintln(w, formatTaskLine(t, now))
	}
}

// TaskDetailCompact renders a single task with detail in compact format.
func TaskDetailCompact(w io.Writer, t *task.Task, now time.Time) {
	fmt.Fprintln(w, formatTaskLine(t, now))
	fmt.Fprintln(w, "  created:"+t.CreatedAt.Local().Format("2006-01-02"))

	if t.Description != "" {
		for _, line := range strings.Split(t.Description, "\n") {
			fmt.Fprintln(w, "  "+line)
		}
	}
}

// OverviewCompact renders a summary in compact format.
func OverviewCompact(w io.Writer, o board.Overview) {
	line := o.Progress() + " (" + strconv.FormatFloat(o.Percent, 'f', 0, 64) + "%)"
	var annotations []string
	if o.Expired > 0 {
		annotations = append(annotations, strconv.Itoa(o.Expired)+" expired")
	}
	if o.DueToday > 0 {
		annotations = append(annotations, strconv.Itoa(o.DueToday)+" due today")
	}
	if o.Sorted {
		annotations = append(annotations, "sorted by deadline")
	}
	if len(annotations) > 0 {
		line += " [" + strings.Join(annotations, ", ") + "]"
	}
	fmt.Fprintln(w, line)
	if o.AllCompleted {
		fmt.Fprintln(w, board.CelebrationMessage)
	}
}

// GroupedCompact renders a grouped view with one line per group.
func GroupedCompact(w io.Writer, gs board.GroupedSummary) {
	for _, g := range gs.Groups {
		ids := make([]string, len(g.Tasks))
		for i, t := range g.Tasks {
			ids[i] = "#" + strconv.Itoa(t.ID)
		}
		fmt.Fprintf(w, "%s: %d %s\n", g.Key, g.Total, strings.Join(ids, " "))
	}
}

// HistoryCompact renders activity log entries one per line.
func HistoryCompact(w io.Writer, entries []board.LogEntry) {
	for _, e := range entries {
		line := e.Timestamp.Local().Format(date.InputLayout) + " " + e.Action
		if e.TaskID > 0 {
			line += " #" + strconv.Itoa(e.TaskID)
		}
		if e.Detail != "" {
			line += " " + e.Detail
		}
		fmt.Fprintln(w, line)
	}
}

// formatTaskLine builds the one-line representation of a task.
func formatTaskLine(t *task.Task, now time.Time) string {
	mark := markPending
	if t.Completed {
		mark = markDone
	}
	line := "#" + strconv.Itoa(t.ID) + " " + mark + " " + t.Title

	if t.Deadline != nil {
		line += " due:" + strings.ReplaceAll(date.Format(t.Deadline), " ", "T")
		if !t.Completed {
			line += " (" + countdown.Label(t, now) + ")"
		}
	}
	return line
}
