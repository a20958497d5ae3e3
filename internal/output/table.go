package output

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/twiced-technology-gmbh/tasktracker/internal/board"
	"github.com/twiced-technology-gmbh/tasktracker/internal/countdown"
	"github.com/twiced-technology-gmbh/tasktracker/internal/date"
	"github.com/twiced-technology-gmbh/tasktracker/internal/task"
)

const (
	markDone    = "[x]"
	markPending = "[ ]"
	detailWidth = 80
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("244"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("34"))
	expiredStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	soonStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	leftStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	celebrate    = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)

	markdownStyle = "dark"
)

// DisableColor strips all styling from table output.
func DisableColor() {
	headerStyle = lipgloss.NewStyle()
	dimStyle = lipgloss.NewStyle()
	doneStyle = lipgloss.NewStyle()
	expiredStyle = lipgloss.NewStyle()
	soonStyle = lipgloss.NewStyle()
	leftStyle = lipgloss.NewStyle()
	celebrate = lipgloss.NewStyle()
	markdownStyle = "notty"
}

// TaskTable renders a list of tasks as a formatted table.
func TaskTable(w io.Writer, tasks []*task.Task, now time.Time) {
	if len(tasks) == 0 {
		fmt.Fprintln(os.Stderr, "No tasks found.")
		return
	}

	const pad = 2
	idW, titleW, deadlineW := 4, 7, 10
	for _, t := range tasks {
		idW = max(idW, len(strconv.Itoa(t.ID))+pad)
		titleW = max(titleW, min(lipgloss.Width(t.Title)+pad, task.MaxTitleLength+pad))
		deadlineW = max(deadlineW, len(date.Format(t.Deadline))+pad)
	}

	header := fmt.Sprintf("%-*s %-4s %-*s %-*s %s",
		idW, "ID", "", titleW, "TITLE", deadlineW, "DEADLINE", "REMAINING")
	fmt.Fprintln(w, headerStyle.Render(strings.TrimRight(header, " ")))

	for _, t := range tasks {
		mark := markPending
		title := t.Title
		if t.Completed {
			mark = doneStyle.Render(markDone)
			title = dimStyle.Render(title)
		}
		deadline := date.Format(t.Deadline)
		if deadline == "" {
			deadline = dimStyle.Render("--")
		}

		row := fmt.Sprintf("%-*d %s %s %s %s",
			idW, t.ID,
			padRight(mark, 4), //nolint:mnd // mark column width
			padRight(title, titleW),
			padRight(deadline, deadlineW),
			remaining(t, now))
		fmt.Fprintln(w, strings.TrimRight(row, " "))
	}
}

// TaskDetail renders a single task with full detail. The description is
// rendered as markdown.
func TaskDetail(w io.Writer, t *task.Task, now time.Time) {
	titleLine := fmt.Sprintf("Task #%d: %s", t.ID, t.Title)
	fmt.Fprintln(w, lipgloss.NewStyle().Bold(true).Render(titleLine))
	fmt.Fprintln(w, strings.Repeat("─", lipgloss.Width(titleLine)))

	status := "pending"
	if t.Completed {
		status = doneStyle.Render("completed")
	}
	printField(w, "Status", status)
	if t.Deadline != nil {
		printField(w, "Deadline", date.Format(t.Deadline))
		printField(w, "Remaining", remaining(t, now))
	} else {
		printField(w, "Deadline", dimStyle.Render("--"))
	}
	printField(w, "Created", t.CreatedAt.Local().Format(date.InputLayout))

	if t.Description != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, RenderMarkdown(t.Description, detailWidth))
	}
}

// RenderMarkdown renders text as terminal markdown, falling back to the raw
// text wrapped to width.
func RenderMarkdown(body string, width int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(markdownStyle),
		glamour.WithWordWrap(width),
		glamour.WithPreservedNewLines(),
	)
	if err != nil {
		return lipgloss.NewStyle().Width(width).Render(body)
	}
	out, err := r.Render(body)
	if err != nil {
		return lipgloss.NewStyle().Width(width).Render(body)
	}
	return strings.TrimRight(out, "\n")
}

// OverviewTable renders progress and deadline counts as a small dashboard.
func OverviewTable(w io.Writer, o board.Overview) {
	fmt.Fprintln(w, lipgloss.NewStyle().Bold(true).Render(o.Progress()))
	fmt.Fprintf(w, "%s %.0f%%\n\n", progressBar(o.Percent), o.Percent)

	const labelW = 16
	rows := []struct {
		label string
		n     int
	}{
		{"Pending", o.Pending},
		{"Completed", o.Completed},
		{"With deadline", o.WithDeadline},
		{"Due today", o.DueToday},
		{"Expired", o.Expired},
	}
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-*s %6s", labelW, "TASKS", "COUNT")))
	for _, r := range rows {
		count := strconv.Itoa(r.n)
		if r.label == "Expired" && r.n > 0 {
			count = expiredStyle.Render(count)
		}
		fmt.Fprintf(w, "%-*s %6s\n", labelW, r.label, count)
	}

	order := "manual"
	if o.Sorted {
		order = "by deadline"
	}
	fmt.Fprintln(w)
	printField(w, "Order", order)

	if o.AllCompleted {
		fmt.Fprintln(w)
		fmt.Fprintln(w, celebrate.Render(board.CelebrationMessage))
	}
}

// GroupedTable renders a grouped view with the tasks of each group.
func GroupedTable(w io.Writer, gs board.GroupedSummary, now time.Time) {
	if len(gs.Groups) == 0 {
		fmt.Fprintln(os.Stderr, "No groups found.")
		return
	}

	for i, g := range gs.Groups {
		if i > 0 {
			fmt.Fprintln(w)
		}
		title := fmt.Sprintf("%s (%d tasks)", g.Key, g.Total)
		fmt.Fprintln(w, lipgloss.NewStyle().Bold(true).Render(title))
		for _, t := range g.Tasks {
			line := fmt.Sprintf("  #%d %s", t.ID, t.Title)
			if label := countdown.Label(t, now); label != "" && !t.Completed {
				line += "  " + styledCountdown(label, t, now)
			}
			fmt.Fprintln(w, line)
		}
	}
}

// HistoryTable renders activity log entries, oldest first.
func HistoryTable(w io.Writer, entries []board.LogEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "No activity recorded.")
		return
	}

	const actionW = 16
	header := fmt.Sprintf("%-16s %-*s %-6s %s", "TIME", actionW, "ACTION", "TASK", "DETAIL")
	fmt.Fprintln(w, headerStyle.Render(header))
	for _, e := range entries {
		id := dimStyle.Render("--")
		if e.TaskID > 0 {
			id = "#" + strconv.Itoa(e.TaskID)
		}
		row := fmt.Sprintf("%-16s %-*s %s %s",
			e.Timestamp.Local().Format(date.InputLayout),
			actionW, e.Action,
			padRight(id, 6), //nolint:mnd // task column width
			e.Detail)
		fmt.Fprintln(w, strings.TrimRight(row, " "))
	}
}

// Messagef prints a simple formatted message line.
func Messagef(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format+"\n", args...)
}

// Celebrate prints the all-completed message.
func Celebrate(w io.Writer) {
	fmt.Fprintln(w, celebrate.Render(board.CelebrationMessage))
}

func printField(w io.Writer, label, value string) {
	fmt.Fprintf(w, "  %-12s %s\n", label+":", value)
}

// remaining renders the countdown column for a task.
func remaining(t *task.Task, now time.Time) string {
	if t.Completed {
		return dimStyle.Render("done")
	}
	label := countdown.Label(t, now)
	if label == "" {
		return dimStyle.Render("--")
	}
	return styledCountdown(label, t, now)
}

func styledCountdown(label string, t *task.Task, now time.Time) string {
	left, _ := t.Remaining(now)
	switch {
	case left <= 0:
		return expiredStyle.Render(label)
	case left < time.Hour:
		return soonStyle.Render(label)
	default:
		return leftStyle.Render(label)
	}
}

func progressBar(percent float64) string {
	const width = 20
	filled := int(percent / 100 * width) //nolint:mnd // percent
	return doneStyle.Render(strings.Repeat("█", filled)) + dimStyle.Render(strings.Repeat("░", width-filled))
}

// padRight pads s with spaces to the given visible width, accounting for ANSI
// escape codes that are invisible but consume bytes.
func padRight(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}
