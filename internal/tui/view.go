package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/twiced-technology-gmbh/tasktracker/internal/countdown"
	"github.com/twiced-technology-gmbh/tasktracker/internal/task"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	badgeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236")).
			Padding(0, 1)

	cursorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true)
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Strikethrough(true)
	checkStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("34"))
	expiredStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	soonStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	leftStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	toastStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Width(12) //nolint:mnd // label column

	dialogPadY = 1
	dialogPadX = 2

	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(dialogPadY, dialogPadX)
)

// View implements tea.Model.
func (b *Board) View() string {
	if b.width == 0 {
		return "Loading..."
	}

	switch b.view {
	case viewForm:
		return b.viewForm()
	case viewConfirmDelete:
		return b.viewDeleteConfirm()
	case viewConfirmClear:
		return b.viewClearConfirm()
	default:
		return b.viewList()
	}
}

func (b *Board) viewList() string {
	lines := []string{b.renderHeader(), ""}

	rows := b.listHeight()
	if len(b.visible) == 0 {
		msg := "No tasks yet. Press a to add one."
		if b.store.Len() > 0 {
			msg = "No tasks match the current view."
		}
		lines = append(lines, dimStyle.Render("  "+msg))
	}
	now := b.now()
	end := min(len(b.visible), b.offset+max(rows, 1))
	for i := b.offset; i < end; i++ {
		lines = append(lines, b.renderRow(b.visible[i], i == b.cursor, now))
	}
	if b.view == viewSearch {
		lines = append(lines, "", b.search.View())
	}

	lines = append(lines, "", b.renderStatusBar())
	return strings.Join(lines, "\n")
}

func (b *Board) renderHeader() string {
	parts := []string{headerStyle.Render("Tasks")}
	parts = append(parts, badgeStyle.Render("filter: "+string(b.filter.Status)))
	if b.filter.HideCompleted {
		parts = append(parts, badgeStyle.Render("hiding completed"))
	}
	if b.overview.Sorted {
		parts = append(parts, badgeStyle.Render("sorted by deadline"))
	}
	if b.filter.Search != "" && b.view != viewSearch {
		parts = append(parts, badgeStyle.Render("search: "+b.filter.Search))
	}
	return strings.Join(parts, " ")
}

func (b *Board) renderRow(t *task.Task, active bool, now time.Time) string {
	pointer := "  "
	if active {
		pointer = cursorStyle.Render("> ")
	}
	label := b.renderCountdown(t, now)
	const fixed = 6 // pointer, check, spaces
	titleW := max(b.width-fixed-lipgloss.Width(label)-2, 10) //nolint:mnd // minimum title width

	check := "[ ]"
	title := truncate(t.Title, titleW)
	if t.Completed {
		check = checkStyle.Render("[x]")
		title = doneStyle.Render(title)
	}
	row := pointer + check + " " + padRight(title, titleW)
	if label != "" {
		row += "  " + label
	}

	if active && t.Description != "" {
		row += "\n" + dimStyle.Render("      "+truncate(firstLine(t.Description), max(b.width-6, 10))) //nolint:mnd // indent
	}
	return row
}

func (b *Board) renderCountdown(t *task.Task, now time.Time) string {
	if t.Completed {
		return ""
	}
	label := countdown.Label(t, now)
	if label == "" {
		return ""
	}
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

func (b *Board) renderStatusBar() string {
	o := b.overview
	progress := o.Progress()
	if o.Total > 0 {
		progress += fmt.Sprintf(" (%.0f%%)", o.Percent)
	}
	lines := []string{statusBarStyle.Render(" " + progress)}

	switch {
	case b.err != nil:
		lines = append(lines, errorStyle.Render(truncate(" Error: "+b.err.Error(), b.width)))
	case b.toast != "":
		lines = append(lines, toastStyle.Render(" "+b.toast))
	}

	lines = append(lines, statusBarStyle.Render(truncate(" "+renderHints(b.listHints()), b.width)))
	return strings.Join(lines, "\n")
}

func (b *Board) viewForm() string {
	title := "New task"
	if b.form.editID != 0 {
		title = fmt.Sprintf("Edit task #%d", b.form.editID)
	}
	labels := [fieldCount]string{"Title", "Description", "Deadline"}

	lines := []string{headerStyle.Render(title), ""}
	for i := range b.form.inputs {
		label := labelStyle.Render(labels[i])
		if i == b.form.focus {
			label = cursorStyle.Inherit(labelStyle).Render(labels[i])
		}
		lines = append(lines, label+" "+b.form.inputs[i].View())
	}
	if b.form.err != nil {
		lines = append(lines, "", errorStyle.Render(b.form.err.Error()))
	}
	k := b.keys
	lines = append(lines, "", dimStyle.Render(renderHints([]key.Binding{k.NextField, k.PrevField, k.Submit, k.Cancel})))
	return dialogStyle.Render(strings.Join(lines, "\n"))
}

func (b *Board) viewDeleteConfirm() string {
	content := errorStyle.Render("Delete task?") + "\n\n" +
		fmt.Sprintf("  #%d: %s", b.deleteID, b.deleteTitle) + "\n\n" +
		dimStyle.Render("y:yes  n:no")

	return dialogStyle.Render(content)
}

func (b *Board) viewClearConfirm() string {
	noun := "tasks"
	if b.clearCount == 1 {
		noun = "task"
	}
	content := errorStyle.Render("Clear completed tasks?") + "\n\n" +
		fmt.Sprintf("  %d completed %s will be removed.", b.clearCount, noun) + "\n\n" +
		dimStyle.Render("y:yes  n:no")

	return dialogStyle.Render(content)
}

func renderHints(bindings []key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, kb := range bindings {
		h := kb.Help()
		parts = append(parts, h.Key+":"+h.Desc)
	}
	return strings.Join(parts, " ")
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func padRight(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}

func truncate(s string, maxLen int) string {
	if maxLen < 4 { //nolint:mnd // minimum length for truncation
		maxLen = 4
	}
	if lipgloss.Width(s) <= maxLen {
		return s
	}
	// Slice by runes to avoid breaking multi-byte UTF-8 characters.
	runes := []rune(s)
	target := maxLen - 3 //nolint:mnd // room for "..."
	if target > len(runes) {
		target = len(runes)
	}
	// Trim runes from the end until the display width fits.
	for target > 0 && lipgloss.Width(string(runes[:target])) > maxLen-3 {
		target--
	}
	return string(runes[:target]) + "..."
}
