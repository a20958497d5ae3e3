package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/twiced-technology-gmbh/tasktracker/internal/date"
	"github.com/twiced-technology-gmbh/tasktracker/internal/task"
)

const (
	fieldTitle = iota
	fieldDescription
	fieldDeadline
	fieldCount
)

// form edits one task. editID is zero when adding.
type form struct {
	editID    int
	completed bool // carried through an edit unchanged
	// deadline is kept as is while its field still shows shown.
	deadline *time.Time
	shown    string
	inputs    [fieldCount]textinput.Model
	focus     int
	err       error
}

func newForm() form {
	var f form
	labels := [fieldCount]string{"What needs doing?", "Details (optional)", "YYYY-MM-DD HH:MM, +2h, +3d"}
	limits := [fieldCount]int{task.MaxTitleLength, task.MaxDescriptionLength, 0}
	for i := range f.inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = labels[i]
		ti.CharLimit = limits[i]
		ti.Width = 50 //nolint:mnd // form field width
		f.inputs[i] = ti
	}
	return f
}

// openAdd resets the form for a new task.
func (f *form) openAdd() tea.Cmd {
	*f = newForm()
	return f.focusField(fieldTitle)
}

// openEdit fills the form from an existing task.
func (f *form) openEdit(t task.Task) tea.Cmd {
	*f = newForm()
	f.editID = t.ID
	f.completed = t.Completed
	f.inputs[fieldTitle].SetValue(t.Title)
	f.inputs[fieldDescription].SetValue(t.Description)
	f.deadline = t.Deadline
	f.shown = date.Format(t.Deadline)
	f.inputs[fieldDeadline].SetValue(f.shown)
	return f.focusField(fieldTitle)
}

func (f *form) focusField(i int) tea.Cmd {
	f.focus = (i + fieldCount) % fieldCount
	for j := range f.inputs {
		f.inputs[j].Blur()
	}
	return f.inputs[f.focus].Focus()
}

func (f *form) next() tea.Cmd { return f.focusField(f.focus + 1) }
func (f *form) prev() tea.Cmd { return f.focusField(f.focus - 1) }

// update forwards a message to the focused input.
func (f *form) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

// draft validates the inputs and builds the task they describe.
func (f *form) draft(now time.Time) (task.Task, error) {
	t := task.Task{
		ID:          f.editID,
		Completed:   f.completed,
		Title:       strings.TrimSpace(f.inputs[fieldTitle].Value()),
		Description: strings.TrimSpace(f.inputs[fieldDescription].Value()),
	}
	if err := task.ValidateInput(&t); err != nil {
		return task.Task{}, err
	}
	raw := f.inputs[fieldDeadline].Value()
	if f.editID != 0 && raw == f.shown {
		t.Deadline = f.deadline
		return t, nil
	}
	deadline, err := date.Parse(raw, now)
	if err != nil {
		return task.Task{}, task.ValidateDate(raw, err)
	}
	t.Deadline = deadline
	return t, nil
}
