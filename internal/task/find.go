package task

import "fmt"

// ReadWarning describes a stored record that was skipped during lenient decoding.
type ReadWarning struct {
	Index int // position in the stored list, -1 for the list as a whole
	ID    int // zero when the record could not be parsed
	Err   error
}

func (w ReadWarning) String() string {
	if w.Index < 0 {
		return w.Err.Error()
	}
	if w.ID != 0 {
		return fmt.Sprintf("record %d (id %d): %v", w.Index, w.ID, w.Err)
	}
	return fmt.Sprintf("record %d: %v", w.Index, w.Err)
}

// IndexOf returns the position of the task with the given id, or -1.
func IndexOf(tasks []*Task, id int) int {
	for i, t := range tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// FindByID returns the task with the given id or a TASK_NOT_FOUND error.
func FindByID(tasks []*Task, id int) (*Task, error) {
	if i := IndexOf(tasks, id); i >= 0 {
		return tasks[i], nil
	}
	return nil, NotFound(id)
}

// MaxID returns the largest id in the list, or 0 for an empty list.
func MaxID(tasks []*Task) int {
	m := 0
	for _, t := range tasks {
		if t.ID > m {
			m = t.ID
		}
	}
	return m
}

// CloneAll deep-copies a task list.
func CloneAll(tasks []*Task) []*Task {
	out := make([]*Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}
