package task

// Merge applies an edit to the current record. Title, description, deadline
// and completion come from incoming; ID and CreatedAt always stay those of
// current, so edit payloads that alter them are ignored rather than rejected.
func Merge(current, incoming *Task) *Task {
	merged := incoming.Clone()
	merged.ID = current.ID
	merged.CreatedAt = current.CreatedAt
	return merged
}

// Toggle flips the completion flag and touches nothing else.
func Toggle(t *Task) {
	t.Completed = !t.Completed
}
