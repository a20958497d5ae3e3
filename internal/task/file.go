package task

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotList is returned by Decode when the stored value is not a JSON array.
var ErrNotList = errors.New("stored tasks are not a JSON list")

// Encode serializes an ordered task list as indented JSON.
func Encode(tasks []*Task) ([]byte, error) {
	if tasks == nil {
		tasks = []*Task{}
	}
	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling tasks: %w", err)
	}
	return append(data, '\n'), nil
}

// Decode parses an ordered task list. The value as a whole must be a JSON
// array; individual records that cannot be parsed, carry a non-positive id,
// or repeat an earlier id are skipped and reported as warnings so one bad
// record does not cost the rest of the list. Empty input decodes to an
// empty list.
func Decode(data []byte) ([]*Task, []ReadWarning, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []*Task{}, nil, nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrNotList, err)
	}

	tasks := make([]*Task, 0, len(raw))
	var warnings []ReadWarning
	seen := make(map[int]bool, len(raw))
	for i, rec := range raw {
		var t Task
		if err := json.Unmarshal(rec, &t); err != nil {
			warnings = append(warnings, ReadWarning{Index: i, Err: err})
			continue
		}
		if t.ID <= 0 {
			warnings = append(warnings, ReadWarning{Index: i, ID: t.ID, Err: errors.New("missing or non-positive id")})
			continue
		}
		if seen[t.ID] {
			warnings = append(warnings, ReadWarning{Index: i, ID: t.ID, Err: errors.New("duplicate id")})
			continue
		}
		seen[t.ID] = true
		tasks = append(tasks, &t)
	}

	return tasks, warnings, nil
}
