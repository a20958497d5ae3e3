package task

import (
	"strings"
	"unicode/utf8"

	"github.com/twiced-technology-gmbh/tasktracker/internal/clierr"
)

// ValidateTitle rejects titles that are empty after trimming.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return clierr.New(clierr.ValidationError, "title must not be empty").
			WithDetails(map[string]any{"field": "title"})
	}
	return nil
}

// ValidateLength checks the input-boundary limits on title and description.
func ValidateLength(title, description string) error {
	if n := utf8.RuneCountInString(title); n > MaxTitleLength {
		return clierr.Newf(clierr.ValidationError,
			"title is %d characters (max %d)", n, MaxTitleLength).
			WithDetails(map[string]any{
				"field":  "title",
				"length": n,
				"max":    MaxTitleLength,
			})
	}
	if n := utf8.RuneCountInString(description); n > MaxDescriptionLength {
		return clierr.Newf(clierr.ValidationError,
			"description is %d characters (max %d)", n, MaxDescriptionLength).
			WithDetails(map[string]any{
				"field":  "description",
				"length": n,
				"max":    MaxDescriptionLength,
			})
	}
	return nil
}

// ValidateInput runs every boundary check for a task draft.
func ValidateInput(t *Task) error {
	if err := ValidateTitle(t.Title); err != nil {
		return err
	}
	return ValidateLength(t.Title, t.Description)
}

// ValidateDate returns a CLIError for invalid deadline input.
func ValidateDate(input string, err error) *clierr.Error {
	return clierr.Newf(clierr.InvalidDate, "invalid deadline: %v", err).
		WithDetails(map[string]any{
			"field": "deadline",
			"input": input,
		})
}

// ValidateTaskID returns a CLIError for invalid task ID input.
func ValidateTaskID(input string) *clierr.Error {
	return clierr.Newf(clierr.InvalidTaskID, "invalid task ID %q", input).
		WithDetails(map[string]any{"input": input})
}

// NotFound returns a CLIError for a task id missing from the list.
func NotFound(id int) *clierr.Error {
	return clierr.Newf(clierr.TaskNotFound, "task not found: #%d", id).
		WithDetails(map[string]any{"id": id})
}
