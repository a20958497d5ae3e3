package clierr

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsMatchesWrappedCode(t *testing.T) {
	base := Newf(TaskNotFound, "task not found: #%d", 7).WithDetails(map[string]any{"id": 7})
	wrapped := fmt.Errorf("updating: %w", base)

	if !Is(wrapped, TaskNotFound) {
		t.Fatalf("expected wrapped error to match %s", TaskNotFound)
	}
	if Is(wrapped, ValidationError) {
		t.Fatalf("did not expect %s to match", ValidationError)
	}
	if Is(errors.New("plain"), TaskNotFound) {
		t.Fatal("plain errors carry no code")
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(StoragePersistFailed, cause, "persisting tasks")

	if !errors.Is(err, cause) {
		t.Fatal("expected errors.Is to find the cause")
	}
	if err.Error() != "persisting tasks: disk full" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if !IsWarning(err) {
		t.Fatal("persist failures are warnings")
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{InternalError, 2},
		{TaskNotFound, 1},
		{ValidationError, 1},
	}
	for _, tt := range tests {
		if got := New(tt.code, "x").ExitCode(); got != tt.want {
			t.Errorf("%s: exit code = %d, want %d", tt.code, got, tt.want)
		}
	}
}
