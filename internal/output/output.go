// Package output renders tasks, summaries and errors for the CLI.
package output

import (
	"fmt"
	"os"
	"strings"
)

// EnvFormat names the environment variable that overrides the configured
// format.
const EnvFormat = "TASKTRACKER_OUTPUT"

// Format is a CLI rendering mode.
type Format int

const (
	// FormatTable renders lipgloss tables and detail views.
	FormatTable Format = iota
	// FormatJSON renders JSON documents.
	FormatJSON
	// FormatCompact renders one line per task.
	FormatCompact
)

var formatNames = map[string]Format{
	"":        FormatTable,
	"table":   FormatTable,
	"json":    FormatJSON,
	"compact": FormatCompact,
	"oneline": FormatCompact,
}

// ParseFormat maps a format name to a Format. The empty name is the table.
func ParseFormat(name string) (Format, error) {
	f, ok := formatNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return FormatTable, fmt.Errorf("unknown output format %q (want table, json or compact)", name)
	}
	return f, nil
}

// Detect picks the format for a command. Flags win over TASKTRACKER_OUTPUT,
// which wins over the configured name; an unrecognised name is skipped.
func Detect(jsonFlag, tableFlag, compactFlag bool, configured string) Format {
	switch {
	case jsonFlag:
		return FormatJSON
	case compactFlag:
		return FormatCompact
	case tableFlag:
		return FormatTable
	}

	for _, name := range []string{os.Getenv(EnvFormat), configured} {
		if strings.TrimSpace(name) == "" {
			continue
		}
		if f, err := ParseFormat(name); err == nil {
			return f
		}
	}
	return FormatTable
}
