package board

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	logFileName   = "activity.jsonl"
	logFileMode   = 0o600
	maxLogEntries = 10000 // truncate oldest entries when log exceeds this size
)

// LogEntry represents a single activity log entry.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	TaskID    int       `json:"task_id,omitempty"`
	Detail    string    `json:"detail,omitempty"`
}

// LogPath returns the activity log location inside a data directory.
func LogPath(dataDir string) string {
	return filepath.Join(dataDir, logFileName)
}

// AppendLog appends a log entry to the activity log file.
// If the log exceeds maxLogEntries, the oldest entries are truncated.
func AppendLog(dataDir string, entry LogEntry) error {
	path := LogPath(dataDir)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, logFileMode) //nolint:gosec // log path from trusted data dir
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer f.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshaling log entry: %w", err)
	}

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing log entry: %w", err)
	}

	// Truncate if needed (best-effort; errors are non-fatal).
	_ = truncateLogIfNeeded(path)

	return nil
}

// ReadLog returns the most recent entries, oldest first. A limit of zero or
// less returns everything. Lines that fail to parse are skipped. A missing
// log is empty, not an error.
func ReadLog(dataDir string, limit int) ([]LogEntry, error) {
	lines, err := readLines(LogPath(dataDir))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading log file: %w", err)
	}

	entries := make([]LogEntry, 0, len(lines))
	for _, line := range lines {
		var e LogEntry
		if json.Unmarshal([]byte(line), &e) != nil {
			continue
		}
		entries = append(entries, e)
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	return entries, nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path) //nolint:gosec // trusted path
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}

// truncateLogIfNeeded rewrites the log keeping only the most recent
// maxLogEntries lines.
func truncateLogIfNeeded(path string) error {
	lines, err := readLines(path)
	if err != nil {
		return err
	}
	if len(lines) <= maxLogEntries {
		return nil
	}

	lines = lines[len(lines)-maxLogEntries:]
	return os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), logFileMode)
}

// LogMutation appends an activity log entry. Errors are silently discarded
// because logging should never fail a command.
func LogMutation(dataDir, action string, taskID int, detail string) {
	entry := LogEntry{
		Timestamp: time.Now(),
		Action:    action,
		TaskID:    taskID,
		Detail:    detail,
	}
	_ = AppendLog(dataDir, entry)
}
