package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/twiced-technology-gmbh/tasktracker/internal/board"
	"github.com/twiced-technology-gmbh/tasktracker/internal/task"
)

var now = time.Date(2025, 4, 10, 10, 0, 0, 0, time.Local)

func sample() []*task.Task {
	soon := now.Add(90 * time.Minute)
	past := now.Add(-time.Hour)
	return []*task.Task{
		{ID: 1, Title: "Write report", Deadline: &soon, CreatedAt: now},
		{ID: 2, Title: "Call mom", Completed: true, CreatedAt: now},
		{ID: 3, Title: "Pay rent", Deadline: &past, CreatedAt: now},
	}
}

func TestMain(m *testing.M) {
	DisableColor()
	m.Run()
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name       string
		env        string
		configured string
		flags      [3]bool
		want       Format
	}{
		{"default", "", "", [3]bool{}, FormatTable},
		{"json flag wins", "compact", "compact", [3]bool{true, true, true}, FormatJSON},
		{"env", "compact", "", [3]bool{}, FormatCompact},
		{"flag beats env", "compact", "", [3]bool{false, true, false}, FormatTable},
		{"configured", "", "json", [3]bool{}, FormatJSON},
		{"env beats configured", "table", "json", [3]bool{}, FormatTable},
		{"bad env falls through", "yaml", "oneline", [3]bool{}, FormatCompact},
		{"bad configured", "", "yaml", [3]bool{}, FormatTable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvFormat, tt.env)
			if got := Detect(tt.flags[0], tt.flags[1], tt.flags[2], tt.configured); got != tt.want {
				t.Fatalf("Detect = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat(" JSON "); err != nil || f != FormatJSON {
		t.Fatalf("ParseFormat(JSON) = %v, %v", f, err)
	}
	if f, err := ParseFormat(""); err != nil || f != FormatTable {
		t.Fatalf("empty name = %v, %v", f, err)
	}
	if _, err := ParseFormat("yaml"); err == nil {
		t.Fatal("yaml accepted")
	}
}

func TestTaskTable(t *testing.T) {
	var buf bytes.Buffer
	TaskTable(&buf, sample(), now)
	out := buf.String()

	for _, want := range []string{"TITLE", "Write report", "1h 30m left", "[x]", "Expired"} {
		if !strings.Contains(out, want) {
			t.Fatalf("table missing %q:\n%s", want, out)
		}
	}
	if lines := strings.Count(out, "\n"); lines != 4 {
		t.Fatalf("expected header plus 3 rows, got %d lines:\n%s", lines, out)
	}
}

func TestTaskCompact(t *testing.T) {
	var buf bytes.Buffer
	TaskCompact(&buf, sample(), now)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")

	want := []string{
		"#1 [ ] Write report due:2025-04-10T11:30 (1h 30m left)",
		"#2 [x] Call mom",
		"#3 [ ] Pay rent due:2025-04-10T09:00 (Expired)",
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines: %q", len(lines), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestTaskViewsJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, TaskViews(sample(), now)); err != nil {
		t.Fatalf("json: %v", err)
	}
	var got []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got[0]["title"] != "Write report" || got[0]["countdown"] != "1h 30m left" {
		t.Fatalf("first = %v", got[0])
	}
	if got[2]["expired"] != true {
		t.Fatalf("third should be expired: %v", got[2])
	}
	if got[1]["expired"] != false {
		t.Fatalf("completed task reported expired: %v", got[1])
	}
}

func TestOverviewOutputs(t *testing.T) {
	o := board.Summary(sample(), now)

	var table bytes.Buffer
	OverviewTable(&table, o)
	if !strings.Contains(table.String(), "1 of 3 tasks completed") {
		t.Fatalf("overview table:\n%s", table.String())
	}

	var compact bytes.Buffer
	OverviewCompact(&compact, o)
	if got := strings.TrimSpace(compact.String()); got != "1 of 3 tasks completed (33%) [1 expired, 1 due today]" {
		t.Fatalf("compact = %q", got)
	}

	done := []*task.Task{{ID: 1, Title: "x", Completed: true}}
	compact.Reset()
	OverviewCompact(&compact, board.Summary(done, now))
	if !strings.Contains(compact.String(), board.CelebrationMessage) {
		t.Fatalf("missing celebration:\n%s", compact.String())
	}
}

func TestTaskDetail(t *testing.T) {
	tk := sample()[0]
	tk.Description = "Quarterly **numbers**"

	var buf bytes.Buffer
	TaskDetail(&buf, tk, now)
	out := buf.String()
	for _, want := range []string{"Task #1: Write report", "1h 30m left", "Quarterly", "numbers"} {
		if !strings.Contains(out, want) {
			t.Fatalf("detail missing %q:\n%s", want, out)
		}
	}
}

func TestHistoryCompact(t *testing.T) {
	var buf bytes.Buffer
	HistoryCompact(&buf, []board.LogEntry{
		{Timestamp: now, Action: "add", TaskID: 4, Detail: "Buy milk"},
		{Timestamp: now, Action: "sort"},
	})
	want := "2025-04-10 10:00 add #4 Buy milk\n2025-04-10 10:00 sort\n"
	if buf.String() != want {
		t.Fatalf("history = %q", buf.String())
	}
}
