package render

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"moodflow/internal/core"
	"moodflow/internal/insights"
)

var ansi = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func plain(s string) string { return ansi.ReplaceAllString(s, "") }

func ptr[T any](v T) *T { return &v }

func march2024(t *testing.T) insights.CalendarView {
	t.Helper()
	view, err := insights.AssembleCalendar(2024, 3, []core.MoodEntry{
		{ID: 1, MoodType: "happy", MoodScore: 3, Date: core.NewDate(2024, 3, 5), CreatedAt: time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)},
	})
	if err != nil {
		t.Fatal(err)
	}
	return view
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat(" JSON ", FormatGrid, FormatJSON); err != nil || f != FormatJSON {
		t.Fatalf("ParseFormat = %q, %v", f, err)
	}
	if _, err := ParseFormat("xml", FormatGrid, FormatJSON); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestCalendarGrid_MondayFirst(t *testing.T) {
	var buf bytes.Buffer
	if err := CalendarGrid(&buf, march2024(t)); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(plain(buf.String()), "\n"), "\n")

	if !strings.Contains(lines[0], "Март 2024") {
		t.Fatalf("title = %q", lines[0])
	}
	if got := strings.Fields(lines[1]); strings.Join(got, " ") != "Пн Вт Ср Чт Пт Сб Вс" {
		t.Fatalf("header = %v", got)
	}

	weeks := lines[2 : len(lines)-1]
	if len(weeks) != 5 {
		t.Fatalf("expected 5 week rows, got %d:\n%s", len(weeks), strings.Join(weeks, "\n"))
	}
	// 1 March 2024 is a Friday: four empty cells first.
	if !strings.HasPrefix(weeks[0], strings.Repeat(" ", 16)) || strings.Join(strings.Fields(weeks[0]), " ") != "1 2 3" {
		t.Errorf("first week = %q", weeks[0])
	}
	if got := strings.Join(strings.Fields(weeks[4]), " "); got != "25 26 27 28 29 30 31" {
		t.Errorf("last week = %q", got)
	}
	if !strings.Contains(lines[len(lines)-1], "1") || !strings.Contains(lines[len(lines)-1], "5") {
		t.Errorf("legend = %q", lines[len(lines)-1])
	}
}

func TestCalendarGrid_MonthStartingMonday(t *testing.T) {
	view, err := insights.AssembleCalendar(2021, 2, nil)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := CalendarGrid(&buf, view); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(plain(buf.String()), "\n"), "\n")
	weeks := lines[2 : len(lines)-1]
	if len(weeks) != 4 {
		t.Fatalf("February 2021 spans exactly 4 weeks, got %d", len(weeks))
	}
	if got := strings.Fields(weeks[0])[0]; got != "1" {
		t.Errorf("first cell = %q", got)
	}
}

func TestMondayOffset(t *testing.T) {
	if mondayOffset(time.Monday) != 0 || mondayOffset(time.Sunday) != 6 || mondayOffset(time.Friday) != 4 {
		t.Fatal("unexpected Monday-first offsets")
	}
}

func TestStructured(t *testing.T) {
	view := march2024(t)

	var jb bytes.Buffer
	if err := Structured(&jb, FormatJSON, view); err != nil {
		t.Fatal(err)
	}
	var decoded insights.CalendarView
	if err := json.Unmarshal(jb.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded.Calendar["2024-03-05"].AverageScore != 3 {
		t.Errorf("JSON day lost its score: %+v", decoded.Calendar["2024-03-05"])
	}

	var yb bytes.Buffer
	if err := Structured(&yb, FormatYAML, view); err != nil {
		t.Fatal(err)
	}
	var generic map[string]any
	if err := yaml.Unmarshal(yb.Bytes(), &generic); err != nil {
		t.Fatalf("invalid YAML: %v", err)
	}
	if generic["month_name"] != "Март" || generic["start_date"] != "2024-03-01" {
		t.Errorf("unexpected YAML top level: month_name=%v start_date=%v", generic["month_name"], generic["start_date"])
	}

	if err := Structured(&yb, FormatGrid, view); err == nil {
		t.Error("grid is not a structured format")
	}
}

func TestEntriesTable(t *testing.T) {
	var buf bytes.Buffer
	if err := EntriesTable(&buf, nil); err != nil || strings.TrimSpace(buf.String()) != "no entries" {
		t.Fatalf("empty table = %q, %v", buf.String(), err)
	}

	buf.Reset()
	err := EntriesTable(&buf, []core.MoodEntry{
		{ID: 7, MoodType: "спокойный", MoodScore: 4, Notes: ptr("прогулка"), Date: core.NewDate(2024, 3, 5)},
		{ID: 8, MoodType: "sad", MoodScore: 2, Date: core.NewDate(2024, 3, 6)},
	})
	if err != nil {
		t.Fatal(err)
	}
	out := plain(buf.String())
	for _, want := range []string{"ID", "NOTES", "спокойный", "прогулка", "2024-03-06", "sad"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestStatsSummary(t *testing.T) {
	var buf bytes.Buffer
	summary := insights.RangeSummary{
		AverageScore: 3.33,
		TotalEntries: 3,
		MoodTypes:    map[string]int{"sad": 1, "happy": 2},
	}
	if err := StatsSummary(&buf, core.NewDate(2024, 3, 1), core.NewDate(2024, 3, 31), summary); err != nil {
		t.Fatal(err)
	}
	out := plain(buf.String())
	if !strings.Contains(out, "2024-03-01 .. 2024-03-31") || !strings.Contains(out, "средняя оценка: 3.33") {
		t.Fatalf("unexpected summary:\n%s", out)
	}
	if strings.Index(out, "happy: 2") > strings.Index(out, "sad: 1") {
		t.Errorf("types should be ordered by count:\n%s", out)
	}
}
