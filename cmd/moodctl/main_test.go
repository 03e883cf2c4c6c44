package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"moodflow/internal/core"
	"moodflow/internal/insights"
)

const seed = `[
  {"id": 1, "mood_type": "радость", "mood_score": 4, "notes": "утро", "date": "2024-03-05", "created_at": "2024-03-05T09:00:00Z"},
  {"id": 2, "mood_type": "грусть", "mood_score": 1, "notes": null, "date": "2024-03-05", "created_at": "2024-03-05T18:00:00Z"},
  {"id": 3, "mood_type": "радость", "mood_score": 5, "notes": null, "date": "2024-03-20", "created_at": "2024-03-20T12:00:00Z"}
]`

func writeSeed(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.json")
	if err := os.WriteFile(path, []byte(seed), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("PORT", "8000")
	t.Setenv("AMQP_URL", "")

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--backend", "memory", "--seed", writeSeed(t)}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestListJSON(t *testing.T) {
	out, err := execute(t, "list", "--format", "json")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var entries []core.MoodEntry
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	if entries[0].ID != 3 {
		t.Errorf("first entry = %d, want newest (3)", entries[0].ID)
	}
}

func TestListFilters(t *testing.T) {
	out, err := execute(t, "list", "--format", "json", "--date", "2024-03-05", "--type", "грусть")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var entries []core.MoodEntry
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].ID != 2 {
		t.Errorf("got %+v, want only entry 2", entries)
	}
}

func TestListRejectsBadLimit(t *testing.T) {
	if _, err := execute(t, "list", "--limit", "0"); err == nil {
		t.Error("expected error for --limit 0")
	}
	if _, err := execute(t, "list", "--format", "xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestListTable(t *testing.T) {
	out, err := execute(t, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "радость") || !strings.Contains(out, "2024-03-20") {
		t.Errorf("table output missing rows:\n%s", out)
	}
}

func TestAdd(t *testing.T) {
	out, err := execute(t, "add", "--type", "спокойствие", "--score", "3", "--date", "2024-04-01")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !strings.Contains(out, "recorded #4") || !strings.Contains(out, "2024-04-01") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestAddValidation(t *testing.T) {
	_, err := execute(t, "add", "--type", "радость", "--score", "6")
	if !errors.Is(err, core.ErrInvalidScore) {
		t.Errorf("err = %v, want ErrInvalidScore", err)
	}
	if _, err := execute(t, "add", "--score", "5"); err == nil {
		t.Error("expected error when --type is missing")
	}
	if _, err := execute(t, "add", "--type", "x", "--score", "5", "--date", "05.03.2024"); err == nil {
		t.Error("expected error for malformed date")
	}
}

func TestDelete(t *testing.T) {
	out, err := execute(t, "delete", "2")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if strings.TrimSpace(out) != "deleted #2" {
		t.Errorf("unexpected output %q", out)
	}

	if _, err := execute(t, "delete", "99"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if _, err := execute(t, "delete", "abc"); err == nil {
		t.Error("expected error for non-numeric id")
	}
}

func TestStatsJSON(t *testing.T) {
	out, err := execute(t, "stats", "--from", "2024-03-01", "--to", "2024-03-10", "--format", "json")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	var summary insights.RangeSummary
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatal(err)
	}
	if summary.TotalEntries != 2 {
		t.Errorf("total = %d, want 2", summary.TotalEntries)
	}
	if summary.AverageScore != 2.5 {
		t.Errorf("average = %v, want 2.5", summary.AverageScore)
	}
	if summary.MoodTypes["радость"] != 1 || summary.MoodTypes["грусть"] != 1 {
		t.Errorf("mood types = %v", summary.MoodTypes)
	}
}

func TestStatsText(t *testing.T) {
	out, err := execute(t, "stats", "--from", "2024-03-01", "--to", "2024-03-31")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if !strings.Contains(out, "записей: 3") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestStatsRequiresRange(t *testing.T) {
	if _, err := execute(t, "stats", "--from", "2024-03-01"); err == nil {
		t.Error("expected error when --to is missing")
	}
}

func TestCalendarJSON(t *testing.T) {
	out, err := execute(t, "calendar", "--year", "2024", "--month", "3", "--format", "json")
	if err != nil {
		t.Fatalf("calendar: %v", err)
	}
	var view insights.CalendarView
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatal(err)
	}
	if view.TotalDays != 31 || len(view.Calendar) != 31 {
		t.Errorf("total days = %d (%d keys), want 31", view.TotalDays, len(view.Calendar))
	}
	day := view.Calendar["2024-03-05"]
	if day.EntriesCount != 2 || !day.HasData {
		t.Errorf("2024-03-05 = %+v", day)
	}
	if view.MonthName != "Март" {
		t.Errorf("month name = %q", view.MonthName)
	}
}

func TestCalendarInvalidMonth(t *testing.T) {
	_, err := execute(t, "calendar", "--year", "2024", "--month", "13")
	if !errors.Is(err, core.ErrInvalidMonth) {
		t.Errorf("err = %v, want ErrInvalidMonth", err)
	}
}

func TestCalendarGrid(t *testing.T) {
	out, err := execute(t, "calendar", "--year", "2024", "--month", "3")
	if err != nil {
		t.Fatalf("calendar: %v", err)
	}
	if !strings.Contains(out, "Март 2024") {
		t.Errorf("grid missing title:\n%s", out)
	}
}
