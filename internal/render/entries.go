package render

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"moodflow/internal/core"
	"moodflow/internal/insights"
)

// EntriesTable writes entries as a bordered table.
func EntriesTable(w io.Writer, entries []core.MoodEntry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "no entries")
		return err
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		notes := ""
		if e.Notes != nil {
			notes = *e.Notes
		}
		rows = append(rows, []string{
			strconv.FormatInt(e.ID, 10),
			e.Date.String(),
			e.MoodType,
			strconv.Itoa(e.MoodScore),
			notes,
		})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "DATE", "MOOD", "SCORE", "NOTES").
		Rows(rows...)
	_, err := fmt.Fprintln(w, t.String())
	return err
}

// StatsSummary writes a short human-readable range summary.
func StatsSummary(w io.Writer, start, end core.Date, s insights.RangeSummary) error {
	if _, err := fmt.Fprintf(w, "%s %s .. %s\n", titleStyle.Render("Период"), start, end); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "записей: %d\nсредняя оценка: %.2f\n", s.TotalEntries, s.AverageScore); err != nil {
		return err
	}
	types := make([]string, 0, len(s.MoodTypes))
	for t := range s.MoodTypes {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool {
		if s.MoodTypes[types[i]] != s.MoodTypes[types[j]] {
			return s.MoodTypes[types[i]] > s.MoodTypes[types[j]]
		}
		return types[i] < types[j]
	})
	for _, t := range types {
		if _, err := fmt.Fprintf(w, "  %s: %d\n", t, s.MoodTypes[t]); err != nil {
			return err
		}
	}
	return nil
}
