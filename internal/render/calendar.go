package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"moodflow/internal/insights"
)

var (
	weekdayHeader = []string{"Пн", "Вт", "Ср", "Чт", "Пт", "Сб", "Вс"}

	titleStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#718096"))
	cellStyle  = lipgloss.NewStyle().Width(4).Align(lipgloss.Right).PaddingRight(1)
	dayText    = lipgloss.Color("#1a202c")
)

// mondayOffset is the column of wd in a Monday-first week.
func mondayOffset(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}

// CalendarGrid writes a Monday-first month grid, each day shaded with its
// mood color, followed by a score legend.
func CalendarGrid(w io.Writer, view insights.CalendarView) error {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("%s %d", view.MonthName, view.Year)))
	b.WriteByte('\n')

	header := make([]string, len(weekdayHeader))
	for i, h := range weekdayHeader {
		header[i] = cellStyle.Render(h)
	}
	b.WriteString(mutedStyle.Render(strings.Join(header, "")))
	b.WriteByte('\n')

	days := view.Days()
	if len(days) > 0 {
		col := mondayOffset(days[0].Date.Weekday())
		row := make([]string, 0, 7)
		for i := 0; i < col; i++ {
			row = append(row, cellStyle.Render(""))
		}
		for _, d := range days {
			row = append(row, dayCell(d))
			if len(row) == 7 {
				b.WriteString(strings.Join(row, ""))
				b.WriteByte('\n')
				row = row[:0]
			}
		}
		if len(row) > 0 {
			b.WriteString(strings.Join(row, ""))
			b.WriteByte('\n')
		}
	}

	b.WriteString(legend())
	b.WriteByte('\n')

	_, err := io.WriteString(w, b.String())
	return err
}

func dayCell(d insights.DayAggregate) string {
	style := cellStyle
	if d.HasData {
		style = style.Background(lipgloss.Color(d.Color)).Foreground(dayText)
	}
	return style.Render(fmt.Sprintf("%d", d.Date.Day()))
}

func legend() string {
	parts := []string{mutedStyle.Render("оценка:")}
	for score := 1; score <= 5; score++ {
		parts = append(parts, lipgloss.NewStyle().
			Background(lipgloss.Color(insights.ScoreToColor(score))).
			Foreground(dayText).
			Padding(0, 1).
			Render(fmt.Sprintf("%d", score)))
	}
	return strings.Join(parts, " ")
}
