package insights

import (
	"context"

	"moodflow/internal/core"
	"moodflow/internal/store"
)

// DayEntry is one recorded mood inside a calendar day.
type DayEntry struct {
	Score int     `json:"score" yaml:"score"`
	Type  string  `json:"type" yaml:"type"`
	Notes *string `json:"notes" yaml:"notes"`
}

type DayAggregate struct {
	Date         core.Date  `json:"date" yaml:"date"`
	DayName      string     `json:"day_name" yaml:"day_name"`
	AverageScore float64    `json:"average_score" yaml:"average_score"`
	MoodTypes    []string   `json:"mood_types" yaml:"mood_types"`
	Entries      []DayEntry `json:"entries" yaml:"entries"`
	EntriesCount int        `json:"entries_count" yaml:"entries_count"`
	Color        string     `json:"color" yaml:"color"`
	HasData      bool       `json:"has_data" yaml:"has_data"`
}

// CalendarView is a dense month: Calendar holds one DayAggregate per day,
// keyed by YYYY-MM-DD. StartDate and EndDate bound the half-open span.
type CalendarView struct {
	Calendar  map[string]DayAggregate `json:"calendar" yaml:"calendar"`
	Month     int                     `json:"month" yaml:"month"`
	Year      int                     `json:"year" yaml:"year"`
	MonthName string                  `json:"month_name" yaml:"month_name"`
	StartDate core.Date               `json:"start_date" yaml:"start_date"`
	EndDate   core.Date               `json:"end_date" yaml:"end_date"`
	TotalDays int                     `json:"total_days" yaml:"total_days"`
}

// Days returns the aggregates in calendar order.
func (v CalendarView) Days() []DayAggregate {
	days := make([]DayAggregate, 0, v.TotalDays)
	for d := v.StartDate; d.Before(v.EndDate.Time); d = d.AddDays(1) {
		if day, ok := v.Calendar[d.String()]; ok {
			days = append(days, day)
		}
	}
	return days
}

// MonthSpan returns the first day of the month and the first day of the
// following month.
func MonthSpan(year, month int) (first, exclusiveEnd core.Date, err error) {
	if month < 1 || month > 12 {
		return core.Date{}, core.Date{}, core.ErrInvalidMonth
	}
	first = core.NewDate(year, month, 1)
	if month == 12 {
		exclusiveEnd = core.NewDate(year+1, 1, 1)
	} else {
		exclusiveEnd = core.NewDate(year, month+1, 1)
	}
	return first, exclusiveEnd, nil
}

// BuildMonthCalendar fetches the month's entries oldest first and builds a
// dense calendar. An out-of-range month fails with core.ErrInvalidMonth before
// the store is touched.
func BuildMonthCalendar(ctx context.Context, entries store.EntryLister, year, month int) (CalendarView, error) {
	first, end, err := MonthSpan(year, month)
	if err != nil {
		return CalendarView{}, err
	}
	filter := core.Between(first, end.AddDays(-1))
	filter.Order = core.OrderCreatedAsc
	list, err := entries.ListEntries(ctx, filter)
	if err != nil {
		return CalendarView{}, err
	}
	return AssembleCalendar(year, month, list)
}

// AssembleCalendar builds the calendar from entries already ordered by
// creation time. Entries dated outside the month are ignored.
func AssembleCalendar(year, month int, entries []core.MoodEntry) (CalendarView, error) {
	first, end, err := MonthSpan(year, month)
	if err != nil {
		return CalendarView{}, err
	}

	byDay := make(map[string][]core.MoodEntry)
	for _, e := range entries {
		key := e.Date.String()
		byDay[key] = append(byDay[key], e)
	}

	view := CalendarView{
		Calendar:  make(map[string]DayAggregate),
		Month:     month,
		Year:      year,
		MonthName: MonthName(month),
		StartDate: first,
		EndDate:   end,
	}
	for d := first; d.Before(end.Time); d = d.AddDays(1) {
		key := d.String()
		view.Calendar[key] = aggregateDay(d, byDay[key])
		view.TotalDays++
	}
	return view, nil
}

func aggregateDay(d core.Date, entries []core.MoodEntry) DayAggregate {
	day := DayAggregate{
		Date:      d,
		DayName:   DayName(d.Weekday()),
		MoodTypes: []string{},
		Entries:   make([]DayEntry, 0, len(entries)),
		Color:     ColorNoData,
	}
	if len(entries) == 0 {
		return day
	}

	var sum int64
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		sum += int64(e.MoodScore)
		if _, ok := seen[e.MoodType]; !ok {
			seen[e.MoodType] = struct{}{}
			day.MoodTypes = append(day.MoodTypes, e.MoodType)
		}
		day.Entries = append(day.Entries, DayEntry{Score: e.MoodScore, Type: e.MoodType, Notes: e.Notes})
	}
	day.EntriesCount = len(day.Entries)
	day.AverageScore = roundedMean(sum, len(entries), dayPrecision)
	day.Color = ScoreToColor(bucketScore(day.AverageScore))
	day.HasData = true
	return day
}
