package insights

import (
	"context"

	"moodflow/internal/core"
	"moodflow/internal/store"
)

// Range averages keep two decimals; day averages keep one.
const (
	rangePrecision = 2
	dayPrecision   = 1
)

// EntrySummary is the public projection of an entry inside a RangeSummary.
type EntrySummary struct {
	ID        int64     `json:"id" yaml:"id"`
	MoodType  string    `json:"mood_type" yaml:"mood_type"`
	MoodScore int       `json:"mood_score" yaml:"mood_score"`
	Date      core.Date `json:"date" yaml:"date"`
}

type RangeSummary struct {
	AverageScore float64        `json:"average_score" yaml:"average_score"`
	TotalEntries int            `json:"total_entries" yaml:"total_entries"`
	MoodTypes    map[string]int `json:"mood_types" yaml:"mood_types"`
	EntriesData  []EntrySummary `json:"entries_data" yaml:"entries_data"`
}

// ComputeRangeStatistics summarizes every entry dated within [start, end].
// A reversed range matches nothing and yields an empty summary. Store errors
// are returned as-is.
func ComputeRangeStatistics(ctx context.Context, entries store.EntryLister, start, end core.Date) (RangeSummary, error) {
	filter := core.Between(start, end)
	filter.Order = core.OrderCreatedAsc
	list, err := entries.ListEntries(ctx, filter)
	if err != nil {
		return RangeSummary{}, err
	}
	return SummarizeRange(list), nil
}

// SummarizeRange reduces an already fetched entry set, keeping its order.
func SummarizeRange(entries []core.MoodEntry) RangeSummary {
	summary := RangeSummary{
		MoodTypes:   make(map[string]int),
		EntriesData: make([]EntrySummary, 0, len(entries)),
	}
	if len(entries) == 0 {
		return summary
	}

	var sum int64
	for _, e := range entries {
		sum += int64(e.MoodScore)
		summary.MoodTypes[e.MoodType]++
		summary.EntriesData = append(summary.EntriesData, EntrySummary{
			ID:        e.ID,
			MoodType:  e.MoodType,
			MoodScore: e.MoodScore,
			Date:      e.Date,
		})
	}
	summary.TotalEntries = len(entries)
	summary.AverageScore = roundedMean(sum, len(entries), rangePrecision)
	return summary
}
