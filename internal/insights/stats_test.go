package insights

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"moodflow/internal/core"
)

func TestComputeRangeStatisticsEmpty(t *testing.T) {
	lister := &fakeLister{}
	got, err := ComputeRangeStatistics(context.Background(), lister, core.NewDate(2024, 3, 1), core.NewDate(2024, 3, 31))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.AverageScore != 0 || got.TotalEntries != 0 || len(got.MoodTypes) != 0 || len(got.EntriesData) != 0 {
		t.Fatalf("expected empty summary, got %+v", got)
	}

	b, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"average_score":0,"total_entries":0,"mood_types":{},"entries_data":[]}`
	if string(b) != want {
		t.Fatalf("empty summary wire shape:\n got %s\nwant %s", b, want)
	}
}

func TestComputeRangeStatisticsScenario(t *testing.T) {
	day := core.NewDate(2024, 3, 5)
	lister := &fakeLister{entries: []core.MoodEntry{
		entry(1, day, 4, "happy", 1),
		entry(2, day, 2, "sad", 2),
		entry(3, core.NewDate(2024, 4, 1), 5, "happy", 3), // outside range
	}}

	got, err := ComputeRangeStatistics(context.Background(), lister, core.NewDate(2024, 3, 1), core.NewDate(2024, 3, 31))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.AverageScore != 3.0 {
		t.Errorf("average_score = %v, want 3.0", got.AverageScore)
	}
	if got.TotalEntries != 2 {
		t.Errorf("total_entries = %d, want 2", got.TotalEntries)
	}
	if got.MoodTypes["happy"] != 1 || got.MoodTypes["sad"] != 1 || len(got.MoodTypes) != 2 {
		t.Errorf("mood_types = %v", got.MoodTypes)
	}
	if len(got.EntriesData) != 2 || got.EntriesData[0].ID != 1 || got.EntriesData[1].ID != 2 {
		t.Errorf("entries_data = %+v", got.EntriesData)
	}
	if got.EntriesData[0].Date != day || got.EntriesData[0].MoodScore != 4 || got.EntriesData[0].MoodType != "happy" {
		t.Errorf("projection lost fields: %+v", got.EntriesData[0])
	}
}

func TestComputeRangeStatisticsInclusiveBounds(t *testing.T) {
	lister := &fakeLister{entries: []core.MoodEntry{
		entry(1, core.NewDate(2024, 3, 1), 1, "low", 1),
		entry(2, core.NewDate(2024, 3, 31), 5, "high", 2),
		entry(3, core.NewDate(2024, 2, 29), 3, "mid", 3),
		entry(4, core.NewDate(2024, 4, 1), 3, "mid", 4),
	}}
	got, err := ComputeRangeStatistics(context.Background(), lister, core.NewDate(2024, 3, 1), core.NewDate(2024, 3, 31))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.TotalEntries != 2 {
		t.Fatalf("expected both boundary days included, got %d entries", got.TotalEntries)
	}
	if !hasWindow(lister.lastFilter, core.NewDate(2024, 3, 1), core.NewDate(2024, 3, 31)) {
		t.Fatalf("unexpected filter %+v", lister.lastFilter)
	}
}

func TestComputeRangeStatisticsReversedRange(t *testing.T) {
	lister := &fakeLister{entries: []core.MoodEntry{entry(1, core.NewDate(2024, 3, 5), 4, "happy", 1)}}
	got, err := ComputeRangeStatistics(context.Background(), lister, core.NewDate(2024, 3, 31), core.NewDate(2024, 3, 1))
	if err != nil {
		t.Fatalf("reversed range must not fail: %v", err)
	}
	if got.TotalEntries != 0 || got.AverageScore != 0 {
		t.Fatalf("expected empty summary, got %+v", got)
	}
}

func TestComputeRangeStatisticsTwoDecimalRounding(t *testing.T) {
	d := core.NewDate(2024, 3, 5)
	lister := &fakeLister{entries: []core.MoodEntry{
		entry(1, d, 4, "a", 1),
		entry(2, d, 3, "b", 2),
		entry(3, d, 3, "a", 3),
	}}
	got, err := ComputeRangeStatistics(context.Background(), lister, d, d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.AverageScore != 3.33 {
		t.Fatalf("average_score = %v, want 3.33", got.AverageScore)
	}
}

func TestComputeRangeStatisticsStoreError(t *testing.T) {
	lister := &fakeLister{err: errStoreDown}
	_, err := ComputeRangeStatistics(context.Background(), lister, core.NewDate(2024, 3, 1), core.NewDate(2024, 3, 31))
	if !errors.Is(err, errStoreDown) {
		t.Fatalf("expected store error to propagate, got %v", err)
	}
}

func TestSummarizeRangeInvariants(t *testing.T) {
	var entries []core.MoodEntry
	types := []string{"happy", "calm", "sad", "angry"}
	for i := 0; i < 37; i++ {
		entries = append(entries, entry(int64(i+1), core.NewDate(2024, 5, 1+i%28), 1+i%5, types[i%len(types)], i))
	}
	got := SummarizeRange(entries)

	if got.AverageScore < 0 || got.AverageScore > 5 {
		t.Fatalf("average out of bounds: %v", got.AverageScore)
	}
	total := 0
	for _, n := range got.MoodTypes {
		total += n
	}
	if total != got.TotalEntries || total != len(entries) {
		t.Fatalf("mood type counts %d do not add up to %d", total, got.TotalEntries)
	}
}

func TestSummarizeRangeIdempotent(t *testing.T) {
	d := core.NewDate(2024, 3, 5)
	lister := &fakeLister{entries: []core.MoodEntry{
		entry(1, d, 4, "happy", 1),
		entry(2, d, 2, "sad", 2),
		entry(3, d.AddDays(1), 5, "calm", 3),
	}}
	ctx := context.Background()
	a, _ := ComputeRangeStatistics(ctx, lister, core.NewDate(2024, 3, 1), core.NewDate(2024, 3, 31))
	b, _ := ComputeRangeStatistics(ctx, lister, core.NewDate(2024, 3, 1), core.NewDate(2024, 3, 31))
	ja, _ := json.Marshal(a)
	jb, _ := json.Marshal(b)
	if string(ja) != string(jb) {
		t.Fatalf("outputs differ:\n%s\n%s", ja, jb)
	}
}
