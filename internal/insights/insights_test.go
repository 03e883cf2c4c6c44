package insights

import (
	"context"
	"errors"
	"time"

	"moodflow/internal/core"
)

// fakeLister records the last filter and serves a fixed entry set through
// the filter, so tests exercise the same selection a store would do.
type fakeLister struct {
	entries    []core.MoodEntry
	err        error
	calls      int
	lastFilter core.EntryFilter
}

func (f *fakeLister) ListEntries(_ context.Context, filter core.EntryFilter) ([]core.MoodEntry, error) {
	f.calls++
	f.lastFilter = filter
	if f.err != nil {
		return nil, f.err
	}
	var out []core.MoodEntry
	for _, e := range f.entries {
		if filter.Matches(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

var errStoreDown = errors.New("disk I/O error")

func entry(id int64, date core.Date, score int, moodType string, createdMinute int) core.MoodEntry {
	return core.MoodEntry{
		ID:        id,
		MoodType:  moodType,
		MoodScore: score,
		Date:      date,
		CreatedAt: time.Date(2024, 1, 1, 0, createdMinute, 0, 0, time.UTC),
	}
}

func strPtr(s string) *string { return &s }

// hasWindow reports whether f is bounded on both sides by exactly [from, to].
func hasWindow(f core.EntryFilter, from, to core.Date) bool {
	return f.From != nil && f.To != nil && *f.From == from && *f.To == to
}
