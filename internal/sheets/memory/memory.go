package memory

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"moodflow/internal/core"
	"moodflow/internal/sheets"
)

var _ sheets.EntryExporter = (*Exporter)(nil)

// Exporter keeps exported rows in memory. The worker uses it when no
// spreadsheet is configured, so the pipeline can run without Google access.
type Exporter struct {
	mu   sync.Mutex
	rows map[int64]core.MoodEntry
}

func New() *Exporter {
	return &Exporter{rows: make(map[int64]core.MoodEntry)}
}

func (x *Exporter) UpsertEntry(ctx context.Context, e core.MoodEntry) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.rows[e.ID] = e
	slog.DebugContext(ctx, "Exported mood entry in memory", "id", e.ID)
	return nil
}

func (x *Exporter) ClearEntry(_ context.Context, id int64) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	delete(x.rows, id)
	return nil
}

// Rows returns the exported entries ordered by ID.
func (x *Exporter) Rows() []core.MoodEntry {
	x.mu.Lock()
	defer x.mu.Unlock()
	out := make([]core.MoodEntry, 0, len(x.rows))
	for _, e := range x.rows {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
