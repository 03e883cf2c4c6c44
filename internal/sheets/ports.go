package sheets

import (
	"context"

	"moodflow/internal/core"
)

// EntryExporter mirrors mood entries into an external spreadsheet.
type EntryExporter interface {
	// UpsertEntry writes e, replacing any earlier copy of the same ID.
	UpsertEntry(ctx context.Context, e core.MoodEntry) error
	// ClearEntry removes the copy of a deleted entry.
	ClearEntry(ctx context.Context, id int64) error
}
