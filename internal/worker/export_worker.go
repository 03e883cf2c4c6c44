package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"moodflow/internal/amqp"
	"moodflow/internal/core"
	"moodflow/internal/sheets"
	"moodflow/internal/storage"
	"moodflow/internal/store"
)

// SyncTracker records which entries reached the spreadsheet.
// *storage.SQLiteRepository implements it.
type SyncTracker interface {
	GetPendingSyncEntries(ctx context.Context, limit int) ([]storage.PendingSyncEntry, error)
	MarkSynced(ctx context.Context, id int64) error
	MarkSyncError(ctx context.Context, id int64) error
}

// ExportWorker mirrors mood entries from the database into a spreadsheet.
type ExportWorker struct {
	entries   store.EntryGetter
	tracker   SyncTracker
	exporter  sheets.EntryExporter
	batchSize int
}

// NewExportWorker builds a worker. tracker may be nil, which disables the
// pending sweep and sync bookkeeping.
func NewExportWorker(entries store.EntryGetter, tracker SyncTracker, exporter sheets.EntryExporter, batchSize int) *ExportWorker {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &ExportWorker{
		entries:   entries,
		tracker:   tracker,
		exporter:  exporter,
		batchSize: batchSize,
	}
}

// HandleEvent processes one mood event from AMQP. A returned error makes the
// consumer requeue the message.
func (w *ExportWorker) HandleEvent(ctx context.Context, msg *amqp.MoodEventMessage) error {
	slog.InfoContext(ctx, "Processing mood event",
		"id", msg.ID,
		"action", msg.Action,
		"version", msg.Version)

	switch msg.Action {
	case amqp.ActionCreated, amqp.ActionUpdated:
		return w.exportEntry(ctx, msg.ID)
	case amqp.ActionDeleted:
		if err := w.exporter.ClearEntry(ctx, msg.ID); err != nil {
			return fmt.Errorf("clear entry %d: %w", msg.ID, err)
		}
		return nil
	default:
		// Requeueing would redeliver it forever.
		slog.WarnContext(ctx, "Dropping mood event with unknown action",
			"id", msg.ID,
			"action", msg.Action)
		return nil
	}
}

// ProcessPending exports entries that haven't been synced yet. It backs up
// the AMQP path in case messages are lost.
func (w *ExportWorker) ProcessPending(ctx context.Context) error {
	_, _, err := w.processPending(ctx, w.batchSize)
	return err
}

// StartupSyncCheck runs a larger pending sweep when the worker starts.
func (w *ExportWorker) StartupSyncCheck(ctx context.Context) error {
	synced, failed, err := w.processPending(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("startup sync check: %w", err)
	}
	slog.InfoContext(ctx, "Startup sync completed", "synced", synced, "errors", failed)
	return nil
}

// RunSweeper calls ProcessPending every interval until ctx is done.
func (w *ExportWorker) RunSweeper(ctx context.Context, interval time.Duration) error {
	if w.tracker == nil {
		slog.InfoContext(ctx, "No sync tracker configured, pending sweep disabled")
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := w.ProcessPending(ctx); err != nil {
				slog.ErrorContext(ctx, "Pending sweep failed", "error", err)
			}
		}
	}
}

func (w *ExportWorker) processPending(ctx context.Context, limit int) (synced, failed int, err error) {
	if w.tracker == nil {
		return 0, 0, nil
	}
	pending, err := w.tracker.GetPendingSyncEntries(ctx, limit)
	if err != nil {
		return 0, 0, fmt.Errorf("get pending entries: %w", err)
	}
	if len(pending) == 0 {
		return 0, 0, nil
	}

	slog.InfoContext(ctx, "Processing pending entries", "count", len(pending))
	for _, p := range pending {
		if ctx.Err() != nil {
			return synced, failed, ctx.Err()
		}
		if err := w.exportEntry(ctx, p.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to export entry", "id", p.ID, "error", err)
			failed++
			continue
		}
		synced++
	}
	return synced, failed, nil
}

func (w *ExportWorker) exportEntry(ctx context.Context, id int64) error {
	e, err := w.entries.GetEntry(ctx, id)
	if errors.Is(err, core.ErrNotFound) {
		// Deleted before we got here; the delete event clears the row.
		slog.WarnContext(ctx, "Mood entry no longer exists, skipping export", "id", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get entry from storage: %w", err)
	}

	if err := w.exporter.UpsertEntry(ctx, e); err != nil {
		w.markError(ctx, id)
		return fmt.Errorf("export entry %d: %w", id, err)
	}

	if w.tracker != nil {
		if err := w.tracker.MarkSynced(ctx, id); err != nil {
			// The export itself succeeded.
			slog.ErrorContext(ctx, "Failed to mark as synced", "id", id, "error", err)
		}
	}
	slog.InfoContext(ctx, "Successfully exported mood entry", "id", id, "date", e.Date.String())
	return nil
}

func (w *ExportWorker) markError(ctx context.Context, id int64) {
	if w.tracker == nil {
		return
	}
	if err := w.tracker.MarkSyncError(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to mark sync error", "id", id, "error", err)
	}
}
