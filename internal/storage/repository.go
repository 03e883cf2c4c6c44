package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"moodflow/internal/core"
	"moodflow/internal/store"

	_ "modernc.org/sqlite"
)

var _ store.Store = (*SQLiteRepository)(nil)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	now     func() time.Time
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite serializes writers; one connection avoids SQLITE_BUSY between pool members.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		now:     time.Now,
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", core.ErrStoreUnavailable, err)
	}
	return nil
}

// CreateEntry implements store.EntryWriter
func (r *SQLiteRepository) CreateEntry(ctx context.Context, in core.MoodInput) (core.MoodEntry, error) {
	if err := in.Validate(); err != nil {
		return core.MoodEntry{}, err
	}
	e := in.Entry(r.now())
	row, err := r.queries.CreateMood(ctx, CreateMoodParams{
		MoodType:  e.MoodType,
		MoodScore: int64(e.MoodScore),
		Notes:     nullableNotes(e.Notes),
		Date:      e.Date.String(),
		CreatedAt: formatTimestamp(e.CreatedAt),
	})
	if err != nil {
		return core.MoodEntry{}, fmt.Errorf("create mood entry: %w", err)
	}

	slog.InfoContext(ctx, "Mood entry saved to SQLite",
		"id", row.ID,
		"mood_type", row.MoodType,
		"mood_score", row.MoodScore,
		"date", row.Date)

	return row.toEntry()
}

// GetEntry implements store.EntryGetter
func (r *SQLiteRepository) GetEntry(ctx context.Context, id int64) (core.MoodEntry, error) {
	row, err := r.queries.GetMood(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.MoodEntry{}, core.ErrNotFound
	}
	if err != nil {
		return core.MoodEntry{}, fmt.Errorf("%w: get mood entry %d: %w", core.ErrStoreUnavailable, id, err)
	}
	return row.toEntry()
}

// UpdateEntry applies the set fields of u inside one transaction and bumps
// the row version so the exporter sees the change.
func (r *SQLiteRepository) UpdateEntry(ctx context.Context, id int64, u core.MoodUpdate) (core.MoodEntry, error) {
	if err := u.Validate(); err != nil {
		return core.MoodEntry{}, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.MoodEntry{}, fmt.Errorf("%w: begin update: %w", core.ErrStoreUnavailable, err)
	}
	defer tx.Rollback()
	q := r.queries.WithTx(tx)

	current, err := q.GetMood(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.MoodEntry{}, core.ErrNotFound
	}
	if err != nil {
		return core.MoodEntry{}, fmt.Errorf("%w: load mood entry %d: %w", core.ErrStoreUnavailable, id, err)
	}
	e, err := current.toEntry()
	if err != nil {
		return core.MoodEntry{}, err
	}
	u.Apply(&e)

	row, err := q.UpdateMood(ctx, UpdateMoodParams{
		ID:        id,
		MoodType:  e.MoodType,
		MoodScore: int64(e.MoodScore),
		Notes:     nullableNotes(e.Notes),
		Date:      e.Date.String(),
		UpdatedAt: formatTimestamp(r.now()),
	})
	if err != nil {
		return core.MoodEntry{}, fmt.Errorf("update mood entry %d: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return core.MoodEntry{}, fmt.Errorf("commit update: %w", err)
	}

	slog.InfoContext(ctx, "Mood entry updated", "id", id, "version", row.Version)
	return row.toEntry()
}

// DeleteEntry implements store.EntryWriter
func (r *SQLiteRepository) DeleteEntry(ctx context.Context, id int64) error {
	n, err := r.queries.DeleteMood(ctx, id)
	if err != nil {
		return fmt.Errorf("delete mood entry %d: %w", id, err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	slog.InfoContext(ctx, "Mood entry deleted", "id", id)
	return nil
}

// ListEntries implements store.EntryLister
func (r *SQLiteRepository) ListEntries(ctx context.Context, f core.EntryFilter) ([]core.MoodEntry, error) {
	rows, err := r.queries.ListMoods(ctx, ListMoodsParams{
		From:     dateBound(f.From),
		To:       dateBound(f.To),
		MoodType: f.MoodType,
		Desc:     f.Order == core.OrderCreatedDesc,
		Limit:    int64(f.Limit),
		Offset:   int64(f.Offset),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: list mood entries: %w", core.ErrStoreUnavailable, err)
	}

	entries := make([]core.MoodEntry, 0, len(rows))
	for _, row := range rows {
		e, err := row.toEntry()
		if err != nil {
			return nil, fmt.Errorf("%w: decode mood entry %d: %w", core.ErrStoreUnavailable, row.ID, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// dateBound renders an optional filter bound; "" leaves it out of the query.
func dateBound(d *core.Date) string {
	if d == nil {
		return ""
	}
	return d.String()
}

// GetPendingSyncEntries returns entries that still need to reach the spreadsheet
func (r *SQLiteRepository) GetPendingSyncEntries(ctx context.Context, limit int) ([]PendingSyncEntry, error) {
	rows, err := r.queries.GetPendingSyncMoods(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("get pending sync entries: %w", err)
	}

	entries := make([]PendingSyncEntry, 0, len(rows))
	for _, row := range rows {
		created, err := parseTimestamp(row.CreatedAt)
		if err != nil {
			return nil, err
		}
		entries = append(entries, PendingSyncEntry{ID: row.ID, Version: row.Version, CreatedAt: created})
	}
	return entries, nil
}

// MarkSynced marks an entry as successfully exported
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	if err := r.queries.SetMoodSyncStatus(ctx, id, SyncSynced); err != nil {
		return fmt.Errorf("mark entry synced: %w", err)
	}
	slog.InfoContext(ctx, "Mood entry marked as synced", "id", id)
	return nil
}

// MarkSyncError marks an entry as having failed export
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id int64) error {
	if err := r.queries.SetMoodSyncStatus(ctx, id, SyncError); err != nil {
		return fmt.Errorf("mark entry sync error: %w", err)
	}
	slog.WarnContext(ctx, "Mood entry marked with sync error", "id", id)
	return nil
}

// EntryVersion returns the row version, bumped on every update.
func (r *SQLiteRepository) EntryVersion(ctx context.Context, id int64) (int64, error) {
	v, err := r.queries.GetMoodVersion(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, core.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get entry version: %w", err)
	}
	return v, nil
}
