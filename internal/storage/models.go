package storage

import (
	"database/sql"
	"fmt"
	"time"

	"moodflow/internal/core"
)

// Sync states of a row relative to the spreadsheet mirror.
const (
	SyncPending = "pending"
	SyncSynced  = "synced"
	SyncError   = "error"
)

// timestampLayout is fixed-width so text ordering equals time ordering.
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

// MoodRow is a mood_entries row as stored.
type MoodRow struct {
	ID         int64
	MoodType   string
	MoodScore  int64
	Notes      sql.NullString
	Date       string
	CreatedAt  string
	UpdatedAt  string
	Version    int64
	SyncStatus string
}

// PendingSyncEntry is the minimal data the export sweep needs per entry.
type PendingSyncEntry struct {
	ID        int64
	Version   int64
	CreatedAt time.Time
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(timestampLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

func nullableNotes(n *string) sql.NullString {
	if n == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *n, Valid: true}
}

func (r MoodRow) toEntry() (core.MoodEntry, error) {
	date, err := core.ParseDate(r.Date)
	if err != nil {
		return core.MoodEntry{}, err
	}
	created, err := parseTimestamp(r.CreatedAt)
	if err != nil {
		return core.MoodEntry{}, err
	}
	e := core.MoodEntry{
		ID:        r.ID,
		MoodType:  r.MoodType,
		MoodScore: int(r.MoodScore),
		Date:      date,
		CreatedAt: created,
	}
	if r.Notes.Valid {
		notes := r.Notes.String
		e.Notes = &notes
	}
	return e, nil
}
