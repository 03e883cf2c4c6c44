package storage

import (
	"context"
	"database/sql"
	"strings"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

const moodColumns = `id, mood_type, mood_score, notes, date, created_at, updated_at, version, sync_status`

func scanMood(row interface{ Scan(...any) error }) (MoodRow, error) {
	var m MoodRow
	err := row.Scan(&m.ID, &m.MoodType, &m.MoodScore, &m.Notes, &m.Date, &m.CreatedAt, &m.UpdatedAt, &m.Version, &m.SyncStatus)
	return m, err
}

type CreateMoodParams struct {
	MoodType  string
	MoodScore int64
	Notes     sql.NullString
	Date      string
	CreatedAt string
}

const createMood = `INSERT INTO mood_entries (mood_type, mood_score, notes, date, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING ` + moodColumns

func (q *Queries) CreateMood(ctx context.Context, arg CreateMoodParams) (MoodRow, error) {
	row := q.db.QueryRowContext(ctx, createMood, arg.MoodType, arg.MoodScore, arg.Notes, arg.Date, arg.CreatedAt, arg.CreatedAt)
	return scanMood(row)
}

const getMood = `SELECT ` + moodColumns + ` FROM mood_entries WHERE id = ?`

func (q *Queries) GetMood(ctx context.Context, id int64) (MoodRow, error) {
	return scanMood(q.db.QueryRowContext(ctx, getMood, id))
}

type UpdateMoodParams struct {
	ID        int64
	MoodType  string
	MoodScore int64
	Notes     sql.NullString
	Date      string
	UpdatedAt string
}

const updateMood = `UPDATE mood_entries
SET mood_type = ?, mood_score = ?, notes = ?, date = ?, updated_at = ?,
    version = version + 1, sync_status = 'pending'
WHERE id = ?
RETURNING ` + moodColumns

func (q *Queries) UpdateMood(ctx context.Context, arg UpdateMoodParams) (MoodRow, error) {
	row := q.db.QueryRowContext(ctx, updateMood, arg.MoodType, arg.MoodScore, arg.Notes, arg.Date, arg.UpdatedAt, arg.ID)
	return scanMood(row)
}

const deleteMood = `DELETE FROM mood_entries WHERE id = ?`

func (q *Queries) DeleteMood(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteMood, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type ListMoodsParams struct {
	From     string
	To       string
	MoodType string
	Desc     bool
	Limit    int64
	Offset   int64
}

// ListMoods builds its WHERE clause from the set fields only.
func (q *Queries) ListMoods(ctx context.Context, arg ListMoodsParams) ([]MoodRow, error) {
	var (
		where []string
		args  []any
	)
	if arg.From != "" {
		where = append(where, "date >= ?")
		args = append(args, arg.From)
	}
	if arg.To != "" {
		where = append(where, "date <= ?")
		args = append(args, arg.To)
	}
	if arg.MoodType != "" {
		where = append(where, "mood_type = ?")
		args = append(args, arg.MoodType)
	}

	var b strings.Builder
	b.WriteString("SELECT " + moodColumns + " FROM mood_entries")
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	if arg.Desc {
		b.WriteString(" ORDER BY created_at DESC, id DESC")
	} else {
		b.WriteString(" ORDER BY created_at ASC, id ASC")
	}
	limit := arg.Limit
	if limit <= 0 {
		limit = -1
	}
	b.WriteString(" LIMIT ? OFFSET ?")
	args = append(args, limit, arg.Offset)

	rows, err := q.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []MoodRow
	for rows.Next() {
		m, err := scanMood(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	return items, rows.Err()
}

const getPendingSyncMoods = `SELECT id, version, created_at FROM mood_entries
WHERE sync_status IN ('pending', 'error')
ORDER BY created_at ASC, id ASC
LIMIT ?`

type GetPendingSyncMoodsRow struct {
	ID        int64
	Version   int64
	CreatedAt string
}

func (q *Queries) GetPendingSyncMoods(ctx context.Context, limit int64) ([]GetPendingSyncMoodsRow, error) {
	rows, err := q.db.QueryContext(ctx, getPendingSyncMoods, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []GetPendingSyncMoodsRow
	for rows.Next() {
		var i GetPendingSyncMoodsRow
		if err := rows.Scan(&i.ID, &i.Version, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	return items, rows.Err()
}

const setMoodSyncStatus = `UPDATE mood_entries SET sync_status = ? WHERE id = ?`

func (q *Queries) SetMoodSyncStatus(ctx context.Context, id int64, status string) error {
	_, err := q.db.ExecContext(ctx, setMoodSyncStatus, status, id)
	return err
}

const getMoodVersion = `SELECT version FROM mood_entries WHERE id = ?`

func (q *Queries) GetMoodVersion(ctx context.Context, id int64) (int64, error) {
	var v int64
	err := q.db.QueryRowContext(ctx, getMoodVersion, id).Scan(&v)
	return v, err
}
