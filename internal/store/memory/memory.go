package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"moodflow/internal/core"
	"moodflow/internal/store"
)

var _ store.Store = (*Store)(nil)

type Store struct {
	mu     sync.Mutex
	nextID int64
	items  []core.MoodEntry
	now    func() time.Time
}

func New() *Store {
	return &Store{nextID: 1, now: time.Now}
}

// NewWithClock is New with a custom clock for created_at stamps.
func NewWithClock(now func() time.Time) *Store {
	s := New()
	s.now = now
	return s
}

// seedEntry is a MoodEntry whose date may be omitted.
type seedEntry struct {
	core.MoodEntry
	Date *core.Date `json:"date"`
}

// NewFromFile seeds the store from a JSON array of entries. A missing file
// yields an empty store.
func NewFromFile(path string) (*Store, error) {
	s := New()
	if path == "" {
		return s, nil
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var seed []seedEntry
	if err := json.Unmarshal(raw, &seed); err != nil {
		return nil, fmt.Errorf("decode seed file %s: %w", path, err)
	}
	for _, se := range seed {
		e := se.MoodEntry
		if e.ID == 0 {
			e.ID = s.nextID
		}
		if e.CreatedAt.IsZero() {
			e.CreatedAt = s.now()
		}
		if se.Date != nil {
			e.Date = *se.Date
		} else {
			e.Date = core.DateOf(e.CreatedAt)
		}
		s.items = append(s.items, e)
		if e.ID >= s.nextID {
			s.nextID = e.ID + 1
		}
	}
	return s, nil
}

func (s *Store) CreateEntry(_ context.Context, in core.MoodInput) (core.MoodEntry, error) {
	if err := in.Validate(); err != nil {
		return core.MoodEntry{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e := in.Entry(s.now())
	e.ID = s.nextID
	s.nextID++
	s.items = append(s.items, e)
	return clone(e), nil
}

func (s *Store) GetEntry(_ context.Context, id int64) (core.MoodEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return core.MoodEntry{}, core.ErrNotFound
	}
	return clone(s.items[i]), nil
}

func (s *Store) UpdateEntry(_ context.Context, id int64, u core.MoodUpdate) (core.MoodEntry, error) {
	if err := u.Validate(); err != nil {
		return core.MoodEntry{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return core.MoodEntry{}, core.ErrNotFound
	}
	u.Apply(&s.items[i])
	return clone(s.items[i]), nil
}

func (s *Store) DeleteEntry(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return core.ErrNotFound
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return nil
}

func (s *Store) ListEntries(_ context.Context, f core.EntryFilter) ([]core.MoodEntry, error) {
	s.mu.Lock()
	out := make([]core.MoodEntry, 0, len(s.items))
	for _, e := range s.items {
		if f.Matches(e) {
			out = append(out, clone(e))
		}
	}
	s.mu.Unlock()

	desc := f.Order == core.OrderCreatedDesc
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			if desc {
				return a.CreatedAt.After(b.CreatedAt)
			}
			return a.CreatedAt.Before(b.CreatedAt)
		}
		if desc {
			return a.ID > b.ID
		}
		return a.ID < b.ID
	})

	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return []core.MoodEntry{}, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *Store) Ping(context.Context) error { return nil }

// Close is a no-op kept for parity with the SQLite backend.
func (s *Store) Close() error { return nil }

func (s *Store) indexOf(id int64) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

func clone(e core.MoodEntry) core.MoodEntry {
	if e.Notes != nil {
		n := *e.Notes
		e.Notes = &n
	}
	return e
}
