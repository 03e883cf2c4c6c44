package store

import (
	"context"

	"moodflow/internal/core"
)

// Ports for mood entry persistence.
type (
	// EntryLister returns entries matching a filter, in the filter's order.
	EntryLister interface {
		ListEntries(ctx context.Context, filter core.EntryFilter) ([]core.MoodEntry, error)
	}

	// EntryGetter loads a single entry. Missing entries yield core.ErrNotFound.
	EntryGetter interface {
		GetEntry(ctx context.Context, id int64) (core.MoodEntry, error)
	}

	EntryWriter interface {
		CreateEntry(ctx context.Context, in core.MoodInput) (core.MoodEntry, error)
		UpdateEntry(ctx context.Context, id int64, u core.MoodUpdate) (core.MoodEntry, error)
		DeleteEntry(ctx context.Context, id int64) error
	}

	// Pinger reports whether the underlying store is reachable.
	Pinger interface {
		Ping(ctx context.Context) error
	}

	Store interface {
		EntryLister
		EntryGetter
		EntryWriter
	}
)
