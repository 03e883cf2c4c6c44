package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"moodflow/internal/amqp"
	"moodflow/internal/core"
	"moodflow/internal/store"
)

// EventPublisher announces entry changes to downstream consumers.
type EventPublisher interface {
	PublishMoodEvent(ctx context.Context, msg *amqp.MoodEventMessage) error
}

// versioner is implemented by stores that keep a per-row version.
type versioner interface {
	EntryVersion(ctx context.Context, id int64) (int64, error)
}

var _ store.Store = (*MoodService)(nil)

// MoodService orchestrates mood entry writes across the store and AMQP.
// It satisfies store.Store itself so the HTTP layer and the CLI can use it
// in place of a bare store.
type MoodService struct {
	store     store.Store
	publisher EventPublisher
}

// NewMoodService wraps s. publisher may be nil, in which case no events are sent.
func NewMoodService(s store.Store, publisher EventPublisher) *MoodService {
	return &MoodService{store: s, publisher: publisher}
}

func (s *MoodService) ListEntries(ctx context.Context, f core.EntryFilter) ([]core.MoodEntry, error) {
	return s.store.ListEntries(ctx, f)
}

func (s *MoodService) GetEntry(ctx context.Context, id int64) (core.MoodEntry, error) {
	return s.store.GetEntry(ctx, id)
}

// CreateEntry saves the entry and then publishes a created event. A failed
// publish is logged and does not fail the call.
func (s *MoodService) CreateEntry(ctx context.Context, in core.MoodInput) (core.MoodEntry, error) {
	e, err := s.store.CreateEntry(ctx, in)
	if err != nil {
		return core.MoodEntry{}, fmt.Errorf("save mood entry: %w", err)
	}
	s.publish(ctx, e.ID, amqp.ActionCreated, 1)
	return e, nil
}

func (s *MoodService) UpdateEntry(ctx context.Context, id int64, u core.MoodUpdate) (core.MoodEntry, error) {
	e, err := s.store.UpdateEntry(ctx, id, u)
	if err != nil {
		return core.MoodEntry{}, fmt.Errorf("update mood entry: %w", err)
	}
	s.publish(ctx, id, amqp.ActionUpdated, s.version(ctx, id))
	return e, nil
}

func (s *MoodService) DeleteEntry(ctx context.Context, id int64) error {
	if err := s.store.DeleteEntry(ctx, id); err != nil {
		return fmt.Errorf("delete mood entry: %w", err)
	}
	s.publish(ctx, id, amqp.ActionDeleted, 0)
	return nil
}

// Ping reports store health when the store supports it.
func (s *MoodService) Ping(ctx context.Context) error {
	if p, ok := s.store.(store.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (s *MoodService) version(ctx context.Context, id int64) int64 {
	v, ok := s.store.(versioner)
	if !ok {
		return 0
	}
	n, err := v.EntryVersion(ctx, id)
	if err != nil {
		slog.WarnContext(ctx, "Failed to read entry version", "id", id, "error", err)
		return 0
	}
	return n
}

func (s *MoodService) publish(ctx context.Context, id int64, action string, version int64) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "No event publisher configured, skipping mood event", "id", id, "action", action)
		return
	}
	if err := s.publisher.PublishMoodEvent(ctx, amqp.NewMoodEventMessage(id, action, version)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish mood event",
			"id", id, "action", action, "error", err)
	}
}

// Close closes the store and the publisher when they hold resources.
func (s *MoodService) Close() error {
	var errs []error

	if c, ok := s.store.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}
	if c, ok := s.publisher.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close mood service: %w", errors.Join(errs...))
	}
	return nil
}
