package backend

import (
	"context"

	"moodflow/internal/amqp"
	"moodflow/internal/services"
	"moodflow/internal/worker"
)

// CleanupFunc releases backend resources.
type CleanupFunc func() error

// BackendResult is everything a binary needs from the data layer.
type BackendResult struct {
	// Service is the store every caller should write through.
	Service *services.MoodService
	// Tracker is nil for backends without sync bookkeeping.
	Tracker worker.SyncTracker
	// AMQP is nil when messaging is disabled or unreachable at startup.
	AMQP    *amqp.Client
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Memory specific; empty means start empty.
	MemorySeedFile string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
