package backend

import (
	"context"

	"ledgerly/internal/export"
	"ledgerly/internal/notify"
	"ledgerly/internal/storage"
)

// CleanupFunc releases resources held by a backend
type CleanupFunc func() error

// BackendResult bundles the collaborators the services run against.
type BackendResult struct {
	Store    *storage.StateStore
	Notifier notify.Notifier
	Sink     export.Sink
	Cleanup  CleanupFunc
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

	// Memory specific; seeded from <DataDirectory>/<key>.json
	DataDirectory string

	// Reminders go to AMQP when a URL is set, otherwise to the log.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	Sink                     SinkType
	ExportDir                string
	GoogleSpreadsheetID      string
	GoogleServiceAccountFile string
	GoogleServiceAccountJSON string
}

// BackendType selects the state store.
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

// SinkType selects where exports are delivered.
type SinkType string

const (
	FileSink   SinkType = "file"
	SheetsSink SinkType = "sheets"
)

func (st SinkType) IsValid() bool {
	return st == FileSink || st == SheetsSink
}
