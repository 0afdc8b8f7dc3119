package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"ledgerly/internal/amqp"
	"ledgerly/internal/export"
	"ledgerly/internal/export/file"
	"ledgerly/internal/export/google"
	"ledgerly/internal/notify"
	"ledgerly/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var closers []func() error
	cleanup := func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}

	blobs, closeBlobs, err := f.createStore(config)
	if err != nil {
		return nil, err
	}
	if closeBlobs != nil {
		closers = append(closers, closeBlobs)
	}

	sink, err := f.createSink(ctx, config)
	if err != nil {
		cleanup()
		return nil, err
	}

	notifier, closeNotifier := f.createNotifier(config)
	if closeNotifier != nil {
		closers = append(closers, closeNotifier)
	}

	return &BackendResult{
		Store:    storage.NewStateStore(blobs),
		Notifier: notifier,
		Sink:     sink,
		Cleanup:  cleanup,
	}, nil
}

func (f *DefaultFactory) createStore(config Config) (storage.BlobStore, func() error, error) {
	switch config.Type {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
		return repo, repo.Close, nil
	case MemoryBackend:
		repo, err := storage.NewMemoryFromDir(config.DataDirectory)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize memory backend: %w", err)
		}
		f.logger.Info("Initialized memory backend", "data_directory", config.DataDirectory)
		return repo, nil, nil
	default:
		return nil, nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSink(ctx context.Context, config Config) (export.Sink, error) {
	switch config.Sink {
	case SheetsSink:
		sink, err := google.New(ctx, config.GoogleSpreadsheetID, google.Credentials{
			JSON: config.GoogleServiceAccountJSON,
			File: config.GoogleServiceAccountFile,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Google Sheets sink: %w", err)
		}
		f.logger.Info("Initialized Google Sheets export sink")
		return sink, nil
	default:
		f.logger.Info("Initialized file export sink", "dir", config.ExportDir)
		return file.New(config.ExportDir), nil
	}
}

// createNotifier prefers AMQP and falls back to logging reminders.
func (f *DefaultFactory) createNotifier(config Config) (notify.Notifier, func() error) {
	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err == nil {
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
			return client, client.Close
		}
		f.logger.Warn("Failed to initialize AMQP client, logging reminders instead", "error", err)
	}
	return notify.LogNotifier{Logger: f.logger}, nil
}
