package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"ledgerly/internal/log"
)

func TestSetupLogger(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	logger := SetupLogger(log.ComponentWorker, "debug")
	if logger.Component() != log.ComponentWorker {
		t.Errorf("Component() = %q", logger.Component())
	}
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug level should be enabled")
	}

	logger = SetupLogger(log.ComponentWorker, "verbose")
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("unknown level should fall back to info")
	}
}

func TestShutdownWithTimeout(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	if err := ShutdownWithTimeout(logger, time.Second, func(context.Context) error { return nil }); err != nil {
		t.Errorf("clean shutdown error = %v", err)
	}

	boom := errors.New("close failed")
	if err := ShutdownWithTimeout(logger, time.Second, func(context.Context) error { return boom }); !errors.Is(err, boom) {
		t.Errorf("error = %v, want %v", err, boom)
	}

	block := make(chan struct{})
	defer close(block)
	err := ShutdownWithTimeout(logger, 10*time.Millisecond, func(context.Context) error {
		<-block
		return nil
	})
	if err == nil {
		t.Error("slow cleanup should time out")
	}
}

func TestSignalContextFollowsParent(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	ctx, stop := SignalContext(parent, slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer stop()

	cancel()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context not cancelled with parent")
	}
}
