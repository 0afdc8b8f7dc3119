package worker

import (
	"context"
	"log/slog"
	"time"

	"ledgerly/internal/log"
)

// DueProcessor generates whatever recurring expenses are due at now.
type DueProcessor interface {
	ProcessDueExpenses(ctx context.Context, now time.Time) (int, error)
}

// RecurringWorker runs a DueProcessor on startup and then on every tick.
type RecurringWorker struct {
	processor DueProcessor
	interval  time.Duration
	now       func() time.Time
}

func NewRecurringWorker(p DueProcessor, interval time.Duration) *RecurringWorker {
	return &RecurringWorker{processor: p, interval: interval, now: time.Now}
}

// Run blocks until ctx is done. Processing errors are logged, not returned,
// so one bad pass doesn't stop later ones.
func (w *RecurringWorker) Run(ctx context.Context) error {
	slog.InfoContext(ctx, "Recurring worker started", "interval", w.interval)
	w.process(ctx, w.now())

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Recurring worker stopped")
			return nil
		case <-ticker.C:
			w.process(ctx, w.now())
		}
	}
}

func (w *RecurringWorker) process(ctx context.Context, now time.Time) {
	count, err := w.processor.ProcessDueExpenses(ctx, now)
	if err != nil {
		slog.ErrorContext(ctx, "Recurring processing failed", log.FieldError, err)
		return
	}
	slog.InfoContext(ctx, "Recurring processing pass complete",
		log.FieldGenerated, count,
		"next_check", now.Add(w.interval).Format("15:04:05"))
}
