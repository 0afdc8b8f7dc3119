package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"
	"ledgerly/internal/backend"
	"ledgerly/internal/cache"
	"ledgerly/internal/cli"
	"ledgerly/internal/log"
	"ledgerly/internal/notify"
	"ledgerly/internal/services"
	"ledgerly/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(log.ComponentWorker, "info")
	logger.Info("Starting ledger-worker")

	cfg := cli.LoadAndValidateConfig(logger.Logger)
	logger = cli.SetupLogger(log.ComponentWorker, cfg.LogLevel)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}

	ctx, stop := cli.SignalContext(context.Background(), logger.Logger)
	defer stop()

	res, err := backend.NewFactory(logger.WithComponent(log.ComponentBackend).Logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err)
		os.Exit(1)
	}

	scheduler := notify.NewDailyScheduler(res.Notifier)
	ledger := services.NewLedgerService(res.Store, scheduler, res.Sink)

	state, err := ledger.State(ctx)
	if err != nil {
		logger.Error("Failed to load ledger state", log.FieldError, err)
		_ = res.Cleanup()
		os.Exit(1)
	}
	if err := ledger.ApplyReminder(state.Settings); err != nil {
		logger.Warn("Failed to schedule daily reminder", log.FieldError, err)
	} else if next, ok := scheduler.Next(); ok {
		logger.Info("Daily reminder scheduled", "next", next.Format(time.RFC3339))
	}

	logger.Info("Ledger worker configured",
		"backend", backendCfg.Type,
		"sink", backendCfg.Sink,
		"recurring_interval", cfg.RecurringInterval,
		"cache_cleanup_interval", cfg.CacheCleanupInterval)

	processor := services.NewRecurringProcessor(ledger)
	janitor := cache.NewJanitor(ledger.SummaryCache())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return worker.NewRecurringWorker(processor, cfg.RecurringInterval).Run(gctx)
	})
	g.Go(func() error {
		return janitor.Run(gctx, cfg.CacheCleanupInterval)
	})

	runErr := g.Wait()
	if runErr != nil {
		logger.Fields(ctx, slog.LevelError, "Worker stopped with error",
			log.NewFields().WithOperation(log.OpShutdown).WithError(runErr))
	}

	logger.Info("Shutting down ledger-worker...")
	scheduler.Cancel()
	shutdownErr := cli.ShutdownWithTimeout(logger.Logger, 30*time.Second, func(context.Context) error {
		return res.Cleanup()
	})

	if runErr != nil || shutdownErr != nil {
		os.Exit(1)
	}
}
