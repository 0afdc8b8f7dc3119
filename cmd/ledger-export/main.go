package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"ledgerly/internal/backend"
	"ledgerly/internal/cli"
	"ledgerly/internal/core"
	"ledgerly/internal/log"
	"ledgerly/internal/services"
)

func main() {
	month := flag.String("month", "", "month to export as YYYY-MM (empty exports every expense)")
	closeMonth := flag.Bool("close", false, "close -month, storing rollover credits before exporting")
	summary := flag.Bool("summary", false, "print the -month summary instead of exporting")
	flag.Parse()

	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentExport, "info")
	cfg := cli.LoadAndValidateConfig(logger.Logger)
	logger = cli.SetupLogger(log.ComponentExport, cfg.LogLevel)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	res, err := backend.NewFactory(logger.WithComponent(log.ComponentBackend).Logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err)
		os.Exit(1)
	}

	ledger := services.NewLedgerService(res.Store, nil, res.Sink)
	runErr := run(ctx, ledger, *month, *closeMonth, *summary)
	if runErr != nil {
		logger.Fields(ctx, slog.LevelError, "ledger-export failed",
			log.NewFields().WithOperation(log.OpExport).WithMonth(*month).WithError(runErr))
	}

	shutdownErr := cli.ShutdownWithTimeout(logger.Logger, 10*time.Second, func(context.Context) error {
		return res.Cleanup()
	})
	if runErr != nil || shutdownErr != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, ledger *services.LedgerService, month string, closeMonth, summary bool) error {
	if (closeMonth || summary) && month == "" {
		return fmt.Errorf("-close and -summary need -month")
	}

	if closeMonth {
		carried, err := ledger.CloseMonth(ctx, month)
		if err != nil {
			return err
		}
		for id, v := range carried {
			fmt.Printf("carried %s: %s\n", id, v.StringFixed(2))
		}
	}

	if summary {
		sum, err := ledger.MonthSummary(ctx, month)
		if err != nil {
			return err
		}
		printSummary(sum)
		return nil
	}

	filename, err := ledger.Export(ctx, month)
	if err != nil {
		return err
	}
	fmt.Println(filename)
	return nil
}

func printSummary(sum core.MonthSummary) {
	fmt.Printf("%s  income %s  spent %s  remaining %s\n",
		sum.Label, sum.Income.StringFixed(2), sum.TotalSpent.StringFixed(2), sum.RemainingIncome.StringFixed(2))
	for _, c := range sum.Categories {
		mark := ""
		if c.OverBudget {
			mark = "  over"
		}
		fmt.Printf("  %-20s budget %10s  spent %10s  left %10s%s\n",
			c.Category.Name, c.EffectiveBudget.StringFixed(2), c.Spent.StringFixed(2), c.Remaining.StringFixed(2), mark)
	}
	if sum.UnknownSpent.IsPositive() {
		fmt.Printf("  %-20s spent %10s\n", "(unknown)", sum.UnknownSpent.StringFixed(2))
	}
}
