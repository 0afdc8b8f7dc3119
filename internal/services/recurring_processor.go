package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ledgerly/internal/core"
	"ledgerly/internal/log"
)

// RecurringProcessor tops up recurring expenses outside of user actions,
// so instances exist even for months nobody opened.
type RecurringProcessor struct {
	ledger *LedgerService
}

func NewRecurringProcessor(ledger *LedgerService) *RecurringProcessor {
	return &RecurringProcessor{ledger: ledger}
}

// ProcessMonth generates the instances missing from monthKey.
func (p *RecurringProcessor) ProcessMonth(ctx context.Context, monthKey string) (int, error) {
	if p.ledger == nil {
		return 0, errors.New("processor not properly initialized")
	}

	start := time.Now()
	n, err := p.ledger.TopUpRecurring(ctx, monthKey)
	if err != nil {
		slog.ErrorContext(ctx, "Recurring expense processing failed",
			log.NewFields().WithOperation(log.OpRecurring).WithMonth(monthKey).WithError(err).ToSlice()...)
		return 0, fmt.Errorf("process recurring for %s: %w", monthKey, err)
	}

	slog.InfoContext(ctx, "Recurring expense processing complete",
		log.FieldMonth, monthKey,
		log.FieldGenerated, n,
		log.FieldDuration, time.Since(start).Milliseconds())
	return n, nil
}

// ProcessDueExpenses processes the month containing now, then builds that
// month's summary so it is cached and over-budget categories get logged.
func (p *RecurringProcessor) ProcessDueExpenses(ctx context.Context, now time.Time) (int, error) {
	monthKey := core.MonthKeyOf(now)
	n, err := p.ProcessMonth(ctx, monthKey)
	if err != nil {
		return 0, err
	}

	sum, err := p.ledger.MonthSummary(ctx, monthKey)
	if err != nil {
		return n, fmt.Errorf("summarize %s: %w", monthKey, err)
	}
	for _, c := range sum.Categories {
		if c.OverBudget {
			slog.WarnContext(ctx, "Category over budget",
				log.FieldMonth, monthKey,
				log.FieldCategoryID, c.Category.ID,
				"spent", c.Spent.StringFixed(2),
				"budget", c.EffectiveBudget.StringFixed(2))
		}
	}
	return n, nil
}
