package core

import "github.com/shopspring/decimal"

// CategorySpend is one category's line in a month summary.
type CategorySpend struct {
	Category        Category
	Spent           decimal.Decimal
	Rollover        decimal.Decimal
	EffectiveBudget decimal.Decimal
	// Remaining is EffectiveBudget minus Spent; it is zero for categories
	// without a limit and negative when overspent.
	Remaining  decimal.Decimal
	OverBudget bool
}

// MonthSummary is the derived view of a single month.
type MonthSummary struct {
	Month           string
	Label           string
	Expenses        []Expense
	TotalSpent      decimal.Decimal
	Income          decimal.Decimal
	RemainingIncome decimal.Decimal
	Categories      []CategorySpend
	// UnknownSpent is spend on category ids that no longer exist.
	UnknownSpent decimal.Decimal
}

// BuildMonthSummary derives the month view from a state snapshot. Category
// lines follow the order of state.Categories.
func BuildMonthSummary(state State, monthKey string) MonthSummary {
	monthExpenses := ExpensesForMonth(state.Expenses, monthKey)
	byCategory := TotalByCategory(monthExpenses)
	total := TotalSpent(monthExpenses)
	prev := PrevMonth(monthKey)

	summary := MonthSummary{
		Month:           monthKey,
		Label:           MonthLabel(monthKey),
		Expenses:        monthExpenses,
		TotalSpent:      total,
		Income:          state.Settings.IncomeAmount,
		RemainingIncome: state.Settings.IncomeAmount.Sub(total),
		UnknownSpent:    decimal.Zero,
	}

	known := make(map[string]struct{}, len(state.Categories))
	for _, cat := range state.Categories {
		known[cat.ID] = struct{}{}
		spent, ok := byCategory[cat.ID]
		if !ok {
			spent = decimal.Zero
		}
		rollover := ComputeRollover(cat, prev, state.Expenses, state.Rollovers)
		line := CategorySpend{
			Category:        cat,
			Spent:           spent,
			Rollover:        rollover,
			EffectiveBudget: EffectiveBudget(cat, rollover),
			Remaining:       decimal.Zero,
		}
		if !cat.Budget.IsZero() {
			line.Remaining = line.EffectiveBudget.Sub(spent)
			line.OverBudget = line.Remaining.IsNegative()
		}
		summary.Categories = append(summary.Categories, line)
	}

	for id, spent := range byCategory {
		if _, ok := known[id]; !ok {
			summary.UnknownSpent = summary.UnknownSpent.Add(spent)
		}
	}
	return summary
}
