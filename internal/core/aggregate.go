package core

import "github.com/shopspring/decimal"

// ExpensesForMonth returns the expenses whose local date falls in monthKey,
// in input order. The input slice is not modified.
func ExpensesForMonth(expenses []Expense, monthKey string) []Expense {
	var out []Expense
	for _, e := range expenses {
		if MonthKeyOf(e.Date) == monthKey {
			out = append(out, e)
		}
	}
	return out
}

// TotalByCategory sums amounts per category id. Categories without
// expenses are absent from the result.
func TotalByCategory(expenses []Expense) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal)
	for _, e := range expenses {
		totals[e.CategoryID] = totals[e.CategoryID].Add(e.Amount)
	}
	return totals
}

// TotalSpent sums all amounts.
func TotalSpent(expenses []Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total
}

// FormatAmount renders amount with exactly two decimals after the symbol.
// Halves round away from zero.
func FormatAmount(amount decimal.Decimal, currencySymbol string) string {
	return currencySymbol + amount.StringFixed(2)
}
