package core

import "github.com/shopspring/decimal"

// ComputeRollover returns the unspent budget credit cat carries out of
// previousMonth into the month after it.
//
// A value stored in rollovers for (previousMonth, cat.ID) wins over the live
// computation, including a stored zero. Categories without rollover or with
// no limit never accrue credit, and an overspent month carries nothing.
func ComputeRollover(cat Category, previousMonth string, expenses []Expense, rollovers RolloverMap) decimal.Decimal {
	if !cat.Rollover || cat.Budget.IsZero() {
		return decimal.Zero
	}
	if stored, ok := rollovers.Lookup(previousMonth, cat.ID); ok {
		return stored
	}
	spent := spentIn(cat.ID, previousMonth, expenses)
	return decimal.Max(cat.Budget.Sub(spent), decimal.Zero)
}

// EffectiveBudget adds a non-negative rollover credit to the category budget.
func EffectiveBudget(cat Category, rollover decimal.Decimal) decimal.Decimal {
	return cat.Budget.Add(decimal.Max(rollover, decimal.Zero))
}

// CarryForward is the credit to persist for cat at the close of month:
// what is left of the month's effective budget, floored at zero. Storing it
// under rollovers[month] lets credit accumulate across months, since the
// next ComputeRollover reads it back verbatim.
func CarryForward(cat Category, month string, expenses []Expense, rollovers RolloverMap) decimal.Decimal {
	if !cat.Rollover || cat.Budget.IsZero() {
		return decimal.Zero
	}
	incoming := ComputeRollover(cat, PrevMonth(month), expenses, rollovers)
	left := EffectiveBudget(cat, incoming).Sub(spentIn(cat.ID, month, expenses))
	return decimal.Max(left, decimal.Zero)
}

func spentIn(categoryID, monthKey string, expenses []Expense) decimal.Decimal {
	spent := decimal.Zero
	for _, e := range ExpensesForMonth(expenses, monthKey) {
		if e.CategoryID == categoryID {
			spent = spent.Add(e.Amount)
		}
	}
	return spent
}
