package core

import (
	"time"
)

// IsTemplate reports whether e seeds recurring instances. Generated
// instances match too, so each month's copy seeds the following month.
func IsTemplate(e Expense) bool {
	return e.IsRecurring && e.RecurringDayOfMonth != nil
}

// RecurringID is the deterministic id of a template's instance in a month.
func RecurringID(templateID, monthKey string) string {
	return templateID + "_" + monthKey
}

// GenerateRecurring returns the expenses that must be added so that every
// recurring template has an instance in monthKey. Existing entries are never
// touched; only new ones are returned.
//
// An instance counts as present when the month already holds a recurring
// expense with the template's category, note and amount. Templates with
// identical values therefore collapse into a single instance.
func GenerateRecurring(expenses []Expense, monthKey string) []Expense {
	first, ok := ParseMonthKey(monthKey)
	if !ok {
		return nil
	}
	lastDay := DaysInMonth(first.Year(), first.Month())

	present := ExpensesForMonth(expenses, monthKey)
	ids := make(map[string]struct{}, len(expenses))
	for _, e := range expenses {
		ids[e.ID] = struct{}{}
	}

	var generated []Expense
	for _, tmpl := range expenses {
		if !IsTemplate(tmpl) {
			continue
		}
		if hasInstance(present, tmpl) || hasInstance(generated, tmpl) {
			continue
		}
		id := RecurringID(tmpl.ID, monthKey)
		if _, taken := ids[id]; taken {
			continue
		}

		day := clampDay(*tmpl.RecurringDayOfMonth, lastDay)
		instance := tmpl.clone()
		instance.ID = id
		instance.Date = time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.Local)

		ids[id] = struct{}{}
		generated = append(generated, instance)
	}
	return generated
}

func hasInstance(monthExpenses []Expense, tmpl Expense) bool {
	for _, e := range monthExpenses {
		if e.IsRecurring &&
			e.CategoryID == tmpl.CategoryID &&
			e.Note == tmpl.Note &&
			e.Amount.Equal(tmpl.Amount) {
			return true
		}
	}
	return false
}

func clampDay(day, lastDay int) int {
	if day < 1 {
		return 1
	}
	if day > lastDay {
		return lastDay
	}
	return day
}
