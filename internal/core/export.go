package core

import (
	"slices"
	"strings"
	"time"
)

// CSVHeader is the first line of every export.
const CSVHeader = "Date,Category,Amount,Currency,Note,Recurring"

// ExportCSV renders expenses as CSV text sorted by date. Categories are
// resolved by id and quoted only when needed, the note is always quoted and
// lines are joined with "\n".
func ExportCSV(expenses []Expense, categories []Category, currency string) string {
	sorted := slices.Clone(expenses)
	slices.SortStableFunc(sorted, func(a, b Expense) int {
		return a.Date.Compare(b.Date)
	})

	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	lines := make([]string, 0, len(sorted)+1)
	lines = append(lines, CSVHeader)
	for _, e := range sorted {
		name, ok := names[e.CategoryID]
		if !ok {
			name = UnknownCategory
		}
		recurring := "no"
		if e.IsRecurring {
			recurring = "yes"
		}
		lines = append(lines, strings.Join([]string{
			DateToString(e.Date),
			csvField(name),
			e.Amount.StringFixed(2),
			currency,
			quoteField(e.Note),
			recurring,
		}, ","))
	}
	return strings.Join(lines, "\n")
}

// ExportFilename suggests a file name for an export made at now.
func ExportFilename(now time.Time) string {
	return "expenses-" + DateToString(now) + ".csv"
}

// csvField leaves s bare unless it holds a separator, quote or line break.
func csvField(s string) string {
	if strings.ContainsAny(s, ",\"\r\n") {
		return quoteField(s)
	}
	return s
}

func quoteField(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
