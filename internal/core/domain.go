package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// UnknownCategory is shown for expenses whose category no longer exists.
const UnknownCategory = "Unknown"

type (
	// Category is a user-defined spending bucket with a monthly budget.
	// A zero Budget means "no limit".
	Category struct {
		ID       string          `json:"id"`
		Name     string          `json:"name"`
		Budget   decimal.Decimal `json:"budget"`
		IsFixed  bool            `json:"isFixed"`
		Rollover bool            `json:"rollover"`
	}

	// Expense is a single spending event. Recurring templates and the
	// instances generated from them are both flagged IsRecurring.
	Expense struct {
		ID                  string          `json:"id"`
		CategoryID          string          `json:"categoryId"`
		Amount              decimal.Decimal `json:"amount"`
		Date                time.Time       `json:"date"`
		Note                string          `json:"note"`
		IsRecurring         bool            `json:"isRecurring"`
		RecurringDayOfMonth *int            `json:"recurringDayOfMonth,omitempty"`
	}

	// AppSettings is the singleton settings record.
	AppSettings struct {
		Currency             string          `json:"currency"`
		IncomeAmount         decimal.Decimal `json:"incomeAmount"`
		NotificationsEnabled bool            `json:"notificationsEnabled"`
		ReminderHour         int             `json:"reminderHour"`
		ReminderMinute       int             `json:"reminderMinute"`
	}

	// RolloverMap maps a month key to stored rollover credits by category id.
	RolloverMap map[string]map[string]decimal.Decimal

	// State is a snapshot of everything the store persists.
	State struct {
		Categories []Category
		Expenses   []Expense
		Settings   AppSettings
		Rollovers  RolloverMap
	}
)

var (
	ErrEmptyName           = errors.New("empty name")
	ErrNegativeBudget      = errors.New("negative budget")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidDay          = errors.New("invalid day")
	ErrMissingDate         = errors.New("missing date")
	ErrEmptyCurrency       = errors.New("empty currency")
	ErrInvalidReminderTime = errors.New("invalid reminder time")
)

// DefaultSettings returns the settings used when none have been saved.
func DefaultSettings() AppSettings {
	return AppSettings{
		Currency:             "€",
		IncomeAmount:         decimal.Zero,
		NotificationsEnabled: false,
		ReminderHour:         20,
		ReminderMinute:       0,
	}
}

// Validate checks a category before it is accepted from user input.
func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if c.Budget.IsNegative() {
		return ErrNegativeBudget
	}
	return nil
}

// Validate checks an expense before it is accepted from user input.
func (e Expense) Validate() error {
	if !e.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if e.Date.IsZero() {
		return ErrMissingDate
	}
	if e.IsRecurring {
		if e.RecurringDayOfMonth == nil {
			return ErrInvalidDay
		}
		if d := *e.RecurringDayOfMonth; d < 1 || d > 31 {
			return ErrInvalidDay
		}
	}
	return nil
}

func (s AppSettings) Validate() error {
	if strings.TrimSpace(s.Currency) == "" {
		return ErrEmptyCurrency
	}
	if s.IncomeAmount.IsNegative() {
		return ErrInvalidAmount
	}
	if s.ReminderHour < 0 || s.ReminderHour > 23 || s.ReminderMinute < 0 || s.ReminderMinute > 59 {
		return ErrInvalidReminderTime
	}
	return nil
}

// Lookup returns the stored credit for a category in a month. The boolean
// distinguishes a stored zero from a missing entry.
func (m RolloverMap) Lookup(monthKey, categoryID string) (decimal.Decimal, bool) {
	byCategory, ok := m[monthKey]
	if !ok {
		return decimal.Zero, false
	}
	v, ok := byCategory[categoryID]
	return v, ok
}

// Set stores a credit, allocating the month bucket when needed.
func (m RolloverMap) Set(monthKey, categoryID string, value decimal.Decimal) {
	byCategory, ok := m[monthKey]
	if !ok {
		byCategory = make(map[string]decimal.Decimal)
		m[monthKey] = byCategory
	}
	byCategory[categoryID] = value
}

// Clone returns a deep copy so callers can mutate it freely.
func (m RolloverMap) Clone() RolloverMap {
	out := make(RolloverMap, len(m))
	for month, byCategory := range m {
		inner := make(map[string]decimal.Decimal, len(byCategory))
		for id, v := range byCategory {
			inner[id] = v
		}
		out[month] = inner
	}
	return out
}

// Clone returns a copy of the state that shares nothing mutable with s.
func (s State) Clone() State {
	out := State{
		Categories: append([]Category(nil), s.Categories...),
		Expenses:   make([]Expense, len(s.Expenses)),
		Settings:   s.Settings,
		Rollovers:  s.Rollovers.Clone(),
	}
	for i, e := range s.Expenses {
		out.Expenses[i] = e.clone()
	}
	return out
}

func (e Expense) clone() Expense {
	if e.RecurringDayOfMonth != nil {
		day := *e.RecurringDayOfMonth
		e.RecurringDayOfMonth = &day
	}
	return e
}

// CategoryName resolves a category id to its display name.
func CategoryName(categories []Category, id string) string {
	for _, c := range categories {
		if c.ID == id {
			return c.Name
		}
	}
	return UnknownCategory
}
