package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"ledgerly/internal/cache"
	"ledgerly/internal/core"
	"ledgerly/internal/export"
	"ledgerly/internal/log"
	"ledgerly/internal/notify"
	"ledgerly/internal/storage"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrUnknownCategory = errors.New("unknown category")
	ErrInvalidMonth    = errors.New("invalid month key")
	ErrNoSink          = errors.New("no export sink configured")
)

// StateRepository persists the ledger collections.
type StateRepository interface {
	Load(ctx context.Context) (core.State, error)
	SaveCategories(ctx context.Context, categories []core.Category) error
	SaveExpenses(ctx context.Context, expenses []core.Expense) error
	SaveSettings(ctx context.Context, settings core.AppSettings) error
	SaveRollovers(ctx context.Context, rollovers core.RolloverMap) error
}

var _ StateRepository = (*storage.StateStore)(nil)

// LedgerService runs every user action as load, mutate, persist. A mutex
// keeps concurrent actions from overwriting each other's writes.
type LedgerService struct {
	repo      StateRepository
	scheduler notify.Scheduler
	sink      export.Sink
	summaries cache.Cache[core.MonthSummary]

	mu    sync.Mutex
	now   func() time.Time
	newID func() string
}

// NewLedgerService wires the service. scheduler and sink may be nil.
func NewLedgerService(repo StateRepository, scheduler notify.Scheduler, sink export.Sink) *LedgerService {
	return &LedgerService{
		repo:      repo,
		scheduler: scheduler,
		sink:      sink,
		summaries: cache.NewLRU[core.MonthSummary](24, 10*time.Minute),
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// SummaryCache exposes the month summary cache for periodic cleanup.
func (s *LedgerService) SummaryCache() *cache.LRU[core.MonthSummary] {
	if lru, ok := s.summaries.(*cache.LRU[core.MonthSummary]); ok {
		return lru
	}
	return nil
}

// State returns the persisted state.
func (s *LedgerService) State(ctx context.Context) (core.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *LedgerService) AddCategory(ctx context.Context, c core.Category) (core.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	if err := c.Validate(); err != nil {
		return core.Category{}, fmt.Errorf("add category: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load(ctx)
	if err != nil {
		return core.Category{}, err
	}
	c.ID = s.newID()
	state.Categories = append(state.Categories, c)
	if err := s.repo.SaveCategories(ctx, state.Categories); err != nil {
		return core.Category{}, fmt.Errorf("add category: %w", err)
	}
	s.invalidate()

	slog.InfoContext(ctx, "Category added", log.FieldCategoryID, c.ID, "name", c.Name)
	return c, nil
}

// UpdateCategory replaces the category with the same ID.
func (s *LedgerService) UpdateCategory(ctx context.Context, c core.Category) error {
	c.Name = strings.TrimSpace(c.Name)
	if err := c.Validate(); err != nil {
		return fmt.Errorf("update category: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load(ctx)
	if err != nil {
		return err
	}
	i := slices.IndexFunc(state.Categories, func(x core.Category) bool { return x.ID == c.ID })
	if i < 0 {
		return fmt.Errorf("update category %s: %w", c.ID, ErrNotFound)
	}
	state.Categories[i] = c
	if err := s.repo.SaveCategories(ctx, state.Categories); err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	s.invalidate()
	return nil
}

// DeleteCategory removes a category. Its expenses are kept and show up as
// Unknown from then on.
func (s *LedgerService) DeleteCategory(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load(ctx)
	if err != nil {
		return err
	}
	n := len(state.Categories)
	state.Categories = slices.DeleteFunc(state.Categories, func(x core.Category) bool { return x.ID == id })
	if len(state.Categories) == n {
		return fmt.Errorf("delete category %s: %w", id, ErrNotFound)
	}
	if err := s.repo.SaveCategories(ctx, state.Categories); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	s.invalidate()

	slog.InfoContext(ctx, "Category deleted", log.FieldCategoryID, id)
	return nil
}

// AddExpense stores a new expense. A recurring expense without a day of
// month recurs on the day of its date.
func (s *LedgerService) AddExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	e = normalizeExpense(e)
	if err := e.Validate(); err != nil {
		return core.Expense{}, fmt.Errorf("add expense: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load(ctx)
	if err != nil {
		return core.Expense{}, err
	}
	if !hasCategory(state.Categories, e.CategoryID) {
		return core.Expense{}, fmt.Errorf("add expense: %w: %s", ErrUnknownCategory, e.CategoryID)
	}
	e.ID = s.newID()
	state.Expenses = append(state.Expenses, e)
	if err := s.repo.SaveExpenses(ctx, state.Expenses); err != nil {
		return core.Expense{}, fmt.Errorf("add expense: %w", err)
	}
	s.invalidate()

	slog.InfoContext(ctx, "Expense added",
		log.NewFields().WithExpense(e.ID, e.CategoryID, e.Amount).WithMonth(core.MonthKeyOf(e.Date)).ToSlice()...)
	return e, nil
}

// UpdateExpense replaces the expense with the same ID.
func (s *LedgerService) UpdateExpense(ctx context.Context, e core.Expense) error {
	e = normalizeExpense(e)
	if err := e.Validate(); err != nil {
		return fmt.Errorf("update expense: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load(ctx)
	if err != nil {
		return err
	}
	i := slices.IndexFunc(state.Expenses, func(x core.Expense) bool { return x.ID == e.ID })
	if i < 0 {
		return fmt.Errorf("update expense %s: %w", e.ID, ErrNotFound)
	}
	// An orphan may keep its deleted category, but cannot move to another unknown one.
	if e.CategoryID != state.Expenses[i].CategoryID && !hasCategory(state.Categories, e.CategoryID) {
		return fmt.Errorf("update expense: %w: %s", ErrUnknownCategory, e.CategoryID)
	}
	state.Expenses[i] = e
	if err := s.repo.SaveExpenses(ctx, state.Expenses); err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	s.invalidate()
	return nil
}

func (s *LedgerService) DeleteExpense(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load(ctx)
	if err != nil {
		return err
	}
	n := len(state.Expenses)
	state.Expenses = slices.DeleteFunc(state.Expenses, func(x core.Expense) bool { return x.ID == id })
	if len(state.Expenses) == n {
		return fmt.Errorf("delete expense %s: %w", id, ErrNotFound)
	}
	if err := s.repo.SaveExpenses(ctx, state.Expenses); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	s.invalidate()

	slog.InfoContext(ctx, "Expense deleted", log.FieldExpenseID, id)
	return nil
}

// SaveSettings replaces the settings and applies the reminder preference.
func (s *LedgerService) SaveSettings(ctx context.Context, settings core.AppSettings) error {
	settings.Currency = strings.TrimSpace(settings.Currency)
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.SaveSettings(ctx, settings); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	s.invalidate()
	return s.ApplyReminder(settings)
}

// ApplyReminder schedules or cancels the daily reminder to match settings.
func (s *LedgerService) ApplyReminder(settings core.AppSettings) error {
	if s.scheduler == nil {
		return nil
	}
	if !settings.NotificationsEnabled {
		s.scheduler.Cancel()
		return nil
	}
	if err := s.scheduler.Schedule(settings.ReminderHour, settings.ReminderMinute); err != nil {
		return fmt.Errorf("schedule reminder: %w", err)
	}
	return nil
}

// MonthSummary returns the derived view of monthKey. Recurring instances
// due up to the current month are generated and saved first.
func (s *LedgerService) MonthSummary(ctx context.Context, monthKey string) (core.MonthSummary, error) {
	if _, ok := core.ParseMonthKey(monthKey); !ok {
		return core.MonthSummary{}, fmt.Errorf("month summary %q: %w", monthKey, ErrInvalidMonth)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if sum, ok := s.summaries.Get(monthKey); ok {
		return cloneSummary(sum), nil
	}

	state, err := s.load(ctx)
	if err != nil {
		return core.MonthSummary{}, err
	}
	if _, err := s.topUpLocked(ctx, &state, monthKey); err != nil {
		return core.MonthSummary{}, err
	}

	sum := core.BuildMonthSummary(state, monthKey)
	s.summaries.Set(monthKey, cloneSummary(sum))
	return sum, nil
}

// CloseMonth stores the credit every rollover category carries out of
// monthKey, so the next month reads it back instead of recomputing.
func (s *LedgerService) CloseMonth(ctx context.Context, monthKey string) (map[string]decimal.Decimal, error) {
	if _, ok := core.ParseMonthKey(monthKey); !ok {
		return nil, fmt.Errorf("close month %q: %w", monthKey, ErrInvalidMonth)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.topUpLocked(ctx, &state, monthKey); err != nil {
		return nil, err
	}

	carried := make(map[string]decimal.Decimal)
	for _, c := range state.Categories {
		if !c.Rollover {
			continue
		}
		carried[c.ID] = core.CarryForward(c, monthKey, state.Expenses, state.Rollovers)
	}
	for id, v := range carried {
		state.Rollovers.Set(monthKey, id, v)
	}
	if err := s.repo.SaveRollovers(ctx, state.Rollovers); err != nil {
		return nil, fmt.Errorf("close month: %w", err)
	}
	s.invalidate()

	slog.InfoContext(ctx, "Month closed", log.FieldMonth, monthKey, "categories", len(carried))
	return carried, nil
}

// Export hands a CSV of monthKey's expenses to the sink, or of every
// expense when monthKey is empty. It returns the filename used.
func (s *LedgerService) Export(ctx context.Context, monthKey string) (string, error) {
	if s.sink == nil {
		return "", ErrNoSink
	}
	if monthKey != "" {
		if _, ok := core.ParseMonthKey(monthKey); !ok {
			return "", fmt.Errorf("export %q: %w", monthKey, ErrInvalidMonth)
		}
	}

	s.mu.Lock()
	state, err := s.load(ctx)
	s.mu.Unlock()
	if err != nil {
		return "", err
	}

	expenses := state.Expenses
	if monthKey != "" {
		expenses = core.ExpensesForMonth(expenses, monthKey)
	}
	csv := core.ExportCSV(expenses, state.Categories, state.Settings.Currency)
	filename := core.ExportFilename(s.now())
	if err := s.sink.Deliver(ctx, filename, csv); err != nil {
		return "", fmt.Errorf("export: %w", err)
	}

	slog.InfoContext(ctx, "Expenses exported",
		log.FieldFilename, filename,
		log.FieldMonth, monthKey,
		"rows", len(expenses))
	return filename, nil
}

// TopUpRecurring generates and saves the recurring instances missing from
// monthKey and reports how many were added.
func (s *LedgerService) TopUpRecurring(ctx context.Context, monthKey string) (int, error) {
	if _, ok := core.ParseMonthKey(monthKey); !ok {
		return 0, fmt.Errorf("top up %q: %w", monthKey, ErrInvalidMonth)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load(ctx)
	if err != nil {
		return 0, err
	}
	return s.topUpLocked(ctx, &state, monthKey)
}

// topUpLocked generates the recurring instances missing from monthKey,
// appends them to state and persists them. Months after the current one are
// left alone. Callers hold s.mu.
func (s *LedgerService) topUpLocked(ctx context.Context, state *core.State, monthKey string) (int, error) {
	if monthKey > core.MonthKeyOf(s.now()) {
		return 0, nil
	}
	generated := core.GenerateRecurring(state.Expenses, monthKey)
	if len(generated) == 0 {
		return 0, nil
	}
	state.Expenses = append(state.Expenses, generated...)
	if err := s.repo.SaveExpenses(ctx, state.Expenses); err != nil {
		return 0, fmt.Errorf("save recurring expenses: %w", err)
	}
	s.invalidate()

	slog.InfoContext(ctx, "Recurring expenses generated",
		log.FieldMonth, monthKey,
		log.FieldGenerated, len(generated))
	return len(generated), nil
}

func (s *LedgerService) load(ctx context.Context) (core.State, error) {
	state, err := s.repo.Load(ctx)
	if err != nil {
		return core.State{}, fmt.Errorf("load state: %w", err)
	}
	if state.Rollovers == nil {
		state.Rollovers = core.RolloverMap{}
	}
	return state, nil
}

func (s *LedgerService) invalidate() {
	s.summaries.Purge()
}

func normalizeExpense(e core.Expense) core.Expense {
	e.Note = strings.TrimSpace(e.Note)
	if e.IsRecurring && e.RecurringDayOfMonth == nil && !e.Date.IsZero() {
		day := e.Date.Local().Day()
		e.RecurringDayOfMonth = &day
	}
	return e
}

func hasCategory(categories []core.Category, id string) bool {
	return slices.ContainsFunc(categories, func(c core.Category) bool { return c.ID == id })
}

// cloneSummary copies the slices so cached summaries never alias a caller's.
func cloneSummary(sum core.MonthSummary) core.MonthSummary {
	sum.Expenses = slices.Clone(sum.Expenses)
	sum.Categories = slices.Clone(sum.Categories)
	return sum
}
