package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"ledgerly/internal/core"
)

func sampleState() core.State {
	day := 12
	settings := core.DefaultSettings()
	settings.IncomeAmount = decimal.RequireFromString("2500")
	settings.NotificationsEnabled = true
	return core.State{
		Categories: []core.Category{
			{ID: "food", Name: "Food", Budget: decimal.RequireFromString("300"), Rollover: true},
		},
		Expenses: []core.Expense{
			{
				ID:                  "e1",
				CategoryID:          "food",
				Amount:              decimal.RequireFromString("12.34"),
				Date:                time.Date(2025, 3, 12, 0, 0, 0, 0, time.Local),
				Note:                "groceries",
				IsRecurring:         true,
				RecurringDayOfMonth: &day,
			},
		},
		Settings: settings,
		Rollovers: core.RolloverMap{
			"2025-03": {"food": decimal.RequireFromString("0")},
		},
	}
}

func TestStateStoreDefaults(t *testing.T) {
	store := NewStateStore(NewMemoryRepository())
	state, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if state.Categories == nil || len(state.Categories) != 0 {
		t.Errorf("Categories = %v, want empty non-nil", state.Categories)
	}
	if state.Expenses == nil || len(state.Expenses) != 0 {
		t.Errorf("Expenses = %v, want empty non-nil", state.Expenses)
	}
	def := core.DefaultSettings()
	if state.Settings.Currency != def.Currency || !state.Settings.IncomeAmount.IsZero() || state.Settings.ReminderHour != def.ReminderHour {
		t.Errorf("Settings = %+v, want defaults", state.Settings)
	}
	if state.Rollovers == nil {
		t.Error("Rollovers is nil, want empty map")
	}
}

func TestStateStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewStateStore(NewMemoryRepository())
	want := sampleState()

	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	assertStateEqual(t, got, want)
}

func TestStateStoreStoredZeroRollover(t *testing.T) {
	ctx := context.Background()
	store := NewStateStore(NewMemoryRepository())
	if err := store.SaveRollovers(ctx, sampleState().Rollovers); err != nil {
		t.Fatalf("SaveRollovers() error = %v", err)
	}
	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	v, ok := got.Rollovers.Lookup("2025-03", "food")
	if !ok || !v.IsZero() {
		t.Errorf("Lookup() = %v, %v; want 0, true", v, ok)
	}
}

type failingBlobs struct{ MemoryRepository }

var errBoom = errors.New("boom")

func (f *failingBlobs) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errBoom
}

func TestStateStoreLoadError(t *testing.T) {
	store := NewStateStore(&failingBlobs{})
	if _, err := store.Load(context.Background()); !errors.Is(err, errBoom) {
		t.Errorf("Load() error = %v, want wrapped errBoom", err)
	}
}

func TestStateStoreDecodeError(t *testing.T) {
	ctx := context.Background()
	blobs := NewMemoryRepository()
	_ = blobs.Set(ctx, KeyExpenses, []byte("{not json"))
	if _, err := NewStateStore(blobs).Load(ctx); err == nil {
		t.Error("Load() succeeded on corrupt expenses")
	}
}

func TestNewMemoryFromDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "categories.json"), []byte(`[{"id":"c","name":"Car","budget":50,"isFixed":false,"rollover":false}]`), 0o644); err != nil {
		t.Fatal(err)
	}

	repo, err := NewMemoryFromDir(dir)
	if err != nil {
		t.Fatalf("NewMemoryFromDir() error = %v", err)
	}
	state, err := NewStateStore(repo).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(state.Categories) != 1 || state.Categories[0].Name != "Car" {
		t.Errorf("Categories = %+v", state.Categories)
	}
	if !state.Categories[0].Budget.Equal(decimal.NewFromInt(50)) {
		t.Errorf("Budget = %v, want 50", state.Categories[0].Budget)
	}
	if len(state.Expenses) != 0 {
		t.Errorf("Expenses = %+v, want none", state.Expenses)
	}
}

func TestSQLiteRepository(t *testing.T) {
	ctx := context.Background()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "ledger.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	defer repo.Close()

	if _, ok, err := repo.Get(ctx, "missing"); err != nil || ok {
		t.Errorf("Get(missing) = _, %v, %v; want false, nil", ok, err)
	}

	store := NewStateStore(repo)
	want := sampleState()
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	// Overwrite one key to exercise the upsert.
	want.Expenses = append(want.Expenses, core.Expense{
		ID: "e2", CategoryID: "food", Amount: decimal.RequireFromString("1"),
		Date: time.Date(2025, 3, 13, 0, 0, 0, 0, time.Local),
	})
	if err := store.SaveExpenses(ctx, want.Expenses); err != nil {
		t.Fatalf("SaveExpenses() error = %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	assertStateEqual(t, got, want)
}

func assertStateEqual(t *testing.T, got, want core.State) {
	t.Helper()
	if len(got.Categories) != len(want.Categories) {
		t.Fatalf("Categories = %+v, want %+v", got.Categories, want.Categories)
	}
	for i := range want.Categories {
		g, w := got.Categories[i], want.Categories[i]
		if g.ID != w.ID || g.Name != w.Name || !g.Budget.Equal(w.Budget) || g.Rollover != w.Rollover || g.IsFixed != w.IsFixed {
			t.Errorf("Categories[%d] = %+v, want %+v", i, g, w)
		}
	}
	if len(got.Expenses) != len(want.Expenses) {
		t.Fatalf("Expenses = %+v, want %+v", got.Expenses, want.Expenses)
	}
	for i := range want.Expenses {
		g, w := got.Expenses[i], want.Expenses[i]
		if g.ID != w.ID || !g.Amount.Equal(w.Amount) || !g.Date.Equal(w.Date) || g.Note != w.Note || g.IsRecurring != w.IsRecurring {
			t.Errorf("Expenses[%d] = %+v, want %+v", i, g, w)
		}
		if (g.RecurringDayOfMonth == nil) != (w.RecurringDayOfMonth == nil) ||
			(g.RecurringDayOfMonth != nil && *g.RecurringDayOfMonth != *w.RecurringDayOfMonth) {
			t.Errorf("Expenses[%d].RecurringDayOfMonth mismatch", i)
		}
	}
	if got.Settings.Currency != want.Settings.Currency ||
		!got.Settings.IncomeAmount.Equal(want.Settings.IncomeAmount) ||
		got.Settings.NotificationsEnabled != want.Settings.NotificationsEnabled ||
		got.Settings.ReminderHour != want.Settings.ReminderHour ||
		got.Settings.ReminderMinute != want.Settings.ReminderMinute {
		t.Errorf("Settings = %+v, want %+v", got.Settings, want.Settings)
	}
	for month, cats := range want.Rollovers {
		for id, v := range cats {
			gv, ok := got.Rollovers.Lookup(month, id)
			if !ok || !gv.Equal(v) {
				t.Errorf("Rollovers[%s][%s] = %v, %v; want %v", month, id, gv, ok, v)
			}
		}
	}
}

func TestStoredAmountsAreJSONNumbers(t *testing.T) {
	ctx := context.Background()
	blobs := NewMemoryRepository()
	if err := NewStateStore(blobs).SaveExpenses(ctx, sampleState().Expenses); err != nil {
		t.Fatalf("SaveExpenses() error = %v", err)
	}

	raw, ok, err := blobs.Get(ctx, KeyExpenses)
	if err != nil || !ok {
		t.Fatalf("Get() = %v, %v", ok, err)
	}
	if !strings.Contains(string(raw), `"amount":`) || strings.Contains(string(raw), `"amount":"`) {
		t.Errorf("amount should be a JSON number: %s", raw)
	}
}

func TestRunMigrationsIsRepeatable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	for i := 0; i < 2; i++ {
		if err := RunMigrations(path); err != nil {
			t.Fatalf("RunMigrations() pass %d error = %v", i+1, err)
		}
	}
}
