// Package storage persists ledger state as JSON blobs.
//
// Importing it sets decimal.MarshalJSONWithoutQuotes for the whole process,
// so stored amounts are JSON numbers. Decoding accepts numbers and strings.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"ledgerly/internal/core"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// BlobStore is an async key/value store of opaque values.
type BlobStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Logical keys persisted by StateStore.
const (
	KeyCategories = "categories"
	KeyExpenses   = "expenses"
	KeySettings   = "settings"
	KeyRollovers  = "rollovers"
)

// Keys lists every key StateStore reads and writes.
var Keys = []string{KeyCategories, KeyExpenses, KeySettings, KeyRollovers}

// StateStore maps the four persisted collections onto a BlobStore as JSON.
type StateStore struct {
	blobs BlobStore
}

func NewStateStore(blobs BlobStore) *StateStore {
	return &StateStore{blobs: blobs}
}

// Load reads all collections, substituting defaults for absent keys.
func (s *StateStore) Load(ctx context.Context) (core.State, error) {
	state := core.State{
		Categories: []core.Category{},
		Expenses:   []core.Expense{},
		Settings:   core.DefaultSettings(),
		Rollovers:  core.RolloverMap{},
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.read(gctx, KeyCategories, &state.Categories) })
	g.Go(func() error { return s.read(gctx, KeyExpenses, &state.Expenses) })
	g.Go(func() error { return s.read(gctx, KeySettings, &state.Settings) })
	g.Go(func() error { return s.read(gctx, KeyRollovers, &state.Rollovers) })
	if err := g.Wait(); err != nil {
		return core.State{}, err
	}

	// A stored JSON null decodes to nil.
	if state.Categories == nil {
		state.Categories = []core.Category{}
	}
	if state.Expenses == nil {
		state.Expenses = []core.Expense{}
	}
	if state.Rollovers == nil {
		state.Rollovers = core.RolloverMap{}
	}

	slog.DebugContext(ctx, "State loaded",
		"categories", len(state.Categories),
		"expenses", len(state.Expenses),
		"rollover_months", len(state.Rollovers))
	return state, nil
}

// Save writes every collection. Keys are written independently; a failure
// part-way leaves earlier keys updated.
func (s *StateStore) Save(ctx context.Context, state core.State) error {
	if err := s.write(ctx, KeyCategories, state.Categories); err != nil {
		return err
	}
	if err := s.write(ctx, KeyExpenses, state.Expenses); err != nil {
		return err
	}
	if err := s.write(ctx, KeySettings, state.Settings); err != nil {
		return err
	}
	return s.write(ctx, KeyRollovers, state.Rollovers)
}

func (s *StateStore) SaveCategories(ctx context.Context, categories []core.Category) error {
	return s.write(ctx, KeyCategories, categories)
}

func (s *StateStore) SaveExpenses(ctx context.Context, expenses []core.Expense) error {
	return s.write(ctx, KeyExpenses, expenses)
}

func (s *StateStore) SaveSettings(ctx context.Context, settings core.AppSettings) error {
	return s.write(ctx, KeySettings, settings)
}

func (s *StateStore) SaveRollovers(ctx context.Context, rollovers core.RolloverMap) error {
	return s.write(ctx, KeyRollovers, rollovers)
}

func (s *StateStore) read(ctx context.Context, key string, dst any) error {
	b, ok, err := s.blobs.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("load %s: %w", key, err)
	}
	if !ok {
		return nil
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (s *StateStore) write(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.blobs.Set(ctx, key, b); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
