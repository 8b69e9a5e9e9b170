package inventory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	apprecipe "github.com/Zhima-Mochi/kitchen-inventory/internal/application/recipe"
	dominv "github.com/Zhima-Mochi/kitchen-inventory/internal/domain/inventory"
	domoutbox "github.com/Zhima-Mochi/kitchen-inventory/internal/domain/outbox"
	domrecipe "github.com/Zhima-Mochi/kitchen-inventory/internal/domain/recipe"
	"github.com/Zhima-Mochi/kitchen-inventory/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var errStoreDown = errors.New("connection refused")

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type seqIDs struct{ n atomic.Int64 }

func (s *seqIDs) NewID() string { return fmt.Sprintf("id-%d", s.n.Add(1)) }

type capturePublisher struct {
	mu     sync.Mutex
	events []domoutbox.Event
	err    error
}

func (p *capturePublisher) Publish(_ context.Context, e domoutbox.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func (p *capturePublisher) named(name string) []domoutbox.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []domoutbox.Event
	for _, e := range p.events {
		if e.EventName() == name {
			out = append(out, e)
		}
	}
	return out
}

// flakyIngredients fails Consume or Adjust a fixed number of times before
// delegating to the wrapped store.
type flakyIngredients struct {
	dominv.Repository
	consumeFailures atomic.Int32
	consumeCalls    atomic.Int32
	adjustErr       error
	lastDemand      dominv.Demand
}

func (f *flakyIngredients) Consume(ctx context.Context, d dominv.Demand, journal dominv.Journal) ([]dominv.Adjustment, []string, error) {
	f.consumeCalls.Add(1)
	f.lastDemand = d
	if f.consumeFailures.Add(-1) >= 0 {
		return nil, nil, errStoreDown
	}
	return f.Repository.Consume(ctx, d, journal)
}

func (f *flakyIngredients) Adjust(ctx context.Context, id string, amount decimal.Decimal, mode dominv.Mode, journal dominv.Journal) (dominv.Adjustment, error) {
	if f.adjustErr != nil {
		return dominv.Adjustment{}, f.adjustErr
	}
	return f.Repository.Adjust(ctx, id, amount, mode, journal)
}

// flakyLog refuses a fixed number of appends. The memory ingredient store
// writes through it, so a refused append must leave stock untouched.
type flakyLog struct {
	dominv.TransactionRepository
	appendFailures atomic.Int32
}

func (l *flakyLog) Append(ctx context.Context, txs ...dominv.Transaction) error {
	if l.appendFailures.Add(-1) >= 0 {
		return errStoreDown
	}
	return l.TransactionRepository.Append(ctx, txs...)
}

type fixture struct {
	ingredients  *flakyIngredients
	transactions *flakyLog
	recipes      *memory.RecipeRepository
	menu         *memory.MenuRepository
	resolver     *apprecipe.Resolver
	publisher    *capturePublisher
	ids          *seqIDs
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ids := &seqIDs{}
	log := &flakyLog{TransactionRepository: memory.NewTransactionRepository()}
	f := &fixture{
		ingredients:  &flakyIngredients{Repository: memory.NewIngredientRepository(log)},
		transactions: log,
		recipes:      memory.NewRecipeRepository(),
		menu:         memory.NewMenuRepository(),
		publisher:    &capturePublisher{},
		ids:          ids,
	}
	f.resolver = apprecipe.NewResolver(f.recipes, f.menu, f.ingredients, ids, nil)
	return f
}

func (f *fixture) ingredient(t *testing.T, id, stock, minimum string) {
	t.Helper()
	ing, err := dominv.NewIngredient(id, id, "kg", dec(stock), dec(minimum), dec("1"), "")
	require.NoError(t, err)
	require.NoError(t, f.ingredients.Create(context.Background(), ing))
}

func (f *fixture) recipe(t *testing.T, menuItemID, ingredientID, perUnit string) {
	t.Helper()
	ctx := context.Background()
	if _, err := f.menu.Get(ctx, menuItemID); err != nil {
		item, err := domrecipe.NewMenuItem(menuItemID, menuItemID, "mains", dec("10"))
		require.NoError(t, err)
		require.NoError(t, f.menu.Save(ctx, item))
	}
	line, err := domrecipe.NewLine(f.ids.NewID(), menuItemID, ingredientID, dec(perUnit))
	require.NoError(t, err)
	require.NoError(t, f.recipes.Add(ctx, line))
}

func (f *fixture) stock(t *testing.T, id string) decimal.Decimal {
	t.Helper()
	ing, err := f.ingredients.Get(context.Background(), id)
	require.NoError(t, err)
	return ing.CurrentStock
}

func (f *fixture) consumeUseCase() *ConsumeForOrderUseCase {
	return NewConsumeForOrderUseCase(f.resolver, f.ingredients, f.ids, f.publisher, nil)
}

func (f *fixture) ledger() *Ledger {
	return NewLedger(f.ingredients, f.transactions, f.ids, f.publisher, nil)
}
