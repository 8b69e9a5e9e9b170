package memory

import (
	"context"
	"sort"
	"sync"

	domain "github.com/Zhima-Mochi/kitchen-inventory/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// Appender is the write side of the transaction log.
type Appender interface {
	Append(ctx context.Context, txs ...domain.Transaction) error
}

// IngredientRepository keeps ingredient rows in a map. Adjust and Consume run
// their read, their log append and their write under one lock, so they
// behave like a transaction on a real store.
type IngredientRepository struct {
	mu    sync.RWMutex
	items map[string]*domain.Ingredient
	log   Appender
}

// NewIngredientRepository journals stock changes into log. A nil log keeps
// stock only.
func NewIngredientRepository(log Appender) *IngredientRepository {
	return &IngredientRepository{
		items: make(map[string]*domain.Ingredient),
		log:   log,
	}
}

func (r *IngredientRepository) Create(ctx context.Context, ing *domain.Ingredient) error {
	_ = ctx
	if ing == nil {
		return domain.ErrInvalidIngredient
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[ing.ID]; exists {
		return domain.ErrConflict
	}
	r.items[ing.ID] = ing.Clone()
	return nil
}

func (r *IngredientRepository) Get(ctx context.Context, id string) (*domain.Ingredient, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	ing, ok := r.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return ing.Clone(), nil
}

func (r *IngredientRepository) GetMany(ctx context.Context, ids []string) ([]*domain.Ingredient, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Ingredient, 0, len(ids))
	for _, id := range ids {
		if ing, ok := r.items[id]; ok {
			out = append(out, ing.Clone())
		}
	}
	return out, nil
}

func (r *IngredientRepository) List(ctx context.Context) ([]*domain.Ingredient, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Ingredient, 0, len(r.items))
	for _, ing := range r.items {
		out = append(out, ing.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *IngredientRepository) UpdateDetails(ctx context.Context, ing *domain.Ingredient) error {
	_ = ctx
	if ing == nil {
		return domain.ErrInvalidIngredient
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[ing.ID]
	if !ok {
		return domain.ErrNotFound
	}
	next := ing.Clone()
	next.CurrentStock = current.CurrentStock
	next.Touch()
	r.items[ing.ID] = next
	return nil
}

func (r *IngredientRepository) Delete(ctx context.Context, id string) error {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *IngredientRepository) Adjust(ctx context.Context, id string, amount decimal.Decimal, mode domain.Mode, journal domain.Journal) (domain.Adjustment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ing, ok := r.items[id]
	if !ok {
		return domain.Adjustment{}, domain.ErrNotFound
	}
	next, err := domain.Apply(ing.CurrentStock, amount, mode)
	if err != nil {
		return domain.Adjustment{}, err
	}
	adj := domain.Adjustment{
		IngredientID: id,
		Previous:     ing.CurrentStock,
		New:          next,
		Minimum:      ing.MinimumStock,
	}
	if err := r.record(ctx, journal, []domain.Adjustment{adj}); err != nil {
		return domain.Adjustment{}, err
	}
	ing.CurrentStock = next
	ing.Touch()
	return adj, nil
}

// Consume computes every new level first and commits them only after the
// journal entries are in the log.
func (r *IngredientRepository) Consume(ctx context.Context, demand domain.Demand, journal domain.Journal) ([]domain.Adjustment, []string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var (
		applied = make([]domain.Adjustment, 0, len(demand))
		missing []string
	)
	for _, id := range demand.IDs() {
		ing, ok := r.items[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		next, err := domain.Apply(ing.CurrentStock, demand[id], domain.ModeDeduct)
		if err != nil {
			return nil, nil, err
		}
		applied = append(applied, domain.Adjustment{
			IngredientID: id,
			Previous:     ing.CurrentStock,
			New:          next,
			Minimum:      ing.MinimumStock,
		})
	}
	if err := r.record(ctx, journal, applied); err != nil {
		return nil, nil, err
	}
	for _, adj := range applied {
		ing := r.items[adj.IngredientID]
		ing.CurrentStock = adj.New
		ing.Touch()
	}
	return applied, missing, nil
}

// record appends the journal entries for adjs. Callers hold r.mu.
func (r *IngredientRepository) record(ctx context.Context, journal domain.Journal, adjs []domain.Adjustment) error {
	if journal == nil || r.log == nil || len(adjs) == 0 {
		return nil
	}
	entries := make([]domain.Transaction, 0, len(adjs))
	for _, adj := range adjs {
		entries = append(entries, journal(adj))
	}
	return r.log.Append(ctx, entries...)
}
