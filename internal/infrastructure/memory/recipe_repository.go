package memory

import (
	"context"
	"sync"

	domain "github.com/Zhima-Mochi/kitchen-inventory/internal/domain/recipe"
	"github.com/shopspring/decimal"
)

// RecipeRepository keeps lines per menu item in insertion order.
type RecipeRepository struct {
	mu     sync.RWMutex
	byItem map[string][]*domain.Line
	byID   map[string]*domain.Line
}

func NewRecipeRepository() *RecipeRepository {
	return &RecipeRepository{
		byItem: make(map[string][]*domain.Line),
		byID:   make(map[string]*domain.Line),
	}
}

func (r *RecipeRepository) Add(ctx context.Context, line *domain.Line) error {
	_ = ctx
	if line == nil {
		return domain.ErrInvalidLine
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.byItem[line.MenuItemID] {
		if existing.IngredientID == line.IngredientID {
			return domain.ErrDuplicateIngredient
		}
	}
	stored := *line
	r.byItem[line.MenuItemID] = append(r.byItem[line.MenuItemID], &stored)
	r.byID[line.ID] = &stored
	return nil
}

func (r *RecipeRepository) Get(ctx context.Context, id string) (*domain.Line, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	line, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *line
	return &clone, nil
}

func (r *RecipeRepository) ListByMenuItem(ctx context.Context, menuItemID string) ([]domain.Line, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.copyLines(menuItemID), nil
}

func (r *RecipeRepository) ListByMenuItems(ctx context.Context, menuItemIDs []string) (map[string][]domain.Line, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string][]domain.Line, len(menuItemIDs))
	for _, id := range menuItemIDs {
		if lines := r.copyLines(id); len(lines) > 0 {
			out[id] = lines
		}
	}
	return out, nil
}

func (r *RecipeRepository) UpdateQuantity(ctx context.Context, id string, qty decimal.Decimal) error {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	line, ok := r.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	line.QuantityPerUnit = qty
	return nil
}

func (r *RecipeRepository) Remove(ctx context.Context, id string) error {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	line, ok := r.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	delete(r.byID, id)
	lines := r.byItem[line.MenuItemID]
	for i, l := range lines {
		if l.ID == id {
			r.byItem[line.MenuItemID] = append(lines[:i:i], lines[i+1:]...)
			break
		}
	}
	if len(r.byItem[line.MenuItemID]) == 0 {
		delete(r.byItem, line.MenuItemID)
	}
	return nil
}

func (r *RecipeRepository) ClearMenuItem(ctx context.Context, menuItemID string) (int, error) {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	lines := r.byItem[menuItemID]
	for _, l := range lines {
		delete(r.byID, l.ID)
	}
	delete(r.byItem, menuItemID)
	return len(lines), nil
}

func (r *RecipeRepository) copyLines(menuItemID string) []domain.Line {
	lines := r.byItem[menuItemID]
	out := make([]domain.Line, 0, len(lines))
	for _, l := range lines {
		out = append(out, *l)
	}
	return out
}
