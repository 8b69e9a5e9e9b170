package memory

import (
	"context"
	"sync"

	domain "github.com/Zhima-Mochi/kitchen-inventory/internal/domain/recipe"
)

type MenuRepository struct {
	mu    sync.RWMutex
	items map[string]domain.MenuItem
}

func NewMenuRepository() *MenuRepository {
	return &MenuRepository{items: make(map[string]domain.MenuItem)}
}

// Save inserts or replaces the menu item.
func (r *MenuRepository) Save(ctx context.Context, item *domain.MenuItem) error {
	_ = ctx
	if item == nil {
		return domain.ErrInvalidMenuItem
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[item.ID] = *item
	return nil
}

func (r *MenuRepository) Get(ctx context.Context, id string) (*domain.MenuItem, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return nil, domain.ErrMenuItemNotFound
	}
	return &item, nil
}

func (r *MenuRepository) GetMany(ctx context.Context, ids []string) ([]*domain.MenuItem, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.MenuItem, 0, len(ids))
	for _, id := range ids {
		if item, ok := r.items[id]; ok {
			out = append(out, &item)
		}
	}
	return out, nil
}
