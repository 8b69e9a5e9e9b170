package recipe

import (
	"context"

	"github.com/shopspring/decimal"
)

// Repository stores recipe lines. ListByMenuItems must serve any number of
// items in one round trip. Lines come back in creation order.
type Repository interface {
	// Add fails with ErrDuplicateIngredient when (item, ingredient) exists.
	Add(ctx context.Context, line *Line) error
	Get(ctx context.Context, id string) (*Line, error)
	ListByMenuItem(ctx context.Context, menuItemID string) ([]Line, error)
	ListByMenuItems(ctx context.Context, menuItemIDs []string) (map[string][]Line, error)
	UpdateQuantity(ctx context.Context, id string, qty decimal.Decimal) error
	Remove(ctx context.Context, id string) error
	ClearMenuItem(ctx context.Context, menuItemID string) (int, error)
}

type MenuRepository interface {
	Save(ctx context.Context, item *MenuItem) error
	Get(ctx context.Context, id string) (*MenuItem, error)
	GetMany(ctx context.Context, ids []string) ([]*MenuItem, error)
}
