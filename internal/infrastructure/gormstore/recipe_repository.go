package gormstore

import (
	"context"
	"errors"

	domain "github.com/Zhima-Mochi/kitchen-inventory/internal/domain/recipe"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type RecipeRepository struct {
	db *gorm.DB
}

func NewRecipeRepository(db *gorm.DB) *RecipeRepository {
	return &RecipeRepository{db: db}
}

func (r *RecipeRepository) Add(ctx context.Context, line *domain.Line) error {
	if line == nil {
		return domain.ErrInvalidLine
	}
	err := r.db.WithContext(ctx).Create(toRecipeLineRow(line)).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrDuplicateIngredient
	}
	return persistence(domain.ErrPersistence, err)
}

func (r *RecipeRepository) Get(ctx context.Context, id string) (*domain.Line, error) {
	var row recipeLineRow
	err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, persistence(domain.ErrPersistence, err)
	}
	l := row.domain()
	return &l, nil
}

func (r *RecipeRepository) ListByMenuItem(ctx context.Context, menuItemID string) ([]domain.Line, error) {
	byItem, err := r.ListByMenuItems(ctx, []string{menuItemID})
	if err != nil {
		return nil, err
	}
	return byItem[menuItemID], nil
}

// ListByMenuItems answers any number of items with a single query.
func (r *RecipeRepository) ListByMenuItems(ctx context.Context, menuItemIDs []string) (map[string][]domain.Line, error) {
	out := make(map[string][]domain.Line, len(menuItemIDs))
	if len(menuItemIDs) == 0 {
		return out, nil
	}
	var rows []recipeLineRow
	if err := r.db.WithContext(ctx).
		Where("menu_item_id IN ?", menuItemIDs).
		Order("created_at, id").
		Find(&rows).Error; err != nil {
		return nil, persistence(domain.ErrPersistence, err)
	}
	for _, row := range rows {
		out[row.MenuItemID] = append(out[row.MenuItemID], row.domain())
	}
	return out, nil
}

func (r *RecipeRepository) UpdateQuantity(ctx context.Context, id string, qty decimal.Decimal) error {
	if !qty.IsPositive() {
		return domain.ErrInvalidQuantity
	}
	res := r.db.WithContext(ctx).Model(&recipeLineRow{}).Where("id = ?", id).Update("quantity_per_unit", qty)
	if res.Error != nil {
		return persistence(domain.ErrPersistence, res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *RecipeRepository) Remove(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&recipeLineRow{}, "id = ?", id)
	if res.Error != nil {
		return persistence(domain.ErrPersistence, res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *RecipeRepository) ClearMenuItem(ctx context.Context, menuItemID string) (int, error) {
	res := r.db.WithContext(ctx).Delete(&recipeLineRow{}, "menu_item_id = ?", menuItemID)
	if res.Error != nil {
		return 0, persistence(domain.ErrPersistence, res.Error)
	}
	return int(res.RowsAffected), nil
}
