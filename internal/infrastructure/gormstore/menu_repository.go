package gormstore

import (
	"context"
	"errors"

	domain "github.com/Zhima-Mochi/kitchen-inventory/internal/domain/recipe"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MenuRepository struct {
	db *gorm.DB
}

func NewMenuRepository(db *gorm.DB) *MenuRepository {
	return &MenuRepository{db: db}
}

// Save inserts the item or overwrites the stored one with the same id.
func (r *MenuRepository) Save(ctx context.Context, item *domain.MenuItem) error {
	if item == nil || item.ID == "" {
		return domain.ErrInvalidMenuItem
	}
	row := menuItemRow{ID: item.ID, Name: item.Name, Category: item.Category, Price: item.Price}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error
	return persistence(domain.ErrPersistence, err)
}

func (r *MenuRepository) Get(ctx context.Context, id string) (*domain.MenuItem, error) {
	var row menuItemRow
	err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrMenuItemNotFound
	}
	if err != nil {
		return nil, persistence(domain.ErrPersistence, err)
	}
	return &domain.MenuItem{ID: row.ID, Name: row.Name, Category: row.Category, Price: row.Price}, nil
}

func (r *MenuRepository) GetMany(ctx context.Context, ids []string) ([]*domain.MenuItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []menuItemRow
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, persistence(domain.ErrPersistence, err)
	}
	out := make([]*domain.MenuItem, 0, len(rows))
	for _, row := range rows {
		out = append(out, &domain.MenuItem{ID: row.ID, Name: row.Name, Category: row.Category, Price: row.Price})
	}
	return out, nil
}
