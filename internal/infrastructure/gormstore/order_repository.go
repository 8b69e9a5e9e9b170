package gormstore

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/Zhima-Mochi/kitchen-inventory/internal/domain/order"

	"gorm.io/gorm"
)

var errOrderStore = errors.New("order: store failure")

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Insert writes the order and its lines in one statement batch.
func (r *OrderRepository) Insert(ctx context.Context, order *domain.Order) error {
	if order == nil || order.ID == "" {
		return fmt.Errorf("order repository: id is required")
	}
	err := r.db.WithContext(ctx).Create(toOrderRow(order)).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrConflict
	}
	return persistence(errOrderStore, err)
}

func (r *OrderRepository) Get(ctx context.Context, id string) (*domain.Order, error) {
	var row orderRow
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, persistence(errOrderStore, err)
	}
	return row.domain(), nil
}

// Update writes the inventory outcome. Lines are immutable once placed.
func (r *OrderRepository) Update(ctx context.Context, order *domain.Order) error {
	if order == nil || order.ID == "" {
		return fmt.Errorf("order repository: id is required")
	}
	res := r.db.WithContext(ctx).Model(&orderRow{}).Where("id = ?", order.ID).Updates(map[string]any{
		"status":         string(order.Status),
		"failure_reason": order.FailureReason,
		"updated_at":     order.UpdatedAt,
	})
	if res.Error != nil {
		return persistence(errOrderStore, res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
