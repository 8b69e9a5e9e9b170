package gormstore

import (
	"context"

	domain "github.com/Zhima-Mochi/kitchen-inventory/internal/domain/inventory"

	"gorm.io/gorm"
)

// TransactionRepository is append-only: rows are inserted and never updated.
type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Append(ctx context.Context, txs ...domain.Transaction) error {
	return persistErr(insertTransactions(r.db.WithContext(ctx), txs))
}

func insertTransactions(db *gorm.DB, txs []domain.Transaction) error {
	if len(txs) == 0 {
		return nil
	}
	rows := make([]transactionRow, 0, len(txs))
	for _, t := range txs {
		rows = append(rows, toTransactionRow(t))
	}
	return db.Create(&rows).Error
}

func (r *TransactionRepository) ListByIngredient(ctx context.Context, ingredientID string) ([]domain.Transaction, error) {
	return r.list(ctx, "ingredient_id = ?", ingredientID)
}

func (r *TransactionRepository) ListByOrder(ctx context.Context, orderID string) ([]domain.Transaction, error) {
	if orderID == "" {
		return nil, nil
	}
	return r.list(ctx, "order_id = ?", orderID)
}

func (r *TransactionRepository) list(ctx context.Context, query string, arg any) ([]domain.Transaction, error) {
	var rows []transactionRow
	if err := r.db.WithContext(ctx).Where(query, arg).Order("created_at DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, persistErr(err)
	}
	out := make([]domain.Transaction, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.domain())
	}
	return out, nil
}
