package memory

import (
	"context"
	"sync"

	domain "github.com/Zhima-Mochi/kitchen-inventory/internal/domain/inventory"
)

// TransactionRepository is an append-only log.
type TransactionRepository struct {
	mu  sync.RWMutex
	log []domain.Transaction
}

func NewTransactionRepository() *TransactionRepository {
	return &TransactionRepository{}
}

func (r *TransactionRepository) Append(ctx context.Context, txs ...domain.Transaction) error {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	r.log = append(r.log, txs...)
	return nil
}

// ListByIngredient returns newest first.
func (r *TransactionRepository) ListByIngredient(ctx context.Context, ingredientID string) ([]domain.Transaction, error) {
	return r.filter(ctx, func(tx domain.Transaction) bool { return tx.IngredientID == ingredientID }), nil
}

func (r *TransactionRepository) ListByOrder(ctx context.Context, orderID string) ([]domain.Transaction, error) {
	if orderID == "" {
		return nil, nil
	}
	return r.filter(ctx, func(tx domain.Transaction) bool { return tx.OrderID == orderID }), nil
}

func (r *TransactionRepository) filter(ctx context.Context, keep func(domain.Transaction) bool) []domain.Transaction {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.Transaction
	for i := len(r.log) - 1; i >= 0; i-- {
		if keep(r.log[i]) {
			out = append(out, r.log[i])
		}
	}
	return out
}
