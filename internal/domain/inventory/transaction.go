package inventory

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionManualAdd    TransactionType = "manual_add"
	TransactionManualDeduct TransactionType = "manual_deduct"
	TransactionManualSet    TransactionType = "manual_set"
	TransactionConsumption  TransactionType = "consumption"
)

// Transaction is an append-only audit record of one stock change.
// Quantity is the magnitude moved; PreviousStock/NewStock hold the levels.
type Transaction struct {
	ID            string
	IngredientID  string
	Type          TransactionType
	Quantity      decimal.Decimal
	PreviousStock decimal.Decimal
	NewStock      decimal.Decimal
	OrderID       string
	Note          string
	CreatedAt     time.Time
}

func NewTransaction(id string, typ TransactionType, adj Adjustment, orderID, note string) Transaction {
	return Transaction{
		ID:            id,
		IngredientID:  adj.IngredientID,
		Type:          typ,
		Quantity:      adj.Delta().Abs(),
		PreviousStock: adj.Previous,
		NewStock:      adj.New,
		OrderID:       orderID,
		Note:          note,
		CreatedAt:     time.Now().UTC(),
	}
}

// NewConsumption records an automatic draw. Quantity is the demanded amount,
// which can exceed the actual drop when stock was clamped at zero.
func NewConsumption(id string, adj Adjustment, demanded decimal.Decimal, orderID string) Transaction {
	tx := NewTransaction(id, TransactionConsumption, adj, orderID, "")
	tx.Quantity = demanded
	return tx
}
