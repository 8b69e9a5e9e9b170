package inventory

import (
	"context"

	"github.com/shopspring/decimal"
)

// Journal turns one stock change into its log entry. Stores call it inside
// the atomic section that writes the level, and persist the entry with the
// stock or not at all. A nil Journal writes no entries.
type Journal func(adj Adjustment) Transaction

// Repository owns ingredient rows. Adjust and Consume evaluate the new level
// where the data lives so concurrent writers cannot lose an update.
type Repository interface {
	Create(ctx context.Context, ing *Ingredient) error
	Get(ctx context.Context, id string) (*Ingredient, error)
	GetMany(ctx context.Context, ids []string) ([]*Ingredient, error)
	List(ctx context.Context) ([]*Ingredient, error)
	// UpdateDetails writes every field except CurrentStock.
	UpdateDetails(ctx context.Context, ing *Ingredient) error
	Delete(ctx context.Context, id string) error

	Adjust(ctx context.Context, id string, amount decimal.Decimal, mode Mode, journal Journal) (Adjustment, error)
	// Consume deducts each demanded quantity, clamping at zero. Ids that do
	// not exist are returned in missing and left untouched.
	Consume(ctx context.Context, demand Demand, journal Journal) (applied []Adjustment, missing []string, err error)
}

type TransactionRepository interface {
	Append(ctx context.Context, txs ...Transaction) error
	ListByIngredient(ctx context.Context, ingredientID string) ([]Transaction, error)
	ListByOrder(ctx context.Context, orderID string) ([]Transaction, error)
}
