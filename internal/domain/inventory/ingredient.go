package inventory

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound          = errors.New("inventory: ingredient not found")
	ErrInvalidIngredient = errors.New("inventory: ingredient id and name are required")
	ErrInvalidQuantity   = errors.New("inventory: quantity must be non-negative with at most 6 decimal places")
	ErrInvalidMode       = errors.New("inventory: unknown adjustment mode")
	ErrConflict          = errors.New("inventory: ingredient already exists")
	ErrPersistence       = errors.New("inventory: persistence failure")
)

// MaxScale is how many fractional digits the stores keep for stock levels
// and unit costs. Anything finer would be rounded on write.
const MaxScale = 6

// Representable reports whether d is stored without rounding.
func Representable(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(MaxScale))
}

// Ingredient is a stocked raw material. CurrentStock is only changed through
// the ledger's adjustment paths.
type Ingredient struct {
	ID           string
	Name         string
	Unit         string
	CurrentStock decimal.Decimal
	MinimumStock decimal.Decimal
	CostPerUnit  decimal.Decimal
	SupplierID   string
	UpdatedAt    time.Time
}

func NewIngredient(id, name, unit string, stock, minimum, cost decimal.Decimal, supplierID string) (*Ingredient, error) {
	ing := &Ingredient{
		ID:           strings.TrimSpace(id),
		Name:         strings.TrimSpace(name),
		Unit:         strings.TrimSpace(unit),
		CurrentStock: stock,
		MinimumStock: minimum,
		CostPerUnit:  cost,
		SupplierID:   strings.TrimSpace(supplierID),
		UpdatedAt:    time.Now().UTC(),
	}
	if err := ing.Validate(); err != nil {
		return nil, err
	}
	return ing, nil
}

// Validate checks the record at the boundary where it enters the system.
func (i *Ingredient) Validate() error {
	if i.ID == "" || i.Name == "" {
		return ErrInvalidIngredient
	}
	for _, q := range []decimal.Decimal{i.CurrentStock, i.MinimumStock, i.CostPerUnit} {
		if q.IsNegative() || !Representable(q) {
			return ErrInvalidQuantity
		}
	}
	return nil
}

// Status is shorthand for Evaluate on the ingredient's own levels.
func (i *Ingredient) Status() Status {
	return Evaluate(i.CurrentStock, i.MinimumStock)
}

func (i *Ingredient) Clone() *Ingredient {
	if i == nil {
		return nil
	}
	clone := *i
	return &clone
}

func (i *Ingredient) Touch() {
	i.UpdatedAt = time.Now().UTC()
}
