package recipe

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound            = errors.New("recipe: line not found")
	ErrMenuItemNotFound    = errors.New("recipe: menu item not found")
	ErrDuplicateIngredient = errors.New("recipe: ingredient already in recipe")
	ErrInvalidQuantity     = errors.New("recipe: quantity must be positive with at most 6 decimal places")
	ErrInvalidLine         = errors.New("recipe: menu item and ingredient are required")
	ErrInvalidMenuItem     = errors.New("recipe: menu item id and name are required")
	ErrPersistence         = errors.New("recipe: persistence failure")
)

// MaxScale matches the fractional digits the stores keep for quantities and
// prices.
const MaxScale = 6

// ValidQuantity checks a per-unit quantity before it is stored.
func ValidQuantity(qty decimal.Decimal) error {
	if !qty.IsPositive() || !qty.Equal(qty.Truncate(MaxScale)) {
		return ErrInvalidQuantity
	}
	return nil
}

// Line is one bill-of-materials entry: QuantityPerUnit of an ingredient per
// single unit of the menu item sold.
type Line struct {
	ID              string
	MenuItemID      string
	IngredientID    string
	QuantityPerUnit decimal.Decimal
	CreatedAt       time.Time
}

func NewLine(id, menuItemID, ingredientID string, qty decimal.Decimal) (*Line, error) {
	l := &Line{
		ID:              id,
		MenuItemID:      strings.TrimSpace(menuItemID),
		IngredientID:    strings.TrimSpace(ingredientID),
		QuantityPerUnit: qty,
		CreatedAt:       time.Now().UTC(),
	}
	if l.MenuItemID == "" || l.IngredientID == "" {
		return nil, ErrInvalidLine
	}
	if err := ValidQuantity(qty); err != nil {
		return nil, err
	}
	return l, nil
}

// Scaled is the quantity needed for units sold.
func (l Line) Scaled(units int) decimal.Decimal {
	return l.QuantityPerUnit.Mul(decimal.NewFromInt(int64(units)))
}

// MenuItem is the sellable item a recipe belongs to.
type MenuItem struct {
	ID       string
	Name     string
	Category string
	Price    decimal.Decimal
}

func NewMenuItem(id, name, category string, price decimal.Decimal) (*MenuItem, error) {
	m := &MenuItem{
		ID:       strings.TrimSpace(id),
		Name:     strings.TrimSpace(name),
		Category: strings.TrimSpace(category),
		Price:    price,
	}
	if m.ID == "" || m.Name == "" {
		return nil, ErrInvalidMenuItem
	}
	if price.IsNegative() || !price.Equal(price.Truncate(MaxScale)) {
		return nil, ErrInvalidQuantity
	}
	return m, nil
}
