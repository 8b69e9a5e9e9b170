package gormstore

import (
	"time"

	dominv "github.com/Zhima-Mochi/kitchen-inventory/internal/domain/inventory"
	domorder "github.com/Zhima-Mochi/kitchen-inventory/internal/domain/order"
	domrecipe "github.com/Zhima-Mochi/kitchen-inventory/internal/domain/recipe"

	"github.com/shopspring/decimal"
)

type ingredientRow struct {
	ID           string          `gorm:"primaryKey;type:varchar(64)"`
	Name         string          `gorm:"type:text;not null;index"`
	Unit         string          `gorm:"type:varchar(32);not null;default:''"`
	CurrentStock decimal.Decimal `gorm:"type:numeric(20,6);not null;default:0"`
	MinimumStock decimal.Decimal `gorm:"type:numeric(20,6);not null;default:0"`
	CostPerUnit  decimal.Decimal `gorm:"type:numeric(20,6);not null;default:0"`
	SupplierID   string          `gorm:"type:varchar(64);not null;default:''"`
	UpdatedAt    time.Time       `gorm:"not null"`
}

func (ingredientRow) TableName() string { return "ingredients" }

func toIngredientRow(i *dominv.Ingredient) *ingredientRow {
	return &ingredientRow{
		ID:           i.ID,
		Name:         i.Name,
		Unit:         i.Unit,
		CurrentStock: i.CurrentStock,
		MinimumStock: i.MinimumStock,
		CostPerUnit:  i.CostPerUnit,
		SupplierID:   i.SupplierID,
		UpdatedAt:    i.UpdatedAt,
	}
}

func (r ingredientRow) domain() *dominv.Ingredient {
	return &dominv.Ingredient{
		ID:           r.ID,
		Name:         r.Name,
		Unit:         r.Unit,
		CurrentStock: r.CurrentStock,
		MinimumStock: r.MinimumStock,
		CostPerUnit:  r.CostPerUnit,
		SupplierID:   r.SupplierID,
		UpdatedAt:    r.UpdatedAt,
	}
}

type transactionRow struct {
	ID            string          `gorm:"primaryKey;type:varchar(64)"`
	IngredientID  string          `gorm:"type:varchar(64);not null;index"`
	Type          string          `gorm:"type:varchar(32);not null"`
	Quantity      decimal.Decimal `gorm:"type:numeric(20,6);not null"`
	PreviousStock decimal.Decimal `gorm:"type:numeric(20,6);not null"`
	NewStock      decimal.Decimal `gorm:"type:numeric(20,6);not null"`
	OrderID       string          `gorm:"type:varchar(64);not null;default:'';index"`
	Note          string          `gorm:"type:text;not null;default:''"`
	CreatedAt     time.Time       `gorm:"not null;index"`
}

func (transactionRow) TableName() string { return "inventory_transactions" }

func toTransactionRow(t dominv.Transaction) transactionRow {
	return transactionRow{
		ID:            t.ID,
		IngredientID:  t.IngredientID,
		Type:          string(t.Type),
		Quantity:      t.Quantity,
		PreviousStock: t.PreviousStock,
		NewStock:      t.NewStock,
		OrderID:       t.OrderID,
		Note:          t.Note,
		CreatedAt:     t.CreatedAt,
	}
}

func (r transactionRow) domain() dominv.Transaction {
	return dominv.Transaction{
		ID:            r.ID,
		IngredientID:  r.IngredientID,
		Type:          dominv.TransactionType(r.Type),
		Quantity:      r.Quantity,
		PreviousStock: r.PreviousStock,
		NewStock:      r.NewStock,
		OrderID:       r.OrderID,
		Note:          r.Note,
		CreatedAt:     r.CreatedAt,
	}
}

// recipeLineRow carries the uniqueness of (menu item, ingredient) in the schema.
type recipeLineRow struct {
	ID              string          `gorm:"primaryKey;type:varchar(64)"`
	MenuItemID      string          `gorm:"type:varchar(64);not null;uniqueIndex:idx_recipe_item_ingredient"`
	IngredientID    string          `gorm:"type:varchar(64);not null;uniqueIndex:idx_recipe_item_ingredient"`
	QuantityPerUnit decimal.Decimal `gorm:"type:numeric(20,6);not null"`
	CreatedAt       time.Time       `gorm:"not null"`
}

func (recipeLineRow) TableName() string { return "recipe_lines" }

func toRecipeLineRow(l *domrecipe.Line) *recipeLineRow {
	return &recipeLineRow{
		ID:              l.ID,
		MenuItemID:      l.MenuItemID,
		IngredientID:    l.IngredientID,
		QuantityPerUnit: l.QuantityPerUnit,
		CreatedAt:       l.CreatedAt,
	}
}

func (r recipeLineRow) domain() domrecipe.Line {
	return domrecipe.Line{
		ID:              r.ID,
		MenuItemID:      r.MenuItemID,
		IngredientID:    r.IngredientID,
		QuantityPerUnit: r.QuantityPerUnit,
		CreatedAt:       r.CreatedAt,
	}
}

type menuItemRow struct {
	ID       string          `gorm:"primaryKey;type:varchar(64)"`
	Name     string          `gorm:"type:text;not null"`
	Category string          `gorm:"type:varchar(64);not null;default:''"`
	Price    decimal.Decimal `gorm:"type:numeric(20,6);not null;default:0"`
}

func (menuItemRow) TableName() string { return "menu_items" }

type orderRow struct {
	ID            string         `gorm:"primaryKey;type:varchar(64)"`
	Status        string         `gorm:"type:varchar(32);not null"`
	FailureReason string         `gorm:"type:varchar(64);not null;default:''"`
	Lines         []orderLineRow `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time      `gorm:"not null"`
	UpdatedAt     time.Time      `gorm:"not null"`
}

func (orderRow) TableName() string { return "orders" }

type orderLineRow struct {
	ID         uint   `gorm:"primaryKey;autoIncrement"`
	OrderID    string `gorm:"type:varchar(64);not null;index"`
	Position   int    `gorm:"not null"`
	MenuItemID string `gorm:"type:varchar(64);not null"`
	Quantity   int    `gorm:"not null"`
}

func (orderLineRow) TableName() string { return "order_lines" }

func toOrderRow(o *domorder.Order) *orderRow {
	row := &orderRow{
		ID:            o.ID,
		Status:        string(o.Status),
		FailureReason: o.FailureReason,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
	for i, l := range o.Lines {
		row.Lines = append(row.Lines, orderLineRow{
			OrderID:    o.ID,
			Position:   i,
			MenuItemID: l.MenuItemID,
			Quantity:   l.Quantity,
		})
	}
	return row
}

func (r orderRow) domain() *domorder.Order {
	o := &domorder.Order{
		ID:            r.ID,
		Status:        domorder.Status(r.Status),
		FailureReason: r.FailureReason,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	for _, l := range r.Lines {
		o.Lines = append(o.Lines, domorder.Line{MenuItemID: l.MenuItemID, Quantity: l.Quantity})
	}
	return o
}
