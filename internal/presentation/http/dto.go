package httppresentation

import (
	"time"

	appinventory "github.com/Zhima-Mochi/kitchen-inventory/internal/application/inventory"
	apprecipe "github.com/Zhima-Mochi/kitchen-inventory/internal/application/recipe"
	dominv "github.com/Zhima-Mochi/kitchen-inventory/internal/domain/inventory"
	domorder "github.com/Zhima-Mochi/kitchen-inventory/internal/domain/order"
	domrecipe "github.com/Zhima-Mochi/kitchen-inventory/internal/domain/recipe"

	"github.com/shopspring/decimal"
)

type errorResponse struct {
	Error string `json:"error"`
}

type ingredientRequest struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Unit         string          `json:"unit"`
	CurrentStock decimal.Decimal `json:"current_stock"`
	MinimumStock decimal.Decimal `json:"minimum_stock"`
	CostPerUnit  decimal.Decimal `json:"cost_per_unit"`
	SupplierID   string          `json:"supplier_id"`
}

type ingredientResponse struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Unit         string          `json:"unit"`
	CurrentStock decimal.Decimal `json:"current_stock"`
	MinimumStock decimal.Decimal `json:"minimum_stock"`
	CostPerUnit  decimal.Decimal `json:"cost_per_unit"`
	SupplierID   string          `json:"supplier_id,omitempty"`
	Status       dominv.Status   `json:"status"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func newIngredientResponse(i *dominv.Ingredient) ingredientResponse {
	return ingredientResponse{
		ID:           i.ID,
		Name:         i.Name,
		Unit:         i.Unit,
		CurrentStock: i.CurrentStock,
		MinimumStock: i.MinimumStock,
		CostPerUnit:  i.CostPerUnit,
		SupplierID:   i.SupplierID,
		Status:       i.Status(),
		UpdatedAt:    i.UpdatedAt,
	}
}

func newStockResponse(lines []appinventory.StockLine) []ingredientResponse {
	out := make([]ingredientResponse, 0, len(lines))
	for _, l := range lines {
		out = append(out, newIngredientResponse(l.Ingredient))
	}
	return out
}

type adjustRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Mode   dominv.Mode     `json:"mode"`
	Note   string          `json:"note"`
}

type adjustmentResponse struct {
	IngredientID string          `json:"ingredient_id"`
	Previous     decimal.Decimal `json:"previous"`
	New          decimal.Decimal `json:"new"`
	Status       dominv.Status   `json:"status"`
}

type transactionResponse struct {
	ID            string                 `json:"id"`
	IngredientID  string                 `json:"ingredient_id"`
	Type          dominv.TransactionType `json:"type"`
	Quantity      decimal.Decimal        `json:"quantity"`
	PreviousStock decimal.Decimal        `json:"previous_stock"`
	NewStock      decimal.Decimal        `json:"new_stock"`
	OrderID       string                 `json:"order_id,omitempty"`
	Note          string                 `json:"note,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
}

func newTransactionsResponse(txs []dominv.Transaction) []transactionResponse {
	out := make([]transactionResponse, 0, len(txs))
	for _, t := range txs {
		out = append(out, transactionResponse{
			ID:            t.ID,
			IngredientID:  t.IngredientID,
			Type:          t.Type,
			Quantity:      t.Quantity,
			PreviousStock: t.PreviousStock,
			NewStock:      t.NewStock,
			OrderID:       t.OrderID,
			Note:          t.Note,
			CreatedAt:     t.CreatedAt,
		})
	}
	return out
}

type menuItemRequest struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
}

type recipeLineRequest struct {
	IngredientID    string          `json:"ingredient_id"`
	QuantityPerUnit decimal.Decimal `json:"quantity_per_unit"`
}

type recipeLineResponse struct {
	ID              string          `json:"id"`
	MenuItemID      string          `json:"menu_item_id"`
	IngredientID    string          `json:"ingredient_id"`
	QuantityPerUnit decimal.Decimal `json:"quantity_per_unit"`
	CreatedAt       time.Time       `json:"created_at"`
}

func newRecipeLineResponse(l domrecipe.Line) recipeLineResponse {
	return recipeLineResponse{
		ID:              l.ID,
		MenuItemID:      l.MenuItemID,
		IngredientID:    l.IngredientID,
		QuantityPerUnit: l.QuantityPerUnit,
		CreatedAt:       l.CreatedAt,
	}
}

type costingResponse struct {
	MenuItemID     string          `json:"menu_item_id"`
	Cost           decimal.Decimal `json:"cost"`
	MarginPercent  decimal.Decimal `json:"margin_percent"`
	SuggestedPrice decimal.Decimal `json:"suggested_price"`
}

func newCostingResponse(c apprecipe.Costing) costingResponse {
	return costingResponse{
		MenuItemID:     c.MenuItemID,
		Cost:           c.Cost,
		MarginPercent:  c.MarginPercent,
		SuggestedPrice: c.SuggestedPrice,
	}
}

type orderLineDTO struct {
	MenuItemID string `json:"menu_item_id"`
	Quantity   int    `json:"quantity"`
}

type orderRequest struct {
	Lines []orderLineDTO `json:"lines"`
}

func (r orderRequest) domainLines() []domorder.Line {
	out := make([]domorder.Line, 0, len(r.Lines))
	for _, l := range r.Lines {
		out = append(out, domorder.Line{MenuItemID: l.MenuItemID, Quantity: l.Quantity})
	}
	return out
}

type orderResponse struct {
	OrderID       string          `json:"order_id"`
	Status        domorder.Status `json:"status"`
	FailureReason string          `json:"failure_reason,omitempty"`
	Lines         []orderLineDTO  `json:"lines,omitempty"`
}

type prepIngredientResponse struct {
	Name     string          `json:"name"`
	Unit     string          `json:"unit"`
	Quantity decimal.Decimal `json:"quantity"`
}

type prepItemResponse struct {
	MenuItemID   string                   `json:"menu_item_id"`
	MenuItemName string                   `json:"menu_item_name"`
	Category     string                   `json:"category,omitempty"`
	Quantity     int                      `json:"quantity"`
	Ingredients  []prepIngredientResponse `json:"ingredients"`
}

func newPrepSheetResponse(items []apprecipe.PrepItem) []prepItemResponse {
	out := make([]prepItemResponse, 0, len(items))
	for _, it := range items {
		ings := make([]prepIngredientResponse, 0, len(it.Ingredients))
		for _, pi := range it.Ingredients {
			ings = append(ings, prepIngredientResponse{Name: pi.Name, Unit: pi.Unit, Quantity: pi.Quantity})
		}
		out = append(out, prepItemResponse{
			MenuItemID:   it.MenuItemID,
			MenuItemName: it.MenuItemName,
			Category:     it.Category,
			Quantity:     it.Quantity,
			Ingredients:  ings,
		})
	}
	return out
}
