package inventory

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryConsumedEvent is emitted after an order's ingredient draw was written.
type InventoryConsumedEvent struct {
	OrderID     string
	Adjustments []Adjustment
	Missing     []string
	OccurredAt  time.Time
}

func (InventoryConsumedEvent) EventName() string { return "inventory.consumed" }

func NewInventoryConsumedEvent(orderID string, adjustments []Adjustment, missing []string) InventoryConsumedEvent {
	return InventoryConsumedEvent{
		OrderID:     orderID,
		Adjustments: adjustments,
		Missing:     missing,
		OccurredAt:  time.Now().UTC(),
	}
}

// StockLowEvent is emitted when a write moves an ingredient into low or critical.
type StockLowEvent struct {
	IngredientID string
	Stock        decimal.Decimal
	Minimum      decimal.Decimal
	Status       Status
	OrderID      string
	OccurredAt   time.Time
}

func (StockLowEvent) EventName() string { return "inventory.stock_low" }

func NewStockLowEvent(adj Adjustment, orderID string) StockLowEvent {
	return StockLowEvent{
		IngredientID: adj.IngredientID,
		Stock:        adj.New,
		Minimum:      adj.Minimum,
		Status:       adj.Status(),
		OrderID:      orderID,
		OccurredAt:   time.Now().UTC(),
	}
}

// InventoryConsumptionFailedEvent is emitted when an order's draw gave up
// after its retries. The order itself stays placed.
type InventoryConsumptionFailedEvent struct {
	OrderID    string
	Reason     string
	Attempts   int
	OccurredAt time.Time
}

func (InventoryConsumptionFailedEvent) EventName() string { return "inventory.consumption_failed" }

func NewInventoryConsumptionFailedEvent(orderID, reason string, attempts int) InventoryConsumptionFailedEvent {
	return InventoryConsumptionFailedEvent{
		OrderID:    orderID,
		Reason:     reason,
		Attempts:   attempts,
		OccurredAt: time.Now().UTC(),
	}
}

const (
	FailureReasonNotFound    = "not_found"
	FailureReasonPersistence = "persist_error"
	FailureReasonRecipe      = "recipe_lookup_failed"
	FailureReasonCanceled    = "canceled"
)
