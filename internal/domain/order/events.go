package order

import "time"

// OrderPlacedEvent is emitted once an order and its lines are durably recorded.
// Inventory consumes it out of band.
type OrderPlacedEvent struct {
	OrderID    string
	Lines      []Line
	OccurredAt time.Time
}

func (OrderPlacedEvent) EventName() string { return "order.placed" }

func NewOrderPlacedEvent(o *Order) OrderPlacedEvent {
	return OrderPlacedEvent{
		OrderID:    o.ID,
		Lines:      append([]Line(nil), o.Lines...),
		OccurredAt: time.Now().UTC(),
	}
}
