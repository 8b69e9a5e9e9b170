package order

// OrderState implements the state pattern for the inventory side of an order.
// Consumption never rolls an order back; it only records the outcome.
type OrderState interface {
	Status() Status
	OnInventoryConsumed(o *Order) (OrderState, error)
	OnInventoryFailed(o *Order, reason string) (OrderState, error)
}

func stateFor(s Status) OrderState {
	switch s {
	case StatusInventoryConsumed:
		return consumedState{}
	case StatusInventoryFailed:
		return failedState{}
	default:
		return placedState{}
	}
}

type placedState struct{}

func (placedState) Status() Status { return StatusPlaced }

func (placedState) OnInventoryConsumed(o *Order) (OrderState, error) {
	o.FailureReason = ""
	return consumedState{}, nil
}

func (placedState) OnInventoryFailed(o *Order, reason string) (OrderState, error) {
	o.FailureReason = reason
	return failedState{}, nil
}

type consumedState struct{}

func (consumedState) Status() Status { return StatusInventoryConsumed }

func (consumedState) OnInventoryConsumed(*Order) (OrderState, error) {
	return consumedState{}, nil
}

func (consumedState) OnInventoryFailed(*Order, string) (OrderState, error) {
	return nil, ErrInvalidStateTransition
}

type failedState struct{}

func (failedState) Status() Status { return StatusInventoryFailed }

// A later successful run, e.g. a manual replay, clears the failure.
func (failedState) OnInventoryConsumed(o *Order) (OrderState, error) {
	o.FailureReason = ""
	return consumedState{}, nil
}

func (failedState) OnInventoryFailed(o *Order, reason string) (OrderState, error) {
	o.FailureReason = reason
	return failedState{}, nil
}
