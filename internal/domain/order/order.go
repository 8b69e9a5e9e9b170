package order

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound               = errors.New("order: not found")
	ErrConflict               = errors.New("order: already exists")
	ErrEmptyOrder             = errors.New("order: at least one line is required")
	ErrInvalidQuantity        = errors.New("order: quantity must be greater than zero")
	ErrInvalidLine            = errors.New("order: menu item id is required")
	ErrInvalidStateTransition = errors.New("order: invalid state transition")
)

type Status string

const (
	StatusPlaced            Status = "placed"
	StatusInventoryConsumed Status = "inventory_consumed"
	StatusInventoryFailed   Status = "inventory_failed"
)

// Line is one menu item and the units sold.
type Line struct {
	MenuItemID string
	Quantity   int
}

type Order struct {
	ID            string
	Lines         []Line
	Status        Status
	FailureReason string
	CreatedAt     time.Time
	UpdatedAt     time.Time

	state OrderState
}

func New(id string, lines []Line) (*Order, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyOrder
	}
	cleaned := make([]Line, 0, len(lines))
	for _, l := range lines {
		l.MenuItemID = strings.TrimSpace(l.MenuItemID)
		if l.MenuItemID == "" {
			return nil, ErrInvalidLine
		}
		if l.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		cleaned = append(cleaned, l)
	}

	now := time.Now().UTC()
	return &Order{
		ID:        id,
		Lines:     cleaned,
		Status:    StatusPlaced,
		CreatedAt: now,
		UpdatedAt: now,
		state:     placedState{},
	}, nil
}

// MenuItemIDs returns the distinct menu items in line order.
func (o *Order) MenuItemIDs() []string {
	seen := make(map[string]struct{}, len(o.Lines))
	ids := make([]string, 0, len(o.Lines))
	for _, l := range o.Lines {
		if _, ok := seen[l.MenuItemID]; ok {
			continue
		}
		seen[l.MenuItemID] = struct{}{}
		ids = append(ids, l.MenuItemID)
	}
	return ids
}

func (o *Order) InventoryConsumed() error {
	next, err := o.currentState().OnInventoryConsumed(o)
	if err != nil {
		return err
	}
	o.setState(next)
	return nil
}

func (o *Order) InventoryConsumptionFailed(reason string) error {
	next, err := o.currentState().OnInventoryFailed(o, reason)
	if err != nil {
		return err
	}
	o.setState(next)
	return nil
}

func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	clone.Lines = append([]Line(nil), o.Lines...)
	return &clone
}

func (o *Order) currentState() OrderState {
	if o.state == nil {
		o.state = stateFor(o.Status)
	}
	return o.state
}

func (o *Order) setState(s OrderState) {
	o.state = s
	o.Status = s.Status()
	o.touch()
}

func (o *Order) touch() {
	o.UpdatedAt = time.Now().UTC()
}
