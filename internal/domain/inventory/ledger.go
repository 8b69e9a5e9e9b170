package inventory

import (
	"sort"

	"github.com/shopspring/decimal"
)

type Mode string

const (
	ModeAdd    Mode = "add"
	ModeDeduct Mode = "deduct"
	ModeSet    Mode = "set"
)

func (m Mode) Valid() bool {
	switch m {
	case ModeAdd, ModeDeduct, ModeSet:
		return true
	}
	return false
}

// TransactionType maps a manual adjustment mode to its audit tag.
func (m Mode) TransactionType() TransactionType {
	switch m {
	case ModeAdd:
		return TransactionManualAdd
	case ModeDeduct:
		return TransactionManualDeduct
	default:
		return TransactionManualSet
	}
}

type Status string

const (
	StatusOK       Status = "ok"
	StatusLow      Status = "low"
	StatusCritical Status = "critical"
)

// Severity ranks statuses so callers can sort by urgency.
func (s Status) Severity() int {
	switch s {
	case StatusCritical:
		return 2
	case StatusLow:
		return 1
	default:
		return 0
	}
}

// Evaluate classifies a stock level against its minimum threshold.
func Evaluate(current, minimum decimal.Decimal) Status {
	switch {
	case current.LessThanOrEqual(decimal.Zero):
		return StatusCritical
	case current.LessThanOrEqual(minimum):
		return StatusLow
	default:
		return StatusOK
	}
}

// Apply computes the stock level that results from adjusting current by
// amount. add and deduct use |amount|; deduct clamps at zero. Amounts finer
// than MaxScale are refused rather than rounded.
func Apply(current, amount decimal.Decimal, mode Mode) (decimal.Decimal, error) {
	if mode.Valid() && !Representable(amount) {
		return current, ErrInvalidQuantity
	}
	switch mode {
	case ModeAdd:
		return current.Add(amount.Abs()), nil
	case ModeDeduct:
		return clampZero(current.Sub(amount.Abs())), nil
	case ModeSet:
		if amount.IsNegative() {
			return current, ErrInvalidQuantity
		}
		return amount, nil
	default:
		return current, ErrInvalidMode
	}
}

func clampZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Adjustment is the before/after pair produced by one stock write.
type Adjustment struct {
	IngredientID string
	Previous     decimal.Decimal
	New          decimal.Decimal
	Minimum      decimal.Decimal
}

// Delta is the signed change New - Previous.
func (a Adjustment) Delta() decimal.Decimal {
	return a.New.Sub(a.Previous)
}

func (a Adjustment) Status() Status {
	return Evaluate(a.New, a.Minimum)
}

// Worsened reports whether the write moved the ingredient to a worse status.
func (a Adjustment) Worsened() bool {
	return a.Status().Severity() > Evaluate(a.Previous, a.Minimum).Severity()
}

// Draw is one ingredient requirement: quantity per unit times units sold.
type Draw struct {
	IngredientID string
	PerUnit      decimal.Decimal
	Units        int
}

// Demand is the aggregated consumption per ingredient id.
type Demand map[string]decimal.Decimal

// Aggregate sums draws per ingredient. Entries that total zero are dropped.
func Aggregate(draws []Draw) Demand {
	out := make(Demand)
	for _, d := range draws {
		if d.Units <= 0 || d.IngredientID == "" {
			continue
		}
		qty := d.PerUnit.Mul(decimal.NewFromInt(int64(d.Units)))
		out[d.IngredientID] = out[d.IngredientID].Add(qty)
	}
	for id, qty := range out {
		if !qty.IsPositive() {
			delete(out, id)
		}
	}
	return out
}

// IDs returns the ingredient ids in a stable order.
func (d Demand) IDs() []string {
	ids := make([]string, 0, len(d))
	for id := range d {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
