package recipe

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLine_Validation(t *testing.T) {
	_, err := NewLine("l1", "", "flour", decimal.NewFromInt(1))
	assert.ErrorIs(t, err, ErrInvalidLine)

	_, err = NewLine("l1", "pizza", "flour", decimal.Zero)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = NewLine("l1", "pizza", "saffron", decimal.RequireFromString("0.0000005"))
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = NewLine("l1", "pizza", "saffron", decimal.RequireFromString("0.00125"))
	require.NoError(t, err)

	l, err := NewLine("l1", " pizza ", "flour", decimal.RequireFromString("0.3"))
	require.NoError(t, err)
	assert.Equal(t, "pizza", l.MenuItemID)
}

func TestLine_Scaled(t *testing.T) {
	l := Line{QuantityPerUnit: decimal.RequireFromString("0.3")}
	assert.True(t, decimal.RequireFromString("1.2").Equal(l.Scaled(4)))
}

func TestNewMenuItem_Validation(t *testing.T) {
	_, err := NewMenuItem("", "Pizza", "mains", decimal.Zero)
	assert.ErrorIs(t, err, ErrInvalidMenuItem)

	_, err = NewMenuItem("pizza", "Pizza", "mains", decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}
