package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIngredient_Valid(t *testing.T) {
	ing, err := NewIngredient(" flour ", "Flour", "kg", d("10"), d("2"), d("1.5"), "")
	require.NoError(t, err)
	assert.Equal(t, "flour", ing.ID)
	assert.Equal(t, StatusOK, ing.Status())
}

func TestNewIngredient_Rejects(t *testing.T) {
	_, err := NewIngredient("", "Flour", "kg", d("1"), d("0"), d("0"), "")
	assert.ErrorIs(t, err, ErrInvalidIngredient)

	_, err = NewIngredient("flour", "Flour", "kg", d("-1"), d("0"), d("0"), "")
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = NewIngredient("flour", "Flour", "kg", d("1"), d("0"), d("-0.5"), "")
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestClone_IsIndependent(t *testing.T) {
	ing, _ := NewIngredient("flour", "Flour", "kg", d("10"), d("2"), d("1"), "")
	c := ing.Clone()
	c.Name = "Other"
	assert.Equal(t, "Flour", ing.Name)
}

func TestNewIngredient_ScaleLimit(t *testing.T) {
	ing, err := NewIngredient("saffron", "Saffron", "g", d("0.0025"), d("0.000125"), d("0.00125"), "")
	require.NoError(t, err)
	assert.True(t, d("0.0025").Equal(ing.CurrentStock))

	_, err = NewIngredient("saffron", "Saffron", "g", d("0.0000001"), d("0"), d("0"), "")
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = NewIngredient("saffron", "Saffron", "g", d("1"), d("0"), d("0.1234567"), "")
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestRepresentable(t *testing.T) {
	assert.True(t, Representable(d("12.345678")))
	assert.True(t, Representable(d("12.3456780")), "trailing zeros do not count")
	assert.False(t, Representable(d("12.3456789")))
}
