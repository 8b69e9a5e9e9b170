package recipe

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	dominv "github.com/Zhima-Mochi/kitchen-inventory/internal/domain/inventory"
	domorder "github.com/Zhima-Mochi/kitchen-inventory/internal/domain/order"
	domrecipe "github.com/Zhima-Mochi/kitchen-inventory/internal/domain/recipe"
	"github.com/Zhima-Mochi/kitchen-inventory/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type seqIDs struct{ n atomic.Int64 }

func (s *seqIDs) NewID() string { return fmt.Sprintf("line-%d", s.n.Add(1)) }

type resolverFixture struct {
	*Resolver
	ingredients *memory.IngredientRepository
	menu        *memory.MenuRepository
}

func newResolverFixture(t *testing.T) *resolverFixture {
	t.Helper()
	ingredients := memory.NewIngredientRepository(nil)
	menu := memory.NewMenuRepository()
	return &resolverFixture{
		Resolver:    NewResolver(memory.NewRecipeRepository(), menu, ingredients, &seqIDs{}, nil),
		ingredients: ingredients,
		menu:        menu,
	}
}

func (f *resolverFixture) ingredient(t *testing.T, id, name, unit, cost string) {
	t.Helper()
	ing, err := dominv.NewIngredient(id, name, unit, dec("100"), dec("1"), dec(cost), "")
	require.NoError(t, err)
	require.NoError(t, f.ingredients.Create(context.Background(), ing))
}

func (f *resolverFixture) menuItem(t *testing.T, id, name, category string) {
	t.Helper()
	item, err := domrecipe.NewMenuItem(id, name, category, dec("12"))
	require.NoError(t, err)
	require.NoError(t, f.SaveMenuItem(context.Background(), item))
}

func (f *resolverFixture) line(t *testing.T, item, ingredient, qty string) *domrecipe.Line {
	t.Helper()
	l, err := f.AddLine(context.Background(), AddLineInput{MenuItemID: item, IngredientID: ingredient, QuantityPerUnit: dec(qty)})
	require.NoError(t, err)
	return l
}

func TestResolver_RecipeForKeepsCreationOrder(t *testing.T) {
	f := newResolverFixture(t)
	f.menuItem(t, "pizza", "Margherita", "mains")
	f.ingredient(t, "flour", "Flour", "kg", "1.2")
	f.ingredient(t, "cheese", "Cheese", "kg", "9")
	f.line(t, "pizza", "flour", "0.3")
	f.line(t, "pizza", "cheese", "0.15")

	lines, err := f.RecipeFor(context.Background(), "pizza")
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "flour", lines[0].IngredientID)
	assert.Equal(t, "cheese", lines[1].IngredientID)

	none, err := f.RecipeFor(context.Background(), "soda")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestResolver_AddLineDuplicateLeavesLineUnchanged(t *testing.T) {
	f := newResolverFixture(t)
	f.menuItem(t, "pizza", "Margherita", "mains")
	f.ingredient(t, "flour", "Flour", "kg", "1")
	f.line(t, "pizza", "flour", "0.3")

	_, err := f.AddLine(context.Background(), AddLineInput{MenuItemID: "pizza", IngredientID: "flour", QuantityPerUnit: dec("0.9")})
	assert.ErrorIs(t, err, domrecipe.ErrDuplicateIngredient)

	lines, err := f.RecipeFor(context.Background(), "pizza")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.True(t, dec("0.3").Equal(lines[0].QuantityPerUnit))
}

func TestResolver_AddLineValidates(t *testing.T) {
	f := newResolverFixture(t)
	f.menuItem(t, "pizza", "Margherita", "mains")
	f.ingredient(t, "flour", "Flour", "kg", "1")
	ctx := context.Background()

	_, err := f.AddLine(ctx, AddLineInput{MenuItemID: "pizza", IngredientID: "ghost", QuantityPerUnit: dec("1")})
	assert.ErrorIs(t, err, dominv.ErrNotFound)

	_, err = f.AddLine(ctx, AddLineInput{MenuItemID: "calzone", IngredientID: "flour", QuantityPerUnit: dec("1")})
	assert.ErrorIs(t, err, domrecipe.ErrMenuItemNotFound)

	_, err = f.AddLine(ctx, AddLineInput{MenuItemID: "pizza", IngredientID: "flour", QuantityPerUnit: dec("0")})
	assert.ErrorIs(t, err, domrecipe.ErrInvalidQuantity)
}

func TestResolver_CostOf(t *testing.T) {
	f := newResolverFixture(t)
	f.menuItem(t, "pizza", "Margherita", "mains")
	f.menuItem(t, "water", "Water", "drinks")
	f.ingredient(t, "flour", "Flour", "kg", "1.10")
	f.ingredient(t, "cheese", "Cheese", "kg", "9.00")
	f.line(t, "pizza", "flour", "0.3")
	f.line(t, "pizza", "cheese", "0.15")

	cost, err := f.CostOf(context.Background(), "pizza")
	require.NoError(t, err)
	assert.True(t, dec("1.68").Equal(cost), "got %s", cost)

	zero, err := f.CostOf(context.Background(), "water")
	require.NoError(t, err)
	assert.True(t, zero.IsZero())

	require.NoError(t, f.ingredients.Delete(context.Background(), "cheese"))
	_, err = f.CostOf(context.Background(), "pizza")
	assert.ErrorIs(t, err, dominv.ErrNotFound)
}

func TestResolver_SuggestedPrice(t *testing.T) {
	f := newResolverFixture(t)
	f.menuItem(t, "pizza", "Margherita", "mains")
	f.ingredient(t, "flour", "Flour", "kg", "1.111")
	f.line(t, "pizza", "flour", "1")

	c, err := f.SuggestedPrice(context.Background(), "pizza", dec("200"))
	require.NoError(t, err)
	assert.True(t, dec("1.111").Equal(c.Cost))
	assert.True(t, dec("3.33").Equal(c.SuggestedPrice), "got %s", c.SuggestedPrice)
	assert.True(t, dec("200").Equal(c.MarginPercent))
}

func TestResolver_MutationsVisibleImmediately(t *testing.T) {
	f := newResolverFixture(t)
	f.menuItem(t, "pizza", "Margherita", "mains")
	f.ingredient(t, "flour", "Flour", "kg", "2")
	f.ingredient(t, "basil", "Basil", "g", "0.01")
	flour := f.line(t, "pizza", "flour", "0.3")
	basil := f.line(t, "pizza", "basil", "5")
	ctx := context.Background()

	updated, err := f.UpdateLineQuantity(ctx, flour.ID, dec("0.4"))
	require.NoError(t, err)
	assert.True(t, dec("0.4").Equal(updated.QuantityPerUnit))

	cost, err := f.CostOf(ctx, "pizza")
	require.NoError(t, err)
	assert.True(t, dec("0.85").Equal(cost), "got %s", cost)

	require.NoError(t, f.RemoveLine(ctx, basil.ID))
	assert.ErrorIs(t, f.RemoveLine(ctx, basil.ID), domrecipe.ErrNotFound)

	_, err = f.UpdateLineQuantity(ctx, flour.ID, dec("-1"))
	assert.ErrorIs(t, err, domrecipe.ErrInvalidQuantity)

	n, err := f.ClearRecipe(ctx, "pizza")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	lines, err := f.RecipeFor(ctx, "pizza")
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestResolver_RecipesForBatches(t *testing.T) {
	f := newResolverFixture(t)
	f.menuItem(t, "pizza", "Margherita", "mains")
	f.menuItem(t, "bread", "Focaccia", "sides")
	f.ingredient(t, "flour", "Flour", "kg", "1")
	f.line(t, "pizza", "flour", "0.3")
	f.line(t, "bread", "flour", "0.5")

	byItem, err := f.RecipesFor(context.Background(), []string{"pizza", "bread", "soda"})
	require.NoError(t, err)
	assert.Len(t, byItem["pizza"], 1)
	assert.Len(t, byItem["bread"], 1)
	assert.Empty(t, byItem["soda"])
}

func TestResolver_PrepSheet(t *testing.T) {
	f := newResolverFixture(t)
	f.menuItem(t, "pizza", "Margherita", "mains")
	f.ingredient(t, "flour", "Flour", "kg", "1")
	f.ingredient(t, "basil", "Basil", "g", "0.01")
	f.line(t, "pizza", "flour", "0.3")
	f.line(t, "pizza", "basil", "5")

	sheet, err := f.PrepSheet(context.Background(), []domorder.Line{
		{MenuItemID: "pizza", Quantity: 3},
		{MenuItemID: "mystery", Quantity: 1},
	})
	require.NoError(t, err)
	require.Len(t, sheet, 2)

	pizza := sheet[0]
	assert.Equal(t, "Margherita", pizza.MenuItemName)
	assert.Equal(t, "mains", pizza.Category)
	assert.Equal(t, 3, pizza.Quantity)
	require.Len(t, pizza.Ingredients, 2)
	assert.Equal(t, "Flour", pizza.Ingredients[0].Name)
	assert.Equal(t, "kg", pizza.Ingredients[0].Unit)
	assert.True(t, dec("0.9").Equal(pizza.Ingredients[0].Quantity))
	assert.True(t, dec("15").Equal(pizza.Ingredients[1].Quantity))

	assert.Equal(t, "mystery", sheet[1].MenuItemName)
	assert.Empty(t, sheet[1].Ingredients)
}

func TestResolver_SaveMenuItemRequiresName(t *testing.T) {
	f := newResolverFixture(t)
	err := f.SaveMenuItem(context.Background(), &domrecipe.MenuItem{ID: "pizza"})
	assert.ErrorIs(t, err, domrecipe.ErrInvalidMenuItem)
}
