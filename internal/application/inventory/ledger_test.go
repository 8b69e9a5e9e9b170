package inventory

import (
	"context"
	"testing"

	dominv "github.com/Zhima-Mochi/kitchen-inventory/internal/domain/inventory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger_Adjust(t *testing.T) {
	cases := []struct {
		name   string
		stock  string
		amount string
		mode   dominv.Mode
		want   string
		txType dominv.TransactionType
	}{
		{"add", "10", "2.5", dominv.ModeAdd, "12.5", dominv.TransactionManualAdd},
		{"add uses magnitude", "10", "-2", dominv.ModeAdd, "12", dominv.TransactionManualAdd},
		{"deduct", "10", "4", dominv.ModeDeduct, "6", dominv.TransactionManualDeduct},
		{"deduct clamps", "3", "5", dominv.ModeDeduct, "0", dominv.TransactionManualDeduct},
		{"set", "10", "7", dominv.ModeSet, "7", dominv.TransactionManualSet},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			f.ingredient(t, "flour", tc.stock, "2")

			adj, err := f.ledger().Adjust(context.Background(), AdjustInput{
				IngredientID: "flour", Amount: dec(tc.amount), Mode: tc.mode, Note: " delivery ",
			})
			require.NoError(t, err)
			assert.True(t, dec(tc.stock).Equal(adj.Previous))
			assert.True(t, dec(tc.want).Equal(adj.New), "got %s", adj.New)
			assert.True(t, dec(tc.want).Equal(f.stock(t, "flour")))

			txs, err := f.ledger().History(context.Background(), "flour")
			require.NoError(t, err)
			require.Len(t, txs, 1)
			assert.Equal(t, tc.txType, txs[0].Type)
			assert.Equal(t, "delivery", txs[0].Note)
			assert.Empty(t, txs[0].OrderID)
		})
	}
}

func TestLedger_AdjustRejects(t *testing.T) {
	f := newFixture(t)
	f.ingredient(t, "flour", "10", "2")
	l := f.ledger()
	ctx := context.Background()

	_, err := l.Adjust(ctx, AdjustInput{IngredientID: "flour", Amount: dec("-1"), Mode: dominv.ModeSet})
	assert.ErrorIs(t, err, dominv.ErrInvalidQuantity)

	_, err = l.Adjust(ctx, AdjustInput{IngredientID: "flour", Amount: dec("1"), Mode: "multiply"})
	assert.ErrorIs(t, err, dominv.ErrInvalidMode)

	_, err = l.Adjust(ctx, AdjustInput{IngredientID: "ghost", Amount: dec("1"), Mode: dominv.ModeAdd})
	assert.ErrorIs(t, err, dominv.ErrNotFound)

	assert.True(t, dec("10").Equal(f.stock(t, "flour")))
	txs, _ := l.History(ctx, "flour")
	assert.Empty(t, txs)
}

func TestLedger_AdjustStoreFailureIsReturned(t *testing.T) {
	f := newFixture(t)
	f.ingredient(t, "flour", "10", "2")
	f.ingredients.adjustErr = errStoreDown

	_, err := f.ledger().Adjust(context.Background(), AdjustInput{IngredientID: "flour", Amount: dec("1"), Mode: dominv.ModeAdd})
	require.Error(t, err)
	assert.ErrorIs(t, err, dominv.ErrPersistence)
	assert.ErrorIs(t, err, errStoreDown)
}

func TestLedger_AdjustLogFailureLeavesStock(t *testing.T) {
	f := newFixture(t)
	f.ingredient(t, "flour", "10", "2")
	f.transactions.appendFailures.Store(1)
	l := f.ledger()
	ctx := context.Background()

	_, err := l.Adjust(ctx, AdjustInput{IngredientID: "flour", Amount: dec("4"), Mode: dominv.ModeDeduct})
	require.Error(t, err)
	assert.ErrorIs(t, err, dominv.ErrPersistence)
	assert.True(t, dec("10").Equal(f.stock(t, "flour")), "stock must not move without its log entry")

	txs, err := l.History(ctx, "flour")
	require.NoError(t, err)
	assert.Empty(t, txs)
	assert.Empty(t, f.publisher.events)

	adj, err := l.Adjust(ctx, AdjustInput{IngredientID: "flour", Amount: dec("4"), Mode: dominv.ModeDeduct})
	require.NoError(t, err)
	assert.True(t, dec("6").Equal(adj.New))
	txs, err = l.History(ctx, "flour")
	require.NoError(t, err)
	assert.Len(t, txs, 1)
}

func TestLedger_AdjustPublishesStockLow(t *testing.T) {
	f := newFixture(t)
	f.ingredient(t, "flour", "10", "2")

	_, err := f.ledger().Adjust(context.Background(), AdjustInput{IngredientID: "flour", Amount: dec("2"), Mode: dominv.ModeSet})
	require.NoError(t, err)

	low := f.publisher.named("inventory.stock_low")
	require.Len(t, low, 1)
	assert.Equal(t, dominv.StatusLow, low[0].(dominv.StockLowEvent).Status)
}

func TestLedger_AdjustSurvivesPublishFailure(t *testing.T) {
	f := newFixture(t)
	f.ingredient(t, "flour", "10", "2")
	f.publisher.err = errStoreDown

	adj, err := f.ledger().Adjust(context.Background(), AdjustInput{IngredientID: "flour", Amount: dec("0"), Mode: dominv.ModeSet})
	require.NoError(t, err)
	assert.Equal(t, dominv.StatusCritical, adj.Status())
}

func TestLedger_IngredientLifecycle(t *testing.T) {
	f := newFixture(t)
	l := f.ledger()
	ctx := context.Background()

	created, err := l.CreateIngredient(ctx, CreateIngredientInput{
		Name: "Mozzarella", Unit: "kg", CurrentStock: dec("4"), MinimumStock: dec("1"), CostPerUnit: dec("8.5"),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	_, err = l.CreateIngredient(ctx, CreateIngredientInput{Name: "Bad", CurrentStock: dec("-1")})
	assert.ErrorIs(t, err, dominv.ErrInvalidQuantity)

	updated, err := l.UpdateIngredient(ctx, UpdateIngredientInput{
		ID: created.ID, Name: "Buffalo mozzarella", Unit: "kg", MinimumStock: dec("2"), CostPerUnit: dec("12"), SupplierID: "sup-7",
	})
	require.NoError(t, err)
	assert.Equal(t, "Buffalo mozzarella", updated.Name)
	assert.True(t, dec("4").Equal(updated.CurrentStock))

	got, err := l.GetIngredient(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "sup-7", got.SupplierID)

	require.NoError(t, l.DeleteIngredient(ctx, created.ID))
	_, err = l.GetIngredient(ctx, created.ID)
	assert.ErrorIs(t, err, dominv.ErrNotFound)
	assert.ErrorIs(t, l.DeleteIngredient(ctx, created.ID), dominv.ErrNotFound)
}

func TestLedger_LowStockOrdersCriticalFirst(t *testing.T) {
	f := newFixture(t)
	f.ingredient(t, "yeast", "0", "0")
	f.ingredient(t, "basil", "1", "1")
	f.ingredient(t, "flour", "10", "2")
	f.ingredient(t, "anchovy", "0.5", "1")
	f.ingredient(t, "salt", "0", "5")

	report, err := f.ledger().StockReport(context.Background())
	require.NoError(t, err)
	require.Len(t, report, 5)
	assert.Equal(t, "anchovy", report[0].Ingredient.Name)

	low, err := f.ledger().LowStock(context.Background())
	require.NoError(t, err)

	var names []string
	var statuses []dominv.Status
	for _, line := range low {
		names = append(names, line.Ingredient.Name)
		statuses = append(statuses, line.Status)
	}
	assert.Equal(t, []string{"salt", "yeast", "anchovy", "basil"}, names)
	assert.Equal(t, []dominv.Status{dominv.StatusCritical, dominv.StatusCritical, dominv.StatusLow, dominv.StatusLow}, statuses)
}

func TestLedger_OrderTransactions(t *testing.T) {
	f := newFixture(t)
	f.ingredient(t, "flour", "10", "2")
	f.recipe(t, "pizza", "flour", "0.3")

	_, err := f.consumeUseCase().Execute(context.Background(), ConsumeCommand{OrderID: "order-9", Lines: pizzaOrder("order-9", 2).Lines})
	require.NoError(t, err)

	txs, err := f.ledger().OrderTransactions(context.Background(), "order-9")
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.True(t, dec("0.6").Equal(txs[0].Quantity))
}
