package inventory

import (
	"context"
	"testing"
	"time"

	dominv "github.com/Zhima-Mochi/kitchen-inventory/internal/domain/inventory"
	domorder "github.com/Zhima-Mochi/kitchen-inventory/internal/domain/order"
	infraobs "github.com/Zhima-Mochi/kitchen-inventory/internal/infrastructure/observability"
	"github.com/Zhima-Mochi/kitchen-inventory/internal/infrastructure/observability/prometrics"
	"github.com/Zhima-Mochi/kitchen-inventory/internal/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedSleeps struct{ waits []time.Duration }

func (r *recordedSleeps) sleep(_ context.Context, d time.Duration) error {
	r.waits = append(r.waits, d)
	return nil
}

func newTestWorker(t *testing.T, f *fixture, reg *prometheus.Registry) (*Worker, *recordedSleeps) {
	t.Helper()
	tel := infraobs.New(infraobs.WithInstruments(prometrics.Standard(prometrics.New("", "", reg))))
	uc := NewConsumeForOrderUseCase(f.resolver, f.ingredients, f.ids, f.publisher, tel)
	w := NewWorker(uc, f.transactions, nil, f.publisher, DefaultRetryPolicy(), tel)
	rec := &recordedSleeps{}
	w.sleep = rec.sleep
	return w, rec
}

func pizzaOrder(id string, qty int) domorder.OrderPlacedEvent {
	return domorder.OrderPlacedEvent{
		OrderID:    id,
		Lines:      []domorder.Line{{MenuItemID: "pizza", Quantity: qty}},
		OccurredAt: time.Now().UTC(),
	}
}

func TestRetryPolicy_DelayDoubles(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 4, Backoff: 50 * time.Millisecond}
	assert.Equal(t, 50*time.Millisecond, p.delay(1))
	assert.Equal(t, 100*time.Millisecond, p.delay(2))
	assert.Equal(t, 200*time.Millisecond, p.delay(3))

	assert.Equal(t, 1, RetryPolicy{}.normalized().MaxAttempts)
}

func TestWorker_RetriesTransientFailure(t *testing.T) {
	f := newFixture(t)
	f.ingredient(t, "flour", "10", "2")
	f.recipe(t, "pizza", "flour", "0.3")
	f.ingredients.consumeFailures.Store(1)

	w, rec := newTestWorker(t, f, prometheus.NewRegistry())
	require.NoError(t, w.handleOrderPlaced(context.Background(), pizzaOrder("order-1", 4)))

	assert.Equal(t, int32(2), f.ingredients.consumeCalls.Load())
	assert.Equal(t, []time.Duration{50 * time.Millisecond}, rec.waits)
	assert.True(t, dec("8.8").Equal(f.stock(t, "flour")))
	assert.Empty(t, f.publisher.named("inventory.consumption_failed"))
}

func TestWorker_GivesUpAfterMaxAttempts(t *testing.T) {
	f := newFixture(t)
	f.ingredient(t, "flour", "10", "2")
	f.recipe(t, "pizza", "flour", "0.3")
	f.ingredients.consumeFailures.Store(10)

	reg := prometheus.NewRegistry()
	w, rec := newTestWorker(t, f, reg)
	require.NoError(t, w.handleOrderPlaced(context.Background(), pizzaOrder("order-2", 1)), "failures stay inside the worker")

	assert.Equal(t, int32(3), f.ingredients.consumeCalls.Load())
	assert.Equal(t, []time.Duration{50 * time.Millisecond, 100 * time.Millisecond}, rec.waits)
	assert.True(t, dec("10").Equal(f.stock(t, "flour")))

	failed := f.publisher.named("inventory.consumption_failed")
	require.Len(t, failed, 1)
	evt := failed[0].(dominv.InventoryConsumptionFailedEvent)
	assert.Equal(t, "order-2", evt.OrderID)
	assert.Equal(t, dominv.FailureReasonPersistence, evt.Reason)
	assert.Equal(t, 3, evt.Attempts)

	n, err := testutil.GatherAndCount(reg, string(observability.MInventoryConsumptionFails))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestWorker_RetriesAfterTransactionLogFailure(t *testing.T) {
	f := newFixture(t)
	f.ingredient(t, "flour", "10", "2")
	f.recipe(t, "pizza", "flour", "0.3")
	f.transactions.appendFailures.Store(1)

	w, rec := newTestWorker(t, f, prometheus.NewRegistry())
	require.NoError(t, w.handleOrderPlaced(context.Background(), pizzaOrder("order-3", 1)))

	assert.Equal(t, int32(2), f.ingredients.consumeCalls.Load())
	assert.Equal(t, []time.Duration{50 * time.Millisecond}, rec.waits)
	assert.True(t, dec("9.7").Equal(f.stock(t, "flour")), "stock drawn exactly once")

	history, err := f.transactions.ListByOrder(context.Background(), "order-3")
	require.NoError(t, err)
	assert.Len(t, history, 1)
	assert.Empty(t, f.publisher.named("inventory.consumption_failed"))
}

func TestWorker_SkipsOrderAlreadyConsumed(t *testing.T) {
	f := newFixture(t)
	f.ingredient(t, "flour", "10", "2")
	f.recipe(t, "pizza", "flour", "0.3")

	w, _ := newTestWorker(t, f, prometheus.NewRegistry())
	require.NoError(t, w.handleOrderPlaced(context.Background(), pizzaOrder("order-4", 4)))
	require.NoError(t, w.handleOrderPlaced(context.Background(), pizzaOrder("order-4", 4)))

	assert.Equal(t, int32(1), f.ingredients.consumeCalls.Load())
	assert.True(t, dec("8.8").Equal(f.stock(t, "flour")))
}

func TestWorker_CanceledContextStopsRetrying(t *testing.T) {
	f := newFixture(t)
	f.ingredient(t, "flour", "10", "2")
	f.recipe(t, "pizza", "flour", "0.3")
	f.ingredients.consumeFailures.Store(10)

	w, _ := newTestWorker(t, f, prometheus.NewRegistry())
	w.sleep = sleepContext

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, w.handleOrderPlaced(ctx, pizzaOrder("order-5", 1)))

	failed := f.publisher.named("inventory.consumption_failed")
	require.Len(t, failed, 1)
	assert.Equal(t, dominv.FailureReasonCanceled, failed[0].(dominv.InventoryConsumptionFailedEvent).Reason)
}
