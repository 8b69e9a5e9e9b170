package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/Zhima-Mochi/kitchen-inventory/internal/application"
	dominv "github.com/Zhima-Mochi/kitchen-inventory/internal/domain/inventory"
	domorder "github.com/Zhima-Mochi/kitchen-inventory/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/kitchen-inventory/internal/domain/outbox"
	"github.com/Zhima-Mochi/kitchen-inventory/internal/observability"
	"github.com/Zhima-Mochi/kitchen-inventory/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	workerService       = "inventory-worker"
	useCaseWorkerPlaced = "inventory.worker.order_placed"
	defaultMaxAttempts  = 3
	defaultBackoff      = 50 * time.Millisecond
)

// RetryPolicy bounds how often a failed draw is attempted again. The delay
// doubles after every attempt.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: defaultMaxAttempts, Backoff: defaultBackoff}
}

func (p RetryPolicy) normalized() RetryPolicy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.Backoff < 0 {
		p.Backoff = 0
	}
	return p
}

// delay is the wait after the given 1-based attempt.
func (p RetryPolicy) delay(attempt int) time.Duration {
	return p.Backoff << (attempt - 1)
}

// Worker runs the order-driven draw out of band. Its failures never reach
// the ordering caller: they are logged, counted and published as
// inventory.consumption_failed.
type Worker struct {
	consume      application.UseCase[ConsumeCommand, *ConsumptionResult]
	transactions dominv.TransactionRepository
	subscriber   domoutbox.Subscriber
	publisher    domoutbox.Publisher
	policy       RetryPolicy
	tel          observability.Observability

	log         observability.Logger
	failCounter observability.Counter // inventory_consumption_failed_total{reason}
	sleep       func(ctx context.Context, d time.Duration) error
}

func NewWorker(
	consume application.UseCase[ConsumeCommand, *ConsumptionResult],
	transactions dominv.TransactionRepository,
	subscriber domoutbox.Subscriber,
	publisher domoutbox.Publisher,
	policy RetryPolicy,
	tel observability.Observability,
) *Worker {
	if tel == nil {
		tel = observability.Nop()
	}
	return &Worker{
		consume:      consume,
		transactions: transactions,
		subscriber:   subscriber,
		publisher:    application.NewTimedPublisher(publisher, tel),
		policy:       policy.normalized(),
		tel:          tel,
		log:          tel.Logger().With(observability.F("service", workerService)),
		failCounter:  tel.Metrics().Counter(observability.MInventoryConsumptionFails),
		sleep:        sleepContext,
	}
}

func (w *Worker) Start() {
	if w.subscriber == nil || w.consume == nil {
		return
	}
	w.subscriber.Subscribe(domorder.OrderPlacedEvent{}.EventName(), w.handleOrderPlaced)
}

func (w *Worker) handleOrderPlaced(ctx context.Context, e domoutbox.Event) error {
	evt, ok := e.(domorder.OrderPlacedEvent)
	if !ok {
		return nil
	}

	ctx, span := w.tel.Tracer().Start(ctx, application.SpanPrefix+"OrderPlaced",
		attribute.String("use_case", useCaseWorkerPlaced),
		attribute.String("event", e.EventName()),
		attribute.String("order.id", evt.OrderID),
	)
	defer span.End()

	ctx, logger := logctx.Enrich(ctx, w.log,
		observability.F("use_case", useCaseWorkerPlaced),
		observability.F("order_id", evt.OrderID),
	)

	if w.alreadyConsumed(ctx, evt.OrderID) {
		logger.Info("inventory_already_consumed")
		span.SetStatus(codes.Ok, "ALREADY_CONSUMED")
		return nil
	}

	cmd := ConsumeCommand{OrderID: evt.OrderID, Lines: evt.Lines}
	attempts, err := w.run(ctx, cmd)
	span.SetAttributes(attribute.Int("inventory.attempts", attempts))
	if err == nil {
		span.SetStatus(codes.Ok, "OK")
		return nil
	}

	reason := failureReason(err)
	span.RecordError(err)
	span.SetStatus(codes.Error, reason)
	w.failCounter.Add(1, observability.L("reason", reason))
	logger.Error("inventory_consumption_failed",
		observability.F("reason", reason),
		observability.F("attempts", attempts),
		observability.F("error", err.Error()),
	)

	// the failure event outlives a cancelled handler context
	pubCtx := context.WithoutCancel(ctx)
	if perr := w.publisher.Publish(pubCtx, dominv.NewInventoryConsumptionFailedEvent(evt.OrderID, reason, attempts)); perr != nil {
		logger.Warn("event_publish_failed",
			observability.F("event", dominv.InventoryConsumptionFailedEvent{}.EventName()),
			observability.F("error", perr.Error()),
		)
	}
	return nil
}

// run executes the draw until it succeeds, fails permanently or runs out of
// attempts. It returns the number of attempts made.
func (w *Worker) run(ctx context.Context, cmd ConsumeCommand) (int, error) {
	logger := logctx.FromOr(ctx, w.log)

	var err error
	for attempt := 1; attempt <= w.policy.MaxAttempts; attempt++ {
		if _, err = w.consume.Execute(ctx, cmd); err == nil {
			return attempt, nil
		}
		if !retryable(err) || attempt == w.policy.MaxAttempts {
			return attempt, err
		}

		wait := w.policy.delay(attempt)
		logger.Warn("inventory_consumption_retry",
			observability.F("attempt", attempt),
			observability.F("backoff_seconds", wait.Seconds()),
			observability.F("error", err.Error()),
		)
		if serr := w.sleep(ctx, wait); serr != nil {
			return attempt, errors.Join(err, serr)
		}
	}
	return w.policy.MaxAttempts, err
}

func (w *Worker) alreadyConsumed(ctx context.Context, orderID string) bool {
	if w.transactions == nil {
		return false
	}
	txs, err := w.transactions.ListByOrder(ctx, orderID)
	if err != nil {
		logctx.FromOr(ctx, w.log).Warn("order_transactions_lookup_failed", observability.F("error", err.Error()))
		return false
	}
	return len(txs) > 0
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
