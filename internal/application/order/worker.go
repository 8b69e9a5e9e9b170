package order

import (
	"context"
	"fmt"
	"time"

	"github.com/Zhima-Mochi/kitchen-inventory/internal/application"
	dominventory "github.com/Zhima-Mochi/kitchen-inventory/internal/domain/inventory"
	domorder "github.com/Zhima-Mochi/kitchen-inventory/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/kitchen-inventory/internal/domain/outbox"
	"github.com/Zhima-Mochi/kitchen-inventory/internal/observability"
	"github.com/Zhima-Mochi/kitchen-inventory/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	workerService          = "order-worker"
	useCaseConsumed        = "order.worker.inventory_consumed"
	useCaseConsumptionFail = "order.worker.inventory_consumption_failed"
	outcomeIgnored         = "ignored"
)

// Worker records the inventory outcome on the order. It never rolls an
// order back: a failed draw only marks it for follow-up.
type Worker struct {
	repo       domorder.Repository
	subscriber domoutbox.Subscriber
	tel        observability.Observability

	log    observability.Logger
	meters map[string]*application.Meter
}

func NewWorker(
	repo domorder.Repository,
	subscriber domoutbox.Subscriber,
	tel observability.Observability,
) *Worker {
	if tel == nil {
		tel = observability.Nop()
	}
	return &Worker{
		repo:       repo,
		subscriber: subscriber,
		tel:        tel,
		log:        tel.Logger().With(observability.F("service", workerService)),
		meters: map[string]*application.Meter{
			useCaseConsumed:        application.NewMeter(tel.Metrics(), useCaseConsumed),
			useCaseConsumptionFail: application.NewMeter(tel.Metrics(), useCaseConsumptionFail),
		},
	}
}

func (w *Worker) Start() {
	if w.subscriber == nil || w.repo == nil {
		return
	}
	w.subscriber.Subscribe(dominventory.InventoryConsumedEvent{}.EventName(), w.handleInventoryConsumed)
	w.subscriber.Subscribe(dominventory.InventoryConsumptionFailedEvent{}.EventName(), w.handleInventoryConsumptionFailed)
}

func (w *Worker) handleInventoryConsumed(ctx context.Context, e domoutbox.Event) error {
	evt, ok := e.(dominventory.InventoryConsumedEvent)
	if !ok {
		w.meters[useCaseConsumed].Count(outcomeIgnored)
		return nil
	}
	return w.transition(ctx, useCaseConsumed, e.EventName(), evt.OrderID, "", func(o *domorder.Order) error {
		return o.InventoryConsumed()
	})
}

func (w *Worker) handleInventoryConsumptionFailed(ctx context.Context, e domoutbox.Event) error {
	evt, ok := e.(dominventory.InventoryConsumptionFailedEvent)
	if !ok {
		w.meters[useCaseConsumptionFail].Count(outcomeIgnored)
		return nil
	}
	return w.transition(ctx, useCaseConsumptionFail, e.EventName(), evt.OrderID, evt.Reason, func(o *domorder.Order) error {
		return o.InventoryConsumptionFailed(evt.Reason)
	})
}

func (w *Worker) transition(
	ctx context.Context,
	useCase, event, orderID, reason string,
	apply func(*domorder.Order) error,
) (err error) {
	ctx, span := w.tel.Tracer().Start(ctx, application.SpanPrefix+"OrderInventoryOutcome",
		attribute.String("use_case", useCase),
		attribute.String("event", event),
		attribute.String("order.id", orderID),
	)
	start := time.Now()
	outcome, status := application.OutcomeSuccess, "OK"

	ctx, logger := logctx.Enrich(ctx, w.log,
		observability.F("use_case", useCase),
		observability.F("event", event),
	)

	defer func() {
		lat := time.Since(start).Seconds()
		w.meters[useCase].Record(outcome, lat)

		fields := []observability.Field{
			observability.F("outcome", outcome),
			observability.F("status", status),
			observability.F("latency_seconds", lat),
			observability.F("order_id", orderID),
		}
		if reason != "" {
			fields = append(fields, observability.F("reason", reason))
		}
		logger.Info("use_case_done", fields...)

		if outcome == application.OutcomeError {
			span.SetStatus(codes.Error, status)
		} else {
			span.SetStatus(codes.Ok, status)
		}
		span.End()
	}()

	order, err := w.repo.Get(ctx, orderID)
	if err != nil {
		outcome, status = application.OutcomeError, "ORDER_LOAD_FAILED"
		return fmt.Errorf("worker: load order: %w", err)
	}
	if err := apply(order); err != nil {
		outcome, status = application.OutcomeError, "STATE_TRANSITION_FAILED"
		return fmt.Errorf("worker: %s transition: %w", event, err)
	}
	if err := w.repo.Update(ctx, order); err != nil {
		outcome, status = application.OutcomeError, "ORDER_UPDATE_FAILED"
		return fmt.Errorf("worker: update order: %w", err)
	}
	span.SetAttributes(attribute.String("order.status", string(order.Status)))
	return nil
}
