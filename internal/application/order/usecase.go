package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Zhima-Mochi/kitchen-inventory/internal/application"
	domain "github.com/Zhima-Mochi/kitchen-inventory/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/kitchen-inventory/internal/domain/outbox"
	"github.com/Zhima-Mochi/kitchen-inventory/internal/observability"
	"github.com/Zhima-Mochi/kitchen-inventory/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	orderService      = "order-service"
	useCaseOrderPlace = "order.place"
)

var (
	ErrConflict   = domain.ErrConflict
	ErrNotFound   = domain.ErrNotFound
	ErrRepository = errors.New("order: repository failure")
)

type PlaceOrderInput struct {
	Lines []domain.Line
}

type PlaceOrderResult struct {
	OrderID string
	Status  domain.Status
}

var _ application.UseCase[PlaceOrderInput, *PlaceOrderResult] = (*PlaceOrderUseCase)(nil)

// PlaceOrderUseCase records an order and hands inventory consumption to the
// event bus. It returns as soon as the order is stored.
type PlaceOrderUseCase struct {
	repo        domain.Repository
	idGenerator application.IDGenerator
	publisher   domoutbox.Publisher
	tel         observability.Observability

	log   observability.Logger
	meter *application.Meter
}

func NewPlaceOrderUseCase(
	repo domain.Repository,
	idGen application.IDGenerator,
	publisher domoutbox.Publisher,
	tel observability.Observability,
) *PlaceOrderUseCase {
	if tel == nil {
		tel = observability.Nop()
	}
	return &PlaceOrderUseCase{
		repo:        repo,
		idGenerator: idGen,
		publisher:   application.NewTimedPublisher(publisher, tel),
		tel:         tel,
		log:         tel.Logger().With(observability.F("service", orderService)),
		meter:       application.NewMeter(tel.Metrics(), useCaseOrderPlace),
	}
}

func (uc *PlaceOrderUseCase) Execute(ctx context.Context, cmd PlaceOrderInput) (_ *PlaceOrderResult, err error) {
	ctx, span := uc.tel.Tracer().Start(ctx, application.SpanPrefix+"PlaceOrder",
		attribute.String("use_case", useCaseOrderPlace),
		attribute.Int("order.lines", len(cmd.Lines)),
	)
	start := time.Now()
	outcome, statusText := application.OutcomeSuccess, "OK"
	var (
		orderID    string
		publishErr error
	)

	ctx, logger := logctx.Enrich(ctx, uc.log, observability.F("use_case", useCaseOrderPlace))

	defer func() {
		if outcome == application.OutcomeError {
			if err != nil {
				span.RecordError(err)
			}
			span.SetStatus(codes.Error, statusText)
		} else {
			span.SetStatus(codes.Ok, statusText)
		}
		span.End()

		lat := time.Since(start).Seconds()
		uc.meter.Record(outcome, lat)

		fields := []observability.Field{
			observability.F("outcome", outcome),
			observability.F("status", statusText),
			observability.F("latency_seconds", lat),
		}
		if orderID != "" {
			fields = append(fields, observability.F("order_id", orderID))
		}
		if publishErr != nil {
			fields = append(fields, observability.F("event_publish_error", publishErr.Error()))
		}
		if err != nil {
			fields = append(fields, observability.F("error", err.Error()))
		}
		logger.Info("use_case_done", fields...)
	}()

	orderID = uc.idGenerator.NewID()
	entity, derr := domain.New(orderID, cmd.Lines)
	if derr != nil {
		outcome, statusText = application.OutcomeError, "VALIDATION_FAILED"
		return nil, fmt.Errorf("validation: %w", derr)
	}
	if err := ctx.Err(); err != nil {
		outcome, statusText = application.OutcomeError, "CONTEXT_CANCELED"
		return nil, err
	}
	if err := uc.repo.Insert(ctx, entity); err != nil {
		outcome, statusText = application.OutcomeError, "REPO_INSERT_FAILED"
		return nil, wrapRepositoryError(err)
	}

	// the order stands even when the draw cannot be scheduled
	if publishErr = uc.publisher.Publish(ctx, domain.NewOrderPlacedEvent(entity)); publishErr != nil {
		statusText = "EVENT_PUBLISH_FAILED"
		span.RecordError(publishErr)
		logger.Error("order_placed_publish_failed",
			observability.F("order_id", orderID),
			observability.F("error", publishErr.Error()),
		)
	}

	span.SetAttributes(attribute.String("order.status", string(entity.Status)))
	span.AddEvent("order.placed",
		trace.WithAttributes(attribute.String("order.id", orderID)),
	)
	return &PlaceOrderResult{OrderID: entity.ID, Status: entity.Status}, nil
}

func (uc *PlaceOrderUseCase) Get(ctx context.Context, id string) (*domain.Order, error) {
	o, err := uc.repo.Get(ctx, id)
	if err != nil {
		return nil, wrapRepositoryError(err)
	}
	return o, nil
}

func wrapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, domain.ErrConflict):
		return ErrConflict
	default:
		return fmt.Errorf("%w: %w", ErrRepository, err)
	}
}
