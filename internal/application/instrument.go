package application

import (
	"context"
	"sync"
	"time"

	"github.com/Zhima-Mochi/kitchen-inventory/internal/observability"
	"github.com/Zhima-Mochi/kitchen-inventory/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const SpanPrefix = "UC."

// Instrument gives synchronous service methods the same span, RED metrics
// and use_case_done line that the event-driven use cases emit.
type Instrument struct {
	log     observability.Logger
	tracer  observability.Tracer
	metrics observability.Metrics
	meters  *sync.Map // use case -> *Meter
}

func NewInstrument(service string, tel observability.Observability) Instrument {
	if tel == nil {
		tel = observability.Nop()
	}
	return Instrument{
		log:     tel.Logger().With(observability.F("service", service)),
		tracer:  tel.Tracer(),
		metrics: tel.Metrics(),
		meters:  &sync.Map{},
	}
}

func (in Instrument) meter(useCase string) *Meter {
	if m, ok := in.meters.Load(useCase); ok {
		return m.(*Meter)
	}
	m, _ := in.meters.LoadOrStore(useCase, NewMeter(in.metrics, useCase))
	return m.(*Meter)
}

// Logger returns the service logger, or the request logger carried by ctx.
func (in Instrument) Logger(ctx context.Context) observability.Logger {
	return logctx.FromOr(ctx, in.log)
}

// Run executes fn inside a span named after useCase and records its outcome.
func (in Instrument) Run(ctx context.Context, useCase string, fn func(ctx context.Context) error, attrs ...attribute.KeyValue) error {
	spanAttrs := append([]attribute.KeyValue{attribute.String("use_case", useCase)}, attrs...)
	ctx, span := in.tracer.Start(ctx, SpanPrefix+useCase, spanAttrs...)
	defer span.End()

	ctx, logger := logctx.Enrich(ctx, in.log, observability.F("use_case", useCase))

	start := time.Now()
	err := fn(ctx)
	lat := time.Since(start).Seconds()

	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "OK")
	}

	in.meter(useCase).Record(outcome, lat)

	fields := []observability.Field{
		observability.F("outcome", outcome),
		observability.F("latency_seconds", lat),
	}
	if err != nil {
		fields = append(fields, observability.F("error", err.Error()))
	}
	logger.Info("use_case_done", fields...)
	return err
}
