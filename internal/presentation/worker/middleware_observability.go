package workerpresentation

import (
	"context"

	domoutbox "github.com/Zhima-Mochi/kitchen-inventory/internal/domain/outbox"
	"github.com/Zhima-Mochi/kitchen-inventory/internal/observability"
	"github.com/Zhima-Mochi/kitchen-inventory/internal/observability/logctx"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const spanPrefix = "EVENT "

// WithEventContext injects a request-scoped logger for background/worker executions.
// Dynamic fields only: trace_id/span_id (if valid), event_id (generated if empty),
// plus caller-provided low-cardinality attributes (e.g. "event", "subscriber").
func WithEventContext(
	ctx context.Context,
	base observability.Logger,
	tel observability.Observability,
	traceID trace.TraceID,
	spanID trace.SpanID,
	attrs map[string]string,
) context.Context {
	if base == nil {
		base = tel.Logger()
	}

	fields := make([]observability.Field, 0, 3+len(attrs))

	evtID := attrs["event_id"]
	if evtID == "" {
		evtID = uuid.NewString()
	}
	fields = append(fields, observability.F("event_id", evtID))

	if traceID.IsValid() {
		fields = append(fields, observability.F("trace_id", traceID.String()))
	}
	if spanID.IsValid() {
		fields = append(fields, observability.F("span_id", spanID.String()))
	}

	for k, v := range attrs {
		if k == "event_id" || v == "" {
			continue
		}
		fields = append(fields, observability.F(k, v))
	}

	ctx, _ = logctx.Enrich(ctx, base, fields...)
	return ctx
}

// Instrumented wraps a subscriber so every handler runs inside a consumer
// span with an event-scoped logger on its context.
func Instrumented(sub domoutbox.Subscriber, name string, tel observability.Observability) domoutbox.Subscriber {
	if tel == nil {
		tel = observability.Nop()
	}
	return &instrumented{inner: sub, name: name, tel: tel}
}

type instrumented struct {
	inner domoutbox.Subscriber
	name  string
	tel   observability.Observability
}

func (s *instrumented) Subscribe(eventName string, h domoutbox.Handler) {
	s.inner.Subscribe(eventName, func(ctx context.Context, e domoutbox.Event) error {
		ctx, span := s.tel.Tracer().Start(ctx, spanPrefix+eventName,
			attribute.String("event", eventName),
			attribute.String("subscriber", s.name),
		)
		defer span.End()

		sc := span.SpanContext()
		ctx = WithEventContext(ctx, logctx.FromOr(ctx, s.tel.Logger()), s.tel, sc.TraceID(), sc.SpanID(), map[string]string{
			"event":      eventName,
			"subscriber": s.name,
		})

		err := h(ctx, e)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "HANDLER_FAILED")
			return err
		}
		span.SetStatus(codes.Ok, "OK")
		return nil
	})
}
