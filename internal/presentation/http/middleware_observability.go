package httppresentation

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Zhima-Mochi/kitchen-inventory/internal/observability"
	"github.com/Zhima-Mochi/kitchen-inventory/internal/observability/logctx"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const (
	headerRequestID = "X-Request-ID"
	tracerName      = "kitchen-inventory.http"
)

// ObservabilityMiddleware combines:
// - W3C Trace Context extraction and a server span
// - request-scoped logger injection (dynamic fields only)
// - X-Request-ID generation + echo
// - HTTP metrics (counter + histogram) labelled by route template
// - one access log line per request
//
// Handler errors are rendered here so the recorded status is the one the
// client sees.
func ObservabilityMiddleware(base observability.Logger, tel observability.Observability) fiber.Handler {
	if tel == nil {
		tel = observability.Nop()
	}
	if base == nil {
		base = tel.Logger()
	}
	prop := otel.GetTextMapPropagator()
	tracer := otel.Tracer(tracerName)
	reqCounter := tel.Metrics().Counter(observability.MHTTPRequests)
	durHistogram := tel.Metrics().Histogram(observability.MHTTPRequestDuration)

	return func(c *fiber.Ctx) error {
		start := time.Now()
		ctx := prop.Extract(c.UserContext(), propagation.HeaderCarrier(http.Header(c.GetReqHeaders())))

		ctx, span := tracer.Start(ctx, c.Method()+" "+c.Path(),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", c.Method()),
				attribute.String("http.target", c.OriginalURL()),
				attribute.String("http.user_agent", c.Get(fiber.HeaderUserAgent)),
			),
		)
		defer span.End()

		rid := c.Get(headerRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(headerRequestID, rid)

		fields := []observability.Field{observability.F("request_id", rid)}
		if sc := span.SpanContext(); sc.IsValid() {
			fields = append(fields,
				observability.F("trace_id", sc.TraceID().String()),
				observability.F("span_id", sc.SpanID().String()),
			)
		}
		reqLogger := base.With(fields...)
		c.SetUserContext(logctx.With(ctx, reqLogger))

		if err := c.Next(); err != nil {
			span.RecordError(err)
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		route := c.Route().Path
		method := c.Method()
		lat := time.Since(start)

		span.SetName(method + " " + route)
		span.SetAttributes(
			attribute.String("http.route", route),
			attribute.Int("http.status_code", status),
		)
		if status >= fiber.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}

		labels := []observability.Label{
			observability.L("method", method),
			observability.L("route", route),
			observability.L("status", strconv.Itoa(status)),
		}
		reqCounter.Add(1, labels...)
		durHistogram.Observe(lat.Seconds(), labels...)

		reqLogger.Info("http_access",
			observability.F("method", method),
			observability.F("route", route),
			observability.F("path", c.Path()),
			observability.F("status", status),
			observability.F("latency_ms", lat.Milliseconds()),
		)
		return nil
	}
}
