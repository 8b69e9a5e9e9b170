package application

import (
	"context"
	"time"

	domoutbox "github.com/Zhima-Mochi/kitchen-inventory/internal/domain/outbox"
	"github.com/Zhima-Mochi/kitchen-inventory/internal/observability"
)

const (
	publishPeer    = "outbox"
	publishTimeout = 300 * time.Millisecond
)

// TimedPublisher bounds every publish with a short deadline and records it
// as an external call. A nil inner publisher drops events.
type TimedPublisher struct {
	inner   domoutbox.Publisher
	timeout time.Duration

	extCounter   observability.Counter   // external_requests_total{peer,endpoint,outcome}
	extHistogram observability.Histogram // external_request_duration_seconds{peer,endpoint}
}

func NewTimedPublisher(inner domoutbox.Publisher, tel observability.Observability) *TimedPublisher {
	if tel == nil {
		tel = observability.Nop()
	}
	return &TimedPublisher{
		inner:        inner,
		timeout:      publishTimeout,
		extCounter:   tel.Metrics().Counter(observability.MExternalRequests),
		extHistogram: tel.Metrics().Histogram(observability.MExternalRequestDuration),
	}
}

func (p *TimedPublisher) Publish(ctx context.Context, e domoutbox.Event) error {
	if p == nil || p.inner == nil || e == nil {
		return nil
	}
	pubCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	outcome := OutcomeSuccess
	err := p.inner.Publish(pubCtx, e)
	switch {
	case err == nil:
	case pubCtx.Err() != nil:
		// the deadline cut the publish short
		outcome = "canceled"
	default:
		outcome = OutcomeError
	}

	p.extCounter.Add(1,
		observability.L("peer", publishPeer),
		observability.L("endpoint", e.EventName()),
		observability.L("outcome", outcome),
	)
	p.extHistogram.Observe(time.Since(start).Seconds(),
		observability.L("peer", publishPeer),
		observability.L("endpoint", e.EventName()),
	)
	return err
}
