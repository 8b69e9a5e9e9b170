package application

import "github.com/Zhima-Mochi/kitchen-inventory/internal/observability"

// Outcomes every use case reports; they are bound up front.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Meter records usecase_requests_total and usecase_duration_seconds for one
// use case. The use_case label is bound once at construction; outcomes other
// than success and error fall back to the unbound counter.
type Meter struct {
	useCase  string
	requests observability.Counter
	byResult map[string]observability.BoundCounter
	duration observability.BoundHistogram
}

func NewMeter(m observability.Metrics, useCase string) *Meter {
	if m == nil {
		m = observability.NopMetrics()
	}
	requests := m.Counter(observability.MUsecaseRequests)
	uc := observability.L("use_case", useCase)
	return &Meter{
		useCase:  useCase,
		requests: requests,
		byResult: map[string]observability.BoundCounter{
			OutcomeSuccess: requests.Bind(uc, observability.L("outcome", OutcomeSuccess)),
			OutcomeError:   requests.Bind(uc, observability.L("outcome", OutcomeError)),
		},
		duration: m.Histogram(observability.MUsecaseDuration).Bind(uc),
	}
}

// Count bumps the request counter without a latency sample.
func (m *Meter) Count(outcome string) {
	if c, ok := m.byResult[outcome]; ok {
		c.Add(1)
		return
	}
	m.requests.Add(1,
		observability.L("use_case", m.useCase),
		observability.L("outcome", outcome),
	)
}

// Record counts one finished request and its latency.
func (m *Meter) Record(outcome string, latencySeconds float64) {
	m.Count(outcome)
	m.duration.Observe(latencySeconds)
}
