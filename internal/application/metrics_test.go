package application

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	domoutbox "github.com/Zhima-Mochi/kitchen-inventory/internal/domain/outbox"
	infraobs "github.com/Zhima-Mochi/kitchen-inventory/internal/infrastructure/observability"
	"github.com/Zhima-Mochi/kitchen-inventory/internal/infrastructure/observability/prometrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProvider(t *testing.T) (*infraobs.Provider, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	return infraobs.New(infraobs.WithInstruments(prometrics.Standard(prometrics.New("", "", reg)))), reg
}

func TestMeter_RecordsBoundAndFallbackOutcomes(t *testing.T) {
	tel, reg := newProvider(t)
	m := NewMeter(tel.Metrics(), "inventory.adjust")

	m.Record(OutcomeSuccess, 0.01)
	m.Record(OutcomeSuccess, 0.02)
	m.Record(OutcomeError, 0.5)
	m.Count("ignored")

	expected := `
# HELP usecase_requests_total Total number of use case invocations.
# TYPE usecase_requests_total counter
usecase_requests_total{outcome="error",use_case="inventory.adjust"} 1
usecase_requests_total{outcome="ignored",use_case="inventory.adjust"} 1
usecase_requests_total{outcome="success",use_case="inventory.adjust"} 2
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "usecase_requests_total"))

	n, err := testutil.GatherAndCount(reg, "usecase_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n, "one series per use case")
}

func TestNewMeter_NilMetricsIsSafe(t *testing.T) {
	m := NewMeter(nil, "recipe.resolve")
	assert.NotPanics(t, func() { m.Record(OutcomeSuccess, 0.1) })
}

func TestInstrument_RunReusesMeterPerUseCase(t *testing.T) {
	tel, reg := newProvider(t)
	in := NewInstrument("recipe-service", tel)

	for i := 0; i < 3; i++ {
		require.NoError(t, in.Run(context.Background(), "recipe.add_line", func(context.Context) error { return nil }))
	}
	err := in.Run(context.Background(), "recipe.add_line", func(context.Context) error { return errors.New("boom") })
	require.Error(t, err)

	expected := `
# HELP usecase_requests_total Total number of use case invocations.
# TYPE usecase_requests_total counter
usecase_requests_total{outcome="error",use_case="recipe.add_line"} 1
usecase_requests_total{outcome="success",use_case="recipe.add_line"} 3
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "usecase_requests_total"))
}

type pingEvent struct{}

func (pingEvent) EventName() string { return "test.ping" }

// deadlinePublisher waits for the publish deadline, then returns err.
type deadlinePublisher struct{ err error }

func (p deadlinePublisher) Publish(ctx context.Context, _ domoutbox.Event) error {
	<-ctx.Done()
	return p.err
}

func externalOutcome(outcome string) string {
	return `
# HELP external_requests_total Calls made to collaborators such as the event bus.
# TYPE external_requests_total counter
external_requests_total{endpoint="test.ping",outcome="` + outcome + `",peer="outbox"} 1
`
}

func TestTimedPublisher_SuccessAfterDeadlineIsSuccess(t *testing.T) {
	tel, reg := newProvider(t)
	p := NewTimedPublisher(deadlinePublisher{}, tel)
	p.timeout = time.Millisecond

	require.NoError(t, p.Publish(context.Background(), pingEvent{}))
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(externalOutcome("success")), "external_requests_total"))
}

func TestTimedPublisher_DeadlineFailureIsCanceled(t *testing.T) {
	tel, reg := newProvider(t)
	p := NewTimedPublisher(deadlinePublisher{err: context.DeadlineExceeded}, tel)
	p.timeout = time.Millisecond

	err := p.Publish(context.Background(), pingEvent{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(externalOutcome("canceled")), "external_requests_total"))
}

type refusingPublisher struct{}

func (refusingPublisher) Publish(context.Context, domoutbox.Event) error { return errors.New("bus closed") }

func TestTimedPublisher_ErrorIsError(t *testing.T) {
	tel, reg := newProvider(t)
	p := NewTimedPublisher(refusingPublisher{}, tel)

	require.Error(t, p.Publish(context.Background(), pingEvent{}))
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(externalOutcome("error")), "external_requests_total"))
}

func TestTimedPublisher_NilInnerDrops(t *testing.T) {
	p := NewTimedPublisher(nil, nil)
	assert.NoError(t, p.Publish(context.Background(), pingEvent{}))
}
