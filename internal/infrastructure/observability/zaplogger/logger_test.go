package zaplogger

import (
	"errors"
	"testing"

	"github.com/Zhima-Mochi/kitchen-inventory/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestWrap_CarriesFixedAndScopedFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	log := Wrap(zap.New(core), observability.F("service", "inventory"))

	log.With(observability.F("order_id", "o-1")).Info("use_case_done",
		observability.F("outcome", "success"),
		observability.F("error", errors.New("boom")),
	)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "use_case_done", entry.Message)
	ctx := entry.ContextMap()
	assert.Equal(t, "inventory", ctx["service"])
	assert.Equal(t, "o-1", ctx["order_id"])
	assert.Equal(t, "success", ctx["outcome"])
	assert.Equal(t, "boom", ctx["error"])
}

func TestWrap_NilLoggerIsSafe(t *testing.T) {
	log := Wrap(nil)
	assert.NotPanics(t, func() { log.Warn("ignored") })
}
