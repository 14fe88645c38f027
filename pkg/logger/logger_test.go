package logger

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	appctx "magnetunits/internal/core/context"
)

func TestWithContext_AddsTraceFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	log := FromZap(zap.New(core))

	ctx := appctx.WithTrace(context.Background(), &appctx.TraceContext{TraceID: "t1", RequestID: "r1"})
	log.WithContext(ctx).WithComponent("format_cache").Infow("loaded", "count", 2)

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		fields := entries[0].ContextMap()
		assert.Equal(t, "t1", fields["trace_id"])
		assert.Equal(t, "r1", fields["request_id"])
		assert.Equal(t, "format_cache", fields["component"])
		assert.Equal(t, int64(2), fields["count"])
	}
}

func TestFromContext(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	ctx := WithLogger(context.Background(), FromZap(zap.New(core)))

	Warn(ctx, "unit downgraded", "field", "B")
	Debug(ctx, "details")

	assert.Equal(t, 1, logs.FilterMessage("unit downgraded").Len())
	assert.Equal(t, 2, logs.Len())
}

func TestNew_UnknownLevelFallsBackToInfo(t *testing.T) {
	log, err := New(Config{Level: "loud", OutputPaths: []string{filepath.Join(t.TempDir(), "app.log")}})
	require.NoError(t, err)
	assert.False(t, log.Desugar().Core().Enabled(zap.DebugLevel))
	assert.True(t, log.Desugar().Core().Enabled(zap.InfoLevel))
}
