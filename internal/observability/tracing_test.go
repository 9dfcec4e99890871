package observability

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"github.com/signalsfoundry/galactic-ops/core"
	"github.com/signalsfoundry/galactic-ops/internal/logging"
)

func TestInitTracingDisabledIsNoop(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), TracingConfig{Enabled: false}, nil)
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitTracingRejectsUnknownExporter(t *testing.T) {
	_, err := InitTracing(context.Background(), TracingConfig{
		Enabled:     true,
		Exporter:    "zipkin",
		SampleRatio: 1,
	}, logging.Noop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "zipkin")
}

func TestInitTracingRejectsBadSampleRatio(t *testing.T) {
	_, err := InitTracing(context.Background(), TracingConfig{
		Enabled:     true,
		Exporter:    "stdout",
		SampleRatio: 1.5,
	}, logging.Noop())
	require.Error(t, err)
}

func TestStdoutExporterReceivesExternalCallSpans(t *testing.T) {
	var buf bytes.Buffer
	ctx := context.Background()
	shutdown, err := InitTracing(ctx, TracingConfig{
		Enabled:     true,
		ServiceName: "galops-test",
		Exporter:    "stdout",
		SampleRatio: 1,
		Writer:      &buf,
	}, logging.Noop())
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = InitTracing(ctx, TracingConfig{Enabled: false}, nil)
	})

	ops := core.NewGalacticOps()
	_, err = ops.NE2001DistToDM(ctx, 1, 30, 0)
	require.ErrorIs(t, err, core.ErrServiceUnavailable)

	require.NoError(t, shutdown(ctx))
	assert.Contains(t, buf.String(), "galops/"+core.OpDistToDM)
	assert.NotNil(t, otel.GetTracerProvider())
}

func TestShutdownWithTimeoutToleratesNil(t *testing.T) {
	ShutdownWithTimeout(context.Background(), nil, nil)
}
