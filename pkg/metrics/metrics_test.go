package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestRecordersAreNoopBeforeInit(t *testing.T) {
	prev := metrics
	metrics = nil
	t.Cleanup(func() { metrics = prev })

	ctx := context.Background()
	assert.NotPanics(t, func() {
		RecordGuardDecision(ctx, "/app/cadastro-complementar/termos", "allow")
		RecordStepCommit(ctx, 3, "success", 0.1)
		RecordStepValidationFailure(ctx, 2)
		RecordProgressCache(ctx, true)
		RecordBackendRequest(ctx, "get_me", 200, 0.05)
		RecordHTTPRequest(ctx, nil, 0.01, 10, 20)
		AddActiveRequest(ctx, 1)
	})
}

func TestRecordStepCommitExports(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	m, err := newOTelMetrics(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordStepCommit(ctx, 3, "success", 0.2)
	m.RecordStepCommit(ctx, 3, "success", 0.1)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			if md.Name != "wizard_step_commits_total" {
				continue
			}
			sum, ok := md.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	assert.Equal(t, int64(2), total)
}
