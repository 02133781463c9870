package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestFilterAttributesDropsForbiddenLabels(t *testing.T) {
	attrs := FilterAttributes(
		attribute.String("dataset", "cogs"),
		attribute.String("store_number", "1001"),
		attribute.String("outcome", "inserted"),
	)
	require.Len(t, attrs, 2)
	assert.Equal(t, attribute.Key("dataset"), attrs[0].Key)
	assert.Equal(t, attribute.Key("outcome"), attrs[1].Key)
}

func TestRecordIngest(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m, err := New(Config{ServiceName: "storecogs-test"}, provider)
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordIngestRows(ctx, "cogs", "inserted", 3)
	m.RecordIngestRows(ctx, "cogs", "updated", 0)
	m.RecordIngestBatch(ctx, "cogs", "completed", 150*time.Millisecond)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	byName := map[string]metricdata.Metrics{}
	for _, md := range rm.ScopeMetrics[0].Metrics {
		byName[md.Name] = md
	}

	rows, ok := byName["storecogs_ingest_rows_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, rows.DataPoints, 1)
	assert.Equal(t, int64(3), rows.DataPoints[0].Value)

	batches, ok := byName["storecogs_ingest_batches_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, batches.DataPoints, 1)
	assert.Equal(t, int64(1), batches.DataPoints[0].Value)
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordIngestRows(context.Background(), "cogs", "inserted", 1)
	m.RecordIngestBatch(context.Background(), "cogs", "failed", time.Second)
}
