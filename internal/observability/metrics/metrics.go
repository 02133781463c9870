package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
	InstanceID       string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	ingestRows    metric.Int64Counter
	ingestBatches metric.Int64Counter
	ingestLatency metric.Float64Histogram
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(metricResource(cfg)),
	)
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

func metricResource(cfg Config) *resource.Resource {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "storecogs"
	}
	attrs := []attribute.KeyValue{
		attribute.String("service.name", name),
		attribute.String("service.namespace", "storecogs"),
		attribute.String("deployment.environment", cfg.Environment),
	}
	if id := strings.TrimSpace(cfg.InstanceID); id != "" {
		attrs = append(attrs, attribute.String("service.instance.id", id))
	}
	return resource.NewSchemaless(attrs...)
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "storecogs"
	}
	meter := provider.Meter(name)

	ingestRows, err := meter.Int64Counter("storecogs_ingest_rows_total",
		metric.WithDescription("Spreadsheet rows processed, by dataset and outcome"))
	if err != nil {
		return nil, err
	}
	ingestBatches, err := meter.Int64Counter("storecogs_ingest_batches_total",
		metric.WithDescription("Spreadsheet uploads processed, by dataset and status"))
	if err != nil {
		return nil, err
	}
	ingestLatency, err := meter.Float64Histogram("storecogs_ingest_batch_duration_seconds",
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	return &Metrics{
		ingestRows:    ingestRows,
		ingestBatches: ingestBatches,
		ingestLatency: ingestLatency,
	}, nil
}

// RecordIngestRows adds n rows with the given outcome (inserted, updated,
// skipped).
func (m *Metrics) RecordIngestRows(ctx context.Context, dataset, outcome string, n int) {
	if m == nil || n <= 0 {
		return
	}
	attrs := FilterAttributes(
		attribute.String("dataset", strings.TrimSpace(dataset)),
		attribute.String("outcome", strings.TrimSpace(outcome)),
	)
	m.ingestRows.Add(ctx, int64(n), metric.WithAttributes(attrs...))
}

// RecordIngestBatch counts one finished upload and its duration.
func (m *Metrics) RecordIngestBatch(ctx context.Context, dataset, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("dataset", strings.TrimSpace(dataset)),
		attribute.String("status", strings.TrimSpace(status)),
	)
	m.ingestBatches.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.ingestLatency.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"dataset":     {},
	"outcome":     {},
	"status":      {},
	"endpoint":    {},
	"status_code": {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
