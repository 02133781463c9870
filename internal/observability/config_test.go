package observability

import (
	"testing"

	"github.com/smallbiznis/storecogs/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestLoadConfigPrefersStorecogsKeys(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("STORECOGS_LOG_LEVEL", "DEBUG")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4317")
	t.Setenv("STORECOGS_OTLP_ENDPOINT", "otel.storecogs:4317")
	t.Setenv("STORECOGS_INSTANCE_ID", "api-1")
	t.Setenv("STORECOGS_TRACE_SAMPLING_RATIO", "0.5")

	cfg := LoadConfig(config.Config{AppName: "storecogs", Environment: "production"})

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.Debug())
	assert.Equal(t, "otel.storecogs:4317", cfg.OtelExporterEndpoint)
	assert.Equal(t, "api-1", cfg.InstanceID)
	assert.Equal(t, 0.5, cfg.OtelSamplingRatio)
	assert.Equal(t, "production", cfg.Environment)
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("STORECOGS_TRACE_ALL_UPLOADS", "")
	t.Setenv("STORECOGS_LOG_LEVEL", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("STORECOGS_OTLP_PROTOCOL", "")
	t.Setenv("OTEL_EXPORTER_OTLP_TRACES_PROTOCOL", "")
	t.Setenv("OTEL_EXPORTER_OTLP_PROTOCOL", "HTTP")

	cfg := LoadConfig(config.Config{Environment: "production"})

	assert.Equal(t, "storecogs", cfg.ServiceName)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "http", cfg.OtelExporterProtocol)
	assert.True(t, cfg.TraceAllUploads)
	assert.False(t, cfg.Debug())
}

func TestLoadConfigCanDisableUploadTracing(t *testing.T) {
	t.Setenv("STORECOGS_TRACE_ALL_UPLOADS", "off")
	assert.False(t, LoadConfig(config.Config{}).TraceAllUploads)
}
