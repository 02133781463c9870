package observability

import (
	"os"
	"strconv"
	"strings"

	"github.com/smallbiznis/storecogs/internal/config"
)

// Config holds observability settings. Every key can be set with a
// STORECOGS_ prefix, which wins over the shared OTEL_ and LOG_ names.
type Config struct {
	ServiceName string
	Environment string
	Version     string
	InstanceID  string

	LogLevel  string
	LogFormat string

	OtelEnabled          bool
	OtelExporterEndpoint string
	OtelExporterProtocol string
	OtelSamplingRatio    float64
	// TraceAllUploads samples every spreadsheet upload on top of
	// OtelSamplingRatio.
	TraceAllUploads bool
}

func LoadConfig(cfg config.Config) Config {
	serviceName := strings.TrimSpace(cfg.AppName)
	if serviceName == "" {
		serviceName = "storecogs"
	}

	protocol := lookup("grpc", "STORECOGS_OTLP_PROTOCOL", "OTEL_EXPORTER_OTLP_TRACES_PROTOCOL", "OTEL_EXPORTER_OTLP_PROTOCOL")

	return Config{
		ServiceName:          serviceName,
		Environment:          lookup(cfg.Environment, "STORECOGS_ENV", "DEPLOYMENT_ENV"),
		Version:              lookup(cfg.AppVersion, "STORECOGS_VERSION", "SERVICE_VERSION"),
		InstanceID:           lookup(hostname(), "STORECOGS_INSTANCE_ID", "POD_NAME"),
		LogLevel:             strings.ToLower(lookup("info", "STORECOGS_LOG_LEVEL", "LOG_LEVEL")),
		LogFormat:            strings.ToLower(lookup("json", "STORECOGS_LOG_FORMAT", "LOG_FORMAT")),
		OtelEnabled:          parseBool(lookup("", "STORECOGS_OTEL_ENABLED", "OTEL_ENABLED"), false),
		OtelExporterEndpoint: lookup(cfg.OTLPEndpoint, "STORECOGS_OTLP_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT"),
		OtelExporterProtocol: strings.ToLower(protocol),
		OtelSamplingRatio:    parseFloat(lookup("", "STORECOGS_TRACE_SAMPLING_RATIO", "OTEL_SAMPLING_RATIO"), 0.1),
		TraceAllUploads:      parseBool(lookup("", "STORECOGS_TRACE_ALL_UPLOADS"), true),
	}
}

func (c Config) Debug() bool {
	if strings.EqualFold(strings.TrimSpace(c.LogLevel), "debug") {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(c.Environment)) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}

// lookup returns the first non-empty variable among keys, or def.
func lookup(def string, keys ...string) string {
	for _, key := range keys {
		if value := strings.TrimSpace(os.Getenv(key)); value != "" {
			return value
		}
	}
	return strings.TrimSpace(def)
}

func hostname() string {
	name, err := os.Hostname()
	if err != nil {
		return ""
	}
	return name
}

func parseBool(value string, def bool) bool {
	switch strings.ToLower(value) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func parseFloat(value string, def float64) float64 {
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}
