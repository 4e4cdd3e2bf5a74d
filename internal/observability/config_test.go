package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/smallbiznis/invoicedesk/internal/config"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{
		"DEPLOYMENT_ENV", "SERVICE_VERSION", "LOG_LEVEL", "LOG_FORMAT", "OTEL_ENABLED",
		"OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_EXPORTER_OTLP_PROTOCOL",
		"OTEL_EXPORTER_OTLP_TRACES_PROTOCOL", "OTEL_SAMPLING_RATIO", "PROMETHEUS_ENABLED",
	} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig(config.Config{Environment: "production", AppVersion: "1.2.0", OTLPEndpoint: "collector:4317"})

	assert.Equal(t, "invoicedesk", cfg.ServiceName)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "1.2.0", cfg.Version)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.False(t, cfg.OtelEnabled)
	assert.Equal(t, "collector:4317", cfg.OtelExporterEndpoint)
	assert.Equal(t, ProtocolGRPC, cfg.OtelExporterProtocol)
	assert.Equal(t, 0.1, cfg.OtelSamplingRatio)
	assert.True(t, cfg.PrometheusEnabled)
	assert.False(t, cfg.Debug())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("DEPLOYMENT_ENV", "local")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("OTEL_ENABLED", "yes")
	t.Setenv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc")
	t.Setenv("OTEL_EXPORTER_OTLP_TRACES_PROTOCOL", "http/protobuf")
	t.Setenv("OTEL_SAMPLING_RATIO", "4")
	t.Setenv("PROMETHEUS_ENABLED", "off")

	cfg := LoadConfig(config.Config{AppName: "invoicedesk-api"})

	assert.Equal(t, "invoicedesk-api", cfg.ServiceName)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.OtelEnabled)
	assert.Equal(t, ProtocolHTTP, cfg.OtelExporterProtocol)
	assert.Equal(t, 1.0, cfg.OtelSamplingRatio)
	assert.False(t, cfg.PrometheusEnabled)
	assert.True(t, cfg.Debug())
}

func TestLoadConfig_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("OTEL_ENABLED", "maybe")
	t.Setenv("OTEL_SAMPLING_RATIO", "lots")
	t.Setenv("OTEL_EXPORTER_OTLP_TRACES_PROTOCOL", "")
	t.Setenv("OTEL_EXPORTER_OTLP_PROTOCOL", "carrier-pigeon")

	cfg := LoadConfig(config.Config{})

	assert.False(t, cfg.OtelEnabled)
	assert.Equal(t, 0.1, cfg.OtelSamplingRatio)
	assert.Equal(t, ProtocolGRPC, cfg.OtelExporterProtocol)
}
