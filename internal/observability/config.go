package observability

import (
	"os"
	"strconv"
	"strings"

	"github.com/smallbiznis/invoicedesk/internal/config"
)

const (
	ProtocolGRPC = "grpc"
	ProtocolHTTP = "http"
)

// Config holds observability settings. Values come from the environment and
// fall back to the application config.
type Config struct {
	ServiceName string
	Environment string
	Version     string

	LogLevel  string
	LogFormat string

	OtelEnabled          bool
	OtelExporterEndpoint string
	OtelExporterProtocol string
	OtelSamplingRatio    float64

	PrometheusEnabled bool
}

func LoadConfig(cfg config.Config) Config {
	return Config{
		ServiceName:          firstNonEmpty(cfg.AppName, "invoicedesk"),
		Environment:          env("DEPLOYMENT_ENV").or(cfg.Environment),
		Version:              env("SERVICE_VERSION").or(cfg.AppVersion),
		LogLevel:             strings.ToLower(env("LOG_LEVEL").or("info")),
		LogFormat:            strings.ToLower(env("LOG_FORMAT").or("json")),
		OtelEnabled:          env("OTEL_ENABLED").boolean(false),
		OtelExporterEndpoint: env("OTEL_EXPORTER_OTLP_ENDPOINT").or(cfg.OTLPEndpoint),
		OtelExporterProtocol: exporterProtocol(),
		OtelSamplingRatio:    clampRatio(env("OTEL_SAMPLING_RATIO").float(0.1)),
		PrometheusEnabled:    env("PROMETHEUS_ENABLED").boolean(true),
	}
}

// Debug reports whether verbose logging and stack traces are wanted.
func (c Config) Debug() bool {
	if strings.EqualFold(strings.TrimSpace(c.LogLevel), "debug") {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(c.Environment)) {
	case "dev", "development", "local", "test":
		return true
	}
	return false
}

// exporterProtocol prefers the traces-specific variable and only accepts
// grpc or http (http/protobuf counts as http).
func exporterProtocol() string {
	raw := env("OTEL_EXPORTER_OTLP_TRACES_PROTOCOL").or(env("OTEL_EXPORTER_OTLP_PROTOCOL").or(ProtocolGRPC))
	if strings.HasPrefix(strings.ToLower(raw), ProtocolHTTP) {
		return ProtocolHTTP
	}
	return ProtocolGRPC
}

func clampRatio(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

type envValue string

func env(key string) envValue {
	return envValue(strings.TrimSpace(os.Getenv(key)))
}

func (v envValue) or(def string) string {
	return firstNonEmpty(string(v), def)
}

func (v envValue) boolean(def bool) bool {
	switch strings.ToLower(string(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	}
	return def
}

func (v envValue) float(def float64) float64 {
	parsed, err := strconv.ParseFloat(string(v), 64)
	if err != nil {
		return def
	}
	return parsed
}
