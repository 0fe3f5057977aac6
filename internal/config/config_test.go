package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadObservabilityFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("OTEL_ENABLED", "yes")
	t.Setenv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc")
	t.Setenv("OTEL_EXPORTER_OTLP_TRACES_PROTOCOL", "http")
	t.Setenv("OTEL_SAMPLING_RATIO", "0.5")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4318")

	cfg := Load()

	assert.Equal(t, "debug", cfg.Observability.LogLevel)
	assert.True(t, cfg.Observability.OtelEnabled)
	assert.Equal(t, "http", cfg.Observability.OtelProtocol)
	assert.InDelta(t, 0.5, cfg.Observability.OtelSamplingRatio, 1e-9)
	assert.Equal(t, "collector:4318", cfg.OTLPEndpoint)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_TYPE", "")
	t.Setenv("DEPLOYMENT_ENV", "")
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("ORDER_RATE_LIMIT_BURST", "not-a-number")

	cfg := Load()

	assert.Equal(t, "postgres", cfg.DBType)
	assert.Equal(t, 5, cfg.OrderRateLimit.Burst)
	assert.False(t, cfg.IsProduction())
}
