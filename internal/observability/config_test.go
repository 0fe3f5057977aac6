package observability

import (
	"testing"

	"github.com/smallbiznis/tapledger/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig(config.Config{Environment: "development"})

	assert.Equal(t, "tapledger", cfg.ServiceName)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "grpc", cfg.OtelExporterProtocol)
	assert.False(t, cfg.OtelEnabled)
	assert.True(t, cfg.Debug())
}

func TestLoadConfigNormalises(t *testing.T) {
	cfg := LoadConfig(config.Config{
		AppName:     "bar",
		Environment: "production",
		Observability: config.ObservabilityConfig{
			LogLevel:          "WARN",
			LogFormat:         "Console",
			OtelEnabled:       true,
			OtelProtocol:      "http/protobuf",
			OtelSamplingRatio: 3,
		},
	})

	assert.Equal(t, "bar", cfg.ServiceName)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Equal(t, "http", cfg.OtelExporterProtocol)
	assert.True(t, cfg.OtelEnabled)
	assert.InDelta(t, 1.0, cfg.OtelSamplingRatio, 1e-9)
	assert.False(t, cfg.Debug())
}
