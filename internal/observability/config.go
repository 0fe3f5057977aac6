package observability

import (
	"strings"

	"github.com/smallbiznis/tapledger/internal/config"
)

// Config is the normalised view of the observability settings shared by the
// logger, tracer and meter providers.
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
}

const (
	protocolGRPC = "grpc"
	protocolHTTP = "http"
)

// LoadConfig derives the observability config from the application config.
// Unknown protocols fall back to grpc and the sampling ratio is clamped to
// [0, 1].
func LoadConfig(cfg config.Config) Config {
	serviceName := strings.TrimSpace(cfg.AppName)
	if serviceName == "" {
		serviceName = "tapledger"
	}
	obs := cfg.Observability

	logLevel := strings.ToLower(strings.TrimSpace(obs.LogLevel))
	if logLevel == "" {
		logLevel = "info"
	}
	logFormat := strings.ToLower(strings.TrimSpace(obs.LogFormat))
	if logFormat != "console" {
		logFormat = "json"
	}

	protocol := strings.ToLower(strings.TrimSpace(obs.OtelProtocol))
	switch protocol {
	case "http/protobuf", "http/json":
		protocol = protocolHTTP
	case protocolHTTP, protocolGRPC:
	default:
		protocol = protocolGRPC
	}

	ratio := obs.OtelSamplingRatio
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}

	return Config{
		ServiceName:          serviceName,
		Environment:          strings.TrimSpace(cfg.Environment),
		Version:              strings.TrimSpace(cfg.AppVersion),
		LogLevel:             logLevel,
		LogFormat:            logFormat,
		OtelEnabled:          obs.OtelEnabled,
		OtelExporterEndpoint: strings.TrimSpace(cfg.OTLPEndpoint),
		OtelExporterProtocol: protocol,
		OtelSamplingRatio:    ratio,
	}
}

// Debug reports whether verbose request logging and error stacks are on.
func (c Config) Debug() bool {
	if c.LogLevel == "debug" {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(c.Environment)) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}
