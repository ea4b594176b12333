// Package observability provides OpenTelemetry tracing and metrics plus the
// structured logger shared by the locdiff CLI and MCP server.
package observability

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// AppMode identifies how the binary was launched.
type AppMode string

const (
	// ModeCLI is a one-shot command run.
	ModeCLI AppMode = "cli"
	// ModeMCP is the MCP stdio server.
	ModeMCP AppMode = "mcp"
)

const (
	defaultServiceName     = "locdiff"
	defaultShutdownTimeout = 5 * time.Second
)

// Standard OTel environment variables.
const (
	envOTLPEndpoint     = "OTEL_EXPORTER_OTLP_ENDPOINT"
	envOTLPHeaders      = "OTEL_EXPORTER_OTLP_HEADERS"
	envOTLPInsecure     = "OTEL_EXPORTER_OTLP_INSECURE"
	envTracesSampler    = "OTEL_TRACES_SAMPLER"
	envTracesSamplerArg = "OTEL_TRACES_SAMPLER_ARG"
	envDeploymentEnv    = "LOCDIFF_ENV"
)

// Config holds all observability configuration.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	Mode           AppMode

	// OTLPEndpoint is the OTLP gRPC collector address. Empty disables export.
	OTLPEndpoint string
	OTLPHeaders  map[string]string
	OTLPInsecure bool

	// Sampler names an OTEL_TRACES_SAMPLER value. Empty samples every root span.
	Sampler string
	// SamplerRatio applies to the ratio based samplers.
	SamplerRatio float64

	// DebugTrace forces full sampling.
	DebugTrace bool

	LogLevel slog.Level
	LogJSON  bool

	ShutdownTimeout time.Duration
}

// DefaultConfig returns a Config for zero-config startup.
func DefaultConfig() Config {
	return Config{
		ServiceName:     defaultServiceName,
		Mode:            ModeCLI,
		SamplerRatio:    1,
		LogLevel:        slog.LevelInfo,
		ShutdownTimeout: defaultShutdownTimeout,
	}
}

// ConfigFromEnv returns DefaultConfig with exporter and sampler settings
// taken from the standard OTEL_* environment variables.
func ConfigFromEnv(mode AppMode, serviceVersion string) Config {
	cfg := DefaultConfig()
	cfg.Mode = mode
	cfg.ServiceVersion = serviceVersion
	cfg.Environment = os.Getenv(envDeploymentEnv)
	cfg.OTLPEndpoint = os.Getenv(envOTLPEndpoint)
	cfg.OTLPHeaders = ParseOTLPHeaders(os.Getenv(envOTLPHeaders))
	cfg.OTLPInsecure = os.Getenv(envOTLPInsecure) == "true"
	cfg.Sampler = os.Getenv(envTracesSampler)

	if ratio, err := strconv.ParseFloat(os.Getenv(envTracesSamplerArg), 64); err == nil {
		cfg.SamplerRatio = ratio
	}

	return cfg
}

// ParseOTLPHeaders parses "key=value,key=value". Returns nil when nothing parses.
func ParseOTLPHeaders(raw string) map[string]string {
	var headers map[string]string

	for pair := range strings.SplitSeq(raw, ",") {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}

		if headers == nil {
			headers = make(map[string]string)
		}

		headers[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}

	return headers
}
