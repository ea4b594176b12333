package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/metric"

	"github.com/Sumatoshi-tech/locdiff/internal/config"
	"github.com/Sumatoshi-tech/locdiff/internal/observability"
	"github.com/Sumatoshi-tech/locdiff/pkg/mcp"
	"github.com/Sumatoshi-tech/locdiff/pkg/version"
)

const (
	metricsPath              = "/metrics"
	metricsReadHeaderTimeout = 5 * time.Second
	meterName                = "locdiff"
)

// NewMCPCommand creates the MCP server command.
func NewMCPCommand(opts *GlobalOptions) *cobra.Command {
	var (
		debug       bool
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for AI agent integration",
		Long: `Start a Model Context Protocol (MCP) server on stdio transport.

The MCP server exposes locdiff as tools that AI agents can discover and invoke:
  - locdiff_count: classify inline source code line by line
  - locdiff_diff: compare line counts between two revisions of a repository`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMCP(cmd, opts, debug, metricsAddr)
		},
	}

	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging to stderr")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9464)")

	return cmd
}

func runMCP(cmd *cobra.Command, opts *GlobalOptions, debug bool, metricsAddr string) error {
	cfg, err := config.LoadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	registry, err := cfg.Registry()
	if err != nil {
		return err
	}

	providers, err := initMCPObservability(debug)
	if err != nil {
		return err
	}

	defer func() {
		shutdownErr := providers.Shutdown(context.Background())
		if shutdownErr != nil {
			providers.Logger.Warn("observability shutdown failed", "error", shutdownErr)
		}
	}()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	meter := providers.Meter

	if metricsAddr != "" {
		promMeter, stop, promErr := serveMetrics(ctx, metricsAddr, providers.Logger)
		if promErr != nil {
			return promErr
		}
		defer stop()

		meter = promMeter
	}

	red, err := observability.NewREDMetrics(meter)
	if err != nil {
		return err
	}

	analysis, err := observability.NewAnalysisMetrics(meter)
	if err != nil {
		return err
	}

	srv := mcp.NewServer(mcp.ServerDeps{
		Logger:   providers.Logger,
		Metrics:  red,
		Analysis: analysis,
		Tracer:   providers.Tracer,
		Registry: registry,
	})

	return srv.Run(ctx)
}

func initMCPObservability(debug bool) (observability.Providers, error) {
	cfg := observability.ConfigFromEnv(observability.ModeMCP, version.Version)
	cfg.LogJSON = true

	if debug {
		cfg.LogLevel = slog.LevelDebug
		cfg.DebugTrace = true
	}

	return observability.Init(cfg)
}

// serveMetrics starts a /metrics endpoint and returns a meter whose
// instruments it exposes. stop shuts the listener down.
func serveMetrics(ctx context.Context, addr string, logger *slog.Logger) (metric.Meter, func(), error) {
	mp, handler, err := observability.NewPrometheusMeterProvider()
	if err != nil {
		return nil, nil, err
	}

	listener, err := (&net.ListenConfig{}).Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, nil, fmt.Errorf("listen %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle(metricsPath, handler)

	server := &http.Server{Handler: mux, ReadHeaderTimeout: metricsReadHeaderTimeout}

	go func() {
		serveErr := server.Serve(listener)
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			logger.Error("metrics server stopped", "error", serveErr)
		}
	}()

	logger.Info("serving metrics", "addr", listener.Addr().String(), "path", metricsPath)

	stop := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsReadHeaderTimeout)
		defer cancel()

		_ = server.Shutdown(shutdownCtx)
	}

	return mp.Meter(meterName), stop, nil
}
