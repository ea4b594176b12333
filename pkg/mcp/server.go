// Package mcp implements a Model Context Protocol server exposing locdiff
// counting and revision diffs as MCP tools over stdio transport.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/locdiff/internal/observability"
	"github.com/Sumatoshi-tech/locdiff/pkg/languages"
	"github.com/Sumatoshi-tech/locdiff/pkg/version"
)

const (
	serverName = "locdiff"

	// opPrefix names spans and metric ops after the tool, e.g. mcp.locdiff_count.
	opPrefix = "mcp."

	traceIDMetaKey = "trace_id"
)

// ServerDeps holds injectable dependencies for the MCP server.
// Zero-value fields use production defaults.
type ServerDeps struct {
	// Logger is an optional structured logger. Nil uses slog default.
	Logger *slog.Logger

	// Metrics is an optional RED metrics recorder. Nil disables per-tool metrics.
	Metrics *observability.REDMetrics

	// Analysis records snapshot and diff metrics for locdiff_diff calls.
	Analysis *observability.AnalysisMetrics

	// Tracer is an optional OTel tracer for per-tool-call spans. Nil disables tracing.
	Tracer trace.Tracer

	// Registry resolves grammars. Nil uses languages.Default.
	Registry *languages.Registry
}

// Server wraps the MCP SDK server with the locdiff tool registrations.
// The tool set is fixed once NewServer returns.
type Server struct {
	inner   *mcpsdk.Server
	tools   []string
	metrics *observability.REDMetrics
	tracer  trace.Tracer
}

// toolHandler is the typed handler signature every locdiff tool implements.
type toolHandler[In any] func(context.Context, *mcpsdk.CallToolRequest, In) (*mcpsdk.CallToolResult, ToolOutput, error)

// NewServer creates a new MCP server with all locdiff tools registered.
func NewServer(deps ServerDeps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	registry := deps.Registry
	if registry == nil {
		registry = languages.Default()
	}

	srv := &Server{
		inner: mcpsdk.NewServer(
			&mcpsdk.Implementation{Name: serverName, Version: version.Version},
			&mcpsdk.ServerOptions{Logger: logger},
		),
		metrics: deps.Metrics,
		tracer:  deps.Tracer,
	}

	h := &handlers{
		registry: registry,
		logger:   logger,
		analysis: deps.Analysis,
		tracer:   deps.Tracer,
	}

	addTool(srv, ToolNameCount, countToolDescription, h.count)
	addTool(srv, ToolNameDiff, diffToolDescription, h.diff)

	return srv
}

// ListToolNames returns the sorted names of all registered tools.
func (s *Server) ListToolNames() []string {
	names := slices.Clone(s.tools)
	slices.Sort(names)

	return names
}

// Run serves over stdio until ctx is canceled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.RunWithTransport(ctx, &mcpsdk.StdioTransport{})
}

// RunWithTransport serves over transport.
func (s *Server) RunWithTransport(ctx context.Context, transport mcpsdk.Transport) error {
	err := s.inner.Run(ctx, transport)
	if err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}

	return nil
}

func addTool[In any](s *Server, name, description string, handler toolHandler[In]) {
	wrapped := instrument(s.tracer, s.metrics, name, handler)

	mcpsdk.AddTool(s.inner,
		&mcpsdk.Tool{Name: name, Description: description},
		mcpsdk.ToolHandlerFor[In, ToolOutput](wrapped))

	s.tools = append(s.tools, name)
}

// instrument wraps handler with a server span and RED metrics. A sampled span
// adds its trace id to the result content so clients can quote it.
func instrument[In any](
	tracer trace.Tracer,
	metrics *observability.REDMetrics,
	name string,
	handler toolHandler[In],
) toolHandler[In] {
	if tracer == nil && metrics == nil {
		return handler
	}

	op := opPrefix + name

	return func(ctx context.Context, req *mcpsdk.CallToolRequest, input In) (*mcpsdk.CallToolResult, ToolOutput, error) {
		if metrics != nil {
			done := metrics.TrackInflight(ctx, op)
			defer done()
		}

		var span trace.Span

		if tracer != nil {
			ctx, span = tracer.Start(ctx, op,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(attribute.String("mcp.tool", name)),
			)
			defer span.End()
		}

		start := time.Now()

		result, output, err := handler(ctx, req, input)

		failed := err != nil || (result != nil && result.IsError)

		if metrics != nil {
			status := observability.StatusOK
			if failed {
				status = observability.StatusError
			}

			metrics.RecordRequest(ctx, op, status, time.Since(start))
		}

		if span != nil {
			if failed {
				span.SetStatus(codes.Error, "tool call failed")
			}

			if sc := span.SpanContext(); sc.IsSampled() && result != nil {
				result.Content = append(result.Content,
					&mcpsdk.TextContent{Text: traceIDMetaKey + "=" + sc.TraceID().String()})
			}
		}

		return result, output, err
	}
}

const (
	countToolDescription = "Count code, comment, blank and mixed lines of inline source. " +
		"Accepts the code plus a language name or a file name used for detection. " +
		"Returns the totals and the class of every line."

	diffToolDescription = "Compare line counts between two revisions of a Git repository. " +
		"Accepts an absolute repository path and two revisions. " +
		"Returns added, modified, renamed and deleted files with per-language deltas."
)
