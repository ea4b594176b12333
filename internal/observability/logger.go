package observability

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"go.opentelemetry.io/otel/trace"
)

const (
	attrTraceID = "trace_id"
	attrSpanID  = "span_id"
	attrService = "service"
	attrEnv     = "env"
	attrMode    = "mode"
)

// NewLogger builds the process logger writing to w: JSON or text, wrapped in
// a TracingHandler.
func NewLogger(cfg Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}

	var inner slog.Handler
	if cfg.LogJSON {
		inner = slog.NewJSONHandler(w, opts)
	} else {
		inner = slog.NewTextHandler(w, opts)
	}

	return slog.New(NewTracingHandler(inner, cfg.ServiceName, cfg.Environment, cfg.Mode))
}

// TracingHandler stamps log records with the service metadata and, when the
// context carries a valid span, its trace_id and span_id. All of these stay
// top-level: groups opened with WithGroup only hold the caller's own attrs.
type TracingHandler struct {
	// root is the wrapped handler with service metadata applied.
	root slog.Handler
	// scoped is root with chain applied; it serves records without a span.
	scoped slog.Handler
	chain  []scope
}

// scope is one WithAttrs or WithGroup call, kept so it can be replayed
// beneath the span attrs.
type scope struct {
	group string
	attrs []slog.Attr
}

func (s scope) apply(h slog.Handler) slog.Handler {
	if s.group != "" {
		return h.WithGroup(s.group)
	}

	return h.WithAttrs(s.attrs)
}

// NewTracingHandler wraps inner. env is omitted when empty.
func NewTracingHandler(inner slog.Handler, service, env string, mode AppMode) *TracingHandler {
	meta := []slog.Attr{slog.String(attrService, service), slog.String(attrMode, string(mode))}
	if env != "" {
		meta = append(meta, slog.String(attrEnv, env))
	}

	root := inner.WithAttrs(meta)

	return &TracingHandler{root: root, scoped: root}
}

// Enabled reports whether records at level reach the wrapped handler.
func (th *TracingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return th.scoped.Enabled(ctx, level)
}

// Handle writes record, adding span attrs ahead of any open groups.
func (th *TracingHandler) Handle(ctx context.Context, record slog.Record) error {
	target := th.scoped

	if span := spanAttrs(ctx); span != nil {
		if len(th.chain) == 0 {
			record.AddAttrs(span...)
		} else {
			target = th.root.WithAttrs(span)
			for _, s := range th.chain {
				target = s.apply(target)
			}
		}
	}

	if err := target.Handle(ctx, record); err != nil {
		return fmt.Errorf("log %q: %w", record.Message, err)
	}

	return nil
}

// WithAttrs returns a handler that also writes attrs.
func (th *TracingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return th
	}

	return th.extend(scope{attrs: attrs})
}

// WithGroup returns a handler that nests later attrs under name.
func (th *TracingHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return th
	}

	return th.extend(scope{group: name})
}

func (th *TracingHandler) extend(s scope) *TracingHandler {
	return &TracingHandler{
		root:   th.root,
		scoped: s.apply(th.scoped),
		chain:  append(slices.Clip(th.chain), s),
	}
}

// spanAttrs returns the trace attrs of the span in ctx, or nil.
func spanAttrs(ctx context.Context) []slog.Attr {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return nil
	}

	return []slog.Attr{
		slog.String(attrTraceID, sc.TraceID().String()),
		slog.String(attrSpanID, sc.SpanID().String()),
	}
}
