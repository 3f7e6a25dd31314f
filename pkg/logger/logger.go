// Package logger provides a slog.Handler that enriches records with values
// carried by the request context.
package logger

import (
	"context"
	"log/slog"

	"github.com/abgdnv/shopease/pkg/web/ctxkeys"
	"go.opentelemetry.io/otel/trace"
)

// Extractor returns the attributes ctx contributes to a record, if any.
type Extractor func(ctx context.Context) []slog.Attr

// ContextHandler runs its extractors on every record before delegating.
type ContextHandler struct {
	slog.Handler
	extractors []Extractor
}

// NewContextHandler wraps handler. Without extractors, the trace, request and
// session identifiers are attached.
func NewContextHandler(handler slog.Handler, extractors ...Extractor) *ContextHandler {
	if len(extractors) == 0 {
		extractors = []Extractor{TraceID, RequestID, SessionID}
	}
	return &ContextHandler{Handler: handler, extractors: extractors}
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, extract := range h.extractors {
		r.AddAttrs(extract(ctx)...)
	}
	return h.Handler.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{Handler: h.Handler.WithAttrs(attrs), extractors: h.extractors}
}

func (h *ContextHandler) WithGroup(group string) slog.Handler {
	return &ContextHandler{Handler: h.Handler.WithGroup(group), extractors: h.extractors}
}

// TraceID extracts the id of a valid span.
func TraceID(ctx context.Context) []slog.Attr {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return nil
	}
	return []slog.Attr{slog.String("trace_id", sc.TraceID().String())}
}

func RequestID(ctx context.Context) []slog.Attr {
	if id, ok := ctxkeys.RequestID(ctx); ok && id != "" {
		return []slog.Attr{slog.String("request_id", id)}
	}
	return nil
}

func SessionID(ctx context.Context) []slog.Attr {
	if id, ok := ctxkeys.SessionID(ctx); ok {
		return []slog.Attr{slog.String("session_id", id)}
	}
	return nil
}
