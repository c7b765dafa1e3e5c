package usecase

import (
	"context"

	"github.com/riskibarqy/cricket-live/internal/domain/match"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var usecaseTracer = otel.Tracer("cricket-live/internal/usecase")

// startUsecaseSpan only opens a child span. Background work such as poller
// refreshes has no parent and stays untraced.
func startUsecaseSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	parent := trace.SpanFromContext(ctx)
	if !parent.SpanContext().IsValid() {
		return ctx, parent
	}
	return usecaseTracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func matchIDAttr(id match.ID) attribute.KeyValue {
	return attribute.Int64("cricket.match_id", int64(id))
}
