package httpapi

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const gameIDAttribute = "matchday.game_id"

var apiTracer = otel.Tracer("matchday/internal/interfaces/httpapi")
var noopSpan = trace.SpanFromContext(context.Background())

// startSpan opens a handler span under the request span. Health checks carry
// no request span and helpers are never traced on their own.
func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	parent := trace.SpanFromContext(ctx)
	if !parent.SpanContext().IsValid() || !shouldCreateHTTPAPISpan(name) {
		return ctx, noopSpan
	}
	return apiTracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func shouldCreateHTTPAPISpan(name string) bool {
	return strings.HasPrefix(name, "httpapi.Handler.")
}

// tagGame labels the active span with the game a request targets.
func tagGame(ctx context.Context, gameID int64) {
	trace.SpanFromContext(ctx).SetAttributes(attribute.Int64(gameIDAttribute, gameID))
}

// recordSpanError flags server-side failures only; 4xx answers are the
// client's problem and leave the span status unset.
func recordSpanError(ctx context.Context, err error, httpStatus int) {
	if httpStatus < 500 {
		return
	}
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
