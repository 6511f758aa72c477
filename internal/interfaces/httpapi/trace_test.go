package httpapi

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/trace"
)

func TestShouldCreateHTTPAPISpan(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{name: "handler span", in: "httpapi.Handler.AttachSession", want: true},
		{name: "stream handler span", in: "httpapi.Handler.StreamSessionNotifications", want: true},
		{name: "middleware span", in: "httpapi.RequestLogging", want: false},
		{name: "helper span", in: "httpapi.writeError", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := shouldCreateHTTPAPISpan(tt.in)
			if got != tt.want {
				t.Fatalf("shouldCreateHTTPAPISpan(%q)=%v want=%v", tt.in, got, tt.want)
			}
		})
	}
}

func TestStartSpan_WithoutParentIsNoop(t *testing.T) {
	ctx, span := startSpan(context.Background(), "httpapi.Handler.GetSessionView")
	defer span.End()

	if span.SpanContext().IsValid() {
		t.Fatalf("expected no span without a request parent")
	}
	if trace.SpanFromContext(ctx).SpanContext().IsValid() {
		t.Fatalf("context should not carry a span")
	}

	// Tagging and error recording on a noop span must be harmless.
	tagGame(ctx, 42)
	recordSpanError(ctx, errors.New("boom"), 503)
}
