package observability

import (
	"context"
	"errors"
	"sync"
	"testing"

	otellog "go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/embedded"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type recordingOTelLogger struct {
	embedded.Logger

	mu      sync.Mutex
	records []otellog.Record
}

func (r *recordingOTelLogger) Emit(_ context.Context, record otellog.Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, record.Clone())
}

func (r *recordingOTelLogger) Enabled(context.Context, otellog.EnabledParameters) bool {
	return true
}

func recordAttributes(record otellog.Record) map[string]otellog.Value {
	out := make(map[string]otellog.Value)
	record.WalkAttributes(func(kv otellog.KeyValue) bool {
		out[kv.Key] = kv.Value
		return true
	})
	return out
}

func TestOTelLogCore_EmitsRecordWithFields(t *testing.T) {
	recorder := &recordingOTelLogger{}
	core := &otelLogCore{LevelEnabler: zapcore.InfoLevel, logger: recorder}
	logger := zap.New(core).With(zap.Int64("game_id", 2024))

	logger.Debug("filtered out")
	logger.Warn("stream closed, reopening", zap.String("stream", "events"), zap.Error(errors.New("eof")))

	if len(recorder.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recorder.records))
	}
	record := recorder.records[0]
	if record.Severity() != otellog.SeverityWarn {
		t.Fatalf("unexpected severity: %v", record.Severity())
	}
	if record.Body().AsString() != "stream closed, reopening" {
		t.Fatalf("unexpected body: %q", record.Body().AsString())
	}

	attrs := recordAttributes(record)
	if attrs["game_id"].AsInt64() != 2024 {
		t.Fatalf("expected inherited game_id attribute, got %v", attrs["game_id"])
	}
	if attrs["stream"].AsString() != "events" {
		t.Fatalf("unexpected stream attribute: %v", attrs["stream"])
	}
	if attrs["error"].AsString() != "eof" {
		t.Fatalf("unexpected error attribute: %v", attrs["error"])
	}
}

func TestShouldSkipUptraceLog(t *testing.T) {
	if !shouldSkipUptraceLog("http request", map[string]any{"path": "/healthz"}) {
		t.Fatalf("expected health check log to be skipped")
	}
	if shouldSkipUptraceLog("http request", map[string]any{"path": "/v1/sessions/1/view"}) {
		t.Fatalf("did not expect non-health log to be skipped")
	}
	if shouldSkipUptraceLog("session attached", map[string]any{"path": "/healthz"}) {
		t.Fatalf("did not expect non-request event to be skipped")
	}
}

func TestBuildOTelLogAttributes(t *testing.T) {
	attrs := buildOTelLogAttributes(map[string]any{"game_id": int64(7), "attempt": 2, "payload": nil})
	if len(attrs) != 3 {
		t.Fatalf("expected 3 attributes, got %d", len(attrs))
	}
	// Keys come out sorted.
	if attrs[0].Key != "attempt" || attrs[0].Value.AsInt64() != 2 {
		t.Fatalf("unexpected attempt attribute")
	}
	if attrs[1].Key != "game_id" || attrs[1].Value.AsInt64() != 7 {
		t.Fatalf("unexpected game_id attribute")
	}
	if attrs[2].Key != "payload" || attrs[2].Value.Kind() != otellog.KindEmpty {
		t.Fatalf("unexpected payload attribute")
	}
}

func TestToOTelLogValue_Map(t *testing.T) {
	v := toOTelLogValue(map[string]any{
		"home_score": 2,
		"live":       true,
	}, 0)
	if v.Kind() != otellog.KindMap {
		t.Fatalf("expected map value, got %s", v.Kind())
	}
	items := v.AsMap()
	if len(items) != 2 {
		t.Fatalf("expected 2 map items, got %d", len(items))
	}
}
