package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_KeyValueFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := FromZap(zap.New(core))

	logger.With("game_id", int64(42)).Warn("decode failed", "error", errors.New("bad json"), "dangling")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if got := fields["game_id"]; got != int64(42) {
		t.Fatalf("unexpected game_id field: %v", got)
	}
	if got := fields["error"]; got != "bad json" {
		t.Fatalf("unexpected error field: %v", got)
	}
	if _, ok := fields["dangling"]; !ok {
		t.Fatalf("expected dangling key to be kept with nil value")
	}
}

func TestLogger_NilReceiverFallsBackToDefault(t *testing.T) {
	var logger *Logger
	logger.Info("no panic")
	logger.With("k", "v").Error("still no panic")
}

func TestNew_WritesJSONAtLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(LevelWarn, &buf)

	logger.Info("hidden")
	logger.Warn("shown", "component", "clock")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info entry should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, `"msg":"shown"`) || !strings.Contains(out, `"component":"clock"`) {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in    string
		want  Level
		known bool
	}{
		{in: "debug", want: LevelDebug, known: true},
		{in: " INFO ", want: LevelInfo, known: true},
		{in: "", want: LevelInfo, known: true},
		{in: "warning", want: LevelWarn, known: true},
		{in: "error", want: LevelError, known: true},
		{in: "verbose", want: LevelInfo, known: false},
	}
	for _, tt := range tests {
		got, known := ParseLevel(tt.in)
		if got != tt.want || known != tt.known {
			t.Fatalf("ParseLevel(%q)=(%s,%v) want=(%s,%v)", tt.in, got, known, tt.want, tt.known)
		}
	}
}

func TestLogger_ForGameTagsEntries(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := FromZap(zap.New(core)).ForGame(2024)

	logger.Info("session attached")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["game_id"]; got != int64(2024) {
		t.Fatalf("unexpected game_id field: %v", got)
	}
}
