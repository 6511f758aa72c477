package observability

import (
	"context"
	"testing"

	"github.com/riskibarqy/matchday/internal/config"
	"github.com/riskibarqy/matchday/internal/platform/logging"
)

func TestInitUptrace_ReturnsBaseLoggerWhenOff(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
	}{
		{
			name: "disabled",
			cfg:  config.Config{UptraceEnabled: false, UptraceLogsEnabled: true, ServiceName: "matchday-core"},
		},
		{
			name: "enabled without dsn",
			cfg:  config.Config{UptraceEnabled: true, UptraceDSN: "  ", UptraceLogsEnabled: true, ServiceName: "matchday-core"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := logging.NewNop()
			logger, shutdown, err := InitUptrace(tt.cfg, base)
			if err != nil {
				t.Fatalf("init uptrace: %v", err)
			}
			if logger != base {
				t.Fatalf("expected the base logger back, log export must stay off")
			}
			if err := shutdown(context.Background()); err != nil {
				t.Fatalf("shutdown uptrace: %v", err)
			}
		})
	}
}

func TestInitUptrace_NilLoggerUsesDefault(t *testing.T) {
	logger, _, err := InitUptrace(config.Config{}, nil)
	if err != nil {
		t.Fatalf("init uptrace: %v", err)
	}
	if logger != logging.Default() {
		t.Fatalf("expected default logger when none is passed")
	}
}
