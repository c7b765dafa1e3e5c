package observability

import (
	"context"
	"testing"

	"github.com/riskibarqy/cricket-live/internal/config"
	"github.com/riskibarqy/cricket-live/internal/platform/logging"
)

func TestInitUptrace_Disabled(t *testing.T) {
	cfg := config.Config{
		UptraceEnabled: false,
		ServiceName:    "cricket-live-api",
		ServiceVersion: "dev",
		AppEnv:         config.EnvDev,
	}

	shutdown, err := InitUptrace(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("init uptrace: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown uptrace: %v", err)
	}
}

func TestStart_AllDisabled(t *testing.T) {
	cfg := config.Config{
		ServiceName:    "cricket-live-api",
		ServiceVersion: "dev",
		AppEnv:         config.EnvDev,
	}

	stack, err := Start(context.Background(), cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("start observability: %v", err)
	}
	if stack.pprof != nil {
		t.Fatalf("expected no pprof server when disabled")
	}
	if err := stack.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown observability: %v", err)
	}
}

func TestStack_NilShutdown(t *testing.T) {
	var stack *Stack
	if err := stack.Shutdown(context.Background()); err != nil {
		t.Fatalf("nil stack shutdown: %v", err)
	}
}
