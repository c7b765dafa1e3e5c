package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/riskibarqy/cricket-live/internal/config"
	"github.com/riskibarqy/cricket-live/internal/platform/logging"
	"github.com/riskibarqy/cricket-live/internal/usecase"
)

func memoryConfig() config.Config {
	return config.Config{
		AppEnv:                   config.EnvDev,
		HTTPAddr:                 ":0",
		CORSAllowedOrigins:       []string{"*"},
		CricketSource:            config.SourceMemory,
		LiveListRefreshInterval:  time.Hour,
		LiveListPollEnabled:      true,
		LiveMatchRefreshInterval: time.Hour,
		MatchRefreshInterval:     time.Hour,
		PollerWorkers:            2,
	}
}

func TestNew_MemorySource(t *testing.T) {
	a, err := New(memoryConfig(), logging.NewNop())
	if err != nil {
		t.Fatalf("build app: %v", err)
	}
	t.Cleanup(func() { _ = a.Shutdown(context.Background()) })

	if !a.services.Poller.Registered(usecase.LiveMatchesKey) {
		t.Fatalf("expected live list polling to be registered")
	}

	rec := httptest.NewRecorder()
	a.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/matches/live", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from live list, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{name: "empty addr", mutate: func(c *config.Config) { c.HTTPAddr = "" }},
		{name: "unknown source", mutate: func(c *config.Config) { c.CricketSource = "kafka" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := memoryConfig()
			tt.mutate(&cfg)
			if _, err := New(cfg, logging.NewNop()); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestShutdown_StopsPolling(t *testing.T) {
	a, err := New(memoryConfig(), logging.NewNop())
	if err != nil {
		t.Fatalf("build app: %v", err)
	}

	if err := a.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if a.services.Poller.Registered(usecase.LiveMatchesKey) {
		t.Fatalf("expected live list polling to stop on shutdown")
	}
}
