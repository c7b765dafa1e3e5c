package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/riskibarqy/cricket-live/external/cricketapi"
	"github.com/riskibarqy/cricket-live/internal/config"
	"github.com/riskibarqy/cricket-live/internal/domain/match"
	"github.com/riskibarqy/cricket-live/internal/infrastructure/source/memory"
	"github.com/riskibarqy/cricket-live/internal/interfaces/httpapi"
	"github.com/riskibarqy/cricket-live/internal/platform/cache"
	"github.com/riskibarqy/cricket-live/internal/platform/logging"
	"github.com/riskibarqy/cricket-live/internal/platform/resilience"
	"github.com/riskibarqy/cricket-live/internal/usecase"
)

// App owns the HTTP server and the background refresh machinery behind it.
type App struct {
	Server *http.Server

	logger      *logging.Logger
	services    *Services
	releaseList func()
}

type sources struct {
	live      match.LiveSource
	schedules match.ScheduleSource
}

func newSources(cfg config.Config, logger *logging.Logger) (sources, error) {
	switch cfg.CricketSource {
	case config.SourceMemory:
		now := time.Now().UTC()
		live := memory.SeedLive(now)
		src := memory.NewSource(live, memory.SeedSchedules(now))
		logger.Info("cricket source ready", "source", cfg.CricketSource, "live", len(live))
		return sources{live: src, schedules: src}, nil
	case config.SourceHTTP:
		client := cricketapi.NewClient(cricketapi.ClientConfig{
			BaseURL:      cfg.CricketAPIBaseURL,
			Token:        cfg.CricketAPIToken,
			Timeout:      cfg.CricketAPITimeout,
			MaxRetries:   cfg.CricketAPIMaxRetries,
			RetryBackoff: cfg.CricketAPIRetryBackoff,
			Logger:       logger.Named("cricketapi"),
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.CricketCircuitEnabled,
				FailureThreshold: cfg.CricketCircuitFailureCount,
				OpenTimeout:      cfg.CricketCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.CricketCircuitHalfOpenMaxReq,
			},
		})
		logger.Info("cricket source ready", "source", cfg.CricketSource, "base_url", cfg.CricketAPIBaseURL)
		return sources{live: client, schedules: client}, nil
	default:
		return sources{}, fmt.Errorf("unsupported cricket source %q", cfg.CricketSource)
	}
}

// Services is the accessor graph shared by the HTTP server and the CLI.
type Services struct {
	Live      *usecase.LiveService
	Schedules *usecase.ScheduleService
	Matches   *usecase.MatchService
	Poller    *cache.Poller
}

// NewServices builds the configured source, the cache substrate and the
// three accessors on top of it. Close releases the poller.
func NewServices(cfg config.Config, logger *logging.Logger) (*Services, error) {
	if logger == nil {
		logger = logging.Default()
	}

	src, err := newSources(cfg, logger)
	if err != nil {
		return nil, err
	}

	store := cache.NewStore(cache.WithLoadTimeout(cfg.CacheLoadTimeout))
	poller, err := cache.NewPoller(store, cfg.PollerWorkers, logger.Named("poller"))
	if err != nil {
		return nil, fmt.Errorf("build poller: %w", err)
	}

	live := usecase.NewLiveService(src.live, store, poller, logger, usecase.LiveServiceConfig{
		ListInterval:  cfg.LiveListRefreshInterval,
		MatchInterval: cfg.LiveMatchRefreshInterval,
	})
	schedules := usecase.NewScheduleService(src.schedules, store, logger)

	return &Services{
		Live:      live,
		Schedules: schedules,
		Matches:   usecase.NewMatchService(live, schedules, store, logger, cfg.MatchRefreshInterval),
		Poller:    poller,
	}, nil
}

func (s *Services) Close() {
	s.Poller.Close()
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	svc, err := NewServices(cfg, logger)
	if err != nil {
		return nil, err
	}

	releaseList := func() {}
	if cfg.LiveListPollEnabled {
		release, err := svc.Live.WatchLiveList()
		if err != nil {
			svc.Close()
			return nil, fmt.Errorf("start live list polling: %w", err)
		}
		releaseList = release
	}

	handler := httpapi.NewHandler(svc.Live, svc.Schedules, svc.Matches, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins)

	return &App{
		Server: &http.Server{
			Addr:         cfg.HTTPAddr,
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		logger:      logger,
		services:    svc,
		releaseList: releaseList,
	}, nil
}

// Shutdown drains the HTTP server first so no handler registers new polls,
// then stops every poll.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.Server.Shutdown(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		// streams are long-lived; cut them once the grace period is over
		err = errors.Join(err, a.Server.Close())
	}

	a.releaseList()
	a.services.Close()
	a.logger.Info("pollers stopped")
	return err
}
