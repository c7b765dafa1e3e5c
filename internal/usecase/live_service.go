package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/cricket-live/internal/domain/match"
	"github.com/riskibarqy/cricket-live/internal/platform/cache"
	"github.com/riskibarqy/cricket-live/internal/platform/logging"
)

const (
	DefaultLiveListInterval  = 30 * time.Second
	DefaultLiveMatchInterval = 10 * time.Second
)

type LiveServiceConfig struct {
	ListInterval  time.Duration
	MatchInterval time.Duration
}

// LiveService serves the live feed through the shared store.
type LiveService struct {
	source        match.LiveSource
	store         *cache.Store
	poller        *cache.Poller
	logger        *logging.Logger
	listInterval  time.Duration
	matchInterval time.Duration
}

func NewLiveService(source match.LiveSource, store *cache.Store, poller *cache.Poller, logger *logging.Logger, cfg LiveServiceConfig) *LiveService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.ListInterval <= 0 {
		cfg.ListInterval = DefaultLiveListInterval
	}
	if cfg.MatchInterval <= 0 {
		cfg.MatchInterval = DefaultLiveMatchInterval
	}

	return &LiveService{
		source:        source,
		store:         store,
		poller:        poller,
		logger:        logger,
		listInterval:  cfg.ListInterval,
		matchInterval: cfg.MatchInterval,
	}
}

type listLiveOptions struct {
	interval time.Duration
}

type ListLiveOption func(*listLiveOptions)

// WithRefreshInterval overrides how long a live list stays fresh.
func WithRefreshInterval(d time.Duration) ListLiveOption {
	return func(o *listLiveOptions) {
		if d > 0 {
			o.interval = d
		}
	}
}

// ListLive returns every match currently in progress. It never fails: a
// transport error is logged and reported as an empty list.
func (s *LiveService) ListLive(ctx context.Context, opts ...ListLiveOption) []match.LiveMatch {
	ctx, span := startUsecaseSpan(ctx, "usecase.LiveService.ListLive")
	defer span.End()

	options := listLiveOptions{interval: s.listInterval}
	for _, opt := range opts {
		opt(&options)
	}

	v, err := s.store.GetOrLoad(ctx, LiveMatchesKey, options.interval, s.loadLiveMatches)
	if err != nil {
		return []match.LiveMatch{}
	}

	items, _ := v.([]match.LiveMatch)
	return append(make([]match.LiveMatch, 0, len(items)), items...)
}

// WatchLiveList keeps the live list warm until the returned func is called.
func (s *LiveService) WatchLiveList() (func(), error) {
	if s.poller == nil {
		return nil, fmt.Errorf("poller is not configured")
	}
	return s.poller.Register(LiveMatchesKey, s.listInterval, s.loadLiveMatches)
}

func (s *LiveService) loadLiveMatches(ctx context.Context) (any, error) {
	items, err := s.source.FetchLiveMatches(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		s.logger.WarnContext(ctx, "fetch live matches failed, serving empty list", "error", err)
		return []match.LiveMatch{}, nil
	}
	if items == nil {
		items = []match.LiveMatch{}
	}
	return items, nil
}

// GetLive returns the live record for id. A malformed id disables the read:
// nothing is fetched and the result is (zero, false, nil).
func (s *LiveService) GetLive(ctx context.Context, id match.ID) (match.LiveMatch, bool, error) {
	if !id.Valid() {
		return match.LiveMatch{}, false, nil
	}

	ctx, span := startUsecaseSpan(ctx, "usecase.LiveService.GetLive", matchIDAttr(id))
	defer span.End()

	v, err := s.store.GetOrLoad(ctx, LiveMatchKey(id), s.matchInterval, s.liveMatchLoader(id))
	if err != nil {
		return match.LiveMatch{}, false, fmt.Errorf("get live match_id=%d: %w", id, err)
	}

	item, ok := v.(match.LiveMatch)
	if !ok {
		return match.LiveMatch{}, false, fmt.Errorf("unexpected cached live match type %T", v)
	}
	return item, true, nil
}

// WatchLive polls the live record for id every match interval until the
// returned func is called. Releasing the last watcher drops the key, so a
// response still in flight is discarded.
func (s *LiveService) WatchLive(id match.ID) (func(), error) {
	if !id.Valid() {
		return nil, fmt.Errorf("%w: match id must be greater than zero", ErrInvalidInput)
	}
	if s.poller == nil {
		return nil, fmt.Errorf("poller is not configured")
	}
	return s.poller.Register(LiveMatchKey(id), s.matchInterval, s.liveMatchLoader(id))
}

func (s *LiveService) liveMatchLoader(id match.ID) cache.Loader {
	return func(ctx context.Context) (any, error) {
		item, err := s.source.FetchLiveMatch(ctx, id)
		if err != nil {
			return nil, err
		}
		return item, nil
	}
}
