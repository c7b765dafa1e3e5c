package usecase

import (
	"context"
	"errors"
	"reflect"
	"time"

	"github.com/riskibarqy/cricket-live/internal/domain/match"
	"github.com/riskibarqy/cricket-live/internal/platform/cache"
	"github.com/riskibarqy/cricket-live/internal/platform/logging"
	"github.com/sourcegraph/conc"
)

const DefaultMatchInterval = 30 * time.Second

// Resolution is one reconciled answer for a match id.
//
// LiveErr and ScheduleErr report why a feed contributed nothing; they are
// informational and never turn the resolution into a failure. Resolving is
// only set on the placeholder Watch emits before the first answer exists.
type Resolution struct {
	MatchID     match.ID
	View        match.View
	LiveErr     error
	ScheduleErr error
	Resolving   bool
}

// MatchService picks, per match id, the live record when there is one and
// the schedule record otherwise.
type MatchService struct {
	live      *LiveService
	schedules *ScheduleService
	store     *cache.Store
	logger    *logging.Logger
	interval  time.Duration
}

func NewMatchService(live *LiveService, schedules *ScheduleService, store *cache.Store, logger *logging.Logger, interval time.Duration) *MatchService {
	if logger == nil {
		logger = logging.Default()
	}
	if interval <= 0 {
		interval = DefaultMatchInterval
	}
	return &MatchService{
		live:      live,
		schedules: schedules,
		store:     store,
		logger:    logger,
		interval:  interval,
	}
}

type resolveOptions struct {
	interval time.Duration
}

type ResolveOption func(*resolveOptions)

// WithMatchInterval overrides how long a reconciled view stays fresh.
func WithMatchInterval(d time.Duration) ResolveOption {
	return func(o *resolveOptions) {
		if d > 0 {
			o.interval = d
		}
	}
}

func (s *MatchService) options(opts []ResolveOption) resolveOptions {
	options := resolveOptions{interval: s.interval}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

// Resolve returns the reconciled view for id. A malformed id resolves to
// absent without touching either feed. A live failure falls back to the
// schedule; a schedule failure with no live record resolves to absent.
func (s *MatchService) Resolve(ctx context.Context, id match.ID, opts ...ResolveOption) Resolution {
	if !id.Valid() {
		return Resolution{MatchID: id, View: match.Absent()}
	}
	return s.resolve(ctx, id, s.options(opts))
}

func (s *MatchService) resolve(ctx context.Context, id match.ID, options resolveOptions) Resolution {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.Resolve", matchIDAttr(id))
	defer span.End()

	key := MatchKey(id)
	if v, ok := s.store.Get(ctx, key); ok {
		if cached, ok := v.(Resolution); ok {
			return cached
		}
	}

	var (
		live        *match.LiveMatch
		liveErr     error
		schedules   []match.ScheduleMatch
		scheduleErr error
	)

	var wg conc.WaitGroup
	wg.Go(func() {
		item, ok, err := s.live.GetLive(ctx, id)
		if err != nil {
			liveErr = err
			return
		}
		if ok {
			live = &item
		}
	})
	wg.Go(func() {
		schedules, scheduleErr = s.schedules.ListSchedules(ctx)
	})
	wg.Wait()

	if liveErr != nil {
		s.logger.DebugContext(ctx, "live read failed, falling back to schedule", "match_id", id, "error", liveErr)
	}
	if scheduleErr != nil {
		s.logger.WarnContext(ctx, "schedule read failed", "match_id", id, "error", scheduleErr)
	}

	out := Resolution{
		MatchID:     id,
		View:        match.Reconcile(id, live, schedules),
		LiveErr:     liveErr,
		ScheduleErr: scheduleErr,
	}

	// A read cut short by a caller's context says nothing about the match.
	if ctx.Err() == nil && !isContextErr(liveErr) && !isContextErr(scheduleErr) {
		s.store.Set(ctx, key, out, options.interval)
		s.store.DependsOn(key, LiveMatchKey(id), SchedulesKey)
	}
	return out
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// Watch streams resolutions for id until ctx is done. It polls the live
// record, re-resolves every match interval and whenever an upstream value
// changes, and only emits when the view differs from the last emission.
// A malformed id yields one absent resolution and a closed channel.
func (s *MatchService) Watch(ctx context.Context, id match.ID, opts ...ResolveOption) <-chan Resolution {
	out := make(chan Resolution, 1)
	if !id.Valid() {
		out <- Resolution{MatchID: id, View: match.Absent()}
		close(out)
		return out
	}

	go s.watch(ctx, id, s.options(opts), out)
	return out
}

func (s *MatchService) watch(ctx context.Context, id match.ID, options resolveOptions, out chan<- Resolution) {
	defer close(out)

	release, err := s.live.WatchLive(id)
	if err != nil {
		s.logger.WarnContext(ctx, "live polling not started", "match_id", id, "error", err)
	} else {
		defer release()
	}

	liveEvents, cancelLive := s.store.Subscribe(LiveMatchKey(id))
	defer cancelLive()
	scheduleEvents, cancelSchedules := s.store.Subscribe(SchedulesKey)
	defer cancelSchedules()

	var last Resolution
	emit := func(next Resolution) bool {
		select {
		case out <- next:
			last = next
			return true
		case <-ctx.Done():
			return false
		}
	}

	if v, ok := s.store.Get(ctx, MatchKey(id)); !ok {
		if !emit(Resolution{MatchID: id, View: match.Absent(), Resolving: true}) {
			return
		}
	} else if cached, ok := v.(Resolution); ok {
		if !emit(cached) {
			return
		}
	}

	ticker := time.NewTicker(options.interval)
	defer ticker.Stop()

	for {
		next := s.resolve(ctx, id, options)
		if ctx.Err() != nil {
			return
		}
		if changed(last, next) && !emit(next) {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-liveEvents:
			s.store.Invalidate(ctx, MatchKey(id))
		case <-scheduleEvents:
			s.store.Invalidate(ctx, MatchKey(id))
		}
	}
}

func changed(prev, next Resolution) bool {
	return prev.Resolving != next.Resolving ||
		prev.MatchID != next.MatchID ||
		!reflect.DeepEqual(prev.View, next.View)
}
