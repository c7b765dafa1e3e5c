package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/cricket-live/internal/domain/match"
	"github.com/riskibarqy/cricket-live/internal/platform/cache"
	"github.com/riskibarqy/cricket-live/internal/platform/logging"
)

// ScheduleService serves the schedule feed. Schedules are fetched once and
// kept until InvalidateSchedules is called.
type ScheduleService struct {
	source match.ScheduleSource
	store  *cache.Store
	logger *logging.Logger
}

func NewScheduleService(source match.ScheduleSource, store *cache.Store, logger *logging.Logger) *ScheduleService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ScheduleService{
		source: source,
		store:  store,
		logger: logger,
	}
}

func (s *ScheduleService) ListSchedules(ctx context.Context) ([]match.ScheduleMatch, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScheduleService.ListSchedules")
	defer span.End()

	v, err := s.store.GetOrLoad(ctx, SchedulesKey, 0, func(ctx context.Context) (any, error) {
		items, err := s.source.FetchSchedules(ctx)
		if err != nil {
			return nil, err
		}
		if items == nil {
			items = []match.ScheduleMatch{}
		}
		s.logger.DebugContext(ctx, "schedules loaded", "count", len(items))
		return items, nil
	})
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}

	items, _ := v.([]match.ScheduleMatch)
	return append(make([]match.ScheduleMatch, 0, len(items)), items...), nil
}

// InvalidateSchedules forces the next read to go to the backend. Every
// reconciled view derived from the schedule is invalidated with it.
func (s *ScheduleService) InvalidateSchedules(ctx context.Context) {
	s.store.Invalidate(ctx, SchedulesKey)
}
