package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/riskibarqy/cricket-live/internal/domain/match"
	"github.com/riskibarqy/cricket-live/internal/usecase"
)

// Source serves both feeds from process memory. It backs local runs and
// demos when no cricket backend is reachable.
type Source struct {
	mu        sync.RWMutex
	live      map[match.ID]match.LiveMatch
	schedules []match.ScheduleMatch
}

var (
	_ match.LiveSource     = (*Source)(nil)
	_ match.ScheduleSource = (*Source)(nil)
)

func NewSource(live []match.LiveMatch, schedules []match.ScheduleMatch) *Source {
	liveByID := make(map[match.ID]match.LiveMatch, len(live))
	for _, item := range live {
		if item, ok := liveRecord(item); ok {
			liveByID[item.MatchID] = item
		}
	}

	return &Source{
		live:      liveByID,
		schedules: append([]match.ScheduleMatch(nil), schedules...),
	}
}

func (s *Source) FetchLiveMatches(ctx context.Context) ([]match.LiveMatch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]match.LiveMatch, 0, len(s.live))
	for _, item := range s.live {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MatchID < out[j].MatchID })
	return out, nil
}

func (s *Source) FetchLiveMatch(ctx context.Context, id match.ID) (match.LiveMatch, error) {
	if err := ctx.Err(); err != nil {
		return match.LiveMatch{}, err
	}
	if !id.Valid() {
		return match.LiveMatch{}, fmt.Errorf("%w: match id must be greater than zero", usecase.ErrInvalidInput)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.live[id]
	if !ok {
		return match.LiveMatch{}, fmt.Errorf("%w: match_id=%d is not live", usecase.ErrNotFound, id)
	}
	return item, nil
}

func (s *Source) FetchSchedules(ctx context.Context) ([]match.ScheduleMatch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]match.ScheduleMatch, 0, len(s.schedules))
	out = append(out, s.schedules...)
	return out, nil
}

// UpsertLive puts a match on the live feed or replaces its current record.
// A record whose status is no longer in play takes the match off the feed.
func (s *Source) UpsertLive(item match.LiveMatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := liveRecord(item)
	if !ok {
		delete(s.live, item.MatchID)
		return
	}
	s.live[item.MatchID] = item
}

func liveRecord(item match.LiveMatch) (match.LiveMatch, bool) {
	item.Status = match.NormalizeLiveStatus(item.Status)
	return item, match.IsLiveStatus(item.Status)
}

// EndLive takes a match off the live feed.
func (s *Source) EndLive(id match.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.live, id)
}
