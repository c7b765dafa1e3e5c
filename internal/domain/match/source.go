package match

import "context"

// LiveSource reads the live feed.
type LiveSource interface {
	FetchLiveMatches(ctx context.Context) ([]LiveMatch, error)
	FetchLiveMatch(ctx context.Context, id ID) (LiveMatch, error)
}

// ScheduleSource reads the schedule feed.
type ScheduleSource interface {
	FetchSchedules(ctx context.Context) ([]ScheduleMatch, error)
}
