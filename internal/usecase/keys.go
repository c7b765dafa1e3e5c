package usecase

import "github.com/riskibarqy/cricket-live/internal/domain/match"

// Cache keys shared by every accessor. They are part of the contract with
// anything that invalidates or watches the store.
const (
	LiveMatchesKey = "live-matches"
	SchedulesKey   = "schedules"

	liveMatchKeyPrefix = "live-match:"
	matchKeyPrefix     = "match:"
)

func LiveMatchKey(id match.ID) string {
	return liveMatchKeyPrefix + id.String()
}

func MatchKey(id match.ID) string {
	return matchKeyPrefix + id.String()
}
