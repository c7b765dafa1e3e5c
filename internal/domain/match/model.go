package match

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	StatusUpcoming  = "upcoming"
	StatusLive      = "live"
	StatusCompleted = "completed"
	StatusAbandoned = "abandoned"
)

// ID identifies a match across the live and schedule feeds. Only positive
// values are well-formed; the zero value means "no match selected".
type ID int64

func (id ID) Valid() bool {
	return id > 0
}

func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ParseID parses a base-10 match id and rejects non-positive values.
func ParseID(raw string) (ID, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return 0, fmt.Errorf("match id is empty")
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse match id %q: %w", raw, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("match id must be > 0, got %d", n)
	}
	return ID(n), nil
}

type Team struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"short_name,omitempty"`
}

// ScheduleMatch is a match as known to the scheduling system.
type ScheduleMatch struct {
	MatchID     ID        `json:"match_id"`
	SeriesName  string    `json:"series_name,omitempty"`
	MatchDesc   string    `json:"match_desc,omitempty"`
	MatchFormat string    `json:"match_format,omitempty"`
	Team1       Team      `json:"team1"`
	Team2       Team      `json:"team2"`
	Venue       string    `json:"venue,omitempty"`
	StartTime   time.Time `json:"start_time"`
	Status      string    `json:"status"`
	Result      string    `json:"result,omitempty"`
}

type InningsScore struct {
	Innings int     `json:"innings"`
	TeamID  int64   `json:"team_id"`
	Runs    int     `json:"runs"`
	Wickets int     `json:"wickets"`
	Overs   float64 `json:"overs"`
}

// LiveMatch is the in-progress state of one match.
type LiveMatch struct {
	MatchID        ID             `json:"match_id"`
	Status         string         `json:"status"`
	Team1          Team           `json:"team1"`
	Team2          Team           `json:"team2"`
	Score          string         `json:"score"`
	Overs          float64        `json:"overs"`
	CurrentInnings int            `json:"current_innings"`
	BattingTeam    string         `json:"batting_team,omitempty"`
	Innings        []InningsScore `json:"innings,omitempty"`
	LastUpdated    time.Time      `json:"last_updated"`
}

func NormalizeStatus(value string) string {
	status := strings.ToLower(strings.TrimSpace(value))
	if status == "" {
		return StatusUpcoming
	}
	return status
}

// NormalizeLiveStatus is NormalizeStatus for records read off the live feed,
// where a blank status means the match is in play.
func NormalizeLiveStatus(value string) string {
	if strings.TrimSpace(value) == "" {
		return StatusLive
	}
	return NormalizeStatus(value)
}

func IsLiveStatus(status string) bool {
	switch NormalizeStatus(status) {
	case StatusLive, "in_progress", "innings_break", "stumps", "tea", "lunch", "drinks":
		return true
	default:
		return false
	}
}
