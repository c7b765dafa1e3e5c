package memory

import (
	"time"

	"github.com/riskibarqy/cricket-live/internal/domain/match"
)

const (
	MatchIDIndAus match.ID = 101
	MatchIDEngNz  match.ID = 102
	MatchIDPakSa  match.ID = 103
)

var (
	teamIndia       = match.Team{ID: 1, Name: "India", ShortName: "IND"}
	teamAustralia   = match.Team{ID: 2, Name: "Australia", ShortName: "AUS"}
	teamEngland     = match.Team{ID: 3, Name: "England", ShortName: "ENG"}
	teamNewZealand  = match.Team{ID: 4, Name: "New Zealand", ShortName: "NZ"}
	teamPakistan    = match.Team{ID: 5, Name: "Pakistan", ShortName: "PAK"}
	teamSouthAfrica = match.Team{ID: 6, Name: "South Africa", ShortName: "SA"}
)

func SeedSchedules(now time.Time) []match.ScheduleMatch {
	day := now.UTC().Truncate(24 * time.Hour)
	return []match.ScheduleMatch{
		{
			MatchID:     MatchIDIndAus,
			SeriesName:  "Border-Gavaskar Trophy",
			MatchDesc:   "1st ODI",
			MatchFormat: "ODI",
			Team1:       teamIndia,
			Team2:       teamAustralia,
			Venue:       "Wankhede Stadium, Mumbai",
			StartTime:   day.Add(9 * time.Hour),
			Status:      match.StatusLive,
		},
		{
			MatchID:     MatchIDEngNz,
			SeriesName:  "New Zealand tour of England",
			MatchDesc:   "2nd T20I",
			MatchFormat: "T20",
			Team1:       teamEngland,
			Team2:       teamNewZealand,
			Venue:       "Lord's, London",
			StartTime:   day.Add(42 * time.Hour),
			Status:      match.StatusUpcoming,
		},
		{
			MatchID:     MatchIDPakSa,
			SeriesName:  "South Africa tour of Pakistan",
			MatchDesc:   "1st Test",
			MatchFormat: "Test",
			Team1:       teamPakistan,
			Team2:       teamSouthAfrica,
			Venue:       "Gaddafi Stadium, Lahore",
			StartTime:   day.Add(-96 * time.Hour),
			Status:      match.StatusCompleted,
			Result:      "South Africa won by 6 wickets",
		},
	}
}

func SeedLive(now time.Time) []match.LiveMatch {
	return []match.LiveMatch{
		{
			MatchID:        MatchIDIndAus,
			Status:         match.StatusLive,
			Team1:          teamIndia,
			Team2:          teamAustralia,
			Score:          "120/3",
			Overs:          17.4,
			CurrentInnings: 1,
			BattingTeam:    teamIndia.Name,
			Innings: []match.InningsScore{
				{Innings: 1, TeamID: teamIndia.ID, Runs: 120, Wickets: 3, Overs: 17.4},
			},
			LastUpdated: now.UTC(),
		},
	}
}
