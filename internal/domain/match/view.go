package match

import "slices"

// Source names the feed a View came from.
type Source string

const (
	SourceNone     Source = ""
	SourceLive     Source = "live"
	SourceSchedule Source = "schedule"
)

// View is the reconciled value for one match id: a whole LiveMatch, a whole
// ScheduleMatch, or absent. It is never a mix of both.
type View struct {
	Source   Source
	Live     *LiveMatch
	Schedule *ScheduleMatch
}

func Absent() View {
	return View{}
}

// LiveView copies m, innings included, so the view never shares memory with
// a cached record.
func LiveView(m LiveMatch) View {
	m.Innings = slices.Clone(m.Innings)
	return View{Source: SourceLive, Live: &m}
}

func ScheduleView(m ScheduleMatch) View {
	return View{Source: SourceSchedule, Schedule: &m}
}

func (v View) Found() bool {
	return v.Source != SourceNone
}

func (v View) MatchID() ID {
	switch v.Source {
	case SourceLive:
		return v.Live.MatchID
	case SourceSchedule:
		return v.Schedule.MatchID
	default:
		return 0
	}
}

// Record returns the underlying match record, or nil when absent.
func (v View) Record() any {
	switch v.Source {
	case SourceLive:
		return v.Live
	case SourceSchedule:
		return v.Schedule
	default:
		return nil
	}
}
