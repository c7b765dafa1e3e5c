package match

// Reconcile picks the authoritative record for id. A live record always
// wins; otherwise the first schedule entry with the same id is used. The
// caller passes live == nil both when the match is not live and when the
// live fetch failed, so the two cases resolve identically.
func Reconcile(id ID, live *LiveMatch, schedules []ScheduleMatch) View {
	if !id.Valid() {
		return Absent()
	}
	if live != nil {
		return LiveView(*live)
	}
	for _, item := range schedules {
		if item.MatchID == id {
			return ScheduleView(item)
		}
	}
	return Absent()
}
