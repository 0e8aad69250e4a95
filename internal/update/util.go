package update

func levelFromError(isErr bool) string {
	if isErr {
		return "error"
	}
	return "info"
}

func isKnownView(v View) bool {
	switch v {
	case ViewDay, ViewWeek, ViewMonth, ViewTimeline:
		return true
	default:
		return false
	}
}
