package score

// Weeks are 0-based inside the engine and 1-based everywhere people see
// them (chat commands, headers, summaries.json). These two functions are
// the only place the conversion happens.

func ToDisplay(idx int) int {
	return idx + 1
}

func FromDisplay(week int) (int, bool) {
	if week < 1 {
		return 0, false
	}
	return week - 1, true
}
