package plans

// NextSession resolves which session the user should perform next, given the
// plan's sessions in stored order and the tag of the most recently logged
// session (empty string when no history exists).
//
// With no history the first stored session is next. Otherwise the session
// after the last performed one is next, wrapping back to the first session
// when the last performed tag was final or is no longer present in the plan
// (the plan was edited since that log). Wraparound instead of an error keeps
// best-effort continuity for edited plans.
//
// The second return value is false only when the plan has no sessions at all.
func NextSession(sessions []WorkoutSession, lastPerformedTag string) (*WorkoutSession, bool) {
	if len(sessions) == 0 {
		return nil, false
	}

	if lastPerformedTag == "" {
		return &sessions[0], true
	}

	lastIndex := -1
	for i := range sessions {
		if sessions[i].SessionTag == lastPerformedTag {
			lastIndex = i
			break
		}
	}

	if lastIndex == -1 || lastIndex == len(sessions)-1 {
		return &sessions[0], true
	}

	return &sessions[lastIndex+1], true
}
