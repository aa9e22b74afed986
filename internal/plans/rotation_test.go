package plans

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionsWithTags(tags ...string) []WorkoutSession {
	sessions := make([]WorkoutSession, 0, len(tags))
	for _, tag := range tags {
		sessions = append(sessions, WorkoutSession{SessionTag: tag})
	}
	return sessions
}

func TestNextSession_noHistory(t *testing.T) {
	sessions := sessionsWithTags("A", "B", "C")

	next, ok := NextSession(sessions, "")
	require.True(t, ok)
	assert.Equal(t, "A", next.SessionTag)

	// stored order wins, not tag order
	next, ok = NextSession(sessionsWithTags("C", "A"), "")
	require.True(t, ok)
	assert.Equal(t, "C", next.SessionTag)
}

func TestNextSession_advance(t *testing.T) {
	sessions := sessionsWithTags("A", "B", "C")

	next, ok := NextSession(sessions, "A")
	require.True(t, ok)
	assert.Equal(t, "B", next.SessionTag)

	next, ok = NextSession(sessions, "B")
	require.True(t, ok)
	assert.Equal(t, "C", next.SessionTag)
}

func TestNextSession_wraparound(t *testing.T) {
	sessions := sessionsWithTags("A", "B", "C")

	// last session performed, wrap to the first
	next, ok := NextSession(sessions, "C")
	require.True(t, ok)
	assert.Equal(t, "A", next.SessionTag)
}

func TestNextSession_lastTagRemovedFromPlan(t *testing.T) {
	// user's last log was session B of an A/B/C plan
	sessions := sessionsWithTags("A", "B", "C")
	next, ok := NextSession(sessions, "B")
	require.True(t, ok)
	assert.Equal(t, "C", next.SessionTag)

	// session C got deleted and the user last logged C: tag is
	// gone from the plan, so the resolver falls back to the start
	edited := sessionsWithTags("A", "B")
	next, ok = NextSession(edited, "C")
	require.True(t, ok)
	assert.Equal(t, "A", next.SessionTag)
}

func TestNextSession_emptyPlan(t *testing.T) {
	next, ok := NextSession(nil, "")
	assert.False(t, ok)
	assert.Nil(t, next)

	next, ok = NextSession([]WorkoutSession{}, "A")
	assert.False(t, ok)
	assert.Nil(t, next)
}

func TestNextSession_singleSession(t *testing.T) {
	sessions := sessionsWithTags("A")

	next, ok := NextSession(sessions, "")
	require.True(t, ok)
	assert.Equal(t, "A", next.SessionTag)

	next, ok = NextSession(sessions, "A")
	require.True(t, ok)
	assert.Equal(t, "A", next.SessionTag)
}
