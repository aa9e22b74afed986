package workoutlog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLog(startedAt time.Time) *Log {
	return newLog(
		"user-1",
		WorkoutRef{Kind: KindPlanSession, PlanID: "plan-1", SessionTag: "A"},
		"Treino ABC",
		[]*ExerciseLog{
			{
				ExerciseID: "ex-supino",
				Name:       "Supino Reto",
				SetTargets: []string{"3x10"},
				Sets:       make([]SetLog, 3),
			},
			{
				ExerciseID: "ex-corrida",
				Name:       "Corrida na Esteira",
				IsCardio:   true,
				Sets:       make([]SetLog, 1),
			},
		},
		startedAt,
	)
}

func TestLog_Volume_cardioExcluded(t *testing.T) {
	workoutLog := newTestLog(time.Now())

	for i := 0; i < 3; i++ {
		require.NoError(t, workoutLog.UpdateSet("ex-supino", i, 10, 50))
	}
	// 30 minutes at intensity 5, must not count as lifted volume
	require.NoError(t, workoutLog.UpdateSet("ex-corrida", 0, 30, 5))

	assert.Equal(t, 1500, workoutLog.Volume())
}

func TestLog_ToggleSet(t *testing.T) {
	workoutLog := newTestLog(time.Now())

	complete, err := workoutLog.ToggleSet("ex-supino", 0)
	require.NoError(t, err)
	assert.False(t, complete)

	complete, err = workoutLog.ToggleSet("ex-supino", 1)
	require.NoError(t, err)
	assert.False(t, complete)

	complete, err = workoutLog.ToggleSet("ex-supino", 2)
	require.NoError(t, err)
	assert.True(t, complete)

	// un-toggle flips the exercise back to incomplete
	complete, err = workoutLog.ToggleSet("ex-supino", 1)
	require.NoError(t, err)
	assert.False(t, complete)

	_, err = workoutLog.ToggleSet("ex-supino", 5)
	assert.ErrorIs(t, err, ErrSetNotFound)
	_, err = workoutLog.ToggleSet("ex-unknown", 0)
	assert.ErrorIs(t, err, ErrSetNotFound)
}

func TestLog_UpdateSet_completedSetLocked(t *testing.T) {
	workoutLog := newTestLog(time.Now())

	require.NoError(t, workoutLog.UpdateSet("ex-supino", 0, 10, 50))
	_, err := workoutLog.ToggleSet("ex-supino", 0)
	require.NoError(t, err)

	err = workoutLog.UpdateSet("ex-supino", 0, 12, 55)
	assert.ErrorIs(t, err, ErrSetCompleted)

	// unlock and edit again
	_, err = workoutLog.ToggleSet("ex-supino", 0)
	require.NoError(t, err)
	require.NoError(t, workoutLog.UpdateSet("ex-supino", 0, 12, 55))
	assert.Equal(t, 12, workoutLog.Exercises[0].Sets[0].Reps)
	assert.Equal(t, 55, workoutLog.Exercises[0].Sets[0].Weight)
}

func TestLog_AllComplete(t *testing.T) {
	workoutLog := newTestLog(time.Now())
	assert.False(t, workoutLog.AllComplete())

	for i := 0; i < 3; i++ {
		_, err := workoutLog.ToggleSet("ex-supino", i)
		require.NoError(t, err)
	}
	assert.False(t, workoutLog.AllComplete())

	_, err := workoutLog.ToggleSet("ex-corrida", 0)
	require.NoError(t, err)
	assert.True(t, workoutLog.AllComplete())
}

func TestLog_PauseResume_elapsedExcludesPause(t *testing.T) {
	startedAt := time.Date(2026, 2, 10, 18, 0, 0, 0, time.UTC)
	workoutLog := newTestLog(startedAt)

	require.NoError(t, workoutLog.Pause(startedAt.Add(10*time.Minute)))
	assert.Equal(t, StatePaused, workoutLog.State())

	// elapsed is frozen while paused
	assert.Equal(t, 10*time.Minute, workoutLog.Elapsed(startedAt.Add(25*time.Minute)))

	require.NoError(t, workoutLog.Resume(startedAt.Add(15*time.Minute)))
	assert.Equal(t, StateInProgress, workoutLog.State())

	// 30 minutes wall clock minus the 5 paused
	assert.Equal(t, 25*time.Minute, workoutLog.Elapsed(startedAt.Add(30*time.Minute)))

	assert.ErrorIs(t, workoutLog.Resume(startedAt.Add(31*time.Minute)), ErrNotPaused)
	require.NoError(t, workoutLog.Pause(startedAt.Add(32*time.Minute)))
	assert.ErrorIs(t, workoutLog.Pause(startedAt.Add(33*time.Minute)), ErrNotInProgress)
}

func TestLog_Record(t *testing.T) {
	startedAt := time.Date(2026, 2, 10, 18, 0, 0, 0, time.UTC)
	workoutLog := newTestLog(startedAt)

	for i := 0; i < 3; i++ {
		require.NoError(t, workoutLog.UpdateSet("ex-supino", i, 10, 50))
	}
	require.NoError(t, workoutLog.UpdateSet("ex-corrida", 0, 30, 5))

	finishedAt := startedAt.Add(45*time.Minute + 20*time.Second)
	record := workoutLog.Record(finishedAt)

	assert.Equal(t, "user-1", record.UserID)
	assert.Equal(t, "plan-1", record.WorkoutRoutineID)
	assert.Equal(t, "A", record.SessionTag)
	assert.Equal(t, "Treino ABC", record.WorkoutName)
	assert.Equal(t, 45, record.DurationMinutes)
	assert.Equal(t, 1500, record.Volume)

	// cardio sets are kept in the logged sets even though they carry no volume
	require.Len(t, record.LoggedSets, 2)
	require.Len(t, record.LoggedSets["ex-corrida"], 1)
	assert.Equal(t, 30, record.LoggedSets["ex-corrida"][0].Reps)

	adHocLog := newLog(
		"user-1",
		WorkoutRef{Kind: KindAdHoc, ExerciseIDs: []string{"ex-supino"}},
		"Treino Avulso",
		[]*ExerciseLog{{ExerciseID: "ex-supino", Sets: make([]SetLog, 1)}},
		startedAt,
	)
	adHocRecord := adHocLog.Record(startedAt.Add(20 * time.Minute))
	assert.Empty(t, adHocRecord.WorkoutRoutineID)
	assert.Empty(t, adHocRecord.SessionTag)
}
