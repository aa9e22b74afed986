package workoutlog

import (
	"errors"
	"math"
	"time"

	"github.com/denisdmm/fittrack/internal/progress"
)

type State string

const (
	StateIdle         State = "idle"
	StateInitializing State = "initializing"
	StateInProgress   State = "inProgress"
	StatePaused       State = "paused"
)

var (
	ErrSetNotFound   = errors.New("set not found")
	ErrSetCompleted  = errors.New("set is completed, un-complete it to edit")
	ErrNotInProgress = errors.New("workout not in progress")
	ErrNotPaused     = errors.New("workout not paused")
)

type SetLog struct {
	Reps      int  `json:"reps"`
	Weight    int  `json:"weight"`
	Completed bool `json:"completed"`
}

type ExerciseLog struct {
	ExerciseID string   `json:"exerciseId"`
	Name       string   `json:"name"`
	IsCardio   bool     `json:"isCardio"`
	SetTargets []string `json:"setTargets,omitempty"`
	Sets       []SetLog `json:"sets"`
}

// Complete reports whether every target set of the exercise is completed.
func (el *ExerciseLog) Complete() bool {
	for i := range el.Sets {
		if !el.Sets[i].Completed {
			return false
		}
	}
	return len(el.Sets) > 0
}

// Log is one live workout from start to finish (or cancel). It is not safe
// for concurrent use, the owning Service serializes access.
type Log struct {
	UserID      string
	Ref         WorkoutRef
	WorkoutName string
	Exercises   []*ExerciseLog
	StartedAt   time.Time

	state       State
	pausedAt    time.Time
	pausedTotal time.Duration
}

func newLog(userID string, ref WorkoutRef, workoutName string, exercises []*ExerciseLog, startedAt time.Time) *Log {
	return &Log{
		UserID:      userID,
		Ref:         ref,
		WorkoutName: workoutName,
		Exercises:   exercises,
		StartedAt:   startedAt,
		state:       StateInProgress,
	}
}

func (l *Log) State() State {
	return l.state
}

func (l *Log) exercise(exerciseID string) *ExerciseLog {
	for _, el := range l.Exercises {
		if el.ExerciseID == exerciseID {
			return el
		}
	}
	return nil
}

// UpdateSet edits the reps/weight of one set. Completed sets are locked
// until toggled back to incomplete.
func (l *Log) UpdateSet(exerciseID string, setIndex, reps, weight int) error {
	el := l.exercise(exerciseID)
	if el == nil || setIndex < 0 || setIndex >= len(el.Sets) {
		return ErrSetNotFound
	}
	if el.Sets[setIndex].Completed {
		return ErrSetCompleted
	}

	el.Sets[setIndex].Reps = reps
	el.Sets[setIndex].Weight = weight
	return nil
}

// ToggleSet flips one set between complete and incomplete and returns the
// new completion status of the whole exercise.
func (l *Log) ToggleSet(exerciseID string, setIndex int) (exerciseComplete bool, err error) {
	el := l.exercise(exerciseID)
	if el == nil || setIndex < 0 || setIndex >= len(el.Sets) {
		return false, ErrSetNotFound
	}

	el.Sets[setIndex].Completed = !el.Sets[setIndex].Completed
	return el.Complete(), nil
}

// AllComplete reports whether every exercise reached its target set count.
// Finish is allowed only then.
func (l *Log) AllComplete() bool {
	for _, el := range l.Exercises {
		if !el.Complete() {
			return false
		}
	}
	return true
}

func (l *Log) Pause(now time.Time) error {
	if l.state != StateInProgress {
		return ErrNotInProgress
	}
	l.state = StatePaused
	l.pausedAt = now
	return nil
}

func (l *Log) Resume(now time.Time) error {
	if l.state != StatePaused {
		return ErrNotPaused
	}
	l.pausedTotal += now.Sub(l.pausedAt)
	l.pausedAt = time.Time{}
	l.state = StateInProgress
	return nil
}

// Elapsed returns the wall-clock training time, excluding paused intervals.
func (l *Log) Elapsed(now time.Time) time.Duration {
	if l.state == StatePaused {
		return l.pausedAt.Sub(l.StartedAt) - l.pausedTotal
	}
	return now.Sub(l.StartedAt) - l.pausedTotal
}

// Volume sums reps times weight over all sets of non-cardio exercises.
// Cardio sets contribute nothing regardless of the values entered.
func (l *Log) Volume() int {
	volume := 0
	for _, el := range l.Exercises {
		if el.IsCardio {
			continue
		}
		for i := range el.Sets {
			volume += el.Sets[i].Reps * el.Sets[i].Weight
		}
	}
	return volume
}

// Record builds the progress record to persist at finish time. The logged
// sets include cardio sets even though they do not count toward volume.
func (l *Log) Record(now time.Time) progress.ProgressRecord {
	loggedSets := make(map[string][]progress.LoggedSet, len(l.Exercises))
	for _, el := range l.Exercises {
		sets := make([]progress.LoggedSet, 0, len(el.Sets))
		for i := range el.Sets {
			sets = append(sets, progress.LoggedSet{
				Reps:   el.Sets[i].Reps,
				Weight: el.Sets[i].Weight,
			})
		}
		loggedSets[el.ExerciseID] = sets
	}

	var planID, sessionTag string
	switch l.Ref.Kind {
	case KindPlanSession:
		planID = l.Ref.PlanID
		sessionTag = l.Ref.SessionTag
	case KindAdHoc:
		// no plan reference to record
	}

	durationMinutes := int(math.Round(l.Elapsed(now).Seconds() / 60))

	return progress.ProgressRecord{
		UserID:           l.UserID,
		WorkoutRoutineID: planID,
		WorkoutName:      l.WorkoutName,
		SessionTag:       sessionTag,
		Date:             now,
		DurationMinutes:  durationMinutes,
		Volume:           l.Volume(),
		LoggedSets:       loggedSets,
	}
}
