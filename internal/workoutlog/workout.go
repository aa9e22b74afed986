package workoutlog

import (
	"errors"
	"fmt"
)

// WorkoutKind discriminates what kind of workout a logger session runs.
type WorkoutKind string

const (
	// KindPlanSession is one tagged session of a stored workout plan.
	KindPlanSession WorkoutKind = "planSession"
	// KindAdHoc is a free list of exercises outside any plan.
	KindAdHoc WorkoutKind = "adHoc"
)

var ErrUnknownWorkoutKind = errors.New("unknown workout kind")

// WorkoutRef names the workout to run. It is a tagged union: which fields
// are meaningful depends on Kind, and consumers must switch exhaustively.
type WorkoutRef struct {
	Kind WorkoutKind `json:"kind"`

	// Kind == KindPlanSession
	PlanID     string `json:"planId,omitempty"`
	SessionTag string `json:"sessionTag,omitempty"`

	// Kind == KindAdHoc
	Name        string   `json:"name,omitempty"`
	ExerciseIDs []string `json:"exerciseIds,omitempty"`
}

func (ref WorkoutRef) Validate() error {
	switch ref.Kind {
	case KindPlanSession:
		if ref.PlanID == "" || ref.SessionTag == "" {
			return errors.New("plan id and session tag are required for a plan session workout")
		}
		return nil
	case KindAdHoc:
		if len(ref.ExerciseIDs) == 0 {
			return errors.New("at least one exercise is required for an ad-hoc workout")
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownWorkoutKind, ref.Kind)
	}
}
