package progress

import "time"

type LoggedSet struct {
	Reps   int `json:"reps"`
	Weight int `json:"weight"`
}

// ProgressRecord is one completed workout. Records are append-only and
// immutable once written.
type ProgressRecord struct {
	ID               string                 `json:"id"`
	UserID           string                 `json:"userId"`
	WorkoutRoutineID string                 `json:"workoutRoutineId"`
	WorkoutName      string                 `json:"workoutName"`
	SessionTag       string                 `json:"sessionTag,omitempty"`
	Date             time.Time              `json:"date"`
	DurationMinutes  int                    `json:"duration"`
	Volume           int                    `json:"volume"`
	LoggedSets       map[string][]LoggedSet `json:"loggedSets"` // exercise id -> sets
}

type HealthLog struct {
	ID     string    `json:"id"`
	UserID string    `json:"userId"`
	Date   time.Time `json:"date"`
	Weight int       `json:"weight"` // in kg
}
