package plans

import (
	"slices"
	"time"
)

var Difficulty = struct {
	Iniciante     string
	Intermediario string
	Avancado      string
}{
	Iniciante:     "Iniciante",
	Intermediario: "Intermediário",
	Avancado:      "Avançado",
}

var Difficulties = []string{
	Difficulty.Iniciante,
	Difficulty.Intermediario,
	Difficulty.Avancado,
}

// SessionTags are the allowed tags for sessions within a plan. A plan does
// not have to use contiguous tags, but each tag may appear at most once.
var SessionTags = []string{"A", "B", "C", "D", "E"}

type SessionExercise struct {
	ExerciseID string   `json:"exerciseId"`
	SetTargets []string `json:"seriesAndReps"`
}

type WorkoutSession struct {
	SessionTag  string            `json:"sessionTag"`
	Description string            `json:"description,omitempty"`
	Exercises   []SessionExercise `json:"exercises"`
}

type WorkoutPlan struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Difficulty  string           `json:"difficultyLevel"`
	Frequency   int              `json:"frequency"`
	Sessions    []WorkoutSession `json:"sessions"`
	UserID      string           `json:"userId,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
}

func ValidDifficulty(d string) bool {
	return slices.Contains(Difficulties, d)
}

func ValidSessionTag(tag string) bool {
	return slices.Contains(SessionTags, tag)
}

// SessionTagsUnique reports whether every session tag appears at most once.
func SessionTagsUnique(sessions []WorkoutSession) bool {
	seen := make(map[string]bool, len(sessions))
	for _, s := range sessions {
		if seen[s.SessionTag] {
			return false
		}
		seen[s.SessionTag] = true
	}
	return true
}
