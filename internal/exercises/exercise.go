package exercises

import (
	"slices"
	"time"
)

var ExerciseType = struct {
	Forca         string
	Hipertrofia   string
	Cardio        string
	Flexibilidade string
	HIIT          string
	Calistenia    string
}{
	Forca:         "Força",
	Hipertrofia:   "Hipertrofia",
	Cardio:        "Cardio",
	Flexibilidade: "Flexibilidade",
	HIIT:          "HIIT",
	Calistenia:    "Calistenia",
}

var ExerciseTypes = []string{
	ExerciseType.Forca,
	ExerciseType.Hipertrofia,
	ExerciseType.Cardio,
	ExerciseType.Flexibilidade,
	ExerciseType.HIIT,
	ExerciseType.Calistenia,
}

var Equipment = struct {
	Calistenia string
	Aparelhos  string
	Livres     string
	Ambos      string
}{
	Calistenia: "Calistenia",
	Aparelhos:  "Aparelhos",
	Livres:     "Livres",
	Ambos:      "Ambos",
}

var Equipments = []string{
	Equipment.Calistenia,
	Equipment.Aparelhos,
	Equipment.Livres,
	Equipment.Ambos,
}

type Exercise struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Aliases     []string  `json:"aliases,omitempty"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	MuscleGroup string    `json:"muscleGroup"`
	Equipment   string    `json:"equipment"`
	UserID      string    `json:"userId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (e Exercise) IsCardio() bool {
	return e.Type == ExerciseType.Cardio
}

func ValidExerciseType(t string) bool {
	return slices.Contains(ExerciseTypes, t)
}

func ValidEquipment(e string) bool {
	return slices.Contains(Equipments, e)
}
