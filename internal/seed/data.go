package seed

import (
	"github.com/denisdmm/fittrack/internal/exercises"
	"github.com/denisdmm/fittrack/internal/plans"
)

func catalogExercises() []exercises.Exercise {
	return []exercises.Exercise{
		{
			Name:        "Supino Reto com Barra",
			Description: "Deite-se em um banco reto, abaixe a barra até o peito e empurre para cima.",
			Type:        exercises.ExerciseType.Forca,
			MuscleGroup: "Peito",
			Equipment:   exercises.Equipment.Livres,
		},
		{
			Name:        "Agachamento Livre com Barra",
			Description: "Com a barra nas costas, agache até que as coxas fiquem paralelas ao chão.",
			Type:        exercises.ExerciseType.Forca,
			MuscleGroup: "Pernas",
			Equipment:   exercises.Equipment.Livres,
		},
		{
			Name:        "Remada Curvada com Barra",
			Description: "Incline o tronco para a frente e puxe a barra em direção ao abdômen.",
			Type:        exercises.ExerciseType.Forca,
			MuscleGroup: "Costas",
			Equipment:   exercises.Equipment.Livres,
		},
		{
			Name:        "Desenvolvimento Militar com Barra",
			Description: "Em pé, levante a barra acima da cabeça até estender os cotovelos.",
			Type:        exercises.ExerciseType.Forca,
			MuscleGroup: "Ombros",
			Equipment:   exercises.Equipment.Livres,
		},
		{
			Name:        "Prancha",
			Description: "Mantenha a posição de prancha com o corpo reto.",
			Type:        exercises.ExerciseType.Calistenia,
			MuscleGroup: "Core",
			Equipment:   exercises.Equipment.Calistenia,
		},
		{
			Name:        "Corrida na Esteira",
			Description: "Corra em um ritmo constante ou intervalado na esteira.",
			Type:        exercises.ExerciseType.Cardio,
			MuscleGroup: "Cardio",
			Equipment:   exercises.Equipment.Aparelhos,
		},
		{
			Name:        "Bicicleta Ergométrica",
			Description: "Pedale em um ritmo constante ou intervalado.",
			Type:        exercises.ExerciseType.Cardio,
			MuscleGroup: "Cardio",
			Equipment:   exercises.Equipment.Aparelhos,
		},
		{
			Name:        "Burpee",
			Description: "Combine uma flexão, um agachamento e um salto em um movimento fluido.",
			Type:        exercises.ExerciseType.HIIT,
			MuscleGroup: "Corpo Inteiro",
			Equipment:   exercises.Equipment.Calistenia,
		},
		{
			Name:        "Polichinelo",
			Description: "Salte abrindo e fechando pernas e braços simultaneamente.",
			Type:        exercises.ExerciseType.HIIT,
			MuscleGroup: "Corpo Inteiro",
			Equipment:   exercises.Equipment.Calistenia,
		},
		{
			Name:        "Alongamento de Isquiotibiais",
			Description: "Sente-se e estique as pernas, tentando tocar os pés.",
			Type:        exercises.ExerciseType.Flexibilidade,
			MuscleGroup: "Flexibilidade",
			Equipment:   exercises.Equipment.Calistenia,
		},
		{
			Name:        "Alongamento de Quadríceps",
			Description: "Em pé, puxe um dos pés em direção ao glúteo.",
			Type:        exercises.ExerciseType.Flexibilidade,
			MuscleGroup: "Flexibilidade",
			Equipment:   exercises.Equipment.Calistenia,
		},
		{
			Name:        "Postura do Gato-Vaca",
			Description: "Alterne entre arquear e arredondar a coluna em quatro apoios.",
			Type:        exercises.ExerciseType.Flexibilidade,
			MuscleGroup: "Flexibilidade",
			Equipment:   exercises.Equipment.Calistenia,
		},
		{
			Name:        "Puxada Frontal na Barra",
			Description: "Sente-se na máquina e puxe a barra da polia alta até a parte superior do peito.",
			Type:        exercises.ExerciseType.Forca,
			MuscleGroup: "Costas",
			Equipment:   exercises.Equipment.Aparelhos,
		},
		{
			Name:        "Remada Máquina (Pegada Neutra)",
			Description: "Puxe as alças em direção ao abdômen, mantendo as costas retas e os cotovelos próximos ao corpo.",
			Type:        exercises.ExerciseType.Forca,
			MuscleGroup: "Costas",
			Equipment:   exercises.Equipment.Aparelhos,
		},
		{
			Name:        "Rosca Direta com Barra W",
			Description: "Segure a barra W com as palmas para cima e flexione os cotovelos.",
			Type:        exercises.ExerciseType.Hipertrofia,
			MuscleGroup: "Braços",
			Equipment:   exercises.Equipment.Livres,
		},
		{
			Name:        "Mesa Flexora",
			Description: "Deite-se de bruços e flexione as pernas contra a resistência.",
			Type:        exercises.ExerciseType.Hipertrofia,
			MuscleGroup: "Pernas",
			Equipment:   exercises.Equipment.Aparelhos,
		},
		{
			Name:        "Cadeira Extensora",
			Description: "Sente-se na máquina e estenda as pernas para trabalhar o quadríceps.",
			Type:        exercises.ExerciseType.Hipertrofia,
			MuscleGroup: "Pernas",
			Equipment:   exercises.Equipment.Aparelhos,
		},
		{
			Name:        "Elevação Lateral com Halteres",
			Description: "Em pé, levante os halteres para os lados até a altura dos ombros.",
			Type:        exercises.ExerciseType.Hipertrofia,
			MuscleGroup: "Ombros",
			Equipment:   exercises.Equipment.Livres,
		},
		{
			Name:        "Abdominal na Máquina",
			Description: "Sente-se na máquina e flexione o tronco contra a resistência.",
			Type:        exercises.ExerciseType.Hipertrofia,
			MuscleGroup: "Core",
			Equipment:   exercises.Equipment.Aparelhos,
		},
	}
}

// starterPlans builds the public plans against the freshly seeded catalog.
// exerciseIDs maps exercise name to the id it got at insert time.
func starterPlans(exerciseIDs map[string]string) []plans.WorkoutPlan {
	sessionExercises := func(names []string, setTargets [][]string) []plans.SessionExercise {
		result := make([]plans.SessionExercise, 0, len(names))
		for i, name := range names {
			result = append(result, plans.SessionExercise{
				ExerciseID: exerciseIDs[name],
				SetTargets: setTargets[i],
			})
		}
		return result
	}

	return []plans.WorkoutPlan{
		{
			Name:        "Hipertrofia Essencial (ABC)",
			Description: "Um plano de treino ABC clássico, focado em hipertrofia para resultados sólidos.",
			Difficulty:  plans.Difficulty.Intermediario,
			Frequency:   12,
			Sessions: []plans.WorkoutSession{
				{
					SessionTag:  "A",
					Description: "Peito, Ombros e Tríceps",
					Exercises: sessionExercises(
						[]string{"Supino Reto com Barra", "Desenvolvimento Militar com Barra", "Elevação Lateral com Halteres"},
						[][]string{
							{"10-12 reps @ 60s", "10-12 reps @ 60s", "8-10 reps @ 60s", "8-10 reps @ 60s"},
							{"10-12 reps @ 60s", "10-12 reps @ 60s", "8-10 reps @ 60s"},
							{"15 reps @ 60s", "12 reps @ 60s", "12 reps @ 60s"},
						},
					),
				},
				{
					SessionTag:  "B",
					Description: "Costas e Bíceps",
					Exercises: sessionExercises(
						[]string{"Remada Curvada com Barra", "Puxada Frontal na Barra", "Rosca Direta com Barra W"},
						[][]string{
							{"10-12 reps @ 60s", "10-12 reps @ 60s", "8-10 reps @ 60s"},
							{"12 reps @ 60s", "12 reps @ 60s", "10 reps @ 60s", "10 reps @ 60s"},
							{"15 reps @ 60s", "12 reps @ 60s", "10 reps @ 60s"},
						},
					),
				},
				{
					SessionTag:  "C",
					Description: "Pernas e Abdômen",
					Exercises: sessionExercises(
						[]string{"Agachamento Livre com Barra", "Mesa Flexora", "Cadeira Extensora", "Abdominal na Máquina"},
						[][]string{
							{"12-15 reps @ 60s", "10-12 reps @ 60s", "10-12 reps @ 60s"},
							{"15 reps @ 60s", "12 reps @ 60s", "10 reps @ 60s"},
							{"15 reps @ 60s", "15 reps @ 60s", "12 reps @ 60s", "12 reps @ 60s"},
							{"20 reps @ 45s", "20 reps @ 45s", "15 reps @ 45s"},
						},
					),
				},
			},
		},
		{
			Name:        "Queima de Gordura e Hipertrofia",
			Description: "Combine queima calórica com estímulo de hipertrofia. Treinos intensos para máxima eficiência.",
			Difficulty:  plans.Difficulty.Avancado,
			Frequency:   16,
			Sessions: []plans.WorkoutSession{
				{
					SessionTag:  "A",
					Description: "Full Body Força + HIIT",
					Exercises: sessionExercises(
						[]string{"Supino Reto com Barra", "Remada Curvada com Barra", "Desenvolvimento Militar com Barra", "Burpee"},
						[][]string{
							{"8-10 reps @ 60s", "8-10 reps @ 60s", "6-8 reps @ 60s"},
							{"8-10 reps @ 60s", "8-10 reps @ 60s", "6-8 reps @ 60s"},
							{"10-12 reps @ 60s", "8-10 reps @ 60s", "8-10 reps @ 60s"},
							{"15 reps", "15 reps", "15 reps", "15 reps"},
						},
					),
				},
				{
					SessionTag:  "B",
					Description: "Full Body Força + Cardio",
					Exercises: sessionExercises(
						[]string{"Agachamento Livre com Barra", "Bicicleta Ergométrica", "Puxada Frontal na Barra", "Rosca Direta com Barra W"},
						[][]string{
							{"10-12 reps @ 60s", "10-12 reps @ 60s", "8-10 reps @ 60s"},
							{"20min"},
							{"10-12 reps @ 60s", "8-10 reps @ 60s", "8-10 reps @ 60s"},
							{"12 reps @ 60s", "10 reps @ 60s", "10 reps @ 60s"},
						},
					),
				},
			},
		},
	}
}
