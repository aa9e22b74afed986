package seed

import (
	"context"
	"testing"

	"github.com/denisdmm/fittrack/internal/exercises"
	"github.com/denisdmm/fittrack/internal/plans"
	"github.com/denisdmm/fittrack/internal/users"
	"github.com/denisdmm/fittrack/pkg"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type exercisesStoreMock struct {
	exercises []exercises.Exercise
}

func (m *exercisesStoreMock) Add(_ context.Context, exercise exercises.Exercise) (*exercises.Exercise, error) {
	exercise.ID = uuid.NewString()
	m.exercises = append(m.exercises, exercise)
	return &exercise, nil
}

func (m *exercisesStoreMock) List(context.Context, exercises.ListParams) ([]exercises.Exercise, error) {
	return append([]exercises.Exercise(nil), m.exercises...), nil
}

type plansStoreMock struct {
	plans []plans.WorkoutPlan
}

func (m *plansStoreMock) Add(_ context.Context, plan plans.WorkoutPlan) (*plans.WorkoutPlan, error) {
	plan.ID = uuid.NewString()
	m.plans = append(m.plans, plan)
	return &plan, nil
}

func TestSeeder_Run(t *testing.T) {
	ctx := context.Background()
	exercisesStore := &exercisesStoreMock{}
	plansStore := &plansStoreMock{}
	usersRepo := users.NewMockUsersRepo()

	seeder := NewSeeder(exercisesStore, plansStore, usersRepo, "s3cret")
	require.NoError(t, seeder.Run(ctx))

	admin, err := usersRepo.GetByLogin(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, users.Role.Admin, admin.Role)
	assert.Equal(t, users.Status.Active, admin.Status)
	assert.True(t, pkg.CheckPasswordHash("s3cret", admin.PasswordHash))

	assert.Len(t, exercisesStore.exercises, 19)
	require.Len(t, plansStore.plans, 2)

	// plan sessions reference the freshly created catalog ids
	abcPlan := plansStore.plans[0]
	require.Len(t, abcPlan.Sessions, 3)
	for _, session := range abcPlan.Sessions {
		for _, sessionExercise := range session.Exercises {
			assert.NotEmpty(t, sessionExercise.ExerciseID)
			assert.NotEmpty(t, sessionExercise.SetTargets)
		}
	}
}

func TestSeeder_Run_idempotent(t *testing.T) {
	ctx := context.Background()
	exercisesStore := &exercisesStoreMock{}
	plansStore := &plansStoreMock{}
	usersRepo := users.NewMockUsersRepo()

	seeder := NewSeeder(exercisesStore, plansStore, usersRepo, "s3cret")
	require.NoError(t, seeder.Run(ctx))
	require.NoError(t, seeder.Run(ctx))
	require.NoError(t, seeder.Run(ctx))

	allUsers, err := usersRepo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, allUsers, 1)
	assert.Len(t, exercisesStore.exercises, 19)
	assert.Len(t, plansStore.plans, 2)
}

func TestSeeder_Run_existingCatalogUntouched(t *testing.T) {
	ctx := context.Background()
	exercisesStore := &exercisesStoreMock{}
	plansStore := &plansStoreMock{}
	usersRepo := users.NewMockUsersRepo()

	// a user-created exercise means the catalog counts as seeded
	_, err := exercisesStore.Add(ctx, exercises.Exercise{Name: "Levantamento Terra"})
	require.NoError(t, err)

	seeder := NewSeeder(exercisesStore, plansStore, usersRepo, "s3cret")
	require.NoError(t, seeder.Run(ctx))

	assert.Len(t, exercisesStore.exercises, 1)
	assert.Empty(t, plansStore.plans)

	// the admin user is still created independently of the catalog
	_, err = usersRepo.GetByLogin(ctx, "admin")
	require.NoError(t, err)
}
