package seed

import (
	"context"
	"fmt"

	"github.com/denisdmm/fittrack/internal/exercises"
	"github.com/denisdmm/fittrack/internal/plans"
	"github.com/denisdmm/fittrack/internal/telemetry/tracing"
	"github.com/denisdmm/fittrack/internal/users"
	"github.com/denisdmm/fittrack/pkg"

	log "github.com/sirupsen/logrus"
)

const (
	adminLogin     = "admin"
	adminFirstName = "Admin"
	adminLastName  = "User"
)

type exercisesStore interface {
	Add(ctx context.Context, exercise exercises.Exercise) (*exercises.Exercise, error)
	List(ctx context.Context, params exercises.ListParams) ([]exercises.Exercise, error)
}

type plansStore interface {
	Add(ctx context.Context, plan plans.WorkoutPlan) (*plans.WorkoutPlan, error)
}

type usersStore interface {
	Add(ctx context.Context, user users.User) (*users.User, error)
	LoginExists(ctx context.Context, login string) (bool, error)
}

// Seeder populates an empty store with the starter catalog and the admin
// user. Whether anything needs seeding is decided by querying the store, so
// Run is safe to call on every startup and across multiple instances.
type Seeder struct {
	exercises exercisesStore
	plans     plansStore
	users     usersStore

	adminPassword string
}

func NewSeeder(
	exercisesRepo exercisesStore,
	plansRepo plansStore,
	usersRepo usersStore,
	adminPassword string,
) *Seeder {
	return &Seeder{
		exercises:     exercisesRepo,
		plans:         plansRepo,
		users:         usersRepo,
		adminPassword: adminPassword,
	}
}

// Run seeds the admin user and the public catalog, skipping whatever is
// already present. Calling it any number of times has the same effect.
func (s *Seeder) Run(ctx context.Context) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "seed.run")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := s.seedAdminUser(ctx); err != nil {
		return fmt.Errorf("seed admin user: %w", err)
	}
	if err := s.seedCatalog(ctx); err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	return nil
}

func (s *Seeder) seedAdminUser(ctx context.Context) error {
	exists, err := s.users.LoginExists(ctx, adminLogin)
	if err != nil {
		return fmt.Errorf("check admin login: %w", err)
	}
	if exists {
		log.Debugf("seed: admin user already present, skipping")
		return nil
	}

	passwordHash, err := pkg.HashPassword(s.adminPassword)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	admin, err := s.users.Add(ctx, users.User{
		FirstName:    adminFirstName,
		LastName:     adminLastName,
		Login:        adminLogin,
		Role:         users.Role.Admin,
		Status:       users.Status.Active,
		PasswordHash: passwordHash,
	})
	if err != nil {
		return err
	}

	log.Infof("seed: admin user created [id %s]", admin.ID)
	return nil
}

// seedCatalog fills the exercise catalog and the starter plans. The catalog
// is considered seeded when any exercise exists, mirroring how the admin
// check keys on store content instead of a one-shot flag.
func (s *Seeder) seedCatalog(ctx context.Context) error {
	existing, err := s.exercises.List(ctx, exercises.ListParams{})
	if err != nil {
		return fmt.Errorf("list exercises: %w", err)
	}
	if len(existing) > 0 {
		log.Debugf("seed: exercise catalog already present [%d exercises], skipping", len(existing))
		return nil
	}

	exerciseIDs := make(map[string]string, len(catalogExercises()))
	for _, exercise := range catalogExercises() {
		added, err := s.exercises.Add(ctx, exercise)
		if err != nil {
			return fmt.Errorf("add exercise %q: %w", exercise.Name, err)
		}
		exerciseIDs[added.Name] = added.ID
	}
	log.Infof("seed: %d catalog exercises created", len(exerciseIDs))

	seededPlans := starterPlans(exerciseIDs)
	for _, plan := range seededPlans {
		if _, err := s.plans.Add(ctx, plan); err != nil {
			return fmt.Errorf("add plan %q: %w", plan.Name, err)
		}
	}
	log.Infof("seed: %d starter plans created", len(seededPlans))

	return nil
}
