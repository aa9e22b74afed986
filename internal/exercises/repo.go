package exercises

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/denisdmm/fittrack/internal/telemetry/tracing"
	"github.com/denisdmm/fittrack/pkg"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var (
	ErrExerciseNotFound  = errors.New("exercise not found")
	ErrExerciseNameTaken = errors.New("exercise name already taken")
)

type ListParams struct {
	MuscleGroup string
	Type        string
}

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Add(ctx context.Context, exercise Exercise) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	taken, err := r.nameTaken(ctx, exercise.Name, "")
	if err != nil {
		return nil, fmt.Errorf("check name taken: %w", err)
	}
	if taken {
		return nil, ErrExerciseNameTaken
	}

	if exercise.ID == "" {
		exercise.ID = uuid.NewString()
	}
	if exercise.CreatedAt.IsZero() {
		exercise.CreatedAt = time.Now()
	}

	_, err = r.db.Exec(
		ctx,
		`INSERT INTO exercise
				(id, name, aliases, description, type, muscle_group, equipment, user_id, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);`,
		exercise.ID, exercise.Name, exercise.Aliases, exercise.Description,
		exercise.Type, exercise.MuscleGroup, exercise.Equipment,
		nullableText(exercise.UserID), exercise.CreatedAt,
	)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return nil, ErrExerciseNameTaken
		}
		return nil, err
	}

	return &exercise, nil
}

func (r *Repo) Get(ctx context.Context, id string) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("exercise.id", id))

	var exercise Exercise
	var userID *string
	err = r.db.QueryRow(
		ctx,
		`SELECT
				id, name, aliases, description, type, muscle_group, equipment, user_id, created_at
			FROM exercise
			WHERE id = $1;`,
		id,
	).Scan(
		&exercise.ID, &exercise.Name, &exercise.Aliases, &exercise.Description,
		&exercise.Type, &exercise.MuscleGroup, &exercise.Equipment,
		&userID, &exercise.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExerciseNotFound
		}
		return nil, fmt.Errorf("exercise [query row]: %w", err)
	}

	if userID != nil {
		exercise.UserID = *userID
	}

	return &exercise, nil
}

func (r *Repo) List(ctx context.Context, params ListParams) (_ []Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT
				id, name, aliases, description, type, muscle_group, equipment, user_id, created_at
			FROM exercise
			WHERE ($1::text = '' OR muscle_group = $1) AND ($2::text = '' OR type = $2)
			ORDER BY name;`,
		params.MuscleGroup,
		params.Type,
	)
	if err != nil {
		return nil, fmt.Errorf("exercises [query]: %w", err)
	}
	defer rows.Close()

	var exercisesList []Exercise
	for rows.Next() {
		var exercise Exercise
		var userID *string
		err := rows.Scan(
			&exercise.ID, &exercise.Name, &exercise.Aliases, &exercise.Description,
			&exercise.Type, &exercise.MuscleGroup, &exercise.Equipment,
			&userID, &exercise.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("exercises [rows scan]: %w", err)
		}
		if userID != nil {
			exercise.UserID = *userID
		}
		exercisesList = append(exercisesList, exercise)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("exercises [rows error]: %w", err)
	}

	return exercisesList, nil
}

func (r *Repo) Update(ctx context.Context, exercise Exercise) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	taken, err := r.nameTaken(ctx, exercise.Name, exercise.ID)
	if err != nil {
		return fmt.Errorf("check name taken: %w", err)
	}
	if taken {
		return ErrExerciseNameTaken
	}

	rows, err := r.db.Exec(
		ctx,
		`UPDATE exercise
			SET name = $2, aliases = $3, description = $4, type = $5, muscle_group = $6, equipment = $7
			WHERE id = $1;`,
		exercise.ID, exercise.Name, exercise.Aliases, exercise.Description,
		exercise.Type, exercise.MuscleGroup, exercise.Equipment,
	)
	if err != nil {
		return err
	}

	if rows.RowsAffected() == 0 {
		return ErrExerciseNotFound
	}

	return nil
}

func (r *Repo) Delete(ctx context.Context, id string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Exec(ctx, `DELETE FROM exercise WHERE id = $1;`, id)
	if err != nil {
		return err
	}

	if rows.RowsAffected() == 0 {
		return ErrExerciseNotFound
	}

	return nil
}

// nameTaken reports whether another exercise already uses the given name,
// compared case-insensitively. Uniqueness is checked here at write time
// instead of with a db constraint.
func (r *Repo) nameTaken(ctx context.Context, name, excludeID string) (bool, error) {
	var count int
	err := r.db.QueryRow(
		ctx,
		`SELECT COUNT(*) FROM exercise WHERE LOWER(name) = LOWER($1) AND id != $2;`,
		name, excludeID,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func nullableText(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
