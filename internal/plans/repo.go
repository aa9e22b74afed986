package plans

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/denisdmm/fittrack/internal/telemetry/tracing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var ErrPlanNotFound = errors.New("workout plan not found")

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Add(ctx context.Context, plan WorkoutPlan) (_ *WorkoutPlan, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.plans.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	sessionsJson, err := json.Marshal(plan.Sessions)
	if err != nil {
		return nil, fmt.Errorf("marshal sessions: %w", err)
	}

	if plan.ID == "" {
		plan.ID = uuid.NewString()
	}
	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = time.Now()
	}

	var userID *string
	if plan.UserID != "" {
		userID = &plan.UserID
	}

	_, err = r.db.Exec(
		ctx,
		`INSERT INTO workout_plan
				(id, name, description, difficulty, frequency, sessions, user_id, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`,
		plan.ID, plan.Name, plan.Description, plan.Difficulty,
		plan.Frequency, sessionsJson, userID, plan.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &plan, nil
}

func (r *Repo) Get(ctx context.Context, id string) (_ *WorkoutPlan, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.plans.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("plan.id", id))

	var plan WorkoutPlan
	var sessionsJson []byte
	var userID *string
	err = r.db.QueryRow(
		ctx,
		`SELECT
				id, name, description, difficulty, frequency, sessions, user_id, created_at
			FROM workout_plan
			WHERE id = $1;`,
		id,
	).Scan(
		&plan.ID, &plan.Name, &plan.Description, &plan.Difficulty,
		&plan.Frequency, &sessionsJson, &userID, &plan.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("workout plan [query row]: %w", err)
	}

	if err := json.Unmarshal(sessionsJson, &plan.Sessions); err != nil {
		return nil, fmt.Errorf("unmarshal sessions: %w", err)
	}
	if userID != nil {
		plan.UserID = *userID
	}

	return &plan, nil
}

func (r *Repo) List(ctx context.Context) (_ []WorkoutPlan, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.plans.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT
				id, name, description, difficulty, frequency, sessions, user_id, created_at
			FROM workout_plan
			ORDER BY name;`,
	)
	if err != nil {
		return nil, fmt.Errorf("workout plans [query]: %w", err)
	}
	defer rows.Close()

	var plansList []WorkoutPlan
	for rows.Next() {
		var plan WorkoutPlan
		var sessionsJson []byte
		var userID *string
		err := rows.Scan(
			&plan.ID, &plan.Name, &plan.Description, &plan.Difficulty,
			&plan.Frequency, &sessionsJson, &userID, &plan.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("workout plans [rows scan]: %w", err)
		}
		if err := json.Unmarshal(sessionsJson, &plan.Sessions); err != nil {
			return nil, fmt.Errorf("unmarshal sessions for plan [%s]: %w", plan.ID, err)
		}
		if userID != nil {
			plan.UserID = *userID
		}
		plansList = append(plansList, plan)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("workout plans [rows error]: %w", err)
	}

	return plansList, nil
}

func (r *Repo) Update(ctx context.Context, plan WorkoutPlan) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.plans.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	sessionsJson, err := json.Marshal(plan.Sessions)
	if err != nil {
		return fmt.Errorf("marshal sessions: %w", err)
	}

	rows, err := r.db.Exec(
		ctx,
		`UPDATE workout_plan
			SET name = $2, description = $3, difficulty = $4, frequency = $5, sessions = $6
			WHERE id = $1;`,
		plan.ID, plan.Name, plan.Description, plan.Difficulty, plan.Frequency, sessionsJson,
	)
	if err != nil {
		return err
	}

	if rows.RowsAffected() == 0 {
		return ErrPlanNotFound
	}

	return nil
}

func (r *Repo) Delete(ctx context.Context, id string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.plans.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Exec(ctx, `DELETE FROM workout_plan WHERE id = $1;`, id)
	if err != nil {
		return err
	}

	if rows.RowsAffected() == 0 {
		return ErrPlanNotFound
	}

	return nil
}
