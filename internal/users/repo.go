package users

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
	ErrUserNotFound = errors.New("user not found")
	ErrLoginTaken   = errors.New("login already taken")
)

const birthDateLayout = "2006-01-02"

// UpdateParams carries a merge-style partial update: nil fields are left
// untouched. An empty ActivePlanID string clears the active plan.
type UpdateParams struct {
	ID           string
	FirstName    *string
	LastName     *string
	Role         *string
	Status       *string
	ActivePlanID *string
	BirthDate    *string
	Height       *int
}

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Add(ctx context.Context, user User) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	exists, err := r.LoginExists(ctx, user.Login)
	if err != nil {
		return nil, fmt.Errorf("check login exists: %w", err)
	}
	if exists {
		return nil, ErrLoginTaken
	}

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	var birthDate *time.Time
	if user.BirthDate != "" {
		parsed, err := time.Parse(birthDateLayout, user.BirthDate)
		if err != nil {
			return nil, fmt.Errorf("parse birth date: %w", err)
		}
		birthDate = &parsed
	}

	var activePlanID *string
	if user.ActivePlanID != "" {
		activePlanID = &user.ActivePlanID
	}
	var height *int
	if user.Height > 0 {
		height = &user.Height
	}

	_, err = r.db.Exec(
		ctx,
		`INSERT INTO fittrack_user
				(id, first_name, last_name, login, role, status, active_plan_id, birth_date, height, password_hash, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);`,
		user.ID, user.FirstName, user.LastName, user.Login, user.Role, user.Status,
		activePlanID, birthDate, height, user.PasswordHash, user.CreatedAt,
	)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return nil, ErrLoginTaken
		}
		return nil, err
	}

	return &user, nil
}

func (r *Repo) Get(ctx context.Context, id string) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user.id", id))

	return r.getWhere(ctx, `id = $1`, id)
}

func (r *Repo) GetByLogin(ctx context.Context, login string) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.get_by_login")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return r.getWhere(ctx, `LOWER(login) = LOWER($1)`, login)
}

func (r *Repo) getWhere(ctx context.Context, where string, arg any) (*User, error) {
	var user User
	var activePlanID *string
	var birthDate *time.Time
	var height *int
	err := r.db.QueryRow(
		ctx,
		`SELECT
				id, first_name, last_name, login, role, status, active_plan_id, birth_date, height, password_hash, created_at
			FROM fittrack_user
			WHERE `+where+`;`,
		arg,
	).Scan(
		&user.ID, &user.FirstName, &user.LastName, &user.Login, &user.Role, &user.Status,
		&activePlanID, &birthDate, &height, &user.PasswordHash, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user [query row]: %w", err)
	}

	if activePlanID != nil {
		user.ActivePlanID = *activePlanID
	}
	if birthDate != nil {
		user.BirthDate = birthDate.Format(birthDateLayout)
	}
	if height != nil {
		user.Height = *height
	}

	return &user, nil
}

func (r *Repo) List(ctx context.Context) (_ []User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT
				id, first_name, last_name, login, role, status, active_plan_id, birth_date, height, password_hash, created_at
			FROM fittrack_user
			ORDER BY created_at;`,
	)
	if err != nil {
		return nil, fmt.Errorf("users [query]: %w", err)
	}
	defer rows.Close()

	var usersList []User
	for rows.Next() {
		var user User
		var activePlanID *string
		var birthDate *time.Time
		var height *int
		err := rows.Scan(
			&user.ID, &user.FirstName, &user.LastName, &user.Login, &user.Role, &user.Status,
			&activePlanID, &birthDate, &height, &user.PasswordHash, &user.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("users [rows scan]: %w", err)
		}
		if activePlanID != nil {
			user.ActivePlanID = *activePlanID
		}
		if birthDate != nil {
			user.BirthDate = birthDate.Format(birthDateLayout)
		}
		if height != nil {
			user.Height = *height
		}
		usersList = append(usersList, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("users [rows error]: %w", err)
	}

	return usersList, nil
}

func (r *Repo) Update(ctx context.Context, params UpdateParams) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user.id", params.ID))

	var birthDate *time.Time
	if params.BirthDate != nil && *params.BirthDate != "" {
		parsed, err := time.Parse(birthDateLayout, *params.BirthDate)
		if err != nil {
			return fmt.Errorf("parse birth date: %w", err)
		}
		birthDate = &parsed
	}

	rows, err := r.db.Exec(
		ctx,
		`UPDATE fittrack_user
			SET
				first_name = COALESCE($2, first_name),
				last_name = COALESCE($3, last_name),
				role = COALESCE($4, role),
				status = COALESCE($5, status),
				active_plan_id = CASE
					WHEN $6::text IS NULL THEN active_plan_id
					WHEN $6 = '' THEN NULL
					ELSE $6
				END,
				birth_date = COALESCE($7, birth_date),
				height = COALESCE($8, height)
			WHERE id = $1;`,
		params.ID, params.FirstName, params.LastName, params.Role, params.Status,
		params.ActivePlanID, birthDate, params.Height,
	)
	if err != nil {
		return err
	}

	if rows.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

// Deactivate flips the user's status to inactive. Users are never
// hard-deleted, their history stays around.
func (r *Repo) Deactivate(ctx context.Context, id string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.deactivate")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Exec(
		ctx,
		`UPDATE fittrack_user SET status = $2 WHERE id = $1;`,
		id, Status.Inactive,
	)
	if err != nil {
		return err
	}

	if rows.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

func (r *Repo) LoginExists(ctx context.Context, login string) (bool, error) {
	var count int
	err := r.db.QueryRow(
		ctx,
		`SELECT COUNT(*) FROM fittrack_user WHERE LOWER(login) = LOWER($1);`,
		login,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
