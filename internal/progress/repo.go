package progress

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
	"go.uber.org/multierr"
)

var ErrRecordNotFound = errors.New("progress record not found")

// resetBatchSize bounds one bulk-delete operation during history reset.
const resetBatchSize = 500

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Add(ctx context.Context, record ProgressRecord) (_ *ProgressRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progress.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	loggedSetsJson, err := json.Marshal(record.LoggedSets)
	if err != nil {
		return nil, fmt.Errorf("marshal logged sets: %w", err)
	}

	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.Date.IsZero() {
		record.Date = time.Now()
	}

	var sessionTag *string
	if record.SessionTag != "" {
		sessionTag = &record.SessionTag
	}

	_, err = r.db.Exec(
		ctx,
		`INSERT INTO workout_log
				(id, user_id, workout_plan_id, workout_name, session_tag, date, duration_minutes, volume, logged_sets)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);`,
		record.ID, record.UserID, record.WorkoutRoutineID, record.WorkoutName,
		sessionTag, record.Date, record.DurationMinutes, record.Volume, loggedSetsJson,
	)
	if err != nil {
		return nil, err
	}

	return &record, nil
}

func (r *Repo) Get(ctx context.Context, userID, recordID string) (_ *ProgressRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progress.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	row := r.db.QueryRow(
		ctx,
		`SELECT
				id, user_id, workout_plan_id, workout_name, session_tag, date, duration_minutes, volume, logged_sets
			FROM workout_log
			WHERE user_id = $1 AND id = $2;`,
		userID, recordID,
	)

	record, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}

	return record, nil
}

// List returns all of the user's workout logs, most recent first.
func (r *Repo) List(ctx context.Context, userID string) (_ []ProgressRecord, err error) {
	return r.listRecent(ctx, userID, 0)
}

// ListRecent returns up to limit of the user's most recent workout logs.
func (r *Repo) ListRecent(ctx context.Context, userID string, limit int) (_ []ProgressRecord, err error) {
	return r.listRecent(ctx, userID, limit)
}

func (r *Repo) listRecent(ctx context.Context, userID string, limit int) (_ []ProgressRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progress.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user.id", userID))

	rows, err := r.db.Query(
		ctx,
		`SELECT
				id, user_id, workout_plan_id, workout_name, session_tag, date, duration_minutes, volume, logged_sets
			FROM workout_log
			WHERE user_id = $1
			ORDER BY date DESC
			LIMIT CASE WHEN $2 > 0 THEN $2 END;`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("workout logs [query]: %w", err)
	}
	defer rows.Close()

	var records []ProgressRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("workout logs [rows scan]: %w", err)
		}
		records = append(records, *record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("workout logs [rows error]: %w", err)
	}

	return records, nil
}

// LastSessionTag returns the session tag of the user's most recent log for
// the given plan, or empty string when there is no history or the last log
// carried no tag.
func (r *Repo) LastSessionTag(ctx context.Context, userID, planID string) (_ string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progress.last_session_tag")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var sessionTag *string
	err = r.db.QueryRow(
		ctx,
		`SELECT session_tag
			FROM workout_log
			WHERE user_id = $1 AND workout_plan_id = $2
			ORDER BY date DESC
			LIMIT 1;`,
		userID, planID,
	).Scan(&sessionTag)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("last session tag [query row]: %w", err)
	}

	if sessionTag == nil {
		return "", nil
	}
	return *sessionTag, nil
}

// ResetHistory deletes the user's entire workout log, in sequential batches
// of at most resetBatchSize rows. On a mid-batch failure the already
// committed batches stay deleted and the returned count covers only them.
func (r *Repo) ResetHistory(ctx context.Context, userID string) (deleted int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progress.reset_history")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user.id", userID))

	return resetInBatches(ctx, resetBatchSize, func(ctx context.Context, limit int) (int, error) {
		rows, err := r.db.Exec(
			ctx,
			`DELETE FROM workout_log
				WHERE id IN (
					SELECT id FROM workout_log WHERE user_id = $1 LIMIT $2
				);`,
			userID, limit,
		)
		if err != nil {
			return 0, err
		}
		return int(rows.RowsAffected()), nil
	})
}

// resetInBatches runs deleteBatch sequentially until a batch comes back
// smaller than batchSize. The returned count covers only committed batches.
func resetInBatches(
	ctx context.Context,
	batchSize int,
	deleteBatch func(ctx context.Context, limit int) (int, error),
) (deleted int, err error) {
	for {
		affected, err := deleteBatch(ctx, batchSize)
		if err != nil {
			return deleted, multierr.Append(
				fmt.Errorf("reset history after %d deleted", deleted), err,
			)
		}

		deleted += affected
		if affected < batchSize {
			return deleted, nil
		}
	}
}

func (r *Repo) AddHealthLog(ctx context.Context, healthLog HealthLog) (_ *HealthLog, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progress.add_health_log")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if healthLog.ID == "" {
		healthLog.ID = uuid.NewString()
	}
	if healthLog.Date.IsZero() {
		healthLog.Date = time.Now()
	}

	_, err = r.db.Exec(
		ctx,
		`INSERT INTO health_log (id, user_id, date, weight) VALUES ($1, $2, $3, $4);`,
		healthLog.ID, healthLog.UserID, healthLog.Date, healthLog.Weight,
	)
	if err != nil {
		return nil, err
	}

	return &healthLog, nil
}

func (r *Repo) ListHealthLogs(ctx context.Context, userID string) (_ []HealthLog, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progress.list_health_logs")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT id, user_id, date, weight
			FROM health_log
			WHERE user_id = $1
			ORDER BY date DESC;`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("health logs [query]: %w", err)
	}
	defer rows.Close()

	var healthLogs []HealthLog
	for rows.Next() {
		var healthLog HealthLog
		if err := rows.Scan(&healthLog.ID, &healthLog.UserID, &healthLog.Date, &healthLog.Weight); err != nil {
			return nil, fmt.Errorf("health logs [rows scan]: %w", err)
		}
		healthLogs = append(healthLogs, healthLog)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("health logs [rows error]: %w", err)
	}

	return healthLogs, nil
}

func scanRecord(row pgx.Row) (*ProgressRecord, error) {
	var record ProgressRecord
	var sessionTag *string
	var loggedSetsJson []byte
	err := row.Scan(
		&record.ID, &record.UserID, &record.WorkoutRoutineID, &record.WorkoutName,
		&sessionTag, &record.Date, &record.DurationMinutes, &record.Volume, &loggedSetsJson,
	)
	if err != nil {
		return nil, err
	}

	if sessionTag != nil {
		record.SessionTag = *sessionTag
	}
	if err := json.Unmarshal(loggedSetsJson, &record.LoggedSets); err != nil {
		return nil, fmt.Errorf("unmarshal logged sets: %w", err)
	}

	return &record, nil
}
