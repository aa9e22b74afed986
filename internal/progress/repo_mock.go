package progress

import (
	"context"
	"sort"

	"github.com/google/uuid"
)

type MockProgressRepo struct {
	records    map[string][]ProgressRecord // user id -> logs
	healthLogs map[string][]HealthLog
	AddErr     error
}

func NewMockProgressRepo() *MockProgressRepo {
	return &MockProgressRepo{
		records:    make(map[string][]ProgressRecord),
		healthLogs: make(map[string][]HealthLog),
	}
}

func (r *MockProgressRepo) Add(_ context.Context, record ProgressRecord) (*ProgressRecord, error) {
	if r.AddErr != nil {
		return nil, r.AddErr
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	r.records[record.UserID] = append(r.records[record.UserID], record)
	return &record, nil
}

func (r *MockProgressRepo) Get(_ context.Context, userID, recordID string) (*ProgressRecord, error) {
	for _, record := range r.records[userID] {
		if record.ID == recordID {
			return &record, nil
		}
	}
	return nil, ErrRecordNotFound
}

func (r *MockProgressRepo) List(_ context.Context, userID string) ([]ProgressRecord, error) {
	records := append([]ProgressRecord(nil), r.records[userID]...)
	sort.Slice(records, func(i, j int) bool {
		return records[i].Date.After(records[j].Date)
	})
	return records, nil
}

func (r *MockProgressRepo) ListRecent(ctx context.Context, userID string, limit int) ([]ProgressRecord, error) {
	records, err := r.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (r *MockProgressRepo) LastSessionTag(ctx context.Context, userID, planID string) (string, error) {
	records, err := r.List(ctx, userID)
	if err != nil {
		return "", err
	}
	for _, record := range records {
		if record.WorkoutRoutineID == planID {
			return record.SessionTag, nil
		}
	}
	return "", nil
}

func (r *MockProgressRepo) ResetHistory(_ context.Context, userID string) (int, error) {
	deleted := len(r.records[userID])
	delete(r.records, userID)
	return deleted, nil
}

func (r *MockProgressRepo) AddHealthLog(_ context.Context, healthLog HealthLog) (*HealthLog, error) {
	if healthLog.ID == "" {
		healthLog.ID = uuid.NewString()
	}
	r.healthLogs[healthLog.UserID] = append(r.healthLogs[healthLog.UserID], healthLog)
	return &healthLog, nil
}

func (r *MockProgressRepo) ListHealthLogs(_ context.Context, userID string) ([]HealthLog, error) {
	return append([]HealthLog(nil), r.healthLogs[userID]...), nil
}
