package progress

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/denisdmm/fittrack/internal/auth"
	"github.com/denisdmm/fittrack/internal/plans"
	"github.com/denisdmm/fittrack/internal/telemetry/metrics"
	"github.com/denisdmm/fittrack/internal/users"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authedRequest(method, path string, body string, userID string) *http.Request {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	return req.WithContext(auth.ContextWithUserID(req.Context(), userID))
}

func TestHandler_HandleList(t *testing.T) {
	repo := NewMockProgressRepo()
	now := time.Now()
	_, err := repo.Add(context.Background(), ProgressRecord{
		UserID:          "user-1",
		WorkoutName:     "Hipertrofia ABC",
		SessionTag:      "A",
		Date:            now,
		DurationMinutes: 45,
		Volume:          1500,
		LoggedSets: map[string][]LoggedSet{
			"ex-1": {{Reps: 10, Weight: 50}},
		},
	})
	require.NoError(t, err)

	h := NewHandler(repo, plans.NewMockPlansRepo(), users.NewMockUsersRepo(), metrics.NewTestManager())

	rec := httptest.NewRecorder()
	h.HandleList(rec, authedRequest("GET", "/progress", "", "user-1"))
	require.Equal(t, http.StatusOK, rec.Code)

	var records []ProgressRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, 1500, records[0].Volume)
	assert.Equal(t, 45, records[0].DurationMinutes)
	assert.Equal(t, map[string][]LoggedSet{"ex-1": {{Reps: 10, Weight: 50}}}, records[0].LoggedSets)

	// other users see nothing
	rec = httptest.NewRecorder()
	h.HandleList(rec, authedRequest("GET", "/progress", "", "user-2"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null", rec.Body.String())
}

func TestHandler_HandleResetHistory(t *testing.T) {
	repo := NewMockProgressRepo()
	for i := 0; i < 12; i++ {
		_, err := repo.Add(context.Background(), ProgressRecord{UserID: "user-1"})
		require.NoError(t, err)
	}

	h := NewHandler(repo, plans.NewMockPlansRepo(), users.NewMockUsersRepo(), metrics.NewTestManager())

	rec := httptest.NewRecorder()
	h.HandleResetHistory(rec, authedRequest("DELETE", "/progress", "", "user-1"))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ResetHistoryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 12, resp.Deleted)

	records, err := repo.List(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestHandler_HandleAddHealthLog(t *testing.T) {
	repo := NewMockProgressRepo()
	m := metrics.NewTestManager()
	h := NewHandler(repo, plans.NewMockPlansRepo(), users.NewMockUsersRepo(), m)

	rec := httptest.NewRecorder()
	h.HandleAddHealthLog(rec, authedRequest("POST", "/progress/health", `{"weight": 82}`, "user-1"))
	require.Equal(t, http.StatusCreated, rec.Code)

	var added HealthLog
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &added))
	assert.Equal(t, 82, added.Weight)
	assert.Equal(t, "user-1", added.UserID)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CounterHealthLogs))

	// invalid weight
	rec = httptest.NewRecorder()
	h.HandleAddHealthLog(rec, authedRequest("POST", "/progress/health", `{"weight": 0}`, "user-1"))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_HandleDashboard(t *testing.T) {
	progressRepo := NewMockProgressRepo()
	plansRepo := plans.NewMockPlansRepo()
	usersRepo := users.NewMockUsersRepo()

	plan, err := plansRepo.Add(context.Background(), plans.WorkoutPlan{
		Name:       "Hipertrofia ABC",
		Difficulty: plans.Difficulty.Intermediario,
		Sessions: []plans.WorkoutSession{
			{SessionTag: "A"},
			{SessionTag: "B"},
			{SessionTag: "C"},
		},
	})
	require.NoError(t, err)

	user, err := usersRepo.Add(context.Background(), users.User{
		Login:        "denis",
		Status:       users.Status.Active,
		ActivePlanID: plan.ID,
	})
	require.NoError(t, err)

	now := time.Now()
	for i, tag := range []string{"A", "B"} {
		_, err := progressRepo.Add(context.Background(), ProgressRecord{
			UserID:           user.ID,
			WorkoutRoutineID: plan.ID,
			WorkoutName:      plan.Name,
			SessionTag:       tag,
			Date:             now.Add(time.Duration(i) * time.Hour),
			DurationMinutes:  40 + i,
			Volume:           1000 * (i + 1),
		})
		require.NoError(t, err)
	}

	h := NewHandler(progressRepo, plansRepo, usersRepo, metrics.NewTestManager())

	rec := httptest.NewRecorder()
	h.HandleDashboard(rec, authedRequest("GET", "/dashboard", "", user.ID))
	require.Equal(t, http.StatusOK, rec.Code)

	var summary DashboardSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 2, summary.TotalWorkouts)
	assert.Equal(t, 3000, summary.TotalVolume)
	assert.Equal(t, 81, summary.TotalMinutes)

	// chart is chronological
	require.Len(t, summary.Chart, 2)
	assert.Equal(t, 1000, summary.Chart[0].Volume)
	assert.Equal(t, 2000, summary.Chart[1].Volume)

	// last logged session was B, so C is up next
	require.NotNil(t, summary.ActivePlan)
	assert.Equal(t, plan.ID, summary.ActivePlan.ID)
	require.NotNil(t, summary.ActivePlan.NextSession)
	assert.Equal(t, "C", summary.ActivePlan.NextSession.SessionTag)
}

func TestHandler_HandleDashboard_deletedActivePlan(t *testing.T) {
	progressRepo := NewMockProgressRepo()
	plansRepo := plans.NewMockPlansRepo()
	usersRepo := users.NewMockUsersRepo()

	user, err := usersRepo.Add(context.Background(), users.User{
		Login:        "denis",
		Status:       users.Status.Active,
		ActivePlanID: "gone-plan",
	})
	require.NoError(t, err)

	h := NewHandler(progressRepo, plansRepo, usersRepo, metrics.NewTestManager())

	rec := httptest.NewRecorder()
	h.HandleDashboard(rec, authedRequest("GET", "/dashboard", "", user.ID))
	require.Equal(t, http.StatusOK, rec.Code)

	// dangling active plan reference is tolerated, the card is just omitted
	var summary DashboardSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Nil(t, summary.ActivePlan)
}
