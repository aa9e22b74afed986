package plans

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/denisdmm/fittrack/internal/auth"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lastTagProviderMock struct {
	// (userID, planID) -> tag
	tags map[[2]string]string
	err  error
}

func (m *lastTagProviderMock) LastSessionTag(_ context.Context, userID, planID string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.tags[[2]string{userID, planID}], nil
}

func TestHandler_HandleAdd(t *testing.T) {
	repo := NewMockPlansRepo()
	h := NewHandler(repo, &lastTagProviderMock{})

	plan := WorkoutPlan{
		Name:       "Hipertrofia ABC",
		Difficulty: Difficulty.Intermediario,
		Frequency:  3,
		Sessions: []WorkoutSession{
			{SessionTag: "A", Exercises: []SessionExercise{
				{ExerciseID: "ex-1", SetTargets: []string{"10-12 reps @ 60s", "10-12 reps @ 60s"}},
			}},
			{SessionTag: "B"},
			{SessionTag: "C"},
		},
	}
	planJson, err := json.Marshal(plan)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req, err := http.NewRequest("POST", "/plans", bytes.NewReader(planJson))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	h.HandleAdd(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var added WorkoutPlan
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &added))
	assert.NotEmpty(t, added.ID)
	assert.Equal(t, plan.Name, added.Name)
	require.Len(t, added.Sessions, 3)
	assert.Equal(t, []string{"10-12 reps @ 60s", "10-12 reps @ 60s"}, added.Sessions[0].Exercises[0].SetTargets)
}

func TestHandler_HandleAdd_duplicateSessionTags(t *testing.T) {
	repo := NewMockPlansRepo()
	h := NewHandler(repo, &lastTagProviderMock{})

	plan := WorkoutPlan{
		Name:       "Broken Plan",
		Difficulty: Difficulty.Iniciante,
		Sessions: []WorkoutSession{
			{SessionTag: "A"},
			{SessionTag: "A"},
		},
	}
	planJson, err := json.Marshal(plan)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req, err := http.NewRequest("POST", "/plans", bytes.NewReader(planJson))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	h.HandleAdd(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, repo.plans, 0)
}

func TestHandler_HandleAdd_invalidDifficulty(t *testing.T) {
	repo := NewMockPlansRepo()
	h := NewHandler(repo, &lastTagProviderMock{})

	plan := WorkoutPlan{
		Name:       "Plan",
		Difficulty: "Impossible",
	}
	planJson, err := json.Marshal(plan)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req, err := http.NewRequest("POST", "/plans", bytes.NewReader(planJson))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	h.HandleAdd(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_HandleNextSession(t *testing.T) {
	repo := NewMockPlansRepo()
	plan, err := repo.Add(context.Background(), WorkoutPlan{
		Name:       "Hipertrofia ABC",
		Difficulty: Difficulty.Intermediario,
		Sessions: []WorkoutSession{
			{SessionTag: "A"},
			{SessionTag: "B"},
			{SessionTag: "C"},
		},
	})
	require.NoError(t, err)

	lastTags := &lastTagProviderMock{tags: map[[2]string]string{
		{"user-1", plan.ID}: "B",
	}}
	h := NewHandler(repo, lastTags)

	rec := httptest.NewRecorder()
	req, err := http.NewRequest("GET", "/plans/"+plan.ID+"/next-session", nil)
	require.NoError(t, err)
	req = req.WithContext(auth.ContextWithUserID(req.Context(), "user-1"))
	req = mux.SetURLVars(req, map[string]string{"id": plan.ID})

	h.HandleNextSession(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp NextSessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.NextSession)
	assert.Equal(t, "C", resp.NextSession.SessionTag)
}

func TestHandler_HandleNextSession_emptyPlan(t *testing.T) {
	repo := NewMockPlansRepo()
	plan, err := repo.Add(context.Background(), WorkoutPlan{
		Name:       "Empty",
		Difficulty: Difficulty.Iniciante,
	})
	require.NoError(t, err)

	h := NewHandler(repo, &lastTagProviderMock{})

	rec := httptest.NewRecorder()
	req, err := http.NewRequest("GET", "/plans/"+plan.ID+"/next-session", nil)
	require.NoError(t, err)
	req = req.WithContext(auth.ContextWithUserID(req.Context(), "user-1"))
	req = mux.SetURLVars(req, map[string]string{"id": plan.ID})

	h.HandleNextSession(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp NextSessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Nil(t, resp.NextSession)
}

func TestHandler_HandleDelete(t *testing.T) {
	repo := NewMockPlansRepo()
	plan, err := repo.Add(context.Background(), WorkoutPlan{
		Name:       "Hipertrofia ABC",
		Difficulty: Difficulty.Intermediario,
	})
	require.NoError(t, err)

	h := NewHandler(repo, &lastTagProviderMock{})

	rec := httptest.NewRecorder()
	req, err := http.NewRequest("DELETE", "/plans/"+plan.ID, nil)
	require.NoError(t, err)
	req = mux.SetURLVars(req, map[string]string{"id": plan.ID})

	h.HandleDelete(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	h.HandleDelete(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
