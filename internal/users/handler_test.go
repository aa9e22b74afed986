package users

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/denisdmm/fittrack/internal/auth"
	"github.com/denisdmm/fittrack/pkg"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_HandleCreate(t *testing.T) {
	repo := NewMockUsersRepo()
	h := NewHandler(repo, auth.NewCredentialResolver(repo))

	createReq := CreateUserRequest{
		FirstName: "Denis",
		LastName:  "Silva",
		Login:     "denis",
		Password:  "s3cr3t-pass",
	}
	reqJson, err := json.Marshal(createReq)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req, err := http.NewRequest("POST", "/users", bytes.NewReader(reqJson))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	h.HandleCreate(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp CreateUserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.User)
	assert.NotEmpty(t, resp.User.ID)
	assert.Equal(t, "denis", resp.User.Login)
	assert.Equal(t, Role.User, resp.User.Role)
	assert.Equal(t, Status.Active, resp.User.Status)
	assert.Equal(t, "denis@fittrack.app", resp.Email)

	stored, err := repo.Get(context.Background(), resp.User.ID)
	require.NoError(t, err)
	assert.True(t, pkg.CheckPasswordHash("s3cr3t-pass", stored.PasswordHash))
}

func TestHandler_HandleCreate_loginTaken(t *testing.T) {
	repo := NewMockUsersRepo()
	_, err := repo.Add(context.Background(), User{Login: "denis", Status: Status.Active})
	require.NoError(t, err)

	h := NewHandler(repo, auth.NewCredentialResolver(repo))

	createReq := CreateUserRequest{
		FirstName: "Denis",
		Login:     "DENIS", // login uniqueness is case-insensitive
		Password:  "s3cr3t-pass",
	}
	reqJson, err := json.Marshal(createReq)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req, err := http.NewRequest("POST", "/users", bytes.NewReader(reqJson))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	h.HandleCreate(rec, req)
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandler_HandleCreate_shortPassword(t *testing.T) {
	repo := NewMockUsersRepo()
	h := NewHandler(repo, auth.NewCredentialResolver(repo))

	createReq := CreateUserRequest{
		FirstName: "Denis",
		Login:     "denis",
		Password:  "abc",
	}
	reqJson, err := json.Marshal(createReq)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req, err := http.NewRequest("POST", "/users", bytes.NewReader(reqJson))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	h.HandleCreate(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_HandleUpdate_partial(t *testing.T) {
	repo := NewMockUsersRepo()
	added, err := repo.Add(context.Background(), User{
		FirstName: "Denis",
		LastName:  "Silva",
		Login:     "denis",
		Role:      Role.User,
		Status:    Status.Active,
		Height:    180,
	})
	require.NoError(t, err)

	h := NewHandler(repo, auth.NewCredentialResolver(repo))

	// only the role changes, everything else stays
	updateJson := []byte(`{"role": "admin"}`)
	rec := httptest.NewRecorder()
	req, err := http.NewRequest("PATCH", "/users/"+added.ID, bytes.NewReader(updateJson))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req = mux.SetURLVars(req, map[string]string{"id": added.ID})

	h.HandleUpdate(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	updated, err := repo.Get(context.Background(), added.ID)
	require.NoError(t, err)
	assert.Equal(t, Role.Admin, updated.Role)
	assert.Equal(t, "Denis", updated.FirstName)
	assert.Equal(t, "Silva", updated.LastName)
	assert.Equal(t, 180, updated.Height)
}

func TestHandler_HandleUpdate_clearActivePlan(t *testing.T) {
	repo := NewMockUsersRepo()
	added, err := repo.Add(context.Background(), User{
		FirstName:    "Denis",
		Login:        "denis",
		Status:       Status.Active,
		ActivePlanID: "plan-1",
	})
	require.NoError(t, err)

	h := NewHandler(repo, auth.NewCredentialResolver(repo))

	updateJson := []byte(`{"activeWorkoutPlanId": ""}`)
	rec := httptest.NewRecorder()
	req, err := http.NewRequest("PATCH", "/users/"+added.ID, bytes.NewReader(updateJson))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req = mux.SetURLVars(req, map[string]string{"id": added.ID})

	h.HandleUpdate(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	updated, err := repo.Get(context.Background(), added.ID)
	require.NoError(t, err)
	assert.Empty(t, updated.ActivePlanID)
}

func TestHandler_HandleDeactivate(t *testing.T) {
	repo := NewMockUsersRepo()
	added, err := repo.Add(context.Background(), User{
		FirstName: "Denis",
		Login:     "denis",
		Status:    Status.Active,
	})
	require.NoError(t, err)

	h := NewHandler(repo, auth.NewCredentialResolver(repo))

	rec := httptest.NewRecorder()
	req, err := http.NewRequest("DELETE", "/users/"+added.ID, nil)
	require.NoError(t, err)
	req = mux.SetURLVars(req, map[string]string{"id": added.ID})

	h.HandleDeactivate(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	// the record is still there, just inactive
	deactivated, err := repo.Get(context.Background(), added.ID)
	require.NoError(t, err)
	assert.Equal(t, Status.Inactive, deactivated.Status)
}

func TestHandler_HandleEmailLookup(t *testing.T) {
	repo := NewMockUsersRepo()
	_, err := repo.Add(context.Background(), User{
		FirstName: "Denis",
		Login:     "Denis",
		Status:    Status.Active,
	})
	require.NoError(t, err)

	h := NewHandler(repo, auth.NewCredentialResolver(repo))

	rec := httptest.NewRecorder()
	req, err := http.NewRequest("GET", "/users/Denis/email", nil)
	require.NoError(t, err)
	req = mux.SetURLVars(req, map[string]string{"login": "Denis"})

	h.HandleEmailLookup(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "denis@fittrack.app", resp["email"])
}

func TestHandler_HandleEmailLookup_unknownLogin(t *testing.T) {
	repo := NewMockUsersRepo()
	h := NewHandler(repo, auth.NewCredentialResolver(repo))

	rec := httptest.NewRecorder()
	req, err := http.NewRequest("GET", "/users/ghost/email", nil)
	require.NoError(t, err)
	req = mux.SetURLVars(req, map[string]string{"login": "ghost"})

	h.HandleEmailLookup(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
