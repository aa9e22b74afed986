package users

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/denisdmm/fittrack/internal/auth"
	"github.com/denisdmm/fittrack/internal/telemetry/tracing"
	"github.com/denisdmm/fittrack/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type usersRepo interface {
	Add(ctx context.Context, user User) (*User, error)
	Get(ctx context.Context, id string) (*User, error)
	List(ctx context.Context) ([]User, error)
	Update(ctx context.Context, params UpdateParams) error
	Deactivate(ctx context.Context, id string) error
}

type Handler struct {
	repo     usersRepo
	resolver *auth.CredentialResolver
}

func NewHandler(repo usersRepo, resolver *auth.CredentialResolver) *Handler {
	return &Handler{
		repo:     repo,
		resolver: resolver,
	}
}

type CreateUserRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Login     string `json:"login"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	BirthDate string `json:"birthDate,omitempty"`
	Height    int    `json:"height,omitempty"`
}

type CreateUserResponse struct {
	User  *User  `json:"user"`
	Email string `json:"email"`
}

func (handler *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.create")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var createReq CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&createReq); err != nil {
		log.Errorf("create user, unmarshal json params: %s", err)
		http.Error(w, "create user failed", http.StatusBadRequest)
		return
	}

	if createReq.FirstName == "" || createReq.Login == "" {
		http.Error(w, "error, first name and login are required", http.StatusBadRequest)
		return
	}
	if len(createReq.Password) < 6 {
		http.Error(w, "error, password too short", http.StatusBadRequest)
		return
	}
	if createReq.Role == "" {
		createReq.Role = Role.User
	}
	if createReq.Role != Role.User && createReq.Role != Role.Admin {
		http.Error(w, "error, invalid role", http.StatusBadRequest)
		return
	}

	passwordHash, err := pkg.HashPassword(createReq.Password)
	if err != nil {
		log.Errorf("create user, hash password: %s", err)
		http.Error(w, "create user failed", http.StatusInternalServerError)
		return
	}

	added, err := handler.repo.Add(ctx, User{
		FirstName:    createReq.FirstName,
		LastName:     createReq.LastName,
		Login:        createReq.Login,
		Role:         createReq.Role,
		Status:       Status.Active,
		BirthDate:    createReq.BirthDate,
		Height:       createReq.Height,
		PasswordHash: passwordHash,
	})
	if err != nil {
		if errors.Is(err, ErrLoginTaken) {
			http.Error(w, "login already taken", http.StatusConflict)
			return
		}
		log.Errorf("create user: %s", err)
		http.Error(w, "create user failed", http.StatusInternalServerError)
		return
	}

	respJson, err := json.Marshal(CreateUserResponse{
		User:  added,
		Email: auth.SyntheticEmail(added.Login),
	})
	if err != nil {
		log.Errorf("marshal created user: %s", err)
		http.Error(w, "create user failed", http.StatusInternalServerError)
		return
	}

	log.Debugf("new user created: %s [%s]", added.Login, added.ID)
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusCreated)
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.get")
	defer span.End()

	vars := mux.Vars(r)
	id := vars["id"]
	if id == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}

	user, err := handler.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		log.Errorf("get user: %s", err)
		http.Error(w, "get user failed", http.StatusInternalServerError)
		return
	}

	userJson, err := json.Marshal(user)
	if err != nil {
		log.Errorf("marshal user: %s", err)
		http.Error(w, "get user failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, userJson, http.StatusOK)
}

// HandleEmailLookup resolves the credential identifier (email) for an
// existing login, for admins wiring up external identity tooling.
func (handler *Handler) HandleEmailLookup(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.emailLookup")
	defer span.End()

	vars := mux.Vars(r)
	login := vars["login"]
	if login == "" {
		http.Error(w, "error, login empty", http.StatusBadRequest)
		return
	}

	email, err := handler.resolver.Resolve(ctx, login)
	if err != nil {
		if errors.Is(err, auth.ErrNotLoggedIn) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		log.Errorf("resolve email for login %s: %s", login, err)
		http.Error(w, "email lookup failed", http.StatusInternalServerError)
		return
	}

	emailJson, err := json.Marshal(map[string]string{"email": email})
	if err != nil {
		log.Errorf("marshal email lookup: %s", err)
		http.Error(w, "email lookup failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, emailJson, http.StatusOK)
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.list")
	defer span.End()

	usersList, err := handler.repo.List(ctx)
	if err != nil {
		log.Errorf("list users: %s", err)
		http.Error(w, "list users failed", http.StatusInternalServerError)
		return
	}

	usersJson, err := json.Marshal(usersList)
	if err != nil {
		log.Errorf("marshal users: %s", err)
		http.Error(w, "list users failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, usersJson, http.StatusOK)
}

type UpdateUserRequest struct {
	FirstName    *string `json:"firstName,omitempty"`
	LastName     *string `json:"lastName,omitempty"`
	Role         *string `json:"role,omitempty"`
	Status       *string `json:"status,omitempty"`
	ActivePlanID *string `json:"activeWorkoutPlanId,omitempty"`
	BirthDate    *string `json:"birthDate,omitempty"`
	Height       *int    `json:"height,omitempty"`
}

// HandleUpdate applies a merge-style partial update: only fields present in
// the request change, everything else is left as is.
func (handler *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.update")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	vars := mux.Vars(r)
	id := vars["id"]
	if id == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}

	var updateReq UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&updateReq); err != nil {
		log.Errorf("update user, unmarshal json params: %s", err)
		http.Error(w, "update user failed", http.StatusBadRequest)
		return
	}

	if updateReq.Role != nil && *updateReq.Role != Role.User && *updateReq.Role != Role.Admin {
		http.Error(w, "error, invalid role", http.StatusBadRequest)
		return
	}
	if updateReq.Status != nil && *updateReq.Status != Status.Active && *updateReq.Status != Status.Inactive {
		http.Error(w, "error, invalid status", http.StatusBadRequest)
		return
	}

	err := handler.repo.Update(ctx, UpdateParams{
		ID:           id,
		FirstName:    updateReq.FirstName,
		LastName:     updateReq.LastName,
		Role:         updateReq.Role,
		Status:       updateReq.Status,
		ActivePlanID: updateReq.ActivePlanID,
		BirthDate:    updateReq.BirthDate,
		Height:       updateReq.Height,
	})
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		log.Errorf("update user: %s", err)
		http.Error(w, "update user failed", http.StatusInternalServerError)
		return
	}

	log.Debugf("user updated: %s", id)
	w.WriteHeader(http.StatusNoContent)
}

// HandleDeactivate marks the user inactive instead of deleting the record.
func (handler *Handler) HandleDeactivate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.deactivate")
	defer span.End()

	vars := mux.Vars(r)
	id := vars["id"]
	if id == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}

	if err := handler.repo.Deactivate(ctx, id); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		log.Errorf("deactivate user: %s", err)
		http.Error(w, "deactivate user failed", http.StatusInternalServerError)
		return
	}

	log.Debugf("user deactivated: %s", id)
	w.WriteHeader(http.StatusNoContent)
}
