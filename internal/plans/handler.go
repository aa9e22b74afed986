package plans

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/denisdmm/fittrack/internal/auth"
	"github.com/denisdmm/fittrack/internal/telemetry/tracing"
	"github.com/denisdmm/fittrack/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type plansRepo interface {
	Add(ctx context.Context, plan WorkoutPlan) (*WorkoutPlan, error)
	Get(ctx context.Context, id string) (*WorkoutPlan, error)
	List(ctx context.Context) ([]WorkoutPlan, error)
	Update(ctx context.Context, plan WorkoutPlan) error
	Delete(ctx context.Context, id string) error
}

// lastSessionTagProvider yields the session tag of the user's most recent
// workout log for the given plan, or empty string without error when the
// user has no history yet.
type lastSessionTagProvider interface {
	LastSessionTag(ctx context.Context, userID, planID string) (string, error)
}

type Handler struct {
	repo     plansRepo
	lastTags lastSessionTagProvider
}

func NewHandler(repo plansRepo, lastTags lastSessionTagProvider) *Handler {
	return &Handler{
		repo:     repo,
		lastTags: lastTags,
	}
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.plans.new")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var plan WorkoutPlan
	if err := json.NewDecoder(r.Body).Decode(&plan); err != nil {
		log.Errorf("new workout plan, unmarshal json params: %s", err)
		http.Error(w, "add workout plan failed", http.StatusBadRequest)
		return
	}

	if errMsg := validatePlan(plan); errMsg != "" {
		http.Error(w, errMsg, http.StatusBadRequest)
		return
	}

	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = time.Now()
	}

	added, err := handler.repo.Add(ctx, plan)
	if err != nil {
		log.Errorf("add workout plan: %s", err)
		http.Error(w, "add workout plan failed", http.StatusInternalServerError)
		return
	}

	addedJson, err := json.Marshal(added)
	if err != nil {
		log.Errorf("marshal added workout plan: %s", err)
		http.Error(w, "add workout plan failed", http.StatusInternalServerError)
		return
	}

	log.Debugf("new workout plan added: %s [%s]", added.Name, added.ID)
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, addedJson, http.StatusCreated)
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.plans.get")
	defer span.End()

	vars := mux.Vars(r)
	id := vars["id"]
	if id == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}

	plan, err := handler.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrPlanNotFound) {
			http.Error(w, "workout plan not found", http.StatusNotFound)
			return
		}
		log.Errorf("get workout plan: %s", err)
		http.Error(w, "get workout plan failed", http.StatusInternalServerError)
		return
	}

	planJson, err := json.Marshal(plan)
	if err != nil {
		log.Errorf("marshal workout plan: %s", err)
		http.Error(w, "get workout plan failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, planJson, http.StatusOK)
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.plans.list")
	defer span.End()

	plansList, err := handler.repo.List(ctx)
	if err != nil {
		log.Errorf("list workout plans: %s", err)
		http.Error(w, "list workout plans failed", http.StatusInternalServerError)
		return
	}

	plansJson, err := json.Marshal(plansList)
	if err != nil {
		log.Errorf("marshal workout plans: %s", err)
		http.Error(w, "list workout plans failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, plansJson, http.StatusOK)
}

func (handler *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.plans.update")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var plan WorkoutPlan
	if err := json.NewDecoder(r.Body).Decode(&plan); err != nil {
		log.Errorf("update workout plan, unmarshal json params: %s", err)
		http.Error(w, "update workout plan failed", http.StatusBadRequest)
		return
	}

	if plan.ID == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}
	if errMsg := validatePlan(plan); errMsg != "" {
		http.Error(w, errMsg, http.StatusBadRequest)
		return
	}

	if err := handler.repo.Update(ctx, plan); err != nil {
		if errors.Is(err, ErrPlanNotFound) {
			http.Error(w, "workout plan not found", http.StatusNotFound)
			return
		}
		log.Errorf("update workout plan: %s", err)
		http.Error(w, "update workout plan failed", http.StatusInternalServerError)
		return
	}

	log.Debugf("workout plan updated: %s", plan.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.plans.delete")
	defer span.End()

	vars := mux.Vars(r)
	id := vars["id"]
	if id == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}

	// users referencing this plan via their active plan id keep the dangling
	// reference; readers tolerate the gap instead of a cascade here
	if err := handler.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrPlanNotFound) {
			http.Error(w, "workout plan not found", http.StatusNotFound)
			return
		}
		log.Errorf("delete workout plan: %s", err)
		http.Error(w, "delete workout plan failed", http.StatusInternalServerError)
		return
	}

	log.Debugf("workout plan deleted: %s", id)
	w.WriteHeader(http.StatusNoContent)
}

type NextSessionResponse struct {
	NextSession *WorkoutSession `json:"nextSession"`
}

// HandleNextSession resolves which session of the given plan the logged-in
// user should perform next. A plan without sessions yields a null next
// session rather than an error.
func (handler *Handler) HandleNextSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.plans.next_session")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	planID := vars["id"]
	if planID == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}

	plan, err := handler.repo.Get(ctx, planID)
	if err != nil {
		if errors.Is(err, ErrPlanNotFound) {
			http.Error(w, "workout plan not found", http.StatusNotFound)
			return
		}
		log.Errorf("next session, get workout plan: %s", err)
		http.Error(w, "next session failed", http.StatusInternalServerError)
		return
	}

	lastTag, err := handler.lastTags.LastSessionTag(ctx, userID, planID)
	if err != nil {
		log.Errorf("next session, get last session tag: %s", err)
		http.Error(w, "next session failed", http.StatusInternalServerError)
		return
	}

	next, _ := NextSession(plan.Sessions, lastTag)
	respJson, err := json.Marshal(NextSessionResponse{NextSession: next})
	if err != nil {
		log.Errorf("marshal next session: %s", err)
		http.Error(w, "next session failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}

func validatePlan(plan WorkoutPlan) string {
	if plan.Name == "" || plan.Difficulty == "" {
		return "error, name and difficulty are required"
	}
	if !ValidDifficulty(plan.Difficulty) {
		return "error, invalid difficulty"
	}
	for _, session := range plan.Sessions {
		if !ValidSessionTag(session.SessionTag) {
			return "error, invalid session tag"
		}
	}
	if !SessionTagsUnique(plan.Sessions) {
		return "error, duplicate session tags"
	}
	return ""
}
