package workoutlog

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/denisdmm/fittrack/internal/auth"
	"github.com/denisdmm/fittrack/internal/telemetry/tracing"
	"github.com/denisdmm/fittrack/pkg"

	log "github.com/sirupsen/logrus"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service: service,
	}
}

func (handler *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workoutlog.start")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var ref WorkoutRef
	if err := json.NewDecoder(r.Body).Decode(&ref); err != nil {
		log.Errorf("start workout, unmarshal json params: %s", err)
		http.Error(w, "start workout failed", http.StatusBadRequest)
		return
	}

	status, err := handler.service.Start(ctx, userID, ref)
	if err != nil {
		switch {
		case errors.Is(err, ErrWorkoutActive):
			http.Error(w, "another workout is already active", http.StatusConflict)
		case errors.Is(err, ErrSessionNotFound), errors.Is(err, ErrNoExercises),
			errors.Is(err, ErrUnknownWorkoutKind):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			log.Errorf("start workout: %s", err)
			http.Error(w, "start workout failed", http.StatusInternalServerError)
		}
		return
	}

	statusJson, err := json.Marshal(status)
	if err != nil {
		log.Errorf("marshal workout status: %s", err)
		http.Error(w, "start workout failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, statusJson, http.StatusCreated)
}

func (handler *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workoutlog.status")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	status, err := handler.service.Status(userID)
	if err != nil {
		if errors.Is(err, ErrNoActiveWorkout) {
			http.Error(w, "no active workout", http.StatusNotFound)
			return
		}
		log.Errorf("workout status: %s", err)
		http.Error(w, "workout status failed", http.StatusInternalServerError)
		return
	}

	statusJson, err := json.Marshal(status)
	if err != nil {
		log.Errorf("marshal workout status: %s", err)
		http.Error(w, "workout status failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, statusJson, http.StatusOK)
}

type UpdateSetRequest struct {
	ExerciseID string `json:"exerciseId"`
	SetIndex   int    `json:"setIndex"`
	Reps       int    `json:"reps"`
	Weight     int    `json:"weight"`
}

func (handler *Handler) HandleUpdateSet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workoutlog.update_set")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	var updateReq UpdateSetRequest
	if err := json.NewDecoder(r.Body).Decode(&updateReq); err != nil {
		log.Errorf("update set, unmarshal json params: %s", err)
		http.Error(w, "update set failed", http.StatusBadRequest)
		return
	}

	err := handler.service.UpdateSet(userID, updateReq.ExerciseID, updateReq.SetIndex, updateReq.Reps, updateReq.Weight)
	if err != nil {
		switch {
		case errors.Is(err, ErrNoActiveWorkout):
			http.Error(w, "no active workout", http.StatusNotFound)
		case errors.Is(err, ErrSetNotFound):
			http.Error(w, "set not found", http.StatusNotFound)
		case errors.Is(err, ErrSetCompleted):
			http.Error(w, "set is completed and locked", http.StatusConflict)
		default:
			log.Errorf("update set: %s", err)
			http.Error(w, "update set failed", http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type ToggleSetRequest struct {
	ExerciseID string `json:"exerciseId"`
	SetIndex   int    `json:"setIndex"`
}

type ToggleSetResponse struct {
	ExerciseComplete bool `json:"exerciseComplete"`
}

func (handler *Handler) HandleToggleSet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workoutlog.toggle_set")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	var toggleReq ToggleSetRequest
	if err := json.NewDecoder(r.Body).Decode(&toggleReq); err != nil {
		log.Errorf("toggle set, unmarshal json params: %s", err)
		http.Error(w, "toggle set failed", http.StatusBadRequest)
		return
	}

	exerciseComplete, err := handler.service.ToggleSet(userID, toggleReq.ExerciseID, toggleReq.SetIndex)
	if err != nil {
		switch {
		case errors.Is(err, ErrNoActiveWorkout):
			http.Error(w, "no active workout", http.StatusNotFound)
		case errors.Is(err, ErrSetNotFound):
			http.Error(w, "set not found", http.StatusNotFound)
		default:
			log.Errorf("toggle set: %s", err)
			http.Error(w, "toggle set failed", http.StatusInternalServerError)
		}
		return
	}

	respJson, err := json.Marshal(ToggleSetResponse{ExerciseComplete: exerciseComplete})
	if err != nil {
		log.Errorf("marshal toggle set response: %s", err)
		http.Error(w, "toggle set failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}

func (handler *Handler) HandlePause(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workoutlog.pause")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	if err := handler.service.Pause(userID); err != nil {
		switch {
		case errors.Is(err, ErrNoActiveWorkout):
			http.Error(w, "no active workout", http.StatusNotFound)
		case errors.Is(err, ErrNotInProgress):
			http.Error(w, "workout not in progress", http.StatusConflict)
		default:
			log.Errorf("pause workout: %s", err)
			http.Error(w, "pause workout failed", http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (handler *Handler) HandleResume(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workoutlog.resume")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	if err := handler.service.Resume(userID); err != nil {
		switch {
		case errors.Is(err, ErrNoActiveWorkout):
			http.Error(w, "no active workout", http.StatusNotFound)
		case errors.Is(err, ErrNotPaused):
			http.Error(w, "workout not paused", http.StatusConflict)
		default:
			log.Errorf("resume workout: %s", err)
			http.Error(w, "resume workout failed", http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (handler *Handler) HandleFinish(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workoutlog.finish")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	record, err := handler.service.Finish(ctx, userID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNoActiveWorkout):
			http.Error(w, "no active workout", http.StatusNotFound)
		case errors.Is(err, ErrWorkoutIncomplete):
			http.Error(w, "workout has incomplete exercises", http.StatusConflict)
		default:
			// state stays in memory so the user can retry
			log.Errorf("finish workout: %s", err)
			http.Error(w, "finish workout failed, retry", http.StatusInternalServerError)
		}
		return
	}

	recordJson, err := json.Marshal(record)
	if err != nil {
		log.Errorf("marshal finished workout record: %s", err)
		http.Error(w, "finish workout failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, recordJson, http.StatusCreated)
}

func (handler *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workoutlog.cancel")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	if err := handler.service.Cancel(userID); err != nil {
		if errors.Is(err, ErrNoActiveWorkout) {
			http.Error(w, "no active workout", http.StatusNotFound)
			return
		}
		log.Errorf("cancel workout: %s", err)
		http.Error(w, "cancel workout failed", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
