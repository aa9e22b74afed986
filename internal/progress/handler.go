package progress

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/denisdmm/fittrack/internal/auth"
	"github.com/denisdmm/fittrack/internal/plans"
	"github.com/denisdmm/fittrack/internal/telemetry/metrics"
	"github.com/denisdmm/fittrack/internal/telemetry/tracing"
	"github.com/denisdmm/fittrack/internal/users"
	"github.com/denisdmm/fittrack/pkg"

	log "github.com/sirupsen/logrus"
)

const dashboardChartSize = 7

type progressRepo interface {
	List(ctx context.Context, userID string) ([]ProgressRecord, error)
	LastSessionTag(ctx context.Context, userID, planID string) (string, error)
	ResetHistory(ctx context.Context, userID string) (int, error)
	AddHealthLog(ctx context.Context, healthLog HealthLog) (*HealthLog, error)
	ListHealthLogs(ctx context.Context, userID string) ([]HealthLog, error)
}

type planGetter interface {
	Get(ctx context.Context, id string) (*plans.WorkoutPlan, error)
}

type userGetter interface {
	Get(ctx context.Context, id string) (*users.User, error)
}

type Handler struct {
	repo           progressRepo
	plans          planGetter
	users          userGetter
	metricsManager *metrics.Manager
}

func NewHandler(
	repo progressRepo,
	plansRepo planGetter,
	usersRepo userGetter,
	metricsManager *metrics.Manager,
) *Handler {
	return &Handler{
		repo:           repo,
		plans:          plansRepo,
		users:          usersRepo,
		metricsManager: metricsManager,
	}
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.progress.list")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	records, err := handler.repo.List(ctx, userID)
	if err != nil {
		log.Errorf("list progress records: %s", err)
		http.Error(w, "list progress records failed", http.StatusInternalServerError)
		return
	}

	recordsJson, err := json.Marshal(records)
	if err != nil {
		log.Errorf("marshal progress records: %s", err)
		http.Error(w, "list progress records failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, recordsJson, http.StatusOK)
}

type ResetHistoryResponse struct {
	Deleted int `json:"deleted"`
}

// HandleResetHistory deletes the user's whole workout history. The delete
// runs in sequential batches, so a mid-way failure leaves earlier batches
// deleted and reports how far it got.
func (handler *Handler) HandleResetHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.progress.reset_history")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	deleted, err := handler.repo.ResetHistory(ctx, userID)
	if err != nil {
		log.Errorf("reset history for user %s (deleted %d before failure): %s", userID, deleted, err)
		http.Error(w, "reset history failed", http.StatusInternalServerError)
		return
	}

	respJson, err := json.Marshal(ResetHistoryResponse{Deleted: deleted})
	if err != nil {
		log.Errorf("marshal reset history response: %s", err)
		http.Error(w, "reset history failed", http.StatusInternalServerError)
		return
	}

	log.Debugf("history reset for user %s, %d logs deleted", userID, deleted)
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}

type AddHealthLogRequest struct {
	Weight int       `json:"weight"`
	Date   time.Time `json:"date,omitempty"`
}

func (handler *Handler) HandleAddHealthLog(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.progress.add_health_log")
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

	var addReq AddHealthLogRequest
	if err := json.NewDecoder(r.Body).Decode(&addReq); err != nil {
		log.Errorf("add health log, unmarshal json params: %s", err)
		http.Error(w, "add health log failed", http.StatusBadRequest)
		return
	}

	if addReq.Weight <= 0 {
		http.Error(w, "error, weight must be positive", http.StatusBadRequest)
		return
	}

	added, err := handler.repo.AddHealthLog(ctx, HealthLog{
		UserID: userID,
		Date:   addReq.Date,
		Weight: addReq.Weight,
	})
	if err != nil {
		log.Errorf("add health log: %s", err)
		http.Error(w, "add health log failed", http.StatusInternalServerError)
		return
	}

	handler.metricsManager.CounterHealthLogs.Inc()

	addedJson, err := json.Marshal(added)
	if err != nil {
		log.Errorf("marshal added health log: %s", err)
		http.Error(w, "add health log failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, addedJson, http.StatusCreated)
}

func (handler *Handler) HandleListHealthLogs(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.progress.list_health_logs")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	healthLogs, err := handler.repo.ListHealthLogs(ctx, userID)
	if err != nil {
		log.Errorf("list health logs: %s", err)
		http.Error(w, "list health logs failed", http.StatusInternalServerError)
		return
	}

	healthLogsJson, err := json.Marshal(healthLogs)
	if err != nil {
		log.Errorf("marshal health logs: %s", err)
		http.Error(w, "list health logs failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, healthLogsJson, http.StatusOK)
}

type ChartPoint struct {
	Date        time.Time `json:"date"`
	Volume      int       `json:"volume"`
	WorkoutName string    `json:"workoutName"`
}

type ActivePlanSummary struct {
	ID          string                `json:"id"`
	Name        string                `json:"name"`
	NextSession *plans.WorkoutSession `json:"nextSession"`
}

type DashboardSummary struct {
	TotalWorkouts int                `json:"totalWorkouts"`
	TotalVolume   int                `json:"totalVolume"`
	TotalMinutes  int                `json:"totalMinutes"`
	Chart         []ChartPoint       `json:"chart"`
	ActivePlan    *ActivePlanSummary `json:"activePlan,omitempty"`
}

// HandleDashboard aggregates the user's history into the dashboard stats:
// totals, a volume chart of the last workouts, and the predicted next
// session of the active plan.
func (handler *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.progress.dashboard")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	records, err := handler.repo.List(ctx, userID)
	if err != nil {
		log.Errorf("dashboard, list progress records: %s", err)
		http.Error(w, "dashboard failed", http.StatusInternalServerError)
		return
	}

	summary := DashboardSummary{
		TotalWorkouts: len(records),
	}
	for _, record := range records {
		summary.TotalVolume += record.Volume
		summary.TotalMinutes += record.DurationMinutes
	}

	// records come most recent first; the chart wants the last N in
	// chronological order
	chartRecords := records
	if len(chartRecords) > dashboardChartSize {
		chartRecords = chartRecords[:dashboardChartSize]
	}
	for i := len(chartRecords) - 1; i >= 0; i-- {
		summary.Chart = append(summary.Chart, ChartPoint{
			Date:        chartRecords[i].Date,
			Volume:      chartRecords[i].Volume,
			WorkoutName: chartRecords[i].WorkoutName,
		})
	}

	summary.ActivePlan = handler.activePlanSummary(ctx, userID)

	summaryJson, err := json.Marshal(summary)
	if err != nil {
		log.Errorf("marshal dashboard summary: %s", err)
		http.Error(w, "dashboard failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, summaryJson, http.StatusOK)
}

// activePlanSummary resolves the user's active plan and its next session.
// Any referential gap (no active plan, plan deleted meanwhile) yields nil
// instead of an error, the dashboard just omits the card.
func (handler *Handler) activePlanSummary(ctx context.Context, userID string) *ActivePlanSummary {
	user, err := handler.users.Get(ctx, userID)
	if err != nil {
		log.Errorf("dashboard, get user %s: %s", userID, err)
		return nil
	}
	if user.ActivePlanID == "" {
		return nil
	}

	plan, err := handler.plans.Get(ctx, user.ActivePlanID)
	if err != nil {
		if !errors.Is(err, plans.ErrPlanNotFound) {
			log.Errorf("dashboard, get active plan %s: %s", user.ActivePlanID, err)
		}
		return nil
	}

	lastTag, err := handler.repo.LastSessionTag(ctx, userID, plan.ID)
	if err != nil {
		log.Errorf("dashboard, last session tag: %s", err)
		return nil
	}

	next, _ := plans.NextSession(plan.Sessions, lastTag)
	return &ActivePlanSummary{
		ID:          plan.ID,
		Name:        plan.Name,
		NextSession: next,
	}
}
