package workoutlog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/denisdmm/fittrack/internal/exercises"
	"github.com/denisdmm/fittrack/internal/plans"
	"github.com/denisdmm/fittrack/internal/progress"
	"github.com/denisdmm/fittrack/internal/telemetry/metrics"
	"github.com/denisdmm/fittrack/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
)

// prefillHistoryWindow bounds how far back the weight prefill looks.
const prefillHistoryWindow = 50

const adHocWorkoutName = "Treino Avulso"

var (
	ErrWorkoutActive     = errors.New("another workout is already active")
	ErrNoActiveWorkout   = errors.New("no active workout")
	ErrWorkoutIncomplete = errors.New("workout has incomplete exercises")
	ErrSessionNotFound   = errors.New("session not found in plan")
	ErrNoExercises       = errors.New("workout has no exercises")
)

type progressStore interface {
	Add(ctx context.Context, record progress.ProgressRecord) (*progress.ProgressRecord, error)
	ListRecent(ctx context.Context, userID string, limit int) ([]progress.ProgressRecord, error)
}

type planGetter interface {
	Get(ctx context.Context, id string) (*plans.WorkoutPlan, error)
}

type exerciseGetter interface {
	Get(ctx context.Context, id string) (*exercises.Exercise, error)
}

// StatusUpdate is the per-second live status pushed to stream subscribers.
type StatusUpdate struct {
	State          State  `json:"state"`
	WorkoutName    string `json:"workoutName"`
	ElapsedSeconds int    `json:"elapsedSeconds"`
	AllComplete    bool   `json:"allComplete"`
}

type Status struct {
	StatusUpdate
	Exercises []ExerciseLog `json:"exercises"`
}

type activeWorkout struct {
	log        *Log
	tickerStop chan struct{}
	// stream subscribers, each gets every tick
	subscribers map[chan StatusUpdate]struct{}
}

// Service drives live workouts. Each user has at most one active workout,
// held in an in-memory slot until finished or cancelled.
type Service struct {
	mu     sync.Mutex
	active map[string]*activeWorkout // user id -> active workout

	progressStore  progressStore
	plans          planGetter
	exercises      exerciseGetter
	metricsManager *metrics.Manager

	// injectable clock for tests
	nowFunc func() time.Time
}

func NewService(
	progressStore progressStore,
	plansRepo planGetter,
	exercisesRepo exerciseGetter,
	metricsManager *metrics.Manager,
) *Service {
	return &Service{
		active:         make(map[string]*activeWorkout),
		progressStore:  progressStore,
		plans:          plansRepo,
		exercises:      exercisesRepo,
		metricsManager: metricsManager,
		nowFunc:        time.Now,
	}
}

// Start initializes and activates a workout for the user. Target set counts
// come from the plan session (1 per exercise for ad-hoc workouts), weights
// are prefilled from the most recent log containing each exercise within
// the recent-history window, and reps always start at 0.
func (s *Service) Start(ctx context.Context, userID string, ref WorkoutRef) (_ *Status, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "workoutlog.start")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := ref.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if _, exists := s.active[userID]; exists {
		s.mu.Unlock()
		return nil, ErrWorkoutActive
	}
	s.mu.Unlock()

	workoutName, exerciseLogs, err := s.resolveExercises(ctx, ref)
	if err != nil {
		return nil, err
	}
	if len(exerciseLogs) == 0 {
		return nil, ErrNoExercises
	}

	if err := s.prefillWeights(ctx, userID, exerciseLogs); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.active[userID]; exists {
		return nil, ErrWorkoutActive
	}

	workoutLog := newLog(userID, ref, workoutName, exerciseLogs, s.nowFunc())
	aw := &activeWorkout{
		log:         workoutLog,
		subscribers: make(map[chan StatusUpdate]struct{}),
	}
	s.active[userID] = aw
	s.startTickerLocked(userID, aw)

	s.metricsManager.CounterWorkoutsStarted.Inc()
	s.metricsManager.GaugeActiveWorkouts.Inc()

	log.Debugf("workout [%s] started for user %s", workoutName, userID)
	return s.statusLocked(aw), nil
}

// resolveExercises turns the workout reference into per-exercise logs with
// target set counts. Session exercises whose catalog record is gone are
// filtered out instead of failing the whole start.
func (s *Service) resolveExercises(ctx context.Context, ref WorkoutRef) (string, []*ExerciseLog, error) {
	switch ref.Kind {
	case KindPlanSession:
		plan, err := s.plans.Get(ctx, ref.PlanID)
		if err != nil {
			return "", nil, fmt.Errorf("get plan: %w", err)
		}

		var session *plans.WorkoutSession
		for i := range plan.Sessions {
			if plan.Sessions[i].SessionTag == ref.SessionTag {
				session = &plan.Sessions[i]
				break
			}
		}
		if session == nil {
			return "", nil, ErrSessionNotFound
		}

		var exerciseLogs []*ExerciseLog
		for _, sessionExercise := range session.Exercises {
			exercise, err := s.exercises.Get(ctx, sessionExercise.ExerciseID)
			if err != nil {
				if errors.Is(err, exercises.ErrExerciseNotFound) {
					log.Warnf("plan %s session %s references missing exercise %s, skipping",
						plan.ID, session.SessionTag, sessionExercise.ExerciseID)
					continue
				}
				return "", nil, fmt.Errorf("get exercise: %w", err)
			}

			targetSets := len(sessionExercise.SetTargets)
			if targetSets == 0 {
				targetSets = 1
			}
			exerciseLogs = append(exerciseLogs, &ExerciseLog{
				ExerciseID: exercise.ID,
				Name:       exercise.Name,
				IsCardio:   exercise.IsCardio(),
				SetTargets: sessionExercise.SetTargets,
				Sets:       make([]SetLog, targetSets),
			})
		}

		return plan.Name, exerciseLogs, nil

	case KindAdHoc:
		workoutName := ref.Name
		if workoutName == "" {
			workoutName = adHocWorkoutName
		}

		var exerciseLogs []*ExerciseLog
		for _, exerciseID := range ref.ExerciseIDs {
			exercise, err := s.exercises.Get(ctx, exerciseID)
			if err != nil {
				if errors.Is(err, exercises.ErrExerciseNotFound) {
					log.Warnf("ad-hoc workout references missing exercise %s, skipping", exerciseID)
					continue
				}
				return "", nil, fmt.Errorf("get exercise: %w", err)
			}
			exerciseLogs = append(exerciseLogs, &ExerciseLog{
				ExerciseID: exercise.ID,
				Name:       exercise.Name,
				IsCardio:   exercise.IsCardio(),
				Sets:       make([]SetLog, 1),
			})
		}

		return workoutName, exerciseLogs, nil

	default:
		return "", nil, fmt.Errorf("%w: %q", ErrUnknownWorkoutKind, ref.Kind)
	}
}

// prefillWeights fills each set's weight from the most recent log that
// contains the exercise, matching sets by index. Cardio weights stay 0, the
// weight field means intensity there and starts fresh every time.
func (s *Service) prefillWeights(ctx context.Context, userID string, exerciseLogs []*ExerciseLog) error {
	recent, err := s.progressStore.ListRecent(ctx, userID, prefillHistoryWindow)
	if err != nil {
		return fmt.Errorf("list recent logs: %w", err)
	}

	for _, el := range exerciseLogs {
		if el.IsCardio {
			continue
		}

		var lastSets []progress.LoggedSet
		for _, record := range recent {
			if sets, ok := record.LoggedSets[el.ExerciseID]; ok {
				lastSets = sets
				break
			}
		}

		for i := range el.Sets {
			if i < len(lastSets) {
				el.Sets[i].Weight = lastSets[i].Weight
			}
		}
	}

	return nil
}

func (s *Service) Status(userID string) (*Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	aw, exists := s.active[userID]
	if !exists {
		return nil, ErrNoActiveWorkout
	}
	return s.statusLocked(aw), nil
}

func (s *Service) UpdateSet(userID, exerciseID string, setIndex, reps, weight int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	aw, exists := s.active[userID]
	if !exists {
		return ErrNoActiveWorkout
	}
	return aw.log.UpdateSet(exerciseID, setIndex, reps, weight)
}

func (s *Service) ToggleSet(userID, exerciseID string, setIndex int) (exerciseComplete bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	aw, exists := s.active[userID]
	if !exists {
		return false, ErrNoActiveWorkout
	}
	return aw.log.ToggleSet(exerciseID, setIndex)
}

// Pause freezes the timer. The per-second ticker stops while paused.
func (s *Service) Pause(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	aw, exists := s.active[userID]
	if !exists {
		return ErrNoActiveWorkout
	}
	if err := aw.log.Pause(s.nowFunc()); err != nil {
		return err
	}
	s.stopTickerLocked(aw)
	return nil
}

func (s *Service) Resume(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	aw, exists := s.active[userID]
	if !exists {
		return ErrNoActiveWorkout
	}
	if err := aw.log.Resume(s.nowFunc()); err != nil {
		return err
	}
	s.startTickerLocked(userID, aw)
	return nil
}

// Finish persists the workout and clears the slot. It refuses while any
// exercise is incomplete. If persisting fails the in-memory state stays
// untouched so the user can retry without losing logged data.
func (s *Service) Finish(ctx context.Context, userID string) (_ *progress.ProgressRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "workoutlog.finish")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	s.mu.Lock()
	aw, exists := s.active[userID]
	if !exists {
		s.mu.Unlock()
		return nil, ErrNoActiveWorkout
	}
	if !aw.log.AllComplete() {
		s.mu.Unlock()
		return nil, ErrWorkoutIncomplete
	}
	record := aw.log.Record(s.nowFunc())
	s.mu.Unlock()

	persisted, err := s.progressStore.Add(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("persist workout log: %w", err)
	}

	s.mu.Lock()
	if s.active[userID] != aw {
		// cancelled concurrently while persisting, the record is saved
		// but there is no slot left to clear
		s.mu.Unlock()
		return persisted, nil
	}
	s.stopTickerLocked(aw)
	s.closeSubscribersLocked(aw)
	delete(s.active, userID)
	s.mu.Unlock()

	s.metricsManager.CounterWorkoutsFinished.Inc()
	s.metricsManager.GaugeActiveWorkouts.Dec()
	s.metricsManager.HistWorkoutDurationMinutes.Observe(float64(persisted.DurationMinutes))

	log.Debugf("workout [%s] finished for user %s, volume %d", record.WorkoutName, userID, record.Volume)
	return persisted, nil
}

// Cancel discards the active workout without persisting anything. It is
// synchronous and needs no store round-trip.
func (s *Service) Cancel(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	aw, exists := s.active[userID]
	if !exists {
		return ErrNoActiveWorkout
	}

	s.stopTickerLocked(aw)
	s.closeSubscribersLocked(aw)
	delete(s.active, userID)

	s.metricsManager.CounterWorkoutsCancelled.Inc()
	s.metricsManager.GaugeActiveWorkouts.Dec()

	log.Debugf("workout cancelled for user %s", userID)
	return nil
}

// Subscribe registers a live status stream for the user's active workout.
// The returned cancel func must be called when the consumer goes away.
func (s *Service) Subscribe(userID string) (<-chan StatusUpdate, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	aw, exists := s.active[userID]
	if !exists {
		return nil, nil, ErrNoActiveWorkout
	}

	updates := make(chan StatusUpdate, 8)
	aw.subscribers[updates] = struct{}{}

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, stillThere := aw.subscribers[updates]; stillThere {
			delete(aw.subscribers, updates)
			close(updates)
		}
	}

	return updates, cancel, nil
}

func (s *Service) statusLocked(aw *activeWorkout) *Status {
	status := &Status{
		StatusUpdate: s.statusUpdateLocked(aw),
		Exercises:    make([]ExerciseLog, 0, len(aw.log.Exercises)),
	}
	for _, el := range aw.log.Exercises {
		elCopy := *el
		elCopy.Sets = append([]SetLog(nil), el.Sets...)
		status.Exercises = append(status.Exercises, elCopy)
	}
	return status
}

func (s *Service) statusUpdateLocked(aw *activeWorkout) StatusUpdate {
	return StatusUpdate{
		State:          aw.log.State(),
		WorkoutName:    aw.log.WorkoutName,
		ElapsedSeconds: int(aw.log.Elapsed(s.nowFunc()).Seconds()),
		AllComplete:    aw.log.AllComplete(),
	}
}

// startTickerLocked spawns the per-second tick goroutine, which runs only
// while the workout is in progress.
func (s *Service) startTickerLocked(userID string, aw *activeWorkout) {
	if aw.tickerStop != nil {
		return
	}
	stop := make(chan struct{})
	aw.tickerStop = stop
	go s.runTicker(userID, stop)
}

func (s *Service) stopTickerLocked(aw *activeWorkout) {
	if aw.tickerStop == nil {
		return
	}
	close(aw.tickerStop)
	aw.tickerStop = nil
}

func (s *Service) closeSubscribersLocked(aw *activeWorkout) {
	for updates := range aw.subscribers {
		delete(aw.subscribers, updates)
		close(updates)
	}
}

func (s *Service) runTicker(userID string, stop chan struct{}) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.broadcast(userID)
		}
	}
}

func (s *Service) broadcast(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	aw, exists := s.active[userID]
	if !exists {
		return
	}

	update := s.statusUpdateLocked(aw)
	for updates := range aw.subscribers {
		select {
		case updates <- update:
		default:
			// slow consumer, drop the tick
		}
	}
}
