package plans

import (
	"context"

	"github.com/google/uuid"
)

type repoMock struct {
	plans map[string]*WorkoutPlan
}

func NewMockPlansRepo() *repoMock {
	return &repoMock{
		plans: make(map[string]*WorkoutPlan),
	}
}

func (r *repoMock) Add(_ context.Context, plan WorkoutPlan) (*WorkoutPlan, error) {
	if plan.ID == "" {
		plan.ID = uuid.NewString()
	}
	r.plans[plan.ID] = &plan
	return &plan, nil
}

func (r *repoMock) Get(_ context.Context, id string) (*WorkoutPlan, error) {
	plan, ok := r.plans[id]
	if !ok {
		return nil, ErrPlanNotFound
	}
	return plan, nil
}

func (r *repoMock) List(context.Context) ([]WorkoutPlan, error) {
	var plansList []WorkoutPlan
	for _, p := range r.plans {
		plansList = append(plansList, *p)
	}
	return plansList, nil
}

func (r *repoMock) Update(ctx context.Context, plan WorkoutPlan) error {
	if _, err := r.Get(ctx, plan.ID); err != nil {
		return err
	}
	r.plans[plan.ID] = &plan
	return nil
}

func (r *repoMock) Delete(_ context.Context, id string) error {
	if _, ok := r.plans[id]; !ok {
		return ErrPlanNotFound
	}
	delete(r.plans, id)
	return nil
}
