package users

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

type repoMock struct {
	users map[string]*User
}

func NewMockUsersRepo() *repoMock {
	return &repoMock{
		users: make(map[string]*User),
	}
}

func (r *repoMock) Add(_ context.Context, user User) (*User, error) {
	for _, u := range r.users {
		if strings.EqualFold(u.Login, user.Login) {
			return nil, ErrLoginTaken
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	r.users[user.ID] = &user
	return &user, nil
}

func (r *repoMock) Get(_ context.Context, id string) (*User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (r *repoMock) GetByLogin(_ context.Context, login string) (*User, error) {
	for _, u := range r.users {
		if strings.EqualFold(u.Login, login) {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *repoMock) List(context.Context) ([]User, error) {
	var usersList []User
	for _, u := range r.users {
		usersList = append(usersList, *u)
	}
	return usersList, nil
}

func (r *repoMock) Update(ctx context.Context, params UpdateParams) error {
	user, err := r.Get(ctx, params.ID)
	if err != nil {
		return err
	}
	if params.FirstName != nil {
		user.FirstName = *params.FirstName
	}
	if params.LastName != nil {
		user.LastName = *params.LastName
	}
	if params.Role != nil {
		user.Role = *params.Role
	}
	if params.Status != nil {
		user.Status = *params.Status
	}
	if params.ActivePlanID != nil {
		user.ActivePlanID = *params.ActivePlanID
	}
	if params.BirthDate != nil {
		user.BirthDate = *params.BirthDate
	}
	if params.Height != nil {
		user.Height = *params.Height
	}
	return nil
}

func (r *repoMock) Deactivate(ctx context.Context, id string) error {
	user, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	user.Status = Status.Inactive
	return nil
}

func (r *repoMock) LoginExists(_ context.Context, login string) (bool, error) {
	for _, u := range r.users {
		if strings.EqualFold(u.Login, login) {
			return true, nil
		}
	}
	return false, nil
}
