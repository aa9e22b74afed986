package users

import "time"

var Role = struct {
	User  string
	Admin string
}{
	User:  "user",
	Admin: "admin",
}

var Status = struct {
	Active   string
	Inactive string
}{
	Active:   "active",
	Inactive: "inactive",
}

type User struct {
	ID           string    `json:"id"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Login        string    `json:"login"`
	Role         string    `json:"role"`
	Status       string    `json:"status"`
	ActivePlanID string    `json:"activeWorkoutPlanId,omitempty"`
	BirthDate    string    `json:"birthDate,omitempty"` // YYYY-MM-DD
	Height       int       `json:"height,omitempty"`    // in cm
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (u User) IsAdmin() bool {
	return u.Role == Role.Admin
}

func (u User) IsActive() bool {
	return u.Status == Status.Active
}
