package auth

import "context"

// LoginTestChecker is an in-memory Checker used in unit tests.
type LoginTestChecker struct {
	// token -> user id
	LoggedSessions map[string]string
}

func NewLoginTestChecker() *LoginTestChecker {
	return &LoginTestChecker{
		LoggedSessions: make(map[string]string),
	}
}

func (ltc *LoginTestChecker) LoggedUser(_ context.Context, token string) (string, error) {
	userID, ok := ltc.LoggedSessions[token]
	if !ok {
		return "", ErrNotLoggedIn
	}
	return userID, nil
}
