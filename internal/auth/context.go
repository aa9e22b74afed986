package auth

import "context"

type contextKey string

const userIDContextKey contextKey = "fittrack-user-id"

// ContextWithUserID attaches the id of the authenticated user to the context.
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

// UserIDFromContext returns the id of the authenticated user, set by the auth middleware.
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDContextKey).(string)
	return userID, ok && userID != ""
}
