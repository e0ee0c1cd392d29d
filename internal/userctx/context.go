// Package userctx carries the authenticated user through request contexts.
package userctx

import "context"

type contextKey string

const userIDContextKey contextKey = "user_id"

// WithUserID returns a child context carrying the authenticated user id.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

// GetUserID extracts the authenticated user id, or "" when the request
// carries no identity.
func GetUserID(ctx context.Context) string {
	userID, _ := ctx.Value(userIDContextKey).(string)
	return userID
}
