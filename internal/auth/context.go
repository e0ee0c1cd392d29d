package auth

import (
	"context"

	"github.com/mealbuddy/server/internal/userctx"
)

func WithUserID(ctx context.Context, userID string) context.Context {
	return userctx.WithUserID(ctx, userID)
}

func GetUserID(ctx context.Context) string {
	return userctx.GetUserID(ctx)
}
