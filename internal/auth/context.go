package auth

import "context"

type contextKey string

const userIDKey = contextKey("user_id")

func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserID returns the authenticated user id, or 0 outside an authenticated request.
func UserID(ctx context.Context) int {
	if val, ok := ctx.Value(userIDKey).(int); ok {
		return val
	}
	return 0
}
