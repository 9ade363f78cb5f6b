package common

import "context"

// ContextKey represents a context key type
type ContextKey string

const (
	ContextKeyUserID ContextKey = "user_id"
)

// WithUserID adds the network owner's id to context
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ContextKeyUserID, userID)
}

// GetUserID extracts the network owner's id from context
func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(ContextKeyUserID).(string)
	return userID, ok && userID != ""
}
