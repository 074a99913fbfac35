package types

import (
	"context"
)

// ContextKey is a type for the keys of values stored in the context
type ContextKey string

const (
	CtxRequestID     ContextKey = "ctx_request_id"
	CtxUserID        ContextKey = "ctx_user_id"
	CtxAuthenticated ContextKey = "ctx_authenticated"
	CtxClientIP      ContextKey = "ctx_client_ip"

	// DefaultUserID is recorded as the actor for anonymous requests
	DefaultUserID = "00000000-0000-0000-0000-000000000000"
)

func GetUserID(ctx context.Context) string {
	if userID, ok := ctx.Value(CtxUserID).(string); ok {
		return userID
	}
	return ""
}

func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(CtxRequestID).(string); ok {
		return requestID
	}
	return ""
}

// IsAuthenticated reports whether the request carried a valid bearer token.
// Guest requests still get a user id for auditing but are not authenticated.
func IsAuthenticated(ctx context.Context) bool {
	if authenticated, ok := ctx.Value(CtxAuthenticated).(bool); ok {
		return authenticated
	}
	return false
}

// SetUserID sets the user ID in the context
func SetUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, CtxUserID, userID)
}

// SetAuthenticated marks the context as belonging to an authenticated caller
func SetAuthenticated(ctx context.Context, userID string) context.Context {
	ctx = context.WithValue(ctx, CtxUserID, userID)
	return context.WithValue(ctx, CtxAuthenticated, true)
}
