package testutil

import (
	"context"

	"github.com/solarinvoice/invoicer/internal/types"
)

// SetupContext returns a context for an anonymous request
func SetupContext() context.Context {
	ctx := context.Background()
	ctx = context.WithValue(ctx, types.CtxUserID, types.DefaultUserID)
	ctx = context.WithValue(ctx, types.CtxRequestID, types.GenerateUUID())
	return ctx
}

// SetupAuthenticatedContext returns a context for a signed in user
func SetupAuthenticatedContext(userID string) context.Context {
	ctx := context.WithValue(context.Background(), types.CtxRequestID, types.GenerateUUID())
	return types.SetAuthenticated(ctx, userID)
}
