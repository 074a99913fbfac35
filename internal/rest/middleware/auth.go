package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/solarinvoice/invoicer/internal/auth"
	"github.com/solarinvoice/invoicer/internal/config"
	ierr "github.com/solarinvoice/invoicer/internal/errors"
	"github.com/solarinvoice/invoicer/internal/logger"
	"github.com/solarinvoice/invoicer/internal/types"
)

// GuestAuthenticateMiddleware records the default user for requests that do not sign in
func GuestAuthenticateMiddleware(c *gin.Context) {
	ctx := context.WithValue(c.Request.Context(), types.CtxUserID, types.DefaultUserID)
	c.Request = c.Request.WithContext(ctx)
	c.Next()
}

// OptionalAuthMiddleware signs the request in when a bearer token is present
// and falls back to a guest otherwise. A token that is present but invalid
// is rejected rather than silently ignored.
func OptionalAuthMiddleware(cfg *config.Configuration, logger *logger.Logger) gin.HandlerFunc {
	provider := auth.NewProvider(cfg)

	return func(c *gin.Context) {
		if c.GetHeader(types.HeaderAuthorization) == "" {
			GuestAuthenticateMiddleware(c)
			return
		}
		authenticate(c, provider, logger)
	}
}

// AuthenticateMiddleware requires a valid bearer token
func AuthenticateMiddleware(cfg *config.Configuration, logger *logger.Logger) gin.HandlerFunc {
	provider := auth.NewProvider(cfg)

	return func(c *gin.Context) {
		authenticate(c, provider, logger)
	}
}

func authenticate(c *gin.Context, provider *auth.Provider, logger *logger.Logger) {
	authHeader := c.GetHeader(types.HeaderAuthorization)
	if authHeader == "" {
		unauthorized(c, "Unauthorized")
		return
	}

	// Check if the authorization header is in the correct format
	if !strings.HasPrefix(authHeader, "Bearer ") {
		unauthorized(c, "Invalid authorization header format")
		return
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	claims, err := provider.ValidateToken(c.Request.Context(), tokenString)
	if err != nil {
		logger.Debugw("failed to validate token", "error", err)
		unauthorized(c, "Invalid token")
		return
	}

	ctx := types.SetAuthenticated(c.Request.Context(), claims.UserID)
	c.Request = c.Request.WithContext(ctx)
	c.Next()
}

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, ierr.ErrorResponse{
		Error: ierr.ErrorDetail{
			Code:    "unauthorized",
			Display: message,
		},
	})
}
