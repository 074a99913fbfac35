package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/solarinvoice/invoicer/internal/auth"
	"github.com/solarinvoice/invoicer/internal/config"
	"github.com/solarinvoice/invoicer/internal/logger"
	"github.com/solarinvoice/invoicer/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type whoami struct {
	UserID        string `json:"user_id"`
	Authenticated bool   `json:"authenticated"`
}

func newAuthRouter(cfg *config.Configuration, mw gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.GET("/me", mw, func(c *gin.Context) {
		ctx := c.Request.Context()
		c.JSON(http.StatusOK, whoami{
			UserID:        types.GetUserID(ctx),
			Authenticated: types.IsAuthenticated(ctx),
		})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.Auth.Secret = "middleware-test-secret"
	log := logger.NewNoopLogger()

	token, err := auth.NewProvider(cfg).GenerateToken("user_42", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name         string
		optional     bool
		header       string
		wantStatus   int
		wantUserID   string
		wantSignedIn bool
	}{
		{name: "optional without header is a guest", optional: true, wantStatus: http.StatusOK, wantUserID: types.DefaultUserID},
		{name: "optional with valid token signs in", optional: true, header: "Bearer " + token, wantStatus: http.StatusOK, wantUserID: "user_42", wantSignedIn: true},
		{name: "optional with bad token is rejected", optional: true, header: "Bearer nope", wantStatus: http.StatusUnauthorized},
		{name: "required without header", wantStatus: http.StatusUnauthorized},
		{name: "required with wrong scheme", header: "Basic abc", wantStatus: http.StatusUnauthorized},
		{name: "required with valid token", header: "Bearer " + token, wantStatus: http.StatusOK, wantUserID: "user_42", wantSignedIn: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mw := AuthenticateMiddleware(cfg, log)
			if tt.optional {
				mw = OptionalAuthMiddleware(cfg, log)
			}
			r := newAuthRouter(cfg, mw)

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set(types.HeaderAuthorization, tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantStatus != http.StatusOK {
				assert.Contains(t, w.Body.String(), `"code":"unauthorized"`)
				return
			}
			assert.Contains(t, w.Body.String(), `"user_id":"`+tt.wantUserID+`"`)
			if tt.wantSignedIn {
				assert.Contains(t, w.Body.String(), `"authenticated":true`)
			} else {
				assert.Contains(t, w.Body.String(), `"authenticated":false`)
			}
		})
	}
}
