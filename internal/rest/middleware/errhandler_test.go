package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/solarinvoice/invoicer/internal/config"
	ierr "github.com/solarinvoice/invoicer/internal/errors"
	"github.com/solarinvoice/invoicer/internal/logger"
	"github.com/solarinvoice/invoicer/internal/sentry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorHandler(t *testing.T) {
	cfg := config.GetDefaultConfig()
	log := logger.NewNoopLogger()

	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
		wantDetail  string
	}{
		{
			name: "invalid discount",
			err: ierr.NewError("discount over 100").
				WithHint("Discount percent must be between 0 and 100").
				WithReportableDetails(map[string]any{"discount_percent": "120"}).
				Mark(ierr.ErrInvalidDiscount),
			wantStatus:  http.StatusUnprocessableEntity,
			wantCode:    ierr.ErrCodeInvalidDiscount,
			wantMessage: "Discount percent must be between 0 and 100",
			wantDetail:  "discount_percent",
		},
		{
			name:        "not found",
			err:         ierr.NewError("missing").WithHint("Package not found").Mark(ierr.ErrNotFound),
			wantStatus:  http.StatusNotFound,
			wantCode:    ierr.ErrCodeNotFound,
			wantMessage: "Package not found",
		},
		{
			name:        "unmarked errors are internal",
			err:         errors.New("boom"),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    ierr.ErrCodeSystemError,
			wantMessage: "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(RequestIDMiddleware, ErrorHandler(log, sentry.NewSentryService(cfg, log)))
			r.GET("/fail", func(c *gin.Context) {
				_ = c.Error(tt.err)
			})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fail", nil))

			require.Equal(t, tt.wantStatus, w.Code)
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

			var resp ierr.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Equal(t, tt.wantMessage, resp.Error.Display)
			if tt.wantDetail != "" {
				assert.Contains(t, resp.Error.Details, tt.wantDetail)
			}
		})
	}
}
