package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/solarinvoice/invoicer/internal/api/dto"
	v1 "github.com/solarinvoice/invoicer/internal/api/v1"
	"github.com/solarinvoice/invoicer/internal/auth"
	"github.com/solarinvoice/invoicer/internal/domain/packages"
	ierr "github.com/solarinvoice/invoicer/internal/errors"
	"github.com/solarinvoice/invoicer/internal/sentry"
	"github.com/solarinvoice/invoicer/internal/service"
	"github.com/solarinvoice/invoicer/internal/testutil"
	"github.com/solarinvoice/invoicer/internal/types"
	"github.com/stretchr/testify/suite"
)

type RouterSuite struct {
	testutil.BaseServiceTestSuite
	router *gin.Engine
	token  string
	pkg    *packages.Package
}

func TestRouter(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	s.BaseServiceTestSuite.SetupSuite()
	s.GetConfig().Auth.Secret = "router-test-secret"

	token, err := auth.NewProvider(s.GetConfig()).GenerateToken("user_router", time.Hour)
	s.Require().NoError(err)
	s.token = token
}

func (s *RouterSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	stores := s.GetStores()
	params := service.NewServiceParams(
		s.GetLogger(),
		s.GetConfig(),
		s.GetDB(),
		stores.InvoiceRepo,
		stores.SequenceRepo,
		stores.CustomerRepo,
		stores.PackageRepo,
		stores.VoucherRepo,
		stores.AgentRepo,
	)

	handlers := Handlers{
		Health:  v1.NewHealthHandler(s.GetLogger()),
		Invoice: v1.NewInvoiceHandler(service.NewInvoiceService(params), s.GetLogger()),
		Voucher: v1.NewVoucherHandler(service.NewVoucherService(params), s.GetLogger()),
	}
	s.router = NewRouter(handlers, s.GetConfig(), s.GetLogger(), sentry.NewSentryService(s.GetConfig(), s.GetLogger()))
	s.pkg = s.CreatePackage("Residential 12 Panel", "18276.00")
}

func (s *RouterSuite) do(method, path string, body any, signedIn bool) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if signedIn {
		req.Header.Set(types.HeaderAuthorization, "Bearer "+s.token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *RouterSuite) createInvoice(body map[string]any, signedIn bool) *dto.CreateInvoiceResponse {
	w := s.do(http.MethodPost, "/v1/invoices/on-the-fly", body, signedIn)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var resp dto.CreateInvoiceResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	return &resp
}

func (s *RouterSuite) errorCode(w *httptest.ResponseRecorder) string {
	var resp ierr.ErrorResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp.Error.Code
}

func (s *RouterSuite) TestHealth() {
	w := s.do(http.MethodGet, "/health", nil, false)
	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"status":"ok"}`, w.Body.String())
}

func (s *RouterSuite) TestCreateOnTheFlyAsGuest() {
	resp := s.createInvoice(map[string]any{
		"package_id":     s.pkg.ID,
		"discount_given": "100",
		"apply_sst":      true,
		"agent_markup":   "500",
		"customer_name":  "Tan Ah Kow",
		"customer_phone": "0123456789",
		"internal_notes": "call after 6pm",
	}, false)

	s.Equal("INV-000001", resp.InvoiceNumber)
	// package 18276 + markup 500 - 100, taxed at 8%
	s.Equal("18676.00", resp.Subtotal.StringFixed(2))
	s.Equal("1494.08", resp.TaxAmount.StringFixed(2))
	s.Equal("20170.08", resp.TotalAmount.StringFixed(2))
	s.Nil(resp.AgentMarkup)
	s.Equal("https://quote.example.com/v1/view/"+resp.ShareToken, resp.InvoiceLink)
}

func (s *RouterSuite) TestCreateOnTheFlySignedInSeesMarkup() {
	resp := s.createInvoice(map[string]any{
		"package_id":   s.pkg.ID,
		"agent_markup": "500",
	}, true)

	s.Require().NotNil(resp.AgentMarkup)
	s.Equal("500.00", resp.AgentMarkup.StringFixed(2))
}

func (s *RouterSuite) TestCreateOnTheFlyErrors() {
	tests := []struct {
		name       string
		body       map[string]any
		wantStatus int
		wantCode   string
	}{
		{
			name:       "missing package",
			body:       map[string]any{},
			wantStatus: http.StatusBadRequest,
			wantCode:   ierr.ErrCodeValidation,
		},
		{
			name:       "percent over 100",
			body:       map[string]any{"package_id": s.pkg.ID, "discount_percent": "120"},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   ierr.ErrCodeInvalidDiscount,
		},
		{
			name:       "unknown voucher",
			body:       map[string]any{"package_id": s.pkg.ID, "voucher_code": "NOPE"},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   ierr.ErrCodeVoucherInvalid,
		},
		{
			name:       "discount larger than the invoice",
			body:       map[string]any{"package_id": s.pkg.ID, "discount_fixed": "20000"},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   ierr.ErrCodeNegativeTotal,
		},
		{
			name:       "unknown package",
			body:       map[string]any{"package_id": "pkg_missing"},
			wantStatus: http.StatusNotFound,
			wantCode:   ierr.ErrCodeNotFound,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			w := s.do(http.MethodPost, "/v1/invoices/on-the-fly", tt.body, false)
			s.Equal(tt.wantStatus, w.Code, w.Body.String())
			s.Equal(tt.wantCode, s.errorCode(w))
		})
	}
	s.Equal(0, s.GetStores().InvoiceRepo.Len())
}

func (s *RouterSuite) TestPublicViewHidesInternalFields() {
	resp := s.createInvoice(map[string]any{
		"package_id":     s.pkg.ID,
		"agent_markup":   "500",
		"customer_name":  "Tan Ah Kow",
		"customer_notes": "Installation in March",
		"internal_notes": "call after 6pm",
	}, false)

	w := s.do(http.MethodGet, "/v1/view/"+resp.ShareToken, nil, false)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.Contains(w.Body.String(), "Installation in March")
	s.NotContains(w.Body.String(), "call after 6pm")
	s.NotContains(w.Body.String(), "agent_markup")

	w = s.do(http.MethodGet, "/v1/view/not-a-token", nil, false)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *RouterSuite) TestInvoiceRoutesRequireAuth() {
	resp := s.createInvoice(map[string]any{"package_id": s.pkg.ID}, false)

	w := s.do(http.MethodGet, "/v1/invoices/"+resp.InvoiceID, nil, false)
	s.Equal(http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodGet, "/v1/invoices/"+resp.InvoiceID, nil, true)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.Contains(w.Body.String(), resp.InvoiceNumber)

	w = s.do(http.MethodGet, "/v1/invoices/number/"+resp.InvoiceNumber, nil, true)
	s.Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/v1/invoices?limit=10", nil, true)
	s.Require().Equal(http.StatusOK, w.Code)
	var list dto.ListInvoicesResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &list))
	s.Equal(1, list.Pagination.Total)
}

func (s *RouterSuite) TestStatusTransitionsAndShareLink() {
	resp := s.createInvoice(map[string]any{"package_id": s.pkg.ID}, false)

	w := s.do(http.MethodPost, "/v1/invoices/"+resp.InvoiceID+"/mark-sent", nil, true)
	s.Equal(http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/v1/invoices/"+resp.InvoiceID+"/share", map[string]any{"expires_in_days": 30}, true)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var share dto.GenerateShareLinkResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &share))
	s.NotEqual(resp.ShareToken, share.ShareToken)

	// the old link stops working once a new one is issued
	w = s.do(http.MethodGet, "/v1/view/"+resp.ShareToken, nil, false)
	s.Equal(http.StatusNotFound, w.Code)
	w = s.do(http.MethodGet, "/v1/view/"+share.ShareToken, nil, false)
	s.Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodPost, "/v1/invoices/"+resp.InvoiceID+"/cancel", nil, true)
	s.Equal(http.StatusOK, w.Code)
	w = s.do(http.MethodGet, "/v1/view/"+share.ShareToken, nil, false)
	s.Equal(http.StatusNotFound, w.Code)

	// cancelled is terminal
	w = s.do(http.MethodPost, "/v1/invoices/"+resp.InvoiceID+"/mark-paid", nil, true)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal(ierr.ErrCodeInvalidOperation, s.errorCode(w))
}

func (s *RouterSuite) TestValidateVoucher() {
	s.CreateVoucher("SAVE10", types.VoucherKindPercent, "10")

	w := s.do(http.MethodGet, "/v1/vouchers/validate/save10?package_id="+s.pkg.ID, nil, false)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var preview dto.VoucherPreviewResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &preview))
	s.Equal("1827.60", preview.DiscountAmount.StringFixed(2))

	w = s.do(http.MethodGet, "/v1/vouchers/validate/UNKNOWN", nil, false)
	s.Equal(http.StatusUnprocessableEntity, w.Code)
}
