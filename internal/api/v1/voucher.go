package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/solarinvoice/invoicer/internal/logger"
	"github.com/solarinvoice/invoicer/internal/service"
)

type VoucherHandler struct {
	voucherService service.VoucherService
	logger         *logger.Logger
}

func NewVoucherHandler(voucherService service.VoucherService, logger *logger.Logger) *VoucherHandler {
	return &VoucherHandler{
		voucherService: voucherService,
		logger:         logger,
	}
}

// ValidateVoucher godoc
// @Summary Preview a voucher against a package
// @Tags Vouchers
// @Produce json
// @Param code path string true "Voucher code"
// @Param package_id query string false "Package ID"
// @Success 200 {object} dto.VoucherPreviewResponse
// @Failure 422 {object} ierr.ErrorResponse
// @Router /vouchers/validate/{code} [get]
func (h *VoucherHandler) ValidateVoucher(c *gin.Context) {
	resp, err := h.voucherService.PreviewVoucher(c.Request.Context(), c.Param("code"), c.Query("package_id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
