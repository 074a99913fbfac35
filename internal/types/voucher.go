package types

import (
	ierr "github.com/solarinvoice/invoicer/internal/errors"
	"github.com/samber/lo"
)

// VoucherKind is how a voucher value is interpreted
type VoucherKind string

const (
	// VoucherKindFixed deducts a fixed amount
	VoucherKindFixed VoucherKind = "fixed"
	// VoucherKindPercent deducts a percentage of the discounted subtotal
	VoucherKindPercent VoucherKind = "percent"
)

func (k VoucherKind) Validate() error {
	allowed := []VoucherKind{VoucherKindFixed, VoucherKindPercent}
	if !lo.Contains(allowed, k) {
		return ierr.NewError("invalid voucher kind").
			WithHint("Please provide a valid voucher kind").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
