package dto

import (
	"github.com/shopspring/decimal"
	"github.com/solarinvoice/invoicer/internal/types"
)

// VoucherPreviewResponse shows what a voucher would take off a package
type VoucherPreviewResponse struct {
	Code           string            `json:"voucher_code"`
	Title          string            `json:"title"`
	Kind           types.VoucherKind `json:"kind"`
	Value          decimal.Decimal   `json:"value"`
	PackagePrice   decimal.Decimal   `json:"package_price,omitempty"`
	DiscountAmount decimal.Decimal   `json:"discount_amount"`
}
