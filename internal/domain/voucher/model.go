package voucher

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	ierr "github.com/solarinvoice/invoicer/internal/errors"
	"github.com/solarinvoice/invoicer/internal/types"
)

// Voucher is a redeemable code granting a fixed or percent deduction
type Voucher struct {
	ID                 string            `db:"id" json:"id"`
	Code               string            `db:"code" json:"code"`
	Title              string            `db:"title" json:"title"`
	Kind               types.VoucherKind `db:"kind" json:"kind"`
	Value              decimal.Decimal   `db:"value" json:"value"`
	Active             bool              `db:"active" json:"active"`
	ValidFrom          *time.Time        `db:"valid_from" json:"valid_from,omitempty"`
	ValidUntil         *time.Time        `db:"valid_until" json:"valid_until,omitempty"`
	MaxRedemptions     *int              `db:"max_redemptions" json:"max_redemptions,omitempty"`
	TimesRedeemed      int               `db:"times_redeemed" json:"times_redeemed"`
	InvoiceDescription string            `db:"invoice_description" json:"invoice_description"`
	types.BaseModel
}

// NormalizeCode makes voucher codes case and whitespace insensitive
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsConsumed is true once a voucher with a redemption cap has hit it
func (v *Voucher) IsConsumed() bool {
	return v.MaxRedemptions != nil && v.TimesRedeemed >= *v.MaxRedemptions
}

// CheckRedeemable returns ErrVoucherInvalid for inactive or used up vouchers
// and ErrVoucherExpired when now falls outside the validity window.
func (v *Voucher) CheckRedeemable(now time.Time) error {
	if !v.Active || v.Status != types.StatusPublished {
		return ierr.NewError("voucher is not active").
			WithHintf("Voucher %s is not valid", v.Code).
			Mark(ierr.ErrVoucherInvalid)
	}
	if v.IsConsumed() {
		return ierr.NewError("voucher has been fully redeemed").
			WithHintf("Voucher %s has already been used", v.Code).
			Mark(ierr.ErrVoucherInvalid)
	}
	if v.ValidFrom != nil && now.Before(*v.ValidFrom) {
		return ierr.NewError("voucher is not yet valid").
			WithHintf("Voucher %s is not valid yet", v.Code).
			WithReportableDetails(map[string]any{
				"valid_from": v.ValidFrom,
			}).
			Mark(ierr.ErrVoucherExpired)
	}
	if v.ValidUntil != nil && now.After(*v.ValidUntil) {
		return ierr.NewError("voucher has expired").
			WithHintf("Voucher %s has expired", v.Code).
			WithReportableDetails(map[string]any{
				"valid_until": v.ValidUntil,
			}).
			Mark(ierr.ErrVoucherExpired)
	}
	return nil
}

// Deduction is the positive amount this voucher takes off base.
// It never exceeds base, so a voucher alone cannot push an invoice negative.
func (v *Voucher) Deduction(base decimal.Decimal) decimal.Decimal {
	if !base.IsPositive() {
		return decimal.Zero
	}
	var amount decimal.Decimal
	switch v.Kind {
	case types.VoucherKindPercent:
		amount = types.RoundMoney(base.Mul(v.Value).Div(types.Hundred))
	default:
		amount = types.RoundMoney(v.Value)
	}
	return decimal.Min(amount, base)
}

// DisplayDescription is the text printed on the voucher line item
func (v *Voucher) DisplayDescription() string {
	if s := strings.TrimSpace(v.InvoiceDescription); s != "" {
		return s
	}
	if s := strings.TrimSpace(v.Title); s != "" {
		return "Voucher: " + s
	}
	return "Voucher " + v.Code
}

// Validate validates the voucher definition
func (v *Voucher) Validate() error {
	if err := v.Kind.Validate(); err != nil {
		return err
	}
	if !v.Value.IsPositive() {
		return ierr.NewError("voucher value must be positive").
			WithHint("Voucher value must be greater than zero").
			Mark(ierr.ErrValidation)
	}
	if v.Kind == types.VoucherKindPercent && v.Value.GreaterThan(types.Hundred) {
		return ierr.NewError("voucher percent out of range").
			WithHint("Percent vouchers must be between 0 and 100").
			Mark(ierr.ErrValidation)
	}
	return nil
}
