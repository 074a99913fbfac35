package invoice

import (
	"time"

	"github.com/shopspring/decimal"
	ierr "github.com/solarinvoice/invoicer/internal/errors"
	"github.com/solarinvoice/invoicer/internal/types"
)

// Invoice represents the invoice domain model. Money fields are computed once
// at creation; later updates only touch status, sharing and notes.
type Invoice struct {
	ID            string `db:"id" json:"id"`
	InvoiceNumber string `db:"invoice_number" json:"invoice_number"`
	Sequence      int64  `db:"sequence" json:"sequence"`

	// CustomerID is nil for sample quotations
	CustomerID      *string `db:"customer_id" json:"customer_id,omitempty"`
	IsSample        bool    `db:"is_sample" json:"is_sample"`
	CustomerName    string  `db:"customer_name" json:"customer_name"`
	CustomerPhone   string  `db:"customer_phone" json:"customer_phone,omitempty"`
	CustomerEmail   string  `db:"customer_email" json:"customer_email,omitempty"`
	CustomerAddress string  `db:"customer_address" json:"customer_address,omitempty"`

	AgentID   *string `db:"agent_id" json:"agent_id,omitempty"`
	AgentName string  `db:"agent_name" json:"agent_name,omitempty"`

	PackageID          string          `db:"package_id" json:"package_id"`
	PackageName        string          `db:"package_name" json:"package_name"`
	PackageDescription string          `db:"package_description" json:"package_description"`
	PackagePrice       decimal.Decimal `db:"package_price" json:"package_price"`
	PanelQty           int             `db:"panel_qty" json:"panel_qty"`
	PanelRating        int             `db:"panel_rating" json:"panel_rating"`
	PackageType        string          `db:"package_type" json:"package_type,omitempty"`

	Currency        string          `db:"currency" json:"currency"`
	GrossAmount     decimal.Decimal `db:"gross_amount" json:"gross_amount"`
	AgentMarkup     decimal.Decimal `db:"agent_markup" json:"agent_markup"`
	DiscountFixed   decimal.Decimal `db:"discount_fixed" json:"discount_fixed"`
	DiscountPercent decimal.Decimal `db:"discount_percent" json:"discount_percent"`
	DiscountAmount  decimal.Decimal `db:"discount_amount" json:"discount_amount"`
	VoucherCode     *string         `db:"voucher_code" json:"voucher_code,omitempty"`
	VoucherAmount   decimal.Decimal `db:"voucher_amount" json:"voucher_amount"`
	Subtotal        decimal.Decimal `db:"subtotal" json:"subtotal"`
	ApplyTax        bool            `db:"apply_tax" json:"apply_tax"`
	TaxRate         decimal.Decimal `db:"tax_rate" json:"tax_rate"`
	TaxAmount       decimal.Decimal `db:"tax_amount" json:"tax_amount"`
	TotalAmount     decimal.Decimal `db:"total_amount" json:"total_amount"`

	InvoiceStatus types.InvoiceStatus `db:"invoice_status" json:"invoice_status"`
	CustomerNotes string              `db:"customer_notes" json:"customer_notes,omitempty"`
	InternalNotes string              `db:"internal_notes" json:"internal_notes,omitempty"`

	ShareToken     *string    `db:"share_token" json:"share_token,omitempty"`
	ShareEnabled   bool       `db:"share_enabled" json:"share_enabled"`
	ShareExpiresAt *time.Time `db:"share_expires_at" json:"share_expires_at,omitempty"`
	AccessCount    int        `db:"access_count" json:"access_count"`
	ViewedAt       *time.Time `db:"viewed_at" json:"viewed_at,omitempty"`
	SentAt         *time.Time `db:"sent_at" json:"sent_at,omitempty"`
	PaidAt         *time.Time `db:"paid_at" json:"paid_at,omitempty"`
	CancelledAt    *time.Time `db:"cancelled_at" json:"cancelled_at,omitempty"`

	Version   int                `db:"version" json:"version"`
	LineItems []*InvoiceLineItem `db:"-" json:"line_items,omitempty"`
	types.BaseModel
}

// IsShareActive reports whether the public share link may be served at now
func (i *Invoice) IsShareActive(now time.Time) bool {
	if i.ShareToken == nil || !i.ShareEnabled {
		return false
	}
	if i.ShareExpiresAt != nil && now.After(*i.ShareExpiresAt) {
		return false
	}
	return i.Status == types.StatusPublished
}

// Snapshot rebuilds the snapshot value captured when the invoice was created
func (i *Invoice) Snapshot() Snapshot {
	return Snapshot{
		Customer: CustomerSnapshot{
			CustomerID: i.CustomerID,
			IsSample:   i.IsSample,
			Name:       i.CustomerName,
			Phone:      i.CustomerPhone,
			Email:      i.CustomerEmail,
			Address:    i.CustomerAddress,
		},
		Agent: AgentSnapshot{
			AgentID: i.AgentID,
			Name:    i.AgentName,
		},
		Package: PackageSnapshot{
			PackageID:   i.PackageID,
			Name:        i.PackageName,
			Description: i.PackageDescription,
			Price:       i.PackagePrice,
			PanelQty:    i.PanelQty,
			PanelRating: i.PanelRating,
			PackageType: i.PackageType,
		},
	}
}

// Validate checks the money invariants of a computed invoice
func (i *Invoice) Validate() error {
	if i.InvoiceNumber == "" {
		return ierr.NewError("invoice number is required").
			WithHint("Invoice must be numbered before it is saved").
			Mark(ierr.ErrValidation)
	}
	if err := i.InvoiceStatus.Validate(); err != nil {
		return err
	}
	if i.Subtotal.IsNegative() || i.TotalAmount.IsNegative() {
		return ierr.NewError("invoice total is negative").
			WithHint("Discounts exceed the invoice amount").
			WithReportableDetails(map[string]any{
				"subtotal": i.Subtotal.String(),
				"total":    i.TotalAmount.String(),
			}).
			Mark(ierr.ErrNegativeTotal)
	}
	if !i.Subtotal.Add(i.TaxAmount).Equal(i.TotalAmount) {
		return ierr.NewError("invoice total does not match subtotal plus tax").
			WithHint("Invoice totals are inconsistent").
			Mark(ierr.ErrValidation)
	}
	if len(i.LineItems) > 0 {
		sum := decimal.Zero
		for _, item := range i.LineItems {
			if err := item.Validate(); err != nil {
				return err
			}
			sum = sum.Add(item.Amount)
		}
		if !sum.Equal(i.Subtotal) {
			return ierr.NewError("line items do not add up to subtotal").
				WithHint("Invoice totals are inconsistent").
				WithReportableDetails(map[string]any{
					"line_sum": sum.String(),
					"subtotal": i.Subtotal.String(),
				}).
				Mark(ierr.ErrValidation)
		}
	}
	return nil
}
