package dto

import (
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/solarinvoice/invoicer/internal/domain/invoice"
	ierr "github.com/solarinvoice/invoicer/internal/errors"
	"github.com/solarinvoice/invoicer/internal/types"
	"github.com/solarinvoice/invoicer/internal/validator"
)

// CreateInvoiceRequest is the payload of the on-the-fly invoice endpoint
type CreateInvoiceRequest struct {
	// package_id is the package the invoice is priced from
	PackageID string `json:"package_id" validate:"required"`

	// discount_fixed is an amount taken off before the percent discount
	DiscountFixed *decimal.Decimal `json:"discount_fixed,omitempty"`

	// discount_percent is taken off the subtotal left after discount_fixed
	DiscountPercent *decimal.Decimal `json:"discount_percent,omitempty"`

	// discount_given is the free text form of the two fields above, e.g. "500 10%"
	DiscountGiven string `json:"discount_given,omitempty"`

	// apply_sst adds sales and service tax on the discounted subtotal
	ApplySST bool `json:"apply_sst"`

	// sst_rate overrides the configured SST rate, in percent
	SSTRate *decimal.Decimal `json:"sst_rate,omitempty"`

	// voucher_code is redeemed against the invoice
	VoucherCode string `json:"voucher_code,omitempty" validate:"omitempty,max=50"`

	// agent_markup is added to the package price and only shown to signed in users
	AgentMarkup *decimal.Decimal `json:"agent_markup,omitempty"`

	// agent_id is the agent the invoice is issued on behalf of
	AgentID string `json:"agent_id,omitempty"`

	// customer_name marks the invoice as a sample quotation when empty
	CustomerName    string `json:"customer_name,omitempty" validate:"omitempty,max=255"`
	CustomerPhone   string `json:"customer_phone,omitempty" validate:"omitempty,max=32"`
	CustomerEmail   string `json:"customer_email,omitempty" validate:"omitempty,email,max=255"`
	CustomerAddress string `json:"customer_address,omitempty"`

	// addons are extra priced items listed after the package
	Addons []CreateInvoiceAddonRequest `json:"addons,omitempty" validate:"omitempty,dive"`

	// adjustments are signed manual corrections applied after discounts
	Adjustments []CreateInvoiceAdjustmentRequest `json:"adjustments,omitempty" validate:"omitempty,dive"`

	// epp_fee_amount is the bank instalment plan processing fee
	EPPFeeAmount *decimal.Decimal `json:"epp_fee_amount,omitempty"`

	// epp_fee_description names the instalment plan, e.g. "Maybank EPP 60 Months"
	EPPFeeDescription string `json:"epp_fee_description,omitempty"`

	CustomerNotes string `json:"customer_notes,omitempty"`
	InternalNotes string `json:"internal_notes,omitempty"`
}

type CreateInvoiceAddonRequest struct {
	Description string          `json:"description" validate:"required"`
	Quantity    decimal.Decimal `json:"quantity" validate:"required"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

type CreateInvoiceAdjustmentRequest struct {
	Description string          `json:"description" validate:"required"`
	Amount      decimal.Decimal `json:"amount" validate:"required"`
}

// Discounts resolves the fixed and percent discount from either the explicit
// fields or discount_given, rejecting out of range values with ErrInvalidDiscount.
func (r *CreateInvoiceRequest) Discounts() (fixed decimal.Decimal, percent decimal.Decimal, err error) {
	if strings.TrimSpace(r.DiscountGiven) != "" {
		if r.DiscountFixed != nil || r.DiscountPercent != nil {
			return decimal.Zero, decimal.Zero, ierr.NewError("ambiguous discount").
				WithHint("Provide either discount_given or discount_fixed/discount_percent, not both").
				Mark(ierr.ErrInvalidDiscount)
		}
		fixed, percent, err = ParseDiscountGiven(r.DiscountGiven)
		if err != nil {
			return decimal.Zero, decimal.Zero, err
		}
	} else {
		fixed = lo.FromPtr(r.DiscountFixed)
		percent = lo.FromPtr(r.DiscountPercent)
	}

	if fixed.IsNegative() {
		return decimal.Zero, decimal.Zero, ierr.NewError("negative fixed discount").
			WithHint("Fixed discount must not be negative").
			WithReportableDetails(map[string]any{
				"discount_fixed": fixed.String(),
			}).
			Mark(ierr.ErrInvalidDiscount)
	}
	if percent.IsNegative() || percent.GreaterThan(types.Hundred) {
		return decimal.Zero, decimal.Zero, ierr.NewError("discount percent out of range").
			WithHint("Discount percent must be between 0 and 100").
			WithReportableDetails(map[string]any{
				"discount_percent": percent.String(),
			}).
			Mark(ierr.ErrInvalidDiscount)
	}
	return fixed, percent, nil
}

func (r *CreateInvoiceRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}

	if _, _, err := r.Discounts(); err != nil {
		return err
	}

	if r.AgentMarkup != nil && r.AgentMarkup.IsNegative() {
		return ierr.NewError("negative agent markup").
			WithHint("Agent markup must not be negative").
			Mark(ierr.ErrValidation)
	}

	if r.SSTRate != nil && (r.SSTRate.IsNegative() || r.SSTRate.GreaterThan(types.Hundred)) {
		return ierr.NewError("sst rate out of range").
			WithHint("SST rate must be between 0 and 100").
			Mark(ierr.ErrValidation)
	}

	if r.EPPFeeAmount != nil && !r.EPPFeeAmount.IsZero() {
		if r.EPPFeeAmount.IsNegative() {
			return ierr.NewError("negative epp fee").
				WithHint("EPP fee amount must not be negative").
				Mark(ierr.ErrValidation)
		}
		if strings.TrimSpace(r.EPPFeeDescription) == "" {
			return ierr.NewError("epp fee description is required").
				WithHint("Please describe the EPP plan the fee belongs to").
				Mark(ierr.ErrValidation)
		}
	}

	if strings.TrimSpace(r.CustomerName) == "" && strings.TrimSpace(r.CustomerPhone) != "" {
		if types.NormalizePhone(r.CustomerPhone) == "" {
			return ierr.NewError("invalid customer phone").
				WithHint("Customer phone must contain digits").
				Mark(ierr.ErrValidation)
		}
	}

	for _, addon := range r.Addons {
		if !addon.Quantity.IsPositive() {
			return ierr.NewError("addon quantity must be positive").
				WithHintf("Quantity for %q must be greater than zero", addon.Description).
				Mark(ierr.ErrValidation)
		}
		if addon.UnitPrice.IsNegative() {
			return ierr.NewError("addon price is negative").
				WithHintf("Price for %q must not be negative", addon.Description).
				Mark(ierr.ErrValidation)
		}
	}

	for _, adj := range r.Adjustments {
		if adj.Amount.IsZero() {
			return ierr.NewError("adjustment amount is zero").
				WithHintf("Adjustment %q must have a non zero amount", adj.Description).
				Mark(ierr.ErrValidation)
		}
	}

	return nil
}

// IsSample is true when no customer name was given
func (r *CreateInvoiceRequest) IsSample() bool {
	return strings.TrimSpace(r.CustomerName) == ""
}

// InvoiceLineItemResponse is a rendered line item
type InvoiceLineItemResponse struct {
	ID          string                    `json:"id"`
	Type        types.InvoiceLineItemType `json:"item_type"`
	Description string                    `json:"description"`
	Quantity    decimal.Decimal           `json:"quantity"`
	UnitPrice   decimal.Decimal           `json:"unit_price"`
	Amount      decimal.Decimal           `json:"amount"`
	SortOrder   int                       `json:"sort_order"`
}

func NewInvoiceLineItemResponses(items []*invoice.InvoiceLineItem) []*InvoiceLineItemResponse {
	return lo.Map(items, func(item *invoice.InvoiceLineItem, _ int) *InvoiceLineItemResponse {
		return &InvoiceLineItemResponse{
			ID:          item.ID,
			Type:        item.Type,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Amount:      item.Amount,
			SortOrder:   item.SortOrder,
		}
	})
}

// CreateInvoiceResponse is returned by the on-the-fly endpoint
type CreateInvoiceResponse struct {
	Success        bool                       `json:"success"`
	InvoiceID      string                     `json:"invoice_id"`
	InvoiceNumber  string                     `json:"invoice_number"`
	IsSample       bool                       `json:"is_sample"`
	Subtotal       decimal.Decimal            `json:"subtotal"`
	TaxAmount      decimal.Decimal            `json:"tax_amount"`
	TotalAmount    decimal.Decimal            `json:"total_amount"`
	LineItems      []*InvoiceLineItemResponse `json:"line_items"`
	ShareToken     string                     `json:"share_token"`
	InvoiceLink    string                     `json:"invoice_link"`
	ShareExpiresAt *time.Time                 `json:"share_expires_at,omitempty"`

	// agent_markup is only returned to signed in callers
	AgentMarkup *decimal.Decimal `json:"agent_markup,omitempty"`
}

// NewCreateInvoiceResponse builds the response; showMarkup exposes the agent markup
func NewCreateInvoiceResponse(inv *invoice.Invoice, shareURL string, showMarkup bool) *CreateInvoiceResponse {
	resp := &CreateInvoiceResponse{
		Success:        true,
		InvoiceID:      inv.ID,
		InvoiceNumber:  inv.InvoiceNumber,
		IsSample:       inv.IsSample,
		Subtotal:       inv.Subtotal,
		TaxAmount:      inv.TaxAmount,
		TotalAmount:    inv.TotalAmount,
		LineItems:      NewInvoiceLineItemResponses(inv.LineItems),
		ShareToken:     lo.FromPtr(inv.ShareToken),
		InvoiceLink:    shareURL,
		ShareExpiresAt: inv.ShareExpiresAt,
	}
	if showMarkup {
		resp.AgentMarkup = lo.ToPtr(inv.AgentMarkup)
	}
	return resp
}

// InvoiceResponse is the full invoice as seen by signed in users
type InvoiceResponse struct {
	*invoice.Invoice
	ShareURL string `json:"share_url,omitempty"`
}

func NewInvoiceResponse(inv *invoice.Invoice, shareURL string) *InvoiceResponse {
	return &InvoiceResponse{Invoice: inv, ShareURL: shareURL}
}

// ListInvoicesResponse represents the response for listing invoices
type ListInvoicesResponse = types.ListResponse[*InvoiceResponse]

// GenerateShareLinkRequest re-issues the public link of an invoice
type GenerateShareLinkRequest struct {
	// expires_in_days defaults to the configured share link expiry
	ExpiresInDays *int `json:"expires_in_days,omitempty" validate:"omitempty,min=1,max=365"`
}

func (r *GenerateShareLinkRequest) Validate() error {
	return validator.ValidateRequest(r)
}

type GenerateShareLinkResponse struct {
	Success    bool      `json:"success"`
	ShareToken string    `json:"share_token"`
	ShareURL   string    `json:"share_url"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// PublicInvoiceResponse is what anyone holding the share link can see.
// It never carries the agent markup or internal notes.
type PublicInvoiceResponse struct {
	InvoiceNumber   string                     `json:"invoice_number"`
	InvoiceStatus   types.InvoiceStatus        `json:"invoice_status"`
	IsSample        bool                       `json:"is_sample"`
	CustomerName    string                     `json:"customer_name"`
	CustomerPhone   string                     `json:"customer_phone,omitempty"`
	CustomerAddress string                     `json:"customer_address,omitempty"`
	AgentName       string                     `json:"agent_name,omitempty"`
	PackageName     string                     `json:"package_name"`
	PanelQty        int                        `json:"panel_qty,omitempty"`
	PanelRating     int                        `json:"panel_rating,omitempty"`
	Currency        string                     `json:"currency"`
	DiscountAmount  decimal.Decimal            `json:"discount_amount"`
	VoucherCode     *string                    `json:"voucher_code,omitempty"`
	VoucherAmount   decimal.Decimal            `json:"voucher_amount"`
	Subtotal        decimal.Decimal            `json:"subtotal"`
	ApplyTax        bool                       `json:"apply_tax"`
	TaxRate         decimal.Decimal            `json:"tax_rate"`
	TaxAmount       decimal.Decimal            `json:"tax_amount"`
	TotalAmount     decimal.Decimal            `json:"total_amount"`
	CustomerNotes   string                     `json:"customer_notes,omitempty"`
	LineItems       []*InvoiceLineItemResponse `json:"line_items"`
	CreatedAt       time.Time                  `json:"created_at"`
}

func NewPublicInvoiceResponse(inv *invoice.Invoice) *PublicInvoiceResponse {
	return &PublicInvoiceResponse{
		InvoiceNumber:   inv.InvoiceNumber,
		InvoiceStatus:   inv.InvoiceStatus,
		IsSample:        inv.IsSample,
		CustomerName:    inv.CustomerName,
		CustomerPhone:   inv.CustomerPhone,
		CustomerAddress: inv.CustomerAddress,
		AgentName:       inv.AgentName,
		PackageName:     inv.PackageName,
		PanelQty:        inv.PanelQty,
		PanelRating:     inv.PanelRating,
		Currency:        inv.Currency,
		DiscountAmount:  inv.DiscountAmount,
		VoucherCode:     inv.VoucherCode,
		VoucherAmount:   inv.VoucherAmount,
		Subtotal:        inv.Subtotal,
		ApplyTax:        inv.ApplyTax,
		TaxRate:         inv.TaxRate,
		TaxAmount:       inv.TaxAmount,
		TotalAmount:     inv.TotalAmount,
		CustomerNotes:   inv.CustomerNotes,
		LineItems:       NewInvoiceLineItemResponses(inv.LineItems),
		CreatedAt:       inv.CreatedAt,
	}
}
