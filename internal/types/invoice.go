package types

import (
	ierr "github.com/solarinvoice/invoicer/internal/errors"
	"github.com/samber/lo"
)

// InvoiceStatus is the business lifecycle of an invoice, independent of the row Status
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

func (s InvoiceStatus) String() string {
	return string(s)
}

func (s InvoiceStatus) Validate() error {
	allowed := []InvoiceStatus{
		InvoiceStatusDraft,
		InvoiceStatusSent,
		InvoiceStatusPaid,
		InvoiceStatusCancelled,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid invoice status").
			WithHint("Please provide a valid invoice status").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// CanTransitionTo reports whether an invoice in status s may move to next.
// Paid and cancelled are terminal.
func (s InvoiceStatus) CanTransitionTo(next InvoiceStatus) bool {
	switch s {
	case InvoiceStatusDraft:
		return next == InvoiceStatusSent || next == InvoiceStatusPaid || next == InvoiceStatusCancelled
	case InvoiceStatusSent:
		return next == InvoiceStatusPaid || next == InvoiceStatusCancelled
	default:
		return false
	}
}

// InvoiceLineItemType tags what a line item represents. The tag decides the sign
// convention of the line amount.
type InvoiceLineItemType string

const (
	InvoiceLineItemTypePackage    InvoiceLineItemType = "package"
	InvoiceLineItemTypeAddon      InvoiceLineItemType = "addon"
	InvoiceLineItemTypeDiscount   InvoiceLineItemType = "discount"
	InvoiceLineItemTypeVoucher    InvoiceLineItemType = "voucher"
	InvoiceLineItemTypeAdjustment InvoiceLineItemType = "adjustment"
	InvoiceLineItemTypeFee        InvoiceLineItemType = "fee"
)

func (t InvoiceLineItemType) String() string {
	return string(t)
}

// IsCharge is true for line types whose amount can never be negative
func (t InvoiceLineItemType) IsCharge() bool {
	return t == InvoiceLineItemTypePackage || t == InvoiceLineItemTypeAddon || t == InvoiceLineItemTypeFee
}

// IsDeduction is true for line types whose amount can never be positive
func (t InvoiceLineItemType) IsDeduction() bool {
	return t == InvoiceLineItemTypeDiscount || t == InvoiceLineItemTypeVoucher
}

func (t InvoiceLineItemType) Validate() error {
	allowed := []InvoiceLineItemType{
		InvoiceLineItemTypePackage,
		InvoiceLineItemTypeAddon,
		InvoiceLineItemTypeDiscount,
		InvoiceLineItemTypeVoucher,
		InvoiceLineItemTypeAdjustment,
		InvoiceLineItemTypeFee,
	}
	if !lo.Contains(allowed, t) {
		return ierr.NewError("invalid line item type").
			WithHint("Please provide a valid line item type").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// Line item sort orders, grouped so that the rendered invoice lists charges,
// then deductions, then fees.
const (
	SortOrderPackage    = 0
	SortOrderAddon      = 10
	SortOrderDiscount   = 100
	SortOrderVoucher    = 150
	SortOrderAdjustment = 180
	SortOrderFee        = 200
)

// SampleQuotationCustomerName is the customer name snapshot of invoices created
// without a named customer
const SampleQuotationCustomerName = "Sample Quotation"

// InvoiceFilter represents the filter options for listing invoices
type InvoiceFilter struct {
	*QueryFilter
	InvoiceStatus []InvoiceStatus `json:"invoice_status,omitempty" form:"invoice_status"`
	CustomerID    string          `json:"customer_id,omitempty" form:"customer_id"`
	IsSample      *bool           `json:"is_sample,omitempty" form:"is_sample"`
}

// NewInvoiceFilter creates a new invoice filter with default options
func NewInvoiceFilter() *InvoiceFilter {
	return &InvoiceFilter{
		QueryFilter: NewDefaultQueryFilter(),
	}
}

func (f *InvoiceFilter) Validate() error {
	if f == nil {
		return nil
	}
	if f.QueryFilter != nil {
		if err := f.QueryFilter.Validate(); err != nil {
			return err
		}
	}
	for _, status := range f.InvoiceStatus {
		if err := status.Validate(); err != nil {
			return err
		}
	}
	return nil
}
