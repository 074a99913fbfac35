package invoice

import (
	"strings"

	"github.com/shopspring/decimal"
	ierr "github.com/solarinvoice/invoicer/internal/errors"
	"github.com/solarinvoice/invoicer/internal/types"
)

// InvoiceLineItem represents a single line item in an invoice. Line items are
// built through the New*Line constructors, which fix the sign of Amount for
// the line type, and are never changed after the invoice is saved.
type InvoiceLineItem struct {
	ID          string                    `db:"id" json:"id"`
	InvoiceID   string                    `db:"invoice_id" json:"invoice_id"`
	Type        types.InvoiceLineItemType `db:"item_type" json:"item_type"`
	Description string                    `db:"description" json:"description"`
	Quantity    decimal.Decimal           `db:"quantity" json:"quantity"`
	UnitPrice   decimal.Decimal           `db:"unit_price" json:"unit_price"`
	Amount      decimal.Decimal           `db:"amount" json:"amount"`
	SortOrder   int                       `db:"sort_order" json:"sort_order"`
	types.BaseModel
}

func newLine(t types.InvoiceLineItemType, description string, qty, unitPrice decimal.Decimal, sortOrder int) *InvoiceLineItem {
	unitPrice = types.RoundMoney(unitPrice)
	return &InvoiceLineItem{
		ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE_LINE_ITEM),
		Type:        t,
		Description: strings.TrimSpace(description),
		Quantity:    qty,
		UnitPrice:   unitPrice,
		Amount:      types.RoundMoney(qty.Mul(unitPrice)),
		SortOrder:   sortOrder,
	}
}

// NewPackageLine is the single package line; unitPrice already includes any markup
func NewPackageLine(description string, unitPrice decimal.Decimal) (*InvoiceLineItem, error) {
	if unitPrice.IsNegative() {
		return nil, ierr.NewError("package price is negative").
			WithHint("Package price must not be negative").
			Mark(ierr.ErrValidation)
	}
	return newLine(types.InvoiceLineItemTypePackage, description, decimal.NewFromInt(1), unitPrice, types.SortOrderPackage), nil
}

func NewAddonLine(description string, qty, unitPrice decimal.Decimal, sortOrder int) (*InvoiceLineItem, error) {
	if !qty.IsPositive() {
		return nil, ierr.NewError("addon quantity must be positive").
			WithHintf("Quantity for %q must be greater than zero", description).
			Mark(ierr.ErrValidation)
	}
	if unitPrice.IsNegative() {
		return nil, ierr.NewError("addon price is negative").
			WithHintf("Price for %q must not be negative", description).
			Mark(ierr.ErrValidation)
	}
	return newLine(types.InvoiceLineItemTypeAddon, description, qty, unitPrice, sortOrder), nil
}

// NewDiscountLine takes the positive amount to deduct
func NewDiscountLine(description string, amount decimal.Decimal, sortOrder int) (*InvoiceLineItem, error) {
	if !amount.IsPositive() {
		return nil, ierr.NewError("discount amount must be positive").
			WithHint("Discount must be greater than zero").
			Mark(ierr.ErrInvalidDiscount)
	}
	return newLine(types.InvoiceLineItemTypeDiscount, description, decimal.NewFromInt(1), amount.Neg(), sortOrder), nil
}

// NewVoucherLine takes the positive amount to deduct
func NewVoucherLine(description string, amount decimal.Decimal) (*InvoiceLineItem, error) {
	if amount.IsNegative() {
		return nil, ierr.NewError("voucher amount is negative").
			WithHint("Voucher deduction must not be negative").
			Mark(ierr.ErrVoucherInvalid)
	}
	return newLine(types.InvoiceLineItemTypeVoucher, description, decimal.NewFromInt(1), amount.Neg(), types.SortOrderVoucher), nil
}

// NewAdjustmentLine takes a signed amount; positive adds, negative deducts
func NewAdjustmentLine(description string, amount decimal.Decimal, sortOrder int) (*InvoiceLineItem, error) {
	if amount.IsZero() {
		return nil, ierr.NewError("adjustment amount is zero").
			WithHint("Adjustment amount must not be zero").
			Mark(ierr.ErrValidation)
	}
	if strings.TrimSpace(description) == "" {
		return nil, ierr.NewError("adjustment description is required").
			WithHint("Please describe the adjustment").
			Mark(ierr.ErrValidation)
	}
	return newLine(types.InvoiceLineItemTypeAdjustment, description, decimal.NewFromInt(1), amount, sortOrder), nil
}

func NewFeeLine(description string, amount decimal.Decimal, sortOrder int) (*InvoiceLineItem, error) {
	if !amount.IsPositive() {
		return nil, ierr.NewError("fee amount must be positive").
			WithHint("Fee amount must be greater than zero").
			Mark(ierr.ErrValidation)
	}
	if strings.TrimSpace(description) == "" {
		return nil, ierr.NewError("fee description is required").
			WithHint("Please describe the fee").
			Mark(ierr.ErrValidation)
	}
	return newLine(types.InvoiceLineItemTypeFee, description, decimal.NewFromInt(1), amount, sortOrder), nil
}

// Validate validates the invoice line item
func (i *InvoiceLineItem) Validate() error {
	if err := i.Type.Validate(); err != nil {
		return err
	}
	if i.Type.IsCharge() && i.Amount.IsNegative() {
		return ierr.NewError("invoice line item validation failed").
			WithHintf("%s amount must be non negative", i.Type).
			Mark(ierr.ErrValidation)
	}
	if i.Type.IsDeduction() && i.Amount.IsPositive() {
		return ierr.NewError("invoice line item validation failed").
			WithHintf("%s amount must be non positive", i.Type).
			Mark(ierr.ErrValidation)
	}
	if i.Quantity.IsNegative() {
		return ierr.NewError("invoice line item validation failed").
			WithHint("quantity must be non negative").
			Mark(ierr.ErrValidation)
	}
	return nil
}
