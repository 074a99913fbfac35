package service

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/solarinvoice/invoicer/internal/domain/invoice"
	"github.com/solarinvoice/invoicer/internal/domain/voucher"
	ierr "github.com/solarinvoice/invoicer/internal/errors"
	"github.com/solarinvoice/invoicer/internal/types"
)

// AddonInput is an extra priced item on top of the package
type AddonInput struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
}

// AdjustmentInput is a signed manual correction
type AdjustmentInput struct {
	Description string
	Amount      decimal.Decimal
}

// CalculationInput carries everything the line item calculator needs.
// It holds no references to repositories so calculation is free of I/O.
type CalculationInput struct {
	PackageDescription string
	PackagePrice       decimal.Decimal
	// AgentMarkup is folded into the package unit price and never gets a line
	AgentMarkup decimal.Decimal

	Addons []AddonInput

	DiscountFixed   decimal.Decimal
	DiscountPercent decimal.Decimal

	// Voucher has already been checked for redeemability
	Voucher *voucher.Voucher

	Adjustments []AdjustmentInput

	FeeAmount      decimal.Decimal
	FeeDescription string

	ApplyTax bool
	TaxRate  decimal.Decimal
}

// CalculationResult is the computed set of line items and totals
type CalculationResult struct {
	LineItems      []*invoice.InvoiceLineItem
	GrossAmount    decimal.Decimal
	DiscountAmount decimal.Decimal
	VoucherAmount  decimal.Decimal
	Subtotal       decimal.Decimal
	ApplyTax       bool
	TaxRate        decimal.Decimal
	TaxAmount      decimal.Decimal
	TotalAmount    decimal.Decimal
}

// Apply copies the computed lines and totals onto inv
func (r *CalculationResult) Apply(inv *invoice.Invoice) {
	inv.LineItems = r.LineItems
	inv.GrossAmount = r.GrossAmount
	inv.DiscountAmount = r.DiscountAmount
	inv.VoucherAmount = r.VoucherAmount
	inv.Subtotal = r.Subtotal
	inv.ApplyTax = r.ApplyTax
	inv.TaxRate = r.TaxRate
	inv.TaxAmount = r.TaxAmount
	inv.TotalAmount = r.TotalAmount
}

// CalculateInvoice builds the line items of an invoice and aggregates them.
//
// Deductions apply in a fixed order: the fixed discount, then the percent
// discount on what is left, then the voucher on the discounted amount, then
// adjustments and fees. Tax is charged on the final subtotal.
func CalculateInvoice(in CalculationInput) (*CalculationResult, error) {
	if err := validateCalculationInput(in); err != nil {
		return nil, err
	}

	lines := make([]*invoice.InvoiceLineItem, 0, 4+len(in.Addons)+len(in.Adjustments))

	pkgLine, err := invoice.NewPackageLine(in.PackageDescription, in.PackagePrice.Add(in.AgentMarkup))
	if err != nil {
		return nil, err
	}
	lines = append(lines, pkgLine)
	charges := pkgLine.Amount

	for i, addon := range in.Addons {
		line, err := invoice.NewAddonLine(addon.Description, addon.Quantity, addon.UnitPrice, types.SortOrderAddon+i)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
		charges = charges.Add(line.Amount)
	}

	discountSort := types.SortOrderDiscount
	discountTotal := decimal.Zero

	if fixed := types.RoundMoney(in.DiscountFixed); fixed.IsPositive() {
		line, err := invoice.NewDiscountLine(fmt.Sprintf("Discount (RM %s)", fixed.StringFixed(types.MoneyPrecision)), fixed, discountSort)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
		discountTotal = discountTotal.Add(fixed)
		discountSort++
	}

	// percent applies to what is left after the fixed discount
	base := charges.Sub(discountTotal)
	if in.DiscountPercent.IsPositive() && base.IsPositive() {
		amount := types.RoundMoney(base.Mul(in.DiscountPercent).Div(types.Hundred))
		if amount.IsPositive() {
			line, err := invoice.NewDiscountLine(fmt.Sprintf("Discount (%s%%)", in.DiscountPercent.String()), amount, discountSort)
			if err != nil {
				return nil, err
			}
			lines = append(lines, line)
			discountTotal = discountTotal.Add(amount)
		}
	}

	voucherAmount := decimal.Zero
	if in.Voucher != nil {
		voucherAmount = in.Voucher.Deduction(charges.Sub(discountTotal))
		if voucherAmount.IsPositive() {
			line, err := invoice.NewVoucherLine(in.Voucher.DisplayDescription(), voucherAmount)
			if err != nil {
				return nil, err
			}
			lines = append(lines, line)
		}
	}

	for i, adj := range in.Adjustments {
		line, err := invoice.NewAdjustmentLine(adj.Description, adj.Amount, types.SortOrderAdjustment+i)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}

	if in.FeeAmount.IsPositive() {
		line, err := invoice.NewFeeLine(fmt.Sprintf("Bank Processing Fee (%s)", in.FeeDescription), in.FeeAmount, types.SortOrderFee)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}

	return aggregate(lines, discountTotal, voucherAmount, in.ApplyTax, in.TaxRate)
}

// aggregate sums the line items and applies tax on the subtotal
func aggregate(lines []*invoice.InvoiceLineItem, discount, voucherAmount decimal.Decimal, applyTax bool, rate decimal.Decimal) (*CalculationResult, error) {
	gross := decimal.Zero
	subtotal := decimal.Zero
	for _, line := range lines {
		if line.Amount.IsPositive() {
			gross = gross.Add(line.Amount)
		}
		subtotal = subtotal.Add(line.Amount)
	}

	if subtotal.IsNegative() {
		return nil, ierr.NewError("invoice subtotal is negative").
			WithHint("Discounts and adjustments exceed the invoice amount").
			WithReportableDetails(map[string]any{
				"gross_amount": gross.String(),
				"subtotal":     subtotal.String(),
			}).
			Mark(ierr.ErrNegativeTotal)
	}

	taxRate := decimal.Zero
	tax := decimal.Zero
	if applyTax {
		taxRate = rate
		tax = types.RoundMoney(subtotal.Mul(rate).Div(types.Hundred))
	}

	return &CalculationResult{
		LineItems:      lines,
		GrossAmount:    gross,
		DiscountAmount: discount,
		VoucherAmount:  voucherAmount,
		Subtotal:       subtotal,
		ApplyTax:       applyTax,
		TaxRate:        taxRate,
		TaxAmount:      tax,
		TotalAmount:    subtotal.Add(tax),
	}, nil
}

func validateCalculationInput(in CalculationInput) error {
	if in.PackagePrice.IsNegative() {
		return ierr.NewError("package price is negative").
			WithHint("Package price must not be negative").
			Mark(ierr.ErrValidation)
	}
	if in.AgentMarkup.IsNegative() {
		return ierr.NewError("agent markup is negative").
			WithHint("Agent markup must not be negative").
			Mark(ierr.ErrValidation)
	}
	if in.DiscountFixed.IsNegative() {
		return ierr.NewError("fixed discount is negative").
			WithHint("Fixed discount must not be negative").
			WithReportableDetails(map[string]any{
				"discount_fixed": in.DiscountFixed.String(),
			}).
			Mark(ierr.ErrInvalidDiscount)
	}
	if in.DiscountPercent.IsNegative() || in.DiscountPercent.GreaterThan(types.Hundred) {
		return ierr.NewError("discount percent out of range").
			WithHint("Discount percent must be between 0 and 100").
			WithReportableDetails(map[string]any{
				"discount_percent": in.DiscountPercent.String(),
			}).
			Mark(ierr.ErrInvalidDiscount)
	}
	if in.FeeAmount.IsNegative() {
		return ierr.NewError("fee amount is negative").
			WithHint("Fee amount must not be negative").
			Mark(ierr.ErrValidation)
	}
	if in.ApplyTax && (in.TaxRate.IsNegative() || in.TaxRate.GreaterThan(types.Hundred)) {
		return ierr.NewError("tax rate out of range").
			WithHint("Tax rate must be between 0 and 100").
			Mark(ierr.ErrValidation)
	}
	return nil
}
