package service

import (
	"testing"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/solarinvoice/invoicer/internal/domain/invoice"
	"github.com/solarinvoice/invoicer/internal/domain/voucher"
	ierr "github.com/solarinvoice/invoicer/internal/errors"
	"github.com/solarinvoice/invoicer/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func lineTypes(lines []*invoice.InvoiceLineItem) []types.InvoiceLineItemType {
	return lo.Map(lines, func(l *invoice.InvoiceLineItem, _ int) types.InvoiceLineItemType { return l.Type })
}

func lineAmounts(lines []*invoice.InvoiceLineItem) []string {
	return lo.Map(lines, func(l *invoice.InvoiceLineItem, _ int) string { return l.Amount.StringFixed(2) })
}

func TestCalculateInvoice(t *testing.T) {
	fixedVoucher := &voucher.Voucher{Code: "RAYA1000", Kind: types.VoucherKindFixed, Value: d("1000")}
	percentVoucher := &voucher.Voucher{Code: "SUN5", Kind: types.VoucherKindPercent, Value: d("5")}
	hugeVoucher := &voucher.Voucher{Code: "FREE", Kind: types.VoucherKindFixed, Value: d("50000")}

	tests := []struct {
		name          string
		input         CalculationInput
		wantTypes     []types.InvoiceLineItemType
		wantAmounts   []string
		wantSubtotal  string
		wantTax       string
		wantTotal     string
		wantDiscount  string
		wantVoucher   string
		wantErrorKind error
	}{
		{
			name: "fixed discount with sst",
			input: CalculationInput{
				PackagePrice:  d("18276.00"),
				DiscountFixed: d("100"),
				ApplyTax:      true,
				TaxRate:       d("8"),
			},
			wantTypes:    []types.InvoiceLineItemType{types.InvoiceLineItemTypePackage, types.InvoiceLineItemTypeDiscount},
			wantAmounts:  []string{"18276.00", "-100.00"},
			wantSubtotal: "18176.00",
			wantTax:      "1454.08",
			wantTotal:    "19630.08",
			wantDiscount: "100.00",
			wantVoucher:  "0.00",
		},
		{
			name: "percent applies after fixed",
			input: CalculationInput{
				PackagePrice:    d("20000.00"),
				DiscountFixed:   d("500"),
				DiscountPercent: d("10"),
			},
			wantTypes: []types.InvoiceLineItemType{
				types.InvoiceLineItemTypePackage,
				types.InvoiceLineItemTypeDiscount,
				types.InvoiceLineItemTypeDiscount,
			},
			wantAmounts:  []string{"20000.00", "-500.00", "-1950.00"},
			wantSubtotal: "17550.00",
			wantTax:      "0.00",
			wantTotal:    "17550.00",
			wantDiscount: "2450.00",
			wantVoucher:  "0.00",
		},
		{
			name: "no discounts",
			input: CalculationInput{
				PackagePrice: d("15000"),
			},
			wantTypes:    []types.InvoiceLineItemType{types.InvoiceLineItemTypePackage},
			wantAmounts:  []string{"15000.00"},
			wantSubtotal: "15000.00",
			wantTax:      "0.00",
			wantTotal:    "15000.00",
			wantDiscount: "0.00",
			wantVoucher:  "0.00",
		},
		{
			name: "fractional percent",
			input: CalculationInput{
				PackagePrice:    d("20000"),
				DiscountPercent: d("12.5"),
			},
			wantTypes:    []types.InvoiceLineItemType{types.InvoiceLineItemTypePackage, types.InvoiceLineItemTypeDiscount},
			wantAmounts:  []string{"20000.00", "-2500.00"},
			wantSubtotal: "17500.00",
			wantTax:      "0.00",
			wantTotal:    "17500.00",
			wantDiscount: "2500.00",
			wantVoucher:  "0.00",
		},
		{
			name: "percent rounds half up",
			input: CalculationInput{
				PackagePrice:    d("100.05"),
				DiscountPercent: d("10"),
				ApplyTax:        true,
				TaxRate:         d("8"),
			},
			wantTypes:    []types.InvoiceLineItemType{types.InvoiceLineItemTypePackage, types.InvoiceLineItemTypeDiscount},
			wantAmounts:  []string{"100.05", "-10.01"},
			wantSubtotal: "90.04",
			wantTax:      "7.20",
			wantTotal:    "97.24",
			wantDiscount: "10.01",
			wantVoucher:  "0.00",
		},
		{
			name: "markup folds into package line",
			input: CalculationInput{
				PackagePrice: d("18276"),
				AgentMarkup:  d("500"),
			},
			wantTypes:    []types.InvoiceLineItemType{types.InvoiceLineItemTypePackage},
			wantAmounts:  []string{"18776.00"},
			wantSubtotal: "18776.00",
			wantTax:      "0.00",
			wantTotal:    "18776.00",
			wantDiscount: "0.00",
			wantVoucher:  "0.00",
		},
		{
			name: "fixed voucher after discounts",
			input: CalculationInput{
				PackagePrice:    d("20000"),
				DiscountFixed:   d("500"),
				DiscountPercent: d("10"),
				Voucher:         fixedVoucher,
			},
			wantTypes: []types.InvoiceLineItemType{
				types.InvoiceLineItemTypePackage,
				types.InvoiceLineItemTypeDiscount,
				types.InvoiceLineItemTypeDiscount,
				types.InvoiceLineItemTypeVoucher,
			},
			wantAmounts:  []string{"20000.00", "-500.00", "-1950.00", "-1000.00"},
			wantSubtotal: "16550.00",
			wantTax:      "0.00",
			wantTotal:    "16550.00",
			wantDiscount: "2450.00",
			wantVoucher:  "1000.00",
		},
		{
			name: "percent voucher on discounted base",
			input: CalculationInput{
				PackagePrice:    d("20000"),
				DiscountFixed:   d("500"),
				DiscountPercent: d("10"),
				Voucher:         percentVoucher,
			},
			wantTypes: []types.InvoiceLineItemType{
				types.InvoiceLineItemTypePackage,
				types.InvoiceLineItemTypeDiscount,
				types.InvoiceLineItemTypeDiscount,
				types.InvoiceLineItemTypeVoucher,
			},
			wantAmounts:  []string{"20000.00", "-500.00", "-1950.00", "-877.50"},
			wantSubtotal: "16672.50",
			wantTax:      "0.00",
			wantTotal:    "16672.50",
			wantDiscount: "2450.00",
			wantVoucher:  "877.50",
		},
		{
			name: "voucher is capped at the remaining amount",
			input: CalculationInput{
				PackagePrice:  d("18276"),
				DiscountFixed: d("276"),
				Voucher:       hugeVoucher,
				ApplyTax:      true,
				TaxRate:       d("8"),
			},
			wantTypes: []types.InvoiceLineItemType{
				types.InvoiceLineItemTypePackage,
				types.InvoiceLineItemTypeDiscount,
				types.InvoiceLineItemTypeVoucher,
			},
			wantAmounts:  []string{"18276.00", "-276.00", "-18000.00"},
			wantSubtotal: "0.00",
			wantTax:      "0.00",
			wantTotal:    "0.00",
			wantDiscount: "276.00",
			wantVoucher:  "18000.00",
		},
		{
			name: "addons adjustments and fee",
			input: CalculationInput{
				PackagePrice:    d("10000"),
				Addons:          []AddonInput{{Description: "Extra panel", Quantity: d("2"), UnitPrice: d("350.50")}},
				DiscountPercent: d("10"),
				Adjustments:     []AdjustmentInput{{Description: "Rounding", Amount: d("-30.90")}},
				FeeAmount:       d("150"),
				FeeDescription:  "Maybank EPP 60 Months",
				ApplyTax:        true,
				TaxRate:         d("8"),
			},
			wantTypes: []types.InvoiceLineItemType{
				types.InvoiceLineItemTypePackage,
				types.InvoiceLineItemTypeAddon,
				types.InvoiceLineItemTypeDiscount,
				types.InvoiceLineItemTypeAdjustment,
				types.InvoiceLineItemTypeFee,
			},
			wantAmounts:  []string{"10000.00", "701.00", "-1070.10", "-30.90", "150.00"},
			wantSubtotal: "9750.00",
			wantTax:      "780.00",
			wantTotal:    "10530.00",
			wantDiscount: "1070.10",
			wantVoucher:  "0.00",
		},
		{
			name: "fixed discount equal to price leaves nothing for percent",
			input: CalculationInput{
				PackagePrice:    d("1000"),
				DiscountFixed:   d("1000"),
				DiscountPercent: d("10"),
			},
			wantTypes:    []types.InvoiceLineItemType{types.InvoiceLineItemTypePackage, types.InvoiceLineItemTypeDiscount},
			wantAmounts:  []string{"1000.00", "-1000.00"},
			wantSubtotal: "0.00",
			wantTax:      "0.00",
			wantTotal:    "0.00",
			wantDiscount: "1000.00",
			wantVoucher:  "0.00",
		},
		{
			name:          "negative fixed discount",
			input:         CalculationInput{PackagePrice: d("1000"), DiscountFixed: d("-1")},
			wantErrorKind: ierr.ErrInvalidDiscount,
		},
		{
			name:          "percent above 100",
			input:         CalculationInput{PackagePrice: d("1000"), DiscountPercent: d("100.01")},
			wantErrorKind: ierr.ErrInvalidDiscount,
		},
		{
			name:          "negative percent",
			input:         CalculationInput{PackagePrice: d("1000"), DiscountPercent: d("-5")},
			wantErrorKind: ierr.ErrInvalidDiscount,
		},
		{
			name:          "discount larger than price",
			input:         CalculationInput{PackagePrice: d("18276"), DiscountFixed: d("20000")},
			wantErrorKind: ierr.ErrNegativeTotal,
		},
		{
			name: "negative adjustment below zero",
			input: CalculationInput{
				PackagePrice: d("100"),
				Adjustments:  []AdjustmentInput{{Description: "Goodwill", Amount: d("-150")}},
			},
			wantErrorKind: ierr.ErrNegativeTotal,
		},
		{
			name: "zero adjustment",
			input: CalculationInput{
				PackagePrice: d("100"),
				Adjustments:  []AdjustmentInput{{Description: "Nothing", Amount: decimal.Zero}},
			},
			wantErrorKind: ierr.ErrValidation,
		},
		{
			name: "addon with zero quantity",
			input: CalculationInput{
				PackagePrice: d("100"),
				Addons:       []AddonInput{{Description: "Battery", Quantity: decimal.Zero, UnitPrice: d("10")}},
			},
			wantErrorKind: ierr.ErrValidation,
		},
		{
			name:          "negative markup",
			input:         CalculationInput{PackagePrice: d("100"), AgentMarkup: d("-1")},
			wantErrorKind: ierr.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.input.PackageDescription = "Test package"
			result, err := CalculateInvoice(tt.input)

			if tt.wantErrorKind != nil {
				require.Error(t, err)
				assert.True(t, ierr.Is(err, tt.wantErrorKind), "unexpected error: %v", err)
				assert.Nil(t, result)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantTypes, lineTypes(result.LineItems))
			assert.Equal(t, tt.wantAmounts, lineAmounts(result.LineItems))
			assert.Equal(t, tt.wantSubtotal, result.Subtotal.StringFixed(2))
			assert.Equal(t, tt.wantTax, result.TaxAmount.StringFixed(2))
			assert.Equal(t, tt.wantTotal, result.TotalAmount.StringFixed(2))
			assert.Equal(t, tt.wantDiscount, result.DiscountAmount.StringFixed(2))
			assert.Equal(t, tt.wantVoucher, result.VoucherAmount.StringFixed(2))

			sum := decimal.Zero
			for _, line := range result.LineItems {
				require.NoError(t, line.Validate())
				sum = sum.Add(line.Amount)
			}
			assert.True(t, sum.Equal(result.Subtotal), "lines must add up to subtotal")
			assert.True(t, result.Subtotal.Add(result.TaxAmount).Equal(result.TotalAmount))
		})
	}
}

func TestCalculateInvoiceLineDescriptions(t *testing.T) {
	result, err := CalculateInvoice(CalculationInput{
		PackageDescription: "12 x 550W Residential",
		PackagePrice:       d("20000"),
		DiscountFixed:      d("500"),
		DiscountPercent:    d("10"),
		Voucher:            &voucher.Voucher{Code: "SUN5", Kind: types.VoucherKindPercent, Value: d("5")},
		FeeAmount:          d("300"),
		FeeDescription:     "Maybank EPP 60 Months",
	})
	require.NoError(t, err)

	descriptions := lo.Map(result.LineItems, func(l *invoice.InvoiceLineItem, _ int) string { return l.Description })
	assert.Equal(t, []string{
		"12 x 550W Residential",
		"Discount (RM 500.00)",
		"Discount (10%)",
		"Voucher SUN5",
		"Bank Processing Fee (Maybank EPP 60 Months)",
	}, descriptions)

	sortOrders := lo.Map(result.LineItems, func(l *invoice.InvoiceLineItem, _ int) int { return l.SortOrder })
	assert.IsIncreasing(t, sortOrders)
}

func TestCalculateInvoiceTaxDisabledIgnoresRate(t *testing.T) {
	result, err := CalculateInvoice(CalculationInput{
		PackagePrice: d("18276"),
		ApplyTax:     false,
		TaxRate:      d("8"),
	})
	require.NoError(t, err)
	assert.True(t, result.TaxAmount.IsZero())
	assert.True(t, result.TaxRate.IsZero())
	assert.False(t, result.ApplyTax)
	assert.Equal(t, "18276.00", result.TotalAmount.StringFixed(2))
}

func TestFormatInvoiceNumber(t *testing.T) {
	tests := []struct {
		prefix string
		length int
		n      int64
		want   string
	}{
		{"INV", 6, 1, "INV-000001"},
		{"INV", 6, 123, "INV-000123"},
		{"QT", 4, 98765, "QT-98765"},
		{"INV", 1, 7, "INV-7"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatInvoiceNumber(tt.prefix, tt.length, tt.n))
	}
}
