package types

import (
	"regexp"

	"github.com/shopspring/decimal"
)

// MoneyPrecision is the number of decimal places amounts are stored with
const MoneyPrecision int32 = 2

var (
	// Hundred is used to turn percentages into fractions
	Hundred = decimal.NewFromInt(100)

	nonDigits = regexp.MustCompile(`[^\d]`)
)

// RoundMoney rounds half away from zero to two decimal places, which is
// half-up for the non-negative amounts invoices deal in.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPrecision)
}

// NormalizePhone strips everything except digits, so "+60 12-345 6789"
// and "60123456789" refer to the same customer.
func NormalizePhone(phone string) string {
	return nonDigits.ReplaceAllString(phone, "")
}
