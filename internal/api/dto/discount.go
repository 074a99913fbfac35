package dto

import (
	"strings"

	"github.com/shopspring/decimal"
	ierr "github.com/solarinvoice/invoicer/internal/errors"
)

// ParseDiscountGiven parses the free text discount agents type on the
// quotation form, e.g. "500 10%", "RM1,000", "10%" or "500 + 10%".
// Fixed tokens are summed; at most one percent token is allowed.
func ParseDiscountGiven(s string) (fixed decimal.Decimal, percent decimal.Decimal, err error) {
	fixed = decimal.Zero
	percent = decimal.Zero

	s = strings.TrimSpace(s)
	if s == "" {
		return fixed, percent, nil
	}

	seenPercent := false
	for _, token := range strings.Fields(strings.ReplaceAll(s, "+", " ")) {
		raw := token
		isPercent := strings.HasSuffix(token, "%")
		token = strings.TrimSuffix(token, "%")
		token = strings.TrimPrefix(strings.ToUpper(token), "RM")
		token = strings.ReplaceAll(token, ",", "")

		value, parseErr := decimal.NewFromString(token)
		if parseErr != nil {
			return decimal.Zero, decimal.Zero, ierr.WithError(parseErr).
				WithHintf("Could not understand discount %q", raw).
				WithReportableDetails(map[string]any{
					"discount_given": s,
					"token":          raw,
				}).
				Mark(ierr.ErrInvalidDiscount)
		}
		if value.IsNegative() {
			return decimal.Zero, decimal.Zero, ierr.NewError("negative discount").
				WithHintf("Discount %q must not be negative", raw).
				Mark(ierr.ErrInvalidDiscount)
		}

		if isPercent {
			if seenPercent {
				return decimal.Zero, decimal.Zero, ierr.NewError("multiple percent discounts").
					WithHint("Only one percent discount can be given").
					WithReportableDetails(map[string]any{
						"discount_given": s,
					}).
					Mark(ierr.ErrInvalidDiscount)
			}
			seenPercent = true
			percent = value
			continue
		}
		fixed = fixed.Add(value)
	}

	return fixed, percent, nil
}
