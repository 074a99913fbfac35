package dto

import (
	"testing"

	"github.com/shopspring/decimal"
	ierr "github.com/solarinvoice/invoicer/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDiscountGiven(t *testing.T) {
	tests := []struct {
		input   string
		fixed   string
		percent string
	}{
		{"", "0", "0"},
		{"500", "500", "0"},
		{"10%", "0", "10"},
		{"500 10%", "500", "10"},
		{"RM1,000", "1000", "0"},
		{"rm250.50 + 5%", "250.50", "5"},
		{"100 200", "300", "0"},
		{"  12.5%  ", "0", "12.5"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			fixed, percent, err := ParseDiscountGiven(tt.input)
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.fixed).Equal(fixed), "fixed: got %s", fixed)
			assert.True(t, decimal.RequireFromString(tt.percent).Equal(percent), "percent: got %s", percent)
		})
	}
}

func TestParseDiscountGiven_Invalid(t *testing.T) {
	for _, input := range []string{"abc", "10% 5%", "-500", "RM", "5%%"} {
		t.Run(input, func(t *testing.T) {
			_, _, err := ParseDiscountGiven(input)
			require.Error(t, err)
			assert.True(t, ierr.IsInvalidDiscount(err))
		})
	}
}
