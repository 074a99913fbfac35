package errors

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusFromErr(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
		code     string
	}{
		{
			name:     "not found",
			err:      NewError("invoice not found").Mark(ErrNotFound),
			expected: http.StatusNotFound,
			code:     ErrCodeNotFound,
		},
		{
			name:     "invalid discount",
			err:      NewError("percent out of range").WithHint("Discount percent must be between 0 and 100").Mark(ErrInvalidDiscount),
			expected: http.StatusUnprocessableEntity,
			code:     ErrCodeInvalidDiscount,
		},
		{
			name:     "voucher expired",
			err:      WithError(NewError("expired").Error()).Mark(ErrVoucherExpired),
			expected: http.StatusUnprocessableEntity,
			code:     ErrCodeVoucherExpired,
		},
		{
			name:     "sequence unavailable",
			err:      NewError("counter failed").Mark(ErrSequenceUnavailable),
			expected: http.StatusServiceUnavailable,
			code:     ErrCodeSequenceUnavailable,
		},
		{
			name:     "unmarked error",
			err:      NewError("boom").Error(),
			expected: http.StatusInternalServerError,
			code:     ErrCodeSystemError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HTTPStatusFromErr(tt.err))
			assert.Equal(t, tt.code, CodeFromErr(tt.err))
		})
	}
}

func TestIsHelpers(t *testing.T) {
	err := WithError(NewError("inner").Mark(ErrVoucherInvalid)).
		WithMessage("validating voucher").
		Mark(ErrValidation)

	assert.True(t, IsVoucherInvalid(err))
	assert.True(t, IsValidation(err))
	assert.False(t, IsVoucherExpired(err))
	assert.False(t, IsNotFound(err))
}

func TestHTTPStatusFromErrPrefersDomainMarks(t *testing.T) {
	unknownVoucher := WithError(NewError("voucher not found").Mark(ErrNotFound)).
		WithHint("Voucher ABC is not valid").
		Mark(ErrVoucherInvalid)
	assert.Equal(t, http.StatusUnprocessableEntity, HTTPStatusFromErr(unknownVoucher))
	assert.Equal(t, ErrCodeVoucherInvalid, CodeFromErr(unknownVoucher))

	exhausted := WithError(NewError("duplicate number").Mark(ErrAlreadyExists)).
		Mark(ErrSequenceUnavailable)
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatusFromErr(exhausted))
	assert.Equal(t, ErrCodeSequenceUnavailable, CodeFromErr(exhausted))
}
