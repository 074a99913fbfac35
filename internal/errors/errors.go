package errors

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

// Common error types that can be used across the application
var (
	ErrNotFound         = new(ErrCodeNotFound, "resource not found")
	ErrAlreadyExists    = new(ErrCodeAlreadyExists, "resource already exists")
	ErrVersionConflict  = new(ErrCodeVersionConflict, "version conflict")
	ErrValidation       = new(ErrCodeValidation, "validation error")
	ErrInvalidOperation = new(ErrCodeInvalidOperation, "invalid operation")
	ErrPermissionDenied = new(ErrCodePermissionDenied, "permission denied")
	ErrDatabase         = new(ErrCodeDatabase, "database error")
	ErrSystem           = new(ErrCodeSystemError, "system error")
	ErrRateLimited      = new(ErrCodeRateLimited, "too many requests")

	// invoice computation errors
	ErrInvalidDiscount     = new(ErrCodeInvalidDiscount, "invalid discount")
	ErrVoucherInvalid      = new(ErrCodeVoucherInvalid, "voucher is not valid")
	ErrVoucherExpired      = new(ErrCodeVoucherExpired, "voucher has expired")
	ErrNegativeTotal       = new(ErrCodeNegativeTotal, "invoice total would be negative")
	ErrSequenceUnavailable = new(ErrCodeSequenceUnavailable, "invoice number sequence unavailable")

	// statusCodes maps errors to http status codes. Errors can carry more
	// than one mark, so the most specific sentinels come first.
	statusCodes = []struct {
		err    error
		status int
	}{
		{ErrSequenceUnavailable, http.StatusServiceUnavailable},
		{ErrInvalidDiscount, http.StatusUnprocessableEntity},
		{ErrVoucherInvalid, http.StatusUnprocessableEntity},
		{ErrVoucherExpired, http.StatusUnprocessableEntity},
		{ErrNegativeTotal, http.StatusUnprocessableEntity},
		{ErrNotFound, http.StatusNotFound},
		{ErrAlreadyExists, http.StatusConflict},
		{ErrVersionConflict, http.StatusConflict},
		{ErrValidation, http.StatusBadRequest},
		{ErrInvalidOperation, http.StatusBadRequest},
		{ErrPermissionDenied, http.StatusForbidden},
		{ErrRateLimited, http.StatusTooManyRequests},
		{ErrDatabase, http.StatusInternalServerError},
		{ErrSystem, http.StatusInternalServerError},
	}
)

const (
	ErrCodeSystemError         = "system_error"
	ErrCodeNotFound            = "not_found"
	ErrCodeAlreadyExists       = "already_exists"
	ErrCodeVersionConflict     = "version_conflict"
	ErrCodeValidation          = "validation_error"
	ErrCodeInvalidOperation    = "invalid_operation"
	ErrCodePermissionDenied    = "permission_denied"
	ErrCodeDatabase            = "database_error"
	ErrCodeRateLimited         = "rate_limited"
	ErrCodeInvalidDiscount     = "invalid_discount"
	ErrCodeVoucherInvalid      = "voucher_invalid"
	ErrCodeVoucherExpired      = "voucher_expired"
	ErrCodeNegativeTotal       = "negative_total"
	ErrCodeSequenceUnavailable = "sequence_unavailable"
)

// InternalError represents a domain error
type InternalError struct {
	Code    string // Machine-readable error code
	Message string // Human-readable error message
	Op      string // Logical operation name
	Err     error  // Underlying error
}

func (e *InternalError) Error() string {
	if e.Err == nil {
		return e.DisplayError()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Err.Error())
}

func (e *InternalError) DisplayError() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// Is implements error matching for wrapped errors
func (e *InternalError) Is(target error) bool {
	if target == nil {
		return false
	}

	t, ok := target.(*InternalError)
	if !ok {
		return errors.Is(e.Err, target)
	}

	return e.Code == t.Code
}

func new(code string, message string) *InternalError {
	return &InternalError{
		Code:    code,
		Message: message,
	}
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

// Is is a passthrough to cockroachdb/errors so callers need only this package
func Is(err, reference error) bool {
	return errors.Is(err, reference)
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error is an already exists error
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsVersionConflict checks if an error is a version conflict error
func IsVersionConflict(err error) bool {
	return errors.Is(err, ErrVersionConflict)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsInvalidOperation checks if an error is an invalid operation error
func IsInvalidOperation(err error) bool {
	return errors.Is(err, ErrInvalidOperation)
}

// IsPermissionDenied checks if an error is a permission denied error
func IsPermissionDenied(err error) bool {
	return errors.Is(err, ErrPermissionDenied)
}

func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

func IsInvalidDiscount(err error) bool {
	return errors.Is(err, ErrInvalidDiscount)
}

func IsVoucherInvalid(err error) bool {
	return errors.Is(err, ErrVoucherInvalid)
}

func IsVoucherExpired(err error) bool {
	return errors.Is(err, ErrVoucherExpired)
}

func IsNegativeTotal(err error) bool {
	return errors.Is(err, ErrNegativeTotal)
}

func IsSequenceUnavailable(err error) bool {
	return errors.Is(err, ErrSequenceUnavailable)
}

func HTTPStatusFromErr(err error) int {
	for _, sc := range statusCodes {
		if errors.Is(err, sc.err) {
			return sc.status
		}
	}
	return http.StatusInternalServerError
}

// CodeFromErr returns the machine readable code of the first sentinel the error is marked with
func CodeFromErr(err error) string {
	for _, sc := range statusCodes {
		if errors.Is(err, sc.err) {
			if ie, ok := sc.err.(*InternalError); ok {
				return ie.Code
			}
		}
	}
	return ErrCodeSystemError
}
