package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrQuoteNotFound         = errors.New("quote_not_found")
	ErrVendorRequestNotFound = errors.New("vendor_request_not_found")
	ErrAlreadyResponded      = errors.New("vendor_request_already_responded")
	ErrRequestExpired        = errors.New("vendor_request_expired")
	ErrRequestCancelled      = errors.New("vendor_request_cancelled")
	ErrNotCancellable        = errors.New("vendor_request_not_cancellable")
	ErrReferenceIntegrity    = errors.New("reference_integrity")
	ErrTransactionTimeout    = errors.New("transaction_timeout")
)

// FieldError is one field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationError carries every field error found in one request. No side
// effects happen while one of these is pending.
type ValidationError struct {
	Details []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Details) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(e.Details))
	for _, d := range e.Details {
		fields = append(fields, d.Field)
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(fields, ", "))
}

// AsValidationError unwraps err into a *ValidationError when possible.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	ok := errors.As(err, &ve)
	return ve, ok
}
