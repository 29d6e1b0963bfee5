package server

import (
	"fmt"
	"net/http"
	"testing"

	authdomain "github.com/smallbiznis/procura/internal/auth/domain"
	rfqdomain "github.com/smallbiznis/procura/internal/rfq/domain"
	"github.com/stretchr/testify/assert"
)

func TestMapErrorValidation(t *testing.T) {
	err := &rfqdomain.ValidationError{Details: []rfqdomain.FieldError{
		{Field: "items", Code: "required", Message: "items must not be empty"},
	}}

	status, body := mapError(err)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "validation failed", body.Error)
	assert.Len(t, body.Details, 1)
}

func TestMapErrorTokenFailuresAreUniform(t *testing.T) {
	// Every portal token failure maps to one indistinct 404 so responses
	// never reveal whether a guessed token exists.
	for _, err := range []error{
		rfqdomain.ErrVendorRequestNotFound,
		rfqdomain.ErrAlreadyResponded,
		rfqdomain.ErrRequestExpired,
		rfqdomain.ErrRequestCancelled,
	} {
		status, body := mapError(err)
		assert.Equal(t, http.StatusNotFound, status, err.Error())
		assert.Equal(t, tokenErrorMessage, body.Error, err.Error())
		assert.Empty(t, body.Details, err.Error())
	}
}

func TestMapErrorAuth(t *testing.T) {
	for _, err := range []error{
		ErrUnauthorized,
		authdomain.ErrInvalidCredentials,
		authdomain.ErrSessionNotFound,
		authdomain.ErrSessionExpired,
	} {
		status, body := mapError(err)
		assert.Equal(t, http.StatusUnauthorized, status, err.Error())
		assert.Equal(t, "unauthorized", body.Error, err.Error())
	}
}

func TestMapErrorConflict(t *testing.T) {
	status, body := mapError(rfqdomain.ErrNotCancellable)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "request can no longer be cancelled", body.Error)
}

func TestMapErrorSanitizedServerFailures(t *testing.T) {
	status, body := mapError(rfqdomain.ErrReferenceIntegrity)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "a referenced record does not exist", body.Error)

	status, body = mapError(rfqdomain.ErrTransactionTimeout)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "request timed out; the batch may be too large", body.Error)

	// Arbitrary internals never leak their message.
	status, body = mapError(fmt.Errorf("pq: connection reset by peer"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal server error", body.Error)
}

func TestClassifyErrorForLog(t *testing.T) {
	class, _ := classifyErrorForLog(fmt.Errorf("boom"))
	assert.Equal(t, "server_error", class)

	class, detail := classifyErrorForLog(&rfqdomain.ValidationError{})
	assert.Equal(t, "validation_error", class)
	assert.Equal(t, "validation_failed", detail)

	class, _ = classifyErrorForLog(ErrUnauthorized)
	assert.Equal(t, "auth_error", class)

	class, _ = classifyErrorForLog(rfqdomain.ErrVendorRequestNotFound)
	assert.Equal(t, "client_error", class)
}
