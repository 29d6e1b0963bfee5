package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/procura/internal/auth/domain"
	organizationdomain "github.com/smallbiznis/procura/internal/organization/domain"
	rfqdomain "github.com/smallbiznis/procura/internal/rfq/domain"
	vendordomain "github.com/smallbiznis/procura/internal/vendors/domain"
	"gorm.io/gorm"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not_found")
	ErrInternal     = errors.New("internal_error")
)

// tokenErrorMessage is the single message for every portal token failure.
// Unknown, malformed, expired, and used tokens are indistinguishable so
// the portal never works as an oracle for token guessing.
const tokenErrorMessage = "this request link is invalid, expired, or already used"

type errorBody struct {
	Error   string                 `json:"error"`
	Details []rfqdomain.FieldError `json:"details,omitempty"`
}

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, body := mapError(lastErr.Err)
		c.AbortWithStatusJSON(status, body)
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorBody) {
	if ve, ok := rfqdomain.AsValidationError(err); ok {
		return http.StatusUnprocessableEntity, errorBody{
			Error:   "validation failed",
			Details: ve.Details,
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, authdomain.ErrInvalidCredentials),
		errors.Is(err, authdomain.ErrSessionNotFound),
		errors.Is(err, authdomain.ErrSessionExpired):
		return http.StatusUnauthorized, errorBody{Error: "unauthorized"}

	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, errorBody{Error: "forbidden"}

	case isTokenError(err):
		return http.StatusNotFound, errorBody{Error: tokenErrorMessage}

	case errors.Is(err, rfqdomain.ErrNotCancellable):
		return http.StatusConflict, errorBody{Error: "request can no longer be cancelled"}

	case isNotFoundError(err):
		return http.StatusNotFound, errorBody{Error: "not found"}

	case errors.Is(err, organizationdomain.ErrInvalidName),
		errors.Is(err, organizationdomain.ErrInvalidID),
		errors.Is(err, vendordomain.ErrInvalidVendor):
		return http.StatusUnprocessableEntity, errorBody{Error: err.Error()}

	// The three sanitized server failures. Nothing else about the
	// underlying error leaks to the client.
	case errors.Is(err, rfqdomain.ErrReferenceIntegrity):
		return http.StatusInternalServerError, errorBody{Error: "a referenced record does not exist"}
	case errors.Is(err, rfqdomain.ErrTransactionTimeout):
		return http.StatusInternalServerError, errorBody{Error: "request timed out; the batch may be too large"}
	default:
		return http.StatusInternalServerError, errorBody{Error: "internal server error"}
	}
}

func isTokenError(err error) bool {
	return errors.Is(err, rfqdomain.ErrVendorRequestNotFound) ||
		errors.Is(err, rfqdomain.ErrAlreadyResponded) ||
		errors.Is(err, rfqdomain.ErrRequestExpired) ||
		errors.Is(err, rfqdomain.ErrRequestCancelled)
}

func isNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, authdomain.ErrUserNotFound) ||
		errors.Is(err, organizationdomain.ErrNotFound) ||
		errors.Is(err, vendordomain.ErrVendorNotFound) ||
		errors.Is(err, rfqdomain.ErrQuoteNotFound) ||
		errors.Is(err, gorm.ErrRecordNotFound)
}

// classifyErrorForLog buckets request errors for structured logging.
func classifyErrorForLog(err error) (string, string) {
	status, _ := mapError(err)
	switch {
	case status >= http.StatusInternalServerError:
		return "server_error", err.Error()
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return "auth_error", err.Error()
	case status == http.StatusUnprocessableEntity:
		return "validation_error", "validation_failed"
	default:
		return "client_error", err.Error()
	}
}
