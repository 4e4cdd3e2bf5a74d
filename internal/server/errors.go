package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	apikeydomain "github.com/smallbiznis/invoicedesk/internal/apikey/domain"
	auditdomain "github.com/smallbiznis/invoicedesk/internal/audit/domain"
	"github.com/smallbiznis/invoicedesk/internal/authorization"
	clientdomain "github.com/smallbiznis/invoicedesk/internal/client/domain"
	companydomain "github.com/smallbiznis/invoicedesk/internal/company/domain"
	invoicedomain "github.com/smallbiznis/invoicedesk/internal/invoice/domain"
	"github.com/smallbiznis/invoicedesk/internal/invoice/render"
	projectdomain "github.com/smallbiznis/invoicedesk/internal/project/domain"
	publicinvoicedomain "github.com/smallbiznis/invoicedesk/internal/publicinvoice/domain"
	"github.com/smallbiznis/invoicedesk/pkg/db/pagination"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
	ErrInternal           = errors.New("internal_error")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrRateLimited        = errors.New("rate_limited")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

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

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := err.Error()
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, apikeydomain.ErrUnauthorized),
		isOwnerError(err):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden),
		errors.Is(err, authorization.ErrForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "rate_limited",
			Message: "too many requests",
		}
	case errors.Is(err, ErrServiceUnavailable),
		errors.Is(err, render.ErrBackendDisabled):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

// classifyErrorForLog feeds the request logger's error_type and error_code.
func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	code := payload.Type
	if len(payload.Errors) > 0 {
		code = payload.Errors[0].Code
	} else if status < http.StatusInternalServerError {
		code = err.Error()
	}
	return payload.Type, code
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, pagination.ErrInvalidPageToken):
		return true
	case isClientValidationError(err),
		isProjectValidationError(err),
		isCompanyValidationError(err),
		isInvoiceValidationError(err),
		isAPIKeyValidationError(err),
		errors.Is(err, auditdomain.ErrInvalidAction),
		errors.Is(err, auditdomain.ErrInvalidPageToken),
		errors.Is(err, auditdomain.ErrInvalidTimeRange),
		errors.Is(err, render.ErrUnknownBackend):
		return true
	default:
		return false
	}
}

func isOwnerError(err error) bool {
	return errors.Is(err, clientdomain.ErrInvalidOwner) ||
		errors.Is(err, projectdomain.ErrInvalidOwner) ||
		errors.Is(err, companydomain.ErrInvalidOwner) ||
		errors.Is(err, invoicedomain.ErrInvalidOwner) ||
		errors.Is(err, apikeydomain.ErrInvalidOwner)
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, invoicedomain.ErrDuplicateNumber),
		errors.Is(err, invoicedomain.ErrNotEditable),
		errors.Is(err, invoicedomain.ErrInvalidTransition),
		errors.Is(err, invoicedomain.ErrNotRemindable),
		errors.Is(err, render.ErrNotPaid):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, clientdomain.ErrNotFound),
		errors.Is(err, projectdomain.ErrNotFound),
		errors.Is(err, companydomain.ErrNotFound),
		errors.Is(err, invoicedomain.ErrNotFound),
		errors.Is(err, invoicedomain.ErrClientMissing),
		errors.Is(err, invoicedomain.ErrProjectMissing),
		errors.Is(err, apikeydomain.ErrNotFound),
		errors.Is(err, publicinvoicedomain.ErrInvoiceUnavailable),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func isClientValidationError(err error) bool {
	switch {
	case errors.Is(err, clientdomain.ErrInvalidEmail),
		errors.Is(err, clientdomain.ErrInvalidStatus),
		errors.Is(err, clientdomain.ErrInvalidID):
		return true
	default:
		return false
	}
}

func isProjectValidationError(err error) bool {
	switch {
	case errors.Is(err, projectdomain.ErrInvalidName),
		errors.Is(err, projectdomain.ErrInvalidStatus),
		errors.Is(err, projectdomain.ErrInvalidClient),
		errors.Is(err, projectdomain.ErrInvalidID):
		return true
	default:
		return false
	}
}

func isCompanyValidationError(err error) bool {
	switch {
	case errors.Is(err, companydomain.ErrInvalidEmail),
		errors.Is(err, companydomain.ErrInvalidCurrency),
		errors.Is(err, companydomain.ErrInvalidTemplate),
		errors.Is(err, companydomain.ErrInvalidTaxRate):
		return true
	default:
		return false
	}
}

func isInvoiceValidationError(err error) bool {
	switch {
	case errors.Is(err, invoicedomain.ErrInvalidID),
		errors.Is(err, invoicedomain.ErrInvalidClient),
		errors.Is(err, invoicedomain.ErrInvalidProject),
		errors.Is(err, invoicedomain.ErrInvalidDate),
		errors.Is(err, invoicedomain.ErrInvalidLineItem),
		errors.Is(err, invoicedomain.ErrInvalidTaxRate),
		errors.Is(err, invoicedomain.ErrInvalidStatus),
		errors.Is(err, invoicedomain.ErrMissingRecipient),
		errors.Is(err, invoicedomain.ErrInvalidToken),
		errors.Is(err, invoicedomain.ErrInvalidNumberFormat):
		return true
	default:
		return false
	}
}

func isAPIKeyValidationError(err error) bool {
	switch {
	case errors.Is(err, apikeydomain.ErrInvalidName),
		errors.Is(err, apikeydomain.ErrInvalidRole),
		errors.Is(err, apikeydomain.ErrInvalidKeyID):
		return true
	default:
		return false
	}
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	default:
		return "invalid value"
	}
}
