package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/sw0nx/WIND-BOT/internal/services"
)

// ErrorResponse is the JSON error envelope. Code carries the domain error
// kind so the bot can pick its user-facing message without parsing text.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// ValidationHelper provides shared request validation
type ValidationHelper struct {
	validator *validator.Validate
}

func NewValidationHelper() *ValidationHelper {
	return &ValidationHelper{
		validator: validator.New(),
	}
}

func (vh *ValidationHelper) ValidateStruct(s any) error {
	return vh.validator.Struct(s)
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// SendErrorResponse sends a JSON error response for request-level failures
func SendErrorResponse(w http.ResponseWriter, message string, statusCode int, validationErr error) {
	errorResp := ErrorResponse{Error: message}
	if validationErr != nil {
		errorResp.Details = make(map[string]string)
		var fieldErrs validator.ValidationErrors
		if errors.As(validationErr, &fieldErrs) {
			for _, err := range fieldErrs {
				errorResp.Details[err.Field()] = fmt.Sprintf("Field Validation Failed on '%s' tag", err.Tag())
			}
		}
	}
	writeJSON(w, statusCode, errorResp)
}

// SendDomainError maps a service error to its HTTP shape. Domain errors are
// the result of a cleanly aborted transaction; anything unrecognized is an
// infrastructure fault and reported as STORE_UNAVAILABLE.
func SendDomainError(w http.ResponseWriter, err error) {
	statusCode, code := domainStatus(err)
	if statusCode >= http.StatusInternalServerError {
		log.Printf("[API] Store error: %v", err)
		writeJSON(w, statusCode, ErrorResponse{
			Error: services.ErrStoreUnavailable.Error(),
			Code:  code,
		})
		return
	}
	writeJSON(w, statusCode, ErrorResponse{Error: err.Error(), Code: code})
}

func domainStatus(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrInsufficientFunds):
		return http.StatusBadRequest, "INSUFFICIENT_FUNDS"
	case errors.Is(err, services.ErrOutOfStock):
		return http.StatusConflict, "OUT_OF_STOCK"
	case errors.Is(err, services.ErrProductUnavailable):
		return http.StatusNotFound, "PRODUCT_UNAVAILABLE"
	case errors.Is(err, services.ErrPinInvalid):
		return http.StatusNotFound, "PIN_INVALID"
	case errors.Is(err, services.ErrPinAlreadyUsed):
		return http.StatusConflict, "PIN_ALREADY_USED"
	case errors.Is(err, services.ErrDuplicateName):
		return http.StatusConflict, "DUPLICATE_NAME"
	case errors.Is(err, services.ErrDuplicatePin):
		return http.StatusConflict, "DUPLICATE_PIN"
	default:
		return http.StatusServiceUnavailable, "STORE_UNAVAILABLE"
	}
}
