// Package apperror provides structured error handling following RFC 7807 Problem Details.
// All business errors must use AppError for consistent API responses.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes grouped by concern.
const (
	// Infrastructure errors (5xx)
	CodeInternal = "INTERNAL_ERROR"
	CodeDatabase = "DATABASE_ERROR"

	// Validation errors (400)
	CodeValidation   = "VALIDATION_ERROR"
	CodeInvalidInput = "INVALID_INPUT"

	// Business rule violations (422)
	CodeBusinessRule          = "BUSINESS_RULE_VIOLATION"
	CodeInsufficientStock     = "INSUFFICIENT_STOCK"
	CodeArrivalExceedsOrder   = "ARRIVAL_EXCEEDS_ORDER"
	CodeClosingExceedsOpening = "CLOSING_EXCEEDS_OPENING"
	CodeConsumptionInUse      = "CONSUMPTION_IN_USE"

	// Not found (404)
	CodeNotFound = "NOT_FOUND"

	// Conflict (409)
	CodeConflict             = "CONFLICT"
	CodeDuplicate            = "DUPLICATE_ENTRY"
	CodeDuplicateConsumption = "DUPLICATE_CONSUMPTION"
)

// AppError is the standard error type for the platform.
// It implements error interface and provides structured details for API responses.
type AppError struct {
	// Code is a machine-readable error identifier
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Details contains additional context (field errors, quantities, etc.)
	Details map[string]any `json:"details,omitempty"`

	// HTTPStatus is the suggested HTTP status code
	HTTPStatus int `json:"-"`

	// Err is the underlying error (not exposed in JSON)
	Err error `json:"-"`
}

// Error implements error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a key-value pair to error details.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error.
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// --- Factory functions for common errors ---

// NewValidation creates a validation error (400).
func NewValidation(message string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewNotFound creates a not found error (404).
func NewNotFound(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", entity),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewBusinessRule creates a business rule violation error (422).
func NewBusinessRule(code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// NewInsufficientStock creates a stock shortage error with both quantities
// attached so the caller can render "requested X but only Y available".
func NewInsufficientStock(goodsID, requested, available string) *AppError {
	return &AppError{
		Code:       CodeInsufficientStock,
		Message:    fmt.Sprintf("insufficient stock: requested %s, available %s", requested, available),
		HTTPStatus: http.StatusUnprocessableEntity,
		Details: map[string]any{
			"goods_id":  goodsID,
			"requested": requested,
			"available": available,
		},
	}
}

// NewArrivalExceedsOrder is returned when a new arrival would push the
// cumulative arrived quantity over the purchase order's ordered quantity.
func NewArrivalExceedsOrder(orderID, requested, remaining string) *AppError {
	return &AppError{
		Code:       CodeArrivalExceedsOrder,
		Message:    fmt.Sprintf("arrival of %s exceeds ordered quantity: only %s remains on purchase order", requested, remaining),
		HTTPStatus: http.StatusUnprocessableEntity,
		Details: map[string]any{
			"purchase_order_id": orderID,
			"requested":         requested,
			"remaining":         remaining,
		},
	}
}

// NewClosingExceedsOpening is returned when a consumption's closing balance is
// larger than its opening balance (consumption cannot be negative).
func NewClosingExceedsOpening(opening, closing string) *AppError {
	return &AppError{
		Code:       CodeClosingExceedsOpening,
		Message:    fmt.Sprintf("closing balance %s exceeds opening balance %s", closing, opening),
		HTTPStatus: http.StatusUnprocessableEntity,
		Details: map[string]any{
			"opening": opening,
			"closing": closing,
		},
	}
}

// NewDuplicateConsumption is returned when a consumption already exists for
// the same (date, goods, location, handler) period.
func NewDuplicateConsumption(date string) *AppError {
	return &AppError{
		Code:       CodeDuplicateConsumption,
		Message:    fmt.Sprintf("a consumption record already exists for %s with this goods, location and handler", date),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"date": date},
	}
}

// NewConsumptionInUse is returned when deleting a consumption that a profit
// record depends on.
func NewConsumptionInUse(consumptionID string) *AppError {
	return &AppError{
		Code:       CodeConsumptionInUse,
		Message:    "consumption has a dependent profit record and cannot be deleted",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"consumption_id": consumptionID},
	}
}

// NewInternal creates an internal server error (hides details from client).
func NewInternal(err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewConflict creates a conflict error (409).
func NewConflict(message string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// NewDuplicate creates a duplicate entry error (409).
func NewDuplicate(entity, field, value string) *AppError {
	return &AppError{
		Code:       CodeDuplicate,
		Message:    fmt.Sprintf("%s with this %s already exists", entity, field),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"entity": entity, "field": field, "value": value},
	}
}

// --- Helper functions ---

// IsAppError checks if error is AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError extracts AppError from error chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetHTTPStatus returns appropriate HTTP status for any error.
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// IsNotFound checks if error is CodeNotFound.
func IsNotFound(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == CodeNotFound
	}
	return false
}

// HasCode checks whether the error carries the given code.
func HasCode(err error, code string) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}
