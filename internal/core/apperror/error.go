// Package apperror provides structured error handling following RFC 7807 Problem Details.
// All registry, unit and loader errors surface as AppError so callers can branch on Code.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes
const (
	// Infrastructure errors (5xx)
	CodeInternal = "INTERNAL_ERROR"
	CodeDatabase = "DATABASE_ERROR"

	// Validation errors (400)
	CodeValidation = "VALIDATION_ERROR"

	// Unit system errors (422)
	CodeUndefinedUnit  = "UNDEFINED_UNIT"
	CodeDimensionality = "DIMENSIONALITY_ERROR"
	CodeOffsetUnit     = "OFFSET_UNIT_ERROR"

	// Field construction errors (422)
	CodeIncompatibleFieldType = "INCOMPATIBLE_FIELD_TYPE"

	// Not found (404)
	CodeNotFound = "NOT_FOUND"

	// Conflict (409)
	CodeConflict  = "CONFLICT"
	CodeDuplicate = "DUPLICATE_ENTRY"
)

// AppError is the standard error type for the platform.
// It implements error interface and provides structured details for API responses.
type AppError struct {
	// Code is a machine-readable error identifier
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Details contains additional context (units, field types, identifiers)
	Details map[string]any `json:"details,omitempty"`

	// HTTPStatus is the suggested HTTP status code
	HTTPStatus int `json:"-"`

	// Err is the underlying error (not exposed in JSON)
	Err error `json:"-"`
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a key-value pair to error details
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// --- Factory functions for common errors ---

// NewValidation creates a validation error (400)
func NewValidation(message string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewNotFound creates a not found error (404)
func NewNotFound(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", entity),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewUndefinedUnit is returned when a unit expression names an unknown unit.
func NewUndefinedUnit(name string) *AppError {
	return &AppError{
		Code:       CodeUndefinedUnit,
		Message:    fmt.Sprintf("'%s' is not defined in the unit system", name),
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"unit": name},
	}
}

// NewDimensionality is returned when two units do not share a dimension.
func NewDimensionality(from, to, fromDim, toDim string) *AppError {
	return &AppError{
		Code:       CodeDimensionality,
		Message:    fmt.Sprintf("cannot convert from '%s' (%s) to '%s' (%s)", from, fromDim, to, toDim),
		HTTPStatus: http.StatusUnprocessableEntity,
		Details: map[string]any{
			"from":           from,
			"to":             to,
			"from_dimension": fromDim,
			"to_dimension":   toDim,
		},
	}
}

// NewOffsetUnit is returned when an offset unit (degC) is used in a compound expression.
func NewOffsetUnit(unit string) *AppError {
	return &AppError{
		Code:       CodeOffsetUnit,
		Message:    fmt.Sprintf("ambiguous operation with offset unit in '%s'", unit),
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"unit": unit},
	}
}

// NewIncompatibleFieldType is returned when a field unit does not match its field type.
func NewIncompatibleFieldType(unit, fieldType, expected string) *AppError {
	return &AppError{
		Code: CodeIncompatibleFieldType,
		Message: fmt.Sprintf("unit '%s' is not compatible with field type %s (expected dimension of '%s')",
			unit, fieldType, expected),
		HTTPStatus: http.StatusUnprocessableEntity,
		Details: map[string]any{
			"unit":          unit,
			"field_type":    fieldType,
			"expected_unit": expected,
		},
	}
}

// NewInternal creates an internal server error (hides details from client)
func NewInternal(err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewDatabase wraps a storage failure (500, details hidden from client)
func NewDatabase(err error) *AppError {
	return &AppError{
		Code:       CodeDatabase,
		Message:    "Database error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewConflict creates a conflict error (409)
func NewConflict(message string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// NewDuplicate creates a duplicate entry error (409)
func NewDuplicate(entity, field, value string) *AppError {
	return &AppError{
		Code:       CodeDuplicate,
		Message:    fmt.Sprintf("%s with this %s already exists", entity, field),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"entity": entity, "field": field, "value": value},
	}
}

// --- Helper functions ---

// IsAppError checks if error is AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError extracts AppError from error chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetHTTPStatus returns appropriate HTTP status for any error
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// HasCode reports whether any AppError in the chain carries code.
func HasCode(err error, code string) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}

// IsNotFound checks if error is CodeNotFound
func IsNotFound(err error) bool {
	return HasCode(err, CodeNotFound)
}
