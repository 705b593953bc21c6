package models

import (
	"errors"
	"fmt"
)

// Error codes shared by repositories, services and the bot loop.
const (
	CodeStoreUnavailable   = "STORE_UNAVAILABLE"
	CodeConstraintConflict = "CONSTRAINT_CONFLICT"
	CodeGatewayRejected    = "GATEWAY_REJECTED"
	CodeInvalidEvent       = "INVALID_EVENT"
	CodeValidation         = "VALIDATION_ERROR"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeNotFound           = "NOT_FOUND"
	CodeInternal           = "INTERNAL_ERROR"
)

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// IsCode reports whether err wraps an AppError carrying code.
func IsCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// Predefined error constructors
func NewStoreUnavailableError(err error) *AppError {
	return &AppError{
		Code:    CodeStoreUnavailable,
		Message: "store unavailable",
		Err:     err,
	}
}

func NewConstraintConflictError(resource string, err error) *AppError {
	return &AppError{
		Code:    CodeConstraintConflict,
		Message: fmt.Sprintf("%s already exists", resource),
		Err:     err,
	}
}

func NewGatewayRejectedError(op string, err error) *AppError {
	return &AppError{
		Code:    CodeGatewayRejected,
		Message: fmt.Sprintf("gateway rejected %s", op),
		Err:     err,
	}
}

func NewInvalidEventError(raw string) *AppError {
	return &AppError{
		Code:    CodeInvalidEvent,
		Message: fmt.Sprintf("invalid event %q", raw),
	}
}

func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "internal error",
		Err:     err,
	}
}
