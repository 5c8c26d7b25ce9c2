package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is the structured error every operation boundary returns. Code
// and Message render to API consumers; StatusCode and Internal stay
// server-side.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// New builds an application error from its parts.
func New(code, message string, statusCode int) *AppError {
	return &AppError{Code: code, Message: message, StatusCode: statusCode}
}

func (e *AppError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Internal != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Internal)
	}
	return e.Message
}

// Unwrap exposes the internal error for errors.Is / errors.As chains.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Internal
}

// WithMessage copies the error with a more specific message. Sentinels are
// shared package state, so mutation is never allowed.
func (e *AppError) WithMessage(message string) *AppError {
	if e == nil {
		return nil
	}
	cpy := *e
	cpy.Message = message
	return &cpy
}

// WithInternal copies the error with the underlying cause attached.
func (e *AppError) WithInternal(err error) *AppError {
	if e == nil {
		return nil
	}
	cpy := *e
	cpy.Internal = err
	return &cpy
}

// Shared taxonomy. The membership lifecycle categories (invalid state,
// affiliation, conflict) live alongside the generic HTTP ones so services
// speak a single vocabulary.
var (
	ErrUnauthorized       = New("UNAUTHORIZED", "Authentication required", http.StatusUnauthorized)
	ErrForbidden          = New("FORBIDDEN", "Permission denied", http.StatusForbidden)
	ErrNotFound           = New("NOT_FOUND", "Resource not found", http.StatusNotFound)
	ErrBadRequest         = New("BAD_REQUEST", "Invalid request", http.StatusBadRequest)
	ErrConflict           = New("CONFLICT", "Resource already exists", http.StatusConflict)
	ErrInvalidState       = New("INVALID_STATE", "Operation is not valid for the current state", http.StatusConflict)
	ErrAlreadyAffiliated  = New("ALREADY_AFFILIATED", "User already belongs to an organization", http.StatusConflict)
	ErrOperationFailed    = New("OPERATION_FAILED", "The operation could not be completed", http.StatusUnprocessableEntity)
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", "Invalid email or password", http.StatusUnauthorized)
	ErrInternalServer     = New("INTERNAL_SERVER_ERROR", "Internal server error", http.StatusInternalServerError)
)

// NewBadRequest is shorthand for a validation failure with its own message.
func NewBadRequest(message string) *AppError {
	return New(ErrBadRequest.Code, message, ErrBadRequest.StatusCode)
}

// Wrap converts an infrastructure error into an opaque internal AppError,
// keeping the cause for logging.
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Internal:   err,
	}
}

// FromError resolves any error to an AppError, defaulting to the opaque
// internal category.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return ErrInternalServer.WithInternal(err)
}
