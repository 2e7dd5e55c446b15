// Package errors defines the typed application errors shared across layers.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation_error"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeConflict   ErrorType = "conflict"
	ErrorTypeInternal   ErrorType = "internal_error"
	ErrorTypeBadRequest ErrorType = "bad_request"

	// Confirmation pipeline kinds. None of them reach the gateway as a
	// non-2xx status; they drive logging, metrics and the callback log.
	ErrorTypeVerificationFailure ErrorType = "verification_failure"
	ErrorTypeParseFailure        ErrorType = "parse_failure"
	ErrorTypeOrderNotFound       ErrorType = "order_not_found"
	ErrorTypeAlreadyTerminal     ErrorType = "already_terminal"

	// ErrorTypeUpstreamUnavailable is surfaced to the customer when the
	// gateway session cannot be created.
	ErrorTypeUpstreamUnavailable ErrorType = "upstream_unavailable"
	ErrorTypeNotSupported        ErrorType = "not_supported"
)

// AppError represents an application error with additional context
type AppError struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Code    int       `json:"code"`
	Details string    `json:"details,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func newAppError(t ErrorType, code int, message string, details []string) *AppError {
	detail := ""
	if len(details) > 0 {
		detail = details[0]
	}
	return &AppError{Type: t, Message: message, Code: code, Details: detail}
}

func NewValidationError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeValidation, http.StatusBadRequest, message, details)
}

func NewNotFoundError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeNotFound, http.StatusNotFound, message, details)
}

func NewConflictError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeConflict, http.StatusConflict, message, details)
}

func NewInternalError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeInternal, http.StatusInternalServerError, message, details)
}

func NewBadRequestError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeBadRequest, http.StatusBadRequest, message, details)
}

// NewVerificationFailure reports a callback whose authenticity check failed.
func NewVerificationFailure(message string, details ...string) *AppError {
	return newAppError(ErrorTypeVerificationFailure, http.StatusOK, message, details)
}

// NewParseFailure reports a callback payload that could not be parsed.
func NewParseFailure(message string, details ...string) *AppError {
	return newAppError(ErrorTypeParseFailure, http.StatusOK, message, details)
}

// NewOrderNotFound reports a confirmation that references no known order.
func NewOrderNotFound(message string, details ...string) *AppError {
	return newAppError(ErrorTypeOrderNotFound, http.StatusOK, message, details)
}

// NewAlreadyTerminal reports a confirmation for an order that can no longer be marked paid.
func NewAlreadyTerminal(message string, details ...string) *AppError {
	return newAppError(ErrorTypeAlreadyTerminal, http.StatusOK, message, details)
}

func NewUpstreamUnavailable(message string, details ...string) *AppError {
	return newAppError(ErrorTypeUpstreamUnavailable, http.StatusBadGateway, message, details)
}

func NewNotSupportedError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeNotSupported, http.StatusNotImplemented, message, details)
}

// IsAppError checks if the error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts AppError from error
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsType reports whether err is an AppError of type t.
func IsType(err error, t ErrorType) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == t
}

func IsNotFoundError(err error) bool {
	return IsType(err, ErrorTypeNotFound)
}

func IsValidationError(err error) bool {
	return IsType(err, ErrorTypeValidation)
}

func IsVerificationFailure(err error) bool {
	return IsType(err, ErrorTypeVerificationFailure)
}

func IsParseFailure(err error) bool {
	return IsType(err, ErrorTypeParseFailure)
}

func IsOrderNotFound(err error) bool {
	return IsType(err, ErrorTypeOrderNotFound)
}

func IsAlreadyTerminal(err error) bool {
	return IsType(err, ErrorTypeAlreadyTerminal)
}

func IsUpstreamUnavailable(err error) bool {
	return IsType(err, ErrorTypeUpstreamUnavailable)
}
