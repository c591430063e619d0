// Package contextutils provides the structured error type shared by the feedback
// service, its handlers and the command line clients.
package contextutils

import (
	"fmt"
	"strings"
)

// ErrorCode is the machine readable code carried in every error response body.
type ErrorCode string

// Storage
const (
	ErrorCodeDatabaseConnection ErrorCode = "DATABASE_CONNECTION_ERROR"
	ErrorCodeDatabaseQuery      ErrorCode = "DATABASE_QUERY_ERROR"
	ErrorCodeRecordNotFound     ErrorCode = "RECORD_NOT_FOUND"
	// ErrorCodeRecordExists is returned for duplicate emails and product names.
	ErrorCodeRecordExists ErrorCode = "RECORD_ALREADY_EXISTS"
)

// Request validation
const (
	ErrorCodeInvalidInput     ErrorCode = "INVALID_INPUT"
	ErrorCodeMissingRequired  ErrorCode = "MISSING_REQUIRED_FIELD"
	ErrorCodeInvalidFormat    ErrorCode = "INVALID_FORMAT"
	ErrorCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
)

// Authentication and role checks
const (
	ErrorCodeUnauthorized       ErrorCode = "UNAUTHORIZED"
	ErrorCodeForbidden          ErrorCode = "FORBIDDEN"
	ErrorCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrorCodeSessionExpired     ErrorCode = "SESSION_EXPIRED"
)

// Service
const (
	ErrorCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	ErrorCodeTimeout            ErrorCode = "REQUEST_TIMEOUT"
	ErrorCodeInternalError      ErrorCode = "INTERNAL_SERVER_ERROR"
)

// SeverityLevel decides how loudly an error is logged and whether its cause is
// shown to the caller.
type SeverityLevel string

const (
	SeverityDebug SeverityLevel = "debug"
	SeverityInfo  SeverityLevel = "info"
	SeverityWarn  SeverityLevel = "warn"
	SeverityError SeverityLevel = "error"
	SeverityFatal SeverityLevel = "fatal"
)

// AppError represents a structured error with code, severity, and context
type AppError struct {
	Code     ErrorCode
	Severity SeverityLevel
	Message  string
	Details  string
	Cause    error
}

func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s - %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches on code alone so wrapped errors still compare equal to the sentinels below.
func (e *AppError) Is(target error) bool {
	if appErr, ok := target.(*AppError); ok {
		return e.Code == appErr.Code
	}
	return false
}

func sentinel(code ErrorCode, severity SeverityLevel, message string) *AppError {
	return &AppError{Code: code, Severity: severity, Message: message}
}

// Sentinels for errors.Is and IsError comparisons.
var (
	ErrDatabaseConnection = sentinel(ErrorCodeDatabaseConnection, SeverityError, "Database connection failed")
	ErrRecordNotFound     = sentinel(ErrorCodeRecordNotFound, SeverityInfo, "Record not found")
	ErrInvalidFormat      = sentinel(ErrorCodeInvalidFormat, SeverityWarn, "Invalid format")
	ErrValidationFailed   = sentinel(ErrorCodeValidationFailed, SeverityWarn, "Validation failed")
	ErrUnauthorized       = sentinel(ErrorCodeUnauthorized, SeverityWarn, "Authentication required")
	ErrForbidden          = sentinel(ErrorCodeForbidden, SeverityWarn, "Forbidden")
	ErrInvalidCredentials = sentinel(ErrorCodeInvalidCredentials, SeverityWarn, "Invalid credentials")
	ErrSessionExpired     = sentinel(ErrorCodeSessionExpired, SeverityInfo, "Session expired")
	ErrServiceUnavailable = sentinel(ErrorCodeServiceUnavailable, SeverityError, "Service unavailable")
	ErrInternalError      = sentinel(ErrorCodeInternalError, SeverityError, "Internal server error")
)

// NewAppError creates a new AppError with the specified code, severity, message and details
func NewAppError(code ErrorCode, severity SeverityLevel, message, details string) *AppError {
	return &AppError{
		Code:     code,
		Severity: severity,
		Message:  message,
		Details:  details,
	}
}

// NewAppErrorWithCause creates a new AppError with an underlying cause
func NewAppErrorWithCause(code ErrorCode, severity SeverityLevel, message, details string, cause error) *AppError {
	appErr := NewAppError(code, severity, message, details)
	appErr.Cause = cause
	return appErr
}

// NewValidationError reports a missing or malformed request field.
func NewValidationError(message, details string) *AppError {
	return NewAppError(ErrorCodeValidationFailed, SeverityWarn, message, details)
}

// NewAuthorizationError reports a role that does not satisfy an endpoint's policy.
func NewAuthorizationError(message string) *AppError {
	return NewAppError(ErrorCodeForbidden, SeverityWarn, message, "")
}

// NewNotFoundError reports an unresolved user, product or feedback id.
func NewNotFoundError(message string) *AppError {
	return NewAppError(ErrorCodeRecordNotFound, SeverityInfo, message, "")
}

// NewStorageError wraps a persistence failure. The cause is kept for logs and
// only surfaced to clients as an internal error.
func NewStorageError(message string, cause error) *AppError {
	details := ""
	if cause != nil {
		details = cause.Error()
	}
	return NewAppErrorWithCause(ErrorCodeDatabaseQuery, SeverityError, message, details, cause)
}

// wrap keeps the code and severity of an AppError and downgrades anything else
// to an internal error.
func wrap(err error, message string, cause error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return NewAppErrorWithCause(appErr.Code, appErr.Severity, message, appErr.Error(), cause)
	}
	return NewAppErrorWithCause(ErrorCodeInternalError, SeverityError, message, err.Error(), cause)
}

// WrapError wraps an error with additional context, preserving AppError structure if possible
func WrapError(err error, context string) error {
	if err == nil {
		return nil
	}
	return wrap(err, context, err)
}

// WrapErrorf is WrapError with a format string. A %w verb makes the formatted
// error the cause instead of err.
func WrapErrorf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	if strings.Contains(format, "%w") {
		formatted := fmt.Errorf(format, args...)
		return wrap(err, formatted.Error(), formatted)
	}
	return wrap(err, fmt.Sprintf(format, args...), err)
}

// ErrorWithContextf creates a new internal error with formatted context
func ErrorWithContextf(format string, args ...interface{}) error {
	return NewAppError(ErrorCodeInternalError, SeverityError, fmt.Sprintf(format, args...), "")
}

// IsError checks if an error matches a specific AppError type
func IsError(err error, target *AppError) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code == target.Code
	}
	return false
}

// AsError attempts to convert an error to an AppError
func AsError(err error, target **AppError) bool {
	if appErr, ok := err.(*AppError); ok {
		*target = appErr
		return true
	}
	return false
}

// GetErrorCode returns the error's code, or INTERNAL_SERVER_ERROR for plain errors.
func GetErrorCode(err error) ErrorCode {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return ErrorCodeInternalError
}

// GetErrorSeverity returns the error's severity, or error for plain errors.
func GetErrorSeverity(err error) SeverityLevel {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Severity
	}
	return SeverityError
}

// IsCallerFault reports whether err was caused by the request rather than the
// service: validation, credential, role and lookup failures.
func IsCallerFault(err error) bool {
	switch GetErrorSeverity(err) {
	case SeverityDebug, SeverityInfo, SeverityWarn:
		return GetErrorCode(err) != ErrorCodeTimeout
	}
	return false
}

// IsRetryable determines if an error should be retried based on its type and severity
func IsRetryable(err error) bool {
	if appErr, ok := err.(*AppError); ok {
		switch appErr.Code {
		case ErrorCodeTimeout, ErrorCodeServiceUnavailable, ErrorCodeDatabaseConnection:
			return appErr.Severity != SeverityFatal
		}
	}
	return false
}

// ToJSON renders the error response body. "error" duplicates "message" for
// clients that only read that key.
func (e *AppError) ToJSON() map[string]interface{} {
	result := map[string]interface{}{
		"code":      string(e.Code),
		"message":   e.Message,
		"severity":  string(e.Severity),
		"error":     e.Message,
		"retryable": IsRetryable(e),
	}
	if e.Details != "" {
		result["details"] = e.Details
	}
	if e.Cause != nil && (e.Severity == SeverityError || e.Severity == SeverityFatal) {
		result["cause"] = e.Cause.Error()
	}
	return result
}
