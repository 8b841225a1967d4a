package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"

	// Resource and record errors
	ErrNotFound  ErrorCode = "NOT_FOUND"
	ErrMalformed ErrorCode = "MALFORMED"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// Deployment errors
	ErrCrossVolumeLink ErrorCode = "CROSS_VOLUME_LINK"
	ErrIOFailure       ErrorCode = "IO_FAILURE"
	ErrStaleCheckpoint ErrorCode = "STALE_CHECKPOINT"

	// Mod errors
	ErrModNotFound ErrorCode = "MOD_NOT_FOUND"
	ErrModInvalid  ErrorCode = "MOD_INVALID"
)

// UKError represents a structured error with code and details
type UKError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *UKError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *UKError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *UKError) Is(target error) bool {
	var targetErr *UKError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new UKError with the given code and message
func New(code ErrorCode, message string) *UKError {
	return &UKError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new UKError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *UKError {
	return &UKError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a UKError
func Wrap(err error, code ErrorCode, message string) *UKError {
	if err == nil {
		return nil
	}
	return &UKError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *UKError {
	if err == nil {
		return nil
	}
	return &UKError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *UKError) WithDetail(key string, value interface{}) *UKError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var ukErr *UKError
	if errors.As(err, &ukErr) {
		return ukErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a UKError
func GetErrorCode(err error) ErrorCode {
	var ukErr *UKError
	if errors.As(err, &ukErr) {
		return ukErr.Code
	}
	return ErrUnknown
}
