// Package errors provides structured error handling with typed error codes.
//
// Error codes are organized into categories:
//   - General errors (1-99): Unknown and general errors
//   - Validation errors (100-199): Bad user input, bad configuration, violated request invariants
//   - Remote errors (200-299): Transport failures and responses that do not match the expected schema
//   - Storage errors (300-399): Output directory and file write failures
//   - Orchestration errors (400-499): Symbols abandoned after exhausting their attempts
//
// Usage:
//
//	// Create a new error
//	err := errors.New(errors.ErrCodeInvalidParameter, "symbol is required")
//
//	// Wrap an existing error
//	err := errors.Wrapf(errors.ErrCodeFetchFailed, cause, "failed to fetch klines for %s", symbol)
//
//	// Check error code
//	if errors.HasCode(err, errors.ErrCodeMalformedResponse) { ... }
package errors

import (
	"errors"
	"fmt"
)

// Error represents a structured error with an error code and message.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// New creates a new Error with the given code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   nil,
	}
}

// Newf creates a new Error with the given code and formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   nil,
	}
}

// Wrap wraps an existing error with a new Error containing the given code and message.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf wraps an existing error with a new Error containing the given code and formatted message.
func Wrapf(code ErrorCode, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}

	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// GetCode extracts the ErrorCode from an error if it's an *Error type.
// Returns ErrCodeUnknown if the error is not an *Error type.
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	return ErrCodeUnknown
}

// HasCode checks if an error has a specific ErrorCode.
func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// IsRetryable reports whether another attempt at the same request may succeed.
// Transport failures and undecodable responses are retryable; input and invariant
// errors are not.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	switch GetCode(err) {
	case ErrCodeFetchFailed, ErrCodeRemoteUnavailable, ErrCodeMalformedResponse:
		return true
	default:
		return false
	}
}

// SymbolFailure records why a single symbol was abandoned.
type SymbolFailure struct {
	Symbol   string
	Attempts int
	Err      error
}

// RetriesExhaustedError is returned when one or more symbols failed every attempt.
type RetriesExhaustedError struct {
	Failures []SymbolFailure
}

// NewRetriesExhaustedError creates a RetriesExhaustedError for the given failures.
func NewRetriesExhaustedError(failures []SymbolFailure) *RetriesExhaustedError {
	return &RetriesExhaustedError{Failures: failures}
}

// Error implements the error interface.
func (e *RetriesExhaustedError) Error() string {
	symbols := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		symbols = append(symbols, f.Symbol)
	}

	return fmt.Sprintf("[%d] %d symbol(s) failed after retries: %v", ErrCodeRetriesExhausted, len(e.Failures), symbols)
}

// Unwrap exposes the per-symbol causes to errors.Is and errors.As.
func (e *RetriesExhaustedError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}

	return errs
}

// IsRetriesExhaustedError checks if an error is a RetriesExhaustedError.
func IsRetriesExhaustedError(err error) bool {
	var exhausted *RetriesExhaustedError

	return errors.As(err, &exhausted)
}
