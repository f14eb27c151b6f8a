package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidTimeFormat    ErrorCode = 102
	ErrCodeInvariantViolation   ErrorCode = 103
	ErrCodeInvalidMarket        ErrorCode = 104
	ErrCodeInvalidInterval      ErrorCode = 105

	// Remote errors (200-299)
	ErrCodeRemoteUnavailable ErrorCode = 200
	ErrCodeFetchFailed       ErrorCode = 201
	ErrCodeMalformedResponse ErrorCode = 202

	// Storage errors (300-399)
	ErrCodeWriteFailed      ErrorCode = 300
	ErrCodeOutputDirMissing ErrorCode = 301

	// Orchestration errors (400-499)
	ErrCodeRetriesExhausted ErrorCode = 400
)
