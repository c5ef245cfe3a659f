package apperrors

// ErrorCode identifies an error class independent of transport.
type ErrorCode string

const (
	// System errors
	CodeInternalError       ErrorCode = "INTERNAL_ERROR"
	CodeTransientStoreError ErrorCode = "TRANSIENT_STORE_ERROR"
	CodeCacheError          ErrorCode = "CACHE_ERROR"

	// Business logic errors
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeConflict         ErrorCode = "CONFLICT"
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	CodeInvalidOperation ErrorCode = "INVALID_OPERATION"
	CodeWindowExpired    ErrorCode = "WINDOW_EXPIRED"

	// Authentication and authorization
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"
	CodeForbidden    ErrorCode = "FORBIDDEN"
	CodeInvalidToken ErrorCode = "INVALID_TOKEN"
	CodeTokenExpired ErrorCode = "TOKEN_EXPIRED"
)
