package llm

import "errors"

// ErrorCode aligns provider failures with HTTP status and retryability so the
// workflow can decide between "absorb into the output slot" and "abort".
type ErrorCode string

const (
	ErrInvalidRequest  ErrorCode = "LLM_INVALID_REQUEST"  // malformed request
	ErrUnauthorized    ErrorCode = "LLM_UNAUTHORIZED"     // missing or revoked key
	ErrRateLimited     ErrorCode = "LLM_RATE_LIMITED"     // upstream throttling
	ErrQuotaExceeded   ErrorCode = "LLM_QUOTA_EXCEEDED"   // token/spend budget exhausted
	ErrContentFiltered ErrorCode = "LLM_CONTENT_FILTERED" // safety policy rejection
	ErrEmptyResponse   ErrorCode = "LLM_EMPTY_RESPONSE"   // transport succeeded, no content
	ErrUpstreamTimeout ErrorCode = "LLM_UPSTREAM_TIMEOUT" // upstream timed out
	ErrUpstreamError   ErrorCode = "LLM_UPSTREAM_ERROR"   // upstream 5xx / network error
)

// Error is a typed provider failure.
type Error struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	HTTPStatus int       `json:"http_status,omitempty"`
	Retryable  bool      `json:"retryable"`
	Provider   string    `json:"provider,omitempty"`
}

func (e *Error) Error() string { return e.Message }

// CodeOf extracts the ErrorCode from err, or "" when err is not an llm.Error.
func CodeOf(err error) ErrorCode {
	var le *Error
	if errors.As(err, &le) {
		return le.Code
	}
	return ""
}

// IsQuotaRelated reports whether err signals quota or rate-limit exhaustion.
func IsQuotaRelated(err error) bool {
	switch CodeOf(err) {
	case ErrQuotaExceeded, ErrRateLimited:
		return true
	}
	return false
}

// IsEmptyResponse reports whether err signals a successful transport that
// produced no usable content. Callers treat this distinctly from transport
// failures.
func IsEmptyResponse(err error) bool {
	return CodeOf(err) == ErrEmptyResponse
}
