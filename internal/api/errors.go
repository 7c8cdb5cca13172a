package api

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a tool failure so the caller (and, transitively, the
// model composing the final answer) can react to the specific cause instead
// of a generic failure string.
type ErrorKind string

const (
	// ErrInvalidArguments means the caller supplied arguments that failed
	// schema validation. Never retried; no network call is made.
	ErrInvalidArguments ErrorKind = "invalid_arguments"

	// ErrNetwork covers timeouts, connection resets, and provider 5xx
	// responses. Transient; retried by the HTTP adapter per policy.
	ErrNetwork ErrorKind = "network_error"

	// ErrRateLimited is a provider 429. Retried with backoff, honoring any
	// Retry-After hint the provider supplies.
	ErrRateLimited ErrorKind = "rate_limited"

	// ErrProvider is a non-retryable provider rejection (4xx other than 429)
	// or an empty/unusable but well-formed provider response.
	ErrProvider ErrorKind = "provider_error"

	// ErrSchemaMismatch means a provider payload is missing required fields
	// or carries unexpected types. The normalizer surfaces this instead of
	// guessing or defaulting values.
	ErrSchemaMismatch ErrorKind = "schema_mismatch"

	// ErrDependencyResolution means geocoding failed while resolving a
	// chained call; the originating sub-error is attached as Cause.
	ErrDependencyResolution ErrorKind = "dependency_resolution_failed"
)

// ToolError is the structured failure every layer returns instead of letting
// a raw error escape its boundary. It is serialized verbatim into the
// ToolResult handed back to the caller.
type ToolError struct {
	Kind      ErrorKind  `json:"kind"`
	Message   string     `json:"message"`
	Retryable bool       `json:"retryable"`
	Cause     *ToolError `json:"cause,omitempty"`
}

func (e *ToolError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Message, e.Cause.Error())
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *ToolError) Unwrap() error {
	if e.Cause == nil {
		return nil
	}
	return e.Cause
}

// NewToolError builds a ToolError with the given classification.
func NewToolError(kind ErrorKind, message string, retryable bool) *ToolError {
	return &ToolError{Kind: kind, Message: message, Retryable: retryable}
}

// Errorf is NewToolError with printf-style message construction.
func Errorf(kind ErrorKind, retryable bool, format string, args ...any) *ToolError {
	return &ToolError{Kind: kind, Message: fmt.Sprintf(format, args...), Retryable: retryable}
}

// AsToolError unwraps err into a *ToolError, or returns nil when err carries
// no structured classification.
func AsToolError(err error) *ToolError {
	var terr *ToolError
	if errors.As(err, &terr) {
		return terr
	}
	return nil
}
