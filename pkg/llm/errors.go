package llm

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrorType classifies generation failures for retry decisions.
type ErrorType int8

const (
	// ErrorTypeRateLimit covers 429s and quota exhaustion. Retryable.
	ErrorTypeRateLimit ErrorType = iota
	// ErrorTypeTransient covers 5xx, timeouts, and connection resets. Retryable.
	ErrorTypeTransient
	// ErrorTypeEmptyResponse covers HTTP 200 with no content. Retryable.
	ErrorTypeEmptyResponse
	// ErrorTypeAuth covers 401/403 and bad API keys. Not retryable.
	ErrorTypeAuth
	// ErrorTypeBadPrompt covers malformed or oversized requests. Not retryable.
	ErrorTypeBadPrompt
	// ErrorTypeUnknown is the default for unclassified failures.
	ErrorTypeUnknown
)

// String returns the label used in logs and metrics.
func (et ErrorType) String() string {
	switch et {
	case ErrorTypeRateLimit:
		return "rate_limit"
	case ErrorTypeTransient:
		return "transient"
	case ErrorTypeEmptyResponse:
		return "empty_response"
	case ErrorTypeAuth:
		return "auth"
	case ErrorTypeBadPrompt:
		return "bad_prompt"
	case ErrorTypeUnknown:
		return "unknown"
	default:
		return "invalid"
	}
}

// RetryPolicy defines exponential backoff for one error type.
type RetryPolicy struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// retryPolicies maps error types to their backoff configuration.
//
//nolint:gochecknoglobals // package defaults
var retryPolicies = map[ErrorType]RetryPolicy{
	ErrorTypeRateLimit:     {MaxRetries: 5, InitialDelay: time.Second, MaxDelay: 60 * time.Second, BackoffFactor: 2.0},
	ErrorTypeTransient:     {MaxRetries: 3, InitialDelay: 500 * time.Millisecond, MaxDelay: 10 * time.Second, BackoffFactor: 2.0},
	ErrorTypeEmptyResponse: {MaxRetries: 2, InitialDelay: 2 * time.Second, MaxDelay: 15 * time.Second, BackoffFactor: 2.0},
	ErrorTypeAuth:          {MaxRetries: 0},
	ErrorTypeBadPrompt:     {MaxRetries: 0},
	ErrorTypeUnknown:       {MaxRetries: 1, InitialDelay: time.Second, MaxDelay: 5 * time.Second, BackoffFactor: 2.0},
}

// Error is a classified generation failure.
type Error struct {
	Err        error
	Message    string
	Type       ErrorType
	StatusCode int
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("generation error (%s): %s", e.Type.String(), e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("generation error (%s): %v", e.Type.String(), e.Err)
	}
	return fmt.Sprintf("generation error (%s): status %d", e.Type.String(), e.StatusCode)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether this error type should be retried.
// Blocklist approach: retryable unless explicitly terminal.
func (e *Error) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeAuth, ErrorTypeBadPrompt:
		return false
	default:
		return true
	}
}

// Policy returns the retry policy for this error's type.
func (e *Error) Policy() RetryPolicy {
	if p, ok := retryPolicies[e.Type]; ok {
		return p
	}
	return retryPolicies[ErrorTypeUnknown]
}

// NewError creates a classified generation error.
func NewError(t ErrorType, message string) *Error {
	return &Error{Type: t, Message: message}
}

// NewErrorWithStatus creates a classified error carrying an HTTP status.
func NewErrorWithStatus(t ErrorType, statusCode int, message string) *Error {
	return &Error{Type: t, StatusCode: statusCode, Message: message}
}

// WrapError creates a classified error wrapping a cause.
func WrapError(t ErrorType, cause error, message string) *Error {
	return &Error{Type: t, Err: cause, Message: message}
}

// TypeOf returns an error's classified type, or ErrorTypeUnknown.
func TypeOf(err error) ErrorType {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Type
	}
	return ErrorTypeUnknown
}

// ClassifyError maps a raw provider error onto the taxonomy using status
// codes when present and message patterns otherwise. Shared by all provider
// implementations.
func ClassifyError(err error) *Error {
	if err == nil {
		return nil
	}
	var ge *Error
	if errors.As(err, &ge) {
		return ge
	}

	s := strings.ToLower(err.Error())

	switch {
	case strings.Contains(s, "401") || strings.Contains(s, "403") ||
		strings.Contains(s, "unauthorized") || strings.Contains(s, "api key"):
		return WrapError(ErrorTypeAuth, err, "authentication failed")
	case strings.Contains(s, "429") || strings.Contains(s, "rate") || strings.Contains(s, "quota"):
		return WrapError(ErrorTypeRateLimit, err, "rate limited")
	case strings.Contains(s, "400") || strings.Contains(s, "invalid") ||
		strings.Contains(s, "malformed") || strings.Contains(s, "too large"):
		return WrapError(ErrorTypeBadPrompt, err, "bad request")
	case strings.Contains(s, "500") || strings.Contains(s, "502") ||
		strings.Contains(s, "503") || strings.Contains(s, "504") ||
		strings.Contains(s, "timeout") || strings.Contains(s, "deadline") ||
		strings.Contains(s, "connection") || strings.Contains(s, "reset") ||
		strings.Contains(s, "eof") || strings.Contains(s, "cancel"):
		return WrapError(ErrorTypeTransient, err, "transient provider failure")
	default:
		return WrapError(ErrorTypeUnknown, err, "unclassified provider failure")
	}
}
