package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrProviderUnavailable matches every provider failure: network, protocol, rate limit.
var ErrProviderUnavailable = errors.New("provider unavailable")

// ErrorCode classifies a provider failure.
type ErrorCode string

const (
	ErrorCodeContextLength  ErrorCode = "context_length_exceeded"
	ErrorCodeContentBlocked ErrorCode = "content_blocked"
	ErrorCodeRateLimit      ErrorCode = "rate_limit"
	ErrorCodeAuth           ErrorCode = "authentication_failed"
	ErrorCodeNetwork        ErrorCode = "network_error"
	ErrorCodeUnavailable    ErrorCode = "service_unavailable"
	ErrorCodeInvalidRequest ErrorCode = "invalid_request"
	ErrorCodeMalformed      ErrorCode = "malformed_response"
	ErrorCodeConfig         ErrorCode = "configuration"
)

// ProviderError wraps errors with additional context.
type ProviderError struct {
	Code       ErrorCode
	Message    string
	Underlying error
	Retryable  bool
	RetryAfter *time.Duration
}

func (e *ProviderError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Underlying
}

// Is makes every ProviderError match ErrProviderUnavailable.
func (e *ProviderError) Is(target error) bool {
	return target == ErrProviderUnavailable
}

// IsRetryable reports whether err is a ProviderError worth sending again.
func IsRetryable(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Retryable
}

// Normalize converts any backend failure into a *ProviderError.
// Context cancellation and deadline errors pass through untouched.
func Normalize(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return err
	}
	return &ProviderError{
		Code:       ErrorCodeNetwork,
		Message:    "request failed",
		Underlying: err,
		Retryable:  true,
	}
}

// FromStatus maps an HTTP status returned by a backend to a ProviderError.
func FromStatus(status int, message string, err error) *ProviderError {
	pe := &ProviderError{Underlying: err}
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		pe.Code, pe.Message = ErrorCodeAuth, "authentication failed"
	case status == http.StatusTooManyRequests:
		pe.Code, pe.Message, pe.Retryable = ErrorCodeRateLimit, "rate limit exceeded", true
	case status == http.StatusBadRequest || status == http.StatusNotFound || status == http.StatusUnprocessableEntity:
		pe.Code, pe.Message = ErrorCodeInvalidRequest, "invalid request: "+message
	case status >= http.StatusInternalServerError:
		pe.Code, pe.Message, pe.Retryable = ErrorCodeUnavailable, "service unavailable", true
	default:
		pe.Code, pe.Message, pe.Retryable = ErrorCodeNetwork, "API error: "+message, true
	}
	return pe
}
