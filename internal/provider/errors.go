package provider

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// ErrorCode classifies provider-layer failures.
type ErrorCode string

const (
	// CodeAuth means the credential is missing or rejected. Never retried.
	CodeAuth ErrorCode = "auth_error"
	// CodeUnknownModel means no catalog entry or alias matched. Never retried.
	CodeUnknownModel ErrorCode = "unknown_model"
	// CodeRateLimited means the vendor throttled the call. Retried with backoff.
	CodeRateLimited ErrorCode = "rate_limited"
	// CodeUnavailable means a network failure or vendor 5xx. Retried with backoff.
	CodeUnavailable ErrorCode = "provider_unavailable"
	// CodeMalformedResponse means the vendor returned a shape the adapter
	// cannot parse. Never retried.
	CodeMalformedResponse ErrorCode = "malformed_response"
)

// Error is a classified provider failure. RetryAfter carries the vendor's
// retry hint when one was supplied.
type Error struct {
	Code       ErrorCode
	Provider   string
	Message    string
	RetryAfter time.Duration
	Err        error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	return fmt.Sprintf("%s: %s: %s", e.Provider, e.Code, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// AsError extracts a classified provider error, if err carries one.
func AsError(err error) (*Error, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// IsTransient reports whether err is worth retrying. Unclassified errors
// (transport failures surfaced by http clients) count as transient.
func IsTransient(err error) bool {
	pe, ok := AsError(err)
	if !ok {
		return true
	}
	return pe.Code == CodeRateLimited || pe.Code == CodeUnavailable
}

func errAuth(providerName, format string, args ...any) *Error {
	return &Error{Code: CodeAuth, Provider: providerName, Message: fmt.Sprintf(format, args...)}
}

func errMalformed(providerName string, cause error) *Error {
	return &Error{Code: CodeMalformedResponse, Provider: providerName, Err: cause}
}

// classifyHTTPStatus maps a non-2xx vendor status to a provider error.
// 401/403 are credential problems, 429 is throttling with an optional
// Retry-After hint, and 5xx is vendor unavailability.
func classifyHTTPStatus(providerName string, status int, body string, header http.Header) *Error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &Error{Code: CodeAuth, Provider: providerName, Message: body}
	case status == http.StatusTooManyRequests:
		return &Error{
			Code:       CodeRateLimited,
			Provider:   providerName,
			Message:    body,
			RetryAfter: parseRetryAfter(header),
		}
	case status >= 500:
		return &Error{Code: CodeUnavailable, Provider: providerName, Message: fmt.Sprintf("http %d: %s", status, body)}
	default:
		return &Error{Code: CodeMalformedResponse, Provider: providerName, Message: fmt.Sprintf("http %d: %s", status, body)}
	}
}

func parseRetryAfter(header http.Header) time.Duration {
	if header == nil {
		return 0
	}
	raw := header.Get("Retry-After")
	if raw == "" {
		return 0
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return 0
}
