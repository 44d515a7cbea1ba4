// Package errors provides custom error types for the chat completions client.
package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Sentinel errors for common cases
var (
	ErrAuthFailed      = errors.New("authentication failed")
	ErrNoAPIKey        = errors.New("no API key configured")
	ErrInvalidResponse = errors.New("invalid response format")
	ErrRateLimited     = errors.New("rate limited")
)

// AuthError represents an authentication failure
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return "authentication failed: API key may be invalid"
	}
	return fmt.Sprintf("authentication failed: %s", e.Message)
}

// Is allows comparison with sentinel errors
func (e *AuthError) Is(target error) bool {
	if target == ErrAuthFailed {
		return true
	}
	_, ok := target.(*AuthError)
	return ok
}

// NewAuthError creates a new AuthError
func NewAuthError(message string) *AuthError {
	return &AuthError{Message: message}
}

// APIError represents a non-success response from the remote service
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
	// Body holds (a bounded prefix of) the response body for diagnostics.
	Body string
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("API error [%d] at %s: %s", e.StatusCode, e.Endpoint, e.Message)
	}
	return fmt.Sprintf("API error at %s: %s", e.Endpoint, e.Message)
}

// NewAPIError creates a new APIError
func NewAPIError(statusCode int, endpoint, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Message:    message,
	}
}

// NewAPIErrorWithBody creates a new APIError that keeps the response body
func NewAPIErrorWithBody(statusCode int, endpoint, message, body string) *APIError {
	e := NewAPIError(statusCode, endpoint, message)
	e.Body = body
	return e
}

// StatusError wraps an APIError with a more specific classification.
// Unwrap exposes the APIError so status and endpoint stay reachable.
type StatusError struct {
	Kind error
	API  *APIError
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%v: %v", e.Kind, e.API)
}

func (e *StatusError) Unwrap() []error {
	return []error{e.Kind, e.API}
}

// NewStatusError classifies a non-success HTTP status. 401/403 become auth
// errors and 429 a usage-limit error; anything else is a plain APIError.
func NewStatusError(statusCode int, endpoint, message, body string) error {
	apiErr := NewAPIErrorWithBody(statusCode, endpoint, message, body)
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &StatusError{Kind: NewAuthError(message), API: apiErr}
	case http.StatusTooManyRequests:
		return &StatusError{Kind: NewUsageLimitError(message), API: apiErr}
	default:
		return apiErr
	}
}

// NetworkError represents a transport failure talking to the service
type NetworkError struct {
	Operation string
	Endpoint  string
	Err       error
}

func (e *NetworkError) Error() string {
	if e.Endpoint != "" {
		return fmt.Sprintf("network error during %s (%s): %v", e.Operation, e.Endpoint, e.Err)
	}
	return fmt.Sprintf("network error during %s: %v", e.Operation, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// NewNetworkError creates a new NetworkError
func NewNetworkError(operation string, err error) *NetworkError {
	return &NetworkError{Operation: operation, Err: err}
}

// NewNetworkErrorWithEndpoint creates a new NetworkError carrying the endpoint
func NewNetworkErrorWithEndpoint(operation, endpoint string, err error) *NetworkError {
	return &NetworkError{Operation: operation, Endpoint: endpoint, Err: err}
}

// TimeoutError represents a request timeout
type TimeoutError struct {
	Message string
}

func (e *TimeoutError) Error() string {
	if e.Message == "" {
		return "request timed out"
	}
	return fmt.Sprintf("request timed out: %s", e.Message)
}

// NewTimeoutError creates a new TimeoutError
func NewTimeoutError(message string) *TimeoutError {
	return &TimeoutError{Message: message}
}

// UsageLimitError represents a usage limit exceeded error
type UsageLimitError struct {
	Message string
}

func (e *UsageLimitError) Error() string {
	if e.Message == "" {
		return "usage limit exceeded"
	}
	return fmt.Sprintf("usage limit exceeded: %s", e.Message)
}

// Is matches ErrRateLimited
func (e *UsageLimitError) Is(target error) bool {
	return target == ErrRateLimited
}

// NewUsageLimitError creates a new UsageLimitError
func NewUsageLimitError(message string) *UsageLimitError {
	return &UsageLimitError{Message: message}
}

// ParseError represents a response parsing error
type ParseError struct {
	Message string
	Path    string
}

func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("parse error at %s: %s", e.Path, e.Message)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

// NewParseError creates a new ParseError
func NewParseError(message, path string) *ParseError {
	return &ParseError{Message: message, Path: path}
}

// Is allows comparison with sentinel errors
func (e *ParseError) Is(target error) bool {
	if target == ErrInvalidResponse {
		return true
	}
	_, ok := target.(*ParseError)
	return ok
}

// FromTransport converts an error returned by the HTTP client into a
// TimeoutError or NetworkError. Context cancellation is returned unchanged.
func FromTransport(operation, endpoint string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return NewTimeoutError(operation)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return NewTimeoutError(operation)
	}
	return NewNetworkErrorWithEndpoint(operation, endpoint, err)
}

// GetHTTPStatus returns the HTTP status carried by err, or 0
func GetHTTPStatus(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// GetEndpoint returns the endpoint carried by err, or ""
func GetEndpoint(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Endpoint
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return netErr.Endpoint
	}
	return ""
}

// GetResponseBody returns the response body carried by err, or ""
func GetResponseBody(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Body
	}
	return ""
}

// IsAuthError reports whether err is an authentication failure
func IsAuthError(err error) bool {
	return errors.Is(err, ErrAuthFailed) || errors.Is(err, ErrNoAPIKey)
}

// IsRateLimitError reports whether err is a usage-limit failure
func IsRateLimitError(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsNetworkError reports whether err is a transport failure
func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// IsTimeoutError reports whether err is a timeout
func IsTimeoutError(err error) bool {
	var timeoutErr *TimeoutError
	return errors.As(err, &timeoutErr)
}

// IsParseError reports whether err is a decoding failure
func IsParseError(err error) bool {
	return errors.Is(err, ErrInvalidResponse)
}

// Hint suggests a fix for common failures, or returns ""
func Hint(err error) string {
	switch {
	case IsAuthError(err):
		return "check GROQ_API_KEY or run 'zaril config set api_key <key>'"
	case IsRateLimitError(err):
		return "rate limit reached, wait a moment or switch model with --model"
	case IsTimeoutError(err):
		return "the request timed out, raise request_timeout_seconds or try again"
	case IsNetworkError(err):
		return "check your internet connection and base_url"
	case IsParseError(err):
		return "the service sent an unexpected response"
	default:
		return ""
	}
}
