package phantom

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// Sentinel errors for common failure modes.
var (
	ErrNoAuthToken = errors.New("phantom: no auth token configured")
	ErrNoBaseURL   = errors.New("phantom: no server address configured")

	// ErrNoHistory is returned when an operation defaults to the most recently
	// created resource and the client has not created one yet.
	ErrNoHistory = errors.New("phantom: no identifier recorded in history")

	// ErrUnrecognizedStatus matches every *UnrecognizedStatusError.
	ErrUnrecognizedStatus = errors.New("phantom: unrecognized status")

	// ErrTimedOut is returned by PollResult.Err when polling ran out of attempts.
	ErrTimedOut = errors.New("phantom: polling timed out")
)

// APIError represents a general Phantom API error.
type APIError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"message"`
	Body       string `json:"-"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("phantom: API error %d: %s", e.StatusCode, e.Message)
}

// AuthenticationError indicates authentication failure (401/403).
type AuthenticationError struct {
	APIError
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("phantom: authentication failed: %s", e.Message)
}

// As implements error unwrapping for errors.As to match *APIError.
func (e *AuthenticationError) As(target any) bool {
	if t, ok := target.(**APIError); ok {
		*t = &e.APIError
		return true
	}
	return false
}

// NotFoundError indicates the requested resource was not found (404).
type NotFoundError struct {
	APIError
	ResourceType string
	ResourceID   string
}

func (e *NotFoundError) Error() string {
	if e.ResourceType != "" && e.ResourceID != "" {
		return fmt.Sprintf("phantom: %s not found: %s", e.ResourceType, e.ResourceID)
	}
	return fmt.Sprintf("phantom: resource not found: %s", e.Message)
}

// As implements error unwrapping for errors.As to match *APIError.
func (e *NotFoundError) As(target any) bool {
	if t, ok := target.(**APIError); ok {
		*t = &e.APIError
		return true
	}
	return false
}

// ValidationError indicates invalid request data, either rejected by the
// server (400) or caught before a request was made.
type ValidationError struct {
	APIError
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("phantom: validation error: %s", e.Message)
}

// As implements error unwrapping for errors.As to match *APIError.
func (e *ValidationError) As(target any) bool {
	if t, ok := target.(**APIError); ok {
		*t = &e.APIError
		return true
	}
	return false
}

// RateLimitError indicates the API rate limit was exceeded (429).
type RateLimitError struct {
	APIError
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("phantom: rate limit exceeded, retry after %s", e.RetryAfter)
	}
	return "phantom: rate limit exceeded"
}

// As implements error unwrapping for errors.As to match *APIError.
func (e *RateLimitError) As(target any) bool {
	if t, ok := target.(**APIError); ok {
		*t = &e.APIError
		return true
	}
	return false
}

// ServerError indicates an internal server error (5xx).
type ServerError struct {
	APIError
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("phantom: server error %d: %s", e.StatusCode, e.Message)
}

// As implements error unwrapping for errors.As to match *APIError.
func (e *ServerError) As(target any) bool {
	if t, ok := target.(**APIError); ok {
		*t = &e.APIError
		return true
	}
	return false
}

// ErrorKind classifies platform errors by the resource they concern.
type ErrorKind int

const (
	KindPlatform ErrorKind = iota
	KindContainer
	KindArtifact
	KindPlaybook
	KindAction
)

func (k ErrorKind) String() string {
	switch k {
	case KindContainer:
		return "container"
	case KindArtifact:
		return "artifact"
	case KindPlaybook:
		return "playbook"
	case KindAction:
		return "action"
	default:
		return "platform"
	}
}

// PlatformError reports a request that succeeded at the HTTP level but did not
// produce what was asked for, typically a create or run call that returned no
// identifier. Response holds the payload the server sent back.
type PlatformError struct {
	Kind     ErrorKind
	Message  string
	Response Payload
	Err      error
}

func (e *PlatformError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("phantom: %s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("phantom: %s: %s", e.Kind, e.Message)
}

func (e *PlatformError) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a *PlatformError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var pe *PlatformError
	return errors.As(err, &pe) && pe.Kind == kind
}

// UnrecognizedStatusError is returned when a polled resource reports a status
// outside both the terminal and in-progress sets.
type UnrecognizedStatusError struct {
	Resource string
	Status   string
	Payload  Payload
}

func (e *UnrecognizedStatusError) Error() string {
	if e.Status == "" {
		return fmt.Sprintf("phantom: unrecognized status from %s: no status, success or count field", e.Resource)
	}
	return fmt.Sprintf("phantom: unrecognized status from %s: %q", e.Resource, e.Status)
}

// Is makes errors.Is(err, ErrUnrecognizedStatus) match.
func (e *UnrecognizedStatusError) Is(target error) bool {
	return target == ErrUnrecognizedStatus
}

// parseError converts an HTTP response into the appropriate error type.
func parseError(statusCode int, body []byte, headers http.Header) error {
	base := APIError{
		StatusCode: statusCode,
		Body:       string(body),
	}

	// Phantom reports failures as {"failed": true, "message": "..."}
	if err := json.Unmarshal(body, &base); err != nil || base.Message == "" {
		base.Message = string(body)
	}

	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return &AuthenticationError{APIError: base}
	case statusCode == http.StatusNotFound:
		return &NotFoundError{APIError: base}
	case statusCode == http.StatusBadRequest:
		return &ValidationError{APIError: base}
	case statusCode == http.StatusTooManyRequests:
		return &RateLimitError{
			APIError:   base,
			RetryAfter: parseRetryAfter(headers.Get("Retry-After")),
		}
	case statusCode >= http.StatusInternalServerError:
		return &ServerError{APIError: base}
	default:
		return &base
	}
}

// parseRetryAfter parses the Retry-After header value.
// It handles both seconds (integer) and HTTP-date formats.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}

	if seconds, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.Duration(seconds) * time.Second
	}

	if t, err := time.Parse(time.RFC1123, value); err == nil {
		duration := time.Until(t)
		if duration > 0 {
			return duration
		}
	}

	return 0
}

func validationError(msg string) error {
	return &ValidationError{APIError: APIError{Message: msg}}
}
