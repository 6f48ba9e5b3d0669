package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNoCredentials   = errors.New("no credentials loaded")
	ErrNoPingEndpoints = errors.New("no ping endpoints configured")
)

// InvalidResponseError is returned for bodies that are not JSON or carry a
// missing or negative "code".
type InvalidResponseError struct {
	Endpoint string
	Reason   string
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("invalid response from %s: %s", e.Endpoint, e.Reason)
}

// AuthOrBlockError means the token or egress IP was refused (HTTP 403).
type AuthOrBlockError struct {
	Endpoint   string
	StatusCode int
}

func (e *AuthOrBlockError) Error() string {
	return fmt.Sprintf("auth or block from %s: status %d", e.Endpoint, e.StatusCode)
}

// RateLimitError carries the minimum pause before the next call (HTTP 429).
type RateLimitError struct {
	Endpoint   string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited by %s: retry after %s", e.Endpoint, e.RetryAfter)
}

type TransientError struct {
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *TransientError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("transient failure from %s: status %d", e.Endpoint, e.StatusCode)
	}

	return fmt.Sprintf("transient failure from %s: %v", e.Endpoint, e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

type ResolveError struct {
	Err error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("resolve session: %v", e.Err)
}

func (e *ResolveError) Unwrap() error {
	return e.Err
}

// IsAuthOrBlock reports whether err is, or wraps, an AuthOrBlockError.
func IsAuthOrBlock(err error) bool {
	var authErr *AuthOrBlockError
	return errors.As(err, &authErr)
}

// RejectedError is a well-formed response whose code is not zero or which
// carries no data payload.
type RejectedError struct {
	Endpoint string
	Code     int
	Message  string
}

func (e *RejectedError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("rejected by %s: code %d: %s", e.Endpoint, e.Code, e.Message)
	}

	return fmt.Sprintf("rejected by %s: code %d", e.Endpoint, e.Code)
}
