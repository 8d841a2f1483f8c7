package kassa

import (
	"errors"
	"fmt"
)

// Sentinel errors for client construction and token handling.
var (
	ErrMissingAccount = errors.New("kassa: account base URL is required")
	ErrMissingAppID   = errors.New("kassa: app id is required")
	ErrMissingSecret  = errors.New("kassa: signing secret is required")
	ErrNoToken        = errors.New("kassa: token missing from issuing response")
)

// ServerError reports a fatal server-side failure (status 500). It is never
// retried; the raw response travels with the error.
type ServerError struct {
	StatusCode int
	Body       []byte
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("kassa: server error (status %d): %s", e.StatusCode, e.Body)
}

// ProtocolError reports a response the client has no handling for: any
// status outside {200, 400, 401, 422, 500}. The raw body and status code
// travel with the error.
type ProtocolError struct {
	StatusCode int
	Body       []byte
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("kassa: unexpected status %d: %s", e.StatusCode, e.Body)
}
