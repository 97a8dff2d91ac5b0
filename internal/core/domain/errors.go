package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrValidation indicates user input was rejected before any remote write.
	ErrValidation = errors.New("validation failed")

	// ErrNetwork indicates a remote request failed (non-2xx status or transport error).
	ErrNetwork = errors.New("network failure")

	// ErrUnknownResource indicates a cache key names no registered resource.
	ErrUnknownResource = errors.New("unknown resource")

	// ErrSessionClosed indicates the query cache has been torn down.
	ErrSessionClosed = errors.New("session closed")

	// ErrActionPending indicates the same action is already running for the email.
	ErrActionPending = errors.New("action already pending")

	// ErrNoResponse indicates the email has no current response to act on.
	ErrNoResponse = errors.New("no response generated")

	// ErrAlreadySent indicates the current response has already been sent.
	ErrAlreadySent = errors.New("response already sent")

	// ErrSurfaceBusy indicates a rendering surface already holds a live handle.
	ErrSurfaceBusy = errors.New("surface already holds a live handle")
)

// RequestError describes a failed call to the remote API.
// StatusCode is zero for transport errors and timeouts.
type RequestError struct {
	Method     string
	Resource   string
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode == 0 {
		if e.Err != nil {
			return fmt.Sprintf("%s %s: %v", e.Method, e.Resource, e.Err)
		}
		return fmt.Sprintf("%s %s: request failed", e.Method, e.Resource)
	}
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.Resource, e.StatusCode)
}

// Unwrap exposes both ErrNetwork and the underlying cause to errors.Is.
func (e *RequestError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrNetwork}
	}
	return []error{ErrNetwork, e.Err}
}

// IsNotFound checks if the error is a 404 from the remote API or ErrNotFound.
func IsNotFound(err error) bool {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.StatusCode == 404
	}
	return errors.Is(err, ErrNotFound)
}
