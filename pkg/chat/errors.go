package chat

import (
	"errors"
	"fmt"
)

var (
	// ErrTurnInFlight is returned when a turn is submitted while another one
	// is still running for the same session. The guard is enforced here, not
	// left to the caller's UI state.
	ErrTurnInFlight = errors.New("a chat turn is already in flight")

	// ErrEmptyMessage is returned when the text is blank and no files are
	// attached.
	ErrEmptyMessage = errors.New("message is empty and no files are attached")

	// ErrCatalogNotLoaded is returned when the model catalog has not loaded.
	ErrCatalogNotLoaded = errors.New("model catalog not loaded")

	// ErrTurnCancelled is returned when a turn is aborted mid-reveal.
	ErrTurnCancelled = errors.New("chat turn cancelled")
)

// ValidationError maps a backend 400. Only the first detail is shown to the
// user.
type ValidationError struct {
	Message string
	Details []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s", e.FirstDetail())
}

func (e *ValidationError) FirstDetail() string {
	if len(e.Details) > 0 {
		return e.Details[0]
	}
	if e.Message != "" {
		return e.Message
	}
	return "invalid request"
}

// QuotaError maps a backend 429.
type QuotaError struct {
	Message string
}

func (e *QuotaError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "usage quota exhausted"
}

// AuthError maps a backend 401.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "API key not configured"
}

// HTTPError covers every other non-2xx status.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("chat backend returned status %d: %s", e.Status, e.Message)
}

// NetworkError marks transport-level failures, distinguished from HTTP-level
// errors in the user-facing toast.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network failure: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
