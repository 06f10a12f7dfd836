package device

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound indicates an entity was not found
	ErrNotFound = errors.New("entity not found")

	// ErrNetwork indicates a request to the hub never completed
	ErrNetwork = errors.New("hub unreachable")

	// ErrNotConnected indicates no hub is configured
	ErrNotConnected = errors.New("hub not configured")

	// ErrStale indicates a response was discarded because a newer one was already applied
	ErrStale = errors.New("stale response discarded")

	// ErrValidation indicates a payload failed validation before being sent
	ErrValidation = errors.New("validation error")
)

// RejectionError is returned when the hub answers with a non-2xx status.
type RejectionError struct {
	Status int
	Detail string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("hub rejected request (%d): %s", e.Status, e.Message())
}

// Message returns the hub-provided detail, or a generic message for the status.
func (e *RejectionError) Message() string {
	if e.Detail != "" {
		return e.Detail
	}
	switch e.Status {
	case http.StatusNotFound:
		return "not found on hub"
	case http.StatusConflict:
		return "already exists on hub"
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return "hub rejected the request"
	case http.StatusServiceUnavailable:
		return "hub is not ready"
	default:
		return "hub request failed"
	}
}

// Is lets errors.Is(err, ErrNotFound) match a 404 rejection.
func (e *RejectionError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// UserMessage renders an error as text suitable for a failure notice.
func UserMessage(err error) string {
	var rej *RejectionError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &rej):
		return rej.Message()
	case errors.Is(err, ErrNetwork):
		return "Connection to the hub failed"
	case errors.Is(err, ErrNotConnected):
		return "No hub configured"
	default:
		return err.Error()
	}
}
