package client

import (
	"errors"
	"fmt"
)

var (
	// ErrNoResults is returned when a geocoding search matches nothing.
	ErrNoResults = errors.New("no results")
	// ErrInvalidAttempts is returned by Execute when MaxAttempts <= 0.
	ErrInvalidAttempts = errors.New("retry policy needs at least one attempt")
)

// NetworkError covers connectivity failures, non-2xx responses and an open
// circuit breaker.
type NetworkError struct {
	Op         string
	URL        string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: HTTP %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// DecodeError is a malformed or structurally incomplete payload.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: decode: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
