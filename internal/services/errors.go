package services

import (
	"errors"
	"fmt"
)

// ErrInvalidHour is returned when a local hour outside 0..23 is requested.
var ErrInvalidHour = errors.New("local hour out of range")

// ResolveError means geocoding produced no usable coordinates.
type ResolveError struct {
	Name string
	Err  error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("resolving location %q: %v", e.Name, e.Err)
}

func (e *ResolveError) Unwrap() error { return e.Err }

// FetchError wraps the last network or decode failure of a forecast fetch.
type FetchError struct {
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching forecast after %d attempt(s): %v", e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
