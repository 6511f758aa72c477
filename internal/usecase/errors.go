package usecase

import "errors"

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("resource not found")
	// ErrDependencyUnavailable covers the match backend being unreachable,
	// answering garbage or tripping the circuit breaker.
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	// ErrSessionClosed is returned when a session was detached while an
	// attach was still in flight.
	ErrSessionClosed = errors.New("session closed")
)
