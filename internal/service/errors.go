package service

import "errors"

var (
	// ErrInvalidID is returned when a required entity ID is empty.
	ErrInvalidID = errors.New("invalid id")

	// ErrLockTimeout is returned when a vehicle or driver lock could not be
	// acquired before the deadline.
	ErrLockTimeout = errors.New("timed out waiting for resource lock")

	// ErrConcurrentUpdate is returned when a trip was reassigned while its
	// locks were being acquired, more times than the service retries.
	ErrConcurrentUpdate = errors.New("trip was modified concurrently")
)
