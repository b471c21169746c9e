// Package pool provides named ants-backed worker pools with statistics
// and lifecycle management.
package pool

import "errors"

var (
	// ErrPoolClosed is returned when submitting to a released pool.
	ErrPoolClosed = errors.New("pool is closed")

	// ErrPoolNotFound is returned when a named pool does not exist.
	ErrPoolNotFound = errors.New("pool not found")

	// ErrPoolAlreadyExists is returned when registering a duplicate name.
	ErrPoolAlreadyExists = errors.New("pool already exists")

	// ErrInvalidPoolConfig is returned for invalid pool configuration.
	ErrInvalidPoolConfig = errors.New("invalid pool config")

	// ErrManagerNotInitialized is returned before InitGlobal is called.
	ErrManagerNotInitialized = errors.New("pool manager not initialized")

	// ErrPoolOverload is returned when a nonblocking pool is full.
	ErrPoolOverload = errors.New("pool overloaded")
)
