package storage

import (
	"context"
	"time"
)

// Client is the base interface that all storage clients implement.
// It covers connection management, health checking and graceful
// shutdown so backends behave consistently across the service.
type Client interface {
	// Name returns the storage type name for identification purposes,
	// a lowercase identifier like "postgres" or "redis". The name is
	// used for logging and health check reporting.
	Name() string

	// Ping checks if the connection to the storage backend is alive.
	// It performs a lightweight operation to verify connectivity; the
	// context controls timeouts and cancellation.
	Ping(ctx context.Context) error

	// Close closes the connection gracefully, releasing all resources.
	// Close should be idempotent and safe to call multiple times.
	Close() error

	// Health returns a HealthChecker function bound to this client.
	// The returned checker can be handed to health endpoints without
	// exposing the client itself.
	Health() HealthChecker
}

// HealthChecker is a function type that performs a health check on a
// storage backend. It encapsulates the check logic and can be called
// without direct access to the storage client.
type HealthChecker func() error

// HealthStatus represents the result of a health check operation.
type HealthStatus struct {
	// Name identifies the storage instance being checked.
	// This should match the value returned by Client.Name().
	Name string

	// Healthy indicates whether the storage is functioning properly.
	Healthy bool

	// Latency measures how long the health check took to complete.
	// Useful for detecting degradation even when the backend is
	// technically healthy.
	Latency time.Duration

	// Error contains the error details if the health check failed.
	// This is nil when Healthy is true.
	Error error
}

// Factory is an interface for creating storage clients. It
// encapsulates client creation so callers can inject mock
// implementations in tests.
type Factory interface {
	// Create creates and initializes a new storage client. The
	// returned client is connected and ready to use.
	Create(ctx context.Context) (Client, error)
}
