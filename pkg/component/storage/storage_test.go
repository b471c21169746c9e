package storage

import (
	"context"
	"errors"
	"testing"
	"time"
)

// MockClient is a test implementation of the Client interface.
type MockClient struct {
	name    string
	healthy bool
	closes  int
}

func (m *MockClient) Name() string {
	return m.name
}

func (m *MockClient) Ping(ctx context.Context) error {
	if !m.healthy {
		return context.DeadlineExceeded
	}
	return nil
}

func (m *MockClient) Close() error {
	m.closes++
	return nil
}

func (m *MockClient) Health() HealthChecker {
	return func() error {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		return m.Ping(ctx)
	}
}

// Compile-time check that MockClient implements Client.
var _ Client = (*MockClient)(nil)

func TestHealthChecker_Healthy(t *testing.T) {
	client := &MockClient{name: "test", healthy: true}
	checker := client.Health()

	if err := checker(); err != nil {
		t.Errorf("expected healthy client to return nil, got %v", err)
	}
}

func TestHealthChecker_Unhealthy(t *testing.T) {
	client := &MockClient{name: "test", healthy: false}
	checker := client.Health()

	if err := checker(); err == nil {
		t.Error("expected unhealthy client to return error")
	}
}

func TestManager_RegisterAndGet(t *testing.T) {
	mgr := NewManager()
	client := &MockClient{name: "postgres", healthy: true}

	if err := mgr.Register("postgres-primary", client); err != nil {
		t.Fatalf("unexpected register error: %v", err)
	}

	if err := mgr.Register("postgres-primary", client); !errors.Is(err, ErrClientAlreadyExists) {
		t.Errorf("expected ErrClientAlreadyExists, got %v", err)
	}

	got, err := mgr.Get("postgres-primary")
	if err != nil {
		t.Fatalf("unexpected get error: %v", err)
	}
	if got.Name() != "postgres" {
		t.Errorf("expected client name 'postgres', got %s", got.Name())
	}

	if _, err := mgr.Get("missing"); !errors.Is(err, ErrClientNotFound) {
		t.Errorf("expected ErrClientNotFound, got %v", err)
	}
}

func TestManager_RegisterInvalid(t *testing.T) {
	mgr := NewManager()

	if err := mgr.Register("", &MockClient{name: "x"}); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for empty name, got %v", err)
	}
	if err := mgr.Register("x", nil); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for nil client, got %v", err)
	}
}

func TestManager_HealthCheckAll(t *testing.T) {
	mgr := NewManager()
	mgr.MustRegister("primary", &MockClient{name: "postgres", healthy: true})
	mgr.MustRegister("cache", &MockClient{name: "redis", healthy: false})

	statuses := mgr.HealthCheckAll(context.Background())
	if len(statuses) != 2 {
		t.Fatalf("expected 2 statuses, got %d", len(statuses))
	}
	if !statuses["primary"].Healthy {
		t.Error("expected primary to be healthy")
	}
	if statuses["cache"].Healthy {
		t.Error("expected cache to be unhealthy")
	}
	if statuses["cache"].Error == nil {
		t.Error("expected cache status to carry an error")
	}

	if mgr.AllHealthy(context.Background()) {
		t.Error("expected AllHealthy to be false")
	}
}

func TestManager_CloseAll(t *testing.T) {
	mgr := NewManager()
	primary := &MockClient{name: "postgres", healthy: true}
	cache := &MockClient{name: "redis", healthy: true}
	mgr.MustRegister("primary", primary)
	mgr.MustRegister("cache", cache)

	if err := mgr.CloseAll(); err != nil {
		t.Fatalf("unexpected close error: %v", err)
	}
	if primary.closes != 1 || cache.closes != 1 {
		t.Errorf("expected each client closed once, got %d and %d", primary.closes, cache.closes)
	}
	if mgr.Count() != 0 {
		t.Errorf("expected empty manager after CloseAll, got %d", mgr.Count())
	}
}

func TestStorageError_Wrapping(t *testing.T) {
	cause := errors.New("connection refused")
	err := ErrConnectionFailed.WithCause(cause)

	if !errors.Is(err, ErrConnectionFailed) {
		t.Error("expected wrapped error to match ErrConnectionFailed")
	}
	if !errors.Is(err, cause) {
		t.Error("expected wrapped error to unwrap to cause")
	}

	storageErr, ok := GetError(err)
	if !ok {
		t.Fatal("expected GetError to find a StorageError")
	}
	if storageErr.Code != "CONNECTION_FAILED" {
		t.Errorf("expected code CONNECTION_FAILED, got %s", storageErr.Code)
	}
}

// TestFactoryInterface verifies the Factory interface signature.
func TestFactoryInterface(t *testing.T) {
	var _ Factory = (*MockFactory)(nil)
}

// MockFactory is a test implementation of the Factory interface.
type MockFactory struct{}

func (m *MockFactory) Create(ctx context.Context) (Client, error) {
	return &MockClient{name: "mock", healthy: true}, nil
}
