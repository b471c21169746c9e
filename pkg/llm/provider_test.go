package llm

import (
	"context"
	"errors"
	"testing"
)

// mockProvider is a deterministic in-memory provider for tests.
type mockProvider struct {
	name string
	// failures counts down; while positive, Embed returns an error.
	failures int
	calls    int
}

func (m *mockProvider) Name() string {
	return m.name
}

func (m *mockProvider) Embed(_ context.Context, texts []string) ([][]float32, error) {
	m.calls++
	if m.failures > 0 {
		m.failures--
		return nil, errors.New("upstream unavailable")
	}
	result := make([][]float32, len(texts))
	for i := range texts {
		result[i] = []float32{0.1, 0.2, 0.3}
	}
	return result, nil
}

func (m *mockProvider) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := m.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

func TestRegisterAndNewEmbeddingProvider(t *testing.T) {
	RegisterEmbeddingProvider("test-provider", func(config map[string]any) (EmbeddingProvider, error) {
		name := "test-provider"
		if n, ok := config["name"].(string); ok {
			name = n
		}
		return &mockProvider{name: name}, nil
	})

	provider, err := NewEmbeddingProvider("test-provider", map[string]any{"name": "custom-name"})
	if err != nil {
		t.Fatalf("NewEmbeddingProvider failed: %v", err)
	}

	if provider.Name() != "custom-name" {
		t.Errorf("expected name 'custom-name', got '%s'", provider.Name())
	}
}

func TestNewEmbeddingProviderUnknown(t *testing.T) {
	_, err := NewEmbeddingProvider("unknown-provider", nil)
	if err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestListProviders(t *testing.T) {
	RegisterEmbeddingProvider("list-test-provider", func(config map[string]any) (EmbeddingProvider, error) {
		return &mockProvider{name: "list-test-provider"}, nil
	})

	found := false
	for _, name := range ListProviders() {
		if name == "list-test-provider" {
			found = true
		}
	}
	if !found {
		t.Error("registered provider missing from ListProviders")
	}
}
