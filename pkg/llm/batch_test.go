package llm

import (
	"context"
	"testing"
	"time"
)

func testBatchConfig(batchSize int) *BatchConfig {
	return &BatchConfig{
		BatchSize:    batchSize,
		MaxRetries:   3,
		RetryBackoff: time.Millisecond,
	}
}

func TestBatchEmbedderEmpty(t *testing.T) {
	b := NewBatchEmbedder(&mockProvider{name: "mock"}, testBatchConfig(2))

	results, err := b.EmbedAll(context.Background(), nil)
	if err != nil {
		t.Fatalf("EmbedAll failed: %v", err)
	}
	if results != nil {
		t.Errorf("expected nil results for empty input, got %v", results)
	}
}

func TestBatchEmbedderSplitsBatches(t *testing.T) {
	provider := &mockProvider{name: "mock"}
	b := NewBatchEmbedder(provider, testBatchConfig(2))

	texts := []string{"a", "b", "c", "d", "e"}
	results, err := b.EmbedAll(context.Background(), texts)
	if err != nil {
		t.Fatalf("EmbedAll failed: %v", err)
	}

	if len(results) != len(texts) {
		t.Fatalf("expected %d results, got %d", len(texts), len(results))
	}
	for i, r := range results {
		if r == nil {
			t.Errorf("result %d is nil", i)
		}
	}
	// 5 texts with batch size 2 is 3 provider calls.
	if provider.calls != 3 {
		t.Errorf("expected 3 provider calls, got %d", provider.calls)
	}
}

func TestBatchEmbedderRetriesTransientFailure(t *testing.T) {
	provider := &mockProvider{name: "mock", failures: 2}
	b := NewBatchEmbedder(provider, testBatchConfig(10))

	results, err := b.EmbedAll(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("EmbedAll failed: %v", err)
	}

	if results[0] == nil || results[1] == nil {
		t.Error("expected embeddings after retries")
	}
	if provider.calls != 3 {
		t.Errorf("expected 3 attempts, got %d", provider.calls)
	}
}

func TestBatchEmbedderFailedBatchYieldsNilSlots(t *testing.T) {
	// First batch exhausts all 3 attempts, second batch succeeds.
	provider := &mockProvider{name: "mock", failures: 3}
	b := NewBatchEmbedder(provider, testBatchConfig(2))

	results, err := b.EmbedAll(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("EmbedAll failed: %v", err)
	}

	if results[0] != nil || results[1] != nil {
		t.Error("expected nil slots for the failed batch")
	}
	if results[2] == nil {
		t.Error("expected the following batch to succeed")
	}
}

func TestBatchEmbedderContextCancellation(t *testing.T) {
	provider := &mockProvider{name: "mock", failures: 10}
	b := NewBatchEmbedder(provider, &BatchConfig{
		BatchSize:    10,
		MaxRetries:   5,
		RetryBackoff: time.Minute,
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := b.EmbedAll(ctx, []string{"a"})
	if err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
