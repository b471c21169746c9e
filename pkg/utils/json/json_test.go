package json

import (
	"bytes"
	"runtime"
	"sync"
	"testing"
)

type document struct {
	ID       string            `json:"id"`
	Filename string            `json:"filename"`
	Status   string            `json:"status"`
	Chunks   int               `json:"chunks"`
	Labels   map[string]string `json:"labels,omitempty"`
}

func sampleDocument() document {
	return document{
		ID:       "01HQ3F8Z9VXK4M2P6R8T0W2Y4A",
		Filename: "q3-report.txt",
		Status:   "completed",
		Chunks:   42,
		Labels:   map[string]string{"type": "income_statement"},
	}
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	in := sampleDocument()

	data, err := Marshal(in)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var out document
	if err := Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if out.ID != in.ID || out.Filename != in.Filename || out.Chunks != in.Chunks {
		t.Errorf("round trip mismatch: got %+v, want %+v", out, in)
	}
	if out.Labels["type"] != "income_statement" {
		t.Errorf("expected label to survive round trip, got %v", out.Labels)
	}
}

func TestUnmarshalInvalidInput(t *testing.T) {
	var out document
	if err := Unmarshal([]byte("{not json"), &out); err == nil {
		t.Error("expected error for malformed input")
	}
}

func TestEncoderDecoder(t *testing.T) {
	in := sampleDocument()

	var buf bytes.Buffer
	if err := NewEncoder(&buf).Encode(in); err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	var out document
	if err := NewDecoder(&buf).Decode(&out); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if out.ID != in.ID {
		t.Errorf("expected ID %s, got %s", in.ID, out.ID)
	}
}

func TestIsUsingSonic(t *testing.T) {
	want := runtime.GOARCH == "amd64" || runtime.GOARCH == "arm64"
	if IsUsingSonic() != want {
		t.Errorf("expected IsUsingSonic=%v on %s", want, runtime.GOARCH)
	}
}

func TestConcurrentMarshalUnmarshal(t *testing.T) {
	in := sampleDocument()
	data, err := Marshal(in)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var wg sync.WaitGroup
	errCh := make(chan error, 32)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if _, err := Marshal(in); err != nil {
					errCh <- err
					return
				}
				var out document
				if err := Unmarshal(data, &out); err != nil {
					errCh <- err
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errCh)

	for err := range errCh {
		t.Errorf("concurrent use failed: %v", err)
	}
}
