package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

func newTestTracer(t testing.TB) trace.Tracer {
	t.Helper()
	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return tp.Tracer("httpclient-test")
}

// W3C traceparent: version-trace_id-parent_id-trace_flags.
const traceparentMinLen = 55

func TestInjectTraceContext(t *testing.T) {
	tracer := newTestTracer(t)
	client := NewClient(10*time.Second, 0)

	t.Run("active span sets traceparent", func(t *testing.T) {
		ctx, span := tracer.Start(context.Background(), "embed-batch")
		defer span.End()

		req := httptest.NewRequest(http.MethodPost, "http://embeddings.local/v1/embeddings", nil)
		req = req.WithContext(ctx)
		client.injectTraceContext(req)

		tp := req.Header.Get("traceparent")
		if tp == "" {
			t.Fatal("traceparent header not set")
		}
		if len(tp) < traceparentMinLen {
			t.Errorf("malformed traceparent: %q", tp)
		}
	})

	t.Run("no span leaves headers untouched", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "http://embeddings.local/healthz", nil)
		client.injectTraceContext(req)
		if tp := req.Header.Get("traceparent"); tp != "" {
			t.Errorf("unexpected traceparent: %q", tp)
		}
	})

	t.Run("nil request is a no-op", func(t *testing.T) {
		defer func() {
			if r := recover(); r != nil {
				t.Errorf("panicked on nil request: %v", r)
			}
		}()
		client.injectTraceContext(nil)
	})
}

func TestDoRequest_PropagatesTraceAcrossRetries(t *testing.T) {
	tracer := newTestTracer(t)

	var traceparents []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceparents = append(traceparents, r.Header.Get("traceparent"))
		if len(traceparents) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(10*time.Second, 2)

	ctx, span := tracer.Start(context.Background(), "embed-batch")
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}

	resp, err := client.DoRequest(req)
	if err != nil {
		t.Fatalf("DoRequest: %v", err)
	}
	_ = resp.Body.Close()

	if len(traceparents) != 2 {
		t.Fatalf("expected 2 attempts, server saw %d", len(traceparents))
	}
	for i, tp := range traceparents {
		if tp == "" {
			t.Errorf("attempt %d arrived without traceparent", i+1)
		} else if len(tp) < traceparentMinLen {
			t.Errorf("attempt %d malformed traceparent: %q", i+1, tp)
		}
	}
}
