package biz

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncRunnerSubmit(t *testing.T) {
	r := NewSyncRunner()

	ran := false
	require.NoError(t, r.Submit(context.Background(), func() { ran = true }))
	assert.True(t, ran)
}

func TestSyncRunnerSubmitCancelled(t *testing.T) {
	r := NewSyncRunner()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.Submit(ctx, func() { t.Fatal("job ran despite cancelled context") })
	require.ErrorIs(t, err, context.Canceled)
}

func TestSyncRunnerSchedule(t *testing.T) {
	r := NewSyncRunner()

	done := make(chan struct{})
	r.Schedule(5*time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduled job did not run")
	}
}

func TestPoolRunnerFallback(t *testing.T) {
	// No global pools initialized: Submit must fall back to a goroutine
	// instead of dropping the job.
	r := NewPoolRunner()

	var ran atomic.Bool
	done := make(chan struct{})
	require.NoError(t, r.Submit(context.Background(), func() {
		ran.Store(true)
		close(done)
	}))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("job did not run")
	}
	assert.True(t, ran.Load())
}
