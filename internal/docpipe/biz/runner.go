package biz

import (
	"context"
	"time"

	"github.com/kart-io/logger"

	"github.com/kart-io/docpipe/pkg/infra/pool"
)

// JobRunner dispatches processing jobs. Implementations decide whether
// jobs run asynchronously or inline; the orchestrator only sees Submit
// and Schedule.
type JobRunner interface {
	// Submit runs the job as soon as capacity allows.
	Submit(ctx context.Context, job func()) error
	// Schedule runs the job after the given delay.
	Schedule(delay time.Duration, job func())
}

// PoolRunner submits jobs to the processing worker pool, falling back
// to a plain goroutine when the pool rejects the job. Processing must
// not be lost to transient pool overload.
type PoolRunner struct{}

var _ JobRunner = (*PoolRunner)(nil)

// NewPoolRunner creates a pool-backed job runner.
func NewPoolRunner() *PoolRunner {
	return &PoolRunner{}
}

// Submit submits the job to the processing pool.
func (r *PoolRunner) Submit(ctx context.Context, job func()) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := pool.SubmitToType(pool.ProcessingPool, job); err != nil {
		logger.Warnw("processing pool rejected job, running in goroutine", "error", err)
		go job()
	}
	return nil
}

// Schedule runs the job after delay on its own timer goroutine.
func (r *PoolRunner) Schedule(delay time.Duration, job func()) {
	time.AfterFunc(delay, func() {
		if err := pool.SubmitToType(pool.ProcessingPool, job); err != nil {
			logger.Warnw("processing pool rejected scheduled job, running in goroutine", "error", err)
			go job()
		}
	})
}

// SyncRunner executes jobs inline. Used in tests and as a degraded
// mode when worker pools are unavailable.
type SyncRunner struct{}

var _ JobRunner = (*SyncRunner)(nil)

// NewSyncRunner creates a synchronous job runner.
func NewSyncRunner() *SyncRunner {
	return &SyncRunner{}
}

// Submit runs the job inline.
func (r *SyncRunner) Submit(ctx context.Context, job func()) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	job()
	return nil
}

// Schedule runs the job after delay, still asynchronously; a truly
// synchronous sleep would block the caller for the whole retry delay.
func (r *SyncRunner) Schedule(delay time.Duration, job func()) {
	time.AfterFunc(delay, job)
}
