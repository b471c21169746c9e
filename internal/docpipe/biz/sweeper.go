package biz

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kart-io/logger"

	"github.com/kart-io/docpipe/internal/model"
)

// SweepResult summarizes one pass over the batch backlog.
type SweepResult struct {
	Total     int      `json:"total"`
	Succeeded int      `json:"succeeded"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors,omitempty"`
}

// Sweeper drains pending batch-mode documents on a schedule. Documents
// are processed sequentially in arrival order so a single sweep never
// floods the embedding provider.
type Sweeper struct {
	processor *Processor
	interval  time.Duration
}

// NewSweeper creates a sweeper over the given processor. A non-positive
// interval disables the periodic loop; SweepOnce still works.
func NewSweeper(processor *Processor, interval time.Duration) *Sweeper {
	return &Sweeper{processor: processor, interval: interval}
}

// SweepOnce processes every pending batch-mode document and reports the
// outcome. Per-document failures are recorded on the documents
// themselves; the sweep keeps going.
func (s *Sweeper) SweepOnce(ctx context.Context) (*SweepResult, error) {
	docs, err := s.processor.store.Documents().ListByStatusAndMode(ctx, model.StatusPending, model.ModeBatch)
	if err != nil {
		return nil, fmt.Errorf("failed to list batch backlog: %w", err)
	}

	result := &SweepResult{Total: len(docs)}
	if len(docs) == 0 {
		return result, nil
	}

	logger.Infow("batch sweep started", "backlog", len(docs))

	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := s.processor.Process(ctx, doc.ID, false); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", doc.ID, err))
			continue
		}
		result.Succeeded++
	}

	logger.Infow("batch sweep finished",
		"total", result.Total, "succeeded", result.Succeeded, "failed", result.Failed)

	if result.Failed > 0 {
		s.notify(ctx, result)
	}
	return result, nil
}

// Run executes SweepOnce on the configured interval until the context
// is cancelled. Intended to be launched as a background goroutine.
func (s *Sweeper) Run(ctx context.Context) {
	if s.interval <= 0 {
		logger.Warnw("batch sweep loop disabled", "interval", s.interval.String())
		return
	}

	logger.Infow("batch sweep loop started", "interval", s.interval.String())

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Infow("batch sweep loop stopped")
			return
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx); err != nil && ctx.Err() == nil {
				logger.Errorw("batch sweep failed", "error", err)
			}
		}
	}
}

func (s *Sweeper) notify(ctx context.Context, result *SweepResult) {
	subject := fmt.Sprintf("batch sweep: %d of %d documents failed", result.Failed, result.Total)
	body := fmt.Sprintf("Sweep processed %d documents: %d succeeded, %d failed.\n\nFailures:\n%s\n",
		result.Total, result.Succeeded, result.Failed, strings.Join(result.Errors, "\n"))
	if err := s.processor.notifier.Notify(ctx, subject, body); err != nil {
		logger.Errorw("failed to deliver sweep notification", "error", err)
	}
}
