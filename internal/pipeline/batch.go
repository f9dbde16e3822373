package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/reconforge/netrecon/internal/model"
	"golang.org/x/sync/errgroup"
)

// BatchProcessor runs full recon scans over many targets concurrently,
// bounded by a worker limit. Each target gets a fresh pipeline so no state
// leaks between scans.
type BatchProcessor struct {
	pipelineFactory func() *Pipeline
	concurrency     int
	logger          *slog.Logger

	mu      sync.Mutex
	results []*model.ReconReport
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets the batch-level logger.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets how many targets scan simultaneously.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a BatchProcessor with 10 concurrent scans.
// pipelineFactory is invoked once per target.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	b := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     10,
	}

	for _, opt := range opts {
		opt(b)
	}

	if b.logger == nil {
		b.logger = slog.Default()
	}

	return b
}

// ProcessBatch scans every target and returns one report per target, in
// input order. A failed scan still yields its report with the failure
// recorded; the returned error is only non-nil on cancellation.
func (b *BatchProcessor) ProcessBatch(ctx context.Context, targets []string) ([]*model.ReconReport, error) {
	b.logger.Info("starting batch scan",
		slog.Int("targets", len(targets)),
		slog.Int("concurrency", b.concurrency))

	start := time.Now()
	b.results = make([]*model.ReconReport, len(targets))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for i, target := range targets {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			report := model.NewReconReport(target)
			if err := b.pipelineFactory().Execute(ctx, report); err != nil {
				b.logger.Warn("scan failed",
					slog.String("target", target),
					slog.Any("error", err))
			}

			b.mu.Lock()
			b.results[i] = report
			b.mu.Unlock()
			return nil
		})
	}

	err := g.Wait()

	b.logger.Info("batch scan complete",
		slog.Int("targets", len(targets)),
		slog.Duration("elapsed", time.Since(start)))

	return b.results, err
}
