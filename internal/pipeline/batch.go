package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/thmotdod1e/mars-atmo-analysis/internal/model"
	"golang.org/x/sync/errgroup"
)

// BatchProcessor handles concurrent processing of multiple spectrometer
// files. It uses errgroup to manage goroutines and respect concurrency
// limits.
//
// A failure on one file never aborts the batch: the error is recorded in
// that file's report and the remaining files still run. The only way to
// stop a batch early is cancelling the context.
//
// Design decision: We use a separate BatchProcessor rather than adding
// batch functionality to Pipeline because:
//  1. It keeps the Pipeline focused on single-file execution
//  2. It allows different batch strategies (e.g. rate limiting, retries)
//  3. It provides cleaner separation of concerns
type BatchProcessor struct {
	// pipelineFactory creates a new pipeline for each file.
	// We use a factory so each file gets a fresh pipeline instance and
	// per-file calibration can be applied.
	pipelineFactory func(sourceFile string) *Pipeline

	// concurrency is the maximum number of files processed at once.
	concurrency int

	// fileTimeout is the per-file deadline. Zero disables the deadline.
	fileTimeout time.Duration

	// logger is used for batch-level logging.
	logger *slog.Logger

	// results stores completed reports, in input order.
	// Access is synchronized via mutex.
	results []*model.SpectrumReport
	mu      sync.Mutex
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent files.
// Default is 8 if not specified.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithFileTimeout sets a deadline applied to each file individually, so
// one pathological input cannot stall the whole batch.
func WithFileTimeout(d time.Duration) BatchOption {
	return func(b *BatchProcessor) {
		if d > 0 {
			b.fileTimeout = d
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
//
// The pipelineFactory function is called once per file with the file's
// path, so calibration overrides keyed by dataset can be resolved per
// file without leaking state between files.
func NewBatchProcessor(pipelineFactory func(sourceFile string) *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     8,
		results:         make([]*model.SpectrumReport, 0),
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch processes multiple files concurrently.
// It respects the configured concurrency limit and context cancellation.
//
// Design decision: We use errgroup.SetLimit rather than a hand-rolled
// worker pool because it handles the concurrency limit correctly with
// less code. Each file gets its own goroutine, but only 'concurrency'
// goroutines run simultaneously.
//
// Returns one report per input path, in input order, including reports
// for files that failed. The error return is non-nil only when the batch
// itself was cancelled.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, paths []string) ([]*model.SpectrumReport, error) {
	bp.logger.Info("starting batch processing",
		"total_files", len(paths),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	// Pre-allocate results slice to maintain order
	bp.results = make([]*model.SpectrumReport, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			report := bp.processOne(ctx, path, i, len(paths))

			bp.mu.Lock()
			bp.results[i] = report
			bp.mu.Unlock()

			return nil
		})
	}

	// Wait for all files to complete
	err := g.Wait()

	elapsed := time.Since(startTime)
	bp.logger.Info("batch processing complete",
		"total_files", len(paths),
		"elapsed", elapsed,
	)

	return bp.results, err
}

// ProcessBatchWithCallback processes multiple files and calls a callback
// for each completed file. This is useful for streaming output.
//
// The callback receives the report and the index of the file in the
// original slice. It is called from the goroutine that completed the
// file, so it must be thread-safe if it accesses shared state.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	paths []string,
	callback func(report *model.SpectrumReport, index int),
) error {
	bp.logger.Info("starting batch processing with callback",
		"total_files", len(paths),
		"concurrency", bp.concurrency,
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			report := bp.processOne(ctx, path, i, len(paths))
			callback(report, i)
			return nil
		})
	}

	return g.Wait()
}

// processOne runs the pipeline for a single file, applying the per-file
// deadline. The returned report always exists; failures are recorded on
// it rather than returned.
func (bp *BatchProcessor) processOne(ctx context.Context, path string, index, total int) *model.SpectrumReport {
	report := model.NewSpectrumReport(path)

	// A batch cancelled before this file started still produces a report,
	// so the output keeps one entry per input.
	select {
	case <-ctx.Done():
		report.TimedOut = errors.Is(ctx.Err(), context.DeadlineExceeded)
		report.SetError(ctx.Err())
		return report
	default:
	}

	bp.logger.Info("processing file",
		"source", path,
		"index", index+1,
		"total", total,
	)

	fileCtx := ctx
	if bp.fileTimeout > 0 {
		var cancel context.CancelFunc
		fileCtx, cancel = context.WithTimeout(ctx, bp.fileTimeout)
		defer cancel()
	}

	p := bp.pipelineFactory(path)
	if err := p.Execute(fileCtx, report); err != nil {
		// The error is already recorded in the report; the batch goes on.
		if errors.Is(err, context.DeadlineExceeded) {
			report.TimedOut = true
		}
		bp.logger.Warn("file processing failed",
			"source", path,
			"error", err,
		)
		return report
	}

	bp.logger.Info("file processed",
		"source", path,
		"status", report.Status(),
	)

	return report
}
