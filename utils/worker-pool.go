package utils

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// WorkerPool fans a batch of jobs out to a fixed set of goroutines. Used by
// the batch CLI to check several input files at once; each job is
// independent, so a failed file never blocks the others.
type WorkerPool[J, R any] struct {
	NumWorkers int
	jobs       chan indexedJob[J]
	results    chan indexedResult[R]
	wg         sync.WaitGroup
}

type indexedJob[J any] struct {
	job   J
	index int
}

type indexedResult[R any] struct {
	result R
	index  int
}

// NewWorkerPool creates a pool with numWorkers goroutines, defaulting to
// the CPU count when numWorkers <= 0.
func NewWorkerPool[J, R any](numWorkers int) *WorkerPool[J, R] {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &WorkerPool[J, R]{NumWorkers: numWorkers}
}

// ProcessBatch runs workFunc over every job and returns the results in job
// order. workFunc is invoked for every job, cancelled context included: it
// receives ctx and reports cancellation inside its result type, so no job
// can silently yield a zero result.
func (wp *WorkerPool[J, R]) ProcessBatch(ctx context.Context, jobs []J, workFunc func(context.Context, J) R) []R {
	if len(jobs) == 0 {
		return nil
	}

	wp.jobs = make(chan indexedJob[J], len(jobs))
	wp.results = make(chan indexedResult[R], len(jobs))

	wp.wg.Add(wp.NumWorkers)
	for i := 0; i < wp.NumWorkers; i++ {
		go func() {
			defer wp.wg.Done()
			for ij := range wp.jobs {
				wp.results <- indexedResult[R]{result: workFunc(ctx, ij.job), index: ij.index}
			}
		}()
	}

	for i, job := range jobs {
		wp.jobs <- indexedJob[J]{job: job, index: i}
	}
	close(wp.jobs)

	results := make([]R, len(jobs))
	for range jobs {
		ir := <-wp.results
		results[ir.index] = ir.result
	}
	wp.wg.Wait()
	close(wp.results)
	return results
}

// ProgressTracker counts completed items across workers and logs throughput
// at a fixed interval.
type ProgressTracker struct {
	Total     int64
	processed int64
	start     time.Time
	name      string
	every     int64
	log       *slog.Logger
}

// NewProgressTracker creates a tracker that logs every `every` completions.
func NewProgressTracker(total int64, name string, every int64, logger *slog.Logger) *ProgressTracker {
	if every <= 0 {
		every = 100
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ProgressTracker{Total: total, start: time.Now(), name: name, every: every, log: logger}
}

// Increment records one completed item.
func (pt *ProgressTracker) Increment() {
	processed := atomic.AddInt64(&pt.processed, 1)
	if processed%pt.every == 0 || processed == pt.Total {
		elapsed := time.Since(pt.start)
		pt.log.Info("progress",
			"task", pt.name,
			"done", processed,
			"total", pt.Total,
			"rate", float64(processed)/elapsed.Seconds(),
		)
	}
}

// Processed returns the number of completed items so far.
func (pt *ProgressTracker) Processed() int64 {
	return atomic.LoadInt64(&pt.processed)
}
