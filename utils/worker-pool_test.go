package utils

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessBatchPreservesOrder(t *testing.T) {
	pool := NewWorkerPool[int, int](4)
	jobs := make([]int, 100)
	for i := range jobs {
		jobs[i] = i
	}

	results := pool.ProcessBatch(context.Background(), jobs, func(_ context.Context, j int) int {
		return j * 2
	})

	require.Len(t, results, len(jobs))
	for i, r := range results {
		assert.Equal(t, i*2, r)
	}
}

func TestProcessBatchEmpty(t *testing.T) {
	pool := NewWorkerPool[int, int](2)
	assert.Nil(t, pool.ProcessBatch(context.Background(), nil, func(_ context.Context, j int) int { return j }))
}

type jobOutcome struct {
	job       int
	cancelled bool
}

func TestProcessBatchCancelledStillInvokesWorkFunc(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var invocations atomic.Int64
	pool := NewWorkerPool[int, jobOutcome](2)
	results := pool.ProcessBatch(ctx, []int{1, 2, 3}, func(ctx context.Context, j int) jobOutcome {
		invocations.Add(1)
		return jobOutcome{job: j, cancelled: ctx.Err() != nil}
	})

	// Every job must pass through workFunc even under cancellation, so the
	// callback can mark the job as not checked instead of the pool handing
	// back an indistinguishable zero result.
	require.Len(t, results, 3)
	assert.Equal(t, int64(3), invocations.Load())
	for i, r := range results {
		assert.Equal(t, i+1, r.job)
		assert.True(t, r.cancelled, "job %d must carry the cancellation marker", r.job)
	}
}
