package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/nadmax/planwise/internal/queue"
)

func setupTestWorker(t *testing.T) (*Worker, *queue.Queue) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	q, err := queue.NewQueue(mr.Addr())
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = q.Close()
		mr.Close()
	})

	w := NewWorker("test-worker", q, nil)
	w.SetRetryDelay(time.Hour)

	return w, q
}

func enqueue(t *testing.T, q *queue.Queue, jobType string) *queue.Job {
	job := queue.NewJob(jobType, map[string]any{"k": "v"})
	require.NoError(t, q.Enqueue(context.Background(), job))

	claimed, err := q.Dequeue(context.Background())
	require.NoError(t, err)
	require.NotNil(t, claimed)

	return claimed
}

func TestNewWorker(t *testing.T) {
	w, _ := setupTestWorker(t)

	assert.Equal(t, "test-worker", w.id)
	assert.NotNil(t, w.handlers)
	assert.NotNil(t, w.logger)
	assert.Equal(t, defaultPollInterval, w.pollInterval)
}

func TestRegisterHandler(t *testing.T) {
	w, _ := setupTestWorker(t)

	w.RegisterHandler("share_recipe", func(context.Context, *queue.Job) error { return nil })

	assert.Contains(t, w.handlers, "share_recipe")
}

func TestProcessJob_Success(t *testing.T) {
	w, q := setupTestWorker(t)
	ctx := context.Background()

	executed := false
	w.RegisterHandler("share_recipe", func(_ context.Context, job *queue.Job) error {
		executed = job.Payload["k"] == "v"
		return nil
	})

	job := enqueue(t, q, "share_recipe")
	w.processJob(ctx, job)

	assert.True(t, executed)

	updated, err := q.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, queue.StatusCompleted, updated.Status)
	assert.Equal(t, 1, updated.Attempts)
	assert.NotNil(t, updated.StartedAt)
	assert.NotNil(t, updated.CompletedAt)
}

func TestProcessJob_FailureSchedulesRetry(t *testing.T) {
	w, q := setupTestWorker(t)
	ctx := context.Background()

	w.RegisterHandler("share_recipe", func(context.Context, *queue.Job) error {
		return errors.New("mail server down")
	})

	job := enqueue(t, q, "share_recipe")
	w.processJob(ctx, job)

	updated, err := q.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, queue.StatusPending, updated.Status)
	assert.Equal(t, 1, updated.Attempts)
	assert.Equal(t, "mail server down", updated.Error)
	assert.True(t, updated.RunAt.After(time.Now().Add(30*time.Minute)))

	depth, err := q.Depth(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), depth)
}

func TestProcessJob_PermanentFailure(t *testing.T) {
	w, q := setupTestWorker(t)
	ctx := context.Background()

	calls := 0
	w.RegisterHandler("priority_digest", func(context.Context, *queue.Job) error {
		calls++
		return errors.New("no recipient")
	})

	job := enqueue(t, q, "priority_digest")
	job.Attempts = job.MaxAttempts - 1
	w.processJob(ctx, job)

	assert.Equal(t, 1, calls)

	updated, err := q.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, queue.StatusFailed, updated.Status)
	assert.Equal(t, job.MaxAttempts, updated.Attempts)
	assert.Equal(t, "no recipient", updated.Error)

	depth, err := q.Depth(ctx)
	require.NoError(t, err)
	assert.Zero(t, depth)
}

func TestProcessJob_NoHandler(t *testing.T) {
	w, q := setupTestWorker(t)
	ctx := context.Background()

	job := enqueue(t, q, "unknown")
	w.processJob(ctx, job)

	updated, err := q.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, queue.StatusFailed, updated.Status)
	assert.Contains(t, updated.Error, "no handler for job type: unknown")
}

func TestProcessJob_PanicIsRecovered(t *testing.T) {
	w, q := setupTestWorker(t)
	ctx := context.Background()

	w.RegisterHandler("boom", func(context.Context, *queue.Job) error {
		panic("nil map")
	})

	job := enqueue(t, q, "boom")
	job.Attempts = job.MaxAttempts - 1

	assert.NotPanics(t, func() { w.processJob(ctx, job) })

	updated, err := q.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, queue.StatusFailed, updated.Status)
	assert.Contains(t, updated.Error, "handler panic: nil map")
}

func TestProcessJob_ShutdownRequeuesWithoutCountingAttempt(t *testing.T) {
	w, q := setupTestWorker(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w.RegisterHandler("send_email", func(ctx context.Context, _ *queue.Job) error {
		cancel()
		return ctx.Err()
	})

	job := enqueue(t, q, "send_email")
	w.processJob(ctx, job)

	bg := context.Background()
	updated, err := q.GetJob(bg, job.ID)
	require.NoError(t, err)
	assert.Equal(t, queue.StatusPending, updated.Status)
	assert.Zero(t, updated.Attempts)
	assert.Nil(t, updated.CompletedAt)

	depth, err := q.Depth(bg)
	require.NoError(t, err)
	assert.Equal(t, int64(1), depth)

	again, err := q.Dequeue(bg)
	require.NoError(t, err)
	require.NotNil(t, again)
	assert.Equal(t, job.ID, again.ID)
}

func TestStart_ProcessesAndStops(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	q, err := queue.NewQueue(mr.Addr())
	require.NoError(t, err)
	defer func() { _ = q.Close() }()

	w := NewWorker("loop-worker", q, nil)
	w.SetPollInterval(10 * time.Millisecond)

	var processed atomic.Int32
	w.RegisterHandler("priority_digest", func(context.Context, *queue.Job) error {
		processed.Add(1)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	for range 3 {
		require.NoError(t, q.Enqueue(context.Background(), queue.NewJob("priority_digest", nil)))
	}

	assert.Eventually(t, func() bool { return processed.Load() == 3 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}
