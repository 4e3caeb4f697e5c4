package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueProcessesJobs(t *testing.T) {
	done := make(chan string, 3)
	q := NewQueue("test", func(ctx context.Context, job Job) error {
		done <- job.ID
		return nil
	}, QueueConfig{Workers: 2})
	q.Start(context.Background())
	defer q.Stop()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, q.Enqueue(context.Background(), Job{ID: id, Type: "scan"}))
	}

	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		select {
		case id := <-done:
			seen[id] = true
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for jobs")
		}
	}
	assert.Len(t, seen, 3)
}

func TestQueueEnqueueBeforeStart(t *testing.T) {
	q := NewQueue("idle", func(context.Context, Job) error { return nil }, QueueConfig{})
	err := q.Enqueue(context.Background(), Job{ID: "x"})
	assert.ErrorIs(t, err, ErrNotStarted)
}

func TestQueueFailedJobRunsOnce(t *testing.T) {
	var attempts int32
	q := NewQueue("once", func(ctx context.Context, job Job) error {
		atomic.AddInt32(&attempts, 1)
		return errors.New("permanent")
	}, QueueConfig{})
	q.Start(context.Background())

	require.NoError(t, q.Enqueue(context.Background(), Job{ID: "o"}))
	time.Sleep(50 * time.Millisecond)
	q.Stop()
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
}

func TestQueueEnqueueAfterStop(t *testing.T) {
	q := NewQueue("stopped", func(context.Context, Job) error { return nil }, QueueConfig{})
	q.Start(context.Background())
	q.Stop()

	err := q.Enqueue(context.Background(), Job{ID: "late"})
	assert.ErrorIs(t, err, ErrStopped)
}

func TestQueueEnqueueFullBufferReturnsImmediately(t *testing.T) {
	release := make(chan struct{})
	picked := make(chan struct{}, 1)
	q := NewQueue("busy", func(ctx context.Context, job Job) error {
		picked <- struct{}{}
		<-release
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 1})
	q.Start(context.Background())
	defer q.Stop()
	defer close(release)

	require.NoError(t, q.Enqueue(context.Background(), Job{ID: "running"}))
	<-picked
	require.NoError(t, q.Enqueue(context.Background(), Job{ID: "buffered"}))

	start := time.Now()
	err := q.Enqueue(context.Background(), Job{ID: "overflow"})
	assert.ErrorIs(t, err, ErrFull)
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestQueueEnqueueHonoursCallerContext(t *testing.T) {
	q := NewQueue("ctx", func(context.Context, Job) error { return nil }, QueueConfig{})
	q.Start(context.Background())
	defer q.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := q.Enqueue(ctx, Job{ID: "cancelled"})
	assert.ErrorIs(t, err, context.Canceled)
}
