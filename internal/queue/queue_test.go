package queue

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestQueueProcessesJob(t *testing.T) {
	q := New(10, 1, time.Second, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q.Start(ctx)

	var processed int32
	done := make(chan struct{})
	ok := q.Enqueue(Job{
		ID:     "job1",
		Source: "test",
		Work: func(ctx context.Context) error {
			atomic.AddInt32(&processed, 1)
			close(done)
			return nil
		},
	})
	if !ok {
		t.Fatalf("expected enqueue to succeed")
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("job did not complete")
	}
	if atomic.LoadInt32(&processed) != 1 {
		t.Fatalf("job not processed")
	}
}

func TestQueueRejectsWhenFull(t *testing.T) {
	q := New(1, 1, time.Second, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q.Start(ctx)

	gate := make(chan struct{})
	blocking := func(ctx context.Context) error { <-gate; return nil }
	defer close(gate)

	// First job occupies the worker, second fills the buffer.
	if !q.Enqueue(Job{ID: "busy", Source: "test", Work: blocking}) {
		t.Fatal("expected first enqueue to succeed")
	}
	// Give the worker a moment to pick up the first job.
	deadline := time.Now().Add(time.Second)
	for q.Stats().Length != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if !q.Enqueue(Job{ID: "queued", Source: "test", Work: blocking}) {
		t.Fatal("expected second enqueue to succeed")
	}
	if q.Enqueue(Job{ID: "drop", Source: "test", Work: blocking}) {
		t.Fatal("expected enqueue to be rejected when queue is full")
	}
}

func TestQueueTimesOutSlowJob(t *testing.T) {
	q := New(1, 1, 50*time.Millisecond, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q.Start(ctx)

	errc := make(chan error, 1)
	q.Enqueue(Job{
		ID:     "slow",
		Source: "test",
		Work: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		},
		OnFinish: func(err error) { errc <- err },
	})
	select {
	case err := <-errc:
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("expected deadline exceeded, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("job did not time out")
	}
}

func TestEnqueueBeforeStartFails(t *testing.T) {
	q := New(1, 1, time.Second, zerolog.Nop())
	if q.Enqueue(Job{ID: "early", Work: func(ctx context.Context) error { return nil }}) {
		t.Fatal("expected enqueue before start to fail")
	}
	if q.Healthy() {
		t.Fatal("unstarted queue should not report healthy")
	}
}

func TestStatsCountsFailures(t *testing.T) {
	q := New(4, 1, time.Second, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q.Start(ctx)

	done := make(chan struct{})
	q.Enqueue(Job{
		ID:       "boom",
		Source:   "test",
		Work:     func(ctx context.Context) error { return errors.New("boom") },
		OnFinish: func(error) { close(done) },
	})
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("job did not finish")
	}
	stats := q.Stats()
	if stats.Processed != 1 || stats.Failed != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}
