package shardqueue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSubmitRunsJobsInOrderPerKey(t *testing.T) {
	ex := NewShardExecutor(Config{Shards: 2, QueueSize: 16})
	defer ex.Stop()

	var mu sync.Mutex
	var got []int
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		i := i
		wg.Add(1)
		job := JobFunc(func(context.Context) error {
			defer wg.Done()
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
			return nil
		})
		if err := ex.Submit(context.Background(), "same-key", job); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}
	wg.Wait()

	for i, v := range got {
		if v != i {
			t.Fatalf("jobs reordered: got %v", got)
		}
	}
}

func TestSubmitQueueFull(t *testing.T) {
	block := make(chan struct{})
	ex := NewShardExecutor(Config{Shards: 1, QueueSize: 1, EnqueueTimeout: 10 * time.Millisecond})
	defer ex.Stop()
	defer close(block)

	blocker := JobFunc(func(context.Context) error { <-block; return nil })
	if err := ex.Submit(context.Background(), "k", blocker); err != nil {
		t.Fatalf("first submit: %v", err)
	}

	// Fill the queue, then overflow it. The worker may have already taken the
	// first job, so one extra submit may be needed before back-pressure hits.
	var err error
	for i := 0; i < 3; i++ {
		err = ex.Submit(context.Background(), "k", blocker)
		if err != nil {
			break
		}
	}
	if !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
	var qf *QueueFullError
	if !errors.As(err, &qf) {
		t.Fatalf("expected *QueueFullError, got %T", err)
	}
}

func TestStopDrainsQueuedJobs(t *testing.T) {
	ex := NewShardExecutor(Config{Shards: 1, QueueSize: 8})

	var ran int32
	slow := JobFunc(func(context.Context) error {
		time.Sleep(100 * time.Millisecond)
		return nil
	})
	count := JobFunc(func(context.Context) error {
		atomic.AddInt32(&ran, 1)
		return nil
	})

	// The counting job sits in the queue behind the slow one when Stop is
	// called; the worker must drain it before exiting.
	if err := ex.Submit(context.Background(), "k", slow); err != nil {
		t.Fatalf("submit slow: %v", err)
	}
	if err := ex.Submit(context.Background(), "k", count); err != nil {
		t.Fatalf("submit count: %v", err)
	}
	ex.Stop()

	if got := atomic.LoadInt32(&ran); got != 1 {
		t.Fatalf("queued job dropped on Stop: ran=%d, want 1", got)
	}
}

func TestStopDrainsFIFO(t *testing.T) {
	block := make(chan struct{})
	ex := NewShardExecutor(Config{Shards: 1, QueueSize: 8})

	var mu sync.Mutex
	var got []int
	blocker := JobFunc(func(context.Context) error { <-block; return nil })
	if err := ex.Submit(context.Background(), "k", blocker); err != nil {
		t.Fatalf("submit blocker: %v", err)
	}
	for i := 0; i < 5; i++ {
		i := i
		job := JobFunc(func(context.Context) error {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
			return nil
		})
		if err := ex.Submit(context.Background(), "k", job); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}

	close(block)
	ex.Stop()

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 5 {
		t.Fatalf("drained %d of 5 jobs: %v", len(got), got)
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("drain reordered jobs: %v", got)
		}
	}
}

func TestSubmitAfterStop(t *testing.T) {
	ex := NewShardExecutor(Config{Shards: 1, QueueSize: 1})
	ex.Stop()
	ex.Stop() // idempotent

	err := ex.Submit(context.Background(), "k", JobFunc(func(context.Context) error { return nil }))
	if !errors.Is(err, ErrExecutorClosed) {
		t.Fatalf("expected ErrExecutorClosed, got %v", err)
	}
}

func TestRetryThenErrorHandler(t *testing.T) {
	var mu sync.Mutex
	attempts := 0
	handled := make(chan error, 1)

	ex := NewShardExecutor(Config{
		Shards:       1,
		QueueSize:    4,
		MaxAttempts:  3,
		BaseBackoff:  time.Millisecond,
		MaxInterval:  5 * time.Millisecond,
		ErrorHandler: func(err error) { handled <- err },
	})
	defer ex.Stop()

	boom := errors.New("boom")
	job := JobFunc(func(context.Context) error {
		mu.Lock()
		attempts++
		mu.Unlock()
		return boom
	})
	if err := ex.Submit(context.Background(), "k", job); err != nil {
		t.Fatalf("submit: %v", err)
	}

	select {
	case err := <-handled:
		if !errors.Is(err, boom) {
			t.Fatalf("handler got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("error handler never called")
	}

	mu.Lock()
	defer mu.Unlock()
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestRetrySucceedsEventually(t *testing.T) {
	var mu sync.Mutex
	attempts := 0
	done := make(chan struct{})

	ex := NewShardExecutor(Config{Shards: 1, QueueSize: 4, MaxAttempts: 5, BaseBackoff: time.Millisecond})
	defer ex.Stop()

	job := JobFunc(func(context.Context) error {
		mu.Lock()
		attempts++
		n := attempts
		mu.Unlock()
		if n < 3 {
			return errors.New("transient")
		}
		close(done)
		return nil
	})
	if err := ex.Submit(context.Background(), "k", job); err != nil {
		t.Fatalf("submit: %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job never succeeded")
	}
}
