package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
)

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
	if c := q.Cap(); c != 2 {
		t.Errorf("expected capacity 2, got %d", c)
	}

	if err := q.Enqueue(ctx, Job{ID: "job1", ProjectID: 7}); err != nil {
		t.Fatalf("expected enqueue to succeed, got %v", err)
	}
	if l := q.Len(); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	j := <-q.Dequeue()
	if j.ID != "job1" || j.ProjectID != 7 {
		t.Errorf("unexpected job %+v", j)
	}
	if l := q.Len(); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := q.Enqueue(ctx, Job{ID: fmt.Sprintf("job%d", i)}); err != nil {
			t.Fatalf("expected enqueue to succeed, got %v", err)
		}
	}

	if err := q.Enqueue(ctx, Job{ID: "job2"}); !errors.Is(err, ErrFull) {
		t.Errorf("expected ErrFull, got %v", err)
	}
	if l := q.Len(); l != 2 {
		t.Errorf("expected length 2, got %d", l)
	}
}

func TestInMemoryQueue_DefaultCapacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(0))
	if q.Cap() != defaultQueueCapacity {
		t.Errorf("expected default capacity %d, got %d", defaultQueueCapacity, q.Cap())
	}
}

func TestInMemoryQueue_CancelledContext(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := q.Enqueue(ctx, Job{ID: "job"}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if l := q.Len(); l != 0 {
		t.Errorf("expected nothing queued, got %d", l)
	}
}

func TestInMemoryQueue_ConcurrentAccess(t *testing.T) {
	const (
		producers = 10
		perWorker = 50
	)
	q := NewInMemoryQueue(WithCapacity(producers * perWorker))
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, producers*perWorker)
	for i := 0; i < producers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				if err := q.Enqueue(ctx, Job{ID: fmt.Sprintf("p%d-j%d", id, j), ProjectID: int64(j)}); err != nil {
					errs <- err
				}
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("unexpected enqueue error: %v", err)
	}
	if l := q.Len(); l != producers*perWorker {
		t.Errorf("expected %d jobs, got %d", producers*perWorker, l)
	}
}

func TestInMemoryQueue_GracefulShutdown(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(10))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := q.Enqueue(ctx, Job{ID: fmt.Sprintf("job%d", i)}); err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}

	if err := q.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to be closed")
	}
	if err := q.Close(); err != nil {
		t.Errorf("second close should be a no-op, got %v", err)
	}

	if err := q.Enqueue(ctx, Job{ID: "late"}); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}

	drained := 0
	for range q.Dequeue() {
		drained++
	}
	if drained != 3 {
		t.Errorf("expected to drain 3 queued jobs, got %d", drained)
	}
}
