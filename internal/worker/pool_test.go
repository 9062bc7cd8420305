package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

// countJob implements Job
type countJob struct {
	executed  *int32 // atomic counter
	shouldErr bool
}

type countResult struct {
	err error
}

func (r countResult) Err() error { return r.err }

func (j countJob) Execute(ctx context.Context) Result {
	if j.executed != nil {
		atomic.AddInt32(j.executed, 1)
	}
	if j.shouldErr {
		return countResult{err: errors.New("job error")}
	}
	return countResult{}
}

func TestNewPool(t *testing.T) {
	if p := NewPool(5); p.workers != 5 {
		t.Errorf("expected 5 workers, got %d", p.workers)
	}
	if p := NewPool(0); p.workers != 1 {
		t.Errorf("expected default 1 worker for 0 input, got %d", p.workers)
	}
	if p := NewPool(-1); p.workers != 1 {
		t.Errorf("expected default 1 worker for negative input, got %d", p.workers)
	}
}

func TestPool_Execution(t *testing.T) {
	pool := NewPool(2)
	pool.Start()

	var executed int32
	count := 10
	for i := 0; i < count; i++ {
		pool.Submit(countJob{executed: &executed})
	}

	results := pool.Wait()

	if len(results) != count {
		t.Errorf("expected %d results, got %d", count, len(results))
	}
	if got := atomic.LoadInt32(&executed); got != int32(count) {
		t.Errorf("expected %d executed jobs, got %d", count, got)
	}
}

func TestPool_ErrorsSurfaceInResults(t *testing.T) {
	pool := NewPool(2)
	pool.Start()

	pool.Submit(countJob{shouldErr: true})
	pool.Submit(countJob{})

	results := pool.Wait()
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	failed := 0
	for _, res := range results {
		if res.Err() != nil {
			failed++
		}
	}
	if failed != 1 {
		t.Errorf("expected exactly 1 failed result, got %d", failed)
	}
}

func TestPool_SubmitAfterWaitDropped(t *testing.T) {
	pool := NewPool(1)
	pool.Start()
	pool.Submit(countJob{})

	results := pool.Wait()
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}

	// A submit after Wait is dropped, not a send on the closed queue.
	pool.Submit(countJob{})
	if got := len(pool.collector.all()); got != 1 {
		t.Errorf("expected the late submission to be dropped, got %d results", got)
	}
}

func TestPool_Shutdown(t *testing.T) {
	pool := NewPool(1)
	pool.Start()
	pool.Shutdown()

	// A submit after shutdown is dropped, not deadlocked.
	pool.Submit(countJob{})
}
