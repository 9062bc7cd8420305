// Package worker provides the bounded-parallelism pool used by batch mode.
// Each job analyzes one mention corpus; the only state jobs share is the
// read-only catalogue, so no synchronization beyond the pool's own channels
// is needed.
package worker

import (
	"context"
	"sync"
)

// Job is a unit of batch work.
type Job interface {
	Execute(ctx context.Context) Result
}

// Result is the outcome of a job.
type Result interface {
	Err() error
}

// Pool runs jobs on a fixed number of workers. Workers hand finished results
// to a collector rather than a bounded channel, so submission never stalls
// behind result consumption no matter how many jobs are queued.
type Pool struct {
	workers   int
	jobs      chan Job
	collector *resultCollector
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc

	mu     sync.Mutex
	closed bool // the jobs queue no longer accepts submissions
}

// resultCollector accumulates results as workers finish (thread-safe).
type resultCollector struct {
	mu      sync.Mutex
	results []Result
}

func (c *resultCollector) add(res Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, res)
}

func (c *resultCollector) all() []Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.results
}

// NewPool creates a pool with the given worker count (minimum 1).
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		workers:   workers,
		jobs:      make(chan Job, workers*2),
		collector: &resultCollector{},
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start launches the workers.
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.run()
	}
}

func (p *Pool) run() {
	defer p.wg.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			p.collector.add(job.Execute(p.ctx))
		}
	}
}

// Submit queues a job. Submissions after Wait or Shutdown are dropped.
func (p *Pool) Submit(job Job) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	select {
	case <-p.ctx.Done():
	case p.jobs <- job:
	}
}

// Wait closes the queue, waits for all submitted jobs, and returns their
// results in completion order.
func (p *Pool) Wait() []Result {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.jobs)
	}
	p.mu.Unlock()

	p.wg.Wait()
	p.cancel()
	return p.collector.all()
}

// Shutdown cancels outstanding work and releases the workers. Cancellation
// happens before taking the lock so a Submit blocked on a full queue can
// drain out of its select.
func (p *Pool) Shutdown() {
	p.cancel()
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.wg.Wait()
}
