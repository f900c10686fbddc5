// Package queue provides a bounded in-process worker pool that guards the
// tabular store client from unbounded concurrent use.
package queue

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrQueueFull indicates the pool's buffer is at capacity and the job was
// rejected rather than queued.
var ErrQueueFull = errors.New("queue full")

// ErrClosed indicates the pool is draining and accepts no new jobs.
var ErrClosed = errors.New("queue closed")

// Job is one unit of work executed on a pool worker.
type Job func(ctx context.Context) error

// Pool runs jobs on a fixed number of workers with a bounded buffer.
type Pool struct {
	jobs chan task
	wg   sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

type task struct {
	ctx    context.Context
	job    Job
	result chan error
}

// NewPool starts a pool with the given worker count and buffer size.
func NewPool(workers, buffer int) *Pool {
	if workers < 1 {
		workers = 1
	}
	if buffer < 0 {
		buffer = 0
	}
	p := &Pool{jobs: make(chan task, buffer)}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for t := range p.jobs {
		t.result <- t.job(t.ctx)
	}
}

// Submit enqueues a job and returns a channel that delivers its result
// exactly once. A full buffer rejects with ErrQueueFull instead of blocking
// the caller.
func (p *Pool) Submit(ctx context.Context, job Job) (<-chan error, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return nil, ErrClosed
	}
	result := make(chan error, 1)
	select {
	case p.jobs <- task{ctx: ctx, job: job, result: result}:
		return result, nil
	default:
		return nil, ErrQueueFull
	}
}

// Drain stops accepting jobs and waits up to timeout for in-flight and
// queued jobs to finish. It reports whether the pool drained fully.
func (p *Pool) Drain(timeout time.Duration) bool {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.jobs)
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}
