package queue

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestSubmitDeliversResult(t *testing.T) {
	p := NewPool(1, 1)
	defer p.Drain(time.Second)

	want := errors.New("boom")
	res, err := p.Submit(context.Background(), func(context.Context) error { return want })
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if got := <-res; !errors.Is(got, want) {
		t.Fatalf("result = %v, want %v", got, want)
	}
}

func TestSubmitRejectsWhenFull(t *testing.T) {
	p := NewPool(1, 0)
	defer p.Drain(time.Second)

	release := make(chan struct{})
	busy, err := p.Submit(context.Background(), func(context.Context) error {
		<-release
		return nil
	})
	if err != nil {
		t.Fatalf("seed job: %v", err)
	}

	if _, err := p.Submit(context.Background(), func(context.Context) error { return nil }); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}

	close(release)
	<-busy
}

func TestBoundedConcurrency(t *testing.T) {
	const workers = 2
	p := NewPool(workers, 8)
	defer p.Drain(time.Second)

	var active, peak int32
	release := make(chan struct{})
	results := make([]<-chan error, 0, 6)
	for i := 0; i < 6; i++ {
		res, err := p.Submit(context.Background(), func(context.Context) error {
			n := atomic.AddInt32(&active, 1)
			for {
				old := atomic.LoadInt32(&peak)
				if n <= old || atomic.CompareAndSwapInt32(&peak, old, n) {
					break
				}
			}
			<-release
			atomic.AddInt32(&active, -1)
			return nil
		})
		if err != nil {
			t.Fatalf("Submit %d: %v", i, err)
		}
		results = append(results, res)
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	for i, res := range results {
		if err := <-res; err != nil {
			t.Fatalf("job %d: %v", i, err)
		}
	}
	if got := atomic.LoadInt32(&peak); got > workers {
		t.Fatalf("peak concurrency %d exceeds %d workers", got, workers)
	}
}

func TestDrainWaitsForQueuedJobs(t *testing.T) {
	p := NewPool(1, 4)

	var done int32
	for i := 0; i < 3; i++ {
		if _, err := p.Submit(context.Background(), func(context.Context) error {
			time.Sleep(10 * time.Millisecond)
			atomic.AddInt32(&done, 1)
			return nil
		}); err != nil {
			t.Fatalf("Submit %d: %v", i, err)
		}
	}

	if !p.Drain(time.Second) {
		t.Fatal("Drain timed out")
	}
	if got := atomic.LoadInt32(&done); got != 3 {
		t.Fatalf("drained with %d of 3 jobs finished", got)
	}

	if _, err := p.Submit(context.Background(), func(context.Context) error { return nil }); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed after Drain, got %v", err)
	}
}

func TestDrainTimeout(t *testing.T) {
	p := NewPool(1, 1)

	release := make(chan struct{})
	if _, err := p.Submit(context.Background(), func(context.Context) error {
		<-release
		return nil
	}); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if p.Drain(20 * time.Millisecond) {
		t.Fatal("Drain should report false while a job is stuck")
	}
	close(release)
	if !p.Drain(time.Second) {
		t.Fatal("Drain should succeed once the job finishes")
	}
}
