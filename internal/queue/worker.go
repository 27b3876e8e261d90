package queue

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// WorkerPool is the in-process reference Enqueuer: a buffered channel acts
// as a counting semaphore bounding concurrency, with a fixed pool of
// goroutines draining it. This mirrors the teacher's ProcessBatch
// goroutine+channel pattern, generalized from a one-shot batch to a
// long-lived queue.
type WorkerPool struct {
	jobs     chan Job
	handler  Handler
	logger   *slog.Logger
	wg       sync.WaitGroup
	shutdown chan struct{}
}

// DefaultConcurrency is the fixed worker count (§5).
const DefaultConcurrency = 2

// NewWorkerPool starts concurrency goroutines consuming from an internally
// buffered job channel and processing them with handler.
func NewWorkerPool(concurrency int, handler Handler, logger *slog.Logger) *WorkerPool {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if logger == nil {
		logger = slog.Default()
	}

	p := &WorkerPool{
		jobs:     make(chan Job, concurrency*4),
		handler:  handler,
		logger:   logger,
		shutdown: make(chan struct{}),
	}

	for i := 0; i < concurrency; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

func (p *WorkerPool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.shutdown:
			return
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			p.run(job)
		}
	}
}

func (p *WorkerPool) run(job Job) {
	ctx := context.Background()
	report := func(ev ProgressEvent) {
		p.logger.Info("job progress", "sessionId", ev.SessionID, "step", ev.Step, "percent", ev.Percent, "message", ev.Message)
	}

	job.Attempt++
	err := p.handler(ctx, job, report)
	if err == nil {
		return
	}

	var fatal *FatalError
	if asFatal(err, &fatal) {
		p.logger.Error("job failed fatally", "sessionId", job.SessionID, "kind", job.Kind, "error", err)
		return
	}

	if job.Attempt >= MaxAttempts {
		p.logger.Error("job exhausted retries", "sessionId", job.SessionID, "kind", job.Kind, "attempt", job.Attempt, "error", err)
		return
	}

	p.logger.Warn("job failed, will retry", "sessionId", job.SessionID, "kind", job.Kind, "attempt", job.Attempt, "error", err)
	delay := RetryDelay(job.Attempt)
	go func(j Job) {
		time.Sleep(delay)
		p.jobs <- j
	}(job)
}

func asFatal(err error, target **FatalError) bool {
	for err != nil {
		if f, ok := err.(*FatalError); ok {
			*target = f
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// Enqueue implements Enqueuer by pushing onto the internal channel. It
// blocks if the channel is full, applying natural backpressure.
func (p *WorkerPool) Enqueue(ctx context.Context, job Job) error {
	select {
	case p.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting new work and waits for in-flight jobs to finish.
func (p *WorkerPool) Close() {
	close(p.shutdown)
	close(p.jobs)
	p.wg.Wait()
}
