package queue

import (
	"context"
	"fmt"
	"log"
	"time"
)

// ProgressFunc reports an in-progress step with metadata; the worker stores
// it so status polls can surface pipeline progress.
type ProgressFunc func(step string, meta map[string]interface{})

// Handler executes one job and returns its result payload. Returning an
// error marks the attempt failed and triggers a retry.
type Handler func(ctx context.Context, job *Job, report ProgressFunc) (map[string]interface{}, error)

// jobStore is the queue surface the worker consumes.
type jobStore interface {
	dequeue(ctx context.Context, timeout time.Duration) (*Job, error)
	setProcessing(ctx context.Context, id string, meta map[string]interface{})
	setSuccess(ctx context.Context, id string, result map[string]interface{})
	setFailure(ctx context.Context, id string, jobErr error)
}

// Worker consumes jobs sequentially. Work within one job is strictly
// sequential; concurrency comes from running multiple worker processes.
type Worker struct {
	queue      jobStore
	handlers   map[string]Handler
	maxRetries int
	backoff    func(attempt int) time.Duration
}

// DefaultMaxRetries bounds per-job retry attempts.
const DefaultMaxRetries = 3

// defaultBackoff doubles the wait on every retry: 2s, 4s, 8s, ...
func defaultBackoff(attempt int) time.Duration {
	return time.Duration(1<<uint(attempt-1)) * 2 * time.Second
}

func NewWorker(q *Queue, maxRetries int) *Worker {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	return &Worker{
		queue:      q,
		handlers:   make(map[string]Handler),
		maxRetries: maxRetries,
		backoff:    defaultBackoff,
	}
}

// Register binds a handler to a job name.
func (w *Worker) Register(name string, handler Handler) {
	w.handlers[name] = handler
}

// Run consumes jobs until the context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	log.Printf("worker started, waiting for jobs")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		job, err := w.queue.dequeue(ctx, 5*time.Second)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("dequeue failed: %v", err)
			time.Sleep(time.Second)
			continue
		}
		if job == nil {
			continue
		}
		w.process(ctx, job)
	}
}

// process runs one job with exponential-backoff retries. Exhausting the
// retry ceiling surfaces as a FAILURE status.
func (w *Worker) process(ctx context.Context, job *Job) {
	handler, ok := w.handlers[job.Name]
	if !ok {
		log.Printf("no handler registered for job %s (%s)", job.Name, job.ID)
		w.queue.setFailure(ctx, job.ID, fmt.Errorf("unknown job name: %s", job.Name))
		return
	}

	report := func(step string, meta map[string]interface{}) {
		merged := map[string]interface{}{"step": step}
		for k, v := range meta {
			merged[k] = v
		}
		w.queue.setProcessing(ctx, job.ID, merged)
	}

	var lastErr error
	for attempt := 0; attempt <= w.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := w.backoff(attempt)
			log.Printf("job %s attempt %d/%d after %s: %v", job.ID, attempt, w.maxRetries, backoff, lastErr)
			select {
			case <-ctx.Done():
				w.queue.setFailure(ctx, job.ID, ctx.Err())
				return
			case <-time.After(backoff):
			}
		}

		result, err := handler(ctx, job, report)
		if err == nil {
			w.queue.setSuccess(ctx, job.ID, result)
			return
		}
		lastErr = err
	}

	log.Printf("job %s failed after %d retries: %v", job.ID, w.maxRetries, lastErr)
	w.queue.setFailure(ctx, job.ID, lastErr)
}
