package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	processing []map[string]interface{}
	successes  []map[string]interface{}
	failures   []error
}

func (f *fakeStore) dequeue(_ context.Context, _ time.Duration) (*Job, error) {
	return nil, nil
}

func (f *fakeStore) setProcessing(_ context.Context, _ string, meta map[string]interface{}) {
	f.processing = append(f.processing, meta)
}

func (f *fakeStore) setSuccess(_ context.Context, _ string, result map[string]interface{}) {
	f.successes = append(f.successes, result)
}

func (f *fakeStore) setFailure(_ context.Context, _ string, jobErr error) {
	f.failures = append(f.failures, jobErr)
}

func newTestWorker(store *fakeStore, maxRetries int) *Worker {
	return &Worker{
		queue:      store,
		handlers:   make(map[string]Handler),
		maxRetries: maxRetries,
		backoff:    func(int) time.Duration { return 0 },
	}
}

func TestProcessRetriesToCeilingThenFails(t *testing.T) {
	store := &fakeStore{}
	w := newTestWorker(store, 3)

	attempts := 0
	w.Register("boom", func(_ context.Context, _ *Job, _ ProgressFunc) (map[string]interface{}, error) {
		attempts++
		return nil, errors.New("persistent failure")
	})

	w.process(context.Background(), &Job{ID: "j1", Name: "boom"})

	assert.Equal(t, 4, attempts, "first attempt plus three retries")
	assert.Empty(t, store.successes)
	require.Len(t, store.failures, 1)
	assert.EqualError(t, store.failures[0], "persistent failure")
}

func TestProcessSucceedsAfterTransientFailures(t *testing.T) {
	store := &fakeStore{}
	w := newTestWorker(store, 3)

	attempts := 0
	w.Register("flaky", func(_ context.Context, _ *Job, report ProgressFunc) (map[string]interface{}, error) {
		attempts++
		if attempts < 3 {
			return nil, errors.New("transient")
		}
		report("FINALIZING", map[string]interface{}{"doc_id": "d1"})
		return map[string]interface{}{"status": "completed"}, nil
	})

	w.process(context.Background(), &Job{ID: "j2", Name: "flaky"})

	assert.Equal(t, 3, attempts)
	assert.Empty(t, store.failures)
	require.Len(t, store.successes, 1)
	assert.Equal(t, "completed", store.successes[0]["status"])

	// Progress reports merge the step name into the stored meta.
	require.Len(t, store.processing, 1)
	assert.Equal(t, "FINALIZING", store.processing[0]["step"])
	assert.Equal(t, "d1", store.processing[0]["doc_id"])
}

func TestProcessUnknownJobNameFailsImmediately(t *testing.T) {
	store := &fakeStore{}
	w := newTestWorker(store, 3)

	w.process(context.Background(), &Job{ID: "j3", Name: "nobody-registered-this"})

	require.Len(t, store.failures, 1)
	assert.Contains(t, store.failures[0].Error(), "unknown job name")
}

func TestDefaultBackoffDoubles(t *testing.T) {
	assert.Equal(t, 2*time.Second, defaultBackoff(1))
	assert.Equal(t, 4*time.Second, defaultBackoff(2))
	assert.Equal(t, 8*time.Second, defaultBackoff(3))
}
