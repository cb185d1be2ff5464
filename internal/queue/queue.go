// Package queue is a Redis-backed background job queue. Jobs are named with
// positional string arguments; callers poll job status by handle until a
// terminal state.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Job statuses.
const (
	StatusPending    = "PENDING"
	StatusProcessing = "PROCESSING"
	StatusSuccess    = "SUCCESS"
	StatusFailure    = "FAILURE"
)

const (
	jobListKey   = "paperdex:jobs"
	jobKeyPrefix = "paperdex:job:"
	jobTTL       = 7 * 24 * time.Hour
)

// Job is one queued unit of work.
type Job struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Args    []string `json:"args"`
	Retries int      `json:"retries"`
}

// JobStatus is the polled view of a job.
type JobStatus struct {
	ID     string                 `json:"task_id"`
	Status string                 `json:"status"`
	Meta   map[string]interface{} `json:"meta,omitempty"`
	Result map[string]interface{} `json:"result,omitempty"`
	Error  string                 `json:"error,omitempty"`
}

type Queue struct {
	rdb *redis.Client
}

func New(rdb *redis.Client) *Queue {
	return &Queue{rdb: rdb}
}

// NewClient parses a redis URL into a client.
func NewClient(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}

// Enqueue submits a named job and returns its handle. The job starts in
// PENDING until a worker picks it up.
func (q *Queue) Enqueue(ctx context.Context, name string, args ...string) (string, error) {
	job := Job{ID: uuid.NewString(), Name: name, Args: args}
	payload, err := json.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("failed to marshal job: %w", err)
	}

	key := jobKeyPrefix + job.ID
	if err := q.rdb.HSet(ctx, key, "status", StatusPending).Err(); err != nil {
		return "", fmt.Errorf("failed to record job status: %w", err)
	}
	q.rdb.Expire(ctx, key, jobTTL)

	if err := q.rdb.LPush(ctx, jobListKey, payload).Err(); err != nil {
		return "", fmt.Errorf("failed to enqueue job: %w", err)
	}
	return job.ID, nil
}

// Status returns the current state of a job. Unknown handles report PENDING,
// mirroring queue systems that cannot distinguish unknown from not-started.
func (q *Queue) Status(ctx context.Context, id string) (*JobStatus, error) {
	fields, err := q.rdb.HGetAll(ctx, jobKeyPrefix+id).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read job status: %w", err)
	}

	status := &JobStatus{ID: id, Status: StatusPending}
	if s, ok := fields["status"]; ok && s != "" {
		status.Status = s
	}
	if raw, ok := fields["meta"]; ok && raw != "" {
		_ = json.Unmarshal([]byte(raw), &status.Meta)
	}
	if raw, ok := fields["result"]; ok && raw != "" {
		_ = json.Unmarshal([]byte(raw), &status.Result)
	}
	if e, ok := fields["error"]; ok {
		status.Error = e
	}
	return status, nil
}

// dequeue blocks until a job is available or the context ends.
func (q *Queue) dequeue(ctx context.Context, timeout time.Duration) (*Job, error) {
	res, err := q.rdb.BRPop(ctx, timeout, jobListKey).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	// BRPOP returns [key, value].
	var job Job
	if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job: %w", err)
	}
	return &job, nil
}

func (q *Queue) setProcessing(ctx context.Context, id string, meta map[string]interface{}) {
	payload, _ := json.Marshal(meta)
	q.rdb.HSet(ctx, jobKeyPrefix+id, "status", StatusProcessing, "meta", string(payload))
}

func (q *Queue) setSuccess(ctx context.Context, id string, result map[string]interface{}) {
	payload, _ := json.Marshal(result)
	q.rdb.HSet(ctx, jobKeyPrefix+id, "status", StatusSuccess, "result", string(payload))
}

func (q *Queue) setFailure(ctx context.Context, id string, jobErr error) {
	q.rdb.HSet(ctx, jobKeyPrefix+id, "status", StatusFailure, "error", jobErr.Error())
}
