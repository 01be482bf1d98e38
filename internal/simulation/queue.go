// internal/simulation/queue.go
package simulation

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"pfs-target-uploader/internal/common/database"
	apperrors "pfs-target-uploader/internal/common/errors"
	"pfs-target-uploader/internal/common/metrics"
)

// Queue is a FIFO job queue on a Redis list. Producers LPUSH, the worker
// BRPOPs.
type Queue struct {
	redis        *database.RedisClient
	key          string
	blockTimeout time.Duration
}

// NewQueue creates a Queue on the given list key.
func NewQueue(rdb *database.RedisClient, key string, blockTimeout time.Duration) *Queue {
	return &Queue{redis: rdb, key: key, blockTimeout: blockTimeout}
}

// Enqueue pushes a job onto the queue.
func (q *Queue) Enqueue(ctx context.Context, job *Job) error {
	payload, err := job.Encode()
	if err != nil {
		return apperrors.NewQueueUnavailableError(err)
	}
	if err := q.redis.Client.LPush(ctx, q.key, payload).Err(); err != nil {
		return apperrors.NewQueueUnavailableError(err)
	}
	if depth, err := q.Depth(ctx); err == nil {
		metrics.QueueDepth.Set(float64(depth))
	}
	return nil
}

// Dequeue blocks for up to the configured timeout and returns the oldest
// job. It returns (nil, nil) when the timeout elapses with an empty queue.
// Payloads failing schema validation are counted and reported as a
// non-retryable error.
func (q *Queue) Dequeue(ctx context.Context) (*Job, error) {
	vals, err := q.redis.Client.BRPop(ctx, q.blockTimeout, q.key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, apperrors.NewQueueUnavailableError(err)
	}
	// BRPop returns [key, value].
	if len(vals) != 2 {
		return nil, apperrors.NewQueueUnavailableError(
			errors.New("unexpected BRPOP reply shape"))
	}

	job, err := DecodeJob([]byte(vals[1]))
	if err != nil {
		metrics.InvalidJobPayloads.Inc()
		return nil, err
	}

	if depth, derr := q.Depth(ctx); derr == nil {
		metrics.QueueDepth.Set(float64(depth))
	}
	return job, nil
}

// Depth returns the number of waiting jobs.
func (q *Queue) Depth(ctx context.Context) (int64, error) {
	n, err := q.redis.Client.LLen(ctx, q.key).Result()
	if err != nil {
		return 0, apperrors.NewQueueUnavailableError(err)
	}
	return n, nil
}
