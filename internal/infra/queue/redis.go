package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"brand-profiler/internal/domain"
)

// RedisAnalyzeQueue реализует очередь задач анализа на базе Redis lists.
type RedisAnalyzeQueue struct {
	client *redis.Client
	key    string
}

var _ domain.AnalyzeQueue = (*RedisAnalyzeQueue)(nil)

// NewRedisAnalyzeQueue создаёт очередь по указанному ключу.
func NewRedisAnalyzeQueue(client *redis.Client, key string) *RedisAnalyzeQueue {
	return &RedisAnalyzeQueue{client: client, key: key}
}

// Enqueue публикует задачу в очередь.
func (q *RedisAnalyzeQueue) Enqueue(ctx context.Context, job domain.AnalyzeJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	if err := q.client.LPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("push job: %w", err)
	}
	return nil
}

// Receive блокирующе читает задачу из очереди. Подтверждение у Redis
// отсутствует, поэтому ack всегда успешен.
func (q *RedisAnalyzeQueue) Receive(ctx context.Context) (domain.AnalyzeJob, domain.AnalyzeAckFunc, error) {
	ack := func(bool) error { return nil }
	for {
		if err := ctx.Err(); err != nil {
			return domain.AnalyzeJob{}, nil, err
		}

		res, err := q.client.BRPop(ctx, time.Second, q.key).Result()
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				if ctx.Err() != nil {
					return domain.AnalyzeJob{}, nil, ctx.Err()
				}
				continue
			}
			if errors.Is(err, redis.Nil) {
				continue
			}
			return domain.AnalyzeJob{}, nil, err
		}
		if len(res) != 2 {
			return domain.AnalyzeJob{}, nil, errors.New("redis queue: unexpected response")
		}
		var job domain.AnalyzeJob
		if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
			return domain.AnalyzeJob{}, nil, fmt.Errorf("decode job: %w", err)
		}
		return job, ack, nil
	}
}
