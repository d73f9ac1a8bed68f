package uploadinfra

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/Abraxas-365/cvscreen/screening/upload"
)

// RedisQueue implements upload.JobQueue on a Redis list.
type RedisQueue struct {
	client    *redis.Client
	queueName string
}

func NewRedisQueue(client *redis.Client, queueName string) upload.JobQueue {
	return &RedisQueue{
		client:    client,
		queueName: queueName,
	}
}

// Enqueue adds a processing task to the queue
func (q *RedisQueue) Enqueue(ctx context.Context, task upload.ProcessingTask) error {
	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal task for resume %s: %w", task.ResumeID, err)
	}

	if err := q.client.LPush(ctx, q.queueName, data).Err(); err != nil {
		return fmt.Errorf("enqueue resume %s: %w", task.ResumeID, err)
	}

	return nil
}

// Dequeue pops a task, blocking up to timeout. Returns nil bytes on timeout.
func (q *RedisQueue) Dequeue(ctx context.Context, timeout time.Duration) ([]byte, error) {
	result, err := q.client.BRPop(ctx, timeout, q.queueName).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // No tasks available
		}
		return nil, fmt.Errorf("dequeue task: %w", err)
	}

	if len(result) < 2 {
		return nil, fmt.Errorf("invalid result from queue: expected 2 elements, got %d", len(result))
	}

	return []byte(result[1]), nil
}

// Size returns the number of queued tasks
func (q *RedisQueue) Size(ctx context.Context) (int64, error) {
	size, err := q.client.LLen(ctx, q.queueName).Result()
	if err != nil {
		return 0, fmt.Errorf("get queue size: %w", err)
	}
	return size, nil
}

// Clear removes all queued tasks (testing/maintenance)
func (q *RedisQueue) Clear(ctx context.Context) error {
	if err := q.client.Del(ctx, q.queueName).Err(); err != nil {
		return fmt.Errorf("clear queue: %w", err)
	}
	return nil
}

// Ping checks if the Redis connection is alive
func (q *RedisQueue) Ping(ctx context.Context) error {
	return q.client.Ping(ctx).Err()
}

// QueueDispatcher pushes tasks onto the queue for the worker pool.
type QueueDispatcher struct {
	queue upload.JobQueue
}

func NewQueueDispatcher(queue upload.JobQueue) upload.Dispatcher {
	return &QueueDispatcher{queue: queue}
}

func (d *QueueDispatcher) Dispatch(ctx context.Context, task upload.ProcessingTask) error {
	return d.queue.Enqueue(ctx, task)
}
