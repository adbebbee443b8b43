// Copyright (c) 2026 Lexora. All rights reserved.
// Author: dev@lexora.app

package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lexora-app/lexora/internal/platform/constants"
)

// ErrQueueEmpty is returned by Dequeue when no job arrived within the window.
var ErrQueueEmpty = errors.New("notify: queue empty")

// RedisQueue implements the notification queue on Redis lists.
//
// # Layout
//
// Pending jobs live in a single list (LPUSH producer side, BRPOP consumer
// side, so delivery order is FIFO). Jobs that exhaust their retries are moved
// to a dead-letter list for manual inspection.
type RedisQueue struct {
	client   *redis.Client
	queueKey string
	deadKey  string
}

// NewRedisQueue creates a queue over the standard notification keys.
func NewRedisQueue(client *redis.Client) *RedisQueue {
	return &RedisQueue{
		client:   client,
		queueKey: constants.RedisKeyNotifyQueue,
		deadKey:  constants.RedisKeyNotifyDeadLetter,
	}
}

/*
Enqueue pushes a job onto the pending queue.

Parameters:
  - context: context.Context
  - job: *Job

Returns:
  - error: Serialization or Redis failures
*/
func (queue *RedisQueue) Enqueue(context context.Context, job *Job) error {
	payload, err := job.Marshal()
	if err != nil {
		return err
	}

	if err := queue.client.LPush(context, queue.queueKey, payload).Err(); err != nil {
		return fmt.Errorf("redis_notify_enqueue_failed: %w", err)
	}

	return nil
}

/*
Dequeue blocks until a job arrives or the timeout elapses.

Description: Returns [ErrQueueEmpty] on timeout so the worker loop can check
for shutdown between polls.

Parameters:
  - context: context.Context
  - timeout: time.Duration (BRPOP block window)

Returns:
  - *Job: Next pending job
  - error: ErrQueueEmpty, deserialization, or Redis failures
*/
func (queue *RedisQueue) Dequeue(context context.Context, timeout time.Duration) (*Job, error) {
	result, err := queue.client.BRPop(context, timeout, queue.queueKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrQueueEmpty
		}
		return nil, fmt.Errorf("redis_notify_dequeue_failed: %w", err)
	}

	// BRPOP returns [key, value].
	if len(result) != 2 {
		return nil, fmt.Errorf("redis_notify_dequeue_malformed_reply: %d elements", len(result))
	}

	return UnmarshalJob([]byte(result[1]))
}

/*
DeadLetter parks a job that exhausted its delivery attempts.

Parameters:
  - context: context.Context
  - job: *Job

Returns:
  - error: Serialization or Redis failures
*/
func (queue *RedisQueue) DeadLetter(context context.Context, job *Job) error {
	payload, err := job.Marshal()
	if err != nil {
		return err
	}

	if err := queue.client.LPush(context, queue.deadKey, payload).Err(); err != nil {
		return fmt.Errorf("redis_notify_dead_letter_failed: %w", err)
	}

	return nil
}
