// Copyright (c) 2026 Lexora. All rights reserved.
// Author: dev@lexora.app

package notify

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// # Worker

const (
	// MaxAttempts is the delivery try budget before a job is dead-lettered.
	MaxAttempts = 3

	// dequeueTimeout bounds each BRPOP so shutdown is noticed promptly.
	dequeueTimeout = 5 * time.Second
)

// WorkerQueue is the consumer-side queue contract.
type WorkerQueue interface {
	Queue
	Dequeue(context context.Context, timeout time.Duration) (*Job, error)
	DeadLetter(context context.Context, job *Job) error
}

// Worker drains the notification queue and delivers email.
//
// # Concurrency
//
// One worker processes jobs sequentially. Email volume here is low (welcome
// and reset mail); run multiple workers against the same queue if that changes.
type Worker struct {
	queue  WorkerQueue
	sender EmailSender
	logger *slog.Logger
}

// NewWorker constructs a [Worker] with its queue and delivery dependencies.
func NewWorker(queue WorkerQueue, sender EmailSender, logger *slog.Logger) *Worker {
	return &Worker{
		queue:  queue,
		sender: sender,
		logger: logger,
	}
}

/*
Run processes jobs until the context is cancelled.

Description: Blocks on the queue in bounded windows. Failed deliveries are
re-enqueued with an incremented attempt counter; jobs that exhaust
[MaxAttempts] are parked on the dead-letter list.

Parameters:
  - context: context.Context (cancel to stop the worker)

Returns:
  - error: Always nil on graceful shutdown; kept for errgroup compatibility
*/
func (worker *Worker) Run(context context.Context) error {
	worker.logger.Info("notify_worker_started")

	for {
		select {
		case <-context.Done():
			worker.logger.Info("notify_worker_stopped")
			return nil
		default:
		}

		job, err := worker.queue.Dequeue(context, dequeueTimeout)
		if err != nil {
			if errors.Is(err, ErrQueueEmpty) {
				continue
			}
			// Context cancellation surfaces as a Redis error mid-BRPOP.
			if context.Err() != nil {
				worker.logger.Info("notify_worker_stopped")
				return nil
			}
			worker.logger.Error("notify_worker_dequeue_failed", slog.Any("error", err))
			// Back off briefly so a Redis outage doesn't spin the loop.
			time.Sleep(time.Second)
			continue
		}

		worker.process(context, job)
	}
}

// process attempts one delivery and applies the retry policy.
func (worker *Worker) process(context context.Context, job *Job) {
	email, err := renderEmail(job)
	if err != nil {
		// Malformed jobs can never succeed. Straight to the dead letter.
		worker.logger.Error("notify_worker_render_failed",
			slog.String("job_id", job.ID),
			slog.Any("error", err),
		)
		worker.park(context, job)
		return
	}

	job.Attempts++

	if err := worker.sender.Send(context, email); err != nil {
		worker.logger.Warn("notify_worker_delivery_failed",
			slog.String("job_id", job.ID),
			slog.String("kind", string(job.Kind)),
			slog.Int("attempts", job.Attempts),
			slog.Any("error", err),
		)

		if job.Attempts >= MaxAttempts {
			worker.park(context, job)
			return
		}

		// At-least-once: put it back for another try.
		if err := worker.queue.Enqueue(context, job); err != nil {
			worker.logger.Error("notify_worker_requeue_failed",
				slog.String("job_id", job.ID),
				slog.Any("error", err),
			)
		}
		return
	}

	worker.logger.Info("notify_worker_delivered",
		slog.String("job_id", job.ID),
		slog.String("kind", string(job.Kind)),
		slog.Int("attempts", job.Attempts),
	)
}

// park moves a job to the dead-letter list.
func (worker *Worker) park(context context.Context, job *Job) {
	if err := worker.queue.DeadLetter(context, job); err != nil {
		worker.logger.Error("notify_worker_dead_letter_failed",
			slog.String("job_id", job.ID),
			slog.Any("error", err),
		)
	}
}
