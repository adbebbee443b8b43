// Copyright (c) 2026 Lexora. All rights reserved.
// Author: dev@lexora.app

package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// # Test Fakes

// memoryQueue is an in-memory WorkerQueue.
type memoryQueue struct {
	pending []*Job
	dead    []*Job
}

func (q *memoryQueue) Enqueue(_ context.Context, job *Job) error {
	q.pending = append(q.pending, job)
	return nil
}

func (q *memoryQueue) Dequeue(_ context.Context, _ time.Duration) (*Job, error) {
	if len(q.pending) == 0 {
		return nil, ErrQueueEmpty
	}
	job := q.pending[0]
	q.pending = q.pending[1:]
	return job, nil
}

func (q *memoryQueue) DeadLetter(_ context.Context, job *Job) error {
	q.dead = append(q.dead, job)
	return nil
}

// stubSender fails the first failures deliveries, then succeeds.
type stubSender struct {
	failures  int
	delivered []Email
}

func (s *stubSender) Send(_ context.Context, email Email) error {
	if s.failures > 0 {
		s.failures--
		return errors.New("provider unavailable")
	}
	s.delivered = append(s.delivered, email)
	return nil
}

func newTestWorker(queue WorkerQueue, sender EmailSender) *Worker {
	return NewWorker(queue, sender, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

/*
TestDispatcher_Enqueue verifies the producer side: jobs land on the queue
with the right kind, recipient, and parameters, and survive a marshal round.
*/
func TestDispatcher_Enqueue(t *testing.T) {
	queue := &memoryQueue{}
	dispatcher := NewDispatcher(queue)

	require.NoError(t, dispatcher.SendWelcome(context.Background(), "member@example.com", "Ada Lovelace"))
	require.NoError(t, dispatcher.SendPasswordReset(context.Background(), "member@example.com", "Ada Lovelace",
		"https://lexora.app/reset-password?token=abc"))

	require.Len(t, queue.pending, 2)

	welcome := queue.pending[0]
	assert.Equal(t, KindWelcome, welcome.Kind)
	assert.Equal(t, "member@example.com", welcome.Email)
	assert.NotEmpty(t, welcome.ID)

	reset := queue.pending[1]
	assert.Equal(t, KindPasswordReset, reset.Kind)
	assert.Equal(t, "https://lexora.app/reset-password?token=abc", reset.Params[ParamResetURL])

	// Wire round-trip: what the worker sees equals what was enqueued.
	payload, err := reset.Marshal()
	require.NoError(t, err)
	decoded, err := UnmarshalJob(payload)
	require.NoError(t, err)
	assert.Equal(t, reset.ID, decoded.ID)
	assert.Equal(t, reset.Params, decoded.Params)
}

/*
TestWorker_Delivery verifies the happy path: one attempt, one rendered email.
*/
func TestWorker_Delivery(t *testing.T) {
	queue := &memoryQueue{}
	sender := &stubSender{}
	worker := newTestWorker(queue, sender)

	job := newJob(KindPasswordReset, "member@example.com", "Ada", map[string]string{
		ParamResetURL: "https://lexora.app/reset-password?token=abc",
	})

	worker.process(context.Background(), job)

	require.Len(t, sender.delivered, 1)
	email := sender.delivered[0]
	assert.Equal(t, "member@example.com", email.To)
	assert.Contains(t, email.HTMLBody, "https://lexora.app/reset-password?token=abc")
	assert.Equal(t, 1, job.Attempts)
	assert.Empty(t, queue.pending)
	assert.Empty(t, queue.dead)
}

/*
TestWorker_RetryThenDeadLetter verifies the at-least-once policy: failed
deliveries re-enqueue until the attempt budget is spent, then park the job.
*/
func TestWorker_RetryThenDeadLetter(t *testing.T) {
	queue := &memoryQueue{}
	sender := &stubSender{failures: MaxAttempts + 1}
	worker := newTestWorker(queue, sender)

	job := newJob(KindWelcome, "member@example.com", "Ada", nil)
	worker.process(context.Background(), job)

	// First failure: back on the queue with one attempt recorded.
	require.Len(t, queue.pending, 1)
	assert.Equal(t, 1, queue.pending[0].Attempts)

	// Drain the queue until the job dies.
	for len(queue.pending) > 0 {
		next, err := queue.Dequeue(context.Background(), 0)
		require.NoError(t, err)
		worker.process(context.Background(), next)
	}

	require.Len(t, queue.dead, 1)
	assert.Equal(t, MaxAttempts, queue.dead[0].Attempts)
	assert.Empty(t, sender.delivered)
}

/*
TestWorker_MalformedJob verifies that unrenderable jobs skip the retry loop
and go straight to the dead-letter list.
*/
func TestWorker_MalformedJob(t *testing.T) {
	tests := []struct {
		name string
		job  *Job
	}{
		{"unknown_kind", newJob(Kind("carrier_pigeon"), "member@example.com", "Ada", nil)},
		{"reset_without_url", newJob(KindPasswordReset, "member@example.com", "Ada", nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			queue := &memoryQueue{}
			sender := &stubSender{}
			worker := newTestWorker(queue, sender)

			worker.process(context.Background(), tt.job)

			assert.Empty(t, queue.pending)
			assert.Len(t, queue.dead, 1)
			assert.Empty(t, sender.delivered)
		})
	}
}
