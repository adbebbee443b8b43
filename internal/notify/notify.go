// Copyright (c) 2026 Lexora. All rights reserved.
// Author: dev@lexora.app

/*
Package notify implements asynchronous outbound notifications.

Domain services never talk to an email provider directly. They enqueue a
[Job] onto a Redis-backed queue and return immediately; a background [Worker]
drains the queue and delivers through an [EmailSender].

Delivery Semantics:

  - At-least-once: A job is re-enqueued on delivery failure.
  - Bounded retries: After [MaxAttempts] the job moves to a dead-letter list.
  - Isolation: Email provider outages never surface as API errors.
*/
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lexora-app/lexora/pkg/uuid"
)

// # Job Model

// Kind identifies the notification template a job resolves to.
type Kind string

const (
	// KindWelcome greets a freshly provisioned account.
	KindWelcome Kind = "welcome"
	// KindPasswordReset carries a password reset link.
	KindPasswordReset Kind = "password_reset"
)

// Job is the unit of work flowing through the notification queue.
type Job struct {
	ID   string `json:"id"`
	Kind Kind   `json:"kind"`

	// Recipient fields.
	Email string `json:"email"`
	Name  string `json:"name"`

	// Params holds template-specific values (e.g. the reset URL).
	Params map[string]string `json:"params,omitempty"`

	// Attempts counts delivery tries for the retry/dead-letter policy.
	Attempts   int       `json:"attempts"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// # Queue Contract

// Queue defines the enqueue side of the notification pipeline.
//
// # Why an interface?
//
// Domain services depend on this interface only, so tests can capture jobs
// in memory and the Redis implementation stays swappable.
type Queue interface {
	// Enqueue pushes a job onto the pending queue.
	Enqueue(context context.Context, job *Job) error
}

// # Dispatcher

// Dispatcher is the producer-side facade used by domain services.
//
// It satisfies both the user service's and the auth service's notifier
// contracts with one enqueue-only implementation.
type Dispatcher struct {
	queue Queue
}

// NewDispatcher constructs a [Dispatcher] over the given queue.
func NewDispatcher(queue Queue) *Dispatcher {
	return &Dispatcher{queue: queue}
}

/*
SendWelcome enqueues a welcome email for a freshly created account.

Parameters:
  - context: context.Context
  - email: string (recipient address)
  - name: string (recipient display name)

Returns:
  - error: Enqueue failures only; delivery happens asynchronously
*/
func (dispatcher *Dispatcher) SendWelcome(context context.Context, email, name string) error {
	return dispatcher.queue.Enqueue(context, newJob(KindWelcome, email, name, nil))
}

/*
SendPasswordReset enqueues a password reset email carrying the reset link.

Parameters:
  - context: context.Context
  - email: string (recipient address)
  - name: string (recipient display name)
  - resetURL: string (single-purpose link with the reset token)

Returns:
  - error: Enqueue failures only; delivery happens asynchronously
*/
func (dispatcher *Dispatcher) SendPasswordReset(context context.Context, email, name, resetURL string) error {
	return dispatcher.queue.Enqueue(context, newJob(KindPasswordReset, email, name, map[string]string{
		ParamResetURL: resetURL,
	}))
}

// ParamResetURL is the job parameter key holding the password reset link.
const ParamResetURL = "reset_url"

// newJob assembles a job with a fresh time-sortable ID.
func newJob(kind Kind, email, name string, params map[string]string) *Job {
	return &Job{
		ID:         uuid.New(),
		Kind:       kind,
		Email:      email,
		Name:       name,
		Params:     params,
		EnqueuedAt: time.Now(),
	}
}

// # Serialization

// Marshal encodes a job for queue transport.
func (job *Job) Marshal() ([]byte, error) {
	payload, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("notify_job_marshal_failed: %w", err)
	}
	return payload, nil
}

// UnmarshalJob decodes a job from queue transport.
func UnmarshalJob(payload []byte) (*Job, error) {
	job := &Job{}
	if err := json.Unmarshal(payload, job); err != nil {
		return nil, fmt.Errorf("notify_job_unmarshal_failed: %w", err)
	}
	return job, nil
}
