// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"uisketch/internal/config"
)

// Handler processes one delivered job. Business failures (validation, zero
// variations) are handled inside and return nil; a non-nil error means the
// run genuinely failed (store unavailable, memoization down) and the
// message is re-enqueued until the retry budget is exhausted.
type Handler func(ctx context.Context, job *Job) error

// Job is one delivered unit of work. ID is the publish-time job id parsed
// from the payload; it keys step memoization across retries.
type Job struct {
	ID      string
	Queue   string
	Payload []byte
	memo    stepMemo
}

// jobIDEnvelope extracts just the job id from any event payload.
type jobIDEnvelope struct {
	JobID string `json:"jobId"`
}

// Runner consumes job queues and dispatches deliveries to registered
// handlers. Per handler type, at most cfg.MaxConcurrent instances run at
// once (enforced both by a semaphore and the channel prefetch); excess
// messages stay queued on the broker, backpressuring the model provider.
type Runner struct {
	url       string
	cfg       config.Jobs
	memo      stepMemo
	publisher *Publisher
	handlers  map[string]Handler
}

// NewRunner creates a Runner connecting to the given broker URL.
func NewRunner(url string, cfg config.Jobs, memo *StepStore) *Runner {
	return &Runner{
		url:       url,
		cfg:       cfg,
		memo:      memo,
		publisher: NewPublisher(url),
		handlers:  make(map[string]Handler),
	}
}

// Register binds a handler to a queue. Must be called before Start.
func (r *Runner) Register(queue string, h Handler) {
	r.handlers[queue] = h
}

// Start launches one consumer goroutine per registered queue and returns.
// Each consumer runs a reconnect loop with exponential backoff until the
// context is cancelled.
func (r *Runner) Start(ctx context.Context) {
	for queue, handler := range r.handlers {
		go r.consumeForever(ctx, queue, handler)
	}
}

// consumeForever keeps a consumer alive across broker outages.
func (r *Runner) consumeForever(ctx context.Context, queue string, handler Handler) {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return
		}

		conn, err := amqp.Dial(r.url)
		if err != nil {
			slog.Error("job runner dial failed", "queue", queue, "error", err, "retry_in", backoff.String())
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := r.consumeLoop(ctx, conn, queue, handler); err != nil {
			slog.Error("job runner consume loop ended", "queue", queue, "error", err)
		}
		conn.Close()
	}
}

// consumeLoop declares the queue and processes deliveries until the
// connection drops or the context is cancelled.
func (r *Runner) consumeLoop(ctx context.Context, conn *amqp.Connection, queue string, handler Handler) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer ch.Close()

	// Prefetch matches the concurrency cap so the broker never hands this
	// consumer more in-flight work than it will run.
	if err := ch.Qos(r.cfg.MaxConcurrent, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	sem := make(chan struct{}, r.cfg.MaxConcurrent)
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			sem <- struct{}{}
			go func(d amqp.Delivery) {
				defer func() { <-sem }()
				r.dispatch(ctx, queue, handler, d)
			}(d)
		}
	}
}

// dispatch runs the handler for one delivery and settles the message:
// success and business failures ack; handler errors re-enqueue with an
// incremented retry count until the budget is spent, then the message is
// dropped with an error log.
func (r *Runner) dispatch(ctx context.Context, queue string, handler Handler, d amqp.Delivery) {
	job := &Job{
		ID:      jobID(d.Body),
		Queue:   queue,
		Payload: d.Body,
		memo:    r.memo,
	}

	start := time.Now()
	err := handler(ctx, job)
	if err == nil {
		slog.Info("job completed", "queue", queue, "job_id", job.ID, "duration", time.Since(start).String())
		_ = d.Ack(false)
		return
	}

	attempt := retryCount(d)
	if attempt < r.cfg.MaxRetries {
		slog.Warn("job failed, re-enqueueing",
			"queue", queue,
			"job_id", job.ID,
			"attempt", attempt+1,
			"error", err,
		)
		if pubErr := r.publisher.publishRaw(ctx, queue, d.Body, attempt+1); pubErr != nil {
			// Could not re-enqueue; leave the original unacked so the
			// broker redelivers it.
			slog.Error("job re-enqueue failed", "queue", queue, "job_id", job.ID, "error", pubErr)
			_ = d.Nack(false, true)
			return
		}
		_ = d.Ack(false)
		return
	}

	slog.Error("job retry budget exhausted, dropping",
		"queue", queue,
		"job_id", job.ID,
		"attempts", attempt+1,
		"error", err,
	)
	_ = d.Ack(false)
}

// jobID parses the stable job id out of the payload. Falls back to empty
// (memoization then keys per-step only within this payload's id space).
func jobID(body []byte) string {
	var env jobIDEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return ""
	}
	return env.JobID
}

// retryCount reads the re-enqueue counter from the delivery headers.
func retryCount(d amqp.Delivery) int {
	v, ok := d.Headers[retryCountHeader]
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case int32:
		return int(n)
	case int64:
		return int(n)
	case int:
		return n
	}
	return 0
}
