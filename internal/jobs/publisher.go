// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// retryCountHeader carries how many times a message has been re-enqueued
// after a failed handler run.
const retryCountHeader = "x-retry-count"

// Publisher enqueues job events onto durable RabbitMQ queues. A fresh
// connection is dialed per publish; enqueues are rare (one per user
// request) and this keeps the publisher free of connection-recovery state.
type Publisher struct {
	url string
}

// NewPublisher creates a Publisher for the given AMQP broker URL.
func NewPublisher(url string) *Publisher {
	return &Publisher{url: url}
}

// Publish marshals the event and enqueues it as a persistent message on
// the named queue, declaring the queue first so publish order relative to
// consumer startup does not matter.
func (p *Publisher) Publish(ctx context.Context, queue string, event any) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("publish marshal: %w", err)
	}
	return p.publishRaw(ctx, queue, body, 0)
}

// publishRaw enqueues raw bytes with the given retry count. Shared by
// Publish and the runner's retry path.
func (p *Publisher) publishRaw(ctx context.Context, queue string, body []byte, retryCount int) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("amqp dial: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("amqp channel: %w", err)
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("amqp queue declare: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Headers:      amqp.Table{retryCountHeader: int32(retryCount)},
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx, "", queue, false, false, pub); err != nil {
		return fmt.Errorf("amqp publish: %w", err)
	}
	return nil
}
