// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package jobs implements the asynchronous mockup pipeline: a RabbitMQ
// publisher and consumer pair providing at-least-once delivery with a
// bounded retry budget and capped concurrency, Valkey-backed step
// memoization so retried jobs skip completed steps, and the two job
// handlers (generate, edit) that drive the mockup state machine.
package jobs

import (
	"github.com/google/uuid"

	"uisketch/internal/ai"
	"uisketch/internal/models"
)

// Queue names double as event names. Queues are durable and messages
// persistent, so enqueued work survives broker restarts.
const (
	QueueGenerationRequested = "mockup.generation.requested"
	QueueVariationEdit       = "mockup.variation.edit.requested"
)

// GenerationRequested asks for N design variations of a freshly created
// PENDING mockup. JobID is assigned at publish time and stays stable
// across retries; it keys the step memoization.
type GenerationRequested struct {
	JobID      string            `json:"jobId"`
	MockupID   uuid.UUID         `json:"mockupId"`
	ProjectID  uuid.UUID         `json:"projectId"`
	UserID     uuid.UUID         `json:"userId"`
	Prompt     string            `json:"prompt"`
	DeviceType models.DeviceType `json:"deviceType"`
	UILibrary  models.UILibrary  `json:"uiLibrary"`
	AIModel    ai.ModelTier      `json:"aiModel"`
}

// VariationEditRequested asks for an AI edit against one existing version.
// The payload carries the version's current code so the handler does not
// depend on read ordering against concurrent writers.
type VariationEditRequested struct {
	JobID       string       `json:"jobId"`
	VersionID   uuid.UUID    `json:"versionId"`
	MockupID    uuid.UUID    `json:"mockupId"`
	CurrentHTML string       `json:"currentHtml"`
	EditPrompt  string       `json:"editPrompt"`
	AIModel     ai.ModelTier `json:"aiModel"`
}
