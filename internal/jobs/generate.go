// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"uisketch/internal/engine"
	"uisketch/internal/models"
)

// mockupWriter is the slice of the mockup store the handlers need.
type mockupWriter interface {
	UpdateStatus(id uuid.UUID, status models.MockupStatus) error
	UpdateStatusAndCode(id uuid.UUID, status models.MockupStatus, code string) error
	UpdateCode(id uuid.UUID, code string) error
}

// versionWriter is the slice of the version store the handlers need.
type versionWriter interface {
	Upsert(mockupID uuid.UUID, version int, code, prompt string) (*models.MockupVersion, error)
	FindByID(id uuid.UUID) (*models.MockupVersion, error)
	UpdateContent(id uuid.UUID, code, prompt string) error
}

// generator is the slice of the generation engine the handlers need.
type generator interface {
	GenerateVariations(ctx context.Context, input engine.GenerationInput) *engine.VariationsResult
	EditCode(ctx context.Context, input engine.EditInput) *engine.EditResult
}

// GenerateHandler drives the mockup state machine:
//
//	PENDING -> GENERATING -> COMPLETED  (>= 1 accepted variation)
//	PENDING -> GENERATING -> FAILED     (none accepted, or engine failure)
//
// Every step is memoized per job id, so a retried run re-executes only the
// steps that had not completed.
type GenerateHandler struct {
	mockups  mockupWriter
	versions versionWriter
	engine   generator
}

// NewGenerateHandler wires the generate handler's collaborators.
func NewGenerateHandler(mockups mockupWriter, versions versionWriter, eng generator) *GenerateHandler {
	return &GenerateHandler{mockups: mockups, versions: versions, engine: eng}
}

// Handle processes one generation request. Generation failures are
// recorded as a terminal FAILED status and return nil; only store or
// memoization errors propagate to trigger a retry.
func (h *GenerateHandler) Handle(ctx context.Context, job *Job) error {
	var ev GenerationRequested
	if err := json.Unmarshal(job.Payload, &ev); err != nil {
		return fmt.Errorf("generate payload decode: %w", err)
	}

	if _, err := RunStep(ctx, job, "update-status-generating", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, h.mockups.UpdateStatus(ev.MockupID, models.MockupStatusGenerating)
	}); err != nil {
		return err
	}

	result, err := RunStep(ctx, job, "generate-ui-variations", func(ctx context.Context) (*engine.VariationsResult, error) {
		return h.engine.GenerateVariations(ctx, engine.GenerationInput{
			Prompt:     ev.Prompt,
			DeviceType: ev.DeviceType,
			UILibrary:  ev.UILibrary,
			Model:      ev.AIModel,
		}), nil
	})
	if err != nil {
		return err
	}

	if !result.Success || len(result.Variations) == 0 {
		reason := result.Error
		if reason == "" {
			reason = "No variations generated"
		}
		if _, err := RunStep(ctx, job, "update-status-failed", func(ctx context.Context) (struct{}, error) {
			// The diagnostic lands in the code field; status plus this
			// comment is the only failure signal polling clients see.
			code := "// generation failed: " + reason
			return struct{}{}, h.mockups.UpdateStatusAndCode(ev.MockupID, models.MockupStatusFailed, code)
		}); err != nil {
			return err
		}
		slog.Warn("mockup generation failed",
			"mockup_id", ev.MockupID,
			"reason", reason,
			"tokens_used", result.TokensUsed,
		)
		return nil
	}

	if _, err := RunStep(ctx, job, "save-variations", func(ctx context.Context) (struct{}, error) {
		variations := result.Variations

		// The first accepted variation becomes the mockup's canonical code.
		if err := h.mockups.UpdateStatusAndCode(ev.MockupID, models.MockupStatusCompleted, variations[0].Code); err != nil {
			return struct{}{}, err
		}

		// Version numbers follow array order, 1..N. Upserting by
		// (mockup id, version) keeps a re-run of this step from
		// duplicating rows after a partial failure.
		for i, variation := range variations {
			prompt := ev.Prompt
			if i > 0 {
				prompt = fmt.Sprintf("%s (%s)", ev.Prompt, variation.Label)
			}
			if _, err := h.versions.Upsert(ev.MockupID, i+1, variation.Code, prompt); err != nil {
				return struct{}{}, err
			}
		}
		return struct{}{}, nil
	}); err != nil {
		return err
	}

	slog.Info("mockup generation completed",
		"mockup_id", ev.MockupID,
		"variations", len(result.Variations),
		"tokens_used", result.TokensUsed,
	)
	return nil
}
