// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"uisketch/internal/engine"
)

// EditHandler applies an AI edit to one existing mockup version. Edits
// rewrite the version row in place; the mockup's status never changes.
type EditHandler struct {
	mockups  mockupWriter
	versions versionWriter
	engine   generator
}

// NewEditHandler wires the edit handler's collaborators.
func NewEditHandler(mockups mockupWriter, versions versionWriter, eng generator) *EditHandler {
	return &EditHandler{mockups: mockups, versions: versions, engine: eng}
}

// Handle processes one edit request. Engine failures leave the store
// untouched and return nil; only store or memoization errors propagate.
func (h *EditHandler) Handle(ctx context.Context, job *Job) error {
	var ev VariationEditRequested
	if err := json.Unmarshal(job.Payload, &ev); err != nil {
		return fmt.Errorf("edit payload decode: %w", err)
	}

	result, err := RunStep(ctx, job, "edit-ui-code", func(ctx context.Context) (*engine.EditResult, error) {
		return h.engine.EditCode(ctx, engine.EditInput{
			CurrentHTML: ev.CurrentHTML,
			EditPrompt:  ev.EditPrompt,
			Model:       ev.AIModel,
		}), nil
	})
	if err != nil {
		return err
	}

	if !result.Success || result.Code == "" {
		slog.Warn("variation edit failed",
			"version_id", ev.VersionID,
			"mockup_id", ev.MockupID,
			"reason", result.Error,
		)
		return nil
	}

	if _, err := RunStep(ctx, job, "update-version", func(ctx context.Context) (struct{}, error) {
		version, err := h.versions.FindByID(ev.VersionID)
		if err != nil {
			return struct{}{}, err
		}
		if version == nil {
			// The mockup (and its versions) was deleted while the edit
			// was queued. Nothing to update.
			slog.Warn("edit target version no longer exists", "version_id", ev.VersionID)
			return struct{}{}, nil
		}

		if err := h.versions.UpdateContent(ev.VersionID, result.Code, ev.EditPrompt); err != nil {
			return struct{}{}, err
		}

		// Version 1 is the canonical snapshot surfaced outside the
		// version list, so its edits propagate to the mockup itself.
		if version.Version == 1 {
			if err := h.mockups.UpdateCode(ev.MockupID, result.Code); err != nil {
				return struct{}{}, err
			}
		}
		return struct{}{}, nil
	}); err != nil {
		return err
	}

	slog.Info("variation edit completed",
		"version_id", ev.VersionID,
		"mockup_id", ev.MockupID,
		"tokens_used", result.TokensUsed,
	)
	return nil
}
