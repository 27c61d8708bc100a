// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package engine

import (
	"context"
	"log/slog"

	"uisketch/internal/ai"
	"uisketch/internal/models"
)

// Sampling temperatures: variations favor diversity, edits favor fidelity.
const (
	variationsTemperature = 0.8
	editTemperature       = 0.5
)

// GenerationInput is a request for N design variations of one prompt.
type GenerationInput struct {
	Prompt     string
	DeviceType models.DeviceType
	UILibrary  models.UILibrary
	Model      ai.ModelTier
}

// VariationsResult is the outcome of a variations generation. Business
// failures (provider error, zero valid variations) are carried in Error
// with Success=false; the engine never returns a Go error for them.
type VariationsResult struct {
	Success    bool        `json:"success"`
	Variations []Variation `json:"variations,omitempty"`
	Error      string      `json:"error,omitempty"`
	TokensUsed int         `json:"tokensUsed,omitempty"`
}

// EditInput is a request to apply one change to an existing artifact.
type EditInput struct {
	CurrentHTML string
	EditPrompt  string
	Model       ai.ModelTier
}

// EditResult is the outcome of an edit generation.
type EditResult struct {
	Success    bool   `json:"success"`
	Code       string `json:"code,omitempty"`
	Error      string `json:"error,omitempty"`
	TokensUsed int    `json:"tokensUsed,omitempty"`
}

// Engine drives model calls for mockup generation and editing, composing
// the extractor and validator into structured results.
type Engine struct {
	catalog *ai.Catalog
}

// New creates an Engine over the given model catalog.
func New(catalog *ai.Catalog) *Engine {
	return &Engine{catalog: catalog}
}

// GenerateVariations asks the model for design variations and keeps the
// ones that pass validation. Provider and configuration errors are logged
// and converted into a generic failure result so callers can persist a
// deterministic failure state without leaking provider internals.
func (e *Engine) GenerateVariations(ctx context.Context, input GenerationInput) *VariationsResult {
	provider, err := e.catalog.Resolve(input.Model)
	if err != nil {
		slog.Error("ai variations generation error", "error", err, "model", input.Model)
		return &VariationsResult{
			Success: false,
			Error:   "An unexpected error occurred during generation",
		}
	}

	systemPrompt := variationsSystemPrompt(input.UILibrary, input.DeviceType)
	userPrompt := variationsUserPrompt(input.Prompt)

	result, err := provider.GenerateText(ctx, systemPrompt, userPrompt, variationsTemperature)
	if err != nil {
		slog.Error("ai variations generation error", "error", err, "provider", provider.Name())
		return &VariationsResult{
			Success: false,
			Error:   "An unexpected error occurred during generation",
		}
	}

	var valid []Variation
	for _, variation := range ExtractVariations(result.Text) {
		if err := ValidateCode(variation.Code); err != nil {
			slog.Warn("variation failed validation",
				"variation", variation.ID,
				"reason", err,
			)
			continue
		}
		valid = append(valid, variation)
	}

	if len(valid) == 0 {
		return &VariationsResult{
			Success:    false,
			Error:      "No valid variations were generated",
			TokensUsed: result.TokensUsed,
		}
	}

	return &VariationsResult{
		Success:    true,
		Variations: valid,
		TokensUsed: result.TokensUsed,
	}
}

// EditCode applies one edit instruction to existing markup. There is only
// a single candidate, so a validation rejection surfaces immediately as
// the result's failure reason.
func (e *Engine) EditCode(ctx context.Context, input EditInput) *EditResult {
	provider, err := e.catalog.Resolve(input.Model)
	if err != nil {
		slog.Error("ai edit error", "error", err, "model", input.Model)
		return &EditResult{
			Success: false,
			Error:   "An unexpected error occurred during editing",
		}
	}

	result, err := provider.GenerateText(ctx, editSystemPrompt(), editUserPrompt(input.CurrentHTML, input.EditPrompt), editTemperature)
	if err != nil {
		slog.Error("ai edit error", "error", err, "provider", provider.Name())
		return &EditResult{
			Success: false,
			Error:   "An unexpected error occurred during editing",
		}
	}

	code := ExtractCode(result.Text)
	if err := ValidateCode(code); err != nil {
		return &EditResult{
			Success:    false,
			Error:      "Edited code validation failed: " + err.Error(),
			TokensUsed: result.TokensUsed,
		}
	}

	return &EditResult{
		Success:    true,
		Code:       code,
		TokensUsed: result.TokensUsed,
	}
}
