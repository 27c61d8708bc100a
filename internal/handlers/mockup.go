// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"uisketch/internal/ai"
	"uisketch/internal/jobs"
	"uisketch/internal/middleware"
	"uisketch/internal/models"
)

// createMockupRequest is the body of POST /api/mockups.
type createMockupRequest struct {
	Prompt      string            `json:"prompt"`
	DeviceType  models.DeviceType `json:"deviceType"`
	UILibrary   models.UILibrary  `json:"uiLibrary"`
	AIModel     ai.ModelTier      `json:"aiModel"`
	ProjectName string            `json:"projectName,omitempty"`
}

// CreateMockup accepts a generation request: it checks the caller's credit
// eligibility, creates the project and PENDING mockup rows, enqueues the
// generation job, and consumes one credit. The mockup itself is filled in
// asynchronously; clients poll GET /api/mockups/{id} for status.
func (a *API) CreateMockup(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromCtx(r.Context())

	var req createMockupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	req.Prompt = strings.TrimSpace(req.Prompt)
	switch {
	case req.Prompt == "":
		writeError(w, http.StatusBadRequest, "Please describe the UI you'd like to generate.")
		return
	case !req.DeviceType.Valid():
		writeError(w, http.StatusBadRequest, "Unknown device type.")
		return
	case !req.UILibrary.Valid():
		writeError(w, http.StatusBadRequest, "Unknown UI library.")
		return
	case !req.AIModel.Valid():
		writeError(w, http.StatusBadRequest, "Unknown AI model.")
		return
	}

	allowed, reason, err := a.ledger.CanUserGenerate(userID)
	if err != nil {
		slog.Error("credit check failed", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "Failed to create mockup.")
		return
	}
	if !allowed {
		writeError(w, http.StatusForbidden, reason)
		return
	}

	projectName := req.ProjectName
	if projectName == "" {
		projectName = "Project " + time.Now().Format("1/2/2006")
	}
	project, err := a.projects.Create(userID, projectName, truncate(req.Prompt, 200))
	if err != nil {
		slog.Error("create project failed", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "Failed to create mockup.")
		return
	}

	mockup, err := a.mockups.Create(&models.Mockup{
		ProjectID:  project.ID,
		Name:       fmt.Sprintf("Mockup - %s...", truncate(req.Prompt, 50)),
		Prompt:     req.Prompt,
		Code:       "", // filled by the generate job
		DeviceType: req.DeviceType,
		UILibrary:  req.UILibrary,
		Status:     models.MockupStatusPending,
	})
	if err != nil {
		slog.Error("create mockup failed", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "Failed to create mockup.")
		return
	}

	event := jobs.GenerationRequested{
		JobID:      uuid.NewString(),
		MockupID:   mockup.ID,
		ProjectID:  project.ID,
		UserID:     userID,
		Prompt:     req.Prompt,
		DeviceType: req.DeviceType,
		UILibrary:  req.UILibrary,
		AIModel:    req.AIModel,
	}
	if err := a.publisher.Publish(r.Context(), jobs.QueueGenerationRequested, event); err != nil {
		slog.Error("enqueue generation failed", "error", err, "mockup_id", mockup.ID)
		writeError(w, http.StatusInternalServerError, "Failed to create mockup.")
		return
	}

	// Eligibility was established above; best-effort under the documented
	// check/increment race.
	if err := a.ledger.IncrementCreditsUsed(userID); err != nil {
		slog.Error("increment credits failed", "error", err, "user_id", userID)
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"success":   true,
		"mockupId":  mockup.ID,
		"projectId": project.ID,
	})
}

// ListMockups returns all of the caller's mockups, newest first.
func (a *API) ListMockups(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromCtx(r.Context())

	mockups, err := a.mockups.ListByUser(userID)
	if err != nil {
		slog.Error("list mockups failed", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "Failed to load mockups.")
		return
	}
	if mockups == nil {
		mockups = []models.MockupWithProject{}
	}
	writeJSON(w, http.StatusOK, mockups)
}

// mockupWithVariations is the response of GET /api/mockups/{id}.
type mockupWithVariations struct {
	models.Mockup
	Variations []models.MockupVersion `json:"variations"`
}

// GetMockup returns one mockup with its versions in ascending order.
// Clients poll this endpoint to observe generation progress. Missing and
// not-owned mockups are both 404 so the response leaks nothing.
func (a *API) GetMockup(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromCtx(r.Context())

	mockupID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Mockup not found.")
		return
	}

	mockup, err := a.mockups.FindByIDForUser(mockupID, userID)
	if err != nil {
		slog.Error("get mockup failed", "error", err, "mockup_id", mockupID)
		writeError(w, http.StatusInternalServerError, "Failed to load mockup.")
		return
	}
	if mockup == nil {
		writeError(w, http.StatusNotFound, "Mockup not found.")
		return
	}

	versions, err := a.versions.ListByMockup(mockup.ID)
	if err != nil {
		slog.Error("list versions failed", "error", err, "mockup_id", mockupID)
		writeError(w, http.StatusInternalServerError, "Failed to load mockup.")
		return
	}
	if versions == nil {
		versions = []models.MockupVersion{}
	}

	writeJSON(w, http.StatusOK, mockupWithVariations{Mockup: *mockup, Variations: versions})
}

// editVariationRequest is the body of the edit endpoint.
type editVariationRequest struct {
	EditPrompt string       `json:"editPrompt"`
	AIModel    ai.ModelTier `json:"aiModel"`
}

// EditVariation enqueues an AI edit against one version of the caller's
// mockup. The version's current code travels in the event payload.
// Versions only exist once generation has completed, so edits against a
// mockup still generating come back 404.
func (a *API) EditVariation(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromCtx(r.Context())

	mockupID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Mockup not found.")
		return
	}
	versionID, err := uuid.Parse(chi.URLParam(r, "versionID"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Version not found.")
		return
	}

	var req editVariationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	req.EditPrompt = strings.TrimSpace(req.EditPrompt)
	if req.EditPrompt == "" {
		writeError(w, http.StatusBadRequest, "Please describe the change you'd like.")
		return
	}
	if !req.AIModel.Valid() {
		writeError(w, http.StatusBadRequest, "Unknown AI model.")
		return
	}

	mockup, err := a.mockups.FindByIDForUser(mockupID, userID)
	if err != nil {
		slog.Error("edit lookup failed", "error", err, "mockup_id", mockupID)
		writeError(w, http.StatusInternalServerError, "Failed to request edit.")
		return
	}
	if mockup == nil {
		writeError(w, http.StatusNotFound, "Mockup not found.")
		return
	}

	version, err := a.versions.FindByIDForMockup(versionID, mockup.ID)
	if err != nil {
		slog.Error("edit version lookup failed", "error", err, "version_id", versionID)
		writeError(w, http.StatusInternalServerError, "Failed to request edit.")
		return
	}
	if version == nil {
		writeError(w, http.StatusNotFound, "Version not found.")
		return
	}

	event := jobs.VariationEditRequested{
		JobID:       uuid.NewString(),
		VersionID:   version.ID,
		MockupID:    mockup.ID,
		CurrentHTML: version.Code,
		EditPrompt:  req.EditPrompt,
		AIModel:     req.AIModel,
	}
	if err := a.publisher.Publish(r.Context(), jobs.QueueVariationEdit, event); err != nil {
		slog.Error("enqueue edit failed", "error", err, "version_id", versionID)
		writeError(w, http.StatusInternalServerError, "Failed to request edit.")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{"success": true})
}

// truncate shortens s to at most n bytes, backing up so a multi-byte rune
// is never cut mid-sequence. Postgres rejects invalid UTF-8 in TEXT values.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
