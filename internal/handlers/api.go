// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP API handlers for mockup generation,
// variation editing, and credit queries. Handlers validate input, enforce
// ownership, and enqueue jobs; all heavy lifting happens in the job
// pipeline.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"uisketch/internal/credits"
	"uisketch/internal/models"
)

// projectStore is the slice of the project store the API needs.
type projectStore interface {
	Create(userID uuid.UUID, name, description string) (*models.Project, error)
}

// mockupStore is the slice of the mockup store the API needs.
type mockupStore interface {
	Create(m *models.Mockup) (*models.Mockup, error)
	FindByIDForUser(id, userID uuid.UUID) (*models.Mockup, error)
	ListByUser(userID uuid.UUID) ([]models.MockupWithProject, error)
}

// versionStore is the slice of the version store the API needs.
type versionStore interface {
	ListByMockup(mockupID uuid.UUID) ([]models.MockupVersion, error)
	FindByIDForMockup(id, mockupID uuid.UUID) (*models.MockupVersion, error)
}

// creditLedger gates and records generation quota consumption.
type creditLedger interface {
	GetUserCredits(userID uuid.UUID) (*credits.Info, error)
	CanUserGenerate(userID uuid.UUID) (bool, string, error)
	IncrementCreditsUsed(userID uuid.UUID) error
}

// eventPublisher enqueues job events onto the broker.
type eventPublisher interface {
	Publish(ctx context.Context, queue string, event any) error
}

// API bundles the HTTP handlers with their collaborators.
type API struct {
	projects  projectStore
	mockups   mockupStore
	versions  versionStore
	ledger    creditLedger
	publisher eventPublisher
}

// NewAPI creates the API handler set.
func NewAPI(projects projectStore, mockups mockupStore, versions versionStore, ledger creditLedger, publisher eventPublisher) *API {
	return &API{
		projects:  projects,
		mockups:   mockups,
		versions:  versions,
		ledger:    ledger,
		publisher: publisher,
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error body. The message is user-facing prose;
// structured error codes never reach clients.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}
