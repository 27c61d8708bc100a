// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"uisketch/internal/models"
)

// MockupStore handles all mockup-related database operations.
type MockupStore struct {
	db *sql.DB
}

// NewMockupStore creates a new MockupStore with the given database connection.
func NewMockupStore(db *sql.DB) *MockupStore {
	return &MockupStore{db: db}
}

// Create inserts a new mockup in PENDING status with empty code. The
// generate job fills code and moves the status.
func (s *MockupStore) Create(m *models.Mockup) (*models.Mockup, error) {
	result := &models.Mockup{}
	err := s.db.QueryRow(`
		INSERT INTO mockups (project_id, name, prompt, code, device_type, ui_library, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, project_id, name, prompt, code, device_type, ui_library,
		          status, created_at, updated_at
	`, m.ProjectID, m.Name, m.Prompt, m.Code, m.DeviceType, m.UILibrary, m.Status,
	).Scan(
		&result.ID, &result.ProjectID, &result.Name, &result.Prompt, &result.Code,
		&result.DeviceType, &result.UILibrary, &result.Status,
		&result.CreatedAt, &result.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create mockup: %w", err)
	}
	return result, nil
}

// FindByID retrieves a mockup by its UUID. Returns nil if not found.
func (s *MockupStore) FindByID(id uuid.UUID) (*models.Mockup, error) {
	m := &models.Mockup{}
	err := s.db.QueryRow(`
		SELECT id, project_id, name, prompt, code, device_type, ui_library,
		       status, created_at, updated_at
		FROM mockups WHERE id = $1
	`, id).Scan(
		&m.ID, &m.ProjectID, &m.Name, &m.Prompt, &m.Code,
		&m.DeviceType, &m.UILibrary, &m.Status, &m.CreatedAt, &m.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find mockup by id: %w", err)
	}
	return m, nil
}

// FindByIDForUser retrieves a mockup only if its project belongs to the
// given user. Returns nil both when the mockup does not exist and when it
// is owned by someone else, so callers cannot distinguish the two.
func (s *MockupStore) FindByIDForUser(id, userID uuid.UUID) (*models.Mockup, error) {
	m := &models.Mockup{}
	err := s.db.QueryRow(`
		SELECT m.id, m.project_id, m.name, m.prompt, m.code, m.device_type,
		       m.ui_library, m.status, m.created_at, m.updated_at
		FROM mockups m
		JOIN projects p ON p.id = m.project_id
		WHERE m.id = $1 AND p.user_id = $2
	`, id, userID).Scan(
		&m.ID, &m.ProjectID, &m.Name, &m.Prompt, &m.Code,
		&m.DeviceType, &m.UILibrary, &m.Status, &m.CreatedAt, &m.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find mockup for user: %w", err)
	}
	return m, nil
}

// ListByUser returns all mockups across the user's projects, newest first,
// each with its project summary.
func (s *MockupStore) ListByUser(userID uuid.UUID) ([]models.MockupWithProject, error) {
	rows, err := s.db.Query(`
		SELECT m.id, m.project_id, m.name, m.prompt, m.code, m.device_type,
		       m.ui_library, m.status, m.created_at, m.updated_at,
		       p.id, p.name
		FROM mockups m
		JOIN projects p ON p.id = m.project_id
		WHERE p.user_id = $1
		ORDER BY m.created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list mockups: %w", err)
	}
	defer rows.Close()

	var items []models.MockupWithProject
	for rows.Next() {
		var m models.MockupWithProject
		if err := rows.Scan(
			&m.ID, &m.ProjectID, &m.Name, &m.Prompt, &m.Code,
			&m.DeviceType, &m.UILibrary, &m.Status, &m.CreatedAt, &m.UpdatedAt,
			&m.Project.ID, &m.Project.Name,
		); err != nil {
			return nil, fmt.Errorf("scan mockup: %w", err)
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

// UpdateStatus moves a mockup to a new lifecycle status.
func (s *MockupStore) UpdateStatus(id uuid.UUID, status models.MockupStatus) error {
	_, err := s.db.Exec(`
		UPDATE mockups SET status = $1, updated_at = NOW() WHERE id = $2
	`, status, id)
	if err != nil {
		return fmt.Errorf("update mockup status: %w", err)
	}
	return nil
}

// UpdateStatusAndCode sets both status and code in one statement. Used by
// the generate job for the COMPLETED and FAILED transitions.
func (s *MockupStore) UpdateStatusAndCode(id uuid.UUID, status models.MockupStatus, code string) error {
	_, err := s.db.Exec(`
		UPDATE mockups SET status = $1, code = $2, updated_at = NOW() WHERE id = $3
	`, status, code, id)
	if err != nil {
		return fmt.Errorf("update mockup status and code: %w", err)
	}
	return nil
}

// UpdateCode replaces the latest code snapshot without touching the status.
// Used when an edit to version 1 propagates to the mockup.
func (s *MockupStore) UpdateCode(id uuid.UUID, code string) error {
	_, err := s.db.Exec(`
		UPDATE mockups SET code = $1, updated_at = NOW() WHERE id = $2
	`, code, id)
	if err != nil {
		return fmt.Errorf("update mockup code: %w", err)
	}
	return nil
}
