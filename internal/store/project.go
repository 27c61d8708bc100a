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

// ProjectStore handles all project-related database operations.
type ProjectStore struct {
	db *sql.DB
}

// NewProjectStore creates a new ProjectStore with the given database connection.
func NewProjectStore(db *sql.DB) *ProjectStore {
	return &ProjectStore{db: db}
}

// Create inserts a new project owned by the given user.
func (s *ProjectStore) Create(userID uuid.UUID, name, description string) (*models.Project, error) {
	p := &models.Project{}
	err := s.db.QueryRow(`
		INSERT INTO projects (user_id, name, description)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, name, description, created_at, updated_at
	`, userID, name, description).Scan(
		&p.ID, &p.UserID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return p, nil
}

// FindByID retrieves a project by its UUID. Returns nil if not found.
func (s *ProjectStore) FindByID(id uuid.UUID) (*models.Project, error) {
	p := &models.Project{}
	err := s.db.QueryRow(`
		SELECT id, user_id, name, description, created_at, updated_at
		FROM projects WHERE id = $1
	`, id).Scan(
		&p.ID, &p.UserID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find project by id: %w", err)
	}
	return p, nil
}

// ListByUser returns all projects owned by a user, newest first.
func (s *ProjectStore) ListByUser(userID uuid.UUID) ([]models.Project, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, name, description, created_at, updated_at
		FROM projects
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(
			&p.ID, &p.UserID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// Delete removes a project by ID. Mockups and versions cascade at the
// schema level.
func (s *ProjectStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return nil
}
