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

// VersionStore handles all mockup-version database operations.
type VersionStore struct {
	db *sql.DB
}

// NewVersionStore creates a new VersionStore with the given database connection.
func NewVersionStore(db *sql.DB) *VersionStore {
	return &VersionStore{db: db}
}

// Upsert inserts a version row keyed by (mockup_id, version), overwriting
// code and prompt if the row already exists. The generate job's
// save-variations step may re-run after a partial failure; keying on the
// natural identity keeps the re-run from duplicating rows.
func (s *VersionStore) Upsert(mockupID uuid.UUID, version int, code, prompt string) (*models.MockupVersion, error) {
	v := &models.MockupVersion{}
	err := s.db.QueryRow(`
		INSERT INTO mockup_versions (mockup_id, version, code, prompt)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (mockup_id, version)
		DO UPDATE SET code = EXCLUDED.code, prompt = EXCLUDED.prompt
		RETURNING id, mockup_id, version, code, prompt, created_at
	`, mockupID, version, code, prompt).Scan(
		&v.ID, &v.MockupID, &v.Version, &v.Code, &v.Prompt, &v.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert mockup version: %w", err)
	}
	return v, nil
}

// FindByID retrieves a version by its UUID. Returns nil if not found.
func (s *VersionStore) FindByID(id uuid.UUID) (*models.MockupVersion, error) {
	v := &models.MockupVersion{}
	err := s.db.QueryRow(`
		SELECT id, mockup_id, version, code, prompt, created_at
		FROM mockup_versions WHERE id = $1
	`, id).Scan(
		&v.ID, &v.MockupID, &v.Version, &v.Code, &v.Prompt, &v.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find version by id: %w", err)
	}
	return v, nil
}

// FindByIDForMockup retrieves a version only if it belongs to the given
// mockup. Returns nil when it does not exist or hangs off another mockup.
func (s *VersionStore) FindByIDForMockup(id, mockupID uuid.UUID) (*models.MockupVersion, error) {
	v := &models.MockupVersion{}
	err := s.db.QueryRow(`
		SELECT id, mockup_id, version, code, prompt, created_at
		FROM mockup_versions WHERE id = $1 AND mockup_id = $2
	`, id, mockupID).Scan(
		&v.ID, &v.MockupID, &v.Version, &v.Code, &v.Prompt, &v.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find version for mockup: %w", err)
	}
	return v, nil
}

// ListByMockup returns a mockup's versions in ascending version order.
func (s *VersionStore) ListByMockup(mockupID uuid.UUID) ([]models.MockupVersion, error) {
	rows, err := s.db.Query(`
		SELECT id, mockup_id, version, code, prompt, created_at
		FROM mockup_versions
		WHERE mockup_id = $1
		ORDER BY version ASC
	`, mockupID)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	var versions []models.MockupVersion
	for rows.Next() {
		var v models.MockupVersion
		if err := rows.Scan(
			&v.ID, &v.MockupID, &v.Version, &v.Code, &v.Prompt, &v.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// UpdateContent rewrites a version's code and prompt in place. Edits never
// create new rows; the version number stays fixed.
func (s *VersionStore) UpdateContent(id uuid.UUID, code, prompt string) error {
	_, err := s.db.Exec(`
		UPDATE mockup_versions SET code = $1, prompt = $2 WHERE id = $3
	`, code, prompt, id)
	if err != nil {
		return fmt.Errorf("update version content: %w", err)
	}
	return nil
}
