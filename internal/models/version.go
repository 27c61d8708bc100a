// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// MockupVersion is one generated variation (or its edited state). Version
// numbers are 1-based and contiguous within a mockup, assigned once at
// generation time and never renumbered. AI edits rewrite Code and Prompt
// in place rather than appending new rows; version 1 is the canonical
// snapshot mirrored into the parent mockup's Code field.
type MockupVersion struct {
	ID        uuid.UUID `json:"id"`
	MockupID  uuid.UUID `json:"mockup_id"`
	Version   int       `json:"version"`
	Code      string    `json:"code"`
	Prompt    string    `json:"prompt"`
	CreatedAt time.Time `json:"created_at"`
}
