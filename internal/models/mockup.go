// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// DeviceType selects the target frame for a generated mockup.
type DeviceType string

const (
	DeviceDesktop DeviceType = "DESKTOP"
	DeviceMobile  DeviceType = "MOBILE"
	DeviceTablet  DeviceType = "TABLET"
	DeviceBoth    DeviceType = "BOTH"
)

// Valid reports whether the device type is one of the supported values.
func (d DeviceType) Valid() bool {
	switch d {
	case DeviceDesktop, DeviceMobile, DeviceTablet, DeviceBoth:
		return true
	}
	return false
}

// UILibrary selects the component-library styling the prompt asks for.
type UILibrary string

const (
	UILibraryShadcn     UILibrary = "SHADCN"
	UILibraryMaterialUI UILibrary = "MATERIAL_UI"
	UILibraryAntDesign  UILibrary = "ANT_DESIGN"
	UILibraryAceternity UILibrary = "ACETERNITY"
)

// Valid reports whether the UI library is one of the supported values.
func (l UILibrary) Valid() bool {
	switch l {
	case UILibraryShadcn, UILibraryMaterialUI, UILibraryAntDesign, UILibraryAceternity:
		return true
	}
	return false
}

// MockupStatus represents the lifecycle state of a generation request.
// PENDING and GENERATING are transient; COMPLETED and FAILED are terminal
// (edits update version content without moving the status).
type MockupStatus string

const (
	MockupStatusPending    MockupStatus = "PENDING"
	MockupStatusGenerating MockupStatus = "GENERATING"
	MockupStatusCompleted  MockupStatus = "COMPLETED"
	MockupStatusFailed     MockupStatus = "FAILED"
)

// Terminal returns true once the mockup has reached a final status.
func (s MockupStatus) Terminal() bool {
	return s == MockupStatusCompleted || s == MockupStatusFailed
}

// Mockup is one generation request and its latest result. Code is empty
// while pending and mirrors the first accepted variation once generation
// completes.
type Mockup struct {
	ID         uuid.UUID    `json:"id"`
	ProjectID  uuid.UUID    `json:"project_id"`
	Name       string       `json:"name"`
	Prompt     string       `json:"prompt"`
	Code       string       `json:"code"`
	DeviceType DeviceType   `json:"device_type"`
	UILibrary  UILibrary    `json:"ui_library"`
	Status     MockupStatus `json:"status"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// MockupWithProject pairs a mockup with its project summary for listings.
type MockupWithProject struct {
	Mockup
	Project ProjectSummary `json:"project"`
}
