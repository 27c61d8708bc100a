// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package engine

import (
	"errors"
	"strings"
)

// Validation rejection reasons. The strings surface to users in failure
// messages, hence the sentence casing.
var (
	ErrMissingContainer    = errors.New("Missing container element")
	ErrNoCSSClasses        = errors.New("No CSS classes found")
	ErrPlaceholderComments = errors.New("Contains placeholder comments")
	ErrScriptTag           = errors.New("Script tags not allowed")
)

// ValidateCode applies the acceptance rules to one candidate artifact,
// returning nil on acceptance or the first failing rule's reason. Checks
// are plain substring matches, not HTML parsing.
func ValidateCode(code string) error {
	// Open-tag prefixes, so containers with attributes count too.
	if !strings.Contains(code, "<div") &&
		!strings.Contains(code, "<section") &&
		!strings.Contains(code, "<main") {
		return ErrMissingContainer
	}

	if !strings.Contains(code, "class=") {
		return ErrNoCSSClasses
	}

	if strings.Contains(code, "// TODO") || strings.Contains(code, "/* TODO") {
		return ErrPlaceholderComments
	}

	if strings.Contains(code, "<script") {
		return ErrScriptTag
	}

	return nil
}
