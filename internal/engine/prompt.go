// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package engine

import (
	"fmt"

	"uisketch/internal/models"
)

// deviceFrame describes the viewport the generated markup should target.
type deviceFrame struct {
	width  int
	height int
	note   string
}

// Frame dimensions per device target. BOTH has no fixed frame; the prompt
// asks for a responsive layout instead.
var deviceFrames = map[models.DeviceType]deviceFrame{
	models.DeviceDesktop: {1440, 900, "a desktop browser viewport"},
	models.DeviceMobile:  {375, 812, "a mobile phone screen"},
	models.DeviceTablet:  {820, 1180, "a tablet screen"},
}

// Style guidance per UI library preference, injected into the system prompt.
var libraryGuidance = map[models.UILibrary]string{
	models.UILibraryShadcn:     "shadcn/ui: neutral palette, subtle borders, rounded-lg corners, muted backgrounds, clean sans-serif typography",
	models.UILibraryMaterialUI: "Material Design: elevated cards with shadows, filled buttons, 8px spacing grid, bold primary colors",
	models.UILibraryAntDesign:  "Ant Design: compact data-dense layouts, 4px spacing grid, blue primary accents, bordered tables and cards",
	models.UILibraryAceternity: "Aceternity: dark backgrounds, gradient accents, glassmorphism panels, generous whitespace",
}

// variationsSystemPrompt asks the model for exactly three labeled
// variations so the extractor's tagged-block path can pick them apart.
func variationsSystemPrompt(library models.UILibrary, device models.DeviceType) string {
	target := "a fully responsive layout that works on desktop and mobile"
	if frame, ok := deviceFrames[device]; ok {
		target = fmt.Sprintf("%s (%dx%d)", frame.note, frame.width, frame.height)
	}

	return fmt.Sprintf(`You are an expert UI designer generating HTML mockups. Create 3 distinct design variations of the requested interface, targeting %s.

Rules:
- Output each variation as a separate fenced code block tagged with its number: `+"```"+`html variation-1, `+"```"+`html variation-2, `+"```"+`html variation-3.
- Each variation must be a single self-contained fragment: one root <div> with Tailwind-style utility classes on every element.
- Style direction: %s.
- Use realistic placeholder copy, not lorem ipsum.
- No <script> tags, no external resources, no TODO comments.
- Make the three variations meaningfully different in layout, not just colors.`,
		target, libraryGuidance[library])
}

// variationsUserPrompt wraps the user's description.
func variationsUserPrompt(prompt string) string {
	return fmt.Sprintf("Create 3 UI mockup variations for: %s", prompt)
}

// editSystemPrompt constrains the edit operation to a single fenced block
// so the single-artifact extractor finds exactly one candidate.
func editSystemPrompt() string {
	return `You are an expert UI developer editing an existing HTML mockup.

Rules:
- Apply ONLY the requested change; preserve all untouched markup, classes, and copy exactly as given.
- Output the complete updated HTML as a single fenced code block tagged html.
- Keep the fragment self-contained with utility classes; no <script> tags, no TODO comments.`
}

// editUserPrompt embeds the current code and the requested change.
func editUserPrompt(currentHTML, editPrompt string) string {
	return fmt.Sprintf("Here is the current HTML:\n\n```html\n%s\n```\n\nRequested change: %s", currentHTML, editPrompt)
}
