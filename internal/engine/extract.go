// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package engine turns natural-language prompts into validated HTML mockup
// variations. It builds the provider prompts, parses free-form model output
// into code artifacts, filters them through lightweight validation, and
// wraps the whole flow into generate and edit operations.
package engine

import (
	"fmt"
	"regexp"
	"strings"
)

// Variation is one discrete code artifact extracted from a model response.
type Variation struct {
	ID    string `json:"id"`
	Code  string `json:"code"`
	Label string `json:"label"`
}

// Fenced blocks tagged with an explicit variation number, e.g.
// ```html variation-1. The tag is case-sensitive; surrounding whitespace
// is tolerated.
var labeledBlockRe = regexp.MustCompile("(?s)```html\\s+variation-(\\d+)\\s*\\n(.*?)```")

// Any fenced block, optionally html-tagged. Fallback when the model
// ignored the variation-tag instruction.
var genericBlockRe = regexp.MustCompile("(?s)```(?:html)?\\s*\\n(.*?)```")

// First fenced block for single-artifact edit responses.
var singleBlockRe = regexp.MustCompile("(?s)```(?:html)?\\n?(.*?)```")

// ExtractVariations parses raw model output into code artifacts. Tagged
// blocks win: each ```html variation-<n> block yields one artifact with
// id "v<n>" in order of first appearance. If no tagged block matches, all
// fenced blocks are scanned and those that look like markup (contain
// "<div") are kept with sequential ids. An empty result is valid; the
// caller decides whether that is a failure.
func ExtractVariations(response string) []Variation {
	var variations []Variation

	for _, m := range labeledBlockRe.FindAllStringSubmatch(response, -1) {
		num := m[1]
		code := strings.TrimSpace(m[2])
		if code == "" {
			continue
		}
		variations = append(variations, Variation{
			ID:    "v" + num,
			Code:  code,
			Label: "Variation " + num,
		})
	}

	if len(variations) == 0 {
		index := 1
		for _, m := range genericBlockRe.FindAllStringSubmatch(response, -1) {
			code := strings.TrimSpace(m[1])
			if code == "" || !strings.Contains(code, "<div") {
				continue
			}
			variations = append(variations, Variation{
				ID:    fmt.Sprintf("v%d", index),
				Code:  code,
				Label: fmt.Sprintf("Variation %d", index),
			})
			index++
		}
	}

	return variations
}

// ExtractCode pulls a single code artifact from an edit response: the first
// fenced block's body, or the entire trimmed response when the model
// answered without fences.
func ExtractCode(response string) string {
	if m := singleBlockRe.FindStringSubmatch(response); m != nil {
		if code := strings.TrimSpace(m[1]); code != "" {
			return code
		}
	}
	return strings.TrimSpace(response)
}
