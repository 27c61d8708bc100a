// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package ai provides a unified interface for the LLM providers behind the
// mockup generator (Google Gemini, OpenRouter). Each provider implements
// the Provider interface, and the Catalog maps the public model tiers
// (sketch-mini, sketch-pro) to a configured provider+model pair.
package ai

import (
	"context"
	"fmt"
	"sync"
)

// GenerateResult carries the model's text output and reported token usage.
type GenerateResult struct {
	Text       string
	TokensUsed int
}

// Provider defines the interface that all AI providers must implement.
// Each provider handles its own HTTP communication and response parsing.
type Provider interface {
	// GenerateText sends a prompt pair to the LLM at the given sampling
	// temperature and returns the generated text with token usage.
	GenerateText(ctx context.Context, systemPrompt, userPrompt string, temperature float64) (*GenerateResult, error)

	// Name returns the provider identifier (e.g., "gemini", "openrouter").
	Name() string
}

// ProviderConfig holds the credentials and settings for a single provider.
type ProviderConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// ModelTier is a public model identifier accepted by the API. Tiers hide
// the concrete provider so the backend can be re-pointed without client
// changes.
type ModelTier string

const (
	// TierSketchMini is the fast tier, backed by Gemini.
	TierSketchMini ModelTier = "sketch-mini"
	// TierSketchPro is the advanced tier, backed by OpenRouter.
	TierSketchPro ModelTier = "sketch-pro"
)

// Valid reports whether the tier is one of the supported values.
func (t ModelTier) Valid() bool {
	return t == TierSketchMini || t == TierSketchPro
}

// Catalog maps model tiers to configured providers. Selecting a tier whose
// provider has no API key is a configuration error, not a data error.
// All methods are safe for concurrent use.
type Catalog struct {
	mu        sync.RWMutex
	providers map[ModelTier]Provider
}

// NewCatalog builds the tier table from provider credentials. Tiers whose
// provider has no API key are left unregistered and surface as
// configuration errors on Resolve.
func NewCatalog(google, openrouter ProviderConfig) *Catalog {
	c := &Catalog{providers: make(map[ModelTier]Provider)}

	if google.APIKey != "" {
		if google.Model == "" {
			google.Model = "gemini-2.5-flash"
		}
		c.providers[TierSketchMini] = newGemini(google)
	}
	if openrouter.APIKey != "" {
		if openrouter.Model == "" {
			openrouter.Model = "mistralai/devstral-2512:free"
		}
		c.providers[TierSketchPro] = newOpenRouter(openrouter)
	}

	return c
}

// Resolve returns the provider backing a model tier.
func (c *Catalog) Resolve(tier ModelTier) (Provider, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.providers[tier]
	if !ok {
		return nil, fmt.Errorf("ai: no provider configured for model %q", tier)
	}
	return p, nil
}

// Register adds or replaces the provider for a tier. This allows injecting
// custom providers at runtime (e.g. for testing).
func (c *Catalog) Register(tier ModelTier, p Provider) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.providers[tier] = p
}

// Available returns the tiers that currently have a configured provider.
func (c *Catalog) Available() []ModelTier {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var tiers []ModelTier
	for tier := range c.providers {
		tiers = append(tiers, tier)
	}
	return tiers
}
