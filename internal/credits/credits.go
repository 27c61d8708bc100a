// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package credits implements the per-user generation quota: free-tier users
// get a fixed number of generations per rolling window, pro users are
// unlimited. The window reset is lazy, applied the next time credits are
// read or checked after the window elapses, never by a background timer.
package credits

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"uisketch/internal/config"
	"uisketch/internal/models"
)

// userStore is the slice of the user store the ledger needs.
type userStore interface {
	FindByID(id uuid.UUID) (*models.User, error)
	ResetCredits(id uuid.UUID) error
	IncrementCreditsUsed(id uuid.UUID) error
}

// Info is the quota snapshot returned to clients. Unlimited plans report
// Total and Remaining as -1.
type Info struct {
	Plan               models.Plan `json:"plan"`
	CreditsUsed        int         `json:"creditsUsed"`
	CreditsRemaining   int         `json:"creditsRemaining"`
	CreditsTotal       int         `json:"creditsTotal"`
	IsUnlimited        bool        `json:"isUnlimited"`
	CanGenerate        bool        `json:"canGenerate"`
	ResetDate          *time.Time  `json:"resetDate,omitempty"`
	SubscriptionStatus *string     `json:"subscriptionStatus,omitempty"`
}

// Ledger tracks quota consumption against the configured policy.
type Ledger struct {
	users  userStore
	policy config.Credits
	now    func() time.Time // injectable clock for tests
}

// NewLedger creates a Ledger over the given user store and quota policy.
func NewLedger(users userStore, policy config.Credits) *Ledger {
	return &Ledger{users: users, policy: policy, now: time.Now}
}

// shouldReset reports whether the rolling window has fully elapsed.
func (l *Ledger) shouldReset(resetAt time.Time) bool {
	return l.now().Sub(resetAt) >= l.policy.ResetInterval
}

// GetUserCredits returns the user's quota snapshot, applying the lazy
// window reset as a side effect when due. Returns (nil, nil) for unknown
// users.
func (l *Ledger) GetUserCredits(userID uuid.UUID) (*Info, error) {
	user, err := l.users.FindByID(userID)
	if err != nil {
		return nil, fmt.Errorf("get user credits: %w", err)
	}
	if user == nil {
		return nil, nil
	}

	if !user.IsPro() && l.shouldReset(user.CreditsResetAt) {
		if err := l.users.ResetCredits(userID); err != nil {
			return nil, fmt.Errorf("get user credits: %w", err)
		}
		user.CreditsUsed = 0
		user.CreditsResetAt = l.now()
	}

	if user.IsPro() {
		return &Info{
			Plan:               user.Plan,
			CreditsUsed:        user.CreditsUsed,
			CreditsRemaining:   -1,
			CreditsTotal:       -1,
			IsUnlimited:        true,
			CanGenerate:        true,
			SubscriptionStatus: user.SubscriptionStatus,
		}, nil
	}

	remaining := l.policy.FreeTierLimit - user.CreditsUsed
	if remaining < 0 {
		remaining = 0
	}
	nextReset := user.CreditsResetAt.Add(l.policy.ResetInterval)

	return &Info{
		Plan:               user.Plan,
		CreditsUsed:        user.CreditsUsed,
		CreditsRemaining:   remaining,
		CreditsTotal:       l.policy.FreeTierLimit,
		IsUnlimited:        false,
		CanGenerate:        user.CreditsUsed < l.policy.FreeTierLimit,
		ResetDate:          &nextReset,
		SubscriptionStatus: user.SubscriptionStatus,
	}, nil
}

// CanUserGenerate reports whether the user may start a new generation,
// with a human-readable reason on denial. Applies the same lazy reset as
// GetUserCredits.
func (l *Ledger) CanUserGenerate(userID uuid.UUID) (bool, string, error) {
	user, err := l.users.FindByID(userID)
	if err != nil {
		return false, "", fmt.Errorf("can user generate: %w", err)
	}
	if user == nil {
		return false, "User not found", nil
	}

	if user.IsPro() {
		return true, "", nil
	}

	if l.shouldReset(user.CreditsResetAt) {
		if err := l.users.ResetCredits(userID); err != nil {
			return false, "", fmt.Errorf("can user generate: %w", err)
		}
		return true, "", nil
	}

	if user.CreditsUsed >= l.policy.FreeTierLimit {
		reason := fmt.Sprintf(
			"You've used all %d free generations this month. Upgrade to Pro for unlimited generations!",
			l.policy.FreeTierLimit,
		)
		return false, reason, nil
	}

	return true, "", nil
}

// IncrementCreditsUsed consumes one generation credit. No-op for pro
// users. Not reset-aware: callers run an eligibility check first in the
// same logical request, so the window state is already settled.
func (l *Ledger) IncrementCreditsUsed(userID uuid.UUID) error {
	user, err := l.users.FindByID(userID)
	if err != nil {
		return fmt.Errorf("increment credits: %w", err)
	}
	if user == nil || user.IsPro() {
		return nil
	}
	if err := l.users.IncrementCreditsUsed(userID); err != nil {
		return fmt.Errorf("increment credits: %w", err)
	}
	return nil
}
