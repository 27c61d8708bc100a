// Package models defines the data structures that map to database tables
// and provides the core types used throughout the application.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Plan represents a user's subscription tier.
type Plan string

const (
	PlanFree Plan = "free"
	PlanPro  Plan = "pro"
)

// User represents an account with its generation-credit state. Passwords
// and subscription lifecycle are owned by the external auth and billing
// services; this backend only reads the fields it needs for quota gating.
type User struct {
	ID                 uuid.UUID `json:"id"`
	Email              string    `json:"email"`
	PasswordHash       string    `json:"-"` // Never serialize the hash
	Plan               Plan      `json:"plan"`
	CreditsUsed        int       `json:"credits_used"`
	CreditsResetAt     time.Time `json:"credits_reset_at"`
	SubscriptionStatus *string   `json:"subscription_status,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// IsPro returns true if the user is on the unlimited pro plan.
func (u *User) IsPro() bool {
	return u.Plan == PlanPro
}
