// Package store provides database access methods for all uisketch
// entities. Each store struct wraps a *sql.DB and exposes typed query methods.
package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"uisketch/internal/models"
)

// UserStore handles all user-related database operations.
type UserStore struct {
	db *sql.DB
}

// NewUserStore creates a new UserStore with the given database connection.
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

// FindByID retrieves a user by their UUID. Returns nil if not found.
func (s *UserStore) FindByID(id uuid.UUID) (*models.User, error) {
	u := &models.User{}
	err := s.db.QueryRow(`
		SELECT id, email, password_hash, plan, credits_used, credits_reset_at,
		       subscription_status, created_at, updated_at
		FROM users WHERE id = $1
	`, id).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Plan, &u.CreditsUsed,
		&u.CreditsResetAt, &u.SubscriptionStatus, &u.CreatedAt, &u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return u, nil
}

// FindByEmail retrieves a user by their email address. Returns nil if not found.
func (s *UserStore) FindByEmail(email string) (*models.User, error) {
	u := &models.User{}
	err := s.db.QueryRow(`
		SELECT id, email, password_hash, plan, credits_used, credits_reset_at,
		       subscription_status, created_at, updated_at
		FROM users WHERE email = $1
	`, email).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Plan, &u.CreditsUsed,
		&u.CreditsResetAt, &u.SubscriptionStatus, &u.CreatedAt, &u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return u, nil
}

// Create inserts a new user with a bcrypt-hashed password on the given plan.
func (s *UserStore) Create(email, password string, plan models.Plan) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &models.User{}
	err = s.db.QueryRow(`
		INSERT INTO users (email, password_hash, plan)
		VALUES ($1, $2, $3)
		RETURNING id, email, password_hash, plan, credits_used, credits_reset_at,
		          subscription_status, created_at, updated_at
	`, email, string(hash), plan).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Plan, &u.CreditsUsed,
		&u.CreditsResetAt, &u.SubscriptionStatus, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// ResetCredits zeroes the usage counter and restarts the rolling window.
// Called by the credit ledger when a read finds the window has elapsed.
func (s *UserStore) ResetCredits(userID uuid.UUID) error {
	_, err := s.db.Exec(`
		UPDATE users SET credits_used = 0, credits_reset_at = NOW(), updated_at = NOW()
		WHERE id = $1
	`, userID)
	if err != nil {
		return fmt.Errorf("reset credits: %w", err)
	}
	return nil
}

// IncrementCreditsUsed adds one consumed generation to the user's counter.
// The increment happens in SQL so concurrent requests cannot lose updates.
func (s *UserStore) IncrementCreditsUsed(userID uuid.UUID) error {
	_, err := s.db.Exec(`
		UPDATE users SET credits_used = credits_used + 1, updated_at = NOW()
		WHERE id = $1
	`, userID)
	if err != nil {
		return fmt.Errorf("increment credits used: %w", err)
	}
	return nil
}

// SetPlan switches a user's plan. Invoked by the billing webhook collaborator.
func (s *UserStore) SetPlan(userID uuid.UUID, plan models.Plan, subscriptionStatus *string) error {
	_, err := s.db.Exec(`
		UPDATE users SET plan = $1, subscription_status = $2, updated_at = NOW()
		WHERE id = $3
	`, plan, subscriptionStatus, userID)
	if err != nil {
		return fmt.Errorf("set plan: %w", err)
	}
	return nil
}
