package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// Seed populates the database with initial development data.
// It creates one free-tier and one pro-tier user if none exist, so the
// generation API can be exercised locally without the external auth
// service's signup flow.
func Seed(db *sql.DB) error {
	// Check if any users exist already.
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("sketch"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO users (email, password_hash, plan)
		VALUES ($1, $2, 'free'), ($3, $2, 'pro')
	`, "free@uisketch.local", string(hash), "pro@uisketch.local")
	if err != nil {
		return fmt.Errorf("seed insert users: %w", err)
	}

	slog.Info("database seeded with development users",
		"free", "free@uisketch.local",
		"pro", "pro@uisketch.local",
	)

	return nil
}
