// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"database/sql"
	"os"
	"testing"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"uisketch/internal/database"
	"uisketch/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "uisketch")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "uisketch")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := testDSN()
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	// Run migrations to ensure the schema is current.
	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	// Downgrade goose global state.
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// cleanUsers removes test users by email. Cascades take projects, mockups,
// and versions with them. Call in t.Cleanup().
func cleanUsers(t *testing.T, db *sql.DB, emails ...string) {
	t.Helper()
	for _, email := range emails {
		db.Exec("DELETE FROM users WHERE email = $1", email)
	}
}

// seedUser creates a user for ownership-scoped tests and registers its
// cleanup.
func seedUser(t *testing.T, db *sql.DB, email string, plan models.Plan) *models.User {
	t.Helper()
	s := NewUserStore(db)
	t.Cleanup(func() { cleanUsers(t, db, email) })
	user, err := s.Create(email, "testpass123", plan)
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

// seedProject creates a project under the given user.
func seedProject(t *testing.T, db *sql.DB, userID uuid.UUID) *models.Project {
	t.Helper()
	project, err := NewProjectStore(db).Create(userID, "Test Project", "store test fixture")
	if err != nil {
		t.Fatalf("seed project: %v", err)
	}
	return project
}

// seedMockup creates a PENDING mockup under the given project.
func seedMockup(t *testing.T, db *sql.DB, projectID uuid.UUID) *models.Mockup {
	t.Helper()
	mockup, err := NewMockupStore(db).Create(&models.Mockup{
		ProjectID:  projectID,
		Name:       "Mockup - test fixture...",
		Prompt:     "a test dashboard",
		DeviceType: models.DeviceDesktop,
		UILibrary:  models.UILibraryShadcn,
		Status:     models.MockupStatusPending,
	})
	if err != nil {
		t.Fatalf("seed mockup: %v", err)
	}
	return mockup
}
