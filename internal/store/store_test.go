// store_test.go provides the shared helpers for store tests. Integration
// tests are skipped if PostgreSQL is not available.
package store

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"

	"portfolio/internal/database"
	"portfolio/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
func testDSN() string {
	host := envOr("DATABASE_HOST", "localhost")
	port := envOr("DATABASE_PORT", "5432")
	user := envOr("DATABASE_USER", "portfolio")
	pass := envOr("DATABASE_PASSWORD", "changeme")
	name := envOr("DATABASE_NAME", "portfolio")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", testDSN())
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testUser inserts a throwaway author and removes it, with everything it
// owns, when the test finishes.
func testUser(t *testing.T, db *sql.DB) *models.User {
	t.Helper()
	u := &models.User{
		Email:        "store-test-" + uuid.NewString() + "@portfolio.local",
		PasswordHash: "x",
		DisplayName:  "Store Test",
		Role:         models.RoleAuthor,
	}
	require.NoError(t, NewUserStore(db).Create(context.Background(), u))
	t.Cleanup(func() {
		db.Exec("DELETE FROM comments WHERE author_id = $1", u.ID)
		db.Exec("DELETE FROM blogs WHERE author_id = $1", u.ID)
		db.Exec("DELETE FROM users WHERE id = $1", u.ID)
	})
	return u
}

// mockDB returns a sqlmock-backed pool whose expectations are verified at cleanup.
func mockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return db, mock
}
