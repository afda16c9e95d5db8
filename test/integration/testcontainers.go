package integration

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/db"
)

// TestContext holds all the resources needed for integration tests
type TestContext struct {
	Backend     string
	DB          *gorm.DB
	Container   testcontainers.Container
	DatabaseURL string
	TokenKey    []byte
	Server      *ServerInstance
}

// NewTestContext starts the server under test. The memory backend runs
// in-process; with INTEGRATION_POSTGRES=1 a PostgreSQL testcontainer backs
// the gorm stores. Set NOTES_BINARY to exercise a built notesctl instead.
func NewTestContext(ctx context.Context) (*TestContext, error) {
	tc := &TestContext{
		Backend:  "memory",
		TokenKey: []byte("integration-token-key-0123456789"),
	}

	if os.Getenv("INTEGRATION_POSTGRES") == "1" {
		tc.Backend = "postgres"
		if err := tc.startPostgres(ctx); err != nil {
			tc.Close(ctx)
			return nil, err
		}
	}

	instance, err := StartServer(tc)
	if err != nil {
		tc.Close(ctx)
		return nil, err
	}
	tc.Server = instance
	log.Printf("Running integration suite against %s backend at %s", tc.Backend, instance.ServerURL)
	return tc, nil
}

func (tc *TestContext) startPostgres(ctx context.Context) error {
	projectRoot, err := findProjectRoot()
	if err != nil {
		return fmt.Errorf("failed to find project root: %w", err)
	}

	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("notes_test"),
		tcpostgres.WithUsername("notes"),
		tcpostgres.WithPassword("notes"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to start postgres container: %w", err)
	}
	tc.Container = pgContainer

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return fmt.Errorf("failed to get connection string: %w", err)
	}
	tc.DatabaseURL = connStr

	tc.DB, err = db.Connect(db.Config{URL: connStr})
	if err != nil {
		return err
	}
	rawDB, err := tc.DB.DB()
	if err != nil {
		return err
	}
	return runMigrations(rawDB, filepath.Join(projectRoot, "db", "migrations"))
}

// Close cleans up all test resources
func (tc *TestContext) Close(ctx context.Context) {
	if tc.Server != nil {
		tc.Server.Stop()
	}
	if tc.DB != nil {
		_ = db.Close(tc.DB)
	}
	if tc.Container != nil {
		_ = tc.Container.Terminate(ctx)
	}
}

// findProjectRoot locates the project root directory
func findProjectRoot() (string, error) {
	for _, p := range []string{"../..", "..", "."} {
		if _, err := os.Stat(filepath.Join(p, "go.mod")); err == nil {
			return filepath.Abs(p)
		}
	}
	return "", fmt.Errorf("project root not found (looking for go.mod)")
}

// runMigrations applies the up migrations in file name order.
func runMigrations(rawDB *sql.DB, migrationsDir string) error {
	files, err := filepath.Glob(filepath.Join(migrationsDir, "*.up.sql"))
	if err != nil {
		return err
	}

	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file, err)
		}
		if _, err := rawDB.Exec(string(content)); err != nil {
			return fmt.Errorf("migration %s: %w", filepath.Base(file), err)
		}
	}
	return nil
}
