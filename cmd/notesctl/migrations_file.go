//go:build !embed_migrations

package main

import (
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// migrationsPath can be overridden with NOTES_MIGRATIONS_PATH.
func migrationsPath() string {
	if p := os.Getenv("NOTES_MIGRATIONS_PATH"); p != "" {
		return p
	}
	return "db/migrations"
}

func createMigrateInstance(dbURL string) (*migrate.Migrate, error) {
	path := migrationsPath()
	fmt.Printf("Running migrations from file://%s\n", path)
	return migrate.New("file://"+path, dbURL)
}

func listMigrationFiles() ([]string, error) {
	entries, err := os.ReadDir(migrationsPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}
	return upMigrations(entries), nil
}
