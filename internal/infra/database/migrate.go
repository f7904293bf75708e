package database

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"neurolux_bot/internal/infra/logger"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// RunMigrations applies all up migrations from the migrations directory next
// to the working directory. A database already at the latest version is not
// an error.
func RunMigrations(databaseURL string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}
	sourceURL := "file://" + filepath.Join(cwd, "migrations")

	m, err := migrate.New(sourceURL, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to initialize migrations: %w", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil {
			logger.Log.WithError(srcErr).Warn("Closing migration source failed")
		}
		if dbErr != nil {
			logger.Log.WithError(dbErr).Warn("Closing migration DB handle failed")
		}
	}()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Log.Info("Database schema is up to date, no migrations applied.")
			return nil
		}
		return fmt.Errorf("migration execution failed: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return fmt.Errorf("failed to read migration version: %w", err)
	}
	logger.Log.Infof("Migrations applied. Schema version: %d (dirty: %t)", version, dirty)
	return nil
}
