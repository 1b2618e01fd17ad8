// Package database はデータベース接続とマイグレーション管理を提供する。
package database

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

// NewMigrator はマイグレーション実行用のmigrateインスタンスを生成する。
// driverごとに別のマイグレーションディレクトリを使う。
func NewMigrator(driver, databaseURL string) (*migrate.Migrate, error) {
	dir, dbURL, err := migrationTarget(driver, databaseURL)
	if err != nil {
		return nil, err
	}

	source, err := iofs.New(migrationsFS, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}

	return m, nil
}

// RunMigrations はすべてのマイグレーションを適用する。
// すでに最新の場合はエラーなしで返る。
func RunMigrations(driver, databaseURL string) error {
	m, err := NewMigrator(driver, databaseURL)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

func migrationTarget(driver, databaseURL string) (dir, dbURL string, err error) {
	switch driver {
	case DriverPostgres:
		return "migrations/postgres", databaseURL, nil
	case DriverSQLite:
		return "migrations/sqlite", "sqlite://" + SQLitePath(databaseURL), nil
	default:
		return "", "", fmt.Errorf("unsupported database driver: %q", driver)
	}
}
