package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"fintrack/internal/log"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// migrationsTable holds fintrack's schema version so the ledger file can
// sit next to tables owned by other tools.
const migrationsTable = "fintrack_schema_migrations"

// migrateLogger forwards golang-migrate progress to slog at debug level.
type migrateLogger struct {
	ctx  context.Context
	path string
}

func (l migrateLogger) Printf(format string, v ...any) {
	slog.DebugContext(l.ctx, strings.TrimSpace(fmt.Sprintf(format, v...)),
		log.FieldComponent, log.ComponentStorage,
		log.FieldOperation, log.OpMigrate,
		log.FieldPath, l.path)
}

func (l migrateLogger) Verbose() bool {
	return false
}

// RunMigrations brings the ledger schema at dbPath up to date and returns the
// schema version it ends on. A dirty version is reported as an error.
func RunMigrations(ctx context.Context, dbPath string) (uint, error) {
	// Separate connection so closing the migrator does not close the store's pool
	migrateDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return 0, fmt.Errorf("open migration database: %w", err)
	}
	defer migrateDB.Close()

	driver, err := sqlite.WithInstance(migrateDB, &sqlite.Config{MigrationsTable: migrationsTable})
	if err != nil {
		return 0, fmt.Errorf("create sqlite driver: %w", err)
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return 0, fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return 0, fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()
	m.Log = migrateLogger{ctx: ctx, path: dbPath}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("run migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("ledger schema version %d is dirty", version)
	}

	slog.DebugContext(ctx, "Ledger schema up to date",
		log.FieldComponent, log.ComponentStorage,
		log.FieldOperation, log.OpMigrate,
		log.FieldPath, dbPath,
		log.FieldVersion, version)
	return version, nil
}
