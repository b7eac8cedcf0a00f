package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const migrationsDir = "migrations"

var (
	openDB   = sql.Open
	runGoose = goose.RunContext
)

// Migrate aplica todas las migraciones pendientes.
func Migrate(ctx context.Context, databaseURL string) error {
	return RunMigrations(ctx, databaseURL, "up")
}

// RunMigrations corre un comando de goose ("up", "down", "status", "version", ...)
// sobre las migraciones embebidas en el binario.
func RunMigrations(ctx context.Context, databaseURL, command string, args ...string) error {
	database, err := openDB("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer database.Close() //nolint:errcheck

	goose.SetBaseFS(migrationFiles)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	if err := runGoose(ctx, command, database, migrationsDir, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}
