// Package migrations embeds the SQL schema and applies it with goose.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strings"
	"sync"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

//go:embed sql/*.sql
var FS embed.FS

const dir = "sql"

// goose keeps its base FS and dialect in package state.
var mu sync.Mutex

// Dialect maps a configured DB driver name to the goose dialect.
func Dialect(driver string) (string, error) {
	switch driver {
	case "postgres":
		return "postgres", nil
	case "sqlite":
		return "sqlite3", nil
	default:
		return "", fmt.Errorf("no migration dialect for driver %q", driver)
	}
}

// zapGooseLogger routes goose output through zap.
type zapGooseLogger struct {
	log *zap.SugaredLogger
}

func (l zapGooseLogger) Printf(format string, v ...any) {
	l.log.Infof(strings.TrimSuffix(format, "\n"), v...)
}

func (l zapGooseLogger) Fatalf(format string, v ...any) {
	l.log.Fatalf(strings.TrimSuffix(format, "\n"), v...)
}

// Up applies all pending migrations.
func Up(ctx context.Context, db *sql.DB, driver string, log *zap.Logger) error {
	dialect, err := Dialect(driver)
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()

	goose.SetBaseFS(FS)
	goose.SetLogger(zapGooseLogger{log: log.Named("migrations").Sugar()})
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, dir); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// Version returns the current schema version.
func Version(ctx context.Context, db *sql.DB, driver string) (int64, error) {
	dialect, err := Dialect(driver)
	if err != nil {
		return 0, err
	}

	mu.Lock()
	defer mu.Unlock()

	goose.SetBaseFS(FS)
	if err := goose.SetDialect(dialect); err != nil {
		return 0, fmt.Errorf("failed to set migration dialect: %w", err)
	}
	return goose.GetDBVersionContext(ctx, db)
}
