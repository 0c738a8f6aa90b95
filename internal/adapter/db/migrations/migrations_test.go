package migrations

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func TestDialect(t *testing.T) {
	d, err := Dialect("postgres")
	require.NoError(t, err)
	assert.Equal(t, "postgres", d)

	d, err = Dialect("sqlite")
	require.NoError(t, err)
	assert.Equal(t, "sqlite3", d)

	_, err = Dialect("mysql")
	assert.Error(t, err)
}

func TestUp_SQLite(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	ctx := context.Background()
	require.NoError(t, Up(ctx, sqlDB, "sqlite", zaptest.NewLogger(t)))

	// Idempotent
	require.NoError(t, Up(ctx, sqlDB, "sqlite", zaptest.NewLogger(t)))

	version, err := Version(ctx, sqlDB, "sqlite")
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	_, err = sqlDB.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, created_at, updated_at) VALUES ('1', 'Ann', 'a@x.com', 'h', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`)
	require.NoError(t, err)

	_, err = sqlDB.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, created_at, updated_at) VALUES ('2', 'Ann', 'a@x.com', 'h', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`)
	assert.Error(t, err, "email must be unique")
}
