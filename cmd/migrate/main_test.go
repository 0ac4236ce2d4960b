package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestExtractMigrationPart(t *testing.T) {
	content := `
-- +migrate Up
CREATE TABLE payneteasy_payments (id int);
ALTER TABLE payneteasy_payments ADD COLUMN paynet_order_id text;

-- +migrate Down
DROP TABLE payneteasy_payments;
`
	t.Run("Extract Up", func(t *testing.T) {
		up := extractMigrationPart(content, "Up")
		assert.Contains(t, up, "CREATE TABLE payneteasy_payments")
		assert.Contains(t, up, "ALTER TABLE payneteasy_payments")
		assert.NotContains(t, up, "DROP TABLE payneteasy_payments")
		assert.NotContains(t, up, "-- +migrate Up")
	})

	t.Run("Extract Down", func(t *testing.T) {
		down := extractMigrationPart(content, "Down")
		assert.Contains(t, down, "DROP TABLE payneteasy_payments")
		assert.NotContains(t, down, "CREATE TABLE payneteasy_payments")
	})
}

func writeMigration(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestMigrator(t *testing.T) (*migrator, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &migrator{db: db, log: zaptest.NewLogger(t)}, mock
}

func TestMigrationsUp(t *testing.T) {
	t.Run("Applies pending file", func(t *testing.T) {
		m, mock := newTestMigrator(t)
		path := writeMigration(t, t.TempDir(), "0001_init.sql", "-- +migrate Up\nCREATE TABLE test (id int);")

		mock.ExpectQuery("SELECT EXISTS.*schema_migrations").
			WithArgs("0001_init.sql").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectBegin()
		mock.ExpectExec("CREATE TABLE test").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("INSERT INTO schema_migrations").
			WithArgs("0001_init.sql").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		require.NoError(t, m.up(context.Background(), []string{path}))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Skips applied file", func(t *testing.T) {
		m, mock := newTestMigrator(t)
		path := writeMigration(t, t.TempDir(), "0001_init.sql", "-- +migrate Up\nCREATE TABLE test (id int);")

		mock.ExpectQuery("SELECT EXISTS.*schema_migrations").
			WithArgs("0001_init.sql").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		require.NoError(t, m.up(context.Background(), []string{path}))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Rolls back failed file", func(t *testing.T) {
		m, mock := newTestMigrator(t)
		path := writeMigration(t, t.TempDir(), "0002_bad.sql", "-- +migrate Up\nCREATE TABLE broken (;")

		mock.ExpectQuery("SELECT EXISTS.*schema_migrations").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectBegin()
		mock.ExpectExec("CREATE TABLE broken").WillReturnError(errors.New("syntax error"))
		mock.ExpectRollback()

		err := m.up(context.Background(), []string{path})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "0002_bad.sql")
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMigrationsDown(t *testing.T) {
	t.Run("Reverts last version", func(t *testing.T) {
		m, mock := newTestMigrator(t)
		path := writeMigration(t, t.TempDir(), "0001_init.sql", "-- +migrate Up\nCREATE TABLE test (id int);\n-- +migrate Down\nDROP TABLE test;")

		mock.ExpectQuery("SELECT version FROM schema_migrations").
			WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow("0001_init.sql"))
		mock.ExpectBegin()
		mock.ExpectExec("DROP TABLE test").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM schema_migrations WHERE version = $1")).
			WithArgs("0001_init.sql").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, m.down(context.Background(), []string{path}))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Nothing applied", func(t *testing.T) {
		m, mock := newTestMigrator(t)
		mock.ExpectQuery("SELECT version FROM schema_migrations").
			WillReturnRows(sqlmock.NewRows([]string{"version"}))

		require.NoError(t, m.down(context.Background(), nil))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Missing file", func(t *testing.T) {
		m, mock := newTestMigrator(t)
		mock.ExpectQuery("SELECT version FROM schema_migrations").
			WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow("0009_gone.sql"))

		err := m.down(context.Background(), nil)
		assert.EqualError(t, err, "migration file not found for version: 0009_gone.sql")
	})
}

func TestRunUnknownMode(t *testing.T) {
	m, mock := newTestMigrator(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))

	err := m.run(context.Background(), "sideways", t.TempDir())
	assert.EqualError(t, err, "unknown mode: sideways (use 'up' or 'down')")
}

func TestShippedMigrationsHaveBothSections(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("..", "..", "migrations", "*.sql"))
	require.NoError(t, err)
	require.Len(t, files, 3)

	for _, f := range files {
		content, err := os.ReadFile(f)
		require.NoError(t, err)
		assert.NotEmpty(t, extractMigrationPart(string(content), "Up"), f)
		assert.NotEmpty(t, extractMigrationPart(string(content), "Down"), f)
	}
}
