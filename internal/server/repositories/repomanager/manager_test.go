package repomanager

import (
	"context"
	"database/sql"
	"bytes"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func stubGoose(t *testing.T, fn func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error) {
	t.Helper()
	orig := gooseUpContext
	gooseUpContext = fn
	t.Cleanup(func() { gooseUpContext = orig })
}

func TestPostgresRepositoryManager_Factories(t *testing.T) {
	db, _ := newDB(t)
	m := NewPostgresRepositoryManager(db)

	assert.NotNil(t, m.Users())
	assert.NotNil(t, m.RevokedTokens())

	var _ RepositoryManager = m
}

func TestPostgresRunMigrations(t *testing.T) {
	db, _ := newDB(t)

	var gotDir string
	stubGoose(t, func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		gotDir = dir
		return nil
	})

	require.NoError(t, NewPostgresRepositoryManager(db).RunMigrations(context.Background()))
	assert.Equal(t, "postgres", gotDir)
}

func TestPostgresRunMigrations_Error(t *testing.T) {
	db, _ := newDB(t)

	stubGoose(t, func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	})

	err := NewPostgresRepositoryManager(db).RunMigrations(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestOpen_Memory(t *testing.T) {
	m, err := Open(context.Background(), "memory", "", "", nil, logging.Nop{})
	require.NoError(t, err)
	defer m.Close()

	u, err := m.Users().Create(context.Background(), "a", []byte("d"), models.Profile{"display_name": "A"})
	require.NoError(t, err)

	// same repository instance across calls
	_, err = m.Users().FindByID(context.Background(), u.ID)
	require.NoError(t, err)
}

func TestOpen_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auth.db")

	m, err := Open(context.Background(), "sqlite", "", path, nil, logging.Nop{})
	require.NoError(t, err)

	ctx := context.Background()
	u, err := m.Users().Create(ctx, "alice", []byte("d"), models.Profile{"display_name": "Alice"})
	require.NoError(t, err)
	require.NoError(t, m.Close())

	// migrations are idempotent and data survives a reopen
	m, err = Open(ctx, "sqlite", "", path, nil, logging.Nop{})
	require.NoError(t, err)
	defer m.Close()

	got, err := m.Users().FindByHandle(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestOpen_SQLiteMigrationError(t *testing.T) {
	stubGoose(t, func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	})

	_, err := Open(context.Background(), "sqlite", "", filepath.Join(t.TempDir(), "x.db"), nil, logging.Nop{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migrate sqlite3")
}

func TestOpen_Unknown(t *testing.T) {
	_, err := Open(context.Background(), "mongo", "", "", nil, logging.Nop{})
	assert.ErrorContains(t, err, "unknown storage backend")
}

func TestOpen_SQLiteLogsMigrations(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf, "test", slog.LevelInfo)

	m, err := Open(context.Background(), "sqlite", "", filepath.Join(t.TempDir(), "auth.db"), nil, logger)
	require.NoError(t, err)
	defer m.Close()

	out := buf.String()
	assert.Contains(t, out, "00001_users.sql")
	assert.Contains(t, out, `"component":"migrations"`)
}

func TestGooseLogger(t *testing.T) {
	var buf bytes.Buffer
	g := gooseLogger{ctx: context.Background(), logger: logging.New(&buf, "test", slog.LevelInfo)}

	g.Printf("OK   %s\n", "00002_x.sql")
	g.Fatalf("bad %d", 1)

	out := buf.String()
	assert.Contains(t, out, `"msg":"OK   00002_x.sql"`)
	assert.Contains(t, out, `"level":"ERROR","msg":"bad 1"`)
}
