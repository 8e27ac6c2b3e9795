package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/migrations"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/users"
	_ "modernc.org/sqlite"
)

type SQLiteRepositoryManager struct {
	db     *sql.DB
	logger logging.Logger
}

// OpenSQLite opens (creating if needed) the database file at path. Writes
// are serialized through a single connection.
func OpenSQLite(ctx context.Context, path string, logger logging.Logger) (*SQLiteRepositoryManager, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return &SQLiteRepositoryManager{db: db, logger: logger}, nil
}

func (m *SQLiteRepositoryManager) Users() users.Repository {
	return users.NewSQLiteRepository(m.db)
}

func (m *SQLiteRepositoryManager) RunMigrations(ctx context.Context) error {
	return runMigrations(ctx, m.db, migrations.SQLite, "sqlite3", migrations.SQLiteDir, m.logger)
}

func (m *SQLiteRepositoryManager) Close() error {
	return m.db.Close()
}
