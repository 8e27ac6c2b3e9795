package repomanager

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/migrations"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/revokedtokens"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresRepositoryManager vends PostgreSQL-backed repositories over one
// connection pool.
type PostgresRepositoryManager struct {
	db     *sql.DB
	logger logging.Logger
}

// OpenPostgres opens a pgx pool for dsn and checks it with a ping.
func OpenPostgres(ctx context.Context, dsn string, logger logging.Logger) (*PostgresRepositoryManager, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	m := NewPostgresRepositoryManager(db)
	m.logger = logger
	return m, nil
}

func NewPostgresRepositoryManager(db *sql.DB) *PostgresRepositoryManager {
	return &PostgresRepositoryManager{db: db, logger: logging.Nop{}}
}

func (m *PostgresRepositoryManager) Users() users.Repository {
	return users.NewPostgresRepository(m.db)
}

// RevokedTokens backs the postgres denylist.
func (m *PostgresRepositoryManager) RevokedTokens() *revokedtokens.PostgresRepository {
	return revokedtokens.NewPostgresRepository(m.db)
}

func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context) error {
	return runMigrations(ctx, m.db, migrations.Postgres, "pgx", migrations.PostgresDir, m.logger)
}

func (m *PostgresRepositoryManager) Close() error {
	return m.db.Close()
}
