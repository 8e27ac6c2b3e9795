package repomanager

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/logging"
)

// Open returns the manager for backend ("memory", "postgres" or "sqlite")
// with migrations already applied. Migration progress goes to logger.
func Open(ctx context.Context, backend, dsn, sqlitePath string, now func() time.Time, logger logging.Logger) (RepositoryManager, error) {
	var (
		m   RepositoryManager
		err error
	)

	switch backend {
	case "memory":
		m = NewMemoryRepositoryManager(now)
	case "postgres":
		m, err = OpenPostgres(ctx, dsn, logger)
	case "sqlite":
		m, err = OpenSQLite(ctx, sqlitePath, logger)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
	if err != nil {
		return nil, err
	}

	if err := m.RunMigrations(ctx); err != nil {
		_ = m.Close()
		return nil, err
	}
	return m, nil
}
