// Package repomanager opens the configured storage backend, runs its
// migrations and vends the repositories built on top of it.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/users"
	"github.com/pressly/goose/v3"
)

type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	Users() users.Repository
	Close() error
}

// gooseMu guards goose's package-level base FS, dialect and logger.
var gooseMu sync.Mutex

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// gooseLogger forwards goose's progress lines to the service logger.
type gooseLogger struct {
	ctx    context.Context
	logger logging.Logger
}

func (g gooseLogger) Printf(format string, v ...any) {
	g.logger.Info(g.ctx, strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// Fatalf only logs; migration failures come back as errors from goose.
func (g gooseLogger) Fatalf(format string, v ...any) {
	g.logger.Error(g.ctx, strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func runMigrations(ctx context.Context, db *sql.DB, fsys fs.FS, dialect, dir string, logger logging.Logger) error {
	if logger == nil {
		logger = logging.Nop{}
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(fsys)
	defer goose.SetBaseFS(nil)

	goose.SetLogger(gooseLogger{ctx: ctx, logger: logger.With("component", "migrations", "dialect", dialect)})
	defer goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, db, dir); err != nil {
		return fmt.Errorf("migrate %s: %w", dialect, err)
	}
	return nil
}
