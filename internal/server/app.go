// Package server wires configuration, storage, the denylist and the services
// together and runs the gRPC and HTTP transports until shutdown.
package server

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/cryptox"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/config"
	"github.com/dmitrijs2005/authkeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/revokedtokens"
	"github.com/dmitrijs2005/authkeeper/internal/server/services"

	gs "github.com/dmitrijs2005/authkeeper/internal/server/grpc"
)

const avatarURLExpiry = 15 * time.Minute

type App struct {
	config   *config.Config
	logger   logging.Logger
	repos    repomanager.RepositoryManager
	closers  []io.Closer
	auth     *services.AuthService
	profiles *services.ProfileService
}

// NewApp opens storage and builds the services described by c. Call Close
// when done.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	return newApp(ctx, c, logging.New(os.Stdout, "authkeeper", level))
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	app := &App{config: c, logger: logger}

	rm, err := repomanager.Open(ctx, c.Storage, c.DatabaseDSN, c.SQLitePath, time.Now, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}
	app.repos = rm

	denylist, err := app.openDenylist(ctx)
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("denylist init error: %w", err)
	}

	tokens, err := auth.NewTokenService([]byte(c.SecretKey), c.TokenTTL)
	if err != nil {
		_ = app.Close()
		return nil, err
	}

	hasher := cryptox.NewHasher(c.Hasher, c.BcryptCost)

	as, err := services.NewAuthService(rm.Users(), hasher, tokens, denylist, time.Now, logger)
	if err != nil {
		_ = app.Close()
		return nil, err
	}

	var presigner services.Presigner
	if c.S3Bucket != "" {
		p, err := services.NewS3Presigner(services.S3Settings{
			Region:    c.S3Region,
			AccessKey: c.S3RootUser,
			SecretKey: c.S3RootPassword,
			Endpoint:  c.S3BaseEndpoint,
			Bucket:    c.S3Bucket,
			Expires:   avatarURLExpiry,
		})
		if err != nil {
			_ = app.Close()
			return nil, err
		}
		presigner = p
	}

	app.auth = as
	app.profiles = services.NewProfileService(as, rm.Users(), presigner, logger)
	return app, nil
}

// openDenylist picks the revocation backend. The postgres one shares the
// storage connection pool.
func (app *App) openDenylist(ctx context.Context) (auth.Denylist, error) {
	switch app.config.Denylist {
	case config.DenylistNone:
		app.logger.Warn(ctx, "denylist disabled: logout does not invalidate tokens before expiry")
		return auth.NopDenylist{}, nil
	case config.DenylistMemory:
		d := auth.NewMemoryDenylist(time.Now)
		app.closers = append(app.closers, d)
		return d, nil
	case config.DenylistRedis:
		d, err := auth.NewRedisDenylist(ctx, app.config.RedisAddr, app.config.RedisPassword, app.config.RedisDB, app.logger)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, d)
		return d, nil
	case config.DenylistPostgres:
		pm, ok := app.repos.(interface {
			RevokedTokens() *revokedtokens.PostgresRepository
		})
		if !ok {
			return nil, fmt.Errorf("storage %q cannot hold revoked tokens", app.config.Storage)
		}
		return pm.RevokedTokens(), nil
	}
	return nil, fmt.Errorf("unknown denylist backend %q", app.config.Denylist)
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.auth, app.profiles)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	r := httpapi.NewRouter(app.config.EndpointAddrHTTP, app.logger, app.auth, app.profiles)
	if err := r.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves both transports until ctx is cancelled, a signal arrives or
// one of the servers fails.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "storage", app.config.Storage, "denylist", app.config.Denylist)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()
}

// Close releases the denylist and storage.
func (app *App) Close() error {
	var firstErr error
	for _, c := range app.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	app.closers = nil
	if app.repos != nil {
		if err := app.repos.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		app.repos = nil
	}
	return firstErr
}
