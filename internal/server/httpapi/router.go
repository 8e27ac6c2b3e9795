// Package httpapi serves the auth and profile operations as a JSON HTTP API.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

const (
	maxBodyBytes    = 64 << 10
	shutdownTimeout = 5 * time.Second
)

type AuthService interface {
	Signup(ctx context.Context, handle, password string, profile models.Profile) (*models.User, error)
	Login(ctx context.Context, handle, password string) (*models.SessionToken, error)
	Logout(ctx context.Context, token string) error
}

type ProfileService interface {
	Get(ctx context.Context, token string) (*models.User, error)
	Update(ctx context.Context, token, targetID string, patch models.ProfilePatch) (*models.User, error)
	AvatarUploadURL(ctx context.Context, token string) (string, string, error)
}

type Router struct {
	address  string
	auth     AuthService
	profiles ProfileService
	logger   logging.Logger
	mux      *http.ServeMux
}

func NewRouter(addr string, l logging.Logger, as AuthService, ps ProfileService) *Router {
	r := &Router{
		address:  addr,
		auth:     as,
		profiles: ps,
		logger:   l.With("module", "http_server"),
		mux:      http.NewServeMux(),
	}
	r.routes()
	return r
}

func (r *Router) routes() {
	r.mux.HandleFunc("GET /healthz", r.handleHealth)

	r.mux.HandleFunc("POST /auth/signup", r.handleSignup)
	r.mux.HandleFunc("POST /auth/login", r.handleLogin)

	r.mux.HandleFunc("POST /auth/logout", r.requireToken(r.handleLogout))
	r.mux.HandleFunc("GET /auth/me", r.requireToken(r.handleMe))
	r.mux.HandleFunc("PUT /auth/update", r.requireToken(r.handleUpdate))
	r.mux.HandleFunc("POST /auth/avatar", r.requireToken(r.handleAvatar))
}

func (r *Router) Handler() http.Handler {
	return r.mux
}

// Run serves HTTP until ctx is done, then shuts down gracefully.
func (r *Router) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", r.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           r.mux,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		r.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	r.logger.Info(ctx, "Starting HTTP server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
