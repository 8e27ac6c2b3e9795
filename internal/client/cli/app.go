package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/client/client"
	"github.com/dmitrijs2005/authkeeper/internal/client/config"
	"github.com/dmitrijs2005/authkeeper/internal/client/session"
	"github.com/dmitrijs2005/authkeeper/internal/netx"
)

type sessionStore interface {
	Load() (*session.Session, error)
	Save(*session.Session) error
	Clear() error
}

type uploadFunc func(ctx context.Context, url, contentType string, body io.Reader, size int64) error

type App struct {
	config   *config.Config
	client   client.Client
	sessions sessionStore
	session  *session.Session
	reader   *bufio.Reader
	out      io.Writer
	now      func() time.Time
	upload   uploadFunc
}

func NewApp(c *config.Config) (*App, error) {
	apiClient, err := client.NewAuthKeeperClient(c.ServerEndpointAddr)
	if err != nil {
		return nil, err
	}

	store, err := session.NewStore(c.SessionDir)
	if err != nil {
		_ = apiClient.Close()
		return nil, err
	}

	return newApp(c, apiClient, store, os.Stdin, os.Stdout), nil
}

func newApp(c *config.Config, cl client.Client, store sessionStore, in io.Reader, out io.Writer) *App {
	return &App{
		config:   c,
		client:   cl,
		sessions: store,
		reader:   bufio.NewReader(in),
		out:      out,
		now:      time.Now,
		upload: func(ctx context.Context, url, contentType string, body io.Reader, size int64) error {
			return netx.UploadToPresignedURL(ctx, nil, url, contentType, body, size)
		},
	}
}

// Run restores a saved session and starts the REPL. It blocks until the user
// exits.
func (a *App) Run(ctx context.Context) {
	defer a.client.Close()

	a.restoreSession()

	fmt.Fprintln(a.out, "Welcome to authkeeper CLI (type 'help' for commands)")
	runREPL(ctx, a, a.status, a.reader)
}

// restoreSession picks up the token from the last run if it still belongs to
// this server and has not expired.
func (a *App) restoreSession() {
	sess, err := a.sessions.Load()
	if err != nil {
		fmt.Fprintf(a.out, "Ignoring saved session: %v\n", err)
		return
	}
	if sess == nil {
		return
	}
	if sess.Endpoint != a.config.ServerEndpointAddr || sess.Expired(a.now()) {
		_ = a.sessions.Clear()
		return
	}

	a.session = sess
	a.client.SetAccessToken(sess.AccessToken)
}

func (a *App) isLoggedIn() bool {
	return a.session != nil
}

func (a *App) status() string {
	if a.session == nil {
		return ""
	}
	return fmt.Sprintf(" (%s)", a.session.LoginHandle)
}

func (a *App) forgetSession() {
	a.session = nil
	a.client.SetAccessToken("")
	if err := a.sessions.Clear(); err != nil {
		fmt.Fprintf(a.out, "Could not remove session file: %v\n", err)
	}
}

func (a *App) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, a.config.RequestTimeout)
}
