package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"

	"github.com/dmitrijs2005/useradmin/internal/client/client"
	"github.com/dmitrijs2005/useradmin/internal/client/config"
	"github.com/dmitrijs2005/useradmin/internal/client/guard"
	"github.com/dmitrijs2005/useradmin/internal/client/services"
	"github.com/dmitrijs2005/useradmin/internal/client/session"
	"github.com/dmitrijs2005/useradmin/internal/client/upload"
	"github.com/dmitrijs2005/useradmin/internal/logging"
	"github.com/dmitrijs2005/useradmin/internal/metrics"
)

type App struct {
	cfg      *config.Config
	log      logging.Logger
	repos    *client.Repositories
	api      *client.RESTClient
	session  *session.Store
	guard    *guard.Guard
	metrics  *metrics.Metrics
	uploader upload.Uploader
	policy   services.FetchErrorPolicy

	httpClient *http.Client

	reader      *bufio.Reader
	out         io.Writer
	interactive bool

	mu          sync.Mutex
	list        *services.UserList
	unsubscribe func()
}

type AppOption func(*App)

// WithIO replaces stdin and stdout.
func WithIO(in io.Reader, out io.Writer) AppOption {
	return func(a *App) {
		a.reader = bufio.NewReader(in)
		a.out = out
	}
}

// WithLogger sets the logger shared by every component.
func WithLogger(l logging.Logger) AppOption {
	return func(a *App) { a.log = l }
}

// Interactive makes refused protected commands start the login prompt
// instead of only printing a hint.
func Interactive() AppOption {
	return func(a *App) { a.interactive = true }
}

func WithHTTPClient(c *http.Client) AppOption {
	return func(a *App) {
		if c != nil {
			a.httpClient = c
		}
	}
}

// NewApp opens the session database and wires all components. Call Close
// when done.
func NewApp(ctx context.Context, cfg *config.Config, opts ...AppOption) (*App, error) {
	a := &App{
		cfg:    cfg,
		log:    logging.Nop(),
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}
	for _, o := range opts {
		o(a)
	}
	a.out = &syncWriter{w: a.out}

	policy, err := services.ParseFetchErrorPolicy(cfg.FetchErrorPolicy)
	if err != nil {
		return nil, err
	}
	a.policy = policy

	a.metrics = metrics.New()

	uploader, err := newUploader(ctx, cfg.Upload, a.httpClient)
	if err != nil {
		return nil, err
	}
	a.uploader = uploader

	transport := client.WithTimeout(cfg.RequestTimeout)
	if a.httpClient != nil {
		transport = client.WithHTTPClient(a.httpClient)
	}
	api, err := client.NewRESTClient(cfg.APIURL,
		transport,
		client.WithLogger(a.log),
		client.WithMetrics(a.metrics),
	)
	if err != nil {
		return nil, err
	}
	a.api = api

	repos, err := client.InitDatabase(ctx, cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}
	a.repos = repos

	a.session = session.New(api, session.NewSQLiteStorage(repos.DB),
		session.WithLogger(a.log),
		session.WithCheckInterval(cfg.ExpiryCheckInterval),
	)
	api.SetTokenSource(a.session)
	api.OnUnauthorized(a.session.HandleUnauthorized)
	a.unsubscribe = a.session.Subscribe(a.onSessionEvent)

	a.guard = guard.New(a.session, a.redirectToLogin)
	return a, nil
}

func newUploader(ctx context.Context, cfg config.UploadConfig, hc *http.Client) (upload.Uploader, error) {
	if cfg.Mode != config.UploadModeS3 {
		return upload.Stub{BaseURL: cfg.BaseURL}, nil
	}
	return upload.NewS3(ctx, upload.S3Config{
		Bucket:    cfg.Bucket,
		Region:    cfg.Region,
		Endpoint:  cfg.Endpoint,
		AccessKey: cfg.AccessKey,
		SecretKey: cfg.SecretKey,
		PublicURL: cfg.PublicURL,
		Prefix:    cfg.Prefix,
	}, hc)
}

// Start restores a stored session, if any.
func (a *App) Start(ctx context.Context) session.State {
	return a.session.CheckAuth(ctx)
}

// Run restores the session and serves the REPL until exit or EOF.
func (a *App) Run(ctx context.Context) {
	fmt.Fprintln(a.out, "useradmin (type 'help' for commands)")
	if a.Start(ctx) == session.StateAuthenticated {
		if u, ok := a.session.User(); ok {
			fmt.Fprintf(a.out, "Welcome back, %s.\n", u.Name)
		}
	}
	runREPL(ctx, a, a.status, a.reader, a.out)
}

func (a *App) Close() error {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	a.dropList()
	a.session.Close()
	return a.repos.Close()
}

func (a *App) isLoggedIn() bool {
	return a.session.IsAuthenticated()
}

func (a *App) status() string {
	u, ok := a.session.User()
	if !ok {
		return ""
	}
	return fmt.Sprintf("(%s %s)", u.Email, u.Role)
}

func (a *App) onSessionEvent(ev session.Event) {
	a.metrics.IncSessionTransition(ev.To.String(), string(ev.Reason))
	if ev.From != session.StateAuthenticated {
		return
	}
	// the list belongs to the previous session, even on a re-login
	a.dropList()
	switch ev.Reason {
	case session.ReasonExpired:
		fmt.Fprintln(a.out, "Your session has expired. Please log in again.")
	case session.ReasonUnauthorized:
		fmt.Fprintln(a.out, "The server ended your session. Please log in again.")
	}
}

func (a *App) redirectToLogin(ctx context.Context) {
	if !a.interactive {
		fmt.Fprintln(a.out, "Not logged in. Run 'useradmin login' first.")
		return
	}
	fmt.Fprintln(a.out, "Please log in first.")
	if err := a.login(ctx, nil); err != nil {
		a.printError(err)
	}
}

// userList returns the list controller, creating it on first use.
func (a *App) userList() (*services.UserList, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.list != nil {
		return a.list, nil
	}
	l, err := services.NewUserList(a.api, a.cfg.PageSize,
		services.WithListLogger(a.log),
		services.WithFetchErrorPolicy(a.policy),
	)
	if err != nil {
		return nil, err
	}
	a.list = l
	return l, nil
}

func (a *App) dropList() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.list != nil {
		a.list.Close()
		a.list = nil
	}
}

func (a *App) printError(err error) {
	fmt.Fprintln(a.out, "Error:", userMessage(err))
}

// userMessage picks the text shown for err.
func userMessage(err error) string {
	var loginErr *session.LoginError
	var apiErr *client.Error
	switch {
	case errors.As(err, &loginErr):
		return loginErr.Message
	case errors.As(err, &apiErr):
		return apiErr.Message
	default:
		return err.Error()
	}
}

type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
