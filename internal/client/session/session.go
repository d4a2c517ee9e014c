// Package session owns the single source of truth for who is logged in.
//
// A Store moves between three states:
//
//	Unknown       -> Authenticated | Anonymous   (CheckAuth)
//	Authenticated -> Anonymous                    (SignOut, expiry sweep, 401)
//	Anonymous     -> Authenticated                (Login)
//	Authenticated -> Authenticated                (Login as someone else)
//
// Every transition bumps a generation counter. Work started under an older
// generation is discarded when it completes, so a slow response can never
// bring a signed-out session back. Logins are counted separately so that a
// login attempt leaves the current session and its expiry sweep running
// until the backend accepts the new credentials.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/useradmin/internal/client/client"
	"github.com/dmitrijs2005/useradmin/internal/client/models"
	"github.com/dmitrijs2005/useradmin/internal/logging"
)

type State int

const (
	StateUnknown State = iota
	StateAuthenticated
	StateAnonymous
)

func (s State) String() string {
	switch s {
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// Reason says why a transition happened.
type Reason string

const (
	ReasonLogin        Reason = "login"
	ReasonLogout       Reason = "logout"
	ReasonExpired      Reason = "expired"
	ReasonUnauthorized Reason = "unauthorized"
	ReasonCheck        Reason = "check"
)

// Event describes one state transition.
type Event struct {
	From   State
	To     State
	Reason Reason
}

const DefaultCheckInterval = 60 * time.Second

var ErrSuperseded = errors.New("session changed while the request was in flight")

// API is the part of the backend client the session depends on.
type API interface {
	Login(ctx context.Context, email string, password []byte) (*models.LoginResult, error)
	Me(ctx context.Context) (*models.User, error)
	ValidateToken(ctx context.Context) (bool, error)
}

type Store struct {
	api      API
	storage  Storage
	log      logging.Logger
	interval time.Duration
	now      func() time.Time

	mu        sync.Mutex
	state     State
	token     string
	user      *models.User
	gen       uint64
	attempt   uint64
	stopSweep context.CancelFunc
	subs      map[int]func(Event)
	nextSub   int

	wg sync.WaitGroup
}

type Option func(*Store)

func WithLogger(l logging.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithCheckInterval sets how often the expiry sweep runs.
func WithCheckInterval(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.interval = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(api API, storage Storage, opts ...Option) *Store {
	s := &Store{
		api:      api,
		storage:  storage,
		log:      logging.Nop(),
		interval: DefaultCheckInterval,
		now:      time.Now,
		subs:     make(map[int]func(Event)),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Token returns the current bearer token or "". It satisfies client.TokenSource.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Store) IsAuthenticated() bool {
	return s.State() == StateAuthenticated
}

// User returns a copy of the signed-in user.
func (s *Store) User() (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateAuthenticated || s.user == nil {
		return models.User{}, false
	}
	return *s.user, true
}

func (s *Store) IsAdmin() bool {
	u, ok := s.User()
	return ok && u.IsAdmin()
}

// Subscribe registers fn for every future transition. fn runs outside the
// store lock and may call back into the store.
func (s *Store) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) notify(events []Event) {
	if len(events) == 0 {
		return
	}
	s.mu.Lock()
	subs := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, e := range events {
		for _, fn := range subs {
			fn(e)
		}
	}
}

// LoginError carries the message to show for a failed login.
type LoginError struct {
	Message string
	Err     error
}

func (e *LoginError) Error() string { return e.Message }
func (e *LoginError) Unwrap() error { return e.Err }

const (
	msgInvalidCredentials = "Invalid email or password"
	msgLoginFailed        = "Login failed. Please try again."
	msgMissingCredentials = "Email and password are required"
)

func loginMessage(err error) string {
	if errors.Is(err, client.ErrUnauthorized) {
		return msgInvalidCredentials
	}
	var apiErr *client.Error
	if errors.As(err, &apiErr) && errors.Is(err, client.ErrHTTP) && apiErr.Message != "" {
		return apiErr.Message
	}
	return msgLoginFailed
}

// Login authenticates against the backend and, on success, stores the token
// and the user. On failure the current session, if any, is left untouched.
// A result is dropped when another Login or a SignOut started meanwhile.
func (s *Store) Login(ctx context.Context, email string, password []byte) error {
	if strings.TrimSpace(email) == "" || len(password) == 0 {
		return &LoginError{Message: msgMissingCredentials}
	}

	s.mu.Lock()
	s.attempt++
	attempt := s.attempt
	s.mu.Unlock()

	res, err := s.api.Login(ctx, email, password)
	if err != nil {
		s.log.Info(ctx, "login failed", "email", email, "error", err)
		return &LoginError{Message: loginMessage(err), Err: err}
	}

	s.mu.Lock()
	if s.attempt != attempt {
		s.mu.Unlock()
		return &LoginError{Message: msgLoginFailed, Err: ErrSuperseded}
	}
	if err := s.storage.Save(ctx, res.Token, res.User); err != nil {
		s.mu.Unlock()
		s.log.Error(ctx, "saving session failed", "error", err)
		return &LoginError{Message: msgLoginFailed, Err: err}
	}
	ev := s.authenticateLocked(res.Token, res.User, ReasonLogin)
	s.mu.Unlock()

	s.log.Info(ctx, "logged in", "user_id", res.User.ID, "role", res.User.Role)
	s.notify([]Event{ev})
	return nil
}

// SignOut clears the session unconditionally. It never fails; storage
// errors are logged.
func (s *Store) SignOut(ctx context.Context) {
	s.mu.Lock()
	s.attempt++
	ev := s.signOutLocked(ctx, ReasonLogout)
	s.mu.Unlock()
	if ev.From != ev.To {
		s.notify([]Event{ev})
	}
}

// HandleUnauthorized signs out when token is still the current one. It is
// meant to be registered as the API client's unauthorized hook.
func (s *Store) HandleUnauthorized(ctx context.Context, token string) {
	s.mu.Lock()
	if s.token == "" || token != s.token {
		s.mu.Unlock()
		return
	}
	ev := s.signOutLocked(ctx, ReasonUnauthorized)
	s.mu.Unlock()

	s.log.Warn(ctx, "backend rejected the session token")
	s.notify([]Event{ev})
}

// CheckAuth restores a persisted session. Any failure, including a network
// error, leaves the store Anonymous with storage cleared.
func (s *Store) CheckAuth(ctx context.Context) State {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	token, _, err := s.storage.Load(ctx)
	if err != nil {
		s.log.Error(ctx, "loading stored session failed", "error", err)
		return s.settleAnonymous(ctx, gen)
	}
	if token == "" {
		return s.settleAnonymous(ctx, gen)
	}
	if IsExpired(token, s.now()) {
		s.log.Info(ctx, "stored token expired")
		return s.settleAnonymous(ctx, gen)
	}

	s.mu.Lock()
	if s.gen != gen {
		defer s.mu.Unlock()
		return s.state
	}
	s.token = token
	s.mu.Unlock()

	user, err := s.verify(ctx)
	if err != nil {
		s.log.Info(ctx, "stored session rejected", "error", err)
		return s.settleAnonymous(ctx, gen)
	}

	s.mu.Lock()
	if s.gen != gen {
		defer s.mu.Unlock()
		return s.state
	}
	if err := s.storage.Save(ctx, token, *user); err != nil {
		s.log.Warn(ctx, "refreshing stored user failed", "error", err)
	}
	ev := s.authenticateLocked(token, *user, ReasonCheck)
	s.mu.Unlock()

	s.notify([]Event{ev})
	return StateAuthenticated
}

func (s *Store) verify(ctx context.Context) (*models.User, error) {
	ok, err := s.api.ValidateToken(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, client.ErrUnauthorized
	}
	return s.api.Me(ctx)
}

func (s *Store) settleAnonymous(ctx context.Context, gen uint64) State {
	s.mu.Lock()
	if s.gen != gen {
		defer s.mu.Unlock()
		return s.state
	}
	ev := s.signOutLocked(ctx, ReasonCheck)
	s.mu.Unlock()
	if ev.From != ev.To {
		s.notify([]Event{ev})
	}
	return StateAnonymous
}

func (s *Store) authenticateLocked(token string, user models.User, reason Reason) Event {
	from := s.state
	s.gen++
	s.token = token
	s.user = &user
	s.state = StateAuthenticated
	s.startSweepLocked()
	return Event{From: from, To: StateAuthenticated, Reason: reason}
}

func (s *Store) signOutLocked(ctx context.Context, reason Reason) Event {
	from := s.state
	s.gen++
	s.token = ""
	s.user = nil
	s.state = StateAnonymous
	if s.stopSweep != nil {
		s.stopSweep()
		s.stopSweep = nil
	}
	if err := s.storage.Clear(ctx); err != nil {
		s.log.Error(ctx, "clearing stored session failed", "error", err)
	}
	return Event{From: from, To: StateAnonymous, Reason: reason}
}

// Close stops the expiry sweep and waits for it to exit. The session
// itself is left as is.
func (s *Store) Close() {
	s.mu.Lock()
	if s.stopSweep != nil {
		s.stopSweep()
		s.stopSweep = nil
	}
	s.mu.Unlock()
	s.wg.Wait()
}
