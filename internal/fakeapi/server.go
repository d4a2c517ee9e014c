// Package fakeapi is an in-memory implementation of the user-management REST
// backend. It is used by tests and local demos; nothing is persisted.
package fakeapi

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/useradmin/internal/client/models"
	"github.com/dmitrijs2005/useradmin/internal/logging"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	SeedAdminEmail    = "admin@example.com"
	SeedAdminPassword = "admin123"
)

type record struct {
	ID           string
	Name         string
	Email        string
	Role         models.Role
	Status       models.Status
	Photo        *models.ProfilePhoto
	PasswordHash []byte
	CreatedAt    time.Time
	seq          int
}

// Server holds the fake backend state.
type Server struct {
	mu       sync.Mutex
	users    map[string]*record
	seq      int
	secret   []byte
	tokenTTL time.Duration
	idField  string
	now      func() time.Time
	log      logging.Logger

	reqMu    sync.Mutex
	requests []string
}

type Option func(*Server)

// WithTokenTTL sets the lifetime of tokens issued on login.
func WithTokenTTL(d time.Duration) Option {
	return func(s *Server) { s.tokenTTL = d }
}

// WithDocumentIDs makes the server emit "_id" instead of "id".
func WithDocumentIDs() Option {
	return func(s *Server) { s.idField = "_id" }
}

func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

func WithLogger(l logging.Logger) Option {
	return func(s *Server) { s.log = l }
}

// New returns a server seeded with one active admin account.
func New(opts ...Option) *Server {
	s := &Server{
		users:    make(map[string]*record),
		secret:   []byte(uuid.NewString()),
		tokenTTL: time.Hour,
		idField:  "id",
		now:      time.Now,
		log:      logging.Nop(),
	}
	for _, o := range opts {
		o(s)
	}
	if _, err := s.AddUser("Admin", SeedAdminEmail, SeedAdminPassword, models.RoleAdmin, models.StatusActive); err != nil {
		panic(err)
	}
	return s
}

// Handler returns the router with every route mounted under /api.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(s.recordRequests)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", s.login)

		r.Group(func(r chi.Router) {
			r.Use(s.requireToken)

			r.Get("/auth/me", s.me)
			r.Get("/auth/validate", s.validate)

			r.Get("/users", s.listUsers)
			r.Post("/users", s.createUser)
			r.Get("/users/{id}", s.getUser)
			r.Patch("/users/{id}", s.updateUser)
			r.Delete("/users/{id}", s.deleteUser)
		})
	})

	return r
}

// AddUser inserts a user directly and returns its id.
func (s *Server) AddUser(name, email, password string, role models.Role, status models.Status) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	s.seq++
	s.users[id] = &record{
		seq:          s.seq,
		ID:           id,
		Name:         name,
		Email:        strings.ToLower(email),
		Role:         role,
		Status:       status,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}
	return id, nil
}

// IssueToken signs a token for userID that expires after ttl; a negative ttl
// yields an already expired token.
func (s *Server) IssueToken(userID string, ttl time.Duration) (string, error) {
	s.mu.Lock()
	role := ""
	if u, ok := s.users[userID]; ok {
		role = string(u.Role)
	}
	s.mu.Unlock()
	return generateToken(userID, role, s.secret, s.now(), ttl)
}

// UserID returns the id of the user with the given email.
func (s *Server) UserID(email string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u := s.byEmail(email); u != nil {
		return u.ID, true
	}
	return "", false
}

// Requests returns "METHOD /path" for every request served so far.
func (s *Server) Requests() []string {
	s.reqMu.Lock()
	defer s.reqMu.Unlock()
	return append([]string(nil), s.requests...)
}

func (s *Server) recordRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.reqMu.Lock()
		s.requests = append(s.requests, r.Method+" "+r.URL.Path)
		s.reqMu.Unlock()

		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug(r.Context(), "fakeapi request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"request_id", r.Header.Get("X-Request-ID"),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

type ctxKey struct{}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(h, "Bearer ")
		if !ok || token == "" {
			writeMessage(w, http.StatusUnauthorized, "No token, authorization denied")
			return
		}

		id, err := userIDFromToken(token, s.secret, s.now())
		if err != nil {
			writeMessage(w, http.StatusUnauthorized, "Token is not valid")
			return
		}

		s.mu.Lock()
		_, exists := s.users[id]
		s.mu.Unlock()
		if !exists {
			writeMessage(w, http.StatusUnauthorized, "Token is not valid")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

func (s *Server) byEmail(email string) *record {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.users {
		if u.Email == email {
			return u
		}
	}
	return nil
}

// sorted returns users in insertion order.
func (s *Server) sorted() []*record {
	out := make([]*record, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

func (s *Server) view(u *record) map[string]any {
	v := map[string]any{
		s.idField: u.ID,
		"name":    u.Name,
		"email":   u.Email,
		"role":    u.Role,
		"status":  u.Status,
	}
	if u.Photo != nil {
		v["profilePhoto"] = u.Photo
	}
	return v
}
