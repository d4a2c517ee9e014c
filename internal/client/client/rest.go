package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/useradmin/internal/client/models"
	"github.com/dmitrijs2005/useradmin/internal/common"
	"github.com/dmitrijs2005/useradmin/internal/logging"
	"github.com/google/uuid"
)

var _ Client = (*RESTClient)(nil)

// RESTClient talks to the user-management backend over JSON/HTTP.
type RESTClient struct {
	baseURL *url.URL
	http    *http.Client
	log     logging.Logger
	metrics MetricsRecorder

	mu             sync.RWMutex
	tokens         TokenSource
	onUnauthorized UnauthorizedHandler
}

type Option func(*RESTClient)

func WithHTTPClient(c *http.Client) Option {
	return func(r *RESTClient) {
		if c != nil {
			r.http = c
		}
	}
}

func WithLogger(l logging.Logger) Option {
	return func(r *RESTClient) { r.log = l }
}

func WithMetrics(m MetricsRecorder) Option {
	return func(r *RESTClient) { r.metrics = m }
}

// WithTimeout replaces the HTTP client with a default one using timeout d.
func WithTimeout(d time.Duration) Option {
	return func(r *RESTClient) { r.http = &http.Client{Timeout: d} }
}

func NewRESTClient(baseURL string, opts ...Option) (*RESTClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid api url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return nil, fmt.Errorf("invalid api url %q: %w", baseURL, ErrInvalidArgument)
	}

	c := &RESTClient{
		baseURL: u,
		http:    &http.Client{Timeout: 15 * time.Second},
		log:     logging.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// SetTokenSource installs the source of bearer tokens.
func (c *RESTClient) SetTokenSource(ts TokenSource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens = ts
}

// OnUnauthorized registers the hook run after any authenticated 401.
func (c *RESTClient) OnUnauthorized(h UnauthorizedHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnauthorized = h
}

func (c *RESTClient) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.tokens == nil {
		return ""
	}
	return c.tokens.Token()
}

func (c *RESTClient) unauthorizedHook() UnauthorizedHandler {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.onUnauthorized
}

type request struct {
	op     string
	method string
	path   string
	query  url.Values
	body   any
	anon   bool
}

// do executes r and returns the normalized JSON body of a 2xx response.
func (c *RESTClient) do(ctx context.Context, r request) ([]byte, error) {
	u := c.baseURL.JoinPath(r.path)
	if len(r.query) > 0 {
		u.RawQuery = r.query.Encode()
	}

	var payload io.Reader
	if r.body != nil {
		b, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("encode %s request: %w", r.op, err)
		}
		payload = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u.String(), payload)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", r.op, err)
	}

	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(common.RequestIDHeaderName, reqID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	var token string
	if !r.anon {
		token = c.token()
		if token != "" {
			req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
		}
	}

	log := c.log.With("request_id", reqID, "op", r.op, "method", r.method, "path", u.Path)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(r.op, 0, start)
		log.Warn(ctx, "request failed", "error", err)
		return nil, networkError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	c.observe(r.op, resp.StatusCode, start)
	if err != nil {
		log.Warn(ctx, "reading response failed", "status", resp.StatusCode, "error", err)
		return nil, networkError(fmt.Errorf("failed to process server response (status %d): %w", resp.StatusCode, err))
	}

	log.Debug(ctx, "request finished", "status", resp.StatusCode, "duration", time.Since(start))

	body, err := normalize(resp.StatusCode, raw)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) && token != "" {
			if h := c.unauthorizedHook(); h != nil {
				h(ctx, token)
			}
		}
		return nil, err
	}
	return body, nil
}

func (c *RESTClient) observe(op string, status int, start time.Time) {
	if c.metrics != nil {
		c.metrics.ObserveRequest(op, status, time.Since(start).Seconds())
	}
}

func schemaError(body []byte, err error) error {
	var raw any
	_ = json.Unmarshal(body, &raw)
	return decodeError(http.StatusOK, "unexpected response from server", raw, err)
}

func userPath(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("%w: empty user id", ErrInvalidArgument)
	}
	return "users/" + url.PathEscape(id), nil
}

func (c *RESTClient) ListUsers(ctx context.Context, page, limit int) ([]models.User, int, error) {
	if page < 1 || limit < 1 {
		return nil, 0, fmt.Errorf("%w: page and limit must be positive", ErrInvalidArgument)
	}

	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))

	body, err := c.do(ctx, request{op: "list_users", method: http.MethodGet, path: "users", query: q})
	if err != nil {
		return nil, 0, err
	}
	users, total, err := models.DecodeUserList(body)
	if err != nil {
		return nil, 0, schemaError(body, err)
	}
	return users, total, nil
}

func (c *RESTClient) GetUser(ctx context.Context, id string) (*models.User, error) {
	p, err := userPath(id)
	if err != nil {
		return nil, err
	}
	body, err := c.do(ctx, request{op: "get_user", method: http.MethodGet, path: p})
	if err != nil {
		return nil, err
	}
	return c.decodeUser(body)
}

func (c *RESTClient) CreateUser(ctx context.Context, in models.CreateUserInput) (*models.User, error) {
	if err := models.Validate(in); err != nil {
		return nil, NewValidationError(err)
	}
	body, err := c.do(ctx, request{op: "create_user", method: http.MethodPost, path: "users", body: in})
	if err != nil {
		return nil, err
	}
	return c.decodeUser(body)
}

func (c *RESTClient) UpdateUser(ctx context.Context, id string, in models.UpdateUserInput) (*models.User, error) {
	p, err := userPath(id)
	if err != nil {
		return nil, err
	}
	if err := models.Validate(in); err != nil {
		return nil, NewValidationError(err)
	}
	body, err := c.do(ctx, request{op: "update_user", method: http.MethodPatch, path: p, body: in})
	if err != nil {
		return nil, err
	}
	return c.decodeUser(body)
}

func (c *RESTClient) DeleteUser(ctx context.Context, id string) error {
	p, err := userPath(id)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, request{op: "delete_user", method: http.MethodDelete, path: p})
	return err
}

func (c *RESTClient) Login(ctx context.Context, email string, password []byte) (*models.LoginResult, error) {
	in := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{Email: strings.TrimSpace(email), Password: string(password)}

	body, err := c.do(ctx, request{op: "login", method: http.MethodPost, path: "auth/login", body: in, anon: true})
	if err != nil {
		return nil, err
	}
	res, err := models.DecodeLogin(body)
	if err != nil {
		return nil, schemaError(body, err)
	}
	return res, nil
}

func (c *RESTClient) Me(ctx context.Context) (*models.User, error) {
	body, err := c.do(ctx, request{op: "me", method: http.MethodGet, path: "auth/me"})
	if err != nil {
		return nil, err
	}
	return c.decodeUser(body)
}

// ValidateToken reports whether the backend accepts the current token.
// Only transport failures are returned as errors.
func (c *RESTClient) ValidateToken(ctx context.Context) (bool, error) {
	_, err := c.do(ctx, request{op: "validate_token", method: http.MethodGet, path: "auth/validate"})
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNetwork):
		return false, err
	case errors.Is(err, ErrDecode):
		// 2xx with a non-JSON body still means the token was accepted.
		return true, nil
	default:
		return false, nil
	}
}

func (c *RESTClient) decodeUser(body []byte) (*models.User, error) {
	u, err := models.DecodeUser(body)
	if err != nil {
		return nil, schemaError(body, err)
	}
	return u, nil
}

// NewValidationError reports a local validator failure in the same shape
// as a 422 from the server.
func NewValidationError(err error) error {
	return &Error{
		Kind:    ErrValidation,
		Message: "invalid input",
		Fields:  models.FieldErrors(err),
		Err:     err,
	}
}
