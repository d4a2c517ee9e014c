package client

import (
	"context"

	"github.com/dmitrijs2005/useradmin/internal/client/models"
)

type Client interface {
	ListUsers(ctx context.Context, page, limit int) ([]models.User, int, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	CreateUser(ctx context.Context, in models.CreateUserInput) (*models.User, error)
	UpdateUser(ctx context.Context, id string, in models.UpdateUserInput) (*models.User, error)
	DeleteUser(ctx context.Context, id string) error
	Login(ctx context.Context, email string, password []byte) (*models.LoginResult, error)
	Me(ctx context.Context) (*models.User, error)
	ValidateToken(ctx context.Context) (bool, error)
}

// TokenSource yields the bearer token to attach, or "" when there is none.
type TokenSource interface {
	Token() string
}

// UnauthorizedHandler is called whenever an authenticated request comes back
// with 401. token is the credential that request carried.
type UnauthorizedHandler func(ctx context.Context, token string)

// MetricsRecorder receives one observation per finished request. status is
// 0 when no response was received.
type MetricsRecorder interface {
	ObserveRequest(operation string, status int, seconds float64)
}
