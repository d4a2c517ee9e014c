// Package guard gates protected commands behind an authenticated session.
package guard

import (
	"context"
	"errors"
)

var ErrLoginRequired = errors.New("login required")

// Authenticator reports synchronously whether a session is active.
type Authenticator interface {
	IsAuthenticated() bool
}

// Command is a protected unit of work, typically one CLI command.
type Command func(ctx context.Context, args []string) error

type Guard struct {
	auth     Authenticator
	redirect func(ctx context.Context)
}

// New returns a Guard. redirect runs whenever a protected command is
// refused and may be nil.
func New(auth Authenticator, redirect func(ctx context.Context)) *Guard {
	return &Guard{auth: auth, redirect: redirect}
}

// Protect wraps cmd so it runs only while authenticated. Otherwise cmd is
// never invoked, the redirect runs and ErrLoginRequired is returned.
func (g *Guard) Protect(cmd Command) Command {
	return func(ctx context.Context, args []string) error {
		if !g.auth.IsAuthenticated() {
			if g.redirect != nil {
				g.redirect(ctx)
			}
			return ErrLoginRequired
		}
		return cmd(ctx, args)
	}
}
