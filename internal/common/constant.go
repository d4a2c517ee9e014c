// Package common contains shared constants and small helpers
// used across useradmin components.
package common

// HTTP header names used on outbound API requests.
const (
	AuthorizationHeaderName = "Authorization"
	RequestIDHeaderName     = "X-Request-ID"
	BearerPrefix            = "Bearer "
)

// Keys of the persisted client state in the local metadata table.
// They are written and cleared together.
const (
	TokenStorageKey = "token"
	UserStorageKey  = "user"
)
