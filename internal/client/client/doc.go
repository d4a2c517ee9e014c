// Package client contains the client-side building blocks for useradmin.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface) for the
//     user-management backend: ListUsers, GetUser, CreateUser, UpdateUser,
//     DeleteUser, Login, Me and ValidateToken.
//  2. A JSON/HTTP implementation (see RESTClient) that attaches the bearer
//     token, tags every request with an X-Request-ID, validates response
//     bodies against per-endpoint schemas and reports every failure as *Error.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     SQLite database and applying the embedded goose migrations.
//
// # Error Handling
//
// Every failed call returns *Error. Its kind is matched with errors.Is
// against ErrNetwork, ErrHTTP, ErrDecode, ErrValidation, ErrUnauthorized and
// ErrNotFound. Message is always safe to show to the user.
//
// Non-2xx responses are normalized the same way everywhere: the body is read
// as text, parsed as JSON when possible, and the message is taken from the
// "message" field, then the "error" field, then the status line.
//
// # Concurrency
//
// RESTClient is safe for concurrent use. All operations honor ctx.
package client
