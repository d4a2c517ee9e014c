package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNetwork         = errors.New("server unavailable")
	ErrHTTP            = errors.New("request failed")
	ErrDecode          = errors.New("unexpected response")
	ErrValidation      = errors.New("validation failed")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
)

// Error is the single shape every failed API call is reported in.
// Kind is one of the package sentinels; errors.Is matches against it.
type Error struct {
	Kind       error
	Message    string
	StatusCode int
	RawBody    any
	Fields     map[string]string
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the error kind. Unauthorized, NotFound and Validation errors
// also match ErrHTTP since they all come from a non-2xx response.
func (e *Error) Is(target error) bool {
	if target == e.Kind {
		return true
	}
	return target == ErrHTTP && e.StatusCode >= 300 && e.Kind != ErrDecode
}

func networkError(err error) *Error {
	return &Error{Kind: ErrNetwork, Message: "server unavailable: " + err.Error(), Err: err}
}

func decodeError(status int, msg string, raw any, err error) *Error {
	return &Error{Kind: ErrDecode, Message: msg, StatusCode: status, RawBody: raw, Err: err}
}

func statusError(status int, msg string, raw any, fields map[string]string) *Error {
	kind := ErrHTTP
	switch {
	case status == http.StatusUnauthorized:
		kind = ErrUnauthorized
	case status == http.StatusNotFound:
		kind = ErrNotFound
	case status == http.StatusUnprocessableEntity:
		kind = ErrValidation
	case status == http.StatusBadRequest && len(fields) > 0:
		kind = ErrValidation
	}
	return &Error{Kind: kind, Message: msg, StatusCode: status, RawBody: raw, Fields: fields}
}

// Message returns the user-facing text of err, falling back to err.Error().
func Message(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
