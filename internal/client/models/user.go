package models

import (
	"bytes"
	"encoding/json"
	"strings"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// ProfilePhoto references an already stored image.
type ProfilePhoto struct {
	Name string `json:"name" validate:"required"`
	URL  string `json:"url" validate:"required"`
}

// User is the client-side copy of a backend user record.
type User struct {
	ID           string        `json:"id" validate:"required"`
	Name         string        `json:"name,omitempty"`
	Email        string        `json:"email,omitempty"`
	Role         Role          `json:"role,omitempty" validate:"omitempty,oneof=user admin"`
	Status       Status        `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
	ProfilePhoto *ProfilePhoto `json:"profilePhoto,omitempty" validate:"omitempty"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UnmarshalJSON accepts the identifier either as "id" or as "_id",
// and either as a string or as a number.
func (u *User) UnmarshalJSON(b []byte) error {
	type plain User
	var raw struct {
		plain
		ID    json.RawMessage `json:"id"`
		DocID json.RawMessage `json:"_id"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	*u = User(raw.plain)

	id, err := decodeID(raw.ID)
	if err != nil {
		return err
	}
	if id == "" {
		if id, err = decodeID(raw.DocID); err != nil {
			return err
		}
	}
	u.ID = id
	return nil
}

func decodeID(b json.RawMessage) (string, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return "", nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return "", err
		}
		return strings.TrimSpace(s), nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}

// CreateUserInput is the body of POST /users.
type CreateUserInput struct {
	Name         string        `json:"name" validate:"required"`
	Email        string        `json:"email" validate:"required,email"`
	Password     string        `json:"password" validate:"required"`
	Role         Role          `json:"role" validate:"required,oneof=user admin"`
	Status       Status        `json:"status" validate:"required,oneof=active inactive"`
	ProfilePhoto *ProfilePhoto `json:"profilePhoto"`
}

// UpdateUserInput is the body of PATCH /users/:id. Nil fields are left
// untouched on the server; RemovePhoto sends an explicit null photo.
type UpdateUserInput struct {
	Name         *string       `json:"name,omitempty" validate:"omitempty,min=1"`
	Email        *string       `json:"email,omitempty" validate:"omitempty,email"`
	Password     *string       `json:"password,omitempty" validate:"omitempty,min=1"`
	Role         *Role         `json:"role,omitempty" validate:"omitempty,oneof=user admin"`
	Status       *Status       `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
	ProfilePhoto *ProfilePhoto `json:"profilePhoto,omitempty"`
	RemovePhoto  bool          `json:"-"`
}

func (in UpdateUserInput) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, 6)
	if in.Name != nil {
		m["name"] = *in.Name
	}
	if in.Email != nil {
		m["email"] = *in.Email
	}
	if in.Password != nil {
		m["password"] = *in.Password
	}
	if in.Role != nil {
		m["role"] = *in.Role
	}
	if in.Status != nil {
		m["status"] = *in.Status
	}
	switch {
	case in.ProfilePhoto != nil:
		m["profilePhoto"] = in.ProfilePhoto
	case in.RemovePhoto:
		m["profilePhoto"] = nil
	}
	return json.Marshal(m)
}

// IsEmpty reports whether the update carries no changes.
func (in UpdateUserInput) IsEmpty() bool {
	return in.Name == nil && in.Email == nil && in.Password == nil &&
		in.Role == nil && in.Status == nil && in.ProfilePhoto == nil && !in.RemovePhoto
}

// LoginResult is what a successful login yields.
type LoginResult struct {
	Token string
	User  User
}
