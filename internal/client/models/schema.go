package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var ErrSchema = errors.New("response does not match expected schema")

var validate = validator.New()

// Validate checks v against its `validate` struct tags.
func Validate(v any) error {
	return validate.Struct(v)
}

// FieldErrors flattens validator errors into a field -> message map keyed by
// the json name of each field.
func FieldErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[jsonName(fe.Field())] = describe(fe)
	}
	return out
}

func jsonName(field string) string {
	switch field {
	case "ProfilePhoto":
		return "profilePhoto"
	case "ID":
		return "id"
	}
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "min":
		return "must not be empty"
	}
	return "is invalid"
}

// PaginationInfo is the pagination block of GET /users.
type PaginationInfo struct {
	Total int `json:"total" validate:"gte=0"`
	Page  int `json:"page,omitempty"`
	Limit int `json:"limit,omitempty"`
	Pages int `json:"pages,omitempty"`
}

// UserListResponse is the body of GET /users.
type UserListResponse struct {
	Data *struct {
		Users []User `json:"users" validate:"required,dive"`
	} `json:"data" validate:"required"`
	Pagination *PaginationInfo `json:"pagination" validate:"required"`
}

// LoginResponse is the body of POST /auth/login.
type LoginResponse struct {
	Token string `json:"token" validate:"required"`
	Data  *struct {
		User *User `json:"user" validate:"required"`
	} `json:"data" validate:"required"`
}

// DecodeUserList decodes and validates a GET /users body.
func DecodeUserList(body []byte) ([]User, int, error) {
	var resp UserListResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrSchema, err)
	}
	if err := Validate(resp); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrSchema, err)
	}
	return resp.Data.Users, resp.Pagination.Total, nil
}

// DecodeLogin decodes and validates a POST /auth/login body.
func DecodeLogin(body []byte) (*LoginResult, error) {
	var resp LoginResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchema, err)
	}
	if err := Validate(resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchema, err)
	}
	return &LoginResult{Token: resp.Token, User: *resp.Data.User}, nil
}

// DecodeUser extracts a single user from the envelopes the backend uses for
// it: {data:{user}}, {data:user}, {user} or a bare user object.
func DecodeUser(body []byte) (*User, error) {
	var env struct {
		Data json.RawMessage `json:"data"`
		User json.RawMessage `json:"user"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchema, err)
	}

	var candidates []json.RawMessage
	if len(env.Data) > 0 {
		var inner struct {
			User json.RawMessage `json:"user"`
		}
		if json.Unmarshal(env.Data, &inner) == nil && len(inner.User) > 0 {
			candidates = append(candidates, inner.User)
		}
		candidates = append(candidates, env.Data)
	}
	if len(env.User) > 0 {
		candidates = append(candidates, env.User)
	}
	candidates = append(candidates, body)

	for _, c := range candidates {
		var u User
		if json.Unmarshal(c, &u) != nil || u.ID == "" {
			continue
		}
		if err := Validate(u); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSchema, err)
		}
		return &u, nil
	}
	return nil, fmt.Errorf("%w: no user object in body", ErrSchema)
}
