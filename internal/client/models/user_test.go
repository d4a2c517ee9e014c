package models

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestUser_UnmarshalJSON_IDVariants(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"string id", `{"id":"1","role":"admin"}`, "1"},
		{"document id", `{"_id":"65ab","role":"user"}`, "65ab"},
		{"numeric id", `{"id":42}`, "42"},
		{"id wins over _id", `{"id":"a","_id":"b"}`, "a"},
		{"null id falls back", `{"id":null,"_id":"b"}`, "b"},
		{"missing", `{"name":"x"}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var u User
			require.NoError(t, json.Unmarshal([]byte(tt.in), &u))
			require.Equal(t, tt.want, u.ID)
		})
	}
}

func TestUser_UnmarshalJSON_FullRecord(t *testing.T) {
	in := `{"_id":"u1","name":"Ann","email":"ann@example.com","role":"admin","status":"inactive",
		"profilePhoto":{"name":"a.png","url":"https://cdn/a.png"}}`
	var u User
	require.NoError(t, json.Unmarshal([]byte(in), &u))

	want := User{
		ID: "u1", Name: "Ann", Email: "ann@example.com", Role: RoleAdmin, Status: StatusInactive,
		ProfilePhoto: &ProfilePhoto{Name: "a.png", URL: "https://cdn/a.png"},
	}
	if diff := cmp.Diff(want, u); diff != "" {
		t.Fatalf("user mismatch (-want +got):\n%s", diff)
	}
	require.True(t, u.IsAdmin())
}

func TestUpdateUserInput_MarshalJSON(t *testing.T) {
	name := "Bob"
	role := RoleUser

	b, err := json.Marshal(UpdateUserInput{Name: &name, Role: &role})
	require.NoError(t, err)
	require.JSONEq(t, `{"name":"Bob","role":"user"}`, string(b))

	b, err = json.Marshal(UpdateUserInput{RemovePhoto: true})
	require.NoError(t, err)
	require.JSONEq(t, `{"profilePhoto":null}`, string(b))

	b, err = json.Marshal(UpdateUserInput{ProfilePhoto: &ProfilePhoto{Name: "p", URL: "u"}, RemovePhoto: true})
	require.NoError(t, err)
	require.JSONEq(t, `{"profilePhoto":{"name":"p","url":"u"}}`, string(b))
}

func TestUpdateUserInput_IsEmpty(t *testing.T) {
	require.True(t, UpdateUserInput{}.IsEmpty())
	require.False(t, UpdateUserInput{RemovePhoto: true}.IsEmpty())
}

func TestValidate_CreateUserInput(t *testing.T) {
	in := CreateUserInput{Name: "A", Email: "not-an-email", Role: "root", Status: StatusActive}
	err := Validate(in)
	require.Error(t, err)

	fields := FieldErrors(err)
	require.Equal(t, map[string]string{
		"email":    "must be a valid email address",
		"password": "is required",
		"role":     "must be one of: user admin",
	}, fields)

	ok := CreateUserInput{Name: "A", Email: "a@example.com", Password: "pw", Role: RoleUser, Status: StatusActive}
	require.NoError(t, Validate(ok))
}

func TestValidate_UpdateUserInput(t *testing.T) {
	empty := ""
	bad := Status("gone")
	err := Validate(UpdateUserInput{Name: &empty, Status: &bad})
	require.Error(t, err)
	require.Equal(t, map[string]string{
		"name":   "must not be empty",
		"status": "must be one of: active inactive",
	}, FieldErrors(err))

	require.NoError(t, Validate(UpdateUserInput{}))
}

func TestFieldErrors_NonValidatorError(t *testing.T) {
	require.Nil(t, FieldErrors(ErrSchema))
}
