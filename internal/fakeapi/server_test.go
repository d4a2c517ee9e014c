package fakeapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/useradmin/internal/client/models"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, h http.Handler, method, path, token, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func loginAdmin(t *testing.T, h http.Handler) string {
	t.Helper()
	rec, out := serve(t, h, http.MethodPost, "/api/auth/login", "", `{"email":"admin@example.com","password":"admin123"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	token, _ := out["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestLogin(t *testing.T) {
	h := New().Handler()

	rec, out := serve(t, h, http.MethodPost, "/api/auth/login", "", `{"email":"admin@example.com","password":"nope"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Invalid credentials", out["message"])

	token := loginAdmin(t, h)
	rec, out = serve(t, h, http.MethodGet, "/api/auth/me", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	data := out["data"].(map[string]any)
	require.Equal(t, "admin", data["role"])
}

func TestLogin_InactiveAccount(t *testing.T) {
	s := New()
	_, err := s.AddUser("Off", "off@example.com", "secret1", models.RoleUser, models.StatusInactive)
	require.NoError(t, err)

	rec, out := serve(t, s.Handler(), http.MethodPost, "/api/auth/login", "", `{"email":"off@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "Account is inactive", out["message"])
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := New()
	h := s.Handler()

	rec, _ := serve(t, h, http.MethodGet, "/api/users", "", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = serve(t, h, http.MethodGet, "/api/auth/validate", "garbage", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	id, ok := s.UserID(SeedAdminEmail)
	require.True(t, ok)
	expired, err := s.IssueToken(id, -time.Minute)
	require.NoError(t, err)
	rec, _ = serve(t, h, http.MethodGet, "/api/auth/validate", expired, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	valid, err := s.IssueToken(id, time.Minute)
	require.NoError(t, err)
	rec, _ = serve(t, h, http.MethodGet, "/api/auth/validate", valid, "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestListUsers_Pagination(t *testing.T) {
	s := New()
	for i := 0; i < 24; i++ {
		_, err := s.AddUser("u", "u"+string(rune('a'+i))+"@example.com", "secret1", models.RoleUser, models.StatusActive)
		require.NoError(t, err)
	}
	h := s.Handler()
	token := loginAdmin(t, h)

	rec, out := serve(t, h, http.MethodGet, "/api/users?page=3&limit=10", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	users := out["data"].(map[string]any)["users"].([]any)
	require.Len(t, users, 5)
	p := out["pagination"].(map[string]any)
	require.EqualValues(t, 25, p["total"])
	require.EqualValues(t, 3, p["pages"])
}

func TestCreateUpdateDelete(t *testing.T) {
	s := New(WithDocumentIDs())
	h := s.Handler()
	token := loginAdmin(t, h)

	rec, out := serve(t, h, http.MethodPost, "/api/users", token, `{"name":"","email":"bad","password":"1"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Len(t, out["errors"], 3)

	rec, out = serve(t, h, http.MethodPost, "/api/users", token, `{"name":"Ann","email":"admin@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "Email already exists", out["message"])

	rec, out = serve(t, h, http.MethodPost, "/api/users", token,
		`{"name":"Ann","email":"ann@example.com","password":"secret1","role":"user","status":"active","profilePhoto":{"name":"a.png","url":"https://x/a.png"}}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	user := out["data"].(map[string]any)["user"].(map[string]any)
	id := user["_id"].(string)
	require.NotEmpty(t, id)
	require.NotNil(t, user["profilePhoto"])

	rec, out = serve(t, h, http.MethodPatch, "/api/users/"+id, token, `{"status":"inactive","profilePhoto":null}`)
	require.Equal(t, http.StatusOK, rec.Code)
	user = out["data"].(map[string]any)["user"].(map[string]any)
	require.Equal(t, "inactive", user["status"])
	require.Equal(t, "Ann", user["name"])
	require.Nil(t, user["profilePhoto"])

	rec, _ = serve(t, h, http.MethodDelete, "/api/users/"+id, token, "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec, out = serve(t, h, http.MethodGet, "/api/users/"+id, token, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "User not found", out["message"])

	rec, _ = serve(t, h, http.MethodDelete, "/api/users/"+id, token, "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	require.Contains(t, s.Requests(), "DELETE /api/users/"+id)
}
