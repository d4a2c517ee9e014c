package fakeapi

import (
	"encoding/json"
	"io"
	"net/http"
	"net/mail"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/useradmin/internal/client/models"
	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"
)

const maxBodySize = 1 << 20

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

func writeValidation(w http.ResponseWriter, fields map[string]string) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
		"message": "Validation failed",
		"errors":  fields,
	})
}

func readJSON(r *http.Request, v any) error {
	return json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(v)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := readJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	u := s.byEmail(req.Email)
	var hash []byte
	var id, role string
	var status models.Status
	var view map[string]any
	if u != nil {
		hash, id, role, status = u.PasswordHash, u.ID, string(u.Role), u.Status
		view = s.view(u)
	}
	s.mu.Unlock()

	if u == nil || bcrypt.CompareHashAndPassword(hash, []byte(req.Password)) != nil {
		writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if status == models.StatusInactive {
		writeMessage(w, http.StatusForbidden, "Account is inactive")
		return
	}

	token, err := generateToken(id, role, s.secret, s.now(), s.tokenTTL)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"data":  map[string]any{"user": view},
	})
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	id, _ := r.Context().Value(ctxKey{}).(string)

	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		writeMessage(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": s.view(u)})
}

func (s *Server) validate(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"valid": true})
}

func positiveQuery(r *http.Request, name string, def int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || n < 1 {
		return def
	}
	return n
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	page := positiveQuery(r, "page", 1)
	limit := positiveQuery(r, "limit", 10)

	s.mu.Lock()
	all := s.sorted()
	total := len(all)

	users := make([]map[string]any, 0, limit)
	for i := (page - 1) * limit; i < total && i < page*limit; i++ {
		users = append(users, s.view(all[i]))
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{"users": users},
		"pagination": map[string]int{
			"total": total,
			"page":  page,
			"limit": limit,
			"pages": (total + limit - 1) / limit,
		},
	})
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[chi.URLParam(r, "id")]
	if !ok {
		writeMessage(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"user": s.view(u)}})
}

func validRole(r models.Role) bool {
	return r == models.RoleUser || r == models.RoleAdmin
}

func validStatus(st models.Status) bool {
	return st == models.StatusActive || st == models.StatusInactive
}

func validEmail(e string) bool {
	_, err := mail.ParseAddress(e)
	return err == nil && !strings.ContainsAny(e, "<> ")
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name         string               `json:"name"`
		Email        string               `json:"email"`
		Password     string               `json:"password"`
		Role         models.Role          `json:"role"`
		Status       models.Status        `json:"status"`
		ProfilePhoto *models.ProfilePhoto `json:"profilePhoto"`
	}
	if err := readJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Role == "" {
		req.Role = models.RoleUser
	}
	if req.Status == "" {
		req.Status = models.StatusActive
	}

	fields := map[string]string{}
	if strings.TrimSpace(req.Name) == "" {
		fields["name"] = "Name is required"
	}
	if !validEmail(req.Email) {
		fields["email"] = "Please include a valid email"
	}
	if len(req.Password) < 6 {
		fields["password"] = "Password must be at least 6 characters"
	}
	if !validRole(req.Role) {
		fields["role"] = "Invalid role"
	}
	if !validStatus(req.Status) {
		fields["status"] = "Invalid status"
	}
	if len(fields) > 0 {
		writeValidation(w, fields)
		return
	}

	s.mu.Lock()
	exists := s.byEmail(req.Email) != nil
	s.mu.Unlock()
	if exists {
		writeMessage(w, http.StatusConflict, "Email already exists")
		return
	}

	id, err := s.AddUser(req.Name, req.Email, req.Password, req.Role, req.Status)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Server error")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[id]
	u.Photo = req.ProfilePhoto
	writeJSON(w, http.StatusCreated, map[string]any{"data": map[string]any{"user": s.view(u)}})
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	var req map[string]json.RawMessage
	if err := readJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var (
		name, email, password *string
		role                  *models.Role
		status                *models.Status
		photo                 *models.ProfilePhoto
		photoSet              bool
	)
	fields := map[string]string{}
	decode := func(key string, v any) {
		if raw, ok := req[key]; ok {
			if err := json.Unmarshal(raw, v); err != nil {
				fields[key] = "Invalid value"
			}
		}
	}
	decode("name", &name)
	decode("email", &email)
	decode("password", &password)
	decode("role", &role)
	decode("status", &status)
	if _, ok := req["profilePhoto"]; ok {
		photoSet = true
		decode("profilePhoto", &photo)
	}

	if name != nil && strings.TrimSpace(*name) == "" {
		fields["name"] = "Name is required"
	}
	if email != nil && !validEmail(*email) {
		fields["email"] = "Please include a valid email"
	}
	if password != nil && len(*password) < 6 {
		fields["password"] = "Password must be at least 6 characters"
	}
	if role != nil && !validRole(*role) {
		fields["role"] = "Invalid role"
	}
	if status != nil && !validStatus(*status) {
		fields["status"] = "Invalid status"
	}
	if len(fields) > 0 {
		writeValidation(w, fields)
		return
	}

	var hash []byte
	if password != nil {
		var err error
		if hash, err = bcrypt.GenerateFromPassword([]byte(*password), bcrypt.MinCost); err != nil {
			writeMessage(w, http.StatusInternalServerError, "Server error")
			return
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[chi.URLParam(r, "id")]
	if !ok {
		writeMessage(w, http.StatusNotFound, "User not found")
		return
	}
	if email != nil {
		if other := s.byEmail(*email); other != nil && other.ID != u.ID {
			writeMessage(w, http.StatusConflict, "Email already exists")
			return
		}
		u.Email = strings.ToLower(*email)
	}
	if name != nil {
		u.Name = *name
	}
	if hash != nil {
		u.PasswordHash = hash
	}
	if role != nil {
		u.Role = *role
	}
	if status != nil {
		u.Status = *status
	}
	if photoSet {
		u.Photo = photo
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"user": s.view(u)}})
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	_, ok := s.users[id]
	delete(s.users, id)
	s.mu.Unlock()

	if !ok {
		writeMessage(w, http.StatusNotFound, "User not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
