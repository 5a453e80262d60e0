package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/optotask/backend/internal/auth"
	"github.com/optotask/backend/internal/httpx"
	"github.com/optotask/backend/internal/store"
	"github.com/optotask/backend/internal/validation"
)

// AuthHandler serves signup, login and identity lookup.
type AuthHandler struct {
	Users  *store.UserStore
	Tokens *auth.Tokens
}

func NewAuthHandler(users *store.UserStore, tokens *auth.Tokens) *AuthHandler {
	return &AuthHandler{Users: users, Tokens: tokens}
}

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup: POST /signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("username", req.Username, v)
	validation.Required("email", req.Email, v)
	validation.Required("password", req.Password, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", v)
		return
	}
	u, err := h.Users.Register(req.Username, req.Email, req.Password)
	if errors.Is(err, store.ErrConflict) {
		httpx.JSONError(w, http.StatusBadRequest, "username_or_email_taken", nil)
		return
	}
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "signup_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, u)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login: POST /login — exchanges username+password for a bearer token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("username", req.Username, v)
	validation.Required("password", req.Password, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", v)
		return
	}
	u, err := h.Users.Authenticate(req.Username, req.Password)
	if errors.Is(err, store.ErrInvalidCredentials) {
		httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
		return
	}
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "login_failed", nil)
		return
	}
	token, err := h.Tokens.Issue(u.Username)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "login_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{
		"access_token": token,
		"token_type":   "bearer",
	})
}

// Me: GET /me — returns the caller's identity.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, u)
}
