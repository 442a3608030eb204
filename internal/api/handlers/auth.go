// Package handlers contains the HTTP handlers for the JSON API.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gil-sasi/code-mentor/internal/auth"
	"github.com/gil-sasi/code-mentor/internal/domain"
)

// ContextKeyUser carries the authenticated user through the request context.
type contextKey string

const ContextKeyUser contextKey = "user"

// UserFromContext returns the authenticated user, if any.
func UserFromContext(ctx context.Context) (*domain.User, bool) {
	u, ok := ctx.Value(ContextKeyUser).(*domain.User)
	return u, ok
}

// BearerToken extracts the token from an Authorization header.
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService *auth.Service
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *auth.Service) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRequest is the request body for registration
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// LoginRequest is the request body for login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse is the response for user data
type UserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	CreatedAt string `json:"createdAt"`
}

func userResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID.String(),
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}

// Register handles user registration
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, sess, err := h.authService.Register(r.Context(), req.Email, req.Password, req.FirstName, req.LastName)
	if errors.Is(err, domain.ErrUserAlreadyExists) {
		h.jsonError(w, http.StatusConflict, "email already registered")
		return
	}
	if errors.Is(err, domain.ErrInvalidInput) {
		h.jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.jsonError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	h.jsonResponse(w, http.StatusCreated, map[string]any{
		"user":      userResponse(user),
		"token":     sess.Token,
		"expiresAt": sess.ExpiresAt.Format(time.RFC3339),
	})
}

// Login handles user login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		h.jsonError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, sess, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, domain.ErrInvalidPassword) {
		h.jsonError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	if err != nil {
		h.jsonError(w, http.StatusInternalServerError, "login failed")
		return
	}

	h.jsonResponse(w, http.StatusOK, map[string]any{
		"user":      userResponse(user),
		"token":     sess.Token,
		"expiresAt": sess.ExpiresAt.Format(time.RFC3339),
	})
}

// Logout revokes the caller's session token
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := BearerToken(r)
	if token == "" {
		h.jsonError(w, http.StatusBadRequest, "not logged in")
		return
	}

	if err := h.authService.Logout(r.Context(), token); err != nil {
		// The token is gone either way
	}

	h.jsonResponse(w, http.StatusOK, map[string]string{
		"message": "logged out successfully",
	})
}

// Me returns the current user
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		h.jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	h.jsonResponse(w, http.StatusOK, map[string]any{
		"user": userResponse(user),
	})
}

func (h *AuthHandler) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *AuthHandler) jsonError(w http.ResponseWriter, status int, message string) {
	JSONError(w, status, message)
}
