package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"streamz/internal/application/auth"
	"streamz/internal/domain/account"
)

type userResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl,omitempty"`
	IsActive  bool   `json:"isActive"`
	CreatedAt string `json:"createdAt"`
}

func toUserResponse(u *account.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		AvatarURL: u.AvatarURL,
		IsActive:  u.Active,
		CreatedAt: u.CreatedAt.UTC().Format(time.RFC3339),
	}
}

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// Register handles POST /api/auth/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", "malformed JSON body")
		return
	}

	user, err := h.auth.Register(r.Context(), req.Email, req.Name, req.Password)
	switch {
	case errors.Is(err, account.ErrEmailTaken):
		writeError(w, http.StatusConflict, "user exists", "a user with this email already exists")
		return
	case errors.Is(err, account.ErrInvalidEmail),
		errors.Is(err, account.ErrWeakPassword),
		errors.Is(err, account.ErrNameRequired):
		writeError(w, http.StatusBadRequest, "invalid input", err.Error())
		return
	case err != nil:
		h.logger.Printf("register: %v", err)
		writeError(w, http.StatusInternalServerError, "registration failed", "an error occurred during registration")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "user registered",
		"user":    toUserResponse(user),
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", "malformed JSON body")
		return
	}

	token, user, err := h.auth.Login(r.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid credentials", "invalid email or password")
		return
	case errors.Is(err, account.ErrAccountDisabled):
		writeError(w, http.StatusForbidden, "account disabled", "your account has been disabled")
		return
	case err != nil:
		h.logger.Printf("login: %v", err)
		writeError(w, http.StatusInternalServerError, "login failed", "an error occurred during login")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "login successful",
		"token":   token,
		"user":    toUserResponse(user),
	})
}

// Logout handles POST /api/auth/logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.auth.Logout(bearerToken(r))
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// Profile handles GET /api/auth/profile.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	user, err := h.auth.Authenticate(r.Context(), bearerToken(r))
	if errors.Is(err, auth.ErrUnauthorized) {
		writeError(w, http.StatusUnauthorized, "unauthorized", "a valid session token is required")
		return
	}
	if err != nil {
		h.logger.Printf("profile: %v", err)
		writeError(w, http.StatusInternalServerError, "profile failed", "unable to load profile")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": toUserResponse(user)})
}

// ListUsers handles GET /api/users (admin).
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.auth.Users(r.Context())
	if err != nil {
		h.logger.Printf("list users: %v", err)
		writeError(w, http.StatusInternalServerError, "list failed", "unable to list users")
		return
	}

	out := make([]userResponse, 0, len(users))
	for i := range users {
		out = append(out, toUserResponse(&users[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": out})
}

type setActiveRequest struct {
	Active bool `json:"active"`
}

// SetUserActive handles PATCH /api/users/{id}/active (admin).
func (h *Handler) SetUserActive(w http.ResponseWriter, r *http.Request) {
	var req setActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", "malformed JSON body")
		return
	}

	err := h.auth.SetUserActive(r.Context(), mux.Vars(r)["id"], req.Active)
	if errors.Is(err, auth.ErrUserNotFound) {
		writeError(w, http.StatusNotFound, "user not found", "no user with this id")
		return
	}
	if err != nil {
		h.logger.Printf("set user active: %v", err)
		writeError(w, http.StatusInternalServerError, "update failed", "unable to update user")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "user updated"})
}
