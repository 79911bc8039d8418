// Package handler exposes admin login over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"punchgate/internal/admin/service"
	"punchgate/internal/httpapi"
)

type authService interface {
	Login(ctx context.Context, email, password string) (*service.Session, error)
}

// Handler serves the admin authentication endpoint.
type Handler struct {
	auth      authService
	responder httpapi.Responder
}

// New returns an admin Handler.
func New(auth authService, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{auth: auth, responder: httpapi.NewResponder(logger)}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"accessToken"`
	ExpiresAt   string `json:"expiresAt"`
	Admin       struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	} `json:"admin"`
}

// Login handles POST /api/admin/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.WriteError(ctx, w, http.StatusBadRequest, "BAD_REQUEST", errors.New("invalid request body"))
		return
	}
	email := strings.TrimSpace(strings.ToLower(req.Email))
	sess, err := h.auth.Login(ctx, email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.responder.WriteError(ctx, w, http.StatusUnauthorized, "AUTH_INVALID_CREDENTIALS", errors.New("email or password is incorrect"))
			return
		}
		h.responder.WriteError(ctx, w, http.StatusInternalServerError, "", err)
		return
	}
	resp := loginResponse{
		AccessToken: sess.AccessToken,
		ExpiresAt:   sess.ExpiresAt.UTC().Format(time.RFC3339),
	}
	resp.Admin.ID = sess.Admin.ID
	resp.Admin.Email = sess.Admin.Email
	resp.Admin.Name = sess.Admin.Name
	h.responder.WriteJSON(ctx, w, http.StatusOK, resp)
}
