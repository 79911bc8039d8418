// Package handler exposes device enrollment and dissociation over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"punchgate/internal/device/domain"
	"punchgate/internal/device/service"
	"punchgate/internal/fingerprint"
	"punchgate/internal/httpapi"
)

type registry interface {
	Enroll(ctx context.Context, p service.EnrollParams) (*domain.Device, error)
	Deactivate(ctx context.Context, fp fingerprint.Fingerprint) error
	List(ctx context.Context) ([]*domain.Device, error)
}

// Handler serves the device endpoints.
type Handler struct {
	registry  registry
	responder httpapi.Responder
}

// New returns a device Handler.
func New(reg registry, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{registry: reg, responder: httpapi.NewResponder(logger)}
}

type enrollRequest struct {
	PIN             string              `json:"pin"`
	Signals         fingerprint.Signals `json:"signals"`
	ReplaceExisting bool                `json:"replaceExisting"`
}

type deviceResponse struct {
	ID          string `json:"id"`
	EmployeeID  string `json:"employeeId"`
	Fingerprint string `json:"fingerprint"`
	Descriptor  struct {
		DeviceClass   string `json:"deviceClass"`
		OSFamily      string `json:"osFamily"`
		BrowserFamily string `json:"browserFamily"`
		ScreenSize    string `json:"screenSize"`
	} `json:"descriptor"`
	Active       bool   `json:"active"`
	RegisteredAt string `json:"registeredAt"`
	LastUsedAt   string `json:"lastUsedAt,omitempty"`
}

func toDeviceResponse(d *domain.Device) deviceResponse {
	out := deviceResponse{
		ID:           d.ID,
		EmployeeID:   d.EmployeeID,
		Fingerprint:  string(d.Fingerprint),
		Active:       d.Active,
		RegisteredAt: d.RegisteredAt.Format(time.RFC3339),
	}
	out.Descriptor.DeviceClass = d.Descriptor.DeviceClass
	out.Descriptor.OSFamily = d.Descriptor.OSFamily
	out.Descriptor.BrowserFamily = d.Descriptor.BrowserFamily
	out.Descriptor.ScreenSize = d.Descriptor.ScreenSize
	if d.LastUsedAt != nil {
		out.LastUsedAt = d.LastUsedAt.Format(time.RFC3339)
	}
	return out
}

// Enroll handles POST /api/attendance/enroll: PIN plus device signals.
func (h *Handler) Enroll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req enrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.WriteError(ctx, w, http.StatusBadRequest, "BAD_REQUEST", errors.New("invalid request body"))
		return
	}
	if req.PIN == "" {
		h.responder.WriteError(ctx, w, http.StatusBadRequest, "BAD_REQUEST", errors.New("pin is required"))
		return
	}
	d, err := h.registry.Enroll(ctx, service.EnrollParams{
		Fingerprint:     fingerprint.Generate(req.Signals),
		Descriptor:      fingerprint.Describe(req.Signals),
		PIN:             req.PIN,
		ReplaceExisting: req.ReplaceExisting,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPIN):
			h.responder.WriteError(ctx, w, http.StatusUnauthorized, "INVALID_PIN", err)
		case errors.Is(err, service.ErrEmployeeInactive):
			h.responder.WriteError(ctx, w, http.StatusForbidden, "EMPLOYEE_INACTIVE", err)
		case errors.Is(err, service.ErrConflictRequiresConfirmation):
			h.responder.WriteError(ctx, w, http.StatusConflict, "CONFIRM_REPLACE", err)
		default:
			h.responder.WriteError(ctx, w, http.StatusInternalServerError, "", err)
		}
		return
	}
	h.responder.WriteJSON(ctx, w, http.StatusCreated, toDeviceResponse(d))
}

type deactivateRequest struct {
	Signals fingerprint.Signals `json:"signals"`
}

// Deactivate handles DELETE /api/attendance/device: self-service dissociation
// of the calling device. Idempotent.
func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req deactivateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.WriteError(ctx, w, http.StatusBadRequest, "BAD_REQUEST", errors.New("invalid request body"))
		return
	}
	if err := h.registry.Deactivate(ctx, fingerprint.Generate(req.Signals)); err != nil {
		h.responder.WriteError(ctx, w, http.StatusInternalServerError, "", err)
		return
	}
	h.responder.WriteJSON(ctx, w, http.StatusNoContent, nil)
}

// List handles GET /api/admin/devices.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	devices, err := h.registry.List(ctx)
	if err != nil {
		h.responder.WriteError(ctx, w, http.StatusInternalServerError, "", err)
		return
	}
	out := make([]deviceResponse, 0, len(devices))
	for _, d := range devices {
		out = append(out, toDeviceResponse(d))
	}
	h.responder.WriteJSON(ctx, w, http.StatusOK, map[string]any{"devices": out})
}
