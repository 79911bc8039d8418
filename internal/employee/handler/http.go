// Package handler exposes the admin employee directory endpoints, including
// the printed attendance code payload for each employee.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"punchgate/internal/attendancecode"
	empdomain "punchgate/internal/employee/domain"
	"punchgate/internal/httpapi"
)

type directory interface {
	GetByID(ctx context.Context, id string) (*empdomain.Employee, error)
	List(ctx context.Context) ([]*empdomain.Employee, error)
}

// Handler serves the employee directory endpoints.
type Handler struct {
	employees    directory
	punchLinkURL string
	responder    httpapi.Responder
}

// New returns an employee Handler. punchLinkBase is the public base URL the
// universal punch link is built from.
func New(employees directory, punchLinkBase string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	link, err := attendancecode.PunchLink(punchLinkBase)
	if err != nil {
		logger.Error("punch link disabled: invalid base URL", "base_url", punchLinkBase, "error", err)
		link = ""
	}
	return &Handler{employees: employees, punchLinkURL: link, responder: httpapi.NewResponder(logger)}
}

type employeeResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	Active bool   `json:"active"`
}

// List handles GET /api/admin/employees.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	emps, err := h.employees.List(ctx)
	if err != nil {
		h.responder.WriteError(ctx, w, http.StatusInternalServerError, "", err)
		return
	}
	out := make([]employeeResponse, 0, len(emps))
	for _, e := range emps {
		out = append(out, employeeResponse{ID: e.ID, Name: e.Name, Role: e.Role, Active: e.Active})
	}
	h.responder.WriteJSON(ctx, w, http.StatusOK, map[string]any{"employees": out})
}

type codeResponse struct {
	Payload   json.RawMessage `json:"payload"`
	PunchLink string          `json:"punchLink,omitempty"`
}

// Code handles GET /api/admin/employees/{id}/code: the printable per-employee
// attendance payload plus the shared universal punch link.
func (h *Handler) Code(w http.ResponseWriter, r *http.Request, employeeID string) {
	ctx := r.Context()
	emp, err := h.employees.GetByID(ctx, employeeID)
	if err != nil {
		h.responder.WriteError(ctx, w, http.StatusInternalServerError, "", err)
		return
	}
	if emp == nil {
		h.responder.WriteError(ctx, w, http.StatusNotFound, "EMPLOYEE_NOT_FOUND", errors.New("employee not found"))
		return
	}
	payload, err := attendancecode.EncodeEmployee(emp.ID)
	if err != nil {
		h.responder.WriteError(ctx, w, http.StatusInternalServerError, "", err)
		return
	}
	h.responder.WriteJSON(ctx, w, http.StatusOK, codeResponse{
		Payload:   json.RawMessage([]byte(payload)),
		PunchLink: h.punchLinkURL,
	})
}
