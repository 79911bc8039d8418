// Package handler exposes the punch flow over HTTP: scan a printed employee
// code, enter via the universal punch link, and commit a captured signature.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"punchgate/internal/attendance/domain"
	"punchgate/internal/attendance/service"
	"punchgate/internal/attendancecode"
	devservice "punchgate/internal/device/service"
	empdomain "punchgate/internal/employee/domain"
	"punchgate/internal/fingerprint"
	"punchgate/internal/httpapi"
	"punchgate/internal/security"
)

type punchService interface {
	Punch(ctx context.Context, employeeID string, fp fingerprint.Fingerprint) (*service.Intent, error)
	Commit(ctx context.Context, intent *service.Intent, signature []byte) (*domain.Record, error)
}

type deviceResolver interface {
	Resolve(ctx context.Context, fp fingerprint.Fingerprint) (*devservice.Resolution, error)
}

type employeeDirectory interface {
	GetByID(ctx context.Context, id string) (*empdomain.Employee, error)
}

type intentTokens interface {
	IssueIntent(employeeID, fingerprint, kind, day string, punchAt time.Time) (token string, expiresAt time.Time, err error)
	ValidateIntent(tokenString string) (*security.IntentClaims, error)
}

// Handler serves the punch endpoints.
type Handler struct {
	punches   punchService
	devices   deviceResolver
	employees employeeDirectory
	tokens    intentTokens
	loc       *time.Location
	responder httpapi.Responder
	logger    *slog.Logger
}

// New returns an attendance Handler. loc must match the punch service's zone.
func New(punches punchService, devices deviceResolver, employees employeeDirectory, tokens intentTokens, loc *time.Location, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{
		punches:   punches,
		devices:   devices,
		employees: employees,
		tokens:    tokens,
		loc:       loc,
		responder: httpapi.NewResponder(logger),
		logger:    logger,
	}
}

type scanRequest struct {
	Payload string              `json:"payload"`
	Signals fingerprint.Signals `json:"signals"`
}

type punchRequest struct {
	Signals fingerprint.Signals `json:"signals"`
}

type intentResponse struct {
	IntentToken string `json:"intentToken"`
	Kind        string `json:"kind"`
	PrefilledAt string `json:"prefilledAt"`
	Day         string `json:"day"`
	ExpiresAt   string `json:"expiresAt"`
	Employee    struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"employee"`
}

// Scan handles POST /api/attendance/scan: a decoded per-employee printed code
// plus the scanning device's signals.
func (h *Handler) Scan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.WriteError(ctx, w, http.StatusBadRequest, "BAD_REQUEST", errors.New("invalid request body"))
		return
	}
	employeeID, err := attendancecode.DecodeEmployee(req.Payload)
	if err != nil {
		h.responder.WriteError(ctx, w, http.StatusBadRequest, "BAD_PAYLOAD", err)
		return
	}
	emp, err := h.employees.GetByID(ctx, employeeID)
	if err != nil {
		h.responder.WriteError(ctx, w, http.StatusInternalServerError, "", err)
		return
	}
	if emp == nil || !emp.Active {
		h.responder.WriteError(ctx, w, http.StatusNotFound, "EMPLOYEE_NOT_FOUND", errors.New("employee not found"))
		return
	}
	h.issueIntent(ctx, w, emp, fingerprint.Generate(req.Signals))
}

// Punch handles POST /api/attendance/punch: the universal link entry. The
// employee's identity comes entirely from the device binding.
func (h *Handler) Punch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req punchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.WriteError(ctx, w, http.StatusBadRequest, "BAD_REQUEST", errors.New("invalid request body"))
		return
	}
	fp := fingerprint.Generate(req.Signals)
	res, err := h.devices.Resolve(ctx, fp)
	if err != nil {
		if errors.Is(err, devservice.ErrNotFound) {
			h.responder.WriteError(ctx, w, http.StatusNotFound, "DEVICE_NOT_ENROLLED", errors.New("device not enrolled"))
			return
		}
		h.responder.WriteError(ctx, w, http.StatusInternalServerError, "", err)
		return
	}
	h.issueIntent(ctx, w, res.Employee, fp)
}

func (h *Handler) issueIntent(ctx context.Context, w http.ResponseWriter, emp *empdomain.Employee, fp fingerprint.Fingerprint) {
	intent, err := h.punches.Punch(ctx, emp.ID, fp)
	if err != nil {
		if errors.Is(err, service.ErrAlreadyComplete) {
			h.responder.WriteError(ctx, w, http.StatusConflict, "ALREADY_COMPLETE", err)
			return
		}
		h.responder.WriteError(ctx, w, http.StatusInternalServerError, "", err)
		return
	}
	day := intent.Day.Format("2006-01-02")
	token, expiresAt, err := h.tokens.IssueIntent(emp.ID, string(fp), intent.Kind, day, intent.PrefilledAt)
	if err != nil {
		h.responder.WriteError(ctx, w, http.StatusInternalServerError, "", err)
		return
	}
	resp := intentResponse{
		IntentToken: token,
		Kind:        intent.Kind,
		PrefilledAt: intent.PrefilledAt.Format(time.RFC3339),
		Day:         day,
		ExpiresAt:   expiresAt.UTC().Format(time.RFC3339),
	}
	resp.Employee.ID = emp.ID
	resp.Employee.Name = emp.Name
	h.responder.WriteJSON(ctx, w, http.StatusOK, resp)
}

type commitRequest struct {
	IntentToken string `json:"intentToken"`
	// Signature is the base64-encoded signed-image artifact.
	Signature []byte `json:"signature"`
}

type recordResponse struct {
	ID            string `json:"id"`
	EmployeeID    string `json:"employeeId"`
	Day           string `json:"day"`
	Status        string `json:"status"`
	ArrivalTime   string `json:"arrivalTime,omitempty"`
	DepartureTime string `json:"departureTime,omitempty"`
}

func toRecordResponse(rec *domain.Record) recordResponse {
	out := recordResponse{
		ID:         rec.ID,
		EmployeeID: rec.EmployeeID,
		Day:        rec.Day.Format("2006-01-02"),
		Status:     rec.Status,
	}
	if rec.ArrivalTime != nil {
		out.ArrivalTime = rec.ArrivalTime.Format(time.RFC3339)
	}
	if rec.DepartureTime != nil {
		out.DepartureTime = rec.DepartureTime.Format(time.RFC3339)
	}
	return out
}

// Commit handles POST /api/attendance/commit: the intent token plus the
// captured signature artifact.
func (h *Handler) Commit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req commitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.WriteError(ctx, w, http.StatusBadRequest, "BAD_REQUEST", errors.New("invalid request body"))
		return
	}
	claims, err := h.tokens.ValidateIntent(req.IntentToken)
	if err != nil {
		h.responder.WriteError(ctx, w, http.StatusUnauthorized, "INVALID_INTENT", errors.New("invalid or expired intent token"))
		return
	}
	day, err := time.ParseInLocation("2006-01-02", claims.Day, h.loc)
	if err != nil {
		h.responder.WriteError(ctx, w, http.StatusUnauthorized, "INVALID_INTENT", errors.New("invalid or expired intent token"))
		return
	}
	intent := &service.Intent{
		Kind:        claims.Kind,
		EmployeeID:  claims.Subject,
		Fingerprint: fingerprint.Fingerprint(claims.Fingerprint),
		Day:         day,
		PrefilledAt: time.Unix(claims.PunchAt, 0).In(h.loc),
	}
	rec, err := h.punches.Commit(ctx, intent, req.Signature)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSignatureRequired):
			h.responder.WriteError(ctx, w, http.StatusUnprocessableEntity, "SIGNATURE_REQUIRED", err)
		case errors.Is(err, service.ErrAlreadyComplete):
			h.responder.WriteError(ctx, w, http.StatusConflict, "ALREADY_COMPLETE", err)
		case errors.Is(err, service.ErrNoArrival):
			h.responder.WriteError(ctx, w, http.StatusConflict, "NO_ARRIVAL", err)
		case errors.Is(err, service.ErrInvalidIntent):
			h.responder.WriteError(ctx, w, http.StatusBadRequest, "INVALID_INTENT", err)
		default:
			h.responder.WriteError(ctx, w, http.StatusInternalServerError, "", err)
		}
		return
	}
	h.responder.WriteJSON(ctx, w, http.StatusCreated, toRecordResponse(rec))
}
