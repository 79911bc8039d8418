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
	"punchgate/internal/httpapi"
)

type ledgerAdmin interface {
	ListRange(ctx context.Context, employeeID string, from, to time.Time) ([]*domain.Record, error)
	OverrideStatus(ctx context.Context, id, status string) (*domain.Record, error)
}

// AdminHandler serves the administrative ledger endpoints. Routes mounting it
// must require an admin token.
type AdminHandler struct {
	ledger    ledgerAdmin
	loc       *time.Location
	responder httpapi.Responder
}

// NewAdmin returns an AdminHandler.
func NewAdmin(ledger ledgerAdmin, loc *time.Location, logger *slog.Logger) *AdminHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &AdminHandler{ledger: ledger, loc: loc, responder: httpapi.NewResponder(logger)}
}

// List handles GET /api/admin/attendance?from=&to=&employeeId=.
// from and to default to today.
func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	now := time.Now().In(h.loc)
	from, to := now, now
	var err error
	if s := q.Get("from"); s != "" {
		if from, err = time.ParseInLocation("2006-01-02", s, h.loc); err != nil {
			h.responder.WriteError(ctx, w, http.StatusBadRequest, "BAD_RANGE", errors.New("from must be YYYY-MM-DD"))
			return
		}
	}
	if s := q.Get("to"); s != "" {
		if to, err = time.ParseInLocation("2006-01-02", s, h.loc); err != nil {
			h.responder.WriteError(ctx, w, http.StatusBadRequest, "BAD_RANGE", errors.New("to must be YYYY-MM-DD"))
			return
		}
	}
	if to.Before(from) {
		h.responder.WriteError(ctx, w, http.StatusBadRequest, "BAD_RANGE", errors.New("to must not precede from"))
		return
	}

	recs, err := h.ledger.ListRange(ctx, q.Get("employeeId"), from, to)
	if err != nil {
		h.responder.WriteError(ctx, w, http.StatusInternalServerError, "", err)
		return
	}
	out := make([]recordResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toRecordResponse(rec))
	}
	h.responder.WriteJSON(ctx, w, http.StatusOK, map[string]any{"records": out})
}

type statusOverrideRequest struct {
	Status string `json:"status"`
}

// OverrideStatus handles PATCH /api/admin/attendance/{id}/status.
func (h *AdminHandler) OverrideStatus(w http.ResponseWriter, r *http.Request, recordID string) {
	ctx := r.Context()
	var req statusOverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.WriteError(ctx, w, http.StatusBadRequest, "BAD_REQUEST", errors.New("invalid request body"))
		return
	}
	rec, err := h.ledger.OverrideStatus(ctx, recordID, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidStatus):
			h.responder.WriteError(ctx, w, http.StatusUnprocessableEntity, "INVALID_STATUS", err)
		case errors.Is(err, service.ErrRecordNotFound):
			h.responder.WriteError(ctx, w, http.StatusNotFound, "RECORD_NOT_FOUND", err)
		default:
			h.responder.WriteError(ctx, w, http.StatusInternalServerError, "", err)
		}
		return
	}
	h.responder.WriteJSON(ctx, w, http.StatusOK, toRecordResponse(rec))
}
