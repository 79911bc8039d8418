package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"punchgate/internal/attendance/domain"
	"punchgate/internal/attendance/service"
	devservice "punchgate/internal/device/service"
	empdomain "punchgate/internal/employee/domain"
	"punchgate/internal/fingerprint"
	"punchgate/internal/security"
)

type fakePunchService struct {
	intent    *service.Intent
	punchErr  error
	record    *domain.Record
	commitErr error
	gotIntent *service.Intent
	gotSig    []byte
}

func (f *fakePunchService) Punch(_ context.Context, employeeID string, fp fingerprint.Fingerprint) (*service.Intent, error) {
	if f.punchErr != nil {
		return nil, f.punchErr
	}
	if f.intent != nil {
		return f.intent, nil
	}
	return &service.Intent{
		Kind:        service.KindArrival,
		EmployeeID:  employeeID,
		Fingerprint: fp,
		Day:         time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC),
		PrefilledAt: time.Date(2026, 3, 9, 8, 55, 0, 0, time.UTC),
	}, nil
}

func (f *fakePunchService) Commit(_ context.Context, intent *service.Intent, signature []byte) (*domain.Record, error) {
	f.gotIntent = intent
	f.gotSig = signature
	if f.commitErr != nil {
		return nil, f.commitErr
	}
	if f.record != nil {
		return f.record, nil
	}
	at := intent.PrefilledAt
	return &domain.Record{
		ID:          "rec1",
		EmployeeID:  intent.EmployeeID,
		Day:         intent.Day,
		Status:      domain.StatusPresent,
		ArrivalTime: &at,
	}, nil
}

type fakeResolver struct {
	res *devservice.Resolution
	err error
}

func (f *fakeResolver) Resolve(context.Context, fingerprint.Fingerprint) (*devservice.Resolution, error) {
	return f.res, f.err
}

type fakeDirectory struct {
	byID map[string]*empdomain.Employee
}

func (f *fakeDirectory) GetByID(_ context.Context, id string) (*empdomain.Employee, error) {
	return f.byID[id], nil
}

func testTokens(t *testing.T) *security.TokenProvider {
	t.Helper()
	p, err := security.NewTestTokenProvider()
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func newTestHandler(t *testing.T, punches *fakePunchService, resolver *fakeResolver) *Handler {
	t.Helper()
	dir := &fakeDirectory{byID: map[string]*empdomain.Employee{
		"emp1": {ID: "emp1", Name: "Budi", Active: true},
		"emp9": {ID: "emp9", Name: "Gone", Active: false},
	}}
	return New(punches, resolver, dir, testTokens(t), time.UTC, nil)
}

func postJSON(t *testing.T, h http.HandlerFunc, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(b))
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func TestScan_IssuesIntent(t *testing.T) {
	h := newTestHandler(t, &fakePunchService{}, &fakeResolver{})
	payload, err := json.Marshal(map[string]string{"type": "EMPLOYEE_ATTENDANCE", "employeeId": "emp1"})
	if err != nil {
		t.Fatal(err)
	}

	rr := postJSON(t, h.Scan, map[string]any{
		"payload": string(payload),
		"signals": fingerprint.Signals{UserAgent: "test", ScreenWidth: 1080, ScreenHeight: 2400},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body)
	}
	var resp intentResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.IntentToken == "" || resp.Kind != "arrival" || resp.Employee.Name != "Budi" {
		t.Errorf("response = %+v", resp)
	}
}

func TestScan_BadPayload(t *testing.T) {
	h := newTestHandler(t, &fakePunchService{}, &fakeResolver{})

	rr := postJSON(t, h.Scan, map[string]any{"payload": `{"type":"GIFT_CARD","employeeId":"emp1"}`})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestScan_UnknownOrInactiveEmployee(t *testing.T) {
	h := newTestHandler(t, &fakePunchService{}, &fakeResolver{})
	for _, id := range []string{"ghost", "emp9"} {
		payload, _ := json.Marshal(map[string]string{"type": "EMPLOYEE_ATTENDANCE", "employeeId": id})
		rr := postJSON(t, h.Scan, map[string]any{"payload": string(payload)})
		if rr.Code != http.StatusNotFound {
			t.Errorf("employee %s: status = %d, want 404", id, rr.Code)
		}
	}
}

func TestPunch_DeviceNotEnrolled(t *testing.T) {
	h := newTestHandler(t, &fakePunchService{}, &fakeResolver{err: devservice.ErrNotFound})

	rr := postJSON(t, h.Punch, map[string]any{"signals": fingerprint.Signals{UserAgent: "test"}})
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
	var resp struct {
		ErrorCode string `json:"error_code"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.ErrorCode != "DEVICE_NOT_ENROLLED" {
		t.Errorf("error_code = %q", resp.ErrorCode)
	}
}

func TestPunch_ResolvedDevice(t *testing.T) {
	resolver := &fakeResolver{res: &devservice.Resolution{
		Employee: &empdomain.Employee{ID: "emp1", Name: "Budi", Active: true},
	}}
	h := newTestHandler(t, &fakePunchService{}, resolver)

	rr := postJSON(t, h.Punch, map[string]any{"signals": fingerprint.Signals{UserAgent: "test"}})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body)
	}
}

func TestPunch_AlreadyComplete(t *testing.T) {
	resolver := &fakeResolver{res: &devservice.Resolution{
		Employee: &empdomain.Employee{ID: "emp1", Name: "Budi", Active: true},
	}}
	h := newTestHandler(t, &fakePunchService{punchErr: service.ErrAlreadyComplete}, resolver)

	rr := postJSON(t, h.Punch, map[string]any{"signals": fingerprint.Signals{UserAgent: "test"}})
	if rr.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rr.Code)
	}
}

func issuedToken(t *testing.T, h *Handler) string {
	t.Helper()
	payload, _ := json.Marshal(map[string]string{"type": "EMPLOYEE_ATTENDANCE", "employeeId": "emp1"})
	rr := postJSON(t, h.Scan, map[string]any{
		"payload": string(payload),
		"signals": fingerprint.Signals{UserAgent: "test"},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("scan status = %d", rr.Code)
	}
	var resp intentResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	return resp.IntentToken
}

func TestCommit_RoundTrip(t *testing.T) {
	punches := &fakePunchService{}
	h := newTestHandler(t, punches, &fakeResolver{})
	token := issuedToken(t, h)

	rr := postJSON(t, h.Commit, map[string]any{
		"intentToken": token,
		"signature":   []byte("signature-png-bytes"),
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body)
	}
	if punches.gotIntent == nil {
		t.Fatal("commit never reached the service")
	}
	if punches.gotIntent.EmployeeID != "emp1" || punches.gotIntent.Kind != "arrival" {
		t.Errorf("intent = %+v", punches.gotIntent)
	}
	if string(punches.gotSig) != "signature-png-bytes" {
		t.Errorf("signature = %q", punches.gotSig)
	}
}

func TestCommit_InvalidToken(t *testing.T) {
	h := newTestHandler(t, &fakePunchService{}, &fakeResolver{})

	rr := postJSON(t, h.Commit, map[string]any{"intentToken": "garbage", "signature": []byte("sig")})
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rr.Code)
	}
}

func TestCommit_ServiceErrors(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"signature required", service.ErrSignatureRequired, http.StatusUnprocessableEntity},
		{"already complete", service.ErrAlreadyComplete, http.StatusConflict},
		{"no arrival", service.ErrNoArrival, http.StatusConflict},
		{"invalid intent", service.ErrInvalidIntent, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			punches := &fakePunchService{commitErr: tc.err}
			h := newTestHandler(t, punches, &fakeResolver{})
			token := issuedToken(t, h)

			rr := postJSON(t, h.Commit, map[string]any{"intentToken": token, "signature": []byte("sig")})
			if rr.Code != tc.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tc.wantStatus)
			}
		})
	}
}
