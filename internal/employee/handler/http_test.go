package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	empdomain "punchgate/internal/employee/domain"
)

type fakeDirectory struct {
	byID map[string]*empdomain.Employee
}

func (f *fakeDirectory) GetByID(_ context.Context, id string) (*empdomain.Employee, error) {
	return f.byID[id], nil
}

func (f *fakeDirectory) List(context.Context) ([]*empdomain.Employee, error) {
	var out []*empdomain.Employee
	for _, e := range f.byID {
		out = append(out, e)
	}
	return out, nil
}

func newTestHandler() *Handler {
	dir := &fakeDirectory{byID: map[string]*empdomain.Employee{
		"emp1": {ID: "emp1", Name: "Budi", Role: "staff", Active: true},
	}}
	return New(dir, "https://hr.example.com", nil)
}

func TestEmployeeList(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/admin/employees", nil)
	rr := httptest.NewRecorder()
	h.List(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp struct {
		Employees []employeeResponse `json:"employees"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Employees) != 1 || resp.Employees[0].Name != "Budi" {
		t.Errorf("employees = %+v", resp.Employees)
	}
}

func TestEmployeeCode(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/admin/employees/emp1/code", nil)
	rr := httptest.NewRecorder()
	h.Code(rr, req, "emp1")

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body)
	}
	var resp struct {
		Payload struct {
			Type       string `json:"type"`
			EmployeeID string `json:"employeeId"`
		} `json:"payload"`
		PunchLink string `json:"punchLink"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Payload.Type != "EMPLOYEE_ATTENDANCE" || resp.Payload.EmployeeID != "emp1" {
		t.Errorf("payload = %+v", resp.Payload)
	}
	if resp.PunchLink != "https://hr.example.com/punch" {
		t.Errorf("punch link = %q", resp.PunchLink)
	}
}

func TestNew_InvalidPunchLinkBaseIsLogged(t *testing.T) {
	dir := &fakeDirectory{byID: map[string]*empdomain.Employee{
		"emp1": {ID: "emp1", Name: "Budi", Role: "staff", Active: true},
	}}
	var logged bytes.Buffer
	h := New(dir, "not a url", slog.New(slog.NewTextHandler(&logged, nil)))

	if !strings.Contains(logged.String(), "punch link disabled") {
		t.Errorf("constructor should log the bad base URL, got %q", logged.String())
	}

	rr := httptest.NewRecorder()
	h.Code(rr, httptest.NewRequest(http.MethodGet, "/api/admin/employees/emp1/code", nil), "emp1")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp struct {
		PunchLink string `json:"punchLink"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.PunchLink != "" {
		t.Errorf("punch link = %q, want omitted", resp.PunchLink)
	}
}

func TestEmployeeCode_NotFound(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/admin/employees/ghost/code", nil)
	rr := httptest.NewRecorder()
	h.Code(rr, req, "ghost")

	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}
