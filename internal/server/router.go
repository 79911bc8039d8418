// Package server assembles the HTTP API: routing, middleware order, and the
// listener lifecycle.
package server

import (
	"net/http"
	"strings"

	adminhandler "punchgate/internal/admin/handler"
	attendancehandler "punchgate/internal/attendance/handler"
	devicehandler "punchgate/internal/device/handler"
	employeehandler "punchgate/internal/employee/handler"
	"punchgate/internal/httpapi"
)

// RouterConfig carries the handlers and middleware for NewRouter. Nil handlers
// leave their routes unregistered.
type RouterConfig struct {
	Attendance      *attendancehandler.Handler
	AttendanceAdmin *attendancehandler.AdminHandler
	Devices         *devicehandler.Handler
	Employees       *employeehandler.Handler
	Admin           *adminhandler.Handler
	// AdminAuth guards every /api/admin route except login.
	AdminAuth  func(http.Handler) http.Handler
	Middleware []func(http.Handler) http.Handler
}

// NewRouter builds the route table. Outer middleware wraps everything;
// AdminAuth wraps only the administrative surface.
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	if cfg.Attendance != nil {
		mux.HandleFunc("/api/attendance/scan", postOnly(cfg.Attendance.Scan))
		mux.HandleFunc("/api/attendance/punch", postOnly(cfg.Attendance.Punch))
		mux.HandleFunc("/api/attendance/commit", postOnly(cfg.Attendance.Commit))
	}
	if cfg.Devices != nil {
		mux.HandleFunc("/api/attendance/enroll", postOnly(cfg.Devices.Enroll))
		mux.HandleFunc("/api/attendance/device", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodDelete {
				httpapi.MethodNotAllowed(w, http.MethodDelete)
				return
			}
			cfg.Devices.Deactivate(w, r)
		})
	}
	if cfg.Admin != nil {
		mux.HandleFunc("/api/admin/login", postOnly(cfg.Admin.Login))
	}

	adminMux := http.NewServeMux()
	if cfg.Devices != nil {
		adminMux.HandleFunc("/api/admin/devices", getOnly(cfg.Devices.List))
	}
	if cfg.AttendanceAdmin != nil {
		adminMux.HandleFunc("/api/admin/attendance", getOnly(cfg.AttendanceAdmin.List))
		adminMux.HandleFunc("/api/admin/attendance/", func(w http.ResponseWriter, r *http.Request) {
			rest := strings.TrimPrefix(r.URL.Path, "/api/admin/attendance/")
			id, ok := strings.CutSuffix(rest, "/status")
			if !ok || id == "" || strings.Contains(id, "/") {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodPatch {
				httpapi.MethodNotAllowed(w, http.MethodPatch)
				return
			}
			cfg.AttendanceAdmin.OverrideStatus(w, r, id)
		})
	}
	if cfg.Employees != nil {
		adminMux.HandleFunc("/api/admin/employees", getOnly(cfg.Employees.List))
		adminMux.HandleFunc("/api/admin/employees/", func(w http.ResponseWriter, r *http.Request) {
			rest := strings.TrimPrefix(r.URL.Path, "/api/admin/employees/")
			id, ok := strings.CutSuffix(rest, "/code")
			if !ok || id == "" || strings.Contains(id, "/") {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodGet {
				httpapi.MethodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Employees.Code(w, r, id)
		})
	}

	var adminHandler http.Handler = adminMux
	if cfg.AdminAuth != nil {
		adminHandler = cfg.AdminAuth(adminMux)
	}
	mux.Handle("/api/admin/devices", adminHandler)
	mux.Handle("/api/admin/attendance", adminHandler)
	mux.Handle("/api/admin/attendance/", adminHandler)
	mux.Handle("/api/admin/employees", adminHandler)
	mux.Handle("/api/admin/employees/", adminHandler)

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	var handler http.Handler = mux
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		if cfg.Middleware[i] != nil {
			handler = cfg.Middleware[i](handler)
		}
	}
	return handler
}

func postOnly(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			httpapi.MethodNotAllowed(w, http.MethodPost)
			return
		}
		h(w, r)
	}
}

func getOnly(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			httpapi.MethodNotAllowed(w, http.MethodGet)
			return
		}
		h(w, r)
	}
}
