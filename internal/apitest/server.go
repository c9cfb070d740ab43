// Package apitest provides a fake follow-up tracker API for package tests.
// Routes without a handler answer 404 with a message, mirroring how the real
// server rejects unknown resources.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
)

// Handlers overrides individual routes of the fake API. Nil entries answer
// 404.
type Handlers struct {
	Login               http.HandlerFunc
	Register            http.HandlerFunc
	VerifyExternal      http.HandlerFunc
	ListPersons         http.HandlerFunc
	CreatePerson        http.HandlerFunc
	CreateReport        func(personID string, w http.ResponseWriter, r *http.Request)
	PersonReports       func(personID string, w http.ResponseWriter, r *http.Request)
	AdminUsers          http.HandlerFunc
	AdminPersonsForUser func(userID string, w http.ResponseWriter, r *http.Request)
	AllReports          http.HandlerFunc
}

// Server is a fake remote API backed by httptest. It records the credentials
// and request counts observed so tests can assert on gateway behavior.
type Server struct {
	URL string

	hts *httptest.Server

	mu           sync.Mutex
	authHeaders  []string
	requestCount int
}

// New starts a fake API server; it is shut down when the test ends.
func New(t *testing.T, h Handlers) *Server {
	t.Helper()

	s := &Server{}

	r := chi.NewRouter()
	r.Use(s.record)

	r.Post("/auth/login", orNotFound(h.Login))
	r.Post("/auth/register", orNotFound(h.Register))
	r.Post("/auth/google/verify-token", orNotFound(h.VerifyExternal))
	r.Get("/persons", orNotFound(h.ListPersons))
	r.Post("/persons", orNotFound(h.CreatePerson))
	r.Get("/persons/reports/all", orNotFound(h.AllReports))
	r.Get("/persons/admin/users/list", orNotFound(h.AdminUsers))
	r.Get("/persons/admin/users/{userID}", func(w http.ResponseWriter, req *http.Request) {
		if h.AdminPersonsForUser == nil {
			notFound(w)
			return
		}
		h.AdminPersonsForUser(chi.URLParam(req, "userID"), w, req)
	})
	r.Post("/persons/{personID}/report", func(w http.ResponseWriter, req *http.Request) {
		if h.CreateReport == nil {
			notFound(w)
			return
		}
		h.CreateReport(chi.URLParam(req, "personID"), w, req)
	})
	r.Get("/persons/{personID}", func(w http.ResponseWriter, req *http.Request) {
		if h.PersonReports == nil {
			notFound(w)
			return
		}
		h.PersonReports(chi.URLParam(req, "personID"), w, req)
	})

	s.hts = httptest.NewServer(r)
	s.URL = s.hts.URL
	t.Cleanup(s.hts.Close)

	return s
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requestCount++
		s.authHeaders = append(s.authHeaders, r.Header.Get("Authorization"))
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

// RequestCount returns how many requests the server has seen.
func (s *Server) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requestCount
}

// LastAuthorization returns the Authorization header of the most recent
// request, empty when no request arrived or no header was sent.
func (s *Server) LastAuthorization() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.authHeaders) == 0 {
		return ""
	}
	return s.authHeaders[len(s.authHeaders)-1]
}

func orNotFound(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, _ *http.Request) {
		notFound(w)
	}
}

func notFound(w http.ResponseWriter) {
	WriteMessage(w, http.StatusNotFound, "not found")
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteMessage writes the server's standard error shape.
func WriteMessage(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"message": message})
}
