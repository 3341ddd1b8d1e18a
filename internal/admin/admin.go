// Package admin exposes a small HTTP introspection surface over the
// standard protocol's parameter registry and server metrics: /healthz,
// /metadata, /parameters, and /metrics, styled on the teacher stack's
// gorilla/mux HTTP server.
package admin

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/Roy2player/MSAPI-sub000/internal/app"
	"github.com/Roy2player/MSAPI-sub000/internal/metrics"
)

// Server is the admin HTTP surface. It never mutates the application or
// server it observes; every route is read-only.
type Server struct {
	application *app.Application
	metrics     *metrics.Collector
	log         *logrus.Logger
	router      *mux.Router
}

// New builds the admin router. metrics may be nil, in which case
// /metrics responds 404.
func New(a *app.Application, m *metrics.Collector, log *logrus.Logger) *Server {
	s := &Server{application: a, metrics: m, log: log}
	r := mux.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(requestLogger(log))

	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	r.HandleFunc("/metadata", s.handleMetadata).Methods(http.MethodGet)
	r.HandleFunc("/parameters", s.handleParameters).Methods(http.MethodGet)
	if m != nil {
		r.Handle("/metrics", promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.router.ServeHTTP(w, r) }

// ListenAndServe runs the admin surface on addr until it errors.
func ListenAndServe(addr string, s *Server) error {
	return http.ListenAndServe(addr, s)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"state": s.application.State().String(),
	})
}

func (s *Server) handleMetadata(w http.ResponseWriter, _ *http.Request) {
	raw, err := s.application.Registry().MetadataJSON()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

func (s *Server) handleParameters(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.application.Registry().Snapshot())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
