// Package admin exposes the administrative cache surface over HTTP: enumerate
// the registered caches, toggle them on or off, and reset their contents.
// This is the JSON backend the portal's cache-management screen talks to; it
// never sits on the page-serving hot path.
package admin

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/klauspost/compress/gzhttp"
	"github.com/rs/zerolog"

	"github.com/harborcms/portalcache/internal/apperrors"
	"github.com/harborcms/portalcache/internal/cacheable"
	"github.com/harborcms/portalcache/internal/metrics"
)

// Server serves the administrative cache endpoints.
type Server struct {
	registry *cacheable.Registry
	logger   zerolog.Logger
}

// NewServer creates an admin server over the given registry.
func NewServer(registry *cacheable.Registry, logger zerolog.Logger) *Server {
	return &Server{
		registry: registry,
		logger:   logger.With().Str("component", "admin").Logger(),
	}
}

// Handler builds the route table wrapped with recovery, request logging, and
// gzip response compression.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /caches", s.handleList)
	mux.HandleFunc("GET /caches/{name}", s.handleInfos)
	mux.HandleFunc("PUT /caches/{name}/enabled", s.handleEnable)
	mux.HandleFunc("POST /caches/reset", s.handleResetAll)
	mux.HandleFunc("POST /caches/{name}/reset", s.handleReset)

	return gzhttp.GzipHandler(s.recoverPanics(s.logRequests(mux)))
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	services := s.registry.Services()
	infos := make([]cacheable.Infos, 0, len(services))
	for _, svc := range services {
		infos = append(infos, svc.Infos())
	}
	s.writeJSON(w, http.StatusOK, infos)
}

func (s *Server) handleInfos(w http.ResponseWriter, r *http.Request) {
	svc, err := s.registry.Get(r.PathValue("name"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, svc.Infos())
}

type enableRequest struct {
	Enabled bool `json:"enabled"`
}

func (s *Server) handleEnable(w http.ResponseWriter, r *http.Request) {
	svc, err := s.registry.Get(r.PathValue("name"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	var req enableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	action := "disable"
	if req.Enabled {
		action = "enable"
	}
	if err := svc.Enable(req.Enabled); err != nil {
		s.logger.Error().Err(err).Str("cache", svc.Name()).Msg("Failed to enable cache")
		s.writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	metrics.CacheTogglesTotal.WithLabelValues(svc.Name(), action).Inc()

	s.writeJSON(w, http.StatusOK, svc.Infos())
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	svc, err := s.registry.Get(r.PathValue("name"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	svc.Reset()
	metrics.CacheResetsTotal.WithLabelValues(svc.Name()).Inc()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleResetAll(w http.ResponseWriter, r *http.Request) {
	for _, svc := range s.registry.Services() {
		svc.Reset()
		metrics.CacheResetsTotal.WithLabelValues(svc.Name()).Inc()
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error().Err(err).Msg("Failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	var notFound *apperrors.ErrNotFound
	if errors.As(err, &notFound) {
		s.writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

// statusRecorder captures the response code for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("Admin request")
	})
}

func (s *Server) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				sentry.CurrentHub().Recover(rec)
				s.logger.Error().Interface("panic", rec).Str("path", r.URL.Path).Msg("Admin handler panicked")
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
