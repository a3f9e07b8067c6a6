package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/vyvo/netblank/pkg/auth"
	"github.com/vyvo/netblank/pkg/netconfig"
	"github.com/vyvo/netblank/pkg/neterr"
	"github.com/vyvo/netblank/pkg/netrouter"
	"github.com/vyvo/netblank/pkg/source"
)

type server struct {
	router   *netrouter.BlankRouter
	store    *netconfig.Store
	errors   *neterr.MemReporter
	snapshot source.Snapshot
	adminKey string
	limiter  *rate.Limiter
	gatherer prometheus.Gatherer
	logger   neterr.Logger
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(timeoutMiddleware(30 * time.Second))
	r.Use(s.rateLimit)

	r.Get("/healthz", healthzHandler)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	r.Get("/endpoints", s.handleListEndpoints)
	r.Get("/endpoints/{code}", s.handleGetEndpoint)
	r.With(s.requireAdmin).Put("/endpoints/{code}", s.handlePutEndpoint)

	r.Post("/requests/{code}", s.handleBuildRequest)
	r.Get("/urls/{code}", s.handleURLRequest)

	r.Get("/options", s.handleListOptions)
	r.With(s.requireAdmin).Put("/options/{name}", s.handleEnableOption)
	r.With(s.requireAdmin).Delete("/options/{name}", s.handleDisableOption)

	r.Get("/errors", s.handleListErrors)
	return r
}

func timeoutMiddleware(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (s *server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && !s.limiter.Allow() {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireAdmin rejects mutations unless the caller presents the admin key.
// With no admin key configured, mutations are disabled entirely.
func (s *server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.adminKey == "" {
			writeError(w, http.StatusForbidden, "admin mutations disabled")
			return
		}
		key, err := auth.ExtractKey(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		if key != s.adminKey {
			writeError(w, http.StatusUnauthorized, "invalid API key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func healthzHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type endpointView struct {
	Code     string             `json:"code"`
	URL      string             `json:"url"`
	Endpoint netconfig.Endpoint `json:"endpoint"`
}

func (s *server) handleListEndpoints(w http.ResponseWriter, r *http.Request) {
	entries := s.store.Entries()
	out := make([]endpointView, 0, len(entries))
	for _, e := range entries {
		out = append(out, endpointView{Code: e.Code, URL: e.Endpoint.String(), Endpoint: e.Endpoint})
	}
	writeJSON(w, http.StatusOK, map[string]any{"endpoints": out})
}

func (s *server) handleGetEndpoint(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	ep, err := s.store.Lookup(code)
	if err != nil {
		s.writeNetError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, endpointView{Code: code, URL: ep.String(), Endpoint: ep})
}

type putEndpointRequest struct {
	URL      string              `json:"url"`
	Endpoint *netconfig.Endpoint `json:"endpoint"`
}

func (s *server) handlePutEndpoint(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	var body putEndpointRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	var ep netconfig.Endpoint
	switch {
	case body.Endpoint != nil:
		ep = *body.Endpoint
	case body.URL != "":
		parsed, err := netconfig.ParseEndpoint(body.URL)
		if err != nil {
			s.writeNetError(w, err)
			return
		}
		ep = parsed
	default:
		writeError(w, http.StatusBadRequest, "url or endpoint is required")
		return
	}
	if _, err := ep.URL(); err != nil {
		s.writeNetError(w, err)
		return
	}
	if err := s.store.SetEndpoint(ep, code); err != nil {
		s.writeNetError(w, err)
		return
	}
	if err := s.snapshot.Save(s.store); err != nil {
		s.logger.Error("snapshot save failed", "error", err)
	}
	s.logger.Info("endpoint updated", "code", code, "url", ep.String())
	writeJSON(w, http.StatusOK, endpointView{Code: code, URL: ep.String(), Endpoint: ep})
}

type requestView struct {
	ID     string      `json:"id"`
	Code   string      `json:"code"`
	URL    string      `json:"url"`
	Header http.Header `json:"header"`
}

type buildRequestBody struct {
	URL string `json:"url"`
}

func (s *server) handleBuildRequest(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	var body buildRequestBody
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	req, err := s.router.BuildRequestFor(r.Context(), code, body.URL)
	if err != nil {
		s.writeNetError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newRequestView(code, req))
}

func (s *server) handleURLRequest(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	req, err := s.router.URLRequestFor(r.Context(), code)
	if err != nil {
		s.writeNetError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newRequestView(code, req))
}

// sensitiveHeaders are masked in request previews.
var sensitiveHeaders = []string{"Authorization", "Proxy-Authorization", "Cookie", "X-Api-Key"}

const redacted = "[REDACTED]"

func newRequestView(code string, req *netconfig.Request) requestView {
	header := req.Header.Clone()
	if header == nil {
		header = http.Header{}
	}
	for _, name := range sensitiveHeaders {
		if len(header.Values(name)) > 0 {
			header.Set(name, redacted)
		}
	}
	return requestView{
		ID:     uuid.NewString(),
		Code:   code,
		URL:    req.URL.String(),
		Header: header,
	}
}

func (s *server) handleListOptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"options": s.router.Options()})
}

func (s *server) handleEnableOption(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	s.router.EnableOption(name)
	writeJSON(w, http.StatusOK, map[string]any{"name": name, "enabled": true})
}

func (s *server) handleDisableOption(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	s.router.DisableOption(name)
	writeJSON(w, http.StatusOK, map[string]any{"name": name, "enabled": false})
}

func (s *server) handleListErrors(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"errors": s.errors.Records()})
}

func (s *server) writeNetError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, neterr.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, neterr.ErrInvalidParameter), errors.Is(err, neterr.ErrInvalidURL):
		status = http.StatusBadRequest
	}
	writeError(w, status, err.Error())
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
