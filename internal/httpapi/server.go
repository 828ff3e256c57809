// Copyright (c) 2026 Sepehrz All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package httpapi exposes the operator-facing HTTP surface: registry
// views, resolver health, the check history, Prometheus metrics, and
// a manual cycle trigger. It is read-only except for the trigger;
// domain management happens through the CLI.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sepehrz/filterwatch/internal/history"
	"github.com/sepehrz/filterwatch/src/filterwatch"
)

// Server bundles the handlers' dependencies.
type Server struct {
	registry *filterwatch.Registry
	watcher  *filterwatch.Watcher
	history  *history.Store // nil when the audit trail is disabled
	trigger  func()         // fires one manual check cycle
	log      *zap.SugaredLogger
}

// New returns a server over the given collaborators. history may be
// nil; trigger must start one cycle without blocking.
func New(registry *filterwatch.Registry, watcher *filterwatch.Watcher, hist *history.Store, trigger func(), log *zap.SugaredLogger) *Server {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Server{
		registry: registry,
		watcher:  watcher,
		history:  hist,
		trigger:  trigger,
		log:      log,
	}
}

// Router builds the route tree.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.handleHealthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/domains", s.handleListDomains)
		r.Get("/domains/{name}", s.handleGetDomain)
		r.Get("/domains/{name}/history", s.handleDomainHistory)
		r.Get("/resolvers", s.handleResolvers)
		r.Post("/cycle", s.handleTriggerCycle)
	})

	return r
}

// domainResponse is a DomainEntry with its category made explicit;
// the entry itself omits the category because the stored document
// carries it positionally.
type domainResponse struct {
	filterwatch.DomainEntry
	Category string `json:"category"`
}

func toDomainResponse(e filterwatch.DomainEntry) domainResponse {
	return domainResponse{DomainEntry: e, Category: e.Category.String()}
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListDomains(w http.ResponseWriter, _ *http.Request) {
	entries, err := s.registry.ListAll()
	if err != nil {
		s.log.Errorw("list domains failed", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to read registry")
		return
	}

	out := make([]domainResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toDomainResponse(e))
	}
	writeJSON(w, http.StatusOK, map[string]any{"domains": out, "count": len(out)})
}

func (s *Server) handleGetDomain(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	entry, err := s.registry.Find(name)
	if err != nil {
		if errors.Is(err, filterwatch.ErrDomainNotFound) {
			writeError(w, http.StatusNotFound, "domain not found")
			return
		}
		s.log.Errorw("find domain failed", "domain", name, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to read registry")
		return
	}
	writeJSON(w, http.StatusOK, toDomainResponse(entry))
}

func (s *Server) handleDomainHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusNotFound, "history is not enabled")
		return
	}

	name := chi.URLParam(r, "name")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	records, err := s.history.Recent(r.Context(), name, limit)
	if err != nil {
		s.log.Errorw("history query failed", "domain", name, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to read history")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"domain": name, "records": records})
}

// resolverResponse flattens a ResolverStatus for JSON.
type resolverResponse struct {
	Resolver  string `json:"resolver"`
	Role      string `json:"role"`
	Online    bool   `json:"online"`
	LatencyMs int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

func (s *Server) handleResolvers(w http.ResponseWriter, r *http.Request) {
	statuses := s.watcher.ResolverStatus(r.Context())

	out := make([]resolverResponse, 0, len(statuses))
	for _, st := range statuses {
		res := resolverResponse{
			Resolver:  st.Resolver,
			Role:      st.Role,
			Online:    st.Online,
			LatencyMs: st.LatencyMs,
		}
		if st.Error != nil {
			res.Error = st.Error.Error()
		}
		out = append(out, res)
	}
	writeJSON(w, http.StatusOK, map[string]any{"resolvers": out})
}

func (s *Server) handleTriggerCycle(w http.ResponseWriter, _ *http.Request) {
	s.trigger()
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "cycle started"})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
