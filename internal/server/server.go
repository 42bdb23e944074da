// Package server exposes the resolver over a small JSON API.
//
// Serve mode is intended for teams that want one shared resolution
// endpoint (with a shared response cache, e.g. Redis) instead of per-
// machine caches. Completed resolutions are appended to the history
// store for auditing.
package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/caravel-cli/caravel/pkg/errors"
	"github.com/caravel-cli/caravel/pkg/history"
	"github.com/caravel-cli/caravel/pkg/maven"
	"github.com/caravel-cli/caravel/pkg/resolver"
)

// Server handles resolution requests over HTTP.
type Server struct {
	resolver *resolver.Resolver
	history  history.Store
	logger   *log.Logger
}

// New creates a Server. A nil history store is replaced by an in-memory
// store.
func New(res *resolver.Resolver, hist history.Store, logger *log.Logger) *Server {
	if hist == nil {
		hist = history.NewMemoryStore()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Server{resolver: res, history: hist, logger: logger}
}

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Post("/api/resolve", s.handleResolve)
	r.Get("/api/history", s.handleHistory)
	return r
}

type resolveRequest struct {
	Coordinates []string `json:"coordinates"`
}

type artifactResponse struct {
	GroupID    string `json:"group_id"`
	ArtifactID string `json:"artifact_id"`
	Version    string `json:"version"`
	Classifier string `json:"classifier,omitempty"`
	Extension  string `json:"extension"`
	Packaging  string `json:"packaging,omitempty"`
	Repository string `json:"repository"`
	URL        string `json:"url,omitempty"`
}

type resolveResponse struct {
	ID        string             `json:"id"`
	Artifacts []artifactResponse `json:"artifacts"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if len(req.Coordinates) == 0 {
		writeError(w, http.StatusBadRequest, "coordinates required")
		return
	}

	direct := make([]*maven.Artifact, 0, len(req.Coordinates))
	for _, coord := range req.Coordinates {
		a, err := maven.ParseCoordinate(coord)
		if err != nil {
			writeError(w, http.StatusBadRequest, errors.UserMessage(err))
			return
		}
		direct = append(direct, a)
	}

	start := time.Now()
	result, err := s.resolver.ResolveArtifacts(r.Context(), direct)
	if err != nil {
		writeError(w, http.StatusInternalServerError, errors.UserMessage(err))
		return
	}

	resp := resolveResponse{ID: uuid.NewString()}
	ids := make([]string, 0, len(result))
	for _, a := range result {
		out := artifactResponse{
			GroupID:    a.GroupID,
			ArtifactID: a.ArtifactID,
			Version:    a.Version,
			Classifier: a.Classifier,
			Extension:  a.Extension,
			Packaging:  a.Packaging,
		}
		if a.Repository != nil {
			out.Repository = a.Repository.Name
		}
		if url, err := a.DownloadURL(); err == nil {
			out.URL = url
		}
		resp.Artifacts = append(resp.Artifacts, out)
		ids = append(ids, a.ID())
	}

	rec := history.Record{
		ID:        resp.ID,
		Project:   "api:" + middleware.GetReqID(r.Context()),
		Artifacts: ids,
		Duration:  time.Since(start).Milliseconds(),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.history.Append(r.Context(), rec); err != nil {
		s.logger.Warn("history append failed", "err", err)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	records, err := s.history.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "history unavailable")
		return
	}
	if records == nil {
		records = []history.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
