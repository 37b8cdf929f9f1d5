// Package server wires the HTTP surface: routes, middleware chain, and
// per-route instrumentation.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/insightlab/insightlab/pkg/gateway/config"
	"github.com/insightlab/insightlab/pkg/gateway/handlers"
	"github.com/insightlab/insightlab/pkg/gateway/metrics"
	"github.com/insightlab/insightlab/pkg/gateway/mw"
	"github.com/insightlab/insightlab/pkg/store"
)

// Storage is the full storage surface the gateway consumes. Satisfied
// by *store.Store; tests substitute an in-memory fake.
type Storage interface {
	handlers.Pinger
	handlers.ProjectStore
	handlers.MaterialStore
	handlers.TranscriptStore
	UpdateProjectSystemPrompt(ctx context.Context, id int, systemPrompt string) (*store.Project, error)
	MaterialContents(ctx context.Context, projectID int) ([]string, error)
}

// Deps are the collaborators the server routes requests to. Enhancer
// and Provisioner may be nil; the affected endpoints then fail with a
// configuration error instead of panicking.
type Deps struct {
	Store       Storage
	Enhancer    handlers.PromptEnhancer
	Provisioner handlers.SessionCreator
	Metrics     *metrics.Metrics
}

type Server struct {
	cfg    config.Config
	logger *slog.Logger
	mux    *http.ServeMux
	deps   Deps
}

func New(cfg config.Config, logger *slog.Logger, deps Deps) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:    cfg,
		logger: logger,
		mux:    http.NewServeMux(),
		deps:   deps,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.Handle("GET /healthz", handlers.HealthHandler{})
	s.mux.Handle("GET /readyz", handlers.ReadyHandler{Config: s.cfg, DB: s.deps.Store})
	if s.deps.Metrics != nil {
		s.mux.Handle("GET /metrics", s.deps.Metrics.Handler())
	}

	projects := handlers.ProjectsHandler{
		Store:        s.deps.Store,
		MaxBodyBytes: s.cfg.MaxBodyBytes,
		Logger:       s.logger,
	}
	s.handle("POST /v1/projects", http.HandlerFunc(projects.Create))
	s.handle("GET /v1/projects", http.HandlerFunc(projects.List))
	s.handle("GET /v1/projects/{id}", http.HandlerFunc(projects.Get))
	s.handle("PATCH /v1/projects/{id}", http.HandlerFunc(projects.Patch))
	s.handle("DELETE /v1/projects/{id}", http.HandlerFunc(projects.Delete))

	materials := handlers.MaterialsHandler{
		Store:        s.deps.Store,
		Projects:     s.deps.Store,
		MaxBodyBytes: s.cfg.MaxBodyBytes,
	}
	s.handle("POST /v1/projects/{id}/materials", http.HandlerFunc(materials.Create))
	s.handle("GET /v1/projects/{id}/materials", http.HandlerFunc(materials.List))
	s.handle("GET /v1/projects/{id}/materials/{mid}", http.HandlerFunc(materials.Get))
	s.handle("DELETE /v1/projects/{id}/materials/{mid}", http.HandlerFunc(materials.Delete))

	s.handle("POST /v1/prompts/enhance", handlers.EnhanceHandler{
		Store:        s.deps.Store,
		Enhancer:     s.deps.Enhancer,
		Metrics:      s.deps.Metrics,
		MaxBodyBytes: s.cfg.MaxBodyBytes,
		Logger:       s.logger,
	})

	s.handle("POST /v1/sessions", handlers.SessionsHandler{
		Provisioner:       s.deps.Provisioner,
		Store:             s.deps.Store,
		PlaceholderPrefix: s.cfg.PlaceholderPrefix,
		Metrics:           s.deps.Metrics,
		MaxBodyBytes:      s.cfg.MaxBodyBytes,
		Logger:            s.logger,
	})

	transcripts := handlers.TranscriptsHandler{
		Store:        s.deps.Store,
		Projects:     s.deps.Store,
		Metrics:      s.deps.Metrics,
		MaxBodyBytes: s.cfg.MaxBodyBytes,
	}
	s.handle("POST /v1/transcripts", http.HandlerFunc(transcripts.Create))
	s.handle("GET /v1/projects/{id}/transcripts", http.HandlerFunc(transcripts.ListByProject))
	s.handle("GET /v1/transcripts/{id}", http.HandlerFunc(transcripts.Get))
	s.handle("PATCH /v1/transcripts/{id}", http.HandlerFunc(transcripts.Patch))
	s.handle("DELETE /v1/transcripts/{id}", http.HandlerFunc(transcripts.Delete))

	s.mux.Handle("/", handlers.NotFoundHandler{})
}

// handle registers a route with per-route request instrumentation. The
// route label is the registration pattern, not the raw path, to keep
// metric cardinality bounded.
func (s *Server) handle(pattern string, h http.Handler) {
	if s.deps.Metrics == nil {
		s.mux.Handle(pattern, h)
		return
	}
	m := s.deps.Metrics
	method, route, _ := strings.Cut(pattern, " ")
	s.mux.Handle(pattern, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		h.ServeHTTP(sw, r)
		m.RecordRequest(method, route, strconv.Itoa(sw.status), time.Since(start))
	}))
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (s *Server) Handler() http.Handler {
	var h http.Handler = s.mux
	h = mw.APIVersion(h)
	h = mw.Auth(s.cfg, h)
	h = mw.CORS(s.cfg, h)
	h = mw.Recover(s.logger, h)
	h = mw.AccessLog(s.logger, h)
	h = mw.RequestID(h)
	return h
}
