// Package server exposes planning runs over HTTP.
//
// Routes:
//
//	POST /v1/runs               start a run and wait for its final state
//	GET  /v1/runs/{id}          fetch a stored run
//	POST /v1/runs/{id}/cancel   cancel an active run
//	GET  /v1/graph              planning graph as Mermaid
//	GET  /healthz               liveness
//	GET  /metrics               Prometheus metrics (if a gatherer is set)
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hupe1980/tripgraph"
	"github.com/hupe1980/tripgraph/core"
	"github.com/hupe1980/tripgraph/graph"
	"github.com/hupe1980/tripgraph/logging"
	"github.com/hupe1980/tripgraph/session"
)

const maxBodyBytes = 1 << 20

// Runner is the planning service behind the HTTP boundary.
type Runner interface {
	Run(ctx context.Context, sessionID string, msgs []core.Message) (*session.Record, error)
	Get(ctx context.Context, runID string) (*session.Record, error)
	Stop(runID string) bool
	Graph() *graph.Graph
}

// Options configure the HTTP handler.
type Options struct {
	// Gatherer backs /metrics; nil disables the route.
	Gatherer prometheus.Gatherer

	Logger logging.Logger
}

// Server serves the planning API.
type Server struct {
	runner Runner
	opts   Options
	router chi.Router
}

// New creates the HTTP handler.
func New(runner Runner, optFns ...func(o *Options)) *Server {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	s := &Server{runner: runner, opts: opts}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/runs", s.handleCreateRun)
		r.Get("/runs/{id}", s.handleGetRun)
		r.Post("/runs/{id}/cancel", s.handleCancelRun)
		r.Get("/graph", s.handleGraph)
	})

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.router.ServeHTTP(w, r) }

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.opts.Logger.Info("http.request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// MessageIn is one conversation turn in a run request.
type MessageIn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// RunRequest is the body of POST /v1/runs.
type RunRequest struct {
	SessionID string      `json:"session_id,omitempty"`
	Messages  []MessageIn `json:"messages"`
}

// RunResponse describes a run.
type RunResponse struct {
	RunID     string      `json:"run_id"`
	SessionID string      `json:"session_id"`
	Status    string      `json:"status"`
	Error     string      `json:"error,omitempty"`
	Reply     string      `json:"reply,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	State     *core.State `json:"state,omitempty"`
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
	RunID string `json:"run_id,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGraph(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(s.runner.Graph().Mermaid()))
}

func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "")
		return
	}

	msgs, err := toMessages(req.Messages)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "")
		return
	}

	rec, err := s.runner.Run(r.Context(), req.SessionID, msgs)
	if err != nil {
		s.writeRunError(w, rec, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(rec))
}

func (s *Server) writeRunError(w http.ResponseWriter, rec *session.Record, err error) {
	runID := ""
	if rec != nil {
		runID = rec.RunID
	}

	s.opts.Logger.Warn("http.run.failed", "run_id", runID, "error", err.Error())

	switch {
	case errors.Is(err, core.ErrMalformedOutput):
		writeError(w, http.StatusBadGateway, tripgraph.ApologyMessage, runID)
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "planning timed out", runID)
	case errors.Is(err, context.Canceled):
		writeError(w, http.StatusServiceUnavailable, "planning was cancelled", runID)
	case rec == nil:
		writeError(w, http.StatusBadRequest, err.Error(), "")
	default:
		writeError(w, http.StatusInternalServerError, "planning failed", runID)
	}
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	rec, err := s.runner.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, session.ErrNotFound) {
		writeError(w, http.StatusNotFound, "run not found", "")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load run", "")
		return
	}

	writeJSON(w, http.StatusOK, toResponse(rec))
}

func (s *Server) handleCancelRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.runner.Stop(id) {
		writeError(w, http.StatusNotFound, "run is not active", id)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func toMessages(in []MessageIn) ([]core.Message, error) {
	if len(in) == 0 {
		return nil, errors.New("messages must not be empty")
	}

	out := make([]core.Message, 0, len(in))
	for i, m := range in {
		if strings.TrimSpace(m.Content) == "" {
			return nil, fmt.Errorf("messages[%d]: content must not be empty", i)
		}
		switch strings.ToLower(m.Role) {
		case "", core.RoleUser:
			out = append(out, core.NewUserMessage(m.Content))
		case core.RoleAssistant:
			out = append(out, core.NewAssistantMessage(core.RoleAssistant, m.Content))
		default:
			return nil, fmt.Errorf("messages[%d]: unsupported role %q", i, m.Role)
		}
	}
	return out, nil
}

func toResponse(rec *session.Record) RunResponse {
	resp := RunResponse{
		RunID:     rec.RunID,
		SessionID: rec.SessionID,
		Status:    rec.Status,
		Error:     rec.Error,
		CreatedAt: rec.CreatedAt,
		State:     rec.State,
	}
	if rec.State != nil {
		resp.Reply = tripgraph.FinalReply(rec.State)
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg, runID string) {
	writeJSON(w, status, ErrorResponse{Error: msg, RunID: runID})
}
