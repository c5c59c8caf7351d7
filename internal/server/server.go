// Package server exposes the pipeline over HTTP.
//
// The orchestrator supports one in-flight run at a time, so the server
// serializes requests with a mutex rather than sharing the connection
// handle across concurrent pipelines.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/askdb/askdb/internal/logger"
)

// Pipeline is the orchestrator surface the server depends on.
type Pipeline interface {
	Run(ctx context.Context, question string) (string, error)
	Document(ctx context.Context) (string, error)
}

// Server routes HTTP requests to one pipeline orchestrator.
type Server struct {
	mu   sync.Mutex
	pipe Pipeline
	log  *logger.Logger
}

// New returns a Server over pipe.
func New(pipe Pipeline, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	return &Server{pipe: pipe, log: log}
}

// Router builds the chi router with all routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/ask", s.handleAsk)
		r.Get("/schema", s.handleSchema)
	})
	return r
}

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Answer string `json:"answer,omitempty"`
	Error  string `json:"error,omitempty"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, askResponse{Error: "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeJSON(w, http.StatusBadRequest, askResponse{Error: "question is required"})
		return
	}

	s.mu.Lock()
	answer, err := s.pipe.Run(r.Context(), req.Question)
	s.mu.Unlock()

	if err != nil {
		s.log.ErrorWith("pipeline run failed", err)
		writeJSON(w, http.StatusBadGateway, askResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, askResponse{Answer: answer})
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	doc, err := s.pipe.Document(r.Context())
	s.mu.Unlock()

	if err != nil {
		s.log.ErrorWith("schema document failed", err)
		writeJSON(w, http.StatusBadGateway, askResponse{Error: err.Error()})
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(doc))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
