// Package server exposes the question answering system over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/harunnryd/kouza/internal/concurrency"
	"github.com/harunnryd/kouza/internal/logger"
	"github.com/harunnryd/kouza/internal/tool"
)

// RAG is the application surface the HTTP API forwards to.
type RAG interface {
	Query(ctx context.Context, query, sessionID string) (string, []tool.Source, error)
	CreateSession() string
	ClearSession(sessionID string)
	Analytics() (int, []string)
}

type Config struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Server wraps the mux and the underlying http.Server.
type Server struct {
	rag     RAG
	server  *http.Server
	handler http.Handler
}

func New(cfg Config, rag RAG) *Server {
	mux := http.NewServeMux()
	s := &Server{rag: rag}

	mux.HandleFunc("/api/query", s.handleQuery)
	mux.HandleFunc("/api/courses", s.handleCourses)
	mux.HandleFunc("/api/session/clear", s.handleClearSession)
	mux.HandleFunc("/", s.handleRoot)

	s.handler = withRequestID(withCORS(mux))
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

// Handler returns the full middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start runs the listener in a goroutine.
func (s *Server) Start() {
	concurrency.SafeGo("http-server", func() {
		slog.Info("Starting HTTP server", "addr", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server failed", "error", err)
		}
	})
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

type queryRequest struct {
	Query     *string `json:"query"`
	SessionID string  `json:"session_id"`
}

type queryResponse struct {
	Answer    string        `json:"answer"`
	Sources   []tool.Source `json:"sources"`
	SessionID string        `json:"session_id"`
}

type coursesResponse struct {
	TotalCourses int      `json:"total_courses"`
	CourseTitles []string `json:"course_titles"`
}

type clearSessionRequest struct {
	SessionID *string `json:"session_id"`
}

type clearSessionResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}
	if req.Query == nil {
		writeError(w, http.StatusUnprocessableEntity, "Missing required field: query")
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = s.rag.CreateSession()
	}

	ctx := logger.WithSessionID(r.Context(), sessionID)
	answer, sources, err := s.rag.Query(ctx, *req.Query, sessionID)
	if err != nil {
		slog.Error("Query failed",
			"trace_id", logger.GetTraceID(ctx),
			"session_id", logger.GetSessionID(ctx),
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if sources == nil {
		sources = []tool.Source{}
	}
	writeJSON(w, http.StatusOK, queryResponse{
		Answer:    answer,
		Sources:   sources,
		SessionID: sessionID,
	})
}

func (s *Server) handleCourses(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	total, titles := s.rag.Analytics()
	if titles == nil {
		titles = []string{}
	}
	writeJSON(w, http.StatusOK, coursesResponse{
		TotalCourses: total,
		CourseTitles: titles,
	})
}

func (s *Server) handleClearSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req clearSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}
	if req.SessionID == nil || *req.SessionID == "" {
		writeError(w, http.StatusUnprocessableEntity, "Missing required field: session_id")
		return
	}

	s.rag.ClearSession(*req.SessionID)
	writeJSON(w, http.StatusOK, clearSessionResponse{
		Success: true,
		Message: fmt.Sprintf("Session %s cleared successfully", *req.SessionID),
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Course Materials RAG System API",
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
