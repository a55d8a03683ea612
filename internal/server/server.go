// Package server exposes the engine over HTTP: the node catalog, document
// validation and graph execution.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/agentstation/pinflow"
	"github.com/agentstation/pinflow/builtin"
	"github.com/agentstation/pinflow/definition"
	"github.com/agentstation/pinflow/internal/ctxlog"
	"github.com/agentstation/pinflow/loader"
)

// RequestIDHeader carries the request id on responses.
const RequestIDHeader = "X-Request-ID"

const (
	defaultMaxBodyBytes = 4 << 20
	defaultExecTimeout  = 30 * time.Second
)

// Server serves the HTTP API.
type Server struct {
	router           chi.Router
	registry         *pinflow.Registry
	logger           *slog.Logger
	schemaValidation bool
	maxBodyBytes     int64
	execTimeout      time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSchemaValidation toggles JSON-schema validation of posted documents.
func WithSchemaValidation(enabled bool) Option {
	return func(s *Server) {
		s.schemaValidation = enabled
	}
}

// WithMaxBodyBytes limits the size of posted documents.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// WithExecTimeout bounds a single graph execution. Loops observe the
// deadline between iterations.
func WithExecTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.execTimeout = d
		}
	}
}

// New creates a server resolving node types through registry.
func New(registry *pinflow.Registry, opts ...Option) *Server {
	s := &Server{
		router:           chi.NewRouter(),
		registry:         registry,
		logger:           slog.Default(),
		schemaValidation: true,
		maxBodyBytes:     defaultMaxBodyBytes,
		execTimeout:      defaultExecTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(s.requestContext)

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	s.router.Get("/api/nodes", s.handleNodes)
	s.router.Get("/api/nodes/{typeID}", s.handleNode)
	s.router.Post("/api/validate", s.handleValidate)
	s.router.Post("/api/execute", s.handleExecute)
}

// requestContext tags each request with an id and places a request-scoped
// logger in its context.
func (s *Server) requestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		logger := s.logger.With("request_id", id)
		ctx := ctxlog.WithLogger(r.Context(), logger)
		next.ServeHTTP(w, r.WithContext(ctx))
		logger.Debug("request", "method", r.Method, "path", r.URL.Path, "dur", time.Since(start), "remote", r.RemoteAddr)
	})
}

func (s *Server) handleNodes(w http.ResponseWriter, r *http.Request) {
	nodes, err := s.registry.DescribeAll()
	if err != nil {
		writeError(r.Context(), w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, nodes)
}

func (s *Server) handleNode(w http.ResponseWriter, r *http.Request) {
	typeID := chi.URLParam(r, "typeID")
	meta, err := s.registry.Describe(typeID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, pinflow.ErrUnknownNodeType) {
			status = http.StatusNotFound
		}
		writeError(r.Context(), w, status, err)
		return
	}
	writeJSON(w, http.StatusOK, meta)
}

// ValidateResponse reports a successful validation.
type ValidateResponse struct {
	Valid  bool `json:"valid"`
	Graphs int  `json:"graphs"`
	Nodes  int  `json:"nodes"`
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	graphs, err := s.load(ctx, w, r, nil)
	if err != nil {
		writeError(ctx, w, loadStatus(err), err)
		return
	}

	resp := ValidateResponse{Valid: true, Graphs: len(graphs)}
	for _, g := range graphs {
		resp.Nodes += len(g.Nodes())
	}
	writeJSON(w, http.StatusOK, resp)
}

// ExecuteResponse reports the outcome of executing the first graph of a
// posted document.
type ExecuteResponse struct {
	RequestID string          `json:"requestId"`
	Graphs    int             `json:"graphs"`
	Output    []string        `json:"output"`
	Events    []pinflow.Event `json:"events"`
	Duration  string          `json:"duration"`
	Error     string          `json:"error,omitempty"`
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	recorder := pinflow.NewRecorder()

	graphs, err := s.load(ctx, w, r, recorder)
	if err == nil && len(graphs) == 0 {
		err = fmt.Errorf("%w: no graph to execute", definition.ErrInvalidDocument)
	}
	if err != nil {
		writeError(ctx, w, loadStatus(err), err)
		return
	}

	var console bytes.Buffer
	execCtx, cancel := context.WithTimeout(builtin.WithConsoleWriter(ctx, &console), s.execTimeout)
	defer cancel()

	start := time.Now()
	execErr := graphs[0].Execute(execCtx)

	resp := ExecuteResponse{
		RequestID: w.Header().Get(RequestIDHeader),
		Graphs:    len(graphs),
		Output:    splitLines(console.String()),
		Events:    recorder.Events(),
		Duration:  time.Since(start).String(),
	}
	if execErr != nil {
		ctxlog.FromContext(ctx).Warn("graph execution failed", "error", execErr)
		resp.Error = execErr.Error()
		writeJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// load reads the request body and loads every graph in it. A non-nil
// observer is attached to each graph.
func (s *Server) load(ctx context.Context, w http.ResponseWriter, r *http.Request, observer pinflow.Observer) ([]*pinflow.Graph, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", definition.ErrInvalidDocument, err)
	}

	opts := []loader.Option{
		loader.WithLogger(ctxlog.FromContext(ctx)),
		loader.WithSchemaValidation(s.schemaValidation),
	}
	if observer != nil {
		opts = append(opts, loader.WithGraphOptions(pinflow.WithObserver(observer)))
	}
	return loader.New(s.registry, opts...).LoadBytes(ctx, body)
}

// loadStatus maps load failures to a status: malformed documents are bad
// requests, well-formed documents the engine cannot build are unprocessable.
func loadStatus(err error) int {
	if errors.Is(err, definition.ErrInvalidDocument) {
		return http.StatusBadRequest
	}
	return http.StatusUnprocessableEntity
}

func splitLines(s string) []string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return []string{}
	}
	return strings.Split(s, "\n")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	logger := ctxlog.FromContext(ctx)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Warn("request failed", "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
