// Package server exposes validation and layout over HTTP.
//
// Routes:
//
//	POST /v1/validate                          graph JSON → validation result
//	POST /v1/layout?direction=TB&engine=layered graph JSON → laid-out graph
//	GET  /healthz                              liveness and build version
//	GET  /metrics                              Prometheus exposition
//
// Errors are returned as {"code": "...", "error": "..."} with the code taken
// from pkg/errors.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/pipedag/pkg/buildinfo"
	apperrors "github.com/matzehuels/pipedag/pkg/errors"
	"github.com/matzehuels/pipedag/pkg/graph"
	"github.com/matzehuels/pipedag/pkg/layout"
	"github.com/matzehuels/pipedag/pkg/pipeline"
)

// DefaultMaxBodyBytes limits request bodies when Options.MaxBodyBytes is zero.
const DefaultMaxBodyBytes = 1 << 20

// Options configures a Server.
type Options struct {
	// Layout holds the defaults for /v1/layout; query parameters override
	// direction and engine.
	Layout layout.Options
	// MaxBodyBytes caps request bodies.
	MaxBodyBytes int64
	// Gatherer backs /metrics. Nil disables the route.
	Gatherer prometheus.Gatherer
}

// Server routes HTTP requests to a pipeline runner.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
	opts   Options
	router chi.Router
}

// New creates a server. A nil logger uses log.Default().
func New(runner *pipeline.Runner, logger *log.Logger, opts Options) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	s := &Server{runner: runner, logger: logger, opts: opts}
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	if s.opts.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{}))
	}
	r.Route("/v1", func(r chi.Router) {
		r.Post("/validate", s.handleValidate)
		r.Post("/layout", s.handleLayout)
	})
	return r
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	g, ok := s.readGraph(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.runner.Validate(r.Context(), g))
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	g, ok := s.readGraph(w, r)
	if !ok {
		return
	}

	opts := s.opts.Layout
	q := r.URL.Query()
	if d := q.Get("direction"); d != "" {
		opts.Direction = layout.Direction(d)
	}
	if e := q.Get("engine"); e != "" {
		opts.Engine = e
	}

	out, hit, err := s.runner.Layout(r.Context(), g, opts)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	if hit {
		w.Header().Set("X-Cache", "hit")
	} else {
		w.Header().Set("X-Cache", "miss")
	}
	writeJSON(w, http.StatusOK, out)
}

// readGraph decodes the request body. On failure it writes the error
// response and returns false.
func (s *Server) readGraph(w http.ResponseWriter, r *http.Request) (graph.Graph, bool) {
	body := http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)
	g, err := graph.Read(body, graph.FormatJSON)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge,
				apperrors.New(apperrors.ErrCodeInvalidInput, "request body exceeds %d bytes", tooLarge.Limit))
			return graph.Graph{}, false
		}
		writeError(w, http.StatusBadRequest,
			apperrors.Wrap(apperrors.ErrCodeInvalidFormat, err, "malformed graph: %v", err))
		return graph.Graph{}, false
	}
	return g, true
}

// =============================================================================
// Responses
// =============================================================================

type errorBody struct {
	Code  apperrors.Code `json:"code"`
	Error string         `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	code := apperrors.GetCode(err)
	if code == "" {
		code = apperrors.ErrCodeInternal
	}
	writeJSON(w, status, errorBody{Code: code, Error: apperrors.UserMessage(err)})
}

// statusFor maps an error code to an HTTP status.
func statusFor(err error) int {
	switch apperrors.GetCode(err) {
	case apperrors.ErrCodeInvalidInput, apperrors.ErrCodeInvalidFormat,
		apperrors.ErrCodeInvalidDirection, apperrors.ErrCodeInvalidEngine:
		return http.StatusBadRequest
	case apperrors.ErrCodeNotFound:
		return http.StatusNotFound
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// NewHTTPServer wraps h in an http.Server with the given timeouts.
func NewHTTPServer(addr string, h http.Handler, readTimeout, writeTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readTimeout,
		WriteTimeout:      writeTimeout,
	}
}
