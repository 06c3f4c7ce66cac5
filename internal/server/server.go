// Package server implements the stitchgrid HTTP API.
//
// # Endpoints
//
//	POST /v1/patterns          generate a pattern from a multipart upload
//	GET  /v1/threads           list catalog threads (?search=)
//	GET  /v1/threads/{id}      one catalog thread
//	GET  /v1/version           build metadata
//	GET  /healthz              liveness
//
// A pattern request carries the image in the "image" form file and the
// generation parameters as form fields named like the JSON fields of
// [pipeline.Options] (width, height, per_unit, colors, filter, metric,
// clusterer, seed, format). The response body is the artifact of the
// requested format; the generation ID and cache status are reported in the
// X-Pattern-Id and X-Cache headers.
//
// Generation is CPU bound, so the server runs one at a time and answers
// concurrent requests with 429 and error code BUSY.
//
// Errors are JSON:
//
//	{"error": {"code": "INVALID_INPUT", "message": "colors must be between 2 and 100, got 1"}}
package server

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/semaphore"

	"github.com/matzehuels/stitchgrid/pkg/pipeline"
	"github.com/matzehuels/stitchgrid/pkg/thread"
)

// DefaultMaxUpload is the default limit for uploaded images.
const DefaultMaxUpload = 20 << 20

const shutdownTimeout = 10 * time.Second

// Config configures a Server.
type Config struct {
	// Runner executes generations. Required.
	Runner *pipeline.Runner

	// Catalog is the thread catalog; nil selects the embedded default.
	Catalog *thread.Catalog

	// Logger receives request and generation logs; nil discards them.
	Logger *log.Logger

	// MaxUpload limits the request body size in bytes.
	MaxUpload int64
}

// Server serves the HTTP API.
type Server struct {
	runner    *pipeline.Runner
	catalog   *thread.Catalog
	logger    *log.Logger
	maxUpload int64

	// gate admits one generation at a time.
	gate   *semaphore.Weighted
	router chi.Router
}

// New creates a server and registers its routes.
func New(cfg Config) *Server {
	s := &Server{
		runner:    cfg.Runner,
		catalog:   cfg.Catalog,
		logger:    cfg.Logger,
		maxUpload: cfg.MaxUpload,
		gate:      semaphore.NewWeighted(1),
	}
	if s.catalog == nil {
		s.catalog = thread.Default()
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	if s.maxUpload <= 0 {
		s.maxUpload = DefaultMaxUpload
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(serverHeader)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/patterns", s.handleGenerate)
		r.Get("/threads", s.handleListThreads)
		r.Get("/threads/{id}", s.handleGetThread)
		r.Get("/version", s.handleVersion)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody("NOT_FOUND", "no route for "+r.Method+" "+r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody("METHOD_NOT_ALLOWED", "method "+r.Method+" not allowed"))
	})

	s.router = r
	return s
}

// Handler returns the HTTP handler of the API.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return err
		}
		return ctx.Err()
	}
}
