package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/custodia-labs/docchat/internal/logger"
)

// DefaultMaxUploadBytes caps the size of one upload request.
const DefaultMaxUploadBytes = 100 << 20

// multipartMemory is how much of a multipart body is held in memory before
// spilling to temporary files.
const multipartMemory = 32 << 20

// Server serves the docchat HTTP API.
type Server struct {
	ports          *Ports
	router         *mux.Router
	maxUploadBytes int64
}

// Option configures a Server.
type Option func(*Server)

// WithMaxUploadBytes limits the body size accepted by the upload route.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxUploadBytes = n
		}
	}
}

// NewServer creates a new HTTP server with the given ports.
func NewServer(ports *Ports, opts ...Option) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	s := &Server{
		ports:          ports,
		router:         mux.NewRouter(),
		maxUploadBytes: DefaultMaxUploadBytes,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	s.handle(http.MethodGet, "/healthz", s.handleHealth)

	v1 := s.router.PathPrefix("/api/v1").Subrouter()
	s.handleOn(v1, http.MethodPost, "/pdf/upload", s.handleUpload)
	s.handleOn(v1, http.MethodPost, "/chat/chat", s.handleChat)
	s.handleOn(v1, http.MethodGet, "/stores", s.handleListStores)
	s.handleOn(v1, http.MethodGet, "/stores/{id}", s.handleGetStore)

	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
}

func (s *Server) handle(method, path string, h http.HandlerFunc) {
	s.handleOn(s.router, method, path, h)
}

// handleOn registers h with a span named after the route template.
func (s *Server) handleOn(r *mux.Router, method, path string, h http.HandlerFunc) {
	route := r.NewRoute().Methods(method).Path(path)
	tmpl, err := route.GetPathTemplate()
	if err != nil {
		tmpl = path
	}
	route.Handler(otelhttp.NewHandler(h, method+" "+tmpl))
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves the API on addr.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown when context is cancelled
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	logger.Info("HTTP API listening on %s", addr)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
