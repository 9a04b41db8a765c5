package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/stormbolt/pkg/pipeline"
)

const (
	// DefaultAddr is the listen address when none is configured.
	DefaultAddr = ":8080"

	// maxBodyBytes bounds POST bodies; a strike request is a handful of fields.
	maxBodyBytes = 1 << 20

	shutdownTimeout = 10 * time.Second
)

// Server is the HTTP front end for a [pipeline.Runner].
type Server struct {
	runner       *pipeline.Runner
	logger       *log.Logger
	addr         string
	readTimeout  time.Duration
	writeTimeout time.Duration
	router       chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(s *Server) {
		if addr != "" {
			s.addr = addr
		}
	}
}

// WithTimeouts sets the read and write timeouts. Zero leaves a value unchanged.
func WithTimeouts(read, write time.Duration) Option {
	return func(s *Server) {
		if read > 0 {
			s.readTimeout = read
		}
		if write > 0 {
			s.writeTimeout = write
		}
	}
}

// New creates a server around runner. A nil runner gets a default one.
func New(runner *pipeline.Runner, opts ...Option) *Server {
	s := &Server{
		runner:       runner,
		logger:       log.NewWithOptions(io.Discard, log.Options{}),
		addr:         DefaultAddr,
		readTimeout:  15 * time.Second,
		writeTimeout: 60 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.runner == nil {
		s.runner = pipeline.NewRunner(nil, nil, nil, s.logger)
	}
	s.router = s.routes()
	return s
}

// Addr returns the configured listen address.
func (s *Server) Addr() string { return s.addr }

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/strike", s.handleStrike)
		r.Get("/strike.png", s.handleArtifact(pipeline.FormatPNG))
		r.Get("/strike.json", s.handleArtifact(pipeline.FormatJSON))
		r.Get("/topology.svg", s.handleArtifact(pipeline.FormatSVG))
		r.Get("/topology.dot", s.handleArtifact(pipeline.FormatDOT))
		r.Get("/version", s.handleVersion)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, errNotFound(r.URL.Path))
	})
	return r
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.addr,
		Handler:      s.router,
		ReadTimeout:  s.readTimeout,
		WriteTimeout: s.writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
