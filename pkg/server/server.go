// Package server exposes the routing pipeline over HTTP for live previews.
//
// A client posts a scene document and receives the rendered artifact:
//
//	curl --data-binary @scene.json -H 'Content-Type: application/json' \
//	    'http://127.0.0.1:8080/route?format=svg&labels=true'
//
// The scene encoding comes from the Content-Type header (JSON, TOML or
// YAML) or the scene query parameter. Scenes referencing a cost image are
// rejected because the server never reads client-named files.
//
// Endpoints:
//
//	GET  /healthz   liveness probe
//	GET  /version   build information as JSON
//	POST /route     route a scene and return one artifact
package server

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/linkroute/pkg/config"
	"github.com/matzehuels/linkroute/pkg/pipeline"
)

// ShutdownTimeout bounds how long in-flight requests may finish after the
// serve context ends.
const ShutdownTimeout = 10 * time.Second

// Server handles preview requests with a shared pipeline runner.
type Server struct {
	cfg    config.ServerConfig
	runner *pipeline.Runner
	base   pipeline.Options
	logger *log.Logger
}

// New creates a server. base carries the routing, bundling and render
// settings every request starts from; query parameters may override some
// of them per request.
func New(cfg config.ServerConfig, runner *pipeline.Runner, base pipeline.Options, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = config.DefaultMaxBodyBytes
	}
	base.Scene, base.ScenePath, base.Formats = nil, "", nil
	base.Logger = logger
	return &Server{cfg: cfg, runner: runner, base: base, logger: logger}
}

// Handler returns the HTTP handler with all routes and middleware.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.instrument)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/version", s.handleVersion)
	r.Post("/route", s.handleRoute)
	r.NotFound(s.handleNotFound)
	return r
}

// ListenAndServe serves until ctx is done, then drains in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is [Server.ListenAndServe] on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	// Requests keep ctx values but outlive its cancellation until Shutdown.
	base := context.WithoutCancel(ctx)
	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		BaseContext:  func(net.Listener) context.Context { return base },
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	s.logger.Info("serving previews", "addr", ln.Addr().String())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
