// Package api exposes the scan, match, and rename operations over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/captionmate/captionmate/internal/config"
	"github.com/captionmate/captionmate/internal/logging"
	"github.com/captionmate/captionmate/internal/nas"
	"github.com/captionmate/captionmate/internal/scanner"
	"github.com/captionmate/captionmate/internal/service"
)

// ServiceFactory builds a Service for one request. The cleanup function
// releases whatever the factory opened (typically the SMB session) and
// must be called once the request is done.
type ServiceFactory func(ctx context.Context, opts service.Options) (*service.Service, func(), error)

// Server handles the REST API.
type Server struct {
	cfg     *config.Config
	factory ServiceFactory
	log     *logging.Logger
	version string
}

// NewServer creates a Server with the default NAS-backed factory.
func NewServer(cfg *config.Config, version string, log *logging.Logger) *Server {
	if log == nil {
		log = logging.Nop()
	}
	s := &Server{cfg: cfg, log: log, version: version}
	s.factory = s.nasFactory
	return s
}

// NewServerWithFactory creates a Server with a custom service factory.
func NewServerWithFactory(cfg *config.Config, version string, factory ServiceFactory, log *logging.Logger) *Server {
	s := NewServer(cfg, version, log)
	s.factory = factory
	return s
}

func (s *Server) nasFactory(ctx context.Context, opts service.Options) (*service.Service, func(), error) {
	client := nas.NewClient(s.cfg.NAS)
	if err := client.Connect(ctx); err != nil {
		return nil, nil, err
	}

	svc, err := service.New(s.cfg, scanner.NASSource{Client: client}, service.NASRenamer{Client: client}, opts, s.log)
	if err != nil {
		client.Close()
		return nil, nil, err
	}

	return svc, func() { client.Close() }, nil
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.SetHeader("Content-Type", "application/json"))
		r.Get("/health", s.handleHealth)
		r.Post("/scan", s.handleScan)
		r.Post("/match", s.handleMatch)
		r.Post("/rename", s.handleRename)
	})

	return r
}

// ListenAndServe runs the server until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := s.cfg.Serve.Addr
	if addr == "" {
		addr = ":8687"
	}

	srv := &http.Server{Addr: addr, Handler: s.Handler()}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.log.Info("api", "listening", logging.F("addr", addr))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
