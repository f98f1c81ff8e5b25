// Package server assembles the chi router for the SRI gateway and owns the
// HTTP server lifecycle.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	documenthttp "github.com/yamgooo/sri-client-go/internal/adapters/http/document"
	healthhttp "github.com/yamgooo/sri-client-go/internal/adapters/http/health"
	taxpayerhttp "github.com/yamgooo/sri-client-go/internal/adapters/http/taxpayer"
	"github.com/yamgooo/sri-client-go/internal/infrastructure/config"
	"github.com/yamgooo/sri-client-go/internal/infrastructure/http/middleware"
)

// Server exposes the gateway endpoints over HTTP.
type Server struct {
	log             *slog.Logger
	httpServer      *http.Server
	auth            *middleware.JWTAuthenticator
	shutdownTimeout time.Duration
}

// Options carries everything the server needs at construction time.
type Options struct {
	HTTP     config.HTTPSettings
	Auth     config.AuthSettings
	Logger   *slog.Logger
	Taxpayer *taxpayerhttp.Handler
	Document *documenthttp.Handler
	Health   *healthhttp.Handler
}

// New creates the server with the gateway routes mounted.
func New(opts Options) (*Server, error) {
	if opts.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if opts.Taxpayer == nil || opts.Document == nil || opts.Health == nil {
		return nil, errors.New("all handlers are required")
	}

	auth, err := middleware.NewJWTAuthenticator(opts.Auth, opts.Logger)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger(opts.Logger))
	if opts.HTTP.WriteTimeout > 0 {
		r.Use(middleware.RequestTimeout(opts.HTTP.WriteTimeout))
	}
	r.Use(auth.Middleware)

	r.Get("/health", opts.Health.Status)

	r.Route("/taxpayers", func(r chi.Router) {
		r.Get("/ruc/{ruc}", opts.Taxpayer.GetByRUC)
		r.Get("/cedula/{cedula}", opts.Taxpayer.GetByCedula)
	})

	r.Route("/documents", func(r chi.Router) {
		r.Post("/validate", opts.Document.Validate)
		r.Post("/authorize", opts.Document.Authorize)
		r.Get("/config", opts.Document.GetConfiguration)
		r.Put("/config", opts.Document.UpdateConfiguration)
	})

	srv := &http.Server{
		Addr:         opts.HTTP.Address(),
		Handler:      r,
		ReadTimeout:  opts.HTTP.ReadTimeout,
		WriteTimeout: opts.HTTP.WriteTimeout,
		IdleTimeout:  opts.HTTP.IdleTimeout,
	}

	return &Server{
		log:             opts.Logger,
		httpServer:      srv,
		auth:            auth,
		shutdownTimeout: opts.HTTP.ShutdownTimeout,
	}, nil
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("HTTP server started", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx := context.Background()
		if s.shutdownTimeout > 0 {
			var cancel context.CancelFunc
			shutdownCtx, cancel = context.WithTimeout(shutdownCtx, s.shutdownTimeout)
			defer cancel()
		}
		_ = s.httpServer.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		return err
	}
}

// Close releases resources held by the middleware chain.
func (s *Server) Close() {
	if s.auth != nil {
		s.auth.Close()
	}
}
