// Package httpapi exposes the member directory over HTTP: registration,
// login, and authenticated profile reads.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/yuwenwww/membervault/internal/logging"
	"github.com/yuwenwww/membervault/internal/server/services"
)

type HTTPServer struct {
	address       string
	logger        logging.Logger
	members       *services.MemberService
	jwtSecret     []byte
	tokenValidity time.Duration
	piiKeyLabel   string
}

func NewHTTPServer(a string, l logging.Logger, ms *services.MemberService, secretKey string, tokenValidity time.Duration, piiKeyLabel string) (*HTTPServer, error) {
	return &HTTPServer{
		address:       a,
		logger:        l.With("module", "http_server"),
		members:       ms,
		jwtSecret:     []byte(secretKey),
		tokenValidity: tokenValidity,
		piiKeyLabel:   piiKeyLabel,
	}, nil
}

// Routes builds the router. Exposed separately so tests can drive the
// handlers through httptest without binding a socket.
func (s *HTTPServer) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)

	r.Route("/api/members", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.accessTokenMiddleware)
			r.Get("/{id}", s.handleGetProfile)
		})
	})

	return r
}

func (s *HTTPServer) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:    s.address,
		Handler: s.Routes(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
