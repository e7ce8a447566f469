// Package server wires storage, handlers and middleware into the VillaBook API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/iudanet/villabook/internal/config"
	"github.com/iudanet/villabook/internal/server/handlers"
	"github.com/iudanet/villabook/internal/server/jwt"
	"github.com/iudanet/villabook/internal/server/middleware"
	"github.com/iudanet/villabook/internal/server/respond"
	"github.com/iudanet/villabook/internal/server/storage"
)

const (
	shutdownTimeout = 10 * time.Second
	healthPath      = "/api/health"
)

// Storage объединяет все хранилища сервера. *sqlite.Storage implements it.
type Storage interface {
	storage.UserStorage
	storage.TokenStorage
	storage.VillaStorage
	storage.BookingStorage
	handlers.Pinger
}

// Server is the VillaBook HTTP API.
type Server struct {
	cfg     *config.Server
	logger  *slog.Logger
	store   Storage
	limiter *middleware.RateLimiter
	handler http.Handler
	now     func() time.Time
}

// New собирает маршруты и middleware
func New(cfg *config.Server, store Storage, logger *slog.Logger) *Server {
	s := &Server{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		limiter: middleware.NewRateLimiter(cfg.AuthRateLimit, time.Minute, logger),
		now:     time.Now,
	}
	s.handler = s.routes()
	return s
}

// Handler returns the root handler with the full middleware chain.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Close освобождает фоновые ресурсы (rate limiter)
func (s *Server) Close() {
	s.limiter.Stop()
}

func (s *Server) routes() http.Handler {
	tokens := jwt.NewService(s.cfg.JWTSecret, s.cfg.AccessTTL)

	health := handlers.NewHealthHandler(s.logger, s.store, s.cfg.Version)
	auth := handlers.NewAuthHandler(s.logger, s.store, s.store, tokens, s.cfg.RefreshTTL)
	users := handlers.NewUserHandler(s.logger, s.store)
	villas := handlers.NewVillaHandler(s.logger, s.store)
	bookings := handlers.NewBookingHandler(s.logger, s.store, s.store)

	requireAuth := middleware.AuthMiddleware(s.logger, tokens)
	rateLimit := middleware.RateLimitMiddleware(s.limiter, s.cfg.TrustProxy)

	protected := func(h http.HandlerFunc) http.Handler {
		return requireAuth(h)
	}
	limited := func(h http.Handler) http.Handler {
		return rateLimit(h)
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET "+healthPath, health.Health)

	mux.Handle("POST /api/auth/register", limited(http.HandlerFunc(auth.Register)))
	mux.Handle("POST /api/auth/login", limited(http.HandlerFunc(auth.Login)))
	mux.Handle("POST /api/auth/refresh-token", limited(http.HandlerFunc(auth.RefreshToken)))
	mux.Handle("POST /api/auth/logout", limited(protected(auth.Logout)))

	mux.Handle("GET /api/users/me", protected(users.Me))
	mux.Handle("PATCH /api/users/me", protected(users.UpdateMe))

	mux.HandleFunc("GET /api/villas", villas.List)
	mux.HandleFunc("GET /api/villas/{id}", villas.Get)

	mux.Handle("GET /api/bookings", protected(bookings.List))
	mux.Handle("POST /api/bookings", protected(bookings.Create))
	mux.Handle("POST /api/bookings/{id}/cancel", protected(bookings.Cancel))

	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, http.StatusNotFound, "Route not found")
	})

	var h http.Handler = mux
	h = middleware.LoggingWithSkip(s.logger, []string{healthPath})(h)
	h = middleware.RecoveryMiddleware(s.logger)(h)
	return h
}

// Run запускает HTTP сервер и очистку просроченных refresh tokens.
// Возвращается после отмены ctx и graceful shutdown.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.ListenAddr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	defer s.Close()

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.InfoContext(ctx, "starting server", slog.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		s.runJanitor(gctx)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// runJanitor периодически удаляет просроченные refresh tokens
func (s *Server) runJanitor(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.TokenCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.cleanupTokens(ctx)
		}
	}
}

func (s *Server) cleanupTokens(ctx context.Context) {
	n, err := s.store.DeleteExpiredTokens(ctx, s.now())
	if err != nil {
		if ctx.Err() == nil {
			s.logger.ErrorContext(ctx, "failed to delete expired tokens", slog.Any("error", err))
		}
		return
	}
	if n > 0 {
		s.logger.InfoContext(ctx, "expired refresh tokens removed", slog.Int("count", n))
	}
}
