// Package rest exposes the account service over HTTP with fiber: JSON
// bodies, an HttpOnly session cookie, health and metrics endpoints.
package rest

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/bikram73/My-Bank/internal/logging"
	"github.com/bikram73/My-Bank/internal/server/config"
	"github.com/bikram73/My-Bank/internal/server/metrics"
	"github.com/bikram73/My-Bank/internal/server/models"
	"github.com/bikram73/My-Bank/internal/server/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

const shutdownTimeout = 5 * time.Second

// AccountService is the subset of services.AccountService the handlers use.
type AccountService interface {
	NextUID(ctx context.Context) (int64, error)
	Register(ctx context.Context, req services.RegisterRequest) (*models.Account, error)
	Login(ctx context.Context, email, password string) (*services.Session, error)
	Profile(ctx context.Context, tokenValue string) (*services.Profile, error)
	ChangePassword(ctx context.Context, tokenValue, newPassword string) error
	Sessions(ctx context.Context, tokenValue string) ([]services.SessionRecord, error)
}

// HealthChecker reports whether storage is reachable.
type HealthChecker func(ctx context.Context) error

type HTTPServer struct {
	address      string
	app          *fiber.App
	accounts     AccountService
	health       HealthChecker
	metrics      *metrics.Metrics
	logger       logging.Logger
	cookieSecure bool
}

func NewHTTPServer(cfg *config.Config, l logging.Logger, as AccountService, health HealthChecker, m *metrics.Metrics) *HTTPServer {
	s := &HTTPServer{
		address:      cfg.EndpointAddrHTTP,
		accounts:     as,
		health:       health,
		metrics:      m,
		logger:       l.With("module", "http_server"),
		cookieSecure: cfg.CookieSecure,
	}

	s.app = fiber.New(fiber.Config{
		ErrorHandler:          s.errorHandler,
		DisableStartupMessage: true,
	})

	s.app.Use(s.requestInterceptor)

	s.app.Get("/healthz", s.Healthz)
	s.app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))

	api := s.app.Group("/api")
	api.Get("/next-uid", s.NextUID)
	api.Post("/register", authRateLimit(cfg.AuthRateLimit), s.Register)
	api.Post("/login", authRateLimit(cfg.AuthRateLimit), s.Login)
	api.Get("/balance", requireSession, s.Balance)
	api.Post("/change-password", requireSession, s.ChangePassword)
	api.Get("/sessions", requireSession, s.Sessions)
	api.Post("/logout", s.Logout)

	if cfg.StaticDir != "" {
		s.app.Static("/", cfg.StaticDir)
	}

	return s
}

// App returns the underlying fiber application.
func (s *HTTPServer) App() *fiber.App {
	return s.app
}

// Run serves until ctx is cancelled and then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.app.Listener(listen)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "Stopping HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.app.ShutdownWithContext(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return <-errCh
}
