package portal

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/bobby-s-dev/weather-paper/internal/settings"
)

type Config struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server is the configuration portal. Launch blocks until a settings save
// succeeds or ctx is cancelled.
type Server struct {
	cfg     Config
	app     *fiber.App
	handler *Handler
	logger  *zap.Logger
}

func NewServer(cfg Config, store *settings.Store, logger *zap.Logger) *Server {
	app := fiber.New(fiber.Config{
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		ErrorHandler:          errorHandler,
		DisableStartupMessage: true,
	})

	handler := NewHandler(store, logger)
	SetupRoutes(app, handler)

	return &Server{
		cfg:     cfg,
		app:     app,
		handler: handler,
		logger:  logger,
	}
}

// App exposes the fiber app for in-process requests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Launch(ctx context.Context) error {
	// Drop saves that arrived while no session was running.
	select {
	case <-s.handler.saved:
	default:
	}

	addr := ":" + s.cfg.Port
	listenErr := make(chan error, 1)

	go func() {
		s.logger.Info("Starting configuration portal", zap.String("address", addr))
		listenErr <- s.app.Listen(addr)
	}()

	var err error
	select {
	case <-s.handler.Saved():
		s.logger.Info("Settings received, closing portal")
	case <-ctx.Done():
		err = ctx.Err()
	case err = <-listenErr:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if serr := s.app.ShutdownWithContext(shutdownCtx); serr != nil {
		s.logger.Error("Portal shutdown failed", zap.Error(serr))
	}
	return err
}

func errorHandler(c *fiber.Ctx, err error) error {
	zap.L().Error("HTTP error",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err))

	// Default to 500 status code
	code := fiber.StatusInternalServerError

	// Check if it's a Fiber error
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   err.Error(),
		"success": false,
	})
}
