// Package server wraps a fiber app with prioritized global middlewares and a
// uniform JSON error body.
package server

import (
	"github.com/gofiber/fiber/v2"

	"github.com/rise-and-shine/tabletop/meta"
)

// HTTPServer owns the fiber app and its listen address.
type HTTPServer struct {
	cfg    Config
	router *fiber.App
}

// NewHTTPServer builds the fiber app and mounts middlewares by descending priority.
func NewHTTPServer(cfg Config, middlewares []Middleware) *HTTPServer {
	router := fiber.New(fiber.Config{
		AppName:                  meta.Service().Name,
		ReadTimeout:              cfg.ReadTimeout,
		WriteTimeout:             cfg.WriteTimeout,
		IdleTimeout:              cfg.IdleTimeout,
		BodyLimit:                cfg.BodyLimit,
		ErrorHandler:             customErrorHandler(cfg.HideErrorDetails),
		DisableStartupMessage:    true,
		Immutable:                true,
		EnableSplittingOnParsers: true,
	})
	use(router, middlewares)

	return &HTTPServer{cfg: cfg, router: router}
}

// RegisterRouter lets register mount routes on the root router.
func (s *HTTPServer) RegisterRouter(register func(r fiber.Router)) {
	register(s.router)
}

// App returns the underlying fiber application, e.g. for app.Test in tests.
func (s *HTTPServer) App() *fiber.App {
	return s.router
}

// Start blocks serving requests until Stop is called or listening fails.
func (s *HTTPServer) Start() error {
	return s.router.Listen(s.cfg.Address())
}

// Stop stops accepting connections and waits up to ShutdownTimeout for
// in-flight requests. A zero timeout waits indefinitely.
func (s *HTTPServer) Stop() error {
	if s.cfg.ShutdownTimeout <= 0 {
		return s.router.Shutdown()
	}
	return s.router.ShutdownWithTimeout(s.cfg.ShutdownTimeout)
}
