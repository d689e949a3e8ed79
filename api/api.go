package api

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/learnhub-api/utils/apierr"
	"github.com/sahilchouksey/learnhub-api/utils/logger"
	"github.com/sahilchouksey/learnhub-api/utils/response"
)

// BodyLimit leaves room for lesson media uploads.
const BodyLimit = 512 * 1024 * 1024

type APIServer struct {
	app           *fiber.App
	listenAddress string
	log           *logger.Logger
}

func NewAPIServer(listenAddress string, log *logger.Logger) *APIServer {
	if log == nil {
		log = logger.Nop()
	}
	return &APIServer{
		app: fiber.New(fiber.Config{
			AppName:      "LearnHub API",
			BodyLimit:    BodyLimit,
			ErrorHandler: ErrorHandler(log),
		}),
		listenAddress: listenAddress,
		log:           log,
	}
}

// ErrorHandler writes anything a handler or middleware returns through the
// standard error envelope. Unknown errors are logged and reported as 500.
func ErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if !errors.As(err, &fiberErr) && apierr.StatusOf(err) >= fiber.StatusInternalServerError {
			log.Error("unhandled request error", "method", c.Method(), "path", c.Path(), "error", err)
		}
		return response.FromError(c, err)
	}
}

func (s *APIServer) GetEngine() *fiber.App {
	return s.app
}

func (s *APIServer) Run() error {
	s.log.Info("starting API server", "address", s.listenAddress)
	return s.app.Listen(s.listenAddress)
}

// Shutdown stops accepting connections and waits for in-flight requests until ctx ends.
func (s *APIServer) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
