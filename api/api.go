package api

import (
	"log/slog"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"github.com/papercomputeco/restream/api/mcp"
	"github.com/papercomputeco/restream/pkg/logger"
	"github.com/papercomputeco/restream/pkg/storage"
)

// Server is the API server for reconstructing and querying transcripts.
type Server struct {
	config Config
	driver storage.Driver
	logger *slog.Logger
	app    *fiber.App
}

// NewServer creates a new API server.
// The driver is injected to allow sharing with the worker pool.
func NewServer(config Config, driver storage.Driver, log *slog.Logger) (*Server, error) {
	if log == nil {
		log = logger.Nop()
	}

	if config.BodyLimit <= 0 {
		config.BodyLimit = defaultBodyLimit
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		BodyLimit:             config.BodyLimit,
		ErrorHandler:          errorHandler,
	})

	s := &Server{
		config: config,
		driver: driver,
		logger: log,
		app:    app,
	}

	app.Use(requestid.New(requestid.Config{
		Header:    fiber.HeaderXRequestID,
		Generator: uuid.NewString,
	}))
	app.Use(s.logRequest)

	app.Get("/ping", s.handlePing)
	app.Post("/v1/reconstruct", s.handleReconstruct)
	app.Get("/v1/transcripts", s.handleListTranscripts)
	app.Get("/v1/transcripts/:hash", s.handleGetTranscript)

	if config.MCP {
		mcpServer, err := mcp.NewServer(mcp.Config{
			Driver: driver,
			Pool:   config.Pool,
			Repair: config.Repair,
			Logger: log,
		})
		if err != nil {
			return nil, err
		}
		app.All("/mcp", adaptor.HTTPHandler(mcpServer.Handler()))
	}

	return s, nil
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		"listen", s.config.ListenAddr,
		"mcp", s.config.MCP,
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) logRequest(c *fiber.Ctx) error {
	err := c.Next()

	s.logger.Debug("request",
		"method", c.Method(),
		"path", c.Path(),
		"status", c.Response().StatusCode(),
		"request_id", c.GetRespHeader(fiber.HeaderXRequestID),
	)

	return err
}

// errorHandler renders fiber errors (unknown routes, oversized bodies) in
// the same JSON shape as handler errors.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	return c.Status(code).JSON(ErrorResponse{Error: err.Error()})
}
