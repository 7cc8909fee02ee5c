package server

import (
	"embed"
	"errors"
	"html/template"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/ironsheep/note-extract/internal/batch"
	"github.com/ironsheep/note-extract/internal/config"
	"github.com/rs/zerolog"
)

//go:embed templates/index.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// Server is the browser UI.
type Server struct {
	app      *fiber.App
	runner   *batch.Runner
	sessions *SessionStore
	provider string
	logger   zerolog.Logger
}

// New creates the UI server. provider names the active extraction backend
// for the health endpoint and the page footer.
func New(cfg *config.Config, runner *batch.Runner, provider string, logger zerolog.Logger) *Server {
	s := &Server{
		runner:   runner,
		sessions: NewSessionStore(),
		provider: provider,
		logger:   logger.With().Str("component", "server").Logger(),
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "note-extract",
		BodyLimit:             cfg.MaxUploadBytes(),
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})

	s.app.Use(recover.New())

	s.app.Get("/", s.handleIndex)
	s.app.Post("/extract", s.handleExtract)
	s.app.Post("/clear", s.handleClear)
	s.app.Get("/results.md", s.handleResultsMarkdown)
	s.app.Get("/healthz", s.handleHealth)

	return s
}

// App returns the underlying fiber application.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until Shutdown is called.
func (s *Server) Listen(addr string) error {
	s.logger.Info().Str("addr", addr).Str("provider", s.provider).Msg("listening")
	return s.app.Listen(addr)
}

// Shutdown stops the listener and waits for open requests, including
// running batches, to finish.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// handleError turns handler errors into JSON bodies.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		s.logger.Error().Err(err).Str("path", c.Path()).Msg("request failed")
	}
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
