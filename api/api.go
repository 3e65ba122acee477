package api

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/mendellabsco/mendel/pkg/rag"
)

// Server is the API server for the genetics tutor.
type Server struct {
	config    Config
	retriever *rag.Retriever
	tutor     *rag.Tutor
	sessions  *sessionStore
	logger    *slog.Logger
	app       *fiber.App
}

// ErrorResponse is the JSON body for failed requests.
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewServer creates a new API server. The retriever and tutor are injected
// so the server shares them with the CLI when run in-process.
func NewServer(config Config, retriever *rag.Retriever, tutor *rag.Tutor, logger *slog.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	if config.MaxHistoryTurns <= 0 {
		config.MaxHistoryTurns = DefaultMaxHistoryTurns
	}

	s := &Server{
		config:    config,
		retriever: retriever,
		tutor:     tutor,
		sessions:  newSessionStore(config.MaxHistoryTurns),
		logger:    logger,
		app:       app,
	}

	app.Get("/ping", s.handlePing)
	app.Get("/v1/search", s.handleSearch)
	app.Post("/v1/ask", s.handleAsk)

	return s
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server", "listen", s.config.ListenAddr)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App exposes the fiber app for in-process testing.
func (s *Server) App() *fiber.App {
	return s.app
}
