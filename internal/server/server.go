package server

import (
	"log"

	"bpmn-interview-be/internal/bootstrap"
	"bpmn-interview-be/internal/config"
	"bpmn-interview-be/internal/pkg/serverutils"
	"bpmn-interview-be/internal/service"
	"bpmn-interview-be/pkg/interview"
	"bpmn-interview-be/pkg/llm"
	"bpmn-interview-be/pkg/transcription"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

// ErrorMappings binds the domain errors to HTTP status codes. Pipeline and
// transcription failures get a fixed message; the cause is only logged.
func ErrorMappings() []serverutils.ErrorMapping {
	return []serverutils.ErrorMapping{
		{Err: service.ErrSessionNotFound, Code: fiber.StatusNotFound, Message: "Interview session not found"},
		{Err: service.ErrGenerationNotFound, Code: fiber.StatusNotFound},
		{Err: service.ErrNoModel, Code: fiber.StatusNotFound},
		{Err: service.ErrSessionBusy, Code: fiber.StatusConflict},
		{Err: interview.ErrNotActive, Code: fiber.StatusConflict},
		{Err: interview.ErrMissingProcessType, Code: fiber.StatusBadRequest},
		{Err: service.ErrRecordingFailed, Code: fiber.StatusBadRequest},
		{Err: service.ErrNoAnswers, Code: fiber.StatusUnprocessableEntity},
		{Err: transcription.ErrNoSpeech, Code: fiber.StatusUnprocessableEntity, Message: "No speech detected"},
		{Err: transcription.ErrTimeout, Code: fiber.StatusGatewayTimeout, Message: "Transcription timed out"},
		{Err: transcription.ErrTranscription, Code: fiber.StatusBadGateway, Message: "Transcription failed"},
		{Err: service.ErrGenerationFailed, Code: fiber.StatusBadGateway, Message: "BPMN generation failed"},
		{Err: llm.ErrUnauthorized, Code: fiber.StatusServiceUnavailable, Message: "AI provider rejected the credentials"},
		{Err: llm.ErrRateLimited, Code: fiber.StatusBadGateway, Message: "AI provider is rate limiting requests"},
		{Err: llm.ErrNetwork, Code: fiber.StatusBadGateway, Message: "AI provider is unreachable"},
		{Err: llm.ErrEmptyReply, Code: fiber.StatusBadGateway, Message: "AI provider returned no answer"},
		{Err: service.ErrMissingCredentials, Code: fiber.StatusServiceUnavailable},
		{Err: service.ErrStorageDisabled, Code: fiber.StatusServiceUnavailable},
	}
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	app := fiber.New(fiber.Config{
		// base64 audio answers
		BodyLimit: 25 * 1024 * 1024,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.CorsAllowedOrigins,
		AllowCredentials: cfg.App.CorsAllowedOrigins != "*",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, OPTIONS",
		ExposeHeaders:    "Content-Length, Content-Type, Content-Disposition",
	}))

	// traces every HTTP request; spans continue into the pipeline
	app.Use(otelfiber.Middleware())

	app.Use(serverutils.ErrorHandlerMiddleware(container.Logger, ErrorMappings()...))

	registerRoutes(app, container)

	return &Server{
		app:       app,
		cfg:       cfg,
		container: container,
	}
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	log.Printf("Server is running on http://localhost:%s", s.cfg.App.Port)
	return s.app.Listen(":" + s.cfg.App.Port)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func registerRoutes(app *fiber.App, c *bootstrap.Container) {
	app.Get("/health", func(ctx *fiber.Ctx) error {
		return ctx.JSON(serverutils.SuccessResponse("ok", fiber.Map{"status": "healthy"}))
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")

	c.InterviewController.RegisterRoutes(api)
	c.GenerationController.RegisterRoutes(api)
	c.ProgressHandler.RegisterRoutes(api)
}
