// Package main provides the Masar API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/masarflow/masar/pkg/eventbus"
	"github.com/masarflow/masar/pkg/images"
	"github.com/masarflow/masar/pkg/models"
	"github.com/masarflow/masar/pkg/persistence"
	"github.com/masarflow/masar/pkg/services"
	"github.com/masarflow/masar/pkg/settings"
	"github.com/masarflow/masar/pkg/web"
	"go.opentelemetry.io/otel/trace"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	eventBus    eventbus.EventBus
	searcherFor func(models.ImageProvider, string) images.Searcher
	tracer      trace.Tracer
	validate    *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	eventBus eventbus.EventBus,
	searcherFor func(models.ImageProvider, string) images.Searcher,
	tracer trace.Tracer,
) *API {
	return &API{
		logger:      logger,
		persistence: persistence,
		eventBus:    eventBus,
		searcherFor: searcherFor,
		tracer:      tracer,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	settingsService := settings.NewService(a.persistence.SettingsRepository(), a.logger)
	workflowService := services.NewWorkflow(a.persistence, a.eventBus, a.logger)
	generationService := services.NewGeneration(settingsService, workflowService, a.searcherFor, a.tracer, a.logger)

	handlers := web.NewAPIHandlers(workflowService, generationService, settingsService, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Masar API")
	})

	w := app.Group("/workflows")
	w.Get("/", handlers.GetWorkflows)
	w.Post("/", handlers.CreateWorkflow)
	w.Post("/generate", handlers.GenerateWorkflow)
	w.Get("/:id", handlers.GetWorkflow)
	w.Patch("/:id", handlers.UpdateWorkflow)
	w.Delete("/:id", handlers.DeleteWorkflow)
	w.Post("/:id/steps/:stepId/checklist/:itemId", handlers.ToggleChecklistItem)

	s := app.Group("/settings")
	s.Get("/", handlers.GetSettings)
	s.Patch("/", handlers.UpdateSettings)
	s.Get("/models", handlers.GetModels)
	s.Post("/models", handlers.CreateModel)
	s.Patch("/models/:id", handlers.UpdateModel)
	s.Delete("/models/:id", handlers.DeleteModel)
	s.Post("/models/:id/default", handlers.SetDefaultModel)

	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	err := app.Listen(":" + strconv.Itoa(port))

	return err
}
