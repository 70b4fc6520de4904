package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/masarflow/masar/pkg/events"
	"github.com/masarflow/masar/pkg/generation"
	"github.com/masarflow/masar/pkg/images"
	"github.com/masarflow/masar/pkg/models"
	"github.com/masarflow/masar/pkg/otelhelper"
	"github.com/masarflow/masar/pkg/settings"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Generation orchestrates one guide generation run: resolve the model from
// settings, call its provider, resolve media keywords into image URLs, and
// optionally save the result to the library.
type Generation struct {
	settings  *settings.Service
	workflows *Workflow
	tracer    trace.Tracer
	logger    *slog.Logger

	// Both factories are swappable for tests.
	generatorFor func(*models.AIModel, *slog.Logger) (generation.Generator, error)
	searcherFor  func(models.ImageProvider, string) images.Searcher
}

// NewGeneration creates a generation service. The tracer may be nil.
func NewGeneration(
	settingsService *settings.Service,
	workflowService *Workflow,
	searcherFor func(models.ImageProvider, string) images.Searcher,
	tracer trace.Tracer,
	logger *slog.Logger,
) *Generation {
	return &Generation{
		settings:     settingsService,
		workflows:    workflowService,
		tracer:       tracer,
		logger:       logger,
		generatorFor: generation.ForModel,
		searcherFor:  searcherFor,
	}
}

// GenerateRequest is one generation run.
type GenerateRequest struct {
	// Prompt is the free-text task description.
	Prompt string

	// ModelID selects a registered model; empty means the default model.
	ModelID string

	// Language overrides the configured output language when set.
	Language models.Language

	Options generation.Options

	// Save persists the result to the library.
	Save bool

	// IsPrivate sets the visibility of a saved result.
	IsPrivate bool
}

// Generate produces a workflow guide from a prompt. The returned workflow has
// an ID only when req.Save is set.
func (g *Generation) Generate(ctx context.Context, req GenerateRequest) (*models.Workflow, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, ErrEmptyPrompt
	}

	appSettings, err := g.settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	model := appSettings.DefaultModel()
	if req.ModelID != "" {
		model = appSettings.ModelByID(req.ModelID)
	}

	if model == nil {
		return nil, generation.ErrNoModelConfigured
	}

	language := appSettings.Language
	if req.Language != "" {
		language = req.Language
	}

	ctx, span := g.startSpan(ctx, req, model, language)
	defer span.End()

	generator, err := g.generatorFor(model, g.logger)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	started := time.Now()

	result, err := generator.Generate(ctx, generation.Request{
		Prompt:   req.Prompt,
		Language: language,
		Options:  req.Options,
	})
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	if req.Options.IncludeMedia {
		searcher := g.searcherFor(appSettings.ImageProvider, appSettings.ImageProviderAPIKey)
		generation.ResolveMedia(ctx, searcher, g.logger, result.Steps)
	}

	workflow := &models.Workflow{
		Title:       result.Title,
		Description: result.Description,
		IsPrivate:   req.IsPrivate,
		Steps:       result.Steps,
	}

	if req.Save {
		workflow, err = g.workflows.CreateGenerated(ctx, workflow)
		if err != nil {
			otelhelper.SetError(span, err)

			return nil, err
		}
	}

	g.workflows.publish(ctx, workflow.ID, events.WorkflowGenerated{
		BaseEvent:  events.NewBaseEvent(events.WorkflowGeneratedEvent, workflow.ID),
		Provider:   model.Provider,
		ModelName:  model.ModelName,
		Prompt:     req.Prompt,
		StepCount:  len(workflow.Steps),
		DurationMs: time.Since(started).Milliseconds(),
	})

	return workflow, nil
}

func (g *Generation) startSpan(ctx context.Context, req GenerateRequest, model *models.AIModel, language models.Language) (context.Context, trace.Span) {
	if g.tracer == nil {
		return noop.NewTracerProvider().Tracer("").Start(ctx, "generation.generate")
	}

	return otelhelper.StartSpan(ctx, g.tracer, "generation.generate",
		attribute.String(otelhelper.ProviderKey, string(model.Provider)),
		attribute.String(otelhelper.ModelNameKey, model.ModelName),
		attribute.String(otelhelper.PromptKey, req.Prompt),
		attribute.String(otelhelper.LanguageKey, string(language)),
	)
}
