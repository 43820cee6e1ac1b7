// Package storymesh provides a high-level façade over the routing,
// pipeline and resilience cores for multi-step creative production
// workflows. Most applications interact with this package by:
//  1. Creating a Studio via New() (optionally overriding model, renderer,
//     retry policy and routing parameters)
//  2. Routing tasks between workers (Route) and/or
//  3. Running the production pipeline end to end (RunProduction)
//
// The façade delegates decision logic to router.Router and execution to
// pipeline.Pipeline while keeping setup ergonomics concise. All defaults
// are safe for local development and testing; production deployments
// supply real model/renderer adapters and a structured logger.
package storymesh

import (
	"context"
	"fmt"

	"github.com/storymesh/storymesh/config"
	"github.com/storymesh/storymesh/core"
	"github.com/storymesh/storymesh/logging"
	"github.com/storymesh/storymesh/memory"
	"github.com/storymesh/storymesh/model"
	"github.com/storymesh/storymesh/model/anthropic"
	"github.com/storymesh/storymesh/model/gemini"
	"github.com/storymesh/storymesh/model/openai"
	"github.com/storymesh/storymesh/pipeline"
	"github.com/storymesh/storymesh/render"
	"github.com/storymesh/storymesh/retry"
	"github.com/storymesh/storymesh/router"
)

// Options configures the Studio instance.
type Options struct {
	// Model supplies text generation for the generative stages. Defaults
	// to a MockModel (suitable for tests only).
	Model model.Model

	// Renderer supplies per-shot video rendering. Defaults to a
	// MockRenderer.
	Renderer render.Renderer

	// Retry wraps all external calls. Defaults to retry.Default().
	Retry *retry.Policy

	// ConfidenceThreshold for director routing.
	ConfidenceThreshold float64

	// Fallback worker when no scorer clears the threshold.
	Fallback core.WorkerKind

	// RegisterDefaultScorers installs the built-in animation/film/game
	// keyword scorers. Enabled by default.
	RegisterDefaultScorers bool

	// Memory records routing decisions and stage outcomes for recall.
	// Nil disables recording.
	Memory *memory.Store

	// Logger (defaults to NoOp logger if nil).
	Logger logging.Logger
}

// Studio is the high-level façade aggregating router, pipeline factory and
// run memory.
type Studio struct {
	opts   Options
	router *router.Router
}

// New creates a Studio with optional overrides. Any unset collaborator is
// initialized with an in-memory implementation.
func New(optFns ...func(o *Options)) (*Studio, error) {
	opts := Options{
		Model:                  model.NewMockModel("mock", "mock"),
		Renderer:               render.NewMockRenderer(),
		Retry:                  retry.Default(),
		ConfidenceThreshold:    0.6,
		Fallback:               core.WorkerPlanner,
		RegisterDefaultScorers: true,
		Memory:                 memory.NewStore(),
		Logger:                 logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	r, err := router.New(func(o *router.Options) {
		o.ConfidenceThreshold = opts.ConfidenceThreshold
		o.Fallback = opts.Fallback
		o.Logger = opts.Logger
	})
	if err != nil {
		return nil, err
	}

	if opts.RegisterDefaultScorers {
		r.Register(core.WorkerAnimation, router.NewAnimationScorer())
		r.Register(core.WorkerFilm, router.NewFilmScorer())
		r.Register(core.WorkerGame, router.NewGameScorer())
	}

	return &Studio{opts: opts, router: r}, nil
}

// NewFromConfig creates a Studio from a loaded configuration, resolving
// the model and renderer providers it names.
func NewFromConfig(cfg *config.Config, optFns ...func(o *Options)) (*Studio, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m, err := buildModel(cfg.LLM)
	if err != nil {
		return nil, err
	}
	rend, err := buildRenderer(cfg.Render)
	if err != nil {
		return nil, err
	}

	var store *memory.Store
	if cfg.Memory.Enabled {
		store = memory.NewStore(func(o *memory.Options) { o.MaxEntries = cfg.Memory.MaxEntries })
	}

	base := func(o *Options) {
		o.Model = m
		o.Renderer = rend
		o.Retry = cfg.LLM.Retry.Policy()
		o.ConfidenceThreshold = cfg.Router.ConfidenceThreshold
		o.Fallback = cfg.Router.Fallback()
		o.Memory = store
	}
	return New(append([]func(o *Options){base}, optFns...)...)
}

func buildModel(cfg config.LLMConfig) (model.Model, error) {
	switch cfg.Provider {
	case "anthropic":
		return anthropic.NewModel(func(o *anthropic.Options) {
			o.APIKey = cfg.APIKey
			o.BaseURL = cfg.APIBase
			if cfg.Model != "" {
				o.Model = anthropic.ModelID(cfg.Model)
			}
		}), nil
	case "openai":
		return openai.NewModel(func(o *openai.Options) {
			o.APIKey = cfg.APIKey
			o.BaseURL = cfg.APIBase
			if cfg.Model != "" {
				o.Model = cfg.Model
			}
		}), nil
	case "gemini":
		return gemini.NewModel(func(o *gemini.Options) {
			o.APIKey = cfg.APIKey
			if cfg.Model != "" {
				o.Model = cfg.Model
			}
		})
	case "mock":
		return model.NewMockModel("mock", "mock"), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider: %q", cfg.Provider)
	}
}

func buildRenderer(cfg config.RenderConfig) (render.Renderer, error) {
	if cfg.Provider == "mock" {
		return render.NewMockRenderer(), nil
	}
	return render.NewHTTPClient(render.Provider(cfg.Provider), func(o *render.HTTPClientOptions) {
		o.APIKey = cfg.APIKey
		o.BaseURL = cfg.APIBase
	})
}

// Router returns the underlying router for custom scorer registration.
func (s *Studio) Router() *router.Router { return s.router }

// Memory returns the run memory store; nil when recording is disabled.
func (s *Studio) Memory() *memory.Store { return s.opts.Memory }

// Route decides the next worker(s) for a task, recording the decision in
// run memory when enabled.
func (s *Studio) Route(current core.WorkerKind, task *core.Task, side map[string]any) router.RoutingDecision {
	decision := s.router.Route(current, task, side)
	if s.opts.Memory != nil {
		s.opts.Memory.Add(memory.NewRecord(decision.String(), "routing", current.String()))
	}
	return decision
}

// NewProductionPipeline assembles the standard planning -> storyboard ->
// motion -> render pipeline against the configured model and renderer.
func (s *Studio) NewProductionPipeline() *pipeline.Pipeline {
	stageOpts := func(o *pipeline.StageOptions) {
		o.Retry = s.opts.Retry
		o.Logger = s.opts.Logger
	}
	return pipeline.New([]pipeline.Stage{
		pipeline.NewPlanningStage(s.opts.Model, stageOpts),
		pipeline.NewStoryboardStage(s.opts.Model, stageOpts),
		pipeline.NewMotionStage(s.opts.Model, stageOpts),
		pipeline.NewRenderStage(s.opts.Renderer, stageOpts),
	}, func(o *pipeline.Options) {
		o.Logger = s.opts.Logger
	})
}

// RunProduction executes the standard pipeline over the given context and
// returns the final context.
func (s *Studio) RunProduction(ctx context.Context, pc *core.ProductionContext) (*core.ProductionContext, error) {
	out, err := s.NewProductionPipeline().Run(ctx, pc)
	if s.opts.Memory != nil {
		outcome := "completed"
		if err != nil {
			outcome = fmt.Sprintf("failed: %v", err)
		}
		s.opts.Memory.Add(memory.NewRecord(outcome, "production", core.WorkerRender.String()))
	}
	return out, err
}
