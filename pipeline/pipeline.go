package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/storymesh/storymesh/core"
	"github.com/storymesh/storymesh/logging"
)

// Stage is one deterministic transformation step over the shared
// ProductionContext. Implementations mutate the context in place and
// report failure through the returned error; they must not retain the
// context beyond the call.
type Stage interface {
	Name() string
	Run(ctx context.Context, pc *core.ProductionContext) error
}

// stageRecorder is the optional logger upgrade for structured stage
// records. StudioLogger implements it; plain Loggers fall back to the
// generic Info/Error calls.
type stageRecorder interface {
	LogStageExecution(stage string, dur time.Duration, success bool, err error)
}

// Pipeline executes an ordered list of stages over one ProductionContext.
//
// The context is owned exclusively by the running pipeline for the
// duration of a run: stages receive it one after another and no
// concurrent mutation occurs. Hosts running multiple pipelines
// concurrently must give each its own context.
type Pipeline struct {
	stages []Stage
	logger logging.Logger
}

// Options configures Pipeline construction.
type Options struct {
	// Logger records stage execution; defaults to NoOpLogger.
	Logger logging.Logger
}

// New creates a Pipeline running the given stages in order.
func New(stages []Stage, optFns ...func(o *Options)) *Pipeline {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Pipeline{stages: stages, logger: opts.Logger}
}

// Stages returns the configured stage list in execution order.
func (p *Pipeline) Stages() []Stage { return p.stages }

// Run executes all stages sequentially and returns the final context.
// Execution halts on the first stage error, which is returned wrapped with
// the stage name; the context reflects only fully-applied stage deltas up
// to that point.
func (p *Pipeline) Run(ctx context.Context, pc *core.ProductionContext) (*core.ProductionContext, error) {
	if pc == nil {
		return nil, fmt.Errorf("pipeline: nil production context")
	}

	for _, stage := range p.stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := time.Now()
		err := stage.Run(ctx, pc)
		dur := time.Since(start)

		if rec, ok := p.logger.(stageRecorder); ok {
			rec.LogStageExecution(stage.Name(), dur, err == nil, err)
		} else if err != nil {
			p.logger.Error("stage failed", "stage", stage.Name(), "duration", dur.String(), "error", err.Error())
		} else {
			p.logger.Info("stage completed", "stage", stage.Name(), "duration", dur.String(), "scenes", len(pc.Timeline.Scenes), "shots", pc.ShotCount())
		}
		if err != nil {
			return nil, fmt.Errorf("pipeline halted at stage %s: %w", stage.Name(), err)
		}
	}

	return pc, nil
}
