package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/storymesh/storymesh/internal/util"
	"github.com/storymesh/storymesh/logging"
	"github.com/storymesh/storymesh/model"
	"github.com/storymesh/storymesh/retry"
)

// modelCallRecorder is the optional logger upgrade for structured model
// call records.
type modelCallRecorder interface {
	LogModelCall(model string, tokens int, dur time.Duration, success bool, err error)
}

// StageOptions carries the cross-cutting dependencies shared by all
// generative stages and the render stage.
type StageOptions struct {
	// Retry wraps every external call; nil means no retry semantics.
	Retry *retry.Policy
	// Logger records per-call details; defaults to NoOpLogger.
	Logger logging.Logger
}

func resolveStageOptions(optFns []func(o *StageOptions)) StageOptions {
	opts := StageOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return opts
}

// generativeStage bundles the shared mechanics of model-backed stages:
// prompt templating, retried generation and schema-checked payload
// decoding. Concrete stages supply their prompts and delta application.
type generativeStage struct {
	name     string
	system   string
	template string
	model    model.Model
	opts     StageOptions
}

// generate renders the stage prompt around the supplied context fragment
// and calls the model through the retry policy.
func (s *generativeStage) generate(ctx context.Context, promptContext string) (string, error) {
	prompt, err := util.RenderPrompt(s.template, map[string]any{"Context": promptContext})
	if err != nil {
		return "", fmt.Errorf("stage %s: prompt template: %w", s.name, err)
	}

	start := time.Now()
	resp, err := retry.DoValue(ctx, s.opts.Retry, s.name, func(ctx context.Context) (*model.Response, error) {
		return s.model.Generate(ctx, model.Request{
			Messages: []model.Message{
				model.SystemMessage(s.system),
				model.UserMessage(prompt),
			},
		})
	})
	dur := time.Since(start)

	if rec, ok := s.opts.Logger.(modelCallRecorder); ok {
		tokens := 0
		if resp != nil && resp.Usage != nil {
			tokens = resp.Usage.TotalTokens
		}
		rec.LogModelCall(s.model.Info().Name, tokens, dur, err == nil, err)
	}
	if err != nil {
		return "", fmt.Errorf("stage %s: generation failed: %w", s.name, err)
	}

	s.opts.Logger.Debug("stage generation completed", "stage", s.name, "model", s.model.Info().Name)
	return resp.Content, nil
}

// decode parses the model output into the stage's payload struct. The raw
// JSON is first validated against the schema derived from the payload
// type; any malformed or non-conforming payload yields a *ParseError and
// the stage applies nothing.
func (s *generativeStage) decode(content string, out any) error {
	var raw map[string]any
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return &ParseError{Stage: s.name, Err: err}
	}
	if err := util.ValidatePayload(raw, util.PayloadSchema(out)); err != nil {
		return &ParseError{Stage: s.name, Err: err}
	}
	if err := json.Unmarshal([]byte(content), out); err != nil {
		return &ParseError{Stage: s.name, Err: err}
	}
	return nil
}
