package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/storymesh/storymesh/core"
	"github.com/storymesh/storymesh/render"
	"github.com/storymesh/storymesh/retry"
)

// renderRecorder is the optional logger upgrade for structured per-shot
// render records.
type renderRecorder interface {
	LogRenderCall(shotID string, dur time.Duration, success bool, err error)
}

// RenderStage invokes the render capability for every shot of every scene
// in timeline order and records the returned locator on the shot. It
// performs no payload parsing.
//
// Failure policy: the first failing shot aborts the stage. A renderer that
// wants degraded continuation must return a placeholder locator instead of
// an error.
type RenderStage struct {
	renderer render.Renderer
	opts     StageOptions
}

// NewRenderStage creates the render stage bound to a renderer.
func NewRenderStage(r render.Renderer, optFns ...func(o *StageOptions)) *RenderStage {
	return &RenderStage{renderer: r, opts: resolveStageOptions(optFns)}
}

// Name implements Stage.
func (s *RenderStage) Name() string { return StageRender }

// Run implements Stage.
func (s *RenderStage) Run(ctx context.Context, pc *core.ProductionContext) error {
	for _, scene := range pc.Timeline.Scenes {
		for _, shot := range scene.Shots {
			start := time.Now()
			locator, err := retry.DoValue(ctx, s.opts.Retry, fmt.Sprintf("render shot %s", shot.ID), func(ctx context.Context) (string, error) {
				return s.renderer.RenderShot(ctx, pc.Style, shot)
			})
			dur := time.Since(start)
			if rec, ok := s.opts.Logger.(renderRecorder); ok {
				rec.LogRenderCall(shot.ID, dur, err == nil, err)
			} else if err != nil {
				s.opts.Logger.Error("shot render failed", "shot", shot.ID, "scene", scene.ID, "duration", dur.String(), "error", err.Error())
			} else {
				s.opts.Logger.Info("shot rendered", "shot", shot.ID, "scene", scene.ID, "locator", locator, "duration", dur.String())
			}
			if err != nil {
				return fmt.Errorf("render shot %s: %w", shot.ID, err)
			}
			shot.RenderOutput = locator
		}
	}
	return nil
}
