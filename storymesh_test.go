package storymesh

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storymesh/storymesh/config"
	"github.com/storymesh/storymesh/core"
	"github.com/storymesh/storymesh/model"
	"github.com/storymesh/storymesh/render"
	"github.com/storymesh/storymesh/retry"
)

const (
	planningJSON = `{"scenes": [
		{"id": "scene_1", "description": "Duel at dawn in a ruined temple"}
	]}`

	storyboardJSON = `{"shots": [
		{"scene_id": "scene_1", "shot_id": "shot_1", "duration": 4.0,
		 "subject": "Two warriors circling", "environment": "ruined temple",
		 "camera": {"shot_type": "wide", "movement": "dolly in", "lens": "35mm", "angle": "eye-level"}}
	]}`

	motionJSON = `{"motions": [
		{"shot_id": "shot_1", "start_pose": "guard stance", "action": "lunges forward", "end_pose": "blade extended"}
	]}`
)

func TestNew_Defaults(t *testing.T) {
	s, err := New()
	require.NoError(t, err)

	assert.NotNil(t, s.Router())
	assert.NotNil(t, s.Memory())

	// Default scorers are registered: an animation prompt routes somewhere
	// concrete instead of erroring out.
	task := core.NewTask("animation", map[string]any{
		"prompt": "Animate the character motion with smooth keyframe movement and pose blending",
	})
	decision := s.Route(core.WorkerDirector, task, nil)
	require.Len(t, decision.Next, 1)
	assert.Equal(t, core.WorkerAnimation, decision.Next[0])
}

func TestNew_InvalidFallback(t *testing.T) {
	_, err := New(func(o *Options) { o.Fallback = core.WorkerTerminal })
	assert.Error(t, err)
}

func TestStudio_RouteRecordsMemory(t *testing.T) {
	s, err := New()
	require.NoError(t, err)

	task := core.NewTask("mixed", map[string]any{"prompt": "make something"})
	decision := s.Route(core.WorkerNone, task, nil)
	require.Len(t, decision.Next, 1)
	assert.Equal(t, core.WorkerPlanner, decision.Next[0])

	records := s.Memory().ByCause("routing")
	require.Len(t, records, 1)
	assert.Equal(t, "none", records[0].Worker)
	assert.Contains(t, records[0].Content, "planner")
}

func TestStudio_RouteWithoutMemory(t *testing.T) {
	s, err := New(func(o *Options) { o.Memory = nil })
	require.NoError(t, err)

	task := core.NewTask("mixed", nil)
	decision := s.Route(core.WorkerNone, task, nil)
	require.Len(t, decision.Next, 1)
	assert.Nil(t, s.Memory())
}

func TestStudio_RunProduction(t *testing.T) {
	m := model.NewMockModel("mock", "mock")
	m.Enqueue(planningJSON, storyboardJSON, motionJSON)
	rend := render.NewMockRenderer()

	s, err := New(func(o *Options) {
		o.Model = m
		o.Renderer = rend
	})
	require.NoError(t, err)

	pc := core.NewProductionContext(core.GlobalStyle{VisualStyle: "anime"}, nil)
	out, err := s.RunProduction(context.Background(), pc)
	require.NoError(t, err)

	require.Len(t, out.Timeline.Scenes, 1)
	require.Len(t, out.Timeline.Scenes[0].Shots, 1)
	shot := out.Timeline.Scenes[0].Shots[0]
	assert.Equal(t, "shot_1", shot.ID)
	assert.Equal(t, "lunges forward", shot.Motion.Action)
	assert.Equal(t, "mock://render/shot_1.mp4", shot.RenderOutput)
	assert.Equal(t, []string{"shot_1"}, rend.Rendered())

	records := s.Memory().ByCause("production")
	require.Len(t, records, 1)
	assert.Equal(t, "completed", records[0].Content)
}

func TestStudio_RunProduction_FailureRecorded(t *testing.T) {
	m := model.NewMockModel("mock", "mock")
	m.Enqueue("not json at all")

	s, err := New(func(o *Options) {
		o.Model = m
		o.Retry = &retry.Policy{Enabled: false}
	})
	require.NoError(t, err)

	_, err = s.RunProduction(context.Background(), core.NewProductionContext(core.GlobalStyle{}, nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pipeline halted at stage planning")

	records := s.Memory().ByCause("production")
	require.Len(t, records, 1)
	assert.Contains(t, records[0].Content, "failed")
}

func TestStudio_PipelineStageOrder(t *testing.T) {
	s, err := New()
	require.NoError(t, err)

	p := s.NewProductionPipeline()
	names := make([]string, 0, len(p.Stages()))
	for _, stage := range p.Stages() {
		names = append(names, stage.Name())
	}
	assert.Equal(t, []string{"planning", "storyboard", "motion", "render"}, names)
}

func TestNewFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.LLM.Provider = "mock"
	cfg.Render.Provider = "mock"
	cfg.Router.ConfidenceThreshold = 0.9
	cfg.Memory.Enabled = true
	cfg.Memory.MaxEntries = 5

	s, err := NewFromConfig(cfg)
	require.NoError(t, err)
	require.NotNil(t, s.Memory())

	// High threshold forces the fallback on a weak prompt.
	task := core.NewTask("film", map[string]any{"prompt": "a film scene"})
	decision := s.Route(core.WorkerDirector, task, nil)
	require.Len(t, decision.Next, 1)
	assert.Equal(t, cfg.Router.Fallback(), decision.Next[0])
	assert.Contains(t, decision.Reason, "0.90")
}

func TestNewFromConfig_MemoryDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.Memory.Enabled = false

	s, err := NewFromConfig(cfg)
	require.NoError(t, err)
	assert.Nil(t, s.Memory())
}

func TestNewFromConfig_InvalidProvider(t *testing.T) {
	cfg := config.Default()
	cfg.LLM.Provider = "mystery"

	_, err := NewFromConfig(cfg)
	assert.Error(t, err)
}
