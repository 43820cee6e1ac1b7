package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/storymesh/storymesh/core"
	"github.com/storymesh/storymesh/internal/testutil"
	"github.com/storymesh/storymesh/model"
	"github.com/storymesh/storymesh/render"
	"github.com/storymesh/storymesh/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const planTwoScenes = `{"scenes": [
	{"id": "scene_1", "description": "Hero enters the ruined city"},
	{"id": "scene_2", "description": "Duel on the rooftop"}
]}`

const boardTwoShots = `{"shots": [
	{"scene_id": "scene_1", "shot_id": "shot_1", "duration": 3.0, "subject": "Hero",
	 "environment": "ruined city",
	 "camera": {"shot_type": "wide", "movement": "dolly in", "lens": "35mm", "angle": "eye-level"}},
	{"scene_id": "scene_2", "shot_id": "shot_2", "duration": 2.5, "subject": "Hero",
	 "environment": "rooftop",
	 "camera": {"shot_type": "close-up", "movement": "static", "lens": "50mm", "angle": "low"}}
]}`

func queuedModel(responses ...string) *model.MockModel {
	m := model.NewMockModel("mock", "mock")
	m.Enqueue(responses...)
	return m
}

func TestPlanningStage_AppendsScenes(t *testing.T) {
	pc := testutil.NewProductionBuilder().Character("hero", "young, athletic").Build()
	stage := NewPlanningStage(queuedModel(planTwoScenes))

	require.NoError(t, stage.Run(context.Background(), pc))

	require.Len(t, pc.Timeline.Scenes, 2)
	assert.Equal(t, "scene_1", pc.Timeline.Scenes[0].ID)
	assert.Equal(t, "Hero enters the ruined city", pc.Timeline.Scenes[0].Description)
	assert.Equal(t, "scene_2", pc.Timeline.Scenes[1].ID)
}

func TestPlanningStage_DuplicateSceneIDsProduceTwoEntries(t *testing.T) {
	pc := testutil.NewProductionBuilder().Build()
	stage := NewPlanningStage(queuedModel(`{"scenes": [
		{"id": "scene_1", "description": "first"},
		{"id": "scene_1", "description": "second"}
	]}`))

	require.NoError(t, stage.Run(context.Background(), pc))

	// Scenes are never merged by id: duplicates stay separate entries.
	require.Len(t, pc.Timeline.Scenes, 2)
	assert.Equal(t, "first", pc.Timeline.Scenes[0].Description)
	assert.Equal(t, "second", pc.Timeline.Scenes[1].Description)
}

func TestPlanningStage_PromptIncludesStyleAndCharacters(t *testing.T) {
	pc := testutil.NewProductionBuilder().Character("hero", "young, athletic").Build()
	m := queuedModel(planTwoScenes)

	require.NoError(t, NewPlanningStage(m).Run(context.Background(), pc))

	reqs := m.Requests()
	require.Len(t, reqs, 1)
	require.Len(t, reqs[0].Messages, 2)
	assert.Equal(t, model.RoleSystem, reqs[0].Messages[0].Role)
	assert.Contains(t, reqs[0].Messages[1].Content, "Style: anime cinematic")
	assert.Contains(t, reqs[0].Messages[1].Content, "Character hero")
}

func TestPlanningStage_MalformedJSONAborts(t *testing.T) {
	pc := testutil.NewProductionBuilder().Build()
	stage := NewPlanningStage(queuedModel("sure! here is your plan"))

	err := stage.Run(context.Background(), pc)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, StagePlanning, parseErr.Stage)
	assert.Empty(t, pc.Timeline.Scenes) // no partial apply
}

func TestPlanningStage_SchemaViolationAborts(t *testing.T) {
	pc := testutil.NewProductionBuilder().Build()
	stage := NewPlanningStage(queuedModel(`{"scenes": "not a list"}`))

	err := stage.Run(context.Background(), pc)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Empty(t, pc.Timeline.Scenes)
}

func TestStoryboardStage_AppendsShotsWithPlaceholderMotion(t *testing.T) {
	pc := testutil.NewProductionBuilder().
		Scene("scene_1", "opening").
		Scene("scene_2", "duel").
		Build()

	require.NoError(t, NewStoryboardStage(queuedModel(boardTwoShots)).Run(context.Background(), pc))

	require.Len(t, pc.Timeline.Scenes[0].Shots, 1)
	require.Len(t, pc.Timeline.Scenes[1].Shots, 1)

	shot := pc.Timeline.Scenes[0].Shots[0]
	assert.Equal(t, "shot_1", shot.ID)
	assert.Equal(t, 3.0, shot.Duration)
	assert.Equal(t, "wide", shot.Camera.ShotType)
	assert.Equal(t, core.UndefinedMotion(), shot.Motion)
}

func TestStoryboardStage_UnknownSceneAborts(t *testing.T) {
	pc := testutil.NewProductionBuilder().Scene("scene_1", "opening").Build()
	stage := NewStoryboardStage(queuedModel(`{"shots": [
		{"scene_id": "scene_99", "shot_id": "shot_1", "duration": 3.0, "subject": "Hero",
		 "environment": "void",
		 "camera": {"shot_type": "wide", "movement": "static", "lens": "35mm", "angle": "eye-level"}}
	]}`))

	err := stage.Run(context.Background(), pc)

	var lookupErr *LookupError
	require.ErrorAs(t, err, &lookupErr)
	assert.Equal(t, StageStoryboard, lookupErr.Stage)
	assert.Equal(t, "scene", lookupErr.Entity)
	assert.Equal(t, "scene_99", lookupErr.ID)
	// The timeline carries no partially-built shot for the bad entry.
	assert.Empty(t, pc.Timeline.Scenes[0].Shots)
}

func TestMotionStage_LastMatchWins(t *testing.T) {
	pc := testutil.NewProductionBuilder().
		Scene("scene_1", "opening").
		Shot("scene_1", "shot_1", 3.0).
		Build()

	stage := NewMotionStage(queuedModel(`{"motions": [
		{"shot_id": "shot_1", "start_pose": "standing", "action": "draws sword", "end_pose": "guard"},
		{"shot_id": "shot_1", "start_pose": "crouching", "action": "lunges", "end_pose": "extended"}
	]}`))

	require.NoError(t, stage.Run(context.Background(), pc))

	// Two entries share shot_1: the later-listed one wins.
	motion := pc.Timeline.Scenes[0].Shots[0].Motion
	assert.Equal(t, "crouching", motion.StartPose)
	assert.Equal(t, "lunges", motion.Action)
	assert.Equal(t, "extended", motion.EndPose)
}

func TestMotionStage_UnmatchedShotKeepsPlaceholder(t *testing.T) {
	pc := testutil.NewProductionBuilder().
		Scene("scene_1", "opening").
		Shot("scene_1", "shot_1", 3.0).
		Shot("scene_1", "shot_2", 2.0).
		Build()

	stage := NewMotionStage(queuedModel(`{"motions": [
		{"shot_id": "shot_1", "start_pose": "standing", "action": "walks", "end_pose": "seated"}
	]}`))

	require.NoError(t, stage.Run(context.Background(), pc))

	assert.Equal(t, "standing", pc.Timeline.Scenes[0].Shots[0].Motion.StartPose)
	assert.Equal(t, core.UndefinedMotion(), pc.Timeline.Scenes[0].Shots[1].Motion)
}

func TestRenderStage_RecordsLocatorsInTimelineOrder(t *testing.T) {
	pc := testutil.NewProductionBuilder().
		Scene("scene_1", "opening").
		Shot("scene_1", "shot_1", 3.0).
		Scene("scene_2", "duel").
		Shot("scene_2", "shot_2", 2.5).
		Build()

	renderer := render.NewMockRenderer()
	require.NoError(t, NewRenderStage(renderer).Run(context.Background(), pc))

	assert.Equal(t, []string{"shot_1", "shot_2"}, renderer.Rendered())
	assert.Equal(t, "mock://render/shot_1.mp4", pc.Timeline.Scenes[0].Shots[0].RenderOutput)
	assert.Equal(t, "mock://render/shot_2.mp4", pc.Timeline.Scenes[1].Shots[0].RenderOutput)
}

func TestRenderStage_ShotFailureAborts(t *testing.T) {
	pc := testutil.NewProductionBuilder().
		Scene("scene_1", "opening").
		Shot("scene_1", "shot_1", 3.0).
		Shot("scene_1", "shot_2", 2.0).
		Build()

	renderer := render.NewMockRenderer()
	renderer.FailShot("shot_1", errors.New("provider unavailable"))

	err := NewRenderStage(renderer).Run(context.Background(), pc)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "shot_1")
	assert.Empty(t, pc.Timeline.Scenes[0].Shots[1].RenderOutput) // never reached
}

func TestRenderStage_RetryExhaustionSurfaces(t *testing.T) {
	pc := testutil.NewProductionBuilder().
		Scene("scene_1", "opening").
		Shot("scene_1", "shot_1", 3.0).
		Build()

	renderer := render.NewMockRenderer()
	renderer.FailShot("shot_1", errors.New("transient"))

	stage := NewRenderStage(renderer, func(o *StageOptions) {
		o.Retry = &retry.Policy{
			Enabled:         true,
			MaxRetries:      2,
			InitialDelay:    time.Millisecond,
			MaxDelay:        time.Millisecond,
			ExponentialBase: 2.0,
		}
	})

	err := stage.Run(context.Background(), pc)

	var exhausted *retry.ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 3, exhausted.Attempts)
}

func TestGenerativeStage_RetriesTransientModelFailures(t *testing.T) {
	pc := testutil.NewProductionBuilder().Build()

	calls := 0
	flaky := flakyModel{calls: &calls, failures: 2, response: planTwoScenes}
	stage := NewPlanningStage(flaky, func(o *StageOptions) {
		o.Retry = &retry.Policy{
			Enabled:         true,
			MaxRetries:      3,
			InitialDelay:    time.Millisecond,
			MaxDelay:        time.Millisecond,
			ExponentialBase: 2.0,
		}
	})

	require.NoError(t, stage.Run(context.Background(), pc))
	assert.Equal(t, 3, calls)
	assert.Len(t, pc.Timeline.Scenes, 2)
}

// flakyModel fails a fixed number of times before succeeding.
type flakyModel struct {
	calls    *int
	failures int
	response string
}

func (m flakyModel) Generate(context.Context, model.Request) (*model.Response, error) {
	*m.calls++
	if *m.calls <= m.failures {
		return nil, errors.New("model overloaded")
	}
	return &model.Response{Content: m.response, FinishReason: "stop"}, nil
}

func (m flakyModel) Info() model.Info { return model.Info{Name: "flaky", Provider: "mock"} }
