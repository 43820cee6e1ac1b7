package pipeline

import (
	"context"

	"github.com/storymesh/storymesh/core"
	"github.com/storymesh/storymesh/model"
)

// Stage names as reported by Stage.Name and carried in stage errors.
const (
	StagePlanning   = "planning"
	StageStoryboard = "storyboard"
	StageMotion     = "motion"
	StageRender     = "render"
)

const planningPromptTemplate = `Given the following production context:

{{.Context}}

Generate a high-level scene plan.

Output JSON only in the following format:
{"scenes": [{"id": "scene_1", "description": "..."}]}`

const storyboardPromptTemplate = `Context:
{{.Context}}

For each scene, generate shot breakdowns.

Output JSON only:
{"shots": [{"scene_id": "scene_1", "shot_id": "shot_1", "duration": 3.0, "subject": "Hero", "environment": "ruined city", "camera": {"shot_type": "wide", "movement": "dolly in", "lens": "35mm", "angle": "eye-level"}}]}`

const motionPromptTemplate = `Shots:
{{.Context}}

Generate motion for each shot.

Output JSON only:
{"motions": [{"shot_id": "shot_1", "start_pose": "...", "action": "...", "end_pose": "..."}]}`

// planningPayload is the declared schema of the planning stage output.
type planningPayload struct {
	Scenes []scenePlan `json:"scenes"`
}

type scenePlan struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

// PlanningStage asks the model for a high-level scene plan and appends the
// returned scenes to the timeline.
type PlanningStage struct {
	generativeStage
}

// NewPlanningStage creates the planning stage bound to a model.
func NewPlanningStage(m model.Model, optFns ...func(o *StageOptions)) *PlanningStage {
	return &PlanningStage{generativeStage{
		name:     StagePlanning,
		system:   "You are a professional animation director. Your job is to plan animation scenes.",
		template: planningPromptTemplate,
		model:    m,
		opts:     resolveStageOptions(optFns),
	}}
}

// Name implements Stage.
func (s *PlanningStage) Name() string { return StagePlanning }

// Run implements Stage. Every listed scene is appended to the timeline in
// payload order. Scenes are never merged by id: a duplicate id yields two
// timeline entries.
func (s *PlanningStage) Run(ctx context.Context, pc *core.ProductionContext) error {
	content, err := s.generate(ctx, pc.BuildPromptContext())
	if err != nil {
		return err
	}

	var payload planningPayload
	if err := s.decode(content, &payload); err != nil {
		return err
	}

	for _, sc := range payload.Scenes {
		pc.Timeline.Scenes = append(pc.Timeline.Scenes, &core.Scene{ID: sc.ID, Description: sc.Description})
	}
	return nil
}

// storyboardPayload is the declared schema of the storyboard stage output.
type storyboardPayload struct {
	Shots []shotPlan `json:"shots"`
}

type shotPlan struct {
	SceneID     string      `json:"scene_id"`
	ShotID      string      `json:"shot_id"`
	Duration    float64     `json:"duration"`
	Subject     string      `json:"subject"`
	Environment string      `json:"environment"`
	Camera      core.Camera `json:"camera"`
}

// StoryboardStage breaks planned scenes into shots. Each shot names the
// scene it belongs to; naming a scene the planning stage never produced is
// a hard error.
type StoryboardStage struct {
	generativeStage
}

// NewStoryboardStage creates the storyboard stage bound to a model.
func NewStoryboardStage(m model.Model, optFns ...func(o *StageOptions)) *StoryboardStage {
	return &StoryboardStage{generativeStage{
		name:     StageStoryboard,
		system:   "You are a storyboard artist specialized in cinematic animation.",
		template: storyboardPromptTemplate,
		model:    m,
		opts:     resolveStageOptions(optFns),
	}}
}

// Name implements Stage.
func (s *StoryboardStage) Name() string { return StageStoryboard }

// Run implements Stage. Shots are appended to their scene in payload
// order, carrying placeholder motion values until the motion stage runs.
// An unknown scene_id aborts before the offending shot (or any later one)
// is attached.
func (s *StoryboardStage) Run(ctx context.Context, pc *core.ProductionContext) error {
	content, err := s.generate(ctx, pc.BuildPromptContext())
	if err != nil {
		return err
	}

	var payload storyboardPayload
	if err := s.decode(content, &payload); err != nil {
		return err
	}

	// One-time id -> scene lookup, built from the current timeline.
	scenes := make(map[string]*core.Scene, len(pc.Timeline.Scenes))
	for _, scene := range pc.Timeline.Scenes {
		scenes[scene.ID] = scene
	}

	for _, sp := range payload.Shots {
		scene, ok := scenes[sp.SceneID]
		if !ok {
			return &LookupError{Stage: StageStoryboard, Entity: "scene", ID: sp.SceneID}
		}
		scene.Shots = append(scene.Shots, &core.Shot{
			ID:          sp.ShotID,
			Duration:    sp.Duration,
			Subject:     sp.Subject,
			Environment: sp.Environment,
			Camera:      sp.Camera,
			Motion:      core.UndefinedMotion(),
		})
	}
	return nil
}

// motionPayload is the declared schema of the motion design stage output.
type motionPayload struct {
	Motions []motionPlan `json:"motions"`
}

type motionPlan struct {
	ShotID    string `json:"shot_id"`
	StartPose string `json:"start_pose"`
	Action    string `json:"action"`
	EndPose   string `json:"end_pose"`
}

// MotionStage designs character motion for every storyboarded shot.
type MotionStage struct {
	generativeStage
}

// NewMotionStage creates the motion design stage bound to a model.
func NewMotionStage(m model.Model, optFns ...func(o *StageOptions)) *MotionStage {
	return &MotionStage{generativeStage{
		name:     StageMotion,
		system:   "You are an animation motion designer. Design physically plausible character motion.",
		template: motionPromptTemplate,
		model:    m,
		opts:     resolveStageOptions(optFns),
	}}
}

// Name implements Stage.
func (s *MotionStage) Name() string { return StageMotion }

// Run implements Stage. Every shot scans the full motion list and takes
// the last entry matching its id, so duplicate shot_id entries resolve
// last-one-wins. Shots without a matching entry keep their placeholder
// motion.
func (s *MotionStage) Run(ctx context.Context, pc *core.ProductionContext) error {
	content, err := s.generate(ctx, pc.BuildShotContext())
	if err != nil {
		return err
	}

	var payload motionPayload
	if err := s.decode(content, &payload); err != nil {
		return err
	}

	for _, scene := range pc.Timeline.Scenes {
		for _, shot := range scene.Shots {
			for _, m := range payload.Motions {
				if m.ShotID == shot.ID {
					shot.Motion = core.Motion{StartPose: m.StartPose, Action: m.Action, EndPose: m.EndPose}
				}
			}
		}
	}
	return nil
}
