package testutil

import (
	"github.com/storymesh/storymesh/core"
)

// ProductionBuilder helps construct production contexts with fluent
// chaining for tests. Example:
//
//	pc := NewProductionBuilder().Character("hero", "young, athletic").
//		Scene("scene_1", "opening").Shot("scene_1", "shot_1", 3.0).Build()
type ProductionBuilder struct {
	style      core.GlobalStyle
	characters map[string]core.CharacterProfile
	scenes     []*core.Scene
}

// NewProductionBuilder creates a builder with a neutral cinematic style.
// Use chainable methods (Style, Character, Scene, Shot) then call Build.
func NewProductionBuilder() *ProductionBuilder {
	return &ProductionBuilder{
		style: core.GlobalStyle{
			VisualStyle:  "anime cinematic",
			Lighting:     "dramatic",
			ColorPalette: "cold blue",
		},
		characters: map[string]core.CharacterProfile{},
	}
}

// Style overrides the global style (chainable).
func (b *ProductionBuilder) Style(style core.GlobalStyle) *ProductionBuilder {
	b.style = style
	return b
}

// Character registers a character profile under the given name (chainable).
func (b *ProductionBuilder) Character(name, appearance string) *ProductionBuilder {
	b.characters[name] = core.CharacterProfile{
		Name:        name,
		Appearance:  appearance,
		Costume:     "black coat",
		Personality: "calm, determined",
	}
	return b
}

// Scene appends a scene to the timeline (chainable).
func (b *ProductionBuilder) Scene(id, description string) *ProductionBuilder {
	b.scenes = append(b.scenes, &core.Scene{ID: id, Description: description})
	return b
}

// Shot appends a shot with placeholder motion to the named scene
// (chainable). The scene must have been added first.
func (b *ProductionBuilder) Shot(sceneID, shotID string, duration float64) *ProductionBuilder {
	for _, scene := range b.scenes {
		if scene.ID == sceneID {
			scene.Shots = append(scene.Shots, &core.Shot{
				ID:          shotID,
				Duration:    duration,
				Subject:     "Hero",
				Environment: "ruined city",
				Camera:      core.Camera{ShotType: "wide", Movement: "dolly in", Lens: "35mm", Angle: "eye-level"},
				Motion:      core.UndefinedMotion(),
			})
			return b
		}
	}
	return b
}

// Build returns a *core.ProductionContext with the configured timeline.
func (b *ProductionBuilder) Build() *core.ProductionContext {
	pc := core.NewProductionContext(b.style, b.characters)
	pc.Timeline.Scenes = append(pc.Timeline.Scenes, b.scenes...)
	return pc
}

// NewAnimationTask returns the canonical routing test task.
func NewAnimationTask(prompt string) *core.Task {
	return &core.Task{
		ID:      "task_001",
		Kind:    "animation",
		Payload: map[string]any{"prompt": prompt},
	}
}
