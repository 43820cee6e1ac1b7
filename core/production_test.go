package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProductionContext_Defaults(t *testing.T) {
	pc := NewProductionContext(GlobalStyle{VisualStyle: "anime"}, nil)

	assert.Equal(t, DefaultFPS, pc.Style.FPS)
	assert.Equal(t, DefaultResolution, pc.Style.Resolution)
	assert.NotNil(t, pc.Characters)
	assert.Empty(t, pc.Timeline.Scenes)
}

func TestBuildPromptContext_DeterministicCharacterOrder(t *testing.T) {
	style := GlobalStyle{VisualStyle: "anime", Lighting: "dramatic", ColorPalette: "cold blue", FPS: 24}
	pc := NewProductionContext(style, map[string]CharacterProfile{
		"villain": {Name: "Villain", Appearance: "tall", Costume: "armor", Personality: "cruel"},
		"hero":    {Name: "Hero", Appearance: "young, athletic", Costume: "black coat", Personality: "calm"},
	})

	got := pc.BuildPromptContext()
	want := "Style: anime, Lighting: dramatic, Color: cold blue, FPS: 24\n" +
		"Character Hero: young, athletic, wearing black coat, personality: calm\n" +
		"Character Villain: tall, wearing armor, personality: cruel"
	assert.Equal(t, want, got)
}

func TestBuildShotContext(t *testing.T) {
	pc := NewProductionContext(GlobalStyle{}, nil)
	pc.Timeline.Scenes = []*Scene{{
		ID:          "scene_1",
		Description: "opening",
		Shots: []*Shot{{
			ID:          "shot_1",
			Subject:     "Hero",
			Environment: "ruined city",
			Camera:      Camera{ShotType: "wide", Movement: "dolly in", Lens: "35mm", Angle: "eye-level"},
			Motion:      UndefinedMotion(),
		}},
	}}

	got := pc.BuildShotContext()
	assert.Contains(t, got, "Scene scene_1: opening")
	assert.Contains(t, got, "Shot shot_1: Hero in ruined city")
	assert.Contains(t, got, "Camera: wide, dolly in, 35mm, eye-level")
}

func TestSceneByID(t *testing.T) {
	pc := NewProductionContext(GlobalStyle{}, nil)
	pc.Timeline.Scenes = []*Scene{{ID: "scene_1"}, {ID: "scene_2"}}

	require.NotNil(t, pc.SceneByID("scene_2"))
	assert.Equal(t, "scene_2", pc.SceneByID("scene_2").ID)
	assert.Nil(t, pc.SceneByID("scene_99"))
}

func TestShotCount(t *testing.T) {
	pc := NewProductionContext(GlobalStyle{}, nil)
	pc.Timeline.Scenes = []*Scene{
		{ID: "a", Shots: []*Shot{{ID: "1"}, {ID: "2"}}},
		{ID: "b", Shots: []*Shot{{ID: "3"}}},
	}
	assert.Equal(t, 3, pc.ShotCount())
}

func TestUndefinedMotion(t *testing.T) {
	m := UndefinedMotion()
	assert.Equal(t, MotionUndefined, m.StartPose)
	assert.Equal(t, MotionUndefined, m.Action)
	assert.Equal(t, MotionUndefined, m.EndPose)
}
