package core

import (
	"fmt"
	"sort"
	"strings"
)

// GlobalStyle captures the shared creative parameters of a run. It is set
// once when the ProductionContext is created and never mutated by stages.
type GlobalStyle struct {
	VisualStyle  string `json:"visual_style"`  // anime, cinematic, realistic
	Lighting     string `json:"lighting"`      // low-key, soft, dramatic
	ColorPalette string `json:"color_palette"` // cold blue, warm orange
	FPS          int    `json:"fps"`
	Resolution   string `json:"resolution"`
}

// DefaultFPS and DefaultResolution are applied by NewProductionContext when
// the style leaves them unset.
const (
	DefaultFPS        = 24
	DefaultResolution = "1920x1080"
)

// ToPrompt renders the style as a prompt fragment.
func (s GlobalStyle) ToPrompt() string {
	return fmt.Sprintf("Style: %s, Lighting: %s, Color: %s, FPS: %d",
		s.VisualStyle, s.Lighting, s.ColorPalette, s.FPS)
}

// CharacterProfile describes a recurring character. Immutable once set for
// a run.
type CharacterProfile struct {
	Name        string `json:"name"`
	Appearance  string `json:"appearance"`
	Costume     string `json:"costume"`
	Personality string `json:"personality"`
}

// ToPrompt renders the character as a prompt fragment.
func (c CharacterProfile) ToPrompt() string {
	return fmt.Sprintf("Character %s: %s, wearing %s, personality: %s",
		c.Name, c.Appearance, c.Costume, c.Personality)
}

// Camera describes how a single shot is framed.
type Camera struct {
	ShotType string `json:"shot_type"` // close-up, medium, wide
	Movement string `json:"movement"`  // pan, dolly, static
	Lens     string `json:"lens"`      // 35mm, 50mm
	Angle    string `json:"angle"`     // high, low, eye-level
}

// ToPrompt renders the camera setup as a prompt fragment.
func (c Camera) ToPrompt() string {
	return fmt.Sprintf("Camera: %s, %s, %s, %s", c.ShotType, c.Movement, c.Lens, c.Angle)
}

// MotionUndefined is the placeholder value carried by shots whose motion
// has not been designed yet.
const MotionUndefined = "undefined"

// Motion describes character movement within a shot.
type Motion struct {
	StartPose string `json:"start_pose"`
	Action    string `json:"action"`
	EndPose   string `json:"end_pose"`
}

// UndefinedMotion returns the placeholder motion assigned to freshly
// storyboarded shots pending the motion-design stage.
func UndefinedMotion() Motion {
	return Motion{StartPose: MotionUndefined, Action: MotionUndefined, EndPose: MotionUndefined}
}

// ToPrompt renders the motion as a prompt fragment.
func (m Motion) ToPrompt() string {
	return fmt.Sprintf("Motion from %s, performing %s, ending at %s",
		m.StartPose, m.Action, m.EndPose)
}

// Shot is the atomic renderable unit. ID is unique within the owning
// Scene. RenderOutput holds the locator returned by the render capability
// once the render stage has run.
type Shot struct {
	ID           string  `json:"id"`
	Duration     float64 `json:"duration"`
	Subject      string  `json:"subject"`
	Environment  string  `json:"environment"`
	Camera       Camera  `json:"camera"`
	Motion       Motion  `json:"motion"`
	RenderOutput string  `json:"render_output,omitempty"`
}

// ToPrompt renders the full shot description as a prompt fragment.
func (s *Shot) ToPrompt() string {
	return fmt.Sprintf("Shot %s: %s in %s. %s. %s.",
		s.ID, s.Subject, s.Environment, s.Camera.ToPrompt(), s.Motion.ToPrompt())
}

// Scene is an ordered group of shots. ID is unique within the Timeline.
type Scene struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Shots       []*Shot `json:"shots"`
}

// Timeline is the ordered sequence of scenes; scene order is creation
// order.
type Timeline struct {
	Scenes []*Scene `json:"scenes"`
}

// ProductionContext is the aggregate state threaded through pipeline
// stages. It is owned exclusively by one pipeline run: stages mutate it in
// place and must never share it across concurrent runs.
type ProductionContext struct {
	Style      GlobalStyle                 `json:"style"`
	Characters map[string]CharacterProfile `json:"characters"`
	Timeline   Timeline                    `json:"timeline"`
}

// NewProductionContext creates a context with the given style and
// characters, applying default fps/resolution when unset.
func NewProductionContext(style GlobalStyle, characters map[string]CharacterProfile) *ProductionContext {
	if style.FPS == 0 {
		style.FPS = DefaultFPS
	}
	if style.Resolution == "" {
		style.Resolution = DefaultResolution
	}
	if characters == nil {
		characters = map[string]CharacterProfile{}
	}
	return &ProductionContext{Style: style, Characters: characters}
}

// BuildPromptContext renders the style plus every character profile as the
// shared prompt preamble consumed by generative stages. Characters are
// emitted in name order so prompts are deterministic.
func (p *ProductionContext) BuildPromptContext() string {
	parts := []string{p.Style.ToPrompt()}
	for _, name := range sortedKeys(p.Characters) {
		parts = append(parts, p.Characters[name].ToPrompt())
	}
	return strings.Join(parts, "\n")
}

// BuildShotContext renders every shot of the current timeline, scene by
// scene, as the prompt input to shot-level stages.
func (p *ProductionContext) BuildShotContext() string {
	var parts []string
	for _, scene := range p.Timeline.Scenes {
		parts = append(parts, fmt.Sprintf("Scene %s: %s", scene.ID, scene.Description))
		for _, shot := range scene.Shots {
			parts = append(parts, shot.ToPrompt())
		}
	}
	return strings.Join(parts, "\n")
}

// SceneByID returns the first scene with the given id, or nil.
func (p *ProductionContext) SceneByID(id string) *Scene {
	for _, scene := range p.Timeline.Scenes {
		if scene.ID == id {
			return scene
		}
	}
	return nil
}

// ShotCount returns the total number of shots across all scenes.
func (p *ProductionContext) ShotCount() int {
	n := 0
	for _, scene := range p.Timeline.Scenes {
		n += len(scene.Shots)
	}
	return n
}

func sortedKeys(m map[string]CharacterProfile) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
