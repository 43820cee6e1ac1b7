package router

import (
	"strings"

	"github.com/storymesh/storymesh/core"
)

// KeywordScorer scores a task by the fraction of its keywords appearing in
// the task prompt, yielding a confidence in [0,1].
type KeywordScorer struct {
	Keywords []string
	Reason   string
}

// Score implements Scorer. The prompt is matched case-insensitively; the
// confidence is matches/len(Keywords).
func (s *KeywordScorer) Score(task *core.Task, _ map[string]any) (float64, string, error) {
	prompt := strings.ToLower(task.Prompt())
	matches := 0
	for _, k := range s.Keywords {
		if strings.Contains(prompt, k) {
			matches++
		}
	}
	if len(s.Keywords) == 0 {
		return 0, s.Reason, nil
	}
	return float64(matches) / float64(len(s.Keywords)), s.Reason, nil
}

// NewAnimationScorer returns the built-in scorer for the animation worker.
func NewAnimationScorer() *KeywordScorer {
	return &KeywordScorer{
		Keywords: []string{
			"animation", "animated", "character", "motion",
			"pose", "rig", "keyframe", "movement",
		},
		Reason: "animation-related intent detected",
	}
}

// NewFilmScorer returns the built-in scorer for the film worker.
func NewFilmScorer() *KeywordScorer {
	return &KeywordScorer{
		Keywords: []string{
			"film", "cinematic", "camera", "shot",
			"lighting", "scene", "storyboard", "montage",
		},
		Reason: "cinematic / film language detected",
	}
}

// NewGameScorer returns the built-in scorer for the game worker.
func NewGameScorer() *KeywordScorer {
	return &KeywordScorer{
		Keywords: []string{
			"game", "npc", "quest", "combat",
			"level", "interaction", "player", "skill",
		},
		Reason: "game mechanics and interaction detected",
	}
}
