package core

// WorkerKind identifies a role in the production pipeline. The set is
// closed: routing rules match exhaustively over these values and
// WorkerTerminal has no outbound transitions.
type WorkerKind string

const (
	// WorkerNone marks the entry point of a run (no current worker yet).
	WorkerNone WorkerKind = ""
	// WorkerPlanner produces the high-level scene plan.
	WorkerPlanner WorkerKind = "planner"
	// WorkerDirector selects the execution worker best suited for a task.
	WorkerDirector WorkerKind = "director"
	// WorkerAnimation executes animation-domain tasks.
	WorkerAnimation WorkerKind = "animation"
	// WorkerFilm executes film/cinematic-domain tasks.
	WorkerFilm WorkerKind = "film"
	// WorkerGame executes game-domain tasks.
	WorkerGame WorkerKind = "game"
	// WorkerRender turns executed shots into rendered output.
	WorkerRender WorkerKind = "render"
	// WorkerTerminal ends the pipeline; it never routes anywhere.
	WorkerTerminal WorkerKind = "terminal"
)

// Valid reports whether k is one of the known worker kinds. WorkerNone is
// not a worker, only a routing entry marker, and is therefore invalid.
func (k WorkerKind) Valid() bool {
	switch k {
	case WorkerPlanner, WorkerDirector, WorkerAnimation, WorkerFilm, WorkerGame, WorkerRender, WorkerTerminal:
		return true
	default:
		return false
	}
}

// ControlOnly reports whether k is a control worker that never competes in
// confidence scoring. Only execution workers (animation, film, game) score.
func (k WorkerKind) ControlOnly() bool {
	switch k {
	case WorkerPlanner, WorkerDirector, WorkerRender, WorkerTerminal:
		return true
	default:
		return false
	}
}

// String returns the wire name of the worker kind.
func (k WorkerKind) String() string {
	if k == WorkerNone {
		return "none"
	}
	return string(k)
}
