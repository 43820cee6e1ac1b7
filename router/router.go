package router

import (
	"fmt"
	"sort"

	"github.com/storymesh/storymesh/core"
	"github.com/storymesh/storymesh/logging"
)

// ReviewResultKey is the side-context key consulted after the render
// worker; its value decides whether the run ends, revises or redesigns.
const ReviewResultKey = "review_result"

// Review outcomes understood after the render worker.
const (
	ReviewAccept   = "accept"
	ReviewRevise   = "revise"
	ReviewRedesign = "redesign"
)

// RouteResult is one worker's self-assessed fitness for a task. Director
// decisions carry their ranked results so hosts can inspect how the
// selection, or the fallback, came about.
type RouteResult struct {
	Worker     core.WorkerKind `json:"worker"`
	Confidence float64         `json:"confidence"`
	Reason     string          `json:"reason"`
	Fallback   bool            `json:"fallback"`
}

// RoutingDecision is the router output: where to send the task next. Next
// is never empty; its first element is the primary target. Scores carries
// the ranked worker results for director decisions (empty for the fixed
// transitions); when the fallback fired, the selected entry has Fallback
// set.
type RoutingDecision struct {
	Next   []core.WorkerKind `json:"next"`
	Reason string            `json:"reason"`
	Scores []RouteResult     `json:"scores,omitempty"`
}

// String renders the decision for logs and debugging.
func (d RoutingDecision) String() string {
	names := make([]string, len(d.Next))
	for i, w := range d.Next {
		names[i] = w.String()
	}
	return fmt.Sprintf("<RoutingDecision -> %v | %s>", names, d.Reason)
}

// Scorer reports a worker's confidence in [0,1] for a task together with a
// reason. Implementations registered by hosts may fail; the router
// isolates those failures.
type Scorer interface {
	Score(task *core.Task, side map[string]any) (confidence float64, reason string, err error)
}

// ScorerFunc adapts a plain function to the Scorer interface.
type ScorerFunc func(task *core.Task, side map[string]any) (float64, string, error)

// Score implements Scorer.
func (f ScorerFunc) Score(task *core.Task, side map[string]any) (float64, string, error) {
	return f(task, side)
}

// Options configures Router construction.
type Options struct {
	// ConfidenceThreshold is the minimum top score required for the
	// director to select an execution worker.
	ConfidenceThreshold float64
	// Fallback receives the task when no scorer clears the threshold. It
	// must be a valid non-terminal worker kind.
	Fallback core.WorkerKind
	// Logger records routing decisions; defaults to NoOpLogger.
	Logger logging.Logger
}

// Router is the central routing brain with confidence scoring and
// fallback. Registration is not safe for concurrent use with Route;
// register all scorers up front and treat the router as read-only shared
// configuration afterwards.
type Router struct {
	threshold float64
	fallback  core.WorkerKind
	logger    logging.Logger
	scorers   map[core.WorkerKind]Scorer
	order     []core.WorkerKind // registration order, for deterministic tie-breaks
}

// New creates a Router. It fails fast when the fallback worker is not a
// valid worker kind or is the terminal worker: routing to a misconfigured
// fallback must be rejected at setup time, not at route time.
func New(optFns ...func(o *Options)) (*Router, error) {
	opts := Options{
		ConfidenceThreshold: 0.6,
		Fallback:            core.WorkerPlanner,
		Logger:              logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if !opts.Fallback.Valid() || opts.Fallback == core.WorkerTerminal {
		return nil, fmt.Errorf("invalid fallback worker %q", opts.Fallback)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	return &Router{
		threshold: opts.ConfidenceThreshold,
		fallback:  opts.Fallback,
		logger:    opts.Logger,
		scorers:   map[core.WorkerKind]Scorer{},
	}, nil
}

// Register binds a scoring function to a worker kind. Re-registering a
// kind replaces its scorer but keeps its original position in the
// tie-break order.
func (r *Router) Register(kind core.WorkerKind, scorer Scorer) {
	if _, exists := r.scorers[kind]; !exists {
		r.order = append(r.order, kind)
	}
	r.scorers[kind] = scorer
}

// Route decides the next worker(s) for the task. It never fails: scorer
// errors are absorbed into zero-confidence results and unknown states end
// the pipeline.
func (r *Router) Route(current core.WorkerKind, task *core.Task, side map[string]any) RoutingDecision {
	if side == nil {
		side = map[string]any{}
	}

	var decision RoutingDecision
	switch current {
	case core.WorkerNone:
		decision = RoutingDecision{Next: []core.WorkerKind{core.WorkerPlanner}, Reason: "new task entry"}
	case core.WorkerPlanner:
		decision = RoutingDecision{Next: []core.WorkerKind{core.WorkerDirector}, Reason: "planner output ready"}
	case core.WorkerDirector:
		decision = r.routeFromDirector(task, side)
	case core.WorkerAnimation, core.WorkerFilm, core.WorkerGame:
		decision = RoutingDecision{Next: []core.WorkerKind{core.WorkerRender}, Reason: "execution output requires rendering"}
	case core.WorkerRender:
		decision = r.routeFromRender(side)
	default:
		decision = RoutingDecision{Next: []core.WorkerKind{core.WorkerTerminal}, Reason: "no matching routing rule"}
	}

	r.logDecision(current, decision)
	return decision
}

// routeFromDirector ranks execution workers by confidence and applies the
// fallback when the best score is below the threshold.
func (r *Router) routeFromDirector(task *core.Task, side map[string]any) RoutingDecision {
	results := r.scoreWorkers(task, side)
	if len(results) == 0 {
		return RoutingDecision{
			Next:   []core.WorkerKind{r.fallback},
			Reason: "no workers registered",
		}
	}

	// Stable sort keeps registration order for equal confidences.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Confidence > results[j].Confidence
	})
	best := results[0]

	if best.Confidence < r.threshold {
		reason := fmt.Sprintf(
			"confidence %.2f below threshold %.2f; falling back to %q; original reason: %s",
			best.Confidence, r.threshold, r.fallback.String(), best.Reason,
		)
		return RoutingDecision{
			Next:   []core.WorkerKind{r.fallback},
			Reason: reason,
			Scores: append(results, RouteResult{
				Worker:     r.fallback,
				Confidence: best.Confidence,
				Reason:     reason,
				Fallback:   true,
			}),
		}
	}

	return RoutingDecision{
		Next:   []core.WorkerKind{best.Worker},
		Reason: fmt.Sprintf("director selected %s | %s", best.Worker, best.Reason),
		Scores: results,
	}
}

// scoreWorkers invokes every registered execution worker's scorer in
// registration order. A failing scorer is recorded with confidence 0.0 and
// a descriptive reason instead of propagating; one bad scorer must not
// break routing.
func (r *Router) scoreWorkers(task *core.Task, side map[string]any) []RouteResult {
	results := make([]RouteResult, 0, len(r.order))
	for _, kind := range r.order {
		if kind.ControlOnly() {
			continue // only execution workers compete
		}
		confidence, reason, err := r.safeScore(r.scorers[kind], task, side)
		if err != nil {
			confidence, reason = 0.0, fmt.Sprintf("scoring error: %v", err)
		}
		results = append(results, RouteResult{Worker: kind, Confidence: confidence, Reason: reason})
	}
	return results
}

// safeScore shields Route from scorer panics as well as returned errors.
func (r *Router) safeScore(s Scorer, task *core.Task, side map[string]any) (confidence float64, reason string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			confidence, reason, err = 0, "", fmt.Errorf("scorer panic: %v", rec)
		}
	}()
	return s.Score(task, side)
}

// routeFromRender maps the review outcome onto the next worker. A missing
// review result counts as acceptance.
func (r *Router) routeFromRender(side map[string]any) RoutingDecision {
	review := ReviewAccept
	if v, ok := side[ReviewResultKey]; ok {
		review, _ = v.(string)
	}

	switch review {
	case ReviewAccept:
		return RoutingDecision{Next: []core.WorkerKind{core.WorkerTerminal}, Reason: "render accepted, pipeline complete"}
	case ReviewRevise:
		return RoutingDecision{Next: []core.WorkerKind{core.WorkerDirector}, Reason: "render revision requested"}
	case ReviewRedesign:
		return RoutingDecision{Next: []core.WorkerKind{core.WorkerPlanner}, Reason: "major redesign required"}
	default:
		return RoutingDecision{Next: []core.WorkerKind{core.WorkerTerminal}, Reason: "unknown review result"}
	}
}

// routingRecorder is the optional logger upgrade for structured routing
// records. StudioLogger implements it; plain Loggers fall back to a
// generic Info call.
type routingRecorder interface {
	LogRoutingDecision(current string, next []string, reason string)
}

func (r *Router) logDecision(current core.WorkerKind, d RoutingDecision) {
	next := make([]string, len(d.Next))
	for i, w := range d.Next {
		next[i] = w.String()
	}
	if rec, ok := r.logger.(routingRecorder); ok {
		rec.LogRoutingDecision(current.String(), next, d.Reason)
		return
	}
	r.logger.Info("routing decision", "current", current.String(), "next", next, "reason", d.Reason)
}
