// Package router implements the confidence-scored state machine that
// decides which worker handles a task next. Transitions are fixed
// (entry -> planner -> director -> execution worker -> render -> review
// outcome); the director step is the only dynamic one, ranking registered
// execution workers by self-assessed confidence and falling back to a safe
// worker when no score clears the threshold. Every decision carries a
// human-readable reason so routing stays explainable from the decision
// alone.
package router
