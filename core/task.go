package core

import "github.com/google/uuid"

// Task is the unit of work routed between workers. It is created by the
// host and treated as read-only by the router; ID is unique per in-flight
// task.
type Task struct {
	ID      string         `json:"id"`
	Kind    string         `json:"kind"` // animation / film / game / mixed
	Payload map[string]any `json:"payload"`
	Stage   string         `json:"stage,omitempty"` // planning / execution / render / review
}

// NewTask creates a Task with a generated UUID and the given kind/payload.
func NewTask(kind string, payload map[string]any) *Task {
	if payload == nil {
		payload = map[string]any{}
	}
	return &Task{ID: uuid.NewString(), Kind: kind, Payload: payload}
}

// Prompt returns the "prompt" payload entry, or "" when absent or not a
// string. Scoring functions key off this value.
func (t *Task) Prompt() string {
	if t == nil || t.Payload == nil {
		return ""
	}
	s, _ := t.Payload["prompt"].(string)
	return s
}
