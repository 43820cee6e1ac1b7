// Package pipeline implements the ordered stage executor that incrementally
// builds a shared ProductionContext. A Pipeline runs its stages strictly in
// sequence over one exclusively-owned context; the first stage failure
// halts the run.
//
// Two stage families exist. Generative stages (planning, storyboard,
// motion design) build a prompt from the context, call a model.Model
// through the retry policy, validate the JSON payload against their
// declared schema and apply a structured delta. The render stage is
// side-effecting: it walks every shot of the timeline and records the
// locator returned by the render capability.
package pipeline
