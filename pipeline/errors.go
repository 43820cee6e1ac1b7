package pipeline

import "fmt"

// ParseError reports a generative stage whose model output was malformed
// or did not conform to the stage's declared payload schema. It aborts the
// stage and the pipeline; no partial delta is applied.
type ParseError struct {
	Stage string
	Err   error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("stage %s: payload parse failed: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying parse failure.
func (e *ParseError) Unwrap() error { return e.Err }

// LookupError reports a stage delta referencing an entity that does not
// exist yet (e.g. an unknown scene id). It aborts the stage and the
// pipeline.
type LookupError struct {
	Stage  string
	Entity string
	ID     string
}

// Error implements the error interface.
func (e *LookupError) Error() string {
	return fmt.Sprintf("stage %s: unknown %s %q", e.Stage, e.Entity, e.ID)
}
