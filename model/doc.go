// Package model defines the unified generation abstraction consumed by
// pipeline stages: a normalized Message/Request/Response shape plus the
// Model interface implemented by provider adapters (see the anthropic,
// openai and gemini subpackages). MockModel offers deterministic canned
// responses for
// tests and examples.
package model
