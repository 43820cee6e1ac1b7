// Package render defines the per-shot render capability consumed by the
// pipeline's render stage, plus HTTP adapters for hosted video generation
// providers (Sora, Runway, Pika style APIs) and a MockRenderer for tests
// and examples.
package render
