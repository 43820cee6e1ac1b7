// Package logging provides the minimal logging interface used across
// storymesh together with adapters for Go's structured logging.
//
// The Logger interface keeps the dependency surface tiny so hosts can plug
// any structured logger. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping *slog.Logger
//   - NoOpLogger for silent operation (testing, minimal setups)
//   - StudioLogger with domain helpers for stage, model and render records
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	studio := storymesh.New(func(o *storymesh.Options) { o.Logger = logger })
package logging
