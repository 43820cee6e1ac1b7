// Package core provides the foundational domain types shared by the
// storymesh router and pipeline. It defines:
//
//   - WorkerKind (closed set of pipeline roles)
//   - Task (unit of work routed between workers)
//   - ProductionContext and its constituents (style, characters, timeline,
//     scenes, shots, camera and motion descriptors)
//
// The package intentionally carries no behavior beyond prompt-context
// construction; routing, stage execution and resilience live in their own
// packages so that custom hosts can depend on the types alone.
package core
