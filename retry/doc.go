// Package retry implements the uniform retry/backoff policy applied to all
// external calls made by storymesh components (model generation, shot
// rendering). A Policy is stateless configuration: it can be shared across
// callers and wraps individual operations via Do and DoValue.
//
// Backoff is exponential with a cap: Delay(attempt) is
// InitialDelay * ExponentialBase^attempt, truncated to MaxDelay. A disabled
// policy is a pure passthrough and a non-retryable failure propagates
// immediately without consuming a retry.
package retry
