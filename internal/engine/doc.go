// Package engine provides the core types for resonant accumulation runs.
//
// The package defines the shared vocabulary used by the rest of the
// repository:
//
//   - [Sample]: one instant of a run (stored energy, circulation, decoupling)
//   - [Trajectory]: the ordered, immutable output of a completed run
//   - [RunConfig]: per-run integration and decoupling parameters
//   - [Mode]: continuous vs impulse excitation
//   - [Observer]: per-step hook for downstream instrumentation
//
// # Error Taxonomy
//
// Four sentinel errors classify every failure in the engine:
// [ErrInvalidParameter] and [ErrNotFound] are fatal to a whole sweep and are
// raised before any run starts; [ErrOutOfRange] and [ErrUnstable] are fatal
// to a single run only. Use errors.Is against the sentinels; per-run
// failures inside a sweep arrive wrapped in [RunError].
package engine
