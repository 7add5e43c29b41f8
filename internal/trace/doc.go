// Package trace records what the checker is doing while it runs.
//
// Tracing is off by default and is enabled from the command line:
//
//	ownck check --trace-level=detail --trace-out=check.ndjson ./ir
//
// # Tracers
//
//   - Nop: no-op tracer used when tracing is disabled
//   - StreamTracer: writes every event as it arrives (file or stderr)
//   - RingTracer: keeps the last N events in memory for dumps on failure
//   - MultiTracer: fans out to several tracers
//
// # Levels and scopes
//
// Every event carries a Scope. The level decides which scopes are kept:
//
//   - LevelPhase: driver boundaries (load, check, render)
//   - LevelDetail: plus one span per checked file
//   - LevelDebug: plus every verifier event (borrow, move, write, drop)
//
// All events of one CLI invocation share a session id so that traces from
// parallel workers or repeated watch runs can be told apart.
package trace
