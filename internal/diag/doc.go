// Package diag defines the diagnostic model shared by the loader, the verifier
// and the renderers.
//
// # Purpose
//
//   - Provide deterministic, serialisable records of findings produced while
//     loading IR documents and verifying ownership.
//   - Offer light-weight utilities (Reporter, Bag) that let producers emit
//     diagnostics without coupling to storage or formatting.
//
// # Scope
//
// Package diag does not perform formatting beyond the single-line short form,
// IO or CLI integration. Rendering lives in internal/diagfmt, orchestration in
// internal/driver.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – Info, Warning, Error.
//   - Code – numeric identifier with a stable string form (IR1xxx for malformed
//     IR, OWN3xxx for ownership discipline, IO4xxx for file access).
//   - Message – short human text.
//   - Primary – the source.Loc of the offending statement.
//   - Notes – secondary locations, e.g. “value moved here”.
//
// Bags keep insertion order. The verifier reports violations in discovery
// order and consumers rely on that, so nothing in this package reorders items.
package diag
