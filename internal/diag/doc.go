// Package diag defines the diagnostic model shared by every indexing phase.
//
// # Purpose
//
//   - Provide deterministic data structures that capture findings produced by
//     the frontend, the validator, the visibility resolver and the session.
//   - Offer light-weight utilities (Reporter, Bag) that let producers emit
//     diagnostics without coupling to storage or formatting.
//
// # Scope
//
// Package diag does not perform formatting beyond the single-line golden form,
// IO or CLI integration. Rendering lives in internal/diagfmt.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – Info (progress, fallback and indexing notes), Warning, Error.
//   - Code – compact numeric identifier (codes.go) with a stable string ID such
//     as SUB1003 or FBK2001.
//   - Message – short human text. Wording is not part of any contract.
//   - Primary – source.Location of the offending declaration, or NoLocation.
//   - Notes – optional secondary locations.
//
// # Emitting diagnostics
//
// Phases take a Reporter. ReportError/ReportWarning/ReportInfo build a
// diagnostic, WithNote adds context, Emit sends it once. BagReporter collects
// into a Bag; DedupReporter guarantees each distinct diagnostic is seen once even
// when the host delivers the same declaration in several passes.
package diag
