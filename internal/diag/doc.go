// Package diag defines the diagnostic model shared by all pipeline phases.
//
// # Purpose
//
//   - Provide deterministic, serialisable records for findings produced by the
//     lexer, the parser, the declaration index and the call resolver.
//   - Offer light-weight utilities (Reporter, Bag) that let producers emit
//     diagnostics without coupling to storage or formatting.
//
// # Scope
//
// Package diag does not perform formatting, IO or CLI integration. Rendering
// lives in internal/diagfmt; orchestration lives in internal/driver.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – Info, Warning or Error (severity.go).
//   - Code – numeric identifier with a stable string form (codes.go). Ranges:
//     LEX 1000+, SYN 2000+, SEM 3000+, PRJ 5000+.
//   - Message – short, actionable text.
//   - Primary – the span the finding points to.
//   - Notes – secondary spans, e.g. "previous declaration" or the signature of
//     a candidate that was not applicable.
//
// # Emitting diagnostics
//
// Producers take a Reporter and build diagnostics with ReportError /
// ReportWarning / ReportInfo, chaining WithNote before Emit. BagReporter
// collects into a Bag which supports sorting, deduplication and counting.
//
// The resolver memoizes descriptor diagnostics and replays them (Replay) into
// the reporter of the file that owns the declaration, so each finding is
// reported exactly once no matter how many call sites trigger the computation.
package diag
