// Package diag defines the core diagnostic model shared by all pipeline phases.
//
// # Purpose
//
//   - Provide deterministic, serialisable data structures that capture findings
//     produced by the MIR reader, verifier and analysis passes.
//   - Offer light-weight utilities (Reporter, Bag) that let producers emit
//     diagnostics without coupling to concrete storage or formatting layers.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity – tri-level enum (Info, Warning, Error) defined in severity.go.
//   - Code – compact numeric identifier (see codes.go) with stable string form.
//   - Message – human oriented text; keep it short and actionable.
//   - Primary span – the canonical source.Span pointing to the issue.
//   - Notes – optional secondary spans/messages for additional context.
//
// Notes should be used sparingly: each note must add new context (e.g. “value
// declared here”) rather than repeating the diagnostic message.
//
// # Emitting diagnostics
//
// Phases should use a diag.Reporter to decouple emission from storage. A pass
// constructs a ReportBuilder via NewReportBuilder (or the helper functions
// ReportError/ReportWarning/ReportInfo), chains WithNote as needed and calls
// Emit. When no additional metadata is needed, phases may call
// Reporter.Report(...) directly. For convenience, diag.BagReporter aggregates
// diagnostics into a Bag.
//
// A Bag is not safe for concurrent writers; callers that fan work out across
// goroutines give each worker its own Bag and merge the results in a
// deterministic order afterwards.
//
// Package diag performs no formatting or IO. Rendering lives in
// internal/diagfmt, orchestration in internal/driver.
package diag
