// Package diag is the advisory side channel of fieldkit.
//
// Numerical transforms in this module never use warnings as control flow:
// a condition is either an error (the operation stops) or a Diagnostic
// (the operation continues with a documented fallback). Diagnostics are
// delivered to a Sink chosen by the caller:
//
//   - Collector — accumulates diagnostics in order; tests assert on it
//   - ZapSink   — routes diagnostics into a zap logger
//   - Discard   — drops everything (the default for library entry points)
//
// Every advisory condition carries a stable Code so callers can branch on
// identity rather than message text.
package diag
