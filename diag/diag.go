// SPDX-License-Identifier: MIT

package diag

import "fmt"

// Severity classifies a diagnostic.
//
//   - Info    — informational; normal operation.
//   - Warning — a best-effort fallback was taken; results may need review.
type Severity int

const (
	// Info marks informational diagnostics.
	Info Severity = iota

	// Warning marks advisory conditions with a best-effort fallback.
	Warning
)

// String returns the lowercase severity name.
func (s Severity) String() string {
	if s == Warning {
		return "warning"
	}

	return "info"
}

// Code identifies an advisory condition. Codes are stable API: tests and
// callers match on them, never on message text.
type Code string

const (
	// CodeBadExtension: a container filename does not carry a recognized
	// extension; the operation proceeds anyway.
	CodeBadExtension Code = "bad-extension"

	// CodeStoredOriginal: a converted forward solution is stored on disk in
	// its original orientation; readers must reconvert after loading.
	CodeStoredOriginal Code = "stored-original"

	// CodeOnlyPositive: source data contains only non-negative values where
	// a signed dipole current is expected.
	CodeOnlyPositive Code = "only-positive"

	// CodeLargeAmplitude: projected sensor amplitudes are implausibly large,
	// usually an orientation or unit mismatch.
	CodeLargeAmplitude Code = "large-amplitude"

	// CodeNoInfo: no sensor metadata was supplied; best-effort metadata is
	// synthesized from the file's own channel labels.
	CodeNoInfo Code = "no-info"

	// CodeMultipleRates: sampling-rate values vary within one file; a single
	// representative rate is chosen.
	CodeMultipleRates Code = "multiple-rates"

	// CodeMissingChannels: channels named by the file cannot be found in the
	// supplied metadata.
	CodeMissingChannels Code = "missing-channels"
)

// Diagnostic is one advisory event: what happened and how severe it is.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
}

// Sink receives diagnostics. Implementations must be safe for sequential
// use from a single goroutine; fieldkit operations are single-threaded.
type Sink interface {
	Emit(d Diagnostic)
}

// Warnf emits a Warning-severity diagnostic to sink, formatting the
// message printf-style. A nil sink discards.
func Warnf(sink Sink, code Code, format string, args ...any) {
	if sink == nil {
		return
	}
	sink.Emit(Diagnostic{Severity: Warning, Code: code, Message: fmt.Sprintf(format, args...)})
}
