// Package fieldkit is a toolkit for working with forward solutions
// (leadfields): the matrices that map hypothesized neural source currents
// to predicted sensor measurements.
//
// 🚀 What is fieldkit?
//
//	A pure-Go library covering the forward-model half of source analysis:
//		• Solution model: gain matrix + source-space geometry + orientation metadata
//		• Orientation conversion: free ↔ surface-aligned ↔ fixed (with patch statistics)
//		• Restriction: cut a solution down to a label or an estimate's active vertices
//		• Averaging: weighted combination of solutions over identical geometry
//		• Application: project source time courses into sensor space (evoked or raw)
//		• Priors: depth and orientation weighting for inverse solvers
//		• I/O: a tagged binary container plus a CBOR interchange container
//		• Import: FieldTrip-style recording containers (raw / epoched / averaged)
//
// ✨ Why choose fieldkit?
//
//   - Deterministic numerics – fixed loop orders, no hidden randomness
//   - Explicit diagnostics – advisory conditions go to a sink, never panic
//   - Typed model – no string-keyed records; every field has a static type
//   - Pure Go – no cgo, small dependency set
//
// The packages:
//
//	dense/     — flat row-major float64 matrices and the kernels the model needs
//	diag/      — advisory diagnostics: severities, codes, sinks (list, zap)
//	source/    — source spaces, labels (YAML on disk), source estimates
//	meas/      — channel metadata, transforms, evoked/raw/epoched containers
//	forward/   — the Solution type and convert/restrict/average/apply/priors
//	fwdio/     — binary and CBOR persistence for solutions
//	fieldtrip/ — import adapter for decoded FieldTrip recording containers
//
// Start with forward.Convert and the examples in forward/example_test.go.
package fieldkit
