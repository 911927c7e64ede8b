// Package dense provides the flat, row-major float64 matrix the forward
// model is built on, together with the small set of kernels it needs:
// multiplication, in-place scaling and accumulation, row/column selection,
// and row/column reductions.
//
// Gain matrices are tall-ish and dense (hundreds of sensor rows, up to a
// few thousand source-component columns), so everything here is a single
// contiguous slice with deterministic fixed-order loops. There is no
// sparse variant and no interface indirection: *Dense is the only matrix
// type in this module.
//
// Mutating kernels (ScaleInPlace, AddScaledInPlace, RightMulBlock) modify
// the receiver; all others allocate a fresh result and never touch their
// operands. Nothing in this package locks: callers that share a *Dense
// across goroutines must synchronize or clone.
package dense
