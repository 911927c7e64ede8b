// SPDX-License-Identifier: MIT
// Package dense: sentinel error set. All kernels return these sentinels
// (possibly wrapped with an operation prefix via fmt.Errorf("%s: %w", ...))
// and tests match them with errors.Is. Panics are reserved for programmer
// errors in private helpers.

package dense

import "errors"

var (
	// ErrBadShape is returned when a requested shape is invalid (r<=0 or c<=0),
	// or when a provided backing slice does not match r*c.
	ErrBadShape = errors.New("dense: invalid shape")

	// ErrOutOfRange indicates a row or column index outside valid bounds.
	// Public indexers (At/Set) and selectors return this, never panic.
	ErrOutOfRange = errors.New("dense: index out of range")

	// ErrDimensionMismatch indicates incompatible operand dimensions,
	// e.g. AddScaledInPlace with different shapes or Mul with a.Cols != b.Rows.
	ErrDimensionMismatch = errors.New("dense: dimension mismatch")

	// ErrNilMatrix indicates a nil *Dense receiver or argument.
	ErrNilMatrix = errors.New("dense: nil matrix")

	// ErrNaNInf signals a NaN or ±Inf value where finite values are required.
	ErrNaNInf = errors.New("dense: NaN or Inf encountered")
)
