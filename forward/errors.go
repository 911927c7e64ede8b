// SPDX-License-Identifier: MIT
// Package forward: sentinel error set (unified, consistent).
// All operations return these sentinels, possibly wrapped with an
// operation prefix via fmt.Errorf("Op: %w", err); tests match them with
// errors.Is. Error classes follow the module-wide taxonomy: argument
// errors (bad type/shape/count, no partial effect), value errors
// (semantically invalid parameter combinations), and configuration errors
// (state that cannot support the requested operation). Advisory
// conditions are never errors; they go to the diag sink.

package forward

import (
	"errors"
	"fmt"
)

// opErr wraps err with an operation tag, preserving the sentinel for
// errors.Is. Call only with err != nil.
func opErr(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

var (
	// ErrNilSolution indicates a nil *Solution receiver or argument.
	ErrNilSolution = errors.New("forward: nil solution")

	// ErrInvalidSolution indicates a Solution violating its structural
	// invariants (column count vs. sources, orientation rows, grad shape).
	ErrInvalidSolution = errors.New("forward: solution violates structural invariants")

	// ErrNotSolutionSlice is the argument error for Average: the input is
	// not a usable sequence of solutions (nil slice or nil element).
	ErrNotSolutionSlice = errors.New("forward: input must be a slice of non-nil solutions")

	// ErrEmptyList is the value error for an averaging sequence with fewer
	// than one element.
	ErrEmptyList = errors.New("forward: need at least one solution to average")

	// ErrNegativeWeight indicates a negative averaging weight.
	ErrNegativeWeight = errors.New("forward: weights must be non-negative")

	// ErrZeroWeights indicates all averaging weights are zero.
	ErrZeroWeights = errors.New("forward: weights sum to zero")

	// ErrWeightCount indicates len(weights) != len(solutions).
	ErrWeightCount = errors.New("forward: weight count does not match solution count")

	// ErrOrigUnavailable is the configuration error raised when a
	// fixed-orientation solution is asked for a free representation but the
	// original free-orientation data was never retained.
	ErrOrigUnavailable = errors.New("forward: original free-orientation data not retained; cannot convert to free")

	// ErrSpaceCount indicates a per-source-space argument whose length does
	// not match the solution's source spaces.
	ErrSpaceCount = errors.New("forward: per-space argument count does not match source spaces")

	// ErrEmptySelection indicates a restriction that removed every source.
	ErrEmptySelection = errors.New("forward: restriction leaves no sources")

	// ErrNeedFixed indicates an operation requiring a fixed-orientation
	// (surface-projected) solution.
	ErrNeedFixed = errors.New("forward: operation requires a fixed-orientation solution")

	// ErrVertexMismatch indicates estimate vertices that are not present in
	// the solution's source spaces.
	ErrVertexMismatch = errors.New("forward: estimate vertices not found in solution source spaces")

	// ErrBadWindow indicates a start/stop sample window that selects nothing.
	ErrBadWindow = errors.New("forward: empty start/stop sample window")

	// ErrExpRange indicates a depth-prior exponent outside [0, 1].
	ErrExpRange = errors.New("forward: depth exponent must be between 0 and 1")

	// ErrDepthMode indicates an unrecognized depth channel-limiting mode;
	// the only supported mode is "whiten".
	ErrDepthMode = errors.New(`forward: depth limiting mode must be "whiten"`)

	// ErrNeedCovariance indicates whitened depth limiting was requested
	// without a noise covariance.
	ErrNeedCovariance = errors.New("forward: whitened depth limiting requires a noise covariance")

	// ErrLooseRange indicates an orientation-prior strength outside [0, 1].
	ErrLooseRange = errors.New("forward: loose must be between 0 and 1")

	// ErrFixedLoose indicates a nonzero loose value combined with a
	// fixed-orientation solution.
	ErrFixedLoose = errors.New("forward: loose must be 0 with fixed orientation")

	// ErrNeedSurfOri indicates a loose orientation prior requested on a
	// free solution that is not oriented in surface coordinates.
	ErrNeedSurfOri = errors.New("forward: loose orientation prior requires a solution oriented in surface coordinates")
)
