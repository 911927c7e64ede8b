// SPDX-License-Identifier: MIT
// Package dense: linear-algebra kernels used by the forward model.
// All kernels validate fail-fast and wrap sentinels with an operation tag;
// loop orders are fixed so results are bit-stable across runs.

package dense

import "fmt"

// Operation name constants for unified error wrapping.
const (
	opMul           = "Mul"
	opMatVec        = "MatVec"
	opScale         = "Scale"
	opAddScaled     = "AddScaled"
	opSelectRows    = "SelectRows"
	opSelectColumns = "SelectColumns"
	opRightMulBlock = "RightMulBlock"
)

// opErrorf wraps err with an operation tag, preserving the sentinel for
// errors.Is. Call only with err != nil.
func opErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// Mul computes the product C = A × B into a fresh matrix.
//
// Implementation:
//   - Stage 1: validate operands non-nil and inner dimensions (A.Cols == B.Rows).
//   - Stage 2: i→k→j accumulation with row-major strides, skipping zero A[i,k].
//
// Inputs:
//   - a: left matrix (r × n).
//   - b: right matrix (n × c).
//
// Returns:
//   - *Dense: new (r × c) product.
//
// Errors:
//   - ErrNilMatrix, ErrDimensionMismatch.
//
// Complexity:
//   - Time O(r*n*c), Space O(r*c).
func Mul(a, b *Dense) (*Dense, error) {
	if a == nil || b == nil {
		return nil, opErrorf(opMul, ErrNilMatrix)
	}
	if a.c != b.r {
		return nil, opErrorf(opMul, ErrDimensionMismatch)
	}

	res, err := NewDense(a.r, b.c)
	if err != nil {
		return nil, opErrorf(opMul, err)
	}

	var i, j, k, baseA, baseB, baseR int
	var av float64
	for i = 0; i < a.r; i++ {
		baseA = i * a.c
		baseR = i * b.c
		for k = 0; k < a.c; k++ {
			av = a.data[baseA+k]
			if av == 0 {
				continue // skip zero for performance
			}
			baseB = k * b.c
			for j = 0; j < b.c; j++ {
				res.data[baseR+j] += av * b.data[baseB+j]
			}
		}
	}

	return res, nil
}

// MatVec computes y = m * x for a column vector x with len(x) == m.Cols().
// Deterministic i→j order; one pass per row with flat indexing.
// Complexity: Time O(r*c), Space O(r).
func MatVec(m *Dense, x []float64) ([]float64, error) {
	if m == nil {
		return nil, opErrorf(opMatVec, ErrNilMatrix)
	}
	if len(x) != m.c {
		return nil, opErrorf(opMatVec, ErrDimensionMismatch)
	}

	y := make([]float64, m.r)
	var i, j, base int
	var acc float64
	for i = 0; i < m.r; i++ {
		acc = 0
		base = i * m.c
		for j = 0; j < m.c; j++ {
			acc += m.data[base+j] * x[j]
		}
		y[i] = acc
	}

	return y, nil
}

// ScaleInPlace multiplies every element of m by alpha, mutating m.
// Complexity: O(r*c).
func ScaleInPlace(m *Dense, alpha float64) error {
	if m == nil {
		return opErrorf(opScale, ErrNilMatrix)
	}
	for i := range m.data {
		m.data[i] *= alpha
	}

	return nil
}

// AddScaledInPlace accumulates dst += alpha*src, mutating dst.
// Shapes must match exactly. This is the averaging kernel: summing
// weighted gain matrices without allocating per term.
// Complexity: O(r*c).
func AddScaledInPlace(dst *Dense, alpha float64, src *Dense) error {
	if dst == nil || src == nil {
		return opErrorf(opAddScaled, ErrNilMatrix)
	}
	if dst.r != src.r || dst.c != src.c {
		return opErrorf(opAddScaled, ErrDimensionMismatch)
	}
	for i := range dst.data {
		dst.data[i] += alpha * src.data[i]
	}

	return nil
}

// SelectRows returns a new matrix holding the given rows of m, in the
// order requested. Duplicate indices are allowed; each out-of-range index
// fails the whole call with ErrOutOfRange.
// Complexity: O(len(rows)*c).
func SelectRows(m *Dense, rows []int) (*Dense, error) {
	if m == nil {
		return nil, opErrorf(opSelectRows, ErrNilMatrix)
	}
	if len(rows) == 0 {
		return nil, opErrorf(opSelectRows, ErrBadShape)
	}
	for _, r := range rows {
		if r < 0 || r >= m.r {
			return nil, opErrorf(opSelectRows, fmt.Errorf("row %d: %w", r, ErrOutOfRange))
		}
	}

	out := make([]float64, len(rows)*m.c)
	for i, r := range rows {
		copy(out[i*m.c:(i+1)*m.c], m.data[r*m.c:(r+1)*m.c])
	}

	return &Dense{r: len(rows), c: m.c, data: out}, nil
}

// SelectColumns returns a new matrix holding the given columns of m, in
// the order requested. This is the restriction kernel: a forward solution
// restricted to a vertex subset keeps exactly the columns belonging to the
// surviving source components.
//
// Implementation:
//   - Stage 1: validate m and every index (fail before allocating).
//   - Stage 2: gather row by row in fixed i→j order.
//
// Errors:
//   - ErrNilMatrix, ErrBadShape (empty selection), ErrOutOfRange.
//
// Complexity:
//   - Time O(r*len(cols)), Space O(r*len(cols)).
//
// AI-Hints:
//   - Build the column index set once per restriction and reuse it for the
//     gain, gradient, and retained-original matrices so they stay aligned.
func SelectColumns(m *Dense, cols []int) (*Dense, error) {
	if m == nil {
		return nil, opErrorf(opSelectColumns, ErrNilMatrix)
	}
	if len(cols) == 0 {
		return nil, opErrorf(opSelectColumns, ErrBadShape)
	}
	for _, c := range cols {
		if c < 0 || c >= m.c {
			return nil, opErrorf(opSelectColumns, fmt.Errorf("column %d: %w", c, ErrOutOfRange))
		}
	}

	nc := len(cols)
	out := make([]float64, m.r*nc)
	var i, j, base int
	for i = 0; i < m.r; i++ {
		base = i * m.c
		for j = 0; j < nc; j++ {
			out[i*nc+j] = m.data[base+cols[j]]
		}
	}

	return &Dense{r: m.r, c: nc, data: out}, nil
}

// RightMulBlock multiplies the column block m[:, col0:col0+k] in place by
// the k×k matrix r: block = block × r. Used by orientation conversion to
// rotate each source's component triplet into a new basis without copying
// the whole gain matrix.
//
// Errors:
//   - ErrNilMatrix, ErrOutOfRange (block outside m), ErrDimensionMismatch
//     (r not square of size k).
//
// Complexity:
//   - Time O(rows*k*k), Space O(k) scratch per row.
func RightMulBlock(m *Dense, col0, k int, r *Dense) error {
	if m == nil || r == nil {
		return opErrorf(opRightMulBlock, ErrNilMatrix)
	}
	if col0 < 0 || k <= 0 || col0+k > m.c {
		return opErrorf(opRightMulBlock, ErrOutOfRange)
	}
	if r.r != k || r.c != k {
		return opErrorf(opRightMulBlock, ErrDimensionMismatch)
	}

	scratch := make([]float64, k)
	var i, j, p, base int
	var acc float64
	for i = 0; i < m.r; i++ {
		base = i*m.c + col0
		for j = 0; j < k; j++ {
			acc = 0
			for p = 0; p < k; p++ {
				acc += m.data[base+p] * r.data[p*k+j]
			}
			scratch[j] = acc
		}
		copy(m.data[base:base+k], scratch)
	}

	return nil
}

// ColumnSums returns the per-column sums of m (length Cols).
// Complexity: O(r*c).
func ColumnSums(m *Dense) ([]float64, error) {
	if m == nil {
		return nil, opErrorf("ColumnSums", ErrNilMatrix)
	}
	sums := make([]float64, m.c)
	var i, j, base int
	for i = 0; i < m.r; i++ {
		base = i * m.c
		for j = 0; j < m.c; j++ {
			sums[j] += m.data[base+j]
		}
	}

	return sums, nil
}

// RowSums returns the per-row sums of m (length Rows).
// Complexity: O(r*c).
func RowSums(m *Dense) ([]float64, error) {
	if m == nil {
		return nil, opErrorf("RowSums", ErrNilMatrix)
	}
	sums := make([]float64, m.r)
	var i, j, base int
	var acc float64
	for i = 0; i < m.r; i++ {
		base = i * m.c
		acc = 0
		for j = 0; j < m.c; j++ {
			acc += m.data[base+j]
		}
		sums[i] = acc
	}

	return sums, nil
}

// ColumnNorms2 returns the per-column squared Euclidean norms (length Cols).
// Depth priors are built from these.
// Complexity: O(r*c).
func ColumnNorms2(m *Dense) ([]float64, error) {
	if m == nil {
		return nil, opErrorf("ColumnNorms2", ErrNilMatrix)
	}
	norms := make([]float64, m.c)
	var i, j, base int
	var v float64
	for i = 0; i < m.r; i++ {
		base = i * m.c
		for j = 0; j < m.c; j++ {
			v = m.data[base+j]
			norms[j] += v * v
		}
	}

	return norms, nil
}
