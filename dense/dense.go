// SPDX-License-Identifier: MIT

package dense

import (
	"fmt"
	"math"
	"strings"
)

// Dense is a row-major matrix of float64 values.
// r is rows, c is columns, and data holds r*c elements in row-major order.
type Dense struct {
	r, c int       // number of rows and columns
	data []float64 // flat backing storage, length == r*c
}

// NewDense creates an r×c Dense matrix initialized to zeros.
// Returns ErrBadShape when rows or cols is not positive.
// Complexity: O(r*c) time and memory.
func NewDense(rows, cols int) (*Dense, error) {
	if rows <= 0 || cols <= 0 {
		return nil, ErrBadShape
	}

	return &Dense{r: rows, c: cols, data: make([]float64, rows*cols)}, nil
}

// NewDenseData wraps an existing row-major slice as an r×c matrix,
// taking ownership of the slice (no copy). len(data) must equal rows*cols.
// Complexity: O(1).
func NewDenseData(rows, cols int, data []float64) (*Dense, error) {
	if rows <= 0 || cols <= 0 || len(data) != rows*cols {
		return nil, ErrBadShape
	}

	return &Dense{r: rows, c: cols, data: data}, nil
}

// Rows returns the number of rows. Complexity: O(1).
func (m *Dense) Rows() int { return m.r }

// Cols returns the number of columns. Complexity: O(1).
func (m *Dense) Cols() int { return m.c }

// Raw returns the backing slice in row-major order. The slice aliases the
// matrix: writes through it are visible to all readers. Callers that need
// an independent copy must Clone first. Intended for codecs and kernels
// that have already validated shapes.
func (m *Dense) Raw() []float64 { return m.data }

// indexOf computes the flat index for (row, col) or returns ErrOutOfRange.
// Complexity: O(1).
func (m *Dense) indexOf(row, col int) (int, error) {
	if row < 0 || row >= m.r || col < 0 || col >= m.c {
		return 0, fmt.Errorf("Dense(%d,%d): %w", row, col, ErrOutOfRange)
	}

	return row*m.c + col, nil
}

// At retrieves the element at (row, col), bounds-checked.
// Complexity: O(1).
func (m *Dense) At(row, col int) (float64, error) {
	idx, err := m.indexOf(row, col)
	if err != nil {
		return 0, err
	}

	return m.data[idx], nil
}

// Set assigns value v at (row, col), bounds-checked. NaN and ±Inf are
// rejected with ErrNaNInf: gain matrices are finite by construction and a
// non-finite entry always indicates an upstream defect.
// Complexity: O(1).
func (m *Dense) Set(row, col int, v float64) error {
	idx, err := m.indexOf(row, col)
	if err != nil {
		return err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("Dense(%d,%d): %w", row, col, ErrNaNInf)
	}
	m.data[idx] = v

	return nil
}

// Row returns row i of the matrix as a slice view (aliases the backing
// storage). Returns ErrOutOfRange for an invalid index.
// Complexity: O(1).
func (m *Dense) Row(i int) ([]float64, error) {
	if i < 0 || i >= m.r {
		return nil, fmt.Errorf("Dense.Row(%d): %w", i, ErrOutOfRange)
	}

	return m.data[i*m.c : (i+1)*m.c], nil
}

// Clone returns a deep copy of the matrix.
// Complexity: O(r*c).
func (m *Dense) Clone() *Dense {
	cp := make([]float64, len(m.data))
	copy(cp, m.data)

	return &Dense{r: m.r, c: m.c, data: cp}
}

// EqualApprox reports whether m and b have identical shape and elementwise
// |m-b| <= eps + rtol*|b|. With eps=0 and rtol=0 this is exact equality.
// Complexity: O(r*c).
func (m *Dense) EqualApprox(b *Dense, eps, rtol float64) bool {
	if b == nil || m.r != b.r || m.c != b.c {
		return false
	}
	var diff, tol float64
	for i := range m.data {
		diff = math.Abs(m.data[i] - b.data[i])
		tol = eps + rtol*math.Abs(b.data[i])
		if diff > tol {
			return false
		}
	}

	return true
}

// MaxAbs returns the largest absolute element value (0 for the zero matrix).
// Complexity: O(r*c).
func (m *Dense) MaxAbs() float64 {
	var best, v float64
	for i := range m.data {
		v = math.Abs(m.data[i])
		if v > best {
			best = v
		}
	}

	return best
}

// String implements fmt.Stringer for debugging.
func (m *Dense) String() string {
	var sb strings.Builder
	for i := 0; i < m.r; i++ {
		sb.WriteByte('[')
		for j := 0; j < m.c; j++ {
			if j > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "%g", m.data[i*m.c+j])
		}
		sb.WriteString("]\n")
	}

	return sb.String()
}
