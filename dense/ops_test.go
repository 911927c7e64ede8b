package dense_test

import (
	"testing"

	"github.com/neuromag/fieldkit/dense"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDense(t *testing.T, r, c int, data []float64) *dense.Dense {
	t.Helper()
	m, err := dense.NewDenseData(r, c, data)
	require.NoError(t, err)

	return m
}

// TestMul_Basic checks a small known product and the dimension guard.
func TestMul_Basic(t *testing.T) {
	a := mustDense(t, 2, 3, []float64{1, 2, 3, 4, 5, 6})
	b := mustDense(t, 3, 2, []float64{7, 8, 9, 10, 11, 12})

	c, err := dense.Mul(a, b)
	require.NoError(t, err)
	want := mustDense(t, 2, 2, []float64{58, 64, 139, 154})
	assert.True(t, c.EqualApprox(want, 0, 0), "known 2x3 * 3x2 product")

	_, err = dense.Mul(a, a)
	assert.ErrorIs(t, err, dense.ErrDimensionMismatch, "inner dimensions must agree")
}

// TestMatVec_Basic checks y = m*x and the length guard.
func TestMatVec_Basic(t *testing.T) {
	m := mustDense(t, 2, 3, []float64{1, 0, -1, 2, 2, 2})

	y, err := dense.MatVec(m, []float64{3, 4, 5})
	require.NoError(t, err)
	assert.Equal(t, []float64{-2, 24}, y)

	_, err = dense.MatVec(m, []float64{1, 2})
	assert.ErrorIs(t, err, dense.ErrDimensionMismatch)
}

// TestAddScaledInPlace verifies the accumulation kernel used by averaging.
func TestAddScaledInPlace(t *testing.T) {
	dst := mustDense(t, 1, 3, []float64{1, 1, 1})
	src := mustDense(t, 1, 3, []float64{2, 4, 6})

	require.NoError(t, dense.AddScaledInPlace(dst, 0.5, src))
	want := mustDense(t, 1, 3, []float64{2, 3, 4})
	assert.True(t, dst.EqualApprox(want, 0, 0))

	bad := mustDense(t, 3, 1, []float64{1, 2, 3})
	assert.ErrorIs(t, dense.AddScaledInPlace(dst, 1, bad), dense.ErrDimensionMismatch)
}

// TestSelectColumns_OrderAndBounds verifies gather order, duplicates and bounds.
func TestSelectColumns_OrderAndBounds(t *testing.T) {
	m := mustDense(t, 2, 4, []float64{
		0, 1, 2, 3,
		4, 5, 6, 7,
	})

	sel, err := dense.SelectColumns(m, []int{3, 1, 1})
	require.NoError(t, err)
	want := mustDense(t, 2, 3, []float64{3, 1, 1, 7, 5, 5})
	assert.True(t, sel.EqualApprox(want, 0, 0), "requested order preserved, duplicates allowed")

	_, err = dense.SelectColumns(m, []int{0, 4})
	assert.ErrorIs(t, err, dense.ErrOutOfRange)
	_, err = dense.SelectColumns(m, nil)
	assert.ErrorIs(t, err, dense.ErrBadShape, "empty selection is a shape error")
}

// TestSelectRows_Order verifies row gathering.
func TestSelectRows_Order(t *testing.T) {
	m := mustDense(t, 3, 2, []float64{1, 2, 3, 4, 5, 6})

	sel, err := dense.SelectRows(m, []int{2, 0})
	require.NoError(t, err)
	want := mustDense(t, 2, 2, []float64{5, 6, 1, 2})
	assert.True(t, sel.EqualApprox(want, 0, 0))
}

// TestRightMulBlock rotates one column triplet and leaves the rest alone.
func TestRightMulBlock(t *testing.T) {
	m := mustDense(t, 1, 5, []float64{9, 1, 2, 3, 9})
	// Permutation matrix: (x,y,z) -> (z,x,y).
	r := mustDense(t, 3, 3, []float64{
		0, 1, 0,
		0, 0, 1,
		1, 0, 0,
	})

	require.NoError(t, dense.RightMulBlock(m, 1, 3, r))
	want := mustDense(t, 1, 5, []float64{9, 3, 1, 2, 9})
	assert.True(t, m.EqualApprox(want, 0, 0), "block rotated, flanking columns untouched")

	assert.ErrorIs(t, dense.RightMulBlock(m, 3, 3, r), dense.ErrOutOfRange, "block past the end")
	bad := mustDense(t, 2, 2, []float64{1, 0, 0, 1})
	assert.ErrorIs(t, dense.RightMulBlock(m, 0, 3, bad), dense.ErrDimensionMismatch)
}

// TestReductions covers ColumnSums, RowSums and ColumnNorms2.
func TestReductions(t *testing.T) {
	m := mustDense(t, 2, 3, []float64{1, 2, 3, 4, 5, 6})

	cs, err := dense.ColumnSums(m)
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 7, 9}, cs)

	rs, err := dense.RowSums(m)
	require.NoError(t, err)
	assert.Equal(t, []float64{6, 15}, rs)

	cn, err := dense.ColumnNorms2(m)
	require.NoError(t, err)
	assert.Equal(t, []float64{17, 29, 45}, cn)
}
