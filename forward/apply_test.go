package forward_test

import (
	"math"
	"testing"

	"github.com/neuromag/fieldkit/dense"
	"github.com/neuromag/fieldkit/diag"
	"github.com/neuromag/fieldkit/forward"
	"github.com/neuromag/fieldkit/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// estimateFor builds a constant-amplitude estimate over the given
// vertices.
func estimateFor(t *testing.T, vertices [][]int, ntimes int, tmin, tstep, amp float64) *source.Estimate {
	t.Helper()
	n := 0
	for _, vs := range vertices {
		n += len(vs)
	}
	data, err := dense.NewDense(n, ntimes)
	require.NoError(t, err)
	raw := data.Raw()
	for i := range raw {
		raw[i] = amp
	}
	stc, err := source.NewEstimate(data, vertices, tmin, tstep)
	require.NoError(t, err)

	return stc
}

// TestApply_ColumnSumIdentity: a unit constant activation over all
// sources makes each output sample the row sum of the gain matrix.
func TestApply_ColumnSumIdentity(t *testing.T) {
	s := testSolution(t, forward.FreeOrient)
	fixed, err := forward.Convert(s, forward.ForceFixed(true))
	require.NoError(t, err)

	const ntimes = 5
	stc := estimateFor(t, allVertices(fixed), ntimes, 0, 0.001, 1)

	ev, err := forward.Apply(fixed, stc)
	require.NoError(t, err)
	require.Equal(t, fixed.NChan(), ev.Data.Rows())
	require.Equal(t, ntimes, ev.Data.Cols())

	sums, err := dense.RowSums(fixed.Sol.Data)
	require.NoError(t, err)
	for i := 0; i < ev.Data.Rows(); i++ {
		for j := 0; j < ntimes; j++ {
			v, _ := ev.Data.At(i, j)
			assert.InDelta(t, sums[i], v, math.Abs(sums[i])*1e-12+1e-15)
		}
	}
	assert.Equal(t, 1, ev.NAve)
}

// TestApplyRaw_Timing: FirstSamp tracks the estimate clock.
func TestApplyRaw_Timing(t *testing.T) {
	s := testSolution(t, forward.FreeOrient)
	fixed, err := forward.Convert(s, forward.ForceFixed(true))
	require.NoError(t, err)

	// 600 Hz to match the fixture info; tmin 0.05 s = sample 30.
	stc := estimateFor(t, allVertices(fixed), 8, 0.05, 1.0/600, 1e-9)

	raw, err := forward.ApplyRaw(fixed, stc)
	require.NoError(t, err)
	assert.Equal(t, 30, raw.FirstSamp)
	assert.Equal(t, 8, raw.NTimes())

	// Windowing shifts the first sample along.
	raw, err = forward.ApplyRaw(fixed, stc, forward.Start(3))
	require.NoError(t, err)
	assert.Equal(t, 33, raw.FirstSamp)
	assert.Equal(t, 5, raw.NTimes())
}

// TestApply_Window covers the start/stop option semantics.
func TestApply_Window(t *testing.T) {
	s := testSolution(t, forward.FreeOrient)
	fixed, err := forward.Convert(s, forward.ForceFixed(true))
	require.NoError(t, err)
	stc := estimateFor(t, allVertices(fixed), 10, -0.1, 0.01, 1e-9)

	ev, err := forward.Apply(fixed, stc, forward.Start(2), forward.Stop(6))
	require.NoError(t, err)
	assert.Equal(t, 4, ev.Data.Cols())
	assert.InDelta(t, -0.08, ev.TMin, 1e-12)

	// Stop past the end clamps.
	ev, err = forward.Apply(fixed, stc, forward.Start(8), forward.Stop(99))
	require.NoError(t, err)
	assert.Equal(t, 2, ev.Data.Cols())

	_, err = forward.Apply(fixed, stc, forward.Start(5), forward.Stop(5))
	assert.ErrorIs(t, err, forward.ErrBadWindow)
}

// TestApply_RequiresFixed rejects free-orientation solutions.
func TestApply_RequiresFixed(t *testing.T) {
	s := testSolution(t, forward.FreeOrient)
	stc := estimateFor(t, allVertices(s), 3, 0, 0.001, 1e-9)

	_, err := forward.Apply(s, stc)
	assert.ErrorIs(t, err, forward.ErrNeedFixed)
	_, err = forward.ApplyRaw(s, stc)
	assert.ErrorIs(t, err, forward.ErrNeedFixed)
}

// TestApply_VertexMismatch: estimate vertices absent from the solution
// fail hard.
func TestApply_VertexMismatch(t *testing.T) {
	s := testSolution(t, forward.FreeOrient)
	fixed, err := forward.Convert(s, forward.ForceFixed(true))
	require.NoError(t, err)

	verts := allVertices(fixed)
	verts[0] = append(verts[0], 29) // odd id, not an in-use left vertex
	stc := estimateFor(t, verts, 3, 0, 0.001, 1e-9)

	_, err = forward.Apply(fixed, stc)
	assert.ErrorIs(t, err, forward.ErrVertexMismatch)
}

// TestApply_Advisories: polarity and amplitude checks reach the sink but
// never fail the projection.
func TestApply_Advisories(t *testing.T) {
	s := testSolution(t, forward.FreeOrient)
	fixed, err := forward.Convert(s, forward.ForceFixed(true))
	require.NoError(t, err)

	// Constant +1 Am: both all-positive and far above physiology.
	loud := estimateFor(t, allVertices(fixed), 3, 0, 0.001, 1)
	sink := diag.NewCollector()
	_, err = forward.Apply(fixed, loud, forward.WithSink(sink))
	require.NoError(t, err)
	assert.True(t, sink.Has(diag.CodeOnlyPositive))
	assert.True(t, sink.Has(diag.CodeLargeAmplitude))
	loudDiag := sink.Find(diag.CodeLargeAmplitude)
	require.NotNil(t, loudDiag)
	assert.Contains(t, loudDiag.Message, "1e-07 Am", "threshold is spelled out in the message")

	// Signed nano-scale data: silent.
	quiet := estimateFor(t, allVertices(fixed), 3, 0, 0.001, 1e-9)
	quiet.Data.Raw()[0] = -1e-9
	sink.Reset()
	_, err = forward.Apply(fixed, quiet, forward.WithSink(sink))
	require.NoError(t, err)
	assert.Empty(t, sink.All())
}

// TestCollapseVector: a vector estimate pointing along each source's
// orientation collapses to its component magnitudes, and projecting the
// collapsed estimate matches expectations.
func TestCollapseVector(t *testing.T) {
	s := testSolution(t, forward.FreeOrient)
	fixed, err := forward.Convert(s, forward.ForceFixed(true))
	require.NoError(t, err)

	nsrc, ntimes := fixed.NSource(), 4
	vdata, err := dense.NewDense(3*nsrc, ntimes)
	require.NoError(t, err)
	for g := 0; g < nsrc; g++ {
		n, rerr := fixed.SourceNN.Row(g)
		require.NoError(t, rerr)
		mag := 1e-9 * float64(g+1)
		for k := 0; k < 3; k++ {
			for tt := 0; tt < ntimes; tt++ {
				require.NoError(t, vdata.Set(3*g+k, tt, mag*n[k]))
			}
		}
	}
	vstc, err := source.NewVectorEstimate(vdata, allVertices(fixed), 0, 0.001)
	require.NoError(t, err)

	stc, err := forward.CollapseVector(fixed, vstc)
	require.NoError(t, err)
	for g := 0; g < nsrc; g++ {
		v, _ := stc.Data.At(g, 0)
		assert.InDelta(t, 1e-9*float64(g+1), v, 1e-18)
	}

	_, err = forward.CollapseVector(s, vstc)
	assert.ErrorIs(t, err, forward.ErrNeedFixed)
}
