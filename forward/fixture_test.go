package forward_test

import (
	"math"
	"testing"

	"github.com/neuromag/fieldkit/dense"
	"github.com/neuromag/fieldkit/forward"
	"github.com/neuromag/fieldkit/meas"
	"github.com/neuromag/fieldkit/source"
	"github.com/stretchr/testify/require"
)

// testSpaces builds a two-hemisphere geometry: 15 in-use vertices on the
// left (even ids below 30), 5 on the right. Every vertex carries a unit
// normal plus distinct patch statistics so cps-dependent paths are
// distinguishable from vertex-normal paths.
func testSpaces(t *testing.T) []*source.SourceSpace {
	t.Helper()

	build := func(hemi source.Hemisphere, npoints int, vertno []int, seed float64) *source.SourceSpace {
		nuse := len(vertno)
		nn, err := dense.NewDense(nuse, 3)
		require.NoError(t, err)
		pn, err := dense.NewDense(nuse, 3)
		require.NoError(t, err)
		areas := make([]float64, nuse)
		for g := 0; g < nuse; g++ {
			a := seed + float64(g)*0.7
			writeUnit(nn.Raw()[g*3:(g+1)*3], math.Cos(a), math.Sin(a), 1)
			writeUnit(pn.Raw()[g*3:(g+1)*3], math.Cos(a)+0.4, math.Sin(a), 0.8)
			areas[g] = 1 + 0.1*float64(g)
		}

		sp := &source.SourceSpace{
			Hemi: hemi, NPoints: npoints, Vertno: vertno,
			CoordFrame: source.HeadFrame,
			Normals:    nn, PatchNormals: pn, PatchAreas: areas,
		}
		require.NoError(t, sp.Validate())

		return sp
	}

	lh := make([]int, 15)
	for i := range lh {
		lh[i] = 2 * i
	}

	return []*source.SourceSpace{
		build(source.LeftHemi, 30, lh, 0.3),
		build(source.RightHemi, 12, []int{1, 3, 5, 7, 9}, 1.1),
	}
}

// writeUnit normalizes (x, y, z) into dst.
func writeUnit(dst []float64, x, y, z float64) {
	n := math.Sqrt(x*x + y*y + z*z)
	dst[0], dst[1], dst[2] = x/n, y/n, z/n
}

// testInfo returns four channels matching the fixture gain rows.
func testInfo() *meas.Info {
	return &meas.Info{
		Channels: []meas.Channel{
			{Name: "MEG 0111", Kind: meas.MEGMag, Unit: "T"},
			{Name: "MEG 0112", Kind: meas.MEGGrad, Unit: "T/m"},
			{Name: "EEG 001", Kind: meas.EEG, Unit: "V"},
			{Name: "EEG 002", Kind: meas.EEG, Unit: "V"},
		},
		SFreq:    600,
		DevHeadT: meas.Identity("device", "head"),
	}
}

// testSolution builds the shared fixture: 4 channels, 20 sources, with a
// gradient matrix, in the requested native orientation.
func testSolution(t *testing.T, ori forward.Orientation) *forward.Solution {
	t.Helper()

	src := testSpaces(t)
	nsrc := 0
	for _, sp := range src {
		nsrc += sp.NUse()
	}
	comp := 3
	if ori == forward.FixedOrient {
		comp = 1
	}

	gain, err := dense.NewDense(4, nsrc*comp)
	require.NoError(t, err)
	fillDeterministic(gain, 0.37)
	grad, err := dense.NewDense(4, 3*nsrc*comp)
	require.NoError(t, err)
	fillDeterministic(grad, 0.53)

	s, err := forward.NewSolution(testInfo(), nil, src, gain, grad, ori)
	require.NoError(t, err)

	return s
}

// fillDeterministic writes reproducible non-degenerate values.
func fillDeterministic(m *dense.Dense, phase float64) {
	raw := m.Raw()
	for i := range raw {
		raw[i] = math.Sin(float64(i)*phase + 0.1)
	}
}

// allVertices returns every in-use vertex of the solution, per space.
func allVertices(s *forward.Solution) [][]int {
	out := make([][]int, len(s.Src))
	for i, sp := range s.Src {
		out[i] = append([]int(nil), sp.Vertno...)
	}

	return out
}
