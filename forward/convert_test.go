package forward_test

import (
	"testing"

	"github.com/neuromag/fieldkit/forward"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConvert_RoundTrip converts free → surface → free and expects the
// original gain back within floating tolerance.
func TestConvert_RoundTrip(t *testing.T) {
	s := testSolution(t, forward.FreeOrient)
	orig := s.Sol.Data.Clone()

	surf, err := forward.Convert(s, forward.SurfOri(true))
	require.NoError(t, err)
	assert.False(t, surf.Sol.Data.EqualApprox(orig, 1e-12, 0), "surface rotation must change the gain")
	assert.True(t, surf.SurfOri)
	assert.Equal(t, forward.FreeOrient, surf.SourceOri)

	back, err := forward.Convert(surf)
	require.NoError(t, err)
	assert.True(t, back.Sol.Data.EqualApprox(orig, 0, 1e-7))
	assert.True(t, back.SolGrad.Data.EqualApprox(s.OrigSolGrad(), 0, 1e-7))
	assert.False(t, back.SurfOri)
}

// TestConvert_Idempotent repeats the same conversion and expects an
// identical result: conversions restart from the retained original.
func TestConvert_Idempotent(t *testing.T) {
	s := testSolution(t, forward.FreeOrient)

	once, err := forward.Convert(s, forward.SurfOri(true))
	require.NoError(t, err)
	twice, err := forward.Convert(once, forward.SurfOri(true))
	require.NoError(t, err)

	assert.True(t, twice.Sol.Data.EqualApprox(once.Sol.Data, 0, 1e-12))
	assert.True(t, twice.SourceNN.EqualApprox(once.SourceNN, 0, 1e-12))

	fixedOnce, err := forward.Convert(s, forward.ForceFixed(true))
	require.NoError(t, err)
	fixedTwice, err := forward.Convert(fixedOnce, forward.ForceFixed(true))
	require.NoError(t, err)
	assert.True(t, fixedTwice.Sol.Data.EqualApprox(fixedOnce.Sol.Data, 0, 1e-12))
}

// TestConvert_ForceFixed checks the collapsed shapes and the agreement
// between the fixed gain and the normal component of the surface frame.
func TestConvert_ForceFixed(t *testing.T) {
	s := testSolution(t, forward.FreeOrient)
	nsrc := s.NSource()

	fixed, err := forward.Convert(s, forward.ForceFixed(true))
	require.NoError(t, err)
	assert.Equal(t, forward.FixedOrient, fixed.SourceOri)
	assert.True(t, fixed.SurfOri, "force-fixed implies surface alignment")
	assert.Equal(t, nsrc, fixed.Sol.NCol())
	assert.Equal(t, 3*nsrc, fixed.SolGrad.NCol())
	assert.Equal(t, nsrc, fixed.SourceNN.Rows())
	require.NoError(t, fixed.Validate())

	surf, err := forward.Convert(s, forward.SurfOri(true))
	require.NoError(t, err)
	for i := 0; i < s.NChan(); i++ {
		for g := 0; g < nsrc; g++ {
			want, _ := surf.Sol.Data.At(i, 3*g+2)
			got, _ := fixed.Sol.Data.At(i, g)
			assert.InDelta(t, want, got, 1e-12)
		}
	}
}

// TestConvert_UseCPS verifies patch statistics change the projection and
// that disabling them falls back to vertex normals.
func TestConvert_UseCPS(t *testing.T) {
	s := testSolution(t, forward.FreeOrient)

	cps, err := forward.Convert(s, forward.ForceFixed(true))
	require.NoError(t, err)
	plain, err := forward.Convert(s, forward.ForceFixed(true), forward.UseCPS(false))
	require.NoError(t, err)

	assert.False(t, cps.Sol.Data.EqualApprox(plain.Sol.Data, 1e-12, 0))

	// Without patch statistics, both paths use the vertex normals.
	noCPS := testSolution(t, forward.FreeOrient)
	for _, sp := range noCPS.Src {
		sp.PatchNormals, sp.PatchAreas = nil, nil
	}
	a, err := forward.Convert(noCPS, forward.ForceFixed(true))
	require.NoError(t, err)
	b, err := forward.Convert(noCPS, forward.ForceFixed(true), forward.UseCPS(false))
	require.NoError(t, err)
	assert.True(t, a.Sol.Data.EqualApprox(b.Sol.Data, 0, 0))
}

// TestConvert_OriginallyFixed: a solution computed fixed can only stay
// fixed; asking for a free representation fails.
func TestConvert_OriginallyFixed(t *testing.T) {
	s := testSolution(t, forward.FixedOrient)

	_, err := forward.Convert(s)
	assert.ErrorIs(t, err, forward.ErrOrigUnavailable)
	_, err = forward.Convert(s, forward.SurfOri(true))
	assert.ErrorIs(t, err, forward.ErrOrigUnavailable)

	same, err := forward.Convert(s, forward.ForceFixed(true))
	require.NoError(t, err)
	assert.True(t, same.Sol.Data.EqualApprox(s.OrigSol(), 0, 0))
	assert.Equal(t, forward.FixedOrient, same.SourceOri)
}

// TestConvert_CopySemantics: the default leaves the receiver untouched,
// InPlace mutates it.
func TestConvert_CopySemantics(t *testing.T) {
	s := testSolution(t, forward.FreeOrient)
	before := s.Sol.Data.Clone()

	out, err := forward.Convert(s, forward.ForceFixed(true))
	require.NoError(t, err)
	assert.NotSame(t, s, out)
	assert.True(t, s.Sol.Data.EqualApprox(before, 0, 0), "receiver unchanged without InPlace")

	out, err = forward.Convert(s, forward.ForceFixed(true), forward.InPlace())
	require.NoError(t, err)
	assert.Same(t, s, out)
	assert.Equal(t, forward.FixedOrient, s.SourceOri)
}

// TestConvert_NilSolution rejects nil input.
func TestConvert_NilSolution(t *testing.T) {
	_, err := forward.Convert(nil)
	assert.ErrorIs(t, err, forward.ErrNilSolution)
}
