// SPDX-License-Identifier: MIT

package forward

import (
	"fmt"
	"math"

	"github.com/neuromag/fieldkit/dense"
	"github.com/neuromag/fieldkit/source"
)

const opConvert = "Convert"

// Convert changes the orientation representation of a forward solution.
//
// Implementation stages:
//   - Stage 1: gather options; ForceFixed implies SurfOri.
//   - Stage 2: restore the retained original gain/gradient matrices, so the
//     result never depends on the solution's current representation.
//   - Stage 3: build the target representation: fixed (project each source
//     triplet onto its surface normal), surface-aligned free (rotate each
//     triplet into [tangent1, tangent2, normal]), or head-frame free
//     (the original as computed).
//
// Inputs:
//   - s: the solution; opts: SurfOri, ForceFixed, UseCPS, InPlace.
//
// Returns:
//   - *Solution: the converted solution (s itself under InPlace).
//
// Errors:
//   - ErrNilSolution, ErrOrigUnavailable (free representation requested
//     from a solution originally computed fixed).
//
// Complexity:
//   - Time O(nchan*nsource*9), Space O(nchan*ncomp) without InPlace.
//
// Converting twice with the same arguments is a no-op; converting back to
// the original arguments restores the original matrices within floating
// tolerance.
func Convert(s *Solution, opts ...ConvertOption) (*Solution, error) {
	if s == nil || s.Sol == nil || s.Sol.Data == nil {
		return nil, opErr(opConvert, ErrNilSolution)
	}
	cfg := gatherConvertOptions(opts)

	if s.origSourceOri == FixedOrient && !cfg.forceFixed {
		return nil, opErr(opConvert, ErrOrigUnavailable)
	}

	out := s
	if cfg.copy {
		out = s.Clone()
	}

	// Start every conversion from the originals.
	out.Sol.Data = out.origSol.Clone()
	if out.origSolGrad != nil {
		out.SolGrad.Data = out.origSolGrad.Clone()
	}

	var err error
	switch {
	case out.origSourceOri == FixedOrient:
		// Originally fixed: the only reachable target is fixed again, along
		// the vertex normals the solution was computed with.
		out.SourceOri = FixedOrient
		out.SurfOri = true
		out.SourceNN, err = nativeOrientations(out.Src, FixedOrient)
	case cfg.forceFixed:
		err = toFixed(out, cfg.useCPS)
	case cfg.surfOri:
		err = toSurfaceFrames(out, cfg.useCPS)
	default:
		out.SourceOri = FreeOrient
		out.SurfOri = false
		out.SourceNN, err = nativeOrientations(out.Src, FreeOrient)
	}
	if err != nil {
		return nil, opErr(opConvert, err)
	}

	return out, nil
}

// orientationOf returns the alignment normal of in-use vertex p: the patch
// normal when requested and available (renormalized; patch averaging
// shortens it), otherwise the vertex normal.
func orientationOf(sp *source.SourceSpace, p int, useCPS bool) ([3]float64, error) {
	var n [3]float64
	src := sp.Normals
	if useCPS && sp.PatchNormals != nil {
		src = sp.PatchNormals
	}
	row, err := src.Row(p)
	if err != nil {
		return n, err
	}
	copy(n[:], row)

	norm := math.Sqrt(n[0]*n[0] + n[1]*n[1] + n[2]*n[2])
	if norm == 0 {
		// Degenerate patch normal: fall back to the vertex normal.
		row, err = sp.Normals.Row(p)
		if err != nil {
			return n, err
		}
		copy(n[:], row)
		norm = math.Sqrt(n[0]*n[0] + n[1]*n[1] + n[2]*n[2])
		if norm == 0 {
			return n, fmt.Errorf("zero normal at position %d: %w", p, ErrInvalidSolution)
		}
	}
	for k := range n {
		n[k] /= norm
	}

	return n, nil
}

// stackedNormals gathers the alignment normal of every in-use vertex
// across spaces into an nsource x 3 matrix.
func stackedNormals(src []*source.SourceSpace, useCPS bool) (*dense.Dense, error) {
	n := 0
	for _, sp := range src {
		n += sp.NUse()
	}
	nn, err := dense.NewDense(n, 3)
	if err != nil {
		return nil, err
	}
	g := 0
	for _, sp := range src {
		for p := 0; p < sp.NUse(); p++ {
			v, oerr := orientationOf(sp, p, useCPS)
			if oerr != nil {
				return nil, oerr
			}
			copy(nn.Raw()[g*3:(g+1)*3], v[:])
			g++
		}
	}

	return nn, nil
}

// toFixed collapses each free-orientation triplet onto its surface normal:
// fixed column = gain triplet · n. SolGrad triplets (three per gain
// column) collapse the same way.
func toFixed(s *Solution, useCPS bool) error {
	nn, err := stackedNormals(s.Src, useCPS)
	if err != nil {
		return err
	}

	fixed, err := projectTriplets(s.Sol.Data, nn)
	if err != nil {
		return err
	}
	s.Sol.Data = fixed

	if s.SolGrad != nil {
		// Gradient columns come in triplets per gain column; collapsing the
		// source triplet keeps 3 gradient columns per surviving source.
		g, gerr := projectGradTriplets(s.SolGrad.Data, nn)
		if gerr != nil {
			return gerr
		}
		s.SolGrad.Data = g
	}

	s.SourceOri = FixedOrient
	s.SurfOri = true
	s.SourceNN = nn

	return nil
}

// projectTriplets maps an nchan x 3*nsrc matrix to nchan x nsrc by dotting
// each consecutive column triplet with the matching normal.
func projectTriplets(m, nn *dense.Dense) (*dense.Dense, error) {
	nsrc := nn.Rows()
	if m.Cols() != 3*nsrc {
		return nil, fmt.Errorf("%d columns for %d sources: %w", m.Cols(), nsrc, ErrInvalidSolution)
	}
	out, err := dense.NewDense(m.Rows(), nsrc)
	if err != nil {
		return nil, err
	}
	mr, or, nr := m.Raw(), out.Raw(), nn.Raw()
	mc := m.Cols()
	for i := 0; i < m.Rows(); i++ {
		for g := 0; g < nsrc; g++ {
			base := i*mc + 3*g
			or[i*nsrc+g] = mr[base]*nr[g*3] + mr[base+1]*nr[g*3+1] + mr[base+2]*nr[g*3+2]
		}
	}

	return out, nil
}

// projectGradTriplets collapses a gradient matrix (nchan x 9*nsrc, laid out
// as 3 spatial-derivative columns per source component) onto the normals,
// producing nchan x 3*nsrc. Derivative axis d of source g gathers from the
// component columns {9g+d, 9g+3+d, 9g+6+d}.
func projectGradTriplets(m, nn *dense.Dense) (*dense.Dense, error) {
	nsrc := nn.Rows()
	if m.Cols() != 9*nsrc {
		return nil, fmt.Errorf("%d gradient columns for %d sources: %w", m.Cols(), nsrc, ErrInvalidSolution)
	}
	out, err := dense.NewDense(m.Rows(), 3*nsrc)
	if err != nil {
		return nil, err
	}
	mr, or, nr := m.Raw(), out.Raw(), nn.Raw()
	mc, oc := m.Cols(), 3*nsrc
	for i := 0; i < m.Rows(); i++ {
		for g := 0; g < nsrc; g++ {
			for d := 0; d < 3; d++ {
				base := i*mc + 9*g + d
				or[i*oc+3*g+d] = mr[base]*nr[g*3] + mr[base+3]*nr[g*3+1] + mr[base+6]*nr[g*3+2]
			}
		}
	}

	return out, nil
}

// toSurfaceFrames rotates each source's component triplet into the local
// surface frame [t1 t2 n]: two tangents then the alignment normal.
func toSurfaceFrames(s *Solution, useCPS bool) error {
	nn, err := stackedNormals(s.Src, useCPS)
	if err != nil {
		return err
	}
	nsrc := nn.Rows()

	frames, err := dense.NewDense(3*nsrc, 3)
	if err != nil {
		return err
	}
	rot, err := dense.NewDense(3, 3)
	if err != nil {
		return err
	}

	for g := 0; g < nsrc; g++ {
		var n [3]float64
		copy(n[:], nn.Raw()[g*3:(g+1)*3])
		t1, t2 := tangentFrame(n)

		copy(frames.Raw()[(3*g)*3:], t1[:])
		copy(frames.Raw()[(3*g+1)*3:], t2[:])
		copy(frames.Raw()[(3*g+2)*3:], n[:])

		// Rotation columns are the frame vectors, so block · R expresses the
		// gain in surface coordinates.
		for k := 0; k < 3; k++ {
			rot.Raw()[k*3] = t1[k]
			rot.Raw()[k*3+1] = t2[k]
			rot.Raw()[k*3+2] = n[k]
		}
		if err = dense.RightMulBlock(s.Sol.Data, 3*g, 3, rot); err != nil {
			return err
		}
		if s.SolGrad != nil {
			// Each derivative axis rotates independently.
			for d := 0; d < 3; d++ {
				if err = rotateGradBlock(s.SolGrad.Data, g, d, rot); err != nil {
					return err
				}
			}
		}
	}

	s.SourceOri = FreeOrient
	s.SurfOri = true
	s.SourceNN = frames

	return nil
}

// rotateGradBlock rotates the component triplet of derivative axis d for
// source g: gradient columns {9g+d, 9g+3+d, 9g+6+d} by the 3x3 rot.
func rotateGradBlock(m *dense.Dense, g, d int, rot *dense.Dense) error {
	mr, rr := m.Raw(), rot.Raw()
	mc := m.Cols()
	var scratch [3]float64
	for i := 0; i < m.Rows(); i++ {
		base := i*mc + 9*g + d
		for j := 0; j < 3; j++ {
			scratch[j] = mr[base]*rr[j] + mr[base+3]*rr[3+j] + mr[base+6]*rr[6+j]
		}
		mr[base], mr[base+3], mr[base+6] = scratch[0], scratch[1], scratch[2]
	}

	return nil
}

// tangentFrame completes unit normal n to a right-handed orthonormal frame
// (t1, t2, n). The seed axis is the coordinate axis least aligned with n,
// keeping the frame numerically stable for every n.
func tangentFrame(n [3]float64) (t1, t2 [3]float64) {
	ax := 0
	if math.Abs(n[1]) < math.Abs(n[ax]) {
		ax = 1
	}
	if math.Abs(n[2]) < math.Abs(n[ax]) {
		ax = 2
	}
	var seed [3]float64
	seed[ax] = 1

	// t1 = normalize(seed × n), t2 = n × t1.
	t1 = cross(seed, n)
	norm := math.Sqrt(t1[0]*t1[0] + t1[1]*t1[1] + t1[2]*t1[2])
	for k := range t1 {
		t1[k] /= norm
	}
	t2 = cross(n, t1)

	return t1, t2
}

// cross returns a × b.
func cross(a, b [3]float64) [3]float64 {
	return [3]float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}
