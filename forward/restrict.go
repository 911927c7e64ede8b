// SPDX-License-Identifier: MIT

package forward

import (
	"fmt"

	"github.com/neuromag/fieldkit/dense"
	"github.com/neuromag/fieldkit/source"
)

const (
	opRestrictLabels   = "RestrictToLabels"
	opRestrictEstimate = "RestrictToEstimate"
)

// RestrictToLabels returns a copy of the solution covering only the
// vertices inside (or, with invert, outside) the given labels. Labels are
// matched to source spaces by hemisphere; a hemisphere with no matching
// label contributes nothing.
//
// Errors:
//   - ErrNilSolution, ErrEmptySelection (no label vertex exists in the
//     solution), source.ErrHemisphere (label names an unknown hemisphere).
func RestrictToLabels(s *Solution, labels []*source.Label, invert bool) (*Solution, error) {
	if s == nil || s.Sol == nil || s.Sol.Data == nil {
		return nil, opErr(opRestrictLabels, ErrNilSolution)
	}

	want := make([][]int, len(s.Src))
	for _, lb := range labels {
		found := false
		for i, sp := range s.Src {
			if sp.Hemi == lb.Hemi {
				want[i] = append(want[i], lb.Vertices...)
				found = true
			}
		}
		if !found {
			return nil, opErr(opRestrictLabels,
				fmt.Errorf("label %q hemisphere %q: %w", lb.Name, lb.Hemi, source.ErrHemisphere))
		}
	}

	if invert {
		for i, sp := range s.Src {
			member := make(map[int]struct{}, len(want[i]))
			for _, v := range want[i] {
				member[v] = struct{}{}
			}
			var inv []int
			for _, v := range sp.Vertno {
				if _, ok := member[v]; !ok {
					inv = append(inv, v)
				}
			}
			want[i] = inv
		}
	}

	out, err := restrictToVertices(s, want)
	if err != nil {
		return nil, opErr(opRestrictLabels, err)
	}

	return out, nil
}

// RestrictToEstimate returns a copy of the solution covering only the
// vertices the estimate is defined on. The estimate must carry one vertex
// list per source space.
//
// Errors:
//   - ErrNilSolution, ErrSpaceCount, ErrEmptySelection.
func RestrictToEstimate(s *Solution, stc *source.Estimate) (*Solution, error) {
	if s == nil || s.Sol == nil || s.Sol.Data == nil {
		return nil, opErr(opRestrictEstimate, ErrNilSolution)
	}
	if stc == nil || len(stc.Vertices) != len(s.Src) {
		return nil, opErr(opRestrictEstimate, ErrSpaceCount)
	}

	out, err := restrictToVertices(s, stc.Vertices)
	if err != nil {
		return nil, opErr(opRestrictEstimate, err)
	}

	return out, nil
}

// restrictToVertices builds the restricted copy: per source space the
// ascending intersection of its vertno with the wanted set, then the gain,
// gradient, orientation, and retained-original matrices sliced with one
// aligned index set each.
func restrictToVertices(s *Solution, want [][]int) (*Solution, error) {
	comp := s.SourceOri.components()
	origComp := s.origSourceOri.components()

	out := s.Clone()

	var solCols, gradCols, nnRows, origCols, origGradCols []int
	base := 0 // running source offset across spaces
	for i, sp := range s.Src {
		verts, pos := source.IntersectVertno(sp.Vertno, want[i])

		outSp := out.Src[i]
		outSp.Vertno = verts
		if len(pos) == 0 {
			// Empty space survives with empty vertno and nil per-source data.
			outSp.Normals, outSp.PatchNormals, outSp.PatchAreas = nil, nil, nil
			base += sp.NUse()
			continue
		}

		if sp.Normals != nil {
			nn, err := dense.SelectRows(sp.Normals, pos)
			if err != nil {
				return nil, err
			}
			outSp.Normals = nn
		}
		if sp.PatchNormals != nil {
			pn, err := dense.SelectRows(sp.PatchNormals, pos)
			if err != nil {
				return nil, err
			}
			outSp.PatchNormals = pn
			areas := make([]float64, len(pos))
			for j, p := range pos {
				areas[j] = sp.PatchAreas[p]
			}
			outSp.PatchAreas = areas
		}

		for _, p := range pos {
			g := base + p
			for c := 0; c < comp; c++ {
				col := g*comp + c
				solCols = append(solCols, col)
				nnRows = append(nnRows, col)
				for d := 0; d < 3; d++ {
					gradCols = append(gradCols, col*3+d)
				}
			}
			for c := 0; c < origComp; c++ {
				col := g*origComp + c
				origCols = append(origCols, col)
				for d := 0; d < 3; d++ {
					origGradCols = append(origGradCols, col*3+d)
				}
			}
		}
		base += sp.NUse()
	}

	if len(solCols) == 0 {
		return nil, ErrEmptySelection
	}

	var err error
	if out.Sol.Data, err = dense.SelectColumns(s.Sol.Data, solCols); err != nil {
		return nil, err
	}
	if out.SourceNN, err = dense.SelectRows(s.SourceNN, nnRows); err != nil {
		return nil, err
	}
	if s.SolGrad != nil {
		if out.SolGrad.Data, err = dense.SelectColumns(s.SolGrad.Data, gradCols); err != nil {
			return nil, err
		}
	}
	if s.origSol != nil {
		if out.origSol, err = dense.SelectColumns(s.origSol, origCols); err != nil {
			return nil, err
		}
	}
	if s.origSolGrad != nil {
		if out.origSolGrad, err = dense.SelectColumns(s.origSolGrad, origGradCols); err != nil {
			return nil, err
		}
	}

	return out, nil
}
