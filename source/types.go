// SPDX-License-Identifier: MIT

package source

import (
	"fmt"

	"github.com/neuromag/fieldkit/dense"
)

// Hemisphere tags a source space. Ordering is fixed: left before right in
// every multi-space sequence, matching the column layout of gain matrices.
type Hemisphere string

const (
	// LeftHemi is the left cortical hemisphere.
	LeftHemi Hemisphere = "lh"

	// RightHemi is the right cortical hemisphere.
	RightHemi Hemisphere = "rh"
)

// CoordFrame tags the coordinate frame source positions are expressed in.
type CoordFrame int

const (
	// HeadFrame: device-independent head coordinates.
	HeadFrame CoordFrame = iota

	// MRIFrame: the subject's MRI voxel-derived coordinates.
	MRIFrame
)

// SourceSpace is one hemisphere's candidate source set.
//
// Vertno lists the in-use vertex ids (strictly increasing, a subset of
// [0, NPoints)). Normals holds one unit surface normal per in-use vertex
// (nuse x 3, aligned with Vertno). PatchNormals optionally holds the
// cortical-patch-statistics averaged normals in the same layout, with
// PatchAreas the corresponding patch weights; both may be nil when patch
// information was never computed.
type SourceSpace struct {
	Hemi         Hemisphere
	NPoints      int
	Vertno       []int
	CoordFrame   CoordFrame
	Normals      *dense.Dense
	PatchNormals *dense.Dense
	PatchAreas   []float64
}

// NUse returns the number of in-use vertices.
func (s *SourceSpace) NUse() int { return len(s.Vertno) }

// Validate enforces the structural invariants: strictly increasing Vertno
// within range, and per-source arrays shaped nuse x 3 when present.
func (s *SourceSpace) Validate() error {
	prev := -1
	for _, v := range s.Vertno {
		if v <= prev || v < 0 || v >= s.NPoints {
			return fmt.Errorf("vertex %d after %d (npoints=%d): %w", v, prev, s.NPoints, ErrVertnoOrder)
		}
		prev = v
	}
	nuse := s.NUse()
	if s.Normals != nil && (s.Normals.Rows() != nuse || s.Normals.Cols() != 3) {
		return fmt.Errorf("normals %dx%d for nuse=%d: %w", s.Normals.Rows(), s.Normals.Cols(), nuse, ErrShapeMismatch)
	}
	if s.PatchNormals != nil && (s.PatchNormals.Rows() != nuse || s.PatchNormals.Cols() != 3) {
		return fmt.Errorf("patch normals %dx%d for nuse=%d: %w", s.PatchNormals.Rows(), s.PatchNormals.Cols(), nuse, ErrShapeMismatch)
	}
	if s.PatchAreas != nil && len(s.PatchAreas) != nuse {
		return fmt.Errorf("patch areas len=%d for nuse=%d: %w", len(s.PatchAreas), nuse, ErrShapeMismatch)
	}

	return nil
}

// Clone returns a deep copy of the source space.
func (s *SourceSpace) Clone() *SourceSpace {
	cp := &SourceSpace{
		Hemi:       s.Hemi,
		NPoints:    s.NPoints,
		Vertno:     append([]int(nil), s.Vertno...),
		CoordFrame: s.CoordFrame,
	}
	if s.Normals != nil {
		cp.Normals = s.Normals.Clone()
	}
	if s.PatchNormals != nil {
		cp.PatchNormals = s.PatchNormals.Clone()
	}
	if s.PatchAreas != nil {
		cp.PatchAreas = append([]float64(nil), s.PatchAreas...)
	}

	return cp
}

// IntersectVertno returns the ordered ascending intersection of vertno
// with want, plus the positions (indices into vertno) of each surviving
// vertex. vertno must be strictly increasing; want may arrive in any order
// and may contain duplicates.
//
// The positional index set is what restriction feeds to column selection:
// position p of hemisphere i maps to gain columns
// base + p*componentsPerSource .. base + (p+1)*componentsPerSource - 1.
//
// Complexity: O(len(want) log len(want) + len(vertno)).
func IntersectVertno(vertno, want []int) (verts, pos []int) {
	if len(vertno) == 0 || len(want) == 0 {
		return nil, nil
	}
	member := make(map[int]struct{}, len(want))
	for _, v := range want {
		member[v] = struct{}{}
	}
	for p, v := range vertno {
		if _, ok := member[v]; ok {
			verts = append(verts, v)
			pos = append(pos, p)
		}
	}

	return verts, pos
}
