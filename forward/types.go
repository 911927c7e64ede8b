// SPDX-License-Identifier: MIT

// Package forward: domain types. The Solution is a typed record (no
// string-keyed fields): the gain matrix lives in a Block alongside its
// row names, orientation state is an enum plus a surface flag, and the
// original pre-conversion matrices are retained unexported so conversions
// stay reversible without accumulating rotation error.

package forward

import (
	"fmt"

	"github.com/neuromag/fieldkit/dense"
	"github.com/neuromag/fieldkit/meas"
	"github.com/neuromag/fieldkit/source"
)

// Orientation states whether each source carries three orthogonal dipole
// components or a single fixed moment.
type Orientation int

const (
	// FreeOrient: three orthogonal components per source.
	FreeOrient Orientation = iota

	// FixedOrient: one component per source, along the surface normal.
	FixedOrient
)

// String returns the lowercase orientation name.
func (o Orientation) String() string {
	if o == FixedOrient {
		return "fixed"
	}

	return "free"
}

// components returns the gain columns each source occupies.
func (o Orientation) components() int {
	if o == FixedOrient {
		return 1
	}

	return 3
}

// Block is a named-row matrix: the gain (or gradient) data plus the
// sensor channel name of each row.
type Block struct {
	Data     *dense.Dense
	RowNames []string
}

// NCol returns the number of columns.
func (b *Block) NCol() int { return b.Data.Cols() }

// clone returns a deep copy of the block.
func (b *Block) clone() *Block {
	if b == nil {
		return nil
	}

	return &Block{Data: b.Data.Clone(), RowNames: append([]string(nil), b.RowNames...)}
}

// Solution is a forward solution: the gain matrix mapping source currents
// to sensor measurements, plus the geometry needed to interpret it.
//
// SourceNN holds the orientation vector of every gain column when the
// solution is fixed (nsource x 3) and the basis vectors of every source
// triplet when it is free (3*nsource x 3). Src lists the source spaces in
// column order (left hemisphere first).
//
// The unexported orig* fields retain the solution as originally computed;
// Convert always starts from them, never from already-converted data.
type Solution struct {
	Info     *meas.Info
	MriHeadT *meas.Transform

	Sol     *Block
	SolGrad *Block

	SourceOri Orientation
	SurfOri   bool
	SourceNN  *dense.Dense

	Src []*source.SourceSpace

	origSol       *dense.Dense
	origSolGrad   *dense.Dense
	origSourceOri Orientation
}

// NewSolution builds a solution from a freshly computed gain matrix in
// its native representation (head-frame free orientation, or fixed when
// the solution was computed with constrained orientation). The original
// matrices are retained as a deep copy so later conversions can restore
// this state exactly.
//
// For FixedOrient, SourceNN is taken from the source-space vertex
// normals; for FreeOrient it is the stacked identity triplets of the head
// frame. Returns ErrInvalidSolution when shapes disagree.
func NewSolution(info *meas.Info, mriHeadT *meas.Transform, src []*source.SourceSpace,
	gain *dense.Dense, grad *dense.Dense, ori Orientation) (*Solution, error) {
	if gain == nil {
		return nil, ErrNilSolution
	}

	s := &Solution{
		Info:          info,
		MriHeadT:      mriHeadT,
		Sol:           &Block{Data: gain, RowNames: rowNamesOf(info, gain.Rows())},
		SourceOri:     ori,
		SurfOri:       ori == FixedOrient,
		Src:           src,
		origSol:       gain.Clone(),
		origSourceOri: ori,
	}
	if grad != nil {
		s.SolGrad = &Block{Data: grad, RowNames: s.Sol.RowNames}
		s.origSolGrad = grad.Clone()
	}

	nn, err := nativeOrientations(src, ori)
	if err != nil {
		return nil, err
	}
	s.SourceNN = nn

	if err = s.Validate(); err != nil {
		return nil, err
	}

	return s, nil
}

// rowNamesOf derives row names from the info, or synthesizes them when no
// info is attached (bare matrices in tests).
func rowNamesOf(info *meas.Info, n int) []string {
	if info != nil && info.NChan() == n {
		return info.ChannelNames()
	}
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("CH %03d", i+1)
	}

	return names
}

// nativeOrientations builds the SourceNN for an unconverted solution.
func nativeOrientations(src []*source.SourceSpace, ori Orientation) (*dense.Dense, error) {
	n := 0
	for _, s := range src {
		n += s.NUse()
	}
	if n == 0 {
		return nil, fmt.Errorf("no sources: %w", ErrInvalidSolution)
	}

	if ori == FixedOrient {
		nn, err := dense.NewDense(n, 3)
		if err != nil {
			return nil, err
		}
		g := 0
		for _, s := range src {
			for p := 0; p < s.NUse(); p++ {
				row, rerr := s.Normals.Row(p)
				if rerr != nil {
					return nil, fmt.Errorf("source space %s: %w", s.Hemi, rerr)
				}
				copy(nn.Raw()[g*3:(g+1)*3], row)
				g++
			}
		}

		return nn, nil
	}

	// Free orientation: identity triplet per source (head-frame axes).
	nn, err := dense.NewDense(3*n, 3)
	if err != nil {
		return nil, err
	}
	for g := 0; g < n; g++ {
		for k := 0; k < 3; k++ {
			nn.Raw()[(3*g+k)*3+k] = 1
		}
	}

	return nn, nil
}

// NSource returns the total number of in-use sources across spaces.
func (s *Solution) NSource() int {
	n := 0
	for _, sp := range s.Src {
		n += sp.NUse()
	}

	return n
}

// NChan returns the number of sensor channels (gain rows).
func (s *Solution) NChan() int { return s.Sol.Data.Rows() }

// ChannelNames returns the gain row names in order.
func (s *Solution) ChannelNames() []string { return s.Sol.RowNames }

// IsFixedOrient reports whether the current representation is fixed.
func (s *Solution) IsFixedOrient() bool { return s.SourceOri == FixedOrient }

// OrigSol returns the retained original gain matrix. The returned matrix
// aliases the solution's internal state; clone before mutating.
func (s *Solution) OrigSol() *dense.Dense { return s.origSol }

// OrigSolGrad returns the retained original gradient matrix, or nil.
func (s *Solution) OrigSolGrad() *dense.Dense { return s.origSolGrad }

// OrigSourceOri returns the orientation the solution was computed with.
func (s *Solution) OrigSourceOri() Orientation { return s.origSourceOri }

// Validate enforces the structural invariants from the data model:
// column count = sources x components, SourceNN row count matches the
// component count, row names match gain rows, gradient columns are three
// per gain column, and every source space is itself valid.
func (s *Solution) Validate() error {
	if s == nil || s.Sol == nil || s.Sol.Data == nil {
		return ErrNilSolution
	}
	for _, sp := range s.Src {
		if err := sp.Validate(); err != nil {
			return err
		}
	}

	ncomp := s.NSource() * s.SourceOri.components()
	if s.Sol.NCol() != ncomp {
		return fmt.Errorf("gain has %d columns for %d components: %w", s.Sol.NCol(), ncomp, ErrInvalidSolution)
	}
	if len(s.Sol.RowNames) != s.Sol.Data.Rows() {
		return fmt.Errorf("%d row names for %d rows: %w", len(s.Sol.RowNames), s.Sol.Data.Rows(), ErrInvalidSolution)
	}
	if s.SourceNN == nil || s.SourceNN.Rows() != ncomp || s.SourceNN.Cols() != 3 {
		return fmt.Errorf("orientation rows disagree with %d components: %w", ncomp, ErrInvalidSolution)
	}
	if s.SolGrad != nil && s.SolGrad.NCol() != 3*s.Sol.NCol() {
		return fmt.Errorf("gradient has %d columns for %d gain columns: %w", s.SolGrad.NCol(), s.Sol.NCol(), ErrInvalidSolution)
	}
	if s.origSol != nil && s.origSol.Rows() != s.Sol.Data.Rows() {
		return fmt.Errorf("original gain row count drifted: %w", ErrInvalidSolution)
	}

	return nil
}

// Clone returns a deep copy sharing no mutable state with the receiver.
func (s *Solution) Clone() *Solution {
	cp := &Solution{
		Sol:           s.Sol.clone(),
		SolGrad:       s.SolGrad.clone(),
		SourceOri:     s.SourceOri,
		SurfOri:       s.SurfOri,
		origSourceOri: s.origSourceOri,
	}
	if s.Info != nil {
		cp.Info = s.Info.Clone()
	}
	if s.MriHeadT != nil {
		t := *s.MriHeadT
		cp.MriHeadT = &t
	}
	if s.SourceNN != nil {
		cp.SourceNN = s.SourceNN.Clone()
	}
	cp.Src = make([]*source.SourceSpace, len(s.Src))
	for i, sp := range s.Src {
		cp.Src[i] = sp.Clone()
	}
	if s.origSol != nil {
		cp.origSol = s.origSol.Clone()
	}
	if s.origSolGrad != nil {
		cp.origSolGrad = s.origSolGrad.Clone()
	}

	return cp
}

// String implements fmt.Stringer: a one-line summary with channel and
// source counts and the current orientation state.
func (s *Solution) String() string {
	surf := "head frame"
	if s.SurfOri {
		surf = "surface-aligned"
	}

	return fmt.Sprintf("ForwardSolution | %d channels | %d sources in %d spaces | %s orientation, %s",
		s.NChan(), s.NSource(), len(s.Src), s.SourceOri, surf)
}
