// SPDX-License-Identifier: MIT

package forward

import (
	"fmt"
	"math"

	"github.com/neuromag/fieldkit/dense"
	"github.com/neuromag/fieldkit/diag"
	"github.com/neuromag/fieldkit/meas"
	"github.com/neuromag/fieldkit/source"
)

const (
	opApply    = "Apply"
	opApplyRaw = "ApplyRaw"
	opCollapse = "CollapseVector"

	// largeAmplitude is the advisory threshold on |stc| in Ampere-meters;
	// physiological dipole moments stay well below it.
	largeAmplitude = 1e-7
)

// Apply projects a source estimate through the solution's gain matrix and
// packages the result as an Evoked response. The solution must be in
// fixed orientation (one gain column per source) and must cover every
// vertex the estimate is defined on; extra solution vertices are ignored.
//
// Implementation stages:
//   - Stage 1: gather options, resolve the [start, stop) sample window.
//   - Stage 2: advisory checks on the estimate (polarity, amplitude).
//   - Stage 3: map estimate rows to gain columns, multiply, set timing:
//     TMin = stc.TMin + start*stc.TStep, NAve = 1.
//
// Errors:
//   - ErrNilSolution, ErrNeedFixed, ErrSpaceCount, ErrVertexMismatch,
//     ErrBadWindow.
func Apply(s *Solution, stc *source.Estimate, opts ...ApplyOption) (*meas.Evoked, error) {
	data, tmin, err := project(opApply, s, stc, opts)
	if err != nil {
		return nil, err
	}

	ev, err := meas.NewEvoked(infoFor(s), data, tmin)
	if err != nil {
		return nil, opErr(opApply, err)
	}
	ev.Comment = "forward projection"

	return ev, nil
}

// ApplyRaw is Apply for continuous output: the projected data becomes a
// Raw segment with FirstSamp = round(tmin * sfreq), so downstream sample
// arithmetic lines up with the estimate's own clock.
func ApplyRaw(s *Solution, stc *source.Estimate, opts ...ApplyOption) (*meas.Raw, error) {
	data, tmin, err := project(opApplyRaw, s, stc, opts)
	if err != nil {
		return nil, err
	}

	first := int(math.Round(tmin * stc.SFreq()))
	raw, err := meas.NewRaw(infoFor(s), data, first)
	if err != nil {
		return nil, opErr(opApplyRaw, err)
	}

	return raw, nil
}

// project is the shared projection core of Apply and ApplyRaw.
func project(op string, s *Solution, stc *source.Estimate, opts []ApplyOption) (*dense.Dense, float64, error) {
	if s == nil || s.Sol == nil || s.Sol.Data == nil {
		return nil, 0, opErr(op, ErrNilSolution)
	}
	if !s.IsFixedOrient() {
		return nil, 0, opErr(op, ErrNeedFixed)
	}
	if stc == nil || len(stc.Vertices) != len(s.Src) {
		return nil, 0, opErr(op, ErrSpaceCount)
	}
	cfg := gatherApplyOptions(opts)

	start, stop := cfg.start, cfg.stop
	if stop < 0 || stop > stc.NTimes() {
		stop = stc.NTimes()
	}
	if start < 0 {
		start = 0
	}
	if start >= stop {
		return nil, 0, opErr(op, ErrBadWindow)
	}

	advise(cfg.sink, stc)

	cols, rows, err := estimateColumns(s, stc)
	if err != nil {
		return nil, 0, opErr(op, err)
	}

	gain, err := dense.SelectColumns(s.Sol.Data, cols)
	if err != nil {
		return nil, 0, opErr(op, err)
	}
	series, err := window(stc.Data, rows, start, stop)
	if err != nil {
		return nil, 0, opErr(op, err)
	}
	data, err := dense.Mul(gain, series)
	if err != nil {
		return nil, 0, opErr(op, err)
	}

	return data, stc.TMin + float64(start)*stc.TStep, nil
}

// advise emits the non-fatal sanity checks on the estimate.
func advise(sink diag.Sink, stc *source.Estimate) {
	raw := stc.Data.Raw()
	onlyPositive := true
	for _, v := range raw {
		if v < 0 {
			onlyPositive = false
			break
		}
	}
	if onlyPositive {
		diag.Warnf(sink, diag.CodeOnlyPositive,
			"source estimate has no negative values; currents are signed quantities")
	}
	if stc.Data.MaxAbs() > largeAmplitude {
		diag.Warnf(sink, diag.CodeLargeAmplitude,
			"source amplitudes exceed %g Am; check the estimate's units", largeAmplitude)
	}
}

// estimateColumns maps the estimate's vertices to gain columns and data
// rows: per space, each estimate vertex must exist in the solution's
// vertno, and the resulting index sets stay in estimate row order.
func estimateColumns(s *Solution, stc *source.Estimate) (cols, rows []int, err error) {
	base := 0
	row := 0
	for i, sp := range s.Src {
		posOf := make(map[int]int, sp.NUse())
		for p, v := range sp.Vertno {
			posOf[v] = p
		}
		for _, v := range stc.Vertices[i] {
			p, ok := posOf[v]
			if !ok {
				return nil, nil, fmt.Errorf("vertex %d of space %s: %w", v, sp.Hemi, ErrVertexMismatch)
			}
			cols = append(cols, base+p)
			rows = append(rows, row)
			row++
		}
		base += sp.NUse()
	}

	return cols, rows, nil
}

// window gathers rows of m restricted to columns [start, stop).
func window(m *dense.Dense, rows []int, start, stop int) (*dense.Dense, error) {
	sel, err := dense.SelectRows(m, rows)
	if err != nil {
		return nil, err
	}
	if start == 0 && stop == m.Cols() {
		return sel, nil
	}
	cols := make([]int, stop-start)
	for i := range cols {
		cols[i] = start + i
	}

	return dense.SelectColumns(sel, cols)
}

// infoFor returns the measurement info of the projected output: the
// solution's own info when its channels match the gain rows, otherwise a
// synthesized one from the row names.
func infoFor(s *Solution) *meas.Info {
	if s.Info != nil && s.Info.NChan() == s.NChan() {
		return s.Info
	}
	chs := make([]meas.Channel, s.NChan())
	for i, name := range s.Sol.RowNames {
		chs[i] = meas.Channel{Name: name, Kind: meas.Misc}
	}
	sf := 1000.0
	if s.Info != nil && s.Info.SFreq > 0 {
		sf = s.Info.SFreq
	}

	return &meas.Info{Channels: chs, SFreq: sf}
}

// CollapseVector turns a three-component vector estimate into a scalar
// one by projecting each source's component triplet onto the solution's
// orientation vectors. The solution must be fixed (its SourceNN rows are
// the projection directions) and the vector estimate must cover the
// solution's sources exactly.
//
// Errors:
//   - ErrNilSolution, ErrNeedFixed, ErrShapeMismatch via ErrSpaceCount,
//     ErrVertexMismatch (row count disagrees with solution sources).
func CollapseVector(s *Solution, vstc *source.VectorEstimate) (*source.Estimate, error) {
	if s == nil || s.Sol == nil || s.Sol.Data == nil {
		return nil, opErr(opCollapse, ErrNilSolution)
	}
	if !s.IsFixedOrient() {
		return nil, opErr(opCollapse, ErrNeedFixed)
	}
	if vstc == nil || len(vstc.Vertices) != len(s.Src) {
		return nil, opErr(opCollapse, ErrSpaceCount)
	}
	if vstc.NSources() != s.NSource() {
		return nil, opErr(opCollapse, fmt.Errorf("%d vector sources for %d solution sources: %w",
			vstc.NSources(), s.NSource(), ErrVertexMismatch))
	}

	nsrc, nt := vstc.NSources(), vstc.NTimes()
	out, err := dense.NewDense(nsrc, nt)
	if err != nil {
		return nil, opErr(opCollapse, err)
	}
	vr, or, nr := vstc.Data.Raw(), out.Raw(), s.SourceNN.Raw()
	for g := 0; g < nsrc; g++ {
		nx, ny, nz := nr[g*3], nr[g*3+1], nr[g*3+2]
		for t := 0; t < nt; t++ {
			or[g*nt+t] = vr[(3*g)*nt+t]*nx + vr[(3*g+1)*nt+t]*ny + vr[(3*g+2)*nt+t]*nz
		}
	}

	stc, err := source.NewEstimate(out, vstc.Vertices, vstc.TMin, vstc.TStep)
	if err != nil {
		return nil, opErr(opCollapse, err)
	}

	return stc, nil
}
