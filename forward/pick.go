// SPDX-License-Identifier: MIT

package forward

import (
	"fmt"

	"github.com/neuromag/fieldkit/dense"
	"github.com/neuromag/fieldkit/meas"
)

const (
	opPickChannels = "PickChannels"
	opPickKinds    = "PickKinds"
	opEqualize     = "EqualizeChannels"
)

// PickChannels returns a copy of the solution restricted to the named
// channels. With ordered, the rows follow the request order and every
// name must exist (meas.ErrUnknownChannel otherwise); without it, rows
// keep the solution's order and unknown names are skipped, failing with
// meas.ErrEmptySelection only when nothing matches.
func PickChannels(s *Solution, include []string, ordered bool) (*Solution, error) {
	if s == nil || s.Sol == nil || s.Sol.Data == nil {
		return nil, opErr(opPickChannels, ErrNilSolution)
	}

	sel, err := selectByName(s.Sol.RowNames, include, ordered)
	if err != nil {
		return nil, opErr(opPickChannels, err)
	}

	out, err := subsetRows(s, sel)
	if err != nil {
		return nil, opErr(opPickChannels, err)
	}

	return out, nil
}

// PickKinds returns a copy restricted to channels of the given kinds, in
// the solution's order. Requires an attached Info (the gain rows alone do
// not carry channel kinds).
func PickKinds(s *Solution, kinds ...meas.ChannelKind) (*Solution, error) {
	if s == nil || s.Sol == nil || s.Sol.Data == nil {
		return nil, opErr(opPickKinds, ErrNilSolution)
	}
	if s.Info == nil || s.Info.NChan() != s.NChan() {
		return nil, opErr(opPickKinds, fmt.Errorf("no channel metadata attached: %w", ErrInvalidSolution))
	}

	sel, err := s.Info.PickKinds(kinds...)
	if err != nil {
		return nil, opErr(opPickKinds, err)
	}

	out, err := subsetRows(s, sel)
	if err != nil {
		return nil, opErr(opPickKinds, err)
	}

	return out, nil
}

// EqualizeChannels reduces every solution to the channels they all share,
// in the first solution's channel order, and returns the new copies.
// Solutions that already match are still copied, so the inputs are never
// mutated.
//
// Errors:
//   - ErrNotSolutionSlice, ErrEmptyList, meas.ErrEmptySelection (no
//     channel common to all solutions).
func EqualizeChannels(sols []*Solution) ([]*Solution, error) {
	if sols == nil {
		return nil, opErr(opEqualize, ErrNotSolutionSlice)
	}
	if len(sols) == 0 {
		return nil, opErr(opEqualize, ErrEmptyList)
	}
	for _, s := range sols {
		if s == nil || s.Sol == nil || s.Sol.Data == nil {
			return nil, opErr(opEqualize, ErrNotSolutionSlice)
		}
	}

	common := append([]string(nil), sols[0].Sol.RowNames...)
	for _, s := range sols[1:] {
		member := make(map[string]struct{}, len(s.Sol.RowNames))
		for _, name := range s.Sol.RowNames {
			member[name] = struct{}{}
		}
		kept := common[:0]
		for _, name := range common {
			if _, ok := member[name]; ok {
				kept = append(kept, name)
			}
		}
		common = kept
	}
	if len(common) == 0 {
		return nil, opErr(opEqualize, meas.ErrEmptySelection)
	}

	out := make([]*Solution, len(sols))
	for i, s := range sols {
		picked, err := PickChannels(s, common, true)
		if err != nil {
			return nil, opErr(opEqualize, err)
		}
		out[i] = picked
	}

	return out, nil
}

// selectByName resolves channel names to row indices with the same
// ordered/unordered semantics as meas.Info.PickNames.
func selectByName(names, include []string, ordered bool) ([]int, error) {
	index := make(map[string]int, len(names))
	for i, name := range names {
		index[name] = i
	}

	if ordered {
		sel := make([]int, 0, len(include))
		for _, name := range include {
			i, ok := index[name]
			if !ok {
				return nil, fmt.Errorf("channel %q: %w", name, meas.ErrUnknownChannel)
			}
			sel = append(sel, i)
		}
		if len(sel) == 0 {
			return nil, meas.ErrEmptySelection
		}

		return sel, nil
	}

	member := make(map[string]struct{}, len(include))
	for _, name := range include {
		member[name] = struct{}{}
	}
	var sel []int
	for i, name := range names {
		if _, ok := member[name]; ok {
			sel = append(sel, i)
		}
	}
	if len(sel) == 0 {
		return nil, meas.ErrEmptySelection
	}

	return sel, nil
}

// subsetRows copies s keeping only the gain rows in sel (order preserved),
// slicing the gradient, retained originals, row names, and Info alongside.
func subsetRows(s *Solution, sel []int) (*Solution, error) {
	out := s.Clone()

	var err error
	if out.Sol.Data, err = dense.SelectRows(s.Sol.Data, sel); err != nil {
		return nil, err
	}
	names := make([]string, len(sel))
	for i, r := range sel {
		names[i] = s.Sol.RowNames[r]
	}
	out.Sol.RowNames = names

	if s.SolGrad != nil {
		if out.SolGrad.Data, err = dense.SelectRows(s.SolGrad.Data, sel); err != nil {
			return nil, err
		}
		out.SolGrad.RowNames = names
	}
	if s.origSol != nil {
		if out.origSol, err = dense.SelectRows(s.origSol, sel); err != nil {
			return nil, err
		}
	}
	if s.origSolGrad != nil {
		if out.origSolGrad, err = dense.SelectRows(s.origSolGrad, sel); err != nil {
			return nil, err
		}
	}
	if s.Info != nil && s.Info.NChan() == s.NChan() {
		out.Info = s.Info.Subset(sel)
	}

	return out, nil
}
