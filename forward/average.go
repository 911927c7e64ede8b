// SPDX-License-Identifier: MIT

package forward

import "github.com/neuromag/fieldkit/dense"

const opAverage = "Average"

// Average combines solutions over identical geometry into one by weighted
// mean. Weights may be nil (equal weighting); otherwise one non-negative
// weight per solution, normalized to sum to one before accumulation. The
// retained original matrices are averaged with the same weights, so the
// result converts like any other solution.
//
// Only shapes and orientation state are checked across inputs; callers
// are responsible for averaging solutions of the same geometry.
//
// Errors (in check order):
//   - ErrNotSolutionSlice: nil slice or nil element.
//   - ErrEmptyList: zero solutions.
//   - ErrWeightCount: len(weights) != len(solutions).
//   - ErrNegativeWeight, ErrZeroWeights.
//   - ErrInvalidSolution: inputs disagree in shape or orientation.
func Average(sols []*Solution, weights []float64) (*Solution, error) {
	if sols == nil {
		return nil, opErr(opAverage, ErrNotSolutionSlice)
	}
	if len(sols) == 0 {
		return nil, opErr(opAverage, ErrEmptyList)
	}
	for _, s := range sols {
		if s == nil || s.Sol == nil || s.Sol.Data == nil {
			return nil, opErr(opAverage, ErrNotSolutionSlice)
		}
	}
	if weights != nil && len(weights) != len(sols) {
		return nil, opErr(opAverage, ErrWeightCount)
	}

	w := make([]float64, len(sols))
	if weights == nil {
		for i := range w {
			w[i] = 1
		}
	} else {
		copy(w, weights)
	}
	sum := 0.0
	for _, v := range w {
		if v < 0 {
			return nil, opErr(opAverage, ErrNegativeWeight)
		}
		sum += v
	}
	if sum == 0 {
		return nil, opErr(opAverage, ErrZeroWeights)
	}
	for i := range w {
		w[i] /= sum
	}

	first := sols[0]
	for _, s := range sols[1:] {
		if s.Sol.Data.Rows() != first.Sol.Data.Rows() ||
			s.Sol.Data.Cols() != first.Sol.Data.Cols() ||
			s.SourceOri != first.SourceOri ||
			s.SurfOri != first.SurfOri ||
			(s.SolGrad == nil) != (first.SolGrad == nil) {
			return nil, opErr(opAverage, ErrInvalidSolution)
		}
	}

	out := first.Clone()
	if err := accumulate(out.Sol.Data, w, sols, func(s *Solution) *dense.Dense { return s.Sol.Data }); err != nil {
		return nil, opErr(opAverage, err)
	}
	if out.SolGrad != nil {
		if err := accumulate(out.SolGrad.Data, w, sols, func(s *Solution) *dense.Dense { return s.SolGrad.Data }); err != nil {
			return nil, opErr(opAverage, err)
		}
	}
	if out.origSol != nil {
		if err := accumulate(out.origSol, w, sols, func(s *Solution) *dense.Dense { return s.origSol }); err != nil {
			return nil, opErr(opAverage, err)
		}
	}
	if out.origSolGrad != nil {
		if err := accumulate(out.origSolGrad, w, sols, func(s *Solution) *dense.Dense { return s.origSolGrad }); err != nil {
			return nil, opErr(opAverage, err)
		}
	}

	return out, nil
}

// accumulate overwrites dst with sum_i w[i]*pick(sols[i]).
func accumulate(dst *dense.Dense, w []float64, sols []*Solution, pick func(*Solution) *dense.Dense) error {
	if err := dense.ScaleInPlace(dst, 0); err != nil {
		return err
	}
	for i, s := range sols {
		m := pick(s)
		if m == nil {
			return ErrInvalidSolution
		}
		if err := dense.AddScaledInPlace(dst, w[i], m); err != nil {
			return err
		}
	}

	return nil
}
