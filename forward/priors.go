// SPDX-License-Identifier: MIT

package forward

import (
	"fmt"
	"math"

	"github.com/neuromag/fieldkit/dense"
)

const (
	opDepthPrior  = "DepthPrior"
	opOrientPrior = "OrientPrior"
)

// DepthPrior computes per-component depth weights compensating the bias
// of sensor arrays toward superficial sources.
//
// Implementation stages:
//   - Stage 1: gather options; exponent must lie in [0, 1]; the "whiten"
//     conditioning mode requires a noise covariance.
//   - Stage 2: per-source sensitivity w = squared gain column norms summed
//     over components (rows scaled by 1/sqrt(cov diagonal) when whitening).
//   - Stage 3: clamp w below wmax/limit² up to that floor, then weight
//     each source by (w/wmax)^(-exp), replicated across its components.
//
// An exponent of 0 yields uniform weights. The result has one entry per
// gain column (nsource fixed, 3*nsource free).
//
// Errors:
//   - ErrNilSolution, ErrExpRange, ErrDepthMode, ErrNeedCovariance.
func DepthPrior(s *Solution, opts ...DepthOption) ([]float64, error) {
	if s == nil || s.Sol == nil || s.Sol.Data == nil {
		return nil, opErr(opDepthPrior, ErrNilSolution)
	}
	cfg := gatherDepthOptions(opts)
	if cfg.exp < 0 || cfg.exp > 1 {
		return nil, opErr(opDepthPrior, fmt.Errorf("exp=%g: %w", cfg.exp, ErrExpRange))
	}
	switch cfg.limitMode {
	case "":
	case "whiten":
		if cfg.noiseCov == nil {
			return nil, opErr(opDepthPrior, ErrNeedCovariance)
		}
	default:
		return nil, opErr(opDepthPrior, fmt.Errorf("mode %q: %w", cfg.limitMode, ErrDepthMode))
	}

	gain := s.Sol.Data
	if cfg.limitMode == "whiten" {
		var err error
		if gain, err = whitenRows(gain, cfg.noiseCov); err != nil {
			return nil, opErr(opDepthPrior, err)
		}
	}

	norms, err := dense.ColumnNorms2(gain)
	if err != nil {
		return nil, opErr(opDepthPrior, err)
	}

	comp := s.SourceOri.components()
	nsrc := len(norms) / comp
	w := make([]float64, nsrc)
	wmax := 0.0
	for g := 0; g < nsrc; g++ {
		for c := 0; c < comp; c++ {
			w[g] += norms[g*comp+c]
		}
		if w[g] > wmax {
			wmax = w[g]
		}
	}
	if wmax == 0 {
		return nil, opErr(opDepthPrior, fmt.Errorf("all-zero gain: %w", ErrInvalidSolution))
	}

	if cfg.limit > 0 {
		floor := wmax / (cfg.limit * cfg.limit)
		for g := range w {
			if w[g] < floor {
				w[g] = floor
			}
		}
	}

	prior := make([]float64, len(norms))
	for g := 0; g < nsrc; g++ {
		p := math.Pow(w[g]/wmax, -cfg.exp)
		for c := 0; c < comp; c++ {
			prior[g*comp+c] = p
		}
	}

	return prior, nil
}

// whitenRows scales each gain row by the inverse square root of the
// matching noise-covariance diagonal entry.
func whitenRows(gain, cov *dense.Dense) (*dense.Dense, error) {
	if cov.Rows() != gain.Rows() || cov.Cols() != gain.Rows() {
		return nil, fmt.Errorf("covariance %dx%d for %d channels: %w",
			cov.Rows(), cov.Cols(), gain.Rows(), dense.ErrDimensionMismatch)
	}
	out := gain.Clone()
	raw := out.Raw()
	nc := out.Cols()
	for i := 0; i < out.Rows(); i++ {
		v, err := cov.At(i, i)
		if err != nil {
			return nil, err
		}
		if v <= 0 {
			return nil, fmt.Errorf("covariance diagonal %d is %g: %w", i, v, dense.ErrBadShape)
		}
		scale := 1 / math.Sqrt(v)
		for j := 0; j < nc; j++ {
			raw[i*nc+j] *= scale
		}
	}

	return out, nil
}

// OrientPrior computes per-component orientation weights expressing how
// strongly sources are constrained to the surface normal. loose is the
// variance allowed to the tangential components, in [0, 1].
//
// Rules:
//   - fixed solution: loose must be 0; the prior is all ones (nsource).
//   - free, loose == 1: unconstrained, all ones (3*nsource).
//   - free, loose < 1: requires a surface-aligned solution; each source
//     gets [loose, loose, 1] over its (tangent, tangent, normal) triplet.
//
// Errors:
//   - ErrNilSolution, ErrLooseRange, ErrFixedLoose, ErrNeedSurfOri.
func OrientPrior(s *Solution, loose float64) ([]float64, error) {
	if s == nil || s.Sol == nil || s.Sol.Data == nil {
		return nil, opErr(opOrientPrior, ErrNilSolution)
	}
	if loose < 0 || loose > 1 {
		return nil, opErr(opOrientPrior, fmt.Errorf("loose=%g: %w", loose, ErrLooseRange))
	}

	if s.IsFixedOrient() {
		if loose != 0 {
			return nil, opErr(opOrientPrior, ErrFixedLoose)
		}
		prior := make([]float64, s.NSource())
		for i := range prior {
			prior[i] = 1
		}

		return prior, nil
	}

	prior := make([]float64, 3*s.NSource())
	if loose == 1 {
		for i := range prior {
			prior[i] = 1
		}

		return prior, nil
	}

	if !s.SurfOri {
		return nil, opErr(opOrientPrior, ErrNeedSurfOri)
	}
	for g := 0; g < s.NSource(); g++ {
		prior[3*g] = loose
		prior[3*g+1] = loose
		prior[3*g+2] = 1
	}

	return prior, nil
}
