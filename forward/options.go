// SPDX-License-Identifier: MIT

package forward

import (
	"github.com/neuromag/fieldkit/dense"
	"github.com/neuromag/fieldkit/diag"
)

// convertOptions carries the orientation-conversion configuration.
type convertOptions struct {
	surfOri    bool
	forceFixed bool
	useCPS     bool
	copy       bool
}

// ConvertOption configures Convert. Defaults: head-frame free orientation,
// patch statistics enabled, operate on a copy.
type ConvertOption func(*convertOptions)

// SurfOri requests surface-aligned component triplets: per source, two
// tangential components followed by the surface-normal component.
func SurfOri(on bool) ConvertOption {
	return func(o *convertOptions) { o.surfOri = on }
}

// ForceFixed requests a single surface-normal component per source.
// Implies surface alignment.
func ForceFixed(on bool) ConvertOption {
	return func(o *convertOptions) { o.forceFixed = on }
}

// UseCPS selects cortical-patch-statistics normals for surface alignment
// when the source spaces carry them. On by default; sources without patch
// data silently fall back to their vertex normals.
func UseCPS(on bool) ConvertOption {
	return func(o *convertOptions) { o.useCPS = on }
}

// InPlace mutates the receiver instead of returning a converted copy.
func InPlace() ConvertOption {
	return func(o *convertOptions) { o.copy = false }
}

// gatherConvertOptions applies opts over the defaults.
func gatherConvertOptions(opts []ConvertOption) convertOptions {
	cfg := convertOptions{useCPS: true, copy: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.forceFixed {
		cfg.surfOri = true
	}

	return cfg
}

// applyOptions carries the source-projection configuration.
type applyOptions struct {
	start int
	stop  int
	sink  diag.Sink
}

// ApplyOption configures Apply and ApplyRaw. Defaults: full time window,
// advisories discarded.
type ApplyOption func(*applyOptions)

// Start sets the first time sample (inclusive) of the projection window.
func Start(i int) ApplyOption {
	return func(o *applyOptions) { o.start = i }
}

// Stop sets the end sample (exclusive) of the projection window. Negative
// means "through the last sample"; values past the end are clamped.
func Stop(i int) ApplyOption {
	return func(o *applyOptions) { o.stop = i }
}

// WithSink routes advisory diagnostics (amplitude and polarity checks) to
// the given sink. A nil sink discards them.
func WithSink(s diag.Sink) ApplyOption {
	return func(o *applyOptions) { o.sink = s }
}

// gatherApplyOptions applies opts over the defaults.
func gatherApplyOptions(opts []ApplyOption) applyOptions {
	cfg := applyOptions{start: 0, stop: -1}
	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

// depthOptions carries the depth-prior configuration.
type depthOptions struct {
	exp       float64
	limit     float64
	limitMode string
	noiseCov  *dense.Dense
}

// DepthOption configures DepthPrior. Defaults: exponent 0.8, limit 10.
type DepthOption func(*depthOptions)

// Exp sets the depth-weighting exponent, in [0, 1].
func Exp(e float64) DepthOption {
	return func(o *depthOptions) { o.exp = e }
}

// Limit caps the dynamic range of the depth weights: sensitivities below
// max/limit² are clamped before exponentiation. Zero disables the clamp.
func Limit(l float64) DepthOption {
	return func(o *depthOptions) { o.limit = l }
}

// LimitDepthChs selects how the channels entering the depth computation
// are conditioned. The only recognized mode is "whiten", which requires a
// noise covariance; the empty string disables conditioning.
func LimitDepthChs(mode string) DepthOption {
	return func(o *depthOptions) { o.limitMode = mode }
}

// WithNoiseCov supplies the noise covariance for whitened depth limiting.
func WithNoiseCov(cov *dense.Dense) DepthOption {
	return func(o *depthOptions) { o.noiseCov = cov }
}

// gatherDepthOptions applies opts over the defaults.
func gatherDepthOptions(opts []DepthOption) depthOptions {
	cfg := depthOptions{exp: 0.8, limit: 10}
	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}
