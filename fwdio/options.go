// SPDX-License-Identifier: MIT

package fwdio

import "github.com/neuromag/fieldkit/diag"

// ioOptions carries the reader/writer configuration.
type ioOptions struct {
	overwrite bool
	sink      diag.Sink
}

// Option configures Write, Read and their CBOR counterparts.
type Option func(*ioOptions)

// Overwrite allows a writer to replace an existing file. Off by default.
func Overwrite(on bool) Option {
	return func(o *ioOptions) { o.overwrite = on }
}

// WithSink routes advisory diagnostics (extension and stored-orientation
// notes) to the given sink. A nil sink discards them.
func WithSink(s diag.Sink) Option {
	return func(o *ioOptions) { o.sink = s }
}

// gatherOptions applies opts over the defaults.
func gatherOptions(opts []Option) ioOptions {
	var cfg ioOptions
	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}
