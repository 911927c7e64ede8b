// Package fieldtrip imports FieldTrip-style data containers into
// measurement objects.
//
// 🚀 The adapter works on decoded records, not on MAT files directly: a
// Record is the already-parsed content of a FieldTrip raw/epoched/
// timelocked structure (trial blocks, time axes, channel labels, sampling
// rates, trialinfo, sensor descriptions), as produced by an external
// MAT-to-CBOR dump step and loaded with LoadRecord. Records saved by
// MATLAB v7.3 store their matrices transposed; LoadRecord undoes that, so
// every Trial block is channels × samples regardless of origin.
//
// ReadRaw, ReadEpochs and ReadEvoked turn a Record into the matching
// container. Structural problems are hard errors (epoched data through
// ReadRaw, heterogeneous cell arrays, non-uniform time axes, files saved
// before the FieldTrip schema change). Recoverable oddities — no sensor
// metadata supplied, multiple sampling rates, metadata channels missing
// from the file — are advisories on the diag sink, with a documented
// fallback taken.
package fieldtrip
