// SPDX-License-Identifier: MIT

package fieldtrip

import (
	"fmt"
	"math"
	"strings"

	"github.com/neuromag/fieldkit/dense"
	"github.com/neuromag/fieldkit/diag"
	"github.com/neuromag/fieldkit/meas"
)

// readOptions carries the reader configuration.
type readOptions struct {
	sink diag.Sink
}

// Option configures the record readers.
type Option func(*readOptions)

// WithSink routes advisory diagnostics to the given sink.
func WithSink(s diag.Sink) Option {
	return func(o *readOptions) { o.sink = s }
}

func gatherOptions(opts []Option) readOptions {
	var cfg readOptions
	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

// ReadRaw converts a single-trial record into a continuous Raw segment.
// FirstSamp is derived from the trial's time axis, so sample arithmetic
// matches the recording clock.
//
// Errors:
//   - ErrObsoleteSchema, ErrCellArray, ErrEpochedAsRaw, shape errors from
//     the container constructors.
func ReadRaw(rec *Record, info *meas.Info, opts ...Option) (*meas.Raw, error) {
	cfg := gatherOptions(opts)
	if err := validateRecord(rec); err != nil {
		return nil, err
	}
	if rec.NTrials() > 1 {
		return nil, fmt.Errorf("ReadRaw: %d trials: %w", rec.NTrials(), ErrEpochedAsRaw)
	}

	sfreq := resolveRate(rec, cfg.sink)
	outInfo, sel, err := resolveInfo(rec, info, sfreq, cfg.sink)
	if err != nil {
		return nil, fmt.Errorf("ReadRaw: %w", err)
	}
	data, err := dense.SelectRows(rec.Trial[0], sel)
	if err != nil {
		return nil, fmt.Errorf("ReadRaw: %w", err)
	}

	tmin := 0.0
	if len(rec.Time) > 0 && len(rec.Time[0]) > 0 {
		tmin = rec.Time[0][0]
	}

	raw, err := meas.NewRaw(outInfo, data, int(math.Round(tmin*sfreq)))
	if err != nil {
		return nil, fmt.Errorf("ReadRaw: %w", err)
	}

	return raw, nil
}

// ReadEpochs converts a multi-trial record into Epochs. Every trial must
// share one shape and one time axis. Trialinfo rows, when present, become
// the epochs' metadata and their first column the event codes.
//
// Errors:
//   - ErrObsoleteSchema, ErrCellArray, ErrNonUniformTime.
func ReadEpochs(rec *Record, info *meas.Info, opts ...Option) (*meas.Epochs, error) {
	cfg := gatherOptions(opts)
	if err := validateRecord(rec); err != nil {
		return nil, err
	}
	if err := uniformTime(rec); err != nil {
		return nil, err
	}

	sfreq := resolveRate(rec, cfg.sink)
	outInfo, sel, err := resolveInfo(rec, info, sfreq, cfg.sink)
	if err != nil {
		return nil, fmt.Errorf("ReadEpochs: %w", err)
	}

	blocks := make([]*dense.Dense, 0, rec.NTrials())
	for i, tr := range rec.Trial {
		if tr.Rows() != rec.Trial[0].Rows() || tr.Cols() != rec.Trial[0].Cols() {
			return nil, fmt.Errorf("ReadEpochs: trial %d shape %dx%d: %w",
				i, tr.Rows(), tr.Cols(), ErrCellArray)
		}
		b, serr := dense.SelectRows(tr, sel)
		if serr != nil {
			return nil, fmt.Errorf("ReadEpochs: trial %d: %w", i, serr)
		}
		blocks = append(blocks, b)
	}

	events, err := defaultEvents(rec)
	if err != nil {
		return nil, fmt.Errorf("ReadEpochs: %w", err)
	}

	tmin := 0.0
	if len(rec.Time) > 0 && len(rec.Time[0]) > 0 {
		tmin = rec.Time[0][0]
	}
	ep, err := meas.NewEpochs(outInfo, blocks, events, tmin)
	if err != nil {
		return nil, fmt.Errorf("ReadEpochs: %w", err)
	}
	if rec.TrialInfo != nil {
		meta := make([][]float64, rec.TrialInfo.Rows())
		for i := range meta {
			row, rerr := rec.TrialInfo.Row(i)
			if rerr != nil {
				return nil, fmt.Errorf("ReadEpochs: %w", rerr)
			}
			meta[i] = append([]float64(nil), row...)
		}
		ep.Metadata = meta
	}

	return ep, nil
}

// ReadEvoked converts a record into an averaged response: directly for a
// single (timelocked) block, via the epoch mean for multi-trial records.
func ReadEvoked(rec *Record, info *meas.Info, opts ...Option) (*meas.Evoked, error) {
	cfg := gatherOptions(opts)
	if err := validateRecord(rec); err != nil {
		return nil, err
	}

	if rec.NTrials() == 1 {
		sfreq := resolveRate(rec, cfg.sink)
		outInfo, sel, err := resolveInfo(rec, info, sfreq, cfg.sink)
		if err != nil {
			return nil, fmt.Errorf("ReadEvoked: %w", err)
		}
		data, err := dense.SelectRows(rec.Trial[0], sel)
		if err != nil {
			return nil, fmt.Errorf("ReadEvoked: %w", err)
		}
		tmin := 0.0
		if len(rec.Time) > 0 && len(rec.Time[0]) > 0 {
			tmin = rec.Time[0][0]
		}
		ev, err := meas.NewEvoked(outInfo, data, tmin)
		if err != nil {
			return nil, fmt.Errorf("ReadEvoked: %w", err)
		}

		return ev, nil
	}

	ep, err := ReadEpochs(rec, info, opts...)
	if err != nil {
		return nil, err
	}

	return ep.Average()
}

// CreateEvents builds an event matrix from the record's trialinfo: one
// [sample, 0, code] row per trial, samples laid end to end, codes taken
// from the given trialinfo column.
//
// Errors:
//   - ErrTrialInfoColumn (no trialinfo, or column outside it).
func CreateEvents(rec *Record, column int) ([][3]int, error) {
	if rec == nil || rec.TrialInfo == nil {
		return nil, fmt.Errorf("CreateEvents: record has no trialinfo: %w", ErrTrialInfoColumn)
	}
	if column < 0 || column >= rec.TrialInfo.Cols() {
		return nil, fmt.Errorf("CreateEvents: column %d of %d: %w",
			column, rec.TrialInfo.Cols(), ErrTrialInfoColumn)
	}

	ntimes := 0
	if rec.NTrials() > 0 {
		ntimes = rec.Trial[0].Cols()
	}
	events := make([][3]int, rec.TrialInfo.Rows())
	for i := range events {
		v, err := rec.TrialInfo.At(i, column)
		if err != nil {
			return nil, fmt.Errorf("CreateEvents: %w", err)
		}
		events[i] = [3]int{i * ntimes, 0, int(v)}
	}

	return events, nil
}

// defaultEvents derives epoch events: trialinfo column 0 when present,
// otherwise a constant code of 1, with trials laid end to end.
func defaultEvents(rec *Record) ([][3]int, error) {
	if rec.TrialInfo != nil {
		if rec.TrialInfo.Rows() != rec.NTrials() {
			return nil, fmt.Errorf("%d trialinfo rows for %d trials: %w",
				rec.TrialInfo.Rows(), rec.NTrials(), ErrFormat)
		}

		return CreateEvents(rec, 0)
	}

	ntimes := rec.Trial[0].Cols()
	events := make([][3]int, rec.NTrials())
	for i := range events {
		events[i] = [3]int{i * ntimes, 0, 1}
	}

	return events, nil
}

// validateRecord applies the structural hard errors shared by all
// readers.
func validateRecord(rec *Record) error {
	if rec == nil {
		return ErrFormat
	}
	if rec.CellArray {
		return ErrCellArray
	}
	if rec.NTrials() == 0 || len(rec.Label) == 0 {
		return ErrObsoleteSchema
	}
	for _, tr := range rec.Trial {
		if tr.Rows() != len(rec.Label) {
			return fmt.Errorf("%d labels for %d data rows: %w", len(rec.Label), tr.Rows(), ErrFormat)
		}
	}

	return nil
}

// uniformTime requires every trial's time axis to match the first one.
func uniformTime(rec *Record) error {
	if len(rec.Time) <= 1 {
		return nil
	}
	first := rec.Time[0]
	for i, ts := range rec.Time[1:] {
		if len(ts) != len(first) {
			return fmt.Errorf("trial %d has %d samples, trial 0 has %d: %w",
				i+1, len(ts), len(first), ErrNonUniformTime)
		}
		for j := range ts {
			if ts[j] != first[j] {
				return fmt.Errorf("trial %d sample %d: %w", i+1, j, ErrNonUniformTime)
			}
		}
	}

	return nil
}

// resolveRate picks the sampling rate, advising when the record names
// several. Falls back to the time axis when no rate is recorded.
func resolveRate(rec *Record, sink diag.Sink) float64 {
	sfreq, multiple := rec.rate()
	if multiple {
		diag.Warnf(sink, diag.CodeMultipleRates,
			"record names several sampling rates; using the first (%g Hz)", sfreq)
	}
	if sfreq > 0 {
		return sfreq
	}
	if len(rec.Time) > 0 && len(rec.Time[0]) > 1 {
		return 1.0 / (rec.Time[0][1] - rec.Time[0][0])
	}

	return 1
}

// resolveInfo matches the supplied metadata against the record's labels.
// With no metadata, best-effort Info is synthesized from the labels
// (CodeNoInfo). Metadata channels absent from the file are dropped with a
// CodeMissingChannels advisory. The returned selection indexes the trial
// rows backing the returned Info, in file order.
func resolveInfo(rec *Record, info *meas.Info, sfreq float64, sink diag.Sink) (*meas.Info, []int, error) {
	if info == nil {
		diag.Warnf(sink, diag.CodeNoInfo,
			"no sensor metadata supplied; synthesizing channel info from the file labels")
		sel := make([]int, len(rec.Label))
		for i := range sel {
			sel[i] = i
		}

		return synthesizeInfo(rec.Label, sfreq), sel, nil
	}

	fileRow := make(map[string]int, len(rec.Label))
	for i, name := range rec.Label {
		fileRow[name] = i
	}

	var missing []string
	keep := make(map[string]struct{}, info.NChan())
	for _, name := range info.ChannelNames() {
		if _, ok := fileRow[name]; ok {
			keep[name] = struct{}{}
		} else {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		diag.Warnf(sink, diag.CodeMissingChannels,
			"channels %s not present in the file; dropping them", strings.Join(missing, ", "))
	}

	var sel []int
	var infoSel []int
	for i, name := range rec.Label {
		if _, ok := keep[name]; !ok {
			continue
		}
		sel = append(sel, i)
		idx, err := info.PickNames([]string{name}, true)
		if err != nil {
			return nil, nil, err
		}
		infoSel = append(infoSel, idx[0])
	}
	if len(sel) == 0 {
		return nil, nil, meas.ErrEmptySelection
	}

	out := info.Subset(infoSel)
	out.SFreq = sfreq

	return out, sel, nil
}

// synthesizeInfo guesses channel kinds from conventional label prefixes.
func synthesizeInfo(labels []string, sfreq float64) *meas.Info {
	chs := make([]meas.Channel, len(labels))
	for i, name := range labels {
		kind := meas.Misc
		switch {
		case strings.HasPrefix(name, "MEG"):
			kind = meas.MEGMag
		case strings.HasPrefix(name, "EEG"):
			kind = meas.EEG
		case strings.HasPrefix(name, "STI"):
			kind = meas.Stim
		}
		chs[i] = meas.Channel{Name: name, Kind: kind}
	}

	return &meas.Info{Channels: chs, SFreq: sfreq}
}
