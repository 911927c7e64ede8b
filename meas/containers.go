// SPDX-License-Identifier: MIT

package meas

import (
	"fmt"

	"github.com/neuromag/fieldkit/dense"
)

// Evoked is an averaged (or simulated) response: one data row per channel.
type Evoked struct {
	Info    *Info
	Data    *dense.Dense
	TMin    float64
	NAve    int
	Comment string
}

// NewEvoked validates the channel/row agreement.
func NewEvoked(info *Info, data *dense.Dense, tmin float64) (*Evoked, error) {
	if data == nil || data.Rows() != info.NChan() {
		return nil, fmt.Errorf("NewEvoked: %w", ErrShapeMismatch)
	}

	return &Evoked{Info: info, Data: data, TMin: tmin, NAve: 1}, nil
}

// NTimes returns the number of samples.
func (e *Evoked) NTimes() int { return e.Data.Cols() }

// Times returns the sample times: TMin + i/SFreq.
func (e *Evoked) Times() []float64 {
	ts := make([]float64, e.NTimes())
	for i := range ts {
		ts[i] = e.TMin + float64(i)/e.Info.SFreq
	}

	return ts
}

// Raw is a continuous recording segment. FirstSamp is the index of the
// first sample relative to the recording origin, so the segment spans
// [FirstSamp/SFreq, LastSamp()/SFreq] seconds.
type Raw struct {
	Info      *Info
	Data      *dense.Dense
	FirstSamp int
}

// NewRaw validates the channel/row agreement.
func NewRaw(info *Info, data *dense.Dense, firstSamp int) (*Raw, error) {
	if data == nil || data.Rows() != info.NChan() {
		return nil, fmt.Errorf("NewRaw: %w", ErrShapeMismatch)
	}

	return &Raw{Info: info, Data: data, FirstSamp: firstSamp}, nil
}

// NTimes returns the number of samples.
func (r *Raw) NTimes() int { return r.Data.Cols() }

// LastSamp returns the index of the final sample.
func (r *Raw) LastSamp() int { return r.FirstSamp + r.NTimes() - 1 }

// Epochs is a segmented recording: one equally-shaped data block per
// epoch, plus an event row [sample, 0, code] per epoch.
type Epochs struct {
	Info   *Info
	Data   []*dense.Dense
	Events [][3]int
	TMin   float64

	// Metadata optionally carries one record per epoch (the trialinfo rows
	// of an imported container); nil when the source had none.
	Metadata [][]float64
}

// NewEpochs validates that every block matches the channel count and that
// events align with blocks.
func NewEpochs(info *Info, data []*dense.Dense, events [][3]int, tmin float64) (*Epochs, error) {
	if len(events) != len(data) {
		return nil, fmt.Errorf("NewEpochs: %d events for %d epochs: %w", len(events), len(data), ErrShapeMismatch)
	}
	for i, d := range data {
		if d == nil || d.Rows() != info.NChan() {
			return nil, fmt.Errorf("NewEpochs: epoch %d: %w", i, ErrShapeMismatch)
		}
	}

	return &Epochs{Info: info, Data: data, Events: events, TMin: tmin}, nil
}

// NEpochs returns the number of epochs.
func (e *Epochs) NEpochs() int { return len(e.Data) }

// Average collapses the epochs into an Evoked by arithmetic mean.
func (e *Epochs) Average() (*Evoked, error) {
	if e.NEpochs() == 0 {
		return nil, fmt.Errorf("Epochs.Average: %w", ErrShapeMismatch)
	}
	acc := e.Data[0].Clone()
	for _, d := range e.Data[1:] {
		if err := dense.AddScaledInPlace(acc, 1.0, d); err != nil {
			return nil, fmt.Errorf("Epochs.Average: %w", err)
		}
	}
	if err := dense.ScaleInPlace(acc, 1.0/float64(e.NEpochs())); err != nil {
		return nil, fmt.Errorf("Epochs.Average: %w", err)
	}

	ev, err := NewEvoked(e.Info, acc, e.TMin)
	if err != nil {
		return nil, err
	}
	ev.NAve = e.NEpochs()

	return ev, nil
}
