// SPDX-License-Identifier: MIT

package fieldtrip

import (
	"github.com/neuromag/fieldkit/dense"
)

// Sensor describes one sensor array block (elec or grad) of a record:
// positions and labels, kept verbatim for downstream use.
type Sensor struct {
	Labels    []string
	Positions *dense.Dense
}

// Record is a decoded FieldTrip data structure.
//
// Trial holds one channels × samples block per trial; Time the matching
// time axis per trial, in seconds. Label names the rows of every block.
// FSample may repeat one rate per trial or hold a single value. TrialInfo
// optionally carries one numeric row per trial. CellArray marks trial
// data that arrived as a heterogeneous cell array and therefore cannot be
// stacked; HasCfg marks structures saved with a cfg subtree, the signature
// of files predating the current layout when mandatory fields are absent.
type Record struct {
	Trial     []*dense.Dense
	Time      [][]float64
	Label     []string
	FSample   []float64
	TrialInfo *dense.Dense
	Elec      *Sensor
	Grad      *Sensor

	Version   string
	CellArray bool
	HasCfg    bool
}

// NTrials returns the number of trial blocks.
func (r *Record) NTrials() int { return len(r.Trial) }

// rate returns the record's sampling rate and whether several distinct
// rates are present. Zero when the record names none.
func (r *Record) rate() (float64, bool) {
	if len(r.FSample) == 0 {
		return 0, false
	}
	first := r.FSample[0]
	for _, f := range r.FSample[1:] {
		if f != first {
			return first, true
		}
	}

	return first, false
}
