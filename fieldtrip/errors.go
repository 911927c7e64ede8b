// SPDX-License-Identifier: MIT

package fieldtrip

import "errors"

var (
	// ErrEpochedAsRaw indicates a multi-trial record passed to ReadRaw.
	ErrEpochedAsRaw = errors.New("fieldtrip: record holds multiple trials; epoched data cannot be read as raw")

	// ErrCellArray indicates trial data stored as a heterogeneous cell array
	// (trials of differing shapes), which no container can represent.
	ErrCellArray = errors.New("fieldtrip: trial data is a heterogeneous cell array; trials must share one shape")

	// ErrNonUniformTime indicates trials whose time axes disagree.
	ErrNonUniformTime = errors.New("fieldtrip: time axes differ across trials")

	// ErrObsoleteSchema indicates a file saved before the FieldTrip layout
	// change; such files must be re-saved after running ft_selectdata on
	// the loaded structure.
	ErrObsoleteSchema = errors.New("fieldtrip: file predates the current FieldTrip layout; load it in FieldTrip, run ft_selectdata, and save it again")

	// ErrTrialInfoColumn indicates an event column outside the trialinfo
	// matrix.
	ErrTrialInfoColumn = errors.New("fieldtrip: trialinfo column out of range")

	// ErrFormat indicates a dump file that does not decode as a record.
	ErrFormat = errors.New("fieldtrip: not a record dump")
)
