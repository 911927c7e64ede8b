// SPDX-License-Identifier: MIT

package fieldtrip

import (
	"fmt"
	"os"

	"github.com/fxamacker/cbor/v2"
	"github.com/neuromag/fieldkit/dense"
)

// matrixRec is a row-major matrix in dump form.
type matrixRec struct {
	Rows int       `cbor:"rows"`
	Cols int       `cbor:"cols"`
	Data []float64 `cbor:"data"`
}

type sensorRec struct {
	Labels    []string   `cbor:"labels"`
	Positions *matrixRec `cbor:"pos,omitempty"`
}

// recordRec is the on-disk dump layout.
type recordRec struct {
	Trial     []matrixRec `cbor:"trial"`
	Time      [][]float64 `cbor:"time"`
	Label     []string    `cbor:"label"`
	FSample   []float64   `cbor:"fsample"`
	TrialInfo *matrixRec  `cbor:"trialinfo,omitempty"`
	Elec      *sensorRec  `cbor:"elec,omitempty"`
	Grad      *sensorRec  `cbor:"grad,omitempty"`
	Version   string      `cbor:"version"`
	CellArray bool        `cbor:"cell_array,omitempty"`
	HasCfg    bool        `cbor:"has_cfg,omitempty"`
}

// LoadRecord reads a CBOR record dump. Dumps produced from MATLAB v7.3
// files carry their matrices transposed (HDF5 column-major storage);
// those are de-transposed here, so callers always see channels × samples.
func LoadRecord(path string) (*Record, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fieldtrip: %w", err)
	}
	var rec recordRec
	if err = cbor.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("fieldtrip: decode %s: %v: %w", path, err, ErrFormat)
	}

	transposed := rec.Version == "v73"
	out := &Record{
		Time:      rec.Time,
		Label:     rec.Label,
		FSample:   rec.FSample,
		Version:   rec.Version,
		CellArray: rec.CellArray,
		HasCfg:    rec.HasCfg,
	}
	for i := range rec.Trial {
		m, merr := matrixBack(&rec.Trial[i], transposed)
		if merr != nil {
			return nil, fmt.Errorf("fieldtrip: decode %s: trial %d: %v: %w", path, i, merr, ErrFormat)
		}
		out.Trial = append(out.Trial, m)
	}
	if rec.TrialInfo != nil {
		if out.TrialInfo, err = matrixBack(rec.TrialInfo, transposed); err != nil {
			return nil, fmt.Errorf("fieldtrip: decode %s: trialinfo: %v: %w", path, err, ErrFormat)
		}
	}
	if out.Elec, err = sensorBack(rec.Elec, transposed); err != nil {
		return nil, fmt.Errorf("fieldtrip: decode %s: elec: %v: %w", path, err, ErrFormat)
	}
	if out.Grad, err = sensorBack(rec.Grad, transposed); err != nil {
		return nil, fmt.Errorf("fieldtrip: decode %s: grad: %v: %w", path, err, ErrFormat)
	}

	return out, nil
}

func matrixBack(r *matrixRec, transposed bool) (*dense.Dense, error) {
	if len(r.Data) != r.Rows*r.Cols {
		return nil, fmt.Errorf("matrix %dx%d with %d values", r.Rows, r.Cols, len(r.Data))
	}
	m, err := dense.NewDenseData(r.Rows, r.Cols, r.Data)
	if err != nil {
		return nil, err
	}
	if transposed {
		return transpose(m)
	}

	return m, nil
}

func sensorBack(r *sensorRec, transposed bool) (*Sensor, error) {
	if r == nil {
		return nil, nil
	}
	s := &Sensor{Labels: r.Labels}
	if r.Positions != nil {
		var err error
		if s.Positions, err = matrixBack(r.Positions, transposed); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func transpose(m *dense.Dense) (*dense.Dense, error) {
	out, err := dense.NewDense(m.Cols(), m.Rows())
	if err != nil {
		return nil, err
	}
	mr, or := m.Raw(), out.Raw()
	rc, cc := m.Rows(), m.Cols()
	for i := 0; i < rc; i++ {
		for j := 0; j < cc; j++ {
			or[j*rc+i] = mr[i*cc+j]
		}
	}

	return out, nil
}

// DumpRecord writes a record as a CBOR dump, the inverse of LoadRecord.
// Matrices are written in channels × samples orientation with the version
// tag preserved; a "v73" record is re-transposed so the dump matches what
// a v7.3 conversion would produce.
func DumpRecord(path string, r *Record) error {
	transposed := r.Version == "v73"
	rec := recordRec{
		Time:      r.Time,
		Label:     r.Label,
		FSample:   r.FSample,
		Version:   r.Version,
		CellArray: r.CellArray,
		HasCfg:    r.HasCfg,
	}
	for _, m := range r.Trial {
		mr, err := matrixOf(m, transposed)
		if err != nil {
			return fmt.Errorf("fieldtrip: encode %s: %w", path, err)
		}
		rec.Trial = append(rec.Trial, *mr)
	}
	if r.TrialInfo != nil {
		mr, err := matrixOf(r.TrialInfo, transposed)
		if err != nil {
			return fmt.Errorf("fieldtrip: encode %s: %w", path, err)
		}
		rec.TrialInfo = mr
	}
	var err error
	if rec.Elec, err = sensorOf(r.Elec, transposed); err != nil {
		return fmt.Errorf("fieldtrip: encode %s: %w", path, err)
	}
	if rec.Grad, err = sensorOf(r.Grad, transposed); err != nil {
		return fmt.Errorf("fieldtrip: encode %s: %w", path, err)
	}

	raw, err := cbor.Marshal(&rec)
	if err != nil {
		return fmt.Errorf("fieldtrip: encode %s: %w", path, err)
	}
	if err = os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("fieldtrip: %w", err)
	}

	return nil
}

func matrixOf(m *dense.Dense, transposed bool) (*matrixRec, error) {
	if transposed {
		var err error
		if m, err = transpose(m); err != nil {
			return nil, err
		}
	}

	return &matrixRec{Rows: m.Rows(), Cols: m.Cols(), Data: m.Raw()}, nil
}

func sensorOf(s *Sensor, transposed bool) (*sensorRec, error) {
	if s == nil {
		return nil, nil
	}
	out := &sensorRec{Labels: s.Labels}
	if s.Positions != nil {
		var err error
		if out.Positions, err = matrixOf(s.Positions, transposed); err != nil {
			return nil, err
		}
	}

	return out, nil
}
