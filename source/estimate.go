// SPDX-License-Identifier: MIT

package source

import (
	"fmt"

	"github.com/neuromag/fieldkit/dense"
)

// Estimate is a scalar source estimate: one time course per in-use vertex.
// Data is (nsources x ntimes); Vertices lists the active vertex ids per
// hemisphere (ascending), in the same left-then-right order the rows of
// Data follow. TMin is the time of the first sample and TStep the sample
// period in seconds.
type Estimate struct {
	Data     *dense.Dense
	Vertices [][]int
	TMin     float64
	TStep    float64
}

// NewEstimate validates row count against the vertex lists.
func NewEstimate(data *dense.Dense, vertices [][]int, tmin, tstep float64) (*Estimate, error) {
	n := 0
	for _, vs := range vertices {
		n += len(vs)
	}
	if data == nil || data.Rows() != n {
		return nil, fmt.Errorf("NewEstimate: %d rows for %d vertices: %w", rowsOf(data), n, ErrShapeMismatch)
	}

	return &Estimate{Data: data, Vertices: vertices, TMin: tmin, TStep: tstep}, nil
}

// NSources returns the total number of active vertices.
func (e *Estimate) NSources() int { return e.Data.Rows() }

// NTimes returns the number of samples per source.
func (e *Estimate) NTimes() int { return e.Data.Cols() }

// SFreq returns the sampling frequency implied by TStep.
func (e *Estimate) SFreq() float64 { return 1.0 / e.TStep }

// VectorEstimate is a free-orientation source estimate: three component
// time courses per source. Data is (3*nsources x ntimes) with the three
// rows of source i at 3i, 3i+1, 3i+2.
type VectorEstimate struct {
	Data     *dense.Dense
	Vertices [][]int
	TMin     float64
	TStep    float64
}

// NewVectorEstimate validates that Data carries exactly three rows per vertex.
func NewVectorEstimate(data *dense.Dense, vertices [][]int, tmin, tstep float64) (*VectorEstimate, error) {
	n := 0
	for _, vs := range vertices {
		n += len(vs)
	}
	if data == nil || data.Rows() != 3*n {
		return nil, fmt.Errorf("NewVectorEstimate: %d rows for %d vertices: %w", rowsOf(data), n, ErrShapeMismatch)
	}

	return &VectorEstimate{Data: data, Vertices: vertices, TMin: tmin, TStep: tstep}, nil
}

// NSources returns the number of sources (not components).
func (e *VectorEstimate) NSources() int { return e.Data.Rows() / 3 }

// NTimes returns the number of samples per component.
func (e *VectorEstimate) NTimes() int { return e.Data.Cols() }

func rowsOf(m *dense.Dense) int {
	if m == nil {
		return 0
	}

	return m.Rows()
}
