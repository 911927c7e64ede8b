// SPDX-License-Identifier: MIT
// Package fwdio: CBOR interchange container.
// Same contract as the binary format: solutions travel in their original
// orientation. The record layout is self-describing, so other tooling can
// consume it without this package.

package fwdio

import (
	"fmt"
	"os"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/neuromag/fieldkit/dense"
	"github.com/neuromag/fieldkit/diag"
	"github.com/neuromag/fieldkit/forward"
	"github.com/neuromag/fieldkit/meas"
	"github.com/neuromag/fieldkit/source"
)

// matrixRec is a row-major matrix in interchange form.
type matrixRec struct {
	Rows int       `cbor:"rows"`
	Cols int       `cbor:"cols"`
	Data []float64 `cbor:"data"`
}

type channelRec struct {
	Name string `cbor:"name"`
	Kind int    `cbor:"kind"`
	Unit string `cbor:"unit,omitempty"`
}

type transformRec struct {
	From string      `cbor:"from"`
	To   string      `cbor:"to"`
	M    [16]float64 `cbor:"m"`
}

type infoRec struct {
	SFreq    float64       `cbor:"sfreq"`
	Channels []channelRec  `cbor:"channels"`
	DevHeadT *transformRec `cbor:"dev_head_t,omitempty"`
}

type spaceRec struct {
	Hemi         string     `cbor:"hemi"`
	NPoints      int        `cbor:"npoints"`
	CoordFrame   int        `cbor:"coord_frame"`
	Vertno       []int      `cbor:"vertno"`
	Normals      *matrixRec `cbor:"nn,omitempty"`
	PatchNormals *matrixRec `cbor:"patch_nn,omitempty"`
	PatchAreas   []float64  `cbor:"patch_areas,omitempty"`
}

// solutionRec is the top-level interchange record.
type solutionRec struct {
	Schema   int           `cbor:"schema"`
	Info     *infoRec      `cbor:"info,omitempty"`
	MriHeadT *transformRec `cbor:"mri_head_t,omitempty"`
	Spaces   []spaceRec    `cbor:"src"`
	OrigOri  int           `cbor:"source_ori"`
	RowNames []string      `cbor:"row_names"`
	Sol      matrixRec     `cbor:"sol"`
	SolGrad  *matrixRec    `cbor:"sol_grad,omitempty"`
}

const cborSchema = 1

// WriteCBOR stores a forward solution as a CBOR interchange record. Same
// orientation and overwrite contract as Write.
func WriteCBOR(path string, s *forward.Solution, opts ...Option) error {
	cfg := gatherOptions(opts)
	if s == nil || s.Sol == nil || s.Sol.Data == nil {
		return ErrNilSolution
	}
	if err := s.Validate(); err != nil {
		return fmt.Errorf("fwdio: %w", err)
	}
	if !strings.HasSuffix(path, ".cbor") {
		diag.Warnf(cfg.sink, diag.CodeBadExtension,
			"%s: expected a .cbor name; writing CBOR anyway", path)
	}
	adviseStored(cfg.sink, s)

	rec := recordOf(s)
	raw, err := cbor.Marshal(rec)
	if err != nil {
		return fmt.Errorf("fwdio: encode %s: %w", path, err)
	}

	f, err := createTarget(path, cfg.overwrite)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err = f.Write(raw); err != nil {
		return fmt.Errorf("fwdio: write %s: %w", path, err)
	}

	return f.Sync()
}

// ReadCBOR loads a forward solution from a CBOR interchange record, in
// its original orientation.
func ReadCBOR(path string, opts ...Option) (*forward.Solution, error) {
	cfg := gatherOptions(opts)
	if !strings.HasSuffix(path, ".cbor") {
		diag.Warnf(cfg.sink, diag.CodeBadExtension,
			"%s: expected a .cbor name; reading as CBOR", path)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fwdio: %w", err)
	}
	var rec solutionRec
	if err = cbor.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("fwdio: decode %s: %v: %w", path, err, ErrFormat)
	}
	if rec.Schema != cborSchema {
		return nil, fmt.Errorf("fwdio: decode %s: schema %d: %w", path, rec.Schema, ErrFormat)
	}

	return solutionOf(path, &rec)
}

// recordOf lowers a solution into its interchange record.
func recordOf(s *forward.Solution) *solutionRec {
	rec := &solutionRec{
		Schema:   cborSchema,
		MriHeadT: transformOf(s.MriHeadT),
		OrigOri:  int(s.OrigSourceOri()),
		RowNames: s.Sol.RowNames,
		Sol:      matrixOf(s.OrigSol()),
	}
	if s.Info != nil {
		ir := &infoRec{SFreq: s.Info.SFreq, DevHeadT: transformOf(s.Info.DevHeadT)}
		for _, ch := range s.Info.Channels {
			ir.Channels = append(ir.Channels, channelRec{Name: ch.Name, Kind: int(ch.Kind), Unit: ch.Unit})
		}
		rec.Info = ir
	}
	for _, sp := range s.Src {
		rec.Spaces = append(rec.Spaces, spaceRec{
			Hemi:         string(sp.Hemi),
			NPoints:      sp.NPoints,
			CoordFrame:   int(sp.CoordFrame),
			Vertno:       sp.Vertno,
			Normals:      optMatrixOf(sp.Normals),
			PatchNormals: optMatrixOf(sp.PatchNormals),
			PatchAreas:   sp.PatchAreas,
		})
	}
	if g := s.OrigSolGrad(); g != nil {
		m := matrixOf(g)
		rec.SolGrad = &m
	}

	return rec
}

// solutionOf raises an interchange record back into a solution.
func solutionOf(path string, rec *solutionRec) (*forward.Solution, error) {
	var info *meas.Info
	if rec.Info != nil {
		info = &meas.Info{SFreq: rec.Info.SFreq, DevHeadT: transformBack(rec.Info.DevHeadT)}
		for _, ch := range rec.Info.Channels {
			info.Channels = append(info.Channels, meas.Channel{
				Name: ch.Name, Kind: meas.ChannelKind(ch.Kind), Unit: ch.Unit,
			})
		}
	}

	src := make([]*source.SourceSpace, 0, len(rec.Spaces))
	for i := range rec.Spaces {
		sr := &rec.Spaces[i]
		sp := &source.SourceSpace{
			Hemi:       source.Hemisphere(sr.Hemi),
			NPoints:    sr.NPoints,
			CoordFrame: source.CoordFrame(sr.CoordFrame),
			Vertno:     sr.Vertno,
			PatchAreas: sr.PatchAreas,
		}
		var err error
		if sp.Normals, err = matrixBack(sr.Normals); err != nil {
			return nil, fmt.Errorf("fwdio: decode %s: %v: %w", path, err, ErrFormat)
		}
		if sp.PatchNormals, err = matrixBack(sr.PatchNormals); err != nil {
			return nil, fmt.Errorf("fwdio: decode %s: %v: %w", path, err, ErrFormat)
		}
		src = append(src, sp)
	}

	sol, err := matrixBack(&rec.Sol)
	if err != nil {
		return nil, fmt.Errorf("fwdio: decode %s: %v: %w", path, err, ErrFormat)
	}
	grad, err := matrixBack(rec.SolGrad)
	if err != nil {
		return nil, fmt.Errorf("fwdio: decode %s: %v: %w", path, err, ErrFormat)
	}

	s, err := forward.NewSolution(info, transformBack(rec.MriHeadT), src, sol, grad,
		forward.Orientation(rec.OrigOri))
	if err != nil {
		return nil, fmt.Errorf("fwdio: decode %s: %w", path, err)
	}
	if len(rec.RowNames) == s.NChan() {
		s.Sol.RowNames = rec.RowNames
		if s.SolGrad != nil {
			s.SolGrad.RowNames = rec.RowNames
		}
	}

	return s, nil
}

func matrixOf(m *dense.Dense) matrixRec {
	return matrixRec{Rows: m.Rows(), Cols: m.Cols(), Data: m.Raw()}
}

func optMatrixOf(m *dense.Dense) *matrixRec {
	if m == nil {
		return nil
	}
	r := matrixOf(m)

	return &r
}

func matrixBack(r *matrixRec) (*dense.Dense, error) {
	if r == nil {
		return nil, nil
	}
	if len(r.Data) != r.Rows*r.Cols {
		return nil, fmt.Errorf("matrix %dx%d with %d values", r.Rows, r.Cols, len(r.Data))
	}

	return dense.NewDenseData(r.Rows, r.Cols, r.Data)
}

func transformOf(t *meas.Transform) *transformRec {
	if t == nil {
		return nil
	}

	return &transformRec{From: t.From, To: t.To, M: t.M}
}

func transformBack(r *transformRec) *meas.Transform {
	if r == nil {
		return nil
	}

	return &meas.Transform{From: r.From, To: r.To, M: r.M}
}
