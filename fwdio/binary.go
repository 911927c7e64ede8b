// SPDX-License-Identifier: MIT
// Package fwdio: tagged binary container.
// Layout: magic, schema version, then fixed-order sections (info,
// transforms, source spaces, original orientation, gain, gradient).
// All integers little-endian; floats are raw IEEE-754 bits, so numeric
// round trips are exact.

package fwdio

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/neuromag/fieldkit/dense"
	"github.com/neuromag/fieldkit/diag"
	"github.com/neuromag/fieldkit/forward"
	"github.com/neuromag/fieldkit/meas"
	"github.com/neuromag/fieldkit/source"
)

var magic = [8]byte{'F', 'K', 'F', 'W', 'D', '0', '0', '1'}

// Write stores a forward solution at path, dispatching on the extension:
// ".cbor" selects the interchange container, everything else the binary
// one (with a CodeBadExtension advisory for unrecognized names).
//
// The solution is stored in its original orientation; a converted input
// additionally emits CodeStoredOriginal.
//
// Errors:
//   - ErrNilSolution, ErrExists (without Overwrite), wrapped I/O errors.
func Write(path string, s *forward.Solution, opts ...Option) error {
	cfg := gatherOptions(opts)
	if strings.HasSuffix(path, ".cbor") {
		return WriteCBOR(path, s, opts...)
	}
	if !hasBinaryExt(path) {
		diag.Warnf(cfg.sink, diag.CodeBadExtension,
			"%s: expected a -fwd.fwd, .fwd or .cbor name; writing binary anyway", path)
	}

	return writeBinary(path, s, cfg)
}

// Read loads a forward solution from path, dispatching like Write. The
// result is in the solution's original orientation regardless of what was
// converted before writing.
func Read(path string, opts ...Option) (*forward.Solution, error) {
	cfg := gatherOptions(opts)
	if strings.HasSuffix(path, ".cbor") {
		return ReadCBOR(path, opts...)
	}
	if !hasBinaryExt(path) {
		diag.Warnf(cfg.sink, diag.CodeBadExtension,
			"%s: expected a -fwd.fwd, .fwd or .cbor name; reading as binary", path)
	}

	return readBinary(path)
}

// hasBinaryExt reports whether path carries a recognized binary name.
func hasBinaryExt(path string) bool {
	return strings.HasSuffix(path, "-fwd.fwd") || strings.HasSuffix(path, ".fwd")
}

// adviseStored emits CodeStoredOriginal when s is not in its original
// representation.
func adviseStored(sink diag.Sink, s *forward.Solution) {
	nativeSurf := s.OrigSourceOri() == forward.FixedOrient
	if s.SourceOri != s.OrigSourceOri() || s.SurfOri != nativeSurf {
		diag.Warnf(sink, diag.CodeStoredOriginal,
			"solution is stored on disk in its original orientation; reconvert after loading")
	}
}

// createTarget opens path for writing, honoring the overwrite policy.
func createTarget(path string, overwrite bool) (*os.File, error) {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return nil, fmt.Errorf("%s: %w", path, ErrExists)
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("fwdio: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("fwdio: %w", err)
	}

	return f, nil
}

func writeBinary(path string, s *forward.Solution, cfg ioOptions) error {
	if s == nil || s.Sol == nil || s.Sol.Data == nil {
		return ErrNilSolution
	}
	if err := s.Validate(); err != nil {
		return fmt.Errorf("fwdio: %w", err)
	}
	adviseStored(cfg.sink, s)

	f, err := createTarget(path, cfg.overwrite)
	if err != nil {
		return err
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	e := &encoder{w: bw}

	e.bytes(magic[:])
	e.writeInfo(s.Info)
	e.writeTransform(s.MriHeadT)

	e.u32(uint32(len(s.Src)))
	for _, sp := range s.Src {
		e.writeSpace(sp)
	}

	e.i32(int32(s.OrigSourceOri()))
	e.strings(s.Sol.RowNames)
	e.matrix(s.OrigSol())
	e.optMatrix(s.OrigSolGrad())

	if e.err != nil {
		return fmt.Errorf("fwdio: write %s: %w", path, e.err)
	}
	if err = bw.Flush(); err != nil {
		return fmt.Errorf("fwdio: write %s: %w", path, err)
	}

	return f.Sync()
}

func readBinary(path string) (*forward.Solution, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("fwdio: %w", err)
	}
	defer f.Close()

	d := &decoder{r: bufio.NewReader(f)}

	var got [8]byte
	d.bytes(got[:])
	if d.err == nil && got != magic {
		return nil, fmt.Errorf("fwdio: read %s: bad magic: %w", path, ErrFormat)
	}

	info := d.readInfo()
	mriHeadT := d.readTransform()

	nsp := d.u32()
	if d.err == nil && nsp > 1<<16 {
		return nil, fmt.Errorf("fwdio: read %s: implausible space count %d: %w", path, nsp, ErrFormat)
	}
	src := make([]*source.SourceSpace, 0, nsp)
	for i := uint32(0); i < nsp && d.err == nil; i++ {
		src = append(src, d.readSpace())
	}

	ori := forward.Orientation(d.i32())
	names := d.strings()
	sol := d.matrix()
	grad := d.optMatrix()
	if d.err != nil {
		return nil, fmt.Errorf("fwdio: read %s: %v: %w", path, d.err, ErrFormat)
	}

	s, err := forward.NewSolution(info, mriHeadT, src, sol, grad, ori)
	if err != nil {
		return nil, fmt.Errorf("fwdio: read %s: %w", path, err)
	}
	s.Sol.RowNames = names
	if s.SolGrad != nil {
		s.SolGrad.RowNames = names
	}

	return s, nil
}

// encoder writes little-endian fields, latching the first error.
type encoder struct {
	w   io.Writer
	err error
}

func (e *encoder) bytes(p []byte) {
	if e.err != nil {
		return
	}
	_, e.err = e.w.Write(p)
}

func (e *encoder) u32(v uint32) {
	if e.err != nil {
		return
	}
	e.err = binary.Write(e.w, binary.LittleEndian, v)
}

func (e *encoder) i32(v int32) {
	if e.err != nil {
		return
	}
	e.err = binary.Write(e.w, binary.LittleEndian, v)
}

func (e *encoder) i64(v int64) {
	if e.err != nil {
		return
	}
	e.err = binary.Write(e.w, binary.LittleEndian, v)
}

func (e *encoder) f64(v float64) {
	e.u64(math.Float64bits(v))
}

func (e *encoder) u64(v uint64) {
	if e.err != nil {
		return
	}
	e.err = binary.Write(e.w, binary.LittleEndian, v)
}

func (e *encoder) bool(v bool) {
	b := []byte{0}
	if v {
		b[0] = 1
	}
	e.bytes(b)
}

func (e *encoder) str(s string) {
	e.u32(uint32(len(s)))
	e.bytes([]byte(s))
}

func (e *encoder) strings(ss []string) {
	e.u32(uint32(len(ss)))
	for _, s := range ss {
		e.str(s)
	}
}

func (e *encoder) floats(fs []float64) {
	e.u32(uint32(len(fs)))
	if e.err != nil {
		return
	}
	e.err = binary.Write(e.w, binary.LittleEndian, fs)
}

func (e *encoder) ints(vs []int) {
	e.u32(uint32(len(vs)))
	for _, v := range vs {
		e.i64(int64(v))
	}
}

func (e *encoder) matrix(m *dense.Dense) {
	e.u32(uint32(m.Rows()))
	e.u32(uint32(m.Cols()))
	if e.err != nil {
		return
	}
	e.err = binary.Write(e.w, binary.LittleEndian, m.Raw())
}

func (e *encoder) optMatrix(m *dense.Dense) {
	e.bool(m != nil)
	if m != nil {
		e.matrix(m)
	}
}

func (e *encoder) writeTransform(t *meas.Transform) {
	e.bool(t != nil)
	if t == nil {
		return
	}
	e.str(t.From)
	e.str(t.To)
	if e.err != nil {
		return
	}
	e.err = binary.Write(e.w, binary.LittleEndian, t.M[:])
}

func (e *encoder) writeInfo(info *meas.Info) {
	e.bool(info != nil)
	if info == nil {
		return
	}
	e.f64(info.SFreq)
	e.u32(uint32(len(info.Channels)))
	for _, ch := range info.Channels {
		e.str(ch.Name)
		e.i32(int32(ch.Kind))
		e.str(ch.Unit)
	}
	e.writeTransform(info.DevHeadT)
}

func (e *encoder) writeSpace(sp *source.SourceSpace) {
	e.str(string(sp.Hemi))
	e.u32(uint32(sp.NPoints))
	e.i32(int32(sp.CoordFrame))
	e.ints(sp.Vertno)
	e.optMatrix(sp.Normals)
	e.optMatrix(sp.PatchNormals)
	// Empty slices are stored as absent, so empty and nil decode alike.
	e.bool(len(sp.PatchAreas) > 0)
	if len(sp.PatchAreas) > 0 {
		e.floats(sp.PatchAreas)
	}
}

// decoder mirrors encoder, latching the first error.
type decoder struct {
	r   io.Reader
	err error
}

func (d *decoder) bytes(p []byte) {
	if d.err != nil {
		return
	}
	_, d.err = io.ReadFull(d.r, p)
}

func (d *decoder) u32() uint32 {
	var v uint32
	if d.err == nil {
		d.err = binary.Read(d.r, binary.LittleEndian, &v)
	}

	return v
}

func (d *decoder) i32() int32 {
	var v int32
	if d.err == nil {
		d.err = binary.Read(d.r, binary.LittleEndian, &v)
	}

	return v
}

func (d *decoder) i64() int64 {
	var v int64
	if d.err == nil {
		d.err = binary.Read(d.r, binary.LittleEndian, &v)
	}

	return v
}

func (d *decoder) f64() float64 {
	var v float64
	if d.err == nil {
		d.err = binary.Read(d.r, binary.LittleEndian, &v)
	}

	return v
}

func (d *decoder) bool() bool {
	var b [1]byte
	d.bytes(b[:])

	return d.err == nil && b[0] == 1
}

func (d *decoder) str() string {
	n := d.u32()
	if d.err != nil || n > 1<<20 {
		if d.err == nil {
			d.err = fmt.Errorf("string length %d", n)
		}

		return ""
	}
	buf := make([]byte, n)
	d.bytes(buf)

	return string(buf)
}

func (d *decoder) strings() []string {
	n := d.u32()
	if d.err != nil || n > 1<<20 {
		return nil
	}
	out := make([]string, n)
	for i := range out {
		out[i] = d.str()
	}

	return out
}

func (d *decoder) floats() []float64 {
	n := d.u32()
	if d.err != nil || n == 0 || n > 1<<28 {
		return nil
	}
	out := make([]float64, n)
	d.err = binary.Read(d.r, binary.LittleEndian, out)

	return out
}

func (d *decoder) ints() []int {
	n := d.u32()
	if d.err != nil || n == 0 || n > 1<<28 {
		return nil
	}
	out := make([]int, n)
	for i := range out {
		out[i] = int(d.i64())
	}

	return out
}

func (d *decoder) matrix() *dense.Dense {
	r := d.u32()
	c := d.u32()
	if d.err != nil || uint64(r)*uint64(c) > 1<<32 {
		if d.err == nil {
			d.err = fmt.Errorf("matrix %dx%d", r, c)
		}

		return nil
	}
	data := make([]float64, int(r)*int(c))
	if d.err == nil {
		d.err = binary.Read(d.r, binary.LittleEndian, data)
	}
	if d.err != nil {
		return nil
	}
	m, err := dense.NewDenseData(int(r), int(c), data)
	if err != nil {
		d.err = err

		return nil
	}

	return m
}

func (d *decoder) optMatrix() *dense.Dense {
	if !d.bool() {
		return nil
	}

	return d.matrix()
}

func (d *decoder) readTransform() *meas.Transform {
	if !d.bool() {
		return nil
	}
	t := &meas.Transform{From: d.str(), To: d.str()}
	if d.err == nil {
		d.err = binary.Read(d.r, binary.LittleEndian, t.M[:])
	}

	return t
}

func (d *decoder) readInfo() *meas.Info {
	if !d.bool() {
		return nil
	}
	info := &meas.Info{SFreq: d.f64()}
	n := d.u32()
	if d.err != nil || n > 1<<20 {
		return info
	}
	info.Channels = make([]meas.Channel, n)
	for i := range info.Channels {
		info.Channels[i] = meas.Channel{
			Name: d.str(),
			Kind: meas.ChannelKind(d.i32()),
			Unit: d.str(),
		}
	}
	info.DevHeadT = d.readTransform()

	return info
}

func (d *decoder) readSpace() *source.SourceSpace {
	sp := &source.SourceSpace{
		Hemi:       source.Hemisphere(d.str()),
		NPoints:    int(d.u32()),
		CoordFrame: source.CoordFrame(d.i32()),
		Vertno:     d.ints(),
	}
	sp.Normals = d.optMatrix()
	sp.PatchNormals = d.optMatrix()
	if d.bool() {
		sp.PatchAreas = d.floats()
	}

	return sp
}
