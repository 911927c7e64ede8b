package fieldtrip_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/neuromag/fieldkit/dense"
	"github.com/neuromag/fieldkit/diag"
	"github.com/neuromag/fieldkit/fieldtrip"
	"github.com/neuromag/fieldkit/meas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRecord builds a two-trial record: 3 channels, 4 samples, 100 Hz,
// trialinfo with condition codes 7 and 9 in the second column.
func testRecord(t *testing.T) *fieldtrip.Record {
	t.Helper()

	tr1, err := dense.NewDenseData(3, 4, []float64{
		1, 2, 3, 4,
		5, 6, 7, 8,
		9, 10, 11, 12,
	})
	require.NoError(t, err)
	tr2, err := dense.NewDenseData(3, 4, []float64{
		-1, -2, -3, -4,
		-5, -6, -7, -8,
		-9, -10, -11, -12,
	})
	require.NoError(t, err)
	ti, err := dense.NewDenseData(2, 2, []float64{1, 7, 2, 9})
	require.NoError(t, err)

	axis := []float64{-0.01, 0, 0.01, 0.02}

	return &fieldtrip.Record{
		Trial:     []*dense.Dense{tr1, tr2},
		Time:      [][]float64{axis, axis},
		Label:     []string{"MEG 0111", "EEG 001", "EEG 002"},
		FSample:   []float64{100, 100},
		TrialInfo: ti,
		Version:   "v7",
	}
}

func testInfo() *meas.Info {
	return &meas.Info{
		Channels: []meas.Channel{
			{Name: "MEG 0111", Kind: meas.MEGMag, Unit: "T"},
			{Name: "EEG 001", Kind: meas.EEG, Unit: "V"},
			{Name: "EEG 002", Kind: meas.EEG, Unit: "V"},
		},
		SFreq: 100,
	}
}

// TestReadRaw_SingleTrial converts one trial with clock-aligned samples.
func TestReadRaw_SingleTrial(t *testing.T) {
	rec := testRecord(t)
	rec.Trial = rec.Trial[:1]
	rec.Time = rec.Time[:1]
	rec.FSample = rec.FSample[:1]

	raw, err := fieldtrip.ReadRaw(rec, testInfo())
	require.NoError(t, err)
	assert.Equal(t, 3, raw.Info.NChan())
	assert.Equal(t, 4, raw.NTimes())
	assert.Equal(t, -1, raw.FirstSamp, "tmin -0.01 s at 100 Hz")
	v, _ := raw.Data.At(1, 2)
	assert.Equal(t, 7.0, v)
}

// TestReadRaw_EpochedFails: multiple trials are epoched data.
func TestReadRaw_EpochedFails(t *testing.T) {
	_, err := fieldtrip.ReadRaw(testRecord(t), testInfo())
	assert.ErrorIs(t, err, fieldtrip.ErrEpochedAsRaw)
}

// TestReadRaw_CellArray rejects heterogeneous trial data by name.
func TestReadRaw_CellArray(t *testing.T) {
	rec := testRecord(t)
	rec.CellArray = true

	_, err := fieldtrip.ReadRaw(rec, testInfo())
	assert.ErrorIs(t, err, fieldtrip.ErrCellArray)
	assert.ErrorContains(t, err, "cell array")
}

// TestRead_ObsoleteSchema: records missing mandatory fields point at the
// FieldTrip-side conversion.
func TestRead_ObsoleteSchema(t *testing.T) {
	rec := testRecord(t)
	rec.Trial = nil
	rec.HasCfg = true

	_, err := fieldtrip.ReadRaw(rec, testInfo())
	assert.ErrorIs(t, err, fieldtrip.ErrObsoleteSchema)
	assert.ErrorContains(t, err, "ft_selectdata")

	rec = testRecord(t)
	rec.Label = nil
	_, err = fieldtrip.ReadEpochs(rec, testInfo())
	assert.ErrorIs(t, err, fieldtrip.ErrObsoleteSchema)
}

// TestReadEpochs converts both trials with trialinfo-driven events and
// metadata.
func TestReadEpochs(t *testing.T) {
	ep, err := fieldtrip.ReadEpochs(testRecord(t), testInfo())
	require.NoError(t, err)
	assert.Equal(t, 2, ep.NEpochs())
	assert.InDelta(t, -0.01, ep.TMin, 1e-12)
	require.Len(t, ep.Events, 2)
	assert.Equal(t, [3]int{4, 0, 2}, ep.Events[1], "code from trialinfo column 0")
	require.Len(t, ep.Metadata, 2)
	assert.Equal(t, []float64{2, 9}, ep.Metadata[1])
	v, _ := ep.Data[1].At(0, 0)
	assert.Equal(t, -1.0, v)
}

// TestReadEpochs_NonUniformTime rejects trials on different clocks.
func TestReadEpochs_NonUniformTime(t *testing.T) {
	rec := testRecord(t)
	rec.Time[1] = []float64{0, 0.01, 0.02, 0.03}

	_, err := fieldtrip.ReadEpochs(rec, testInfo())
	assert.ErrorIs(t, err, fieldtrip.ErrNonUniformTime)
}

// TestReadEvoked averages multi-trial records; the fixture's trials are
// mirror images, so the mean vanishes.
func TestReadEvoked(t *testing.T) {
	ev, err := fieldtrip.ReadEvoked(testRecord(t), testInfo())
	require.NoError(t, err)
	assert.Equal(t, 2, ev.NAve)
	for i := 0; i < ev.Data.Rows(); i++ {
		for j := 0; j < ev.Data.Cols(); j++ {
			v, _ := ev.Data.At(i, j)
			assert.InDelta(t, 0, v, 1e-12)
		}
	}

	rec := testRecord(t)
	rec.Trial = rec.Trial[:1]
	rec.Time = rec.Time[:1]
	single, err := fieldtrip.ReadEvoked(rec, testInfo())
	require.NoError(t, err)
	assert.Equal(t, 1, single.NAve)
	assert.InDelta(t, -0.01, single.TMin, 1e-12)
}

// TestAdvisories_NoInfoAndRates: synthesized metadata and rate conflicts
// are advisory, not fatal.
func TestAdvisories_NoInfoAndRates(t *testing.T) {
	rec := testRecord(t)
	rec.FSample = []float64{100, 250}

	sink := diag.NewCollector()
	ep, err := fieldtrip.ReadEpochs(rec, nil, fieldtrip.WithSink(sink))
	require.NoError(t, err)
	assert.True(t, sink.Has(diag.CodeNoInfo))
	assert.True(t, sink.Has(diag.CodeMultipleRates))
	assert.Equal(t, 100.0, ep.Info.SFreq, "first rate wins")
	assert.Equal(t, meas.MEGMag, ep.Info.Channels[0].Kind, "kind guessed from label")
	assert.Equal(t, meas.EEG, ep.Info.Channels[1].Kind)
}

// TestAdvisories_MissingChannels drops metadata channels absent from the
// file and says so.
func TestAdvisories_MissingChannels(t *testing.T) {
	info := testInfo()
	info.Channels = append(info.Channels, meas.Channel{Name: "EEG 003", Kind: meas.EEG, Unit: "V"})

	sink := diag.NewCollector()
	raw := testRecord(t)
	raw.Trial = raw.Trial[:1]
	raw.Time = raw.Time[:1]
	out, err := fieldtrip.ReadRaw(raw, info, fieldtrip.WithSink(sink))
	require.NoError(t, err)
	assert.True(t, sink.Has(diag.CodeMissingChannels))
	assert.Equal(t, []string{"MEG 0111", "EEG 001", "EEG 002"}, out.Info.ChannelNames())

	found := sink.Find(diag.CodeMissingChannels)
	require.NotNil(t, found)
	assert.Contains(t, found.Message, "EEG 003")
}

// TestCreateEvents builds the event matrix from a trialinfo column.
func TestCreateEvents(t *testing.T) {
	rec := testRecord(t)

	events, err := fieldtrip.CreateEvents(rec, 1)
	require.NoError(t, err)
	assert.Equal(t, [][3]int{{0, 0, 7}, {4, 0, 9}}, events)

	_, err = fieldtrip.CreateEvents(rec, 2)
	assert.ErrorIs(t, err, fieldtrip.ErrTrialInfoColumn)
	_, err = fieldtrip.CreateEvents(rec, -1)
	assert.ErrorIs(t, err, fieldtrip.ErrTrialInfoColumn)

	rec.TrialInfo = nil
	_, err = fieldtrip.CreateEvents(rec, 0)
	assert.ErrorIs(t, err, fieldtrip.ErrTrialInfoColumn)
}

// TestDumpLoad_V7V73Agreement: the two storage layouts decode to the same
// record, transposition included.
func TestDumpLoad_V7V73Agreement(t *testing.T) {
	dir := t.TempDir()
	v7 := testRecord(t)
	v73 := testRecord(t)
	v73.Version = "v73"

	p7 := filepath.Join(dir, "data-v7.cbor")
	p73 := filepath.Join(dir, "data-v73.cbor")
	require.NoError(t, fieldtrip.DumpRecord(p7, v7))
	require.NoError(t, fieldtrip.DumpRecord(p73, v73))

	got7, err := fieldtrip.LoadRecord(p7)
	require.NoError(t, err)
	got73, err := fieldtrip.LoadRecord(p73)
	require.NoError(t, err)

	require.Equal(t, got7.NTrials(), got73.NTrials())
	for i := range got7.Trial {
		assert.True(t, got7.Trial[i].EqualApprox(got73.Trial[i], 0, 0))
		assert.True(t, got7.Trial[i].EqualApprox(v7.Trial[i], 0, 0))
	}
	assert.True(t, got7.TrialInfo.EqualApprox(got73.TrialInfo, 0, 0))
	assert.Equal(t, got7.Label, got73.Label)

	ep7, err := fieldtrip.ReadEpochs(got7, testInfo())
	require.NoError(t, err)
	ep73, err := fieldtrip.ReadEpochs(got73, testInfo())
	require.NoError(t, err)
	for i := range ep7.Data {
		assert.True(t, ep7.Data[i].EqualApprox(ep73.Data[i], 0, 0))
	}
}

// TestLoadRecord_SingleChannelSensor: a one-channel elec block keeps its
// 1×3 positions matrix through both storage layouts (MATLAB collapses
// single-row matrices to vectors, so this shape is the classic casualty).
func TestLoadRecord_SingleChannelSensor(t *testing.T) {
	dir := t.TempDir()

	for _, version := range []string{"v7", "v73"} {
		rec := testRecord(t)
		rec.Version = version
		pos, err := dense.NewDenseData(1, 3, []float64{0.01, -0.02, 0.08})
		require.NoError(t, err)
		rec.Elec = &fieldtrip.Sensor{Labels: []string{"EEG 001"}, Positions: pos}

		path := filepath.Join(dir, "one-chan-"+version+".cbor")
		require.NoError(t, fieldtrip.DumpRecord(path, rec))

		got, err := fieldtrip.LoadRecord(path)
		require.NoError(t, err)
		require.NotNil(t, got.Elec, version)
		assert.Equal(t, []string{"EEG 001"}, got.Elec.Labels, version)
		require.Equal(t, 1, got.Elec.Positions.Rows(), version)
		require.Equal(t, 3, got.Elec.Positions.Cols(), version)
		assert.True(t, got.Elec.Positions.EqualApprox(pos, 0, 0), version)
	}
}

// TestLoadRecord_BadDump rejects non-record files.
func TestLoadRecord_BadDump(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.cbor")
	require.NoError(t, os.WriteFile(path, []byte{0xff, 0x00}, 0o644))

	_, err := fieldtrip.LoadRecord(path)
	assert.ErrorIs(t, err, fieldtrip.ErrFormat)
}
