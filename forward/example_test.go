package forward_test

import (
	"fmt"

	"github.com/neuromag/fieldkit/dense"
	"github.com/neuromag/fieldkit/forward"
	"github.com/neuromag/fieldkit/meas"
	"github.com/neuromag/fieldkit/source"
)

// ExampleConvert collapses a two-source free-orientation solution onto
// its surface normals. Both normals point along +z, so each fixed column
// is the z component of the corresponding triplet.
func ExampleConvert() {
	nn, _ := dense.NewDenseData(2, 3, []float64{0, 0, 1, 0, 0, 1})
	sp := &source.SourceSpace{
		Hemi: source.LeftHemi, NPoints: 4, Vertno: []int{0, 1},
		CoordFrame: source.HeadFrame, Normals: nn,
	}
	info := &meas.Info{Channels: []meas.Channel{{Name: "MEG 0111", Kind: meas.MEGMag}}, SFreq: 1000}

	gain, _ := dense.NewDenseData(1, 6, []float64{1, 2, 3, 4, 5, 6})
	fwd, _ := forward.NewSolution(info, nil, []*source.SourceSpace{sp}, gain, nil, forward.FreeOrient)

	fixed, _ := forward.Convert(fwd, forward.ForceFixed(true))
	a, _ := fixed.Sol.Data.At(0, 0)
	b, _ := fixed.Sol.Data.At(0, 1)
	fmt.Printf("%s: %.0f %.0f\n", fixed.SourceOri, a, b)

	// Output:
	// fixed: 3 6
}
