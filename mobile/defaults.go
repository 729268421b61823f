package mobile

import "github.com/warp/incentive-engine/generic"

// Defaults returns the hardcoded default parameters of the track.
//
//	mobile.puntiAttivazione.<CAT>   points per activation
//	mobile.soglie.<MobileCluster>   threshold ladder per POS cluster
//	mobile.premi.<CAT>              premium per piece, indexed by tier (0 = below tier 1)
func Defaults() generic.Layer {
	l := generic.NewLayer(generic.LayerDefault)

	points := map[Category]float64{
		CategoryTied:         1,
		CategoryUntied:       1,
		CategoryMNP:          0.5,
		CategoryMNPMVNO:      0.5,
		CategorySimIVA:       1.5,
		CategoryPiuSicuri:    0.5,
		CategoryPiuSicuriPro: 0.5,
	}
	for c, p := range points {
		l.SetScalar(generic.Path(Section, "puntiAttivazione", string(c)), generic.F(p))
	}

	l.SetLadder(generic.Path(Section, "soglie", "C1"), generic.Decimals(70, 105, 135, 165)...)
	l.SetLadder(generic.Path(Section, "soglie", "C2"), generic.Decimals(50, 80, 100, 125)...)
	l.SetLadder(generic.Path(Section, "soglie", "C3"), generic.Decimals(35, 55, 70, 90)...)

	rates := map[Category][]float64{
		CategoryTied:         {0, 4, 6, 8, 10},
		CategoryUntied:       {0, 2, 3, 4, 5},
		CategoryMNP:          {0, 1, 1.5, 2, 2.5},
		CategorySimIVA:       {0, 5, 7, 9, 12},
		CategoryAddonGiga:    {1, 1, 1, 1, 1},
		CategoryPiuSicuri:    {0, 2, 2, 3, 3},
		CategoryPiuSicuriPro: {0, 3, 3, 4, 4},
	}
	for c, r := range rates {
		l.SetLadder(generic.Path(Section, "premi", string(c)), generic.Decimals(r...)...)
	}
	return l
}
