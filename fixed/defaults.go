package fixed

import "github.com/warp/incentive-engine/generic"

// Defaults returns the hardcoded default parameters of the track.
func Defaults() generic.Layer {
	l := generic.NewLayer(generic.LayerDefault)

	points := map[Category]float64{
		CategoryFTTH:        1.5,
		CategoryFTTC:        1,
		CategoryFWA:         1,
		CategoryADSL:        0.5,
		CategoryLineaIVA:    2,
		CategoryConvergenza: 0.5,
		CategoryPiuSicuri:   0,
	}
	for c, p := range points {
		l.SetScalar(generic.Path(Section, "punti", string(c)), generic.F(p))
	}

	l.SetLadder(generic.Path(Section, "soglie", "F1"), generic.Decimals(30, 45, 60, 80)...)
	l.SetLadder(generic.Path(Section, "soglie", "F2"), generic.Decimals(20, 30, 40, 55)...)
	l.SetLadder(generic.Path(Section, "soglie", "F3"), generic.Decimals(12, 18, 25, 35)...)

	rates := map[Category][]float64{
		CategoryFTTH:        {0, 15, 20, 25, 30},
		CategoryFTTC:        {0, 10, 14, 18, 22},
		CategoryFWA:         {0, 10, 14, 18, 22},
		CategoryADSL:        {0, 5, 7, 9, 11},
		CategoryLineaIVA:    {0, 20, 25, 30, 35},
		CategoryConvergenza: {0, 0, 0, 0, 0},
		CategoryPiuSicuri:   {3, 3, 4, 4, 5},
	}
	for c, r := range rates {
		l.SetLadder(generic.Path(Section, "premi", string(c)), generic.Decimals(r...)...)
	}
	return l
}
