package energy

import "github.com/warp/incentive-engine/generic"

// Defaults returns the hardcoded default parameters of the track.
//
//	energia.soglie                      per-POS ladder, summed for RS scopes
//	energia.bonusPista.soglieFinoA3     per-POS bonus thresholds for the first 3 POS
//	energia.bonusPista.soglieOltre3     per-POS bonus thresholds beyond the 3rd
//	energia.bonusPista.premi            bonus per contract, indexed by bonus tier
func Defaults() generic.Layer {
	l := generic.NewLayer(generic.LayerDefault)

	for _, c := range Categories {
		p := 1.0
		if c == CategoryDomiciliazione {
			p = 0
		}
		l.SetScalar(generic.Path(Section, "punti", string(c)), generic.F(p))
	}

	l.SetLadder(generic.Path(Section, "soglie"), generic.Decimals(15, 25, 35)...)

	consumer := generic.Decimals(0, 8, 12, 16)
	business := generic.Decimals(0, 12, 18, 24)
	l.SetLadder(generic.Path(Section, "premi", string(CategoryLuceConsumer)), consumer...)
	l.SetLadder(generic.Path(Section, "premi", string(CategoryGasConsumer)), consumer...)
	l.SetLadder(generic.Path(Section, "premi", string(CategoryLuceBusiness)), business...)
	l.SetLadder(generic.Path(Section, "premi", string(CategoryGasBusiness)), business...)
	l.SetLadder(generic.Path(Section, "premi", string(CategoryDomiciliazione)), generic.Decimals(2, 2, 2, 2)...)

	l.SetLadder(generic.Path(Section, "bonusPista", "soglieFinoA3"), generic.Decimals(10, 20, 30)...)
	l.SetLadder(generic.Path(Section, "bonusPista", "soglieOltre3"), generic.Decimals(6, 12, 18)...)
	l.SetLadder(generic.Path(Section, "bonusPista", "premi"), generic.Decimals(0, 2, 4, 6)...)
	return l
}
