// Package protecta implements the Protecta alarm and surveillance track.
// It shares the flat-weights formula with insurance.
package protecta

import "github.com/warp/incentive-engine/generic"

const (
	Track   generic.TrackID = "protecta"
	Section                 = "protecta"

	ContributionShop generic.ContributionID = "protecta.shop"
)

type Category string

func (c Category) CategoryID() string             { return string(c) }
func (c Category) CategoryTrack() generic.TrackID { return Track }

const (
	CategoryAllarmeBase       Category = "ALLARME_BASE"
	CategoryAllarmePlus       Category = "ALLARME_PLUS"
	CategoryVideosorveglianza Category = "VIDEOSORVEGLIANZA"
	CategoryShop              Category = "SHOP"
	CategoryReload            Category = "RELOAD"
)

func init() {
	for _, c := range []Category{CategoryAllarmeBase, CategoryAllarmePlus, CategoryVideosorveglianza, CategoryShop, CategoryReload} {
		generic.RegisterCategory(c, generic.CategorySpec{})
	}
}

func Calculator() generic.FlatWeightsCalculator {
	return generic.FlatWeightsCalculator{
		TrackID:    Track,
		Section:    Section,
		Categories: []generic.Category{CategoryAllarmeBase, CategoryAllarmePlus, CategoryVideosorveglianza, CategoryShop},
		Reload:     CategoryReload,
		Exports:    map[generic.ContributionID]generic.Category{ContributionShop: CategoryShop},
	}
}

func Defaults() generic.Layer {
	l := generic.NewLayer(generic.LayerDefault)
	points := map[Category]float64{
		CategoryAllarmeBase: 1, CategoryAllarmePlus: 2, CategoryVideosorveglianza: 1.5, CategoryShop: 2, CategoryReload: 1,
	}
	for c, p := range points {
		l.SetScalar(generic.Path(Section, "punti", string(c)), generic.F(p))
	}
	premi := map[Category]float64{
		CategoryAllarmeBase: 10, CategoryAllarmePlus: 20, CategoryVideosorveglianza: 15, CategoryShop: 18,
	}
	for c, p := range premi {
		l.SetScalar(generic.Path(Section, "premi", string(c)), generic.F(p))
	}
	l.SetLadder(generic.Path(Section, "soglie"), generic.Decimals(5, 10, 20)...)
	l.SetLadder(generic.Path(Section, "bonusSoglia"), generic.Decimals(0, 40, 100, 200)...)
	l.SetScalar(generic.Path(Section, "reload", "sogliaBase"), generic.F(5))
	l.SetScalar(generic.Path(Section, "reload", "capPercent"), generic.F(15))
	return l
}
