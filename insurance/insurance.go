// Package insurance implements the insurance policies track ("assicurazioni").
//
// The track pays a flat premium per policy plus a lump sum for the tier
// reached. RELOAD renewals only add points, within a cap.
package insurance

import "github.com/warp/incentive-engine/generic"

const (
	Track   generic.TrackID = "insurance"
	Section                 = "assicurazioni"

	// ContributionPro exports professional policies to cross-program bonuses.
	ContributionPro generic.ContributionID = "insurance.pro"
)

// Category is an insurance policy category.
type Category string

func (c Category) CategoryID() string             { return string(c) }
func (c Category) CategoryTrack() generic.TrackID { return Track }

const (
	CategoryCasa    Category = "CASA"
	CategorySalute  Category = "SALUTE"
	CategoryViaggio Category = "VIAGGIO"
	CategoryPro     Category = "PRO"
	CategoryReload  Category = "RELOAD"
)

func init() {
	for _, c := range []Category{CategoryCasa, CategorySalute, CategoryViaggio, CategoryPro, CategoryReload} {
		generic.RegisterCategory(c, generic.CategorySpec{})
	}
}

// Calculator returns the insurance track calculator.
func Calculator() generic.FlatWeightsCalculator {
	return generic.FlatWeightsCalculator{
		TrackID:    Track,
		Section:    Section,
		Categories: []generic.Category{CategoryCasa, CategorySalute, CategoryViaggio, CategoryPro},
		Reload:     CategoryReload,
		Exports:    map[generic.ContributionID]generic.Category{ContributionPro: CategoryPro},
	}
}

// Defaults returns the hardcoded default parameters of the track.
func Defaults() generic.Layer {
	l := generic.NewLayer(generic.LayerDefault)
	points := map[Category]float64{CategoryCasa: 1, CategorySalute: 1.5, CategoryViaggio: 0.5, CategoryPro: 2, CategoryReload: 1}
	for c, p := range points {
		l.SetScalar(generic.Path(Section, "punti", string(c)), generic.F(p))
	}
	premi := map[Category]float64{CategoryCasa: 5, CategorySalute: 8, CategoryViaggio: 2, CategoryPro: 10}
	for c, p := range premi {
		l.SetScalar(generic.Path(Section, "premi", string(c)), generic.F(p))
	}
	l.SetLadder(generic.Path(Section, "soglie"), generic.Decimals(10, 20, 35)...)
	l.SetLadder(generic.Path(Section, "bonusSoglia"), generic.Decimals(0, 50, 120, 250)...)
	l.SetScalar(generic.Path(Section, "reload", "sogliaBase"), generic.F(10))
	l.SetScalar(generic.Path(Section, "reload", "capPercent"), generic.F(15))
	return l
}
