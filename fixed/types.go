// Package fixed implements the fixed-line track ("fisso").
package fixed

import (
	"github.com/shopspring/decimal"

	"github.com/warp/incentive-engine/generic"
)

const (
	// Track is the fixed-line track identifier.
	Track generic.TrackID = "fixed"

	// Section is the configuration section of the track.
	Section = "fisso"

	// ContributionLineeIVA exports VAT lines to cross-program bonuses.
	ContributionLineeIVA generic.ContributionID = "fixed.linee_iva"
)

// =============================================================================
// FIXED CATEGORIES
// =============================================================================

// Category is a fixed-line activation category.
type Category string

func (c Category) CategoryID() string             { return string(c) }
func (c Category) CategoryTrack() generic.TrackID { return Track }

var _ generic.Category = Category("")

const (
	CategoryFTTH        Category = "FTTH"
	CategoryFTTC        Category = "FTTC"
	CategoryFWA         Category = "FWA"
	CategoryADSL        Category = "ADSL"
	CategoryLineaIVA    Category = "LINEA_IVA"
	CategoryConvergenza Category = "CONVERGENZA"
	CategoryPiuSicuri   Category = "PIU_SICURI_CASA_UFFICIO"
)

// Core lists the line technologies add-ons are sold on.
var Core = []generic.Category{CategoryFTTH, CategoryFTTC, CategoryFWA, CategoryADSL}

// Categories lists every category in report order.
var Categories = []Category{
	CategoryFTTH, CategoryFTTC, CategoryFWA, CategoryADSL,
	CategoryLineaIVA, CategoryConvergenza, CategoryPiuSicuri,
}

func init() {
	for _, c := range Categories {
		generic.RegisterCategory(c, generic.CategorySpec{})
	}
}

// Caps returns the derived-category ceilings. Both add-ons are bounded by
// the core line count; entry mode does not change the ceiling.
func Caps() []generic.CapRule {
	core := func(s *generic.VolumeSheet) decimal.Decimal { return s.Sum(Core...) }
	return []generic.CapRule{
		{Name: "piu_sicuri_casa_ufficio", Target: CategoryPiuSicuri, Ceiling: core},
		{Name: "convergenza", Target: CategoryConvergenza, Ceiling: core},
	}
}
