// Package mobile implements the mobile SIM track.
// It uses the generic engine with mobile categories, caps and defaults.
package mobile

import (
	"github.com/shopspring/decimal"

	"github.com/warp/incentive-engine/generic"
)

// Track is the mobile track identifier.
const Track generic.TrackID = "mobile"

// Section is the configuration section of the track.
const Section = "mobile"

// ContributionSimIVA exports SIM IVA activations to cross-program bonuses.
const ContributionSimIVA generic.ContributionID = "mobile.sim_iva"

// =============================================================================
// MOBILE CATEGORIES
// =============================================================================

// Category is a mobile activation category.
// Implements generic.Category interface.
type Category string

func (c Category) CategoryID() string             { return string(c) }
func (c Category) CategoryTrack() generic.TrackID { return Track }

// Compile-time check that Category implements generic.Category
var _ generic.Category = Category("")

const (
	CategoryTied         Category = "TIED"
	CategoryUntied       Category = "UNTIED"
	CategoryMNP          Category = "MNP"
	CategoryMNPMVNO      Category = "MNP_MVNO" // points only
	CategorySimIVA       Category = "SIM_IVA"
	CategoryAddonGiga    Category = "ADDON_GIGA" // money only
	CategoryPiuSicuri    Category = "PIU_SICURI_MOBILE"
	CategoryPiuSicuriPro Category = "PIU_SICURI_MOBILE_PRO"
)

// Categories lists every category in report order.
var Categories = []Category{
	CategoryTied, CategoryUntied, CategoryMNP, CategoryMNPMVNO,
	CategorySimIVA, CategoryAddonGiga, CategoryPiuSicuri, CategoryPiuSicuriPro,
}

// Register all mobile categories with the generic registry
func init() {
	for _, c := range Categories {
		generic.RegisterCategory(c, generic.CategorySpec{})
	}
}

// earnsPoints reports whether a category accumulates points.
func (c Category) earnsPoints() bool {
	return c != CategoryAddonGiga
}

// earnsPremium reports whether a category is paid per piece.
func (c Category) earnsPremium() bool {
	return c != CategoryMNPMVNO
}

// =============================================================================
// CAPS
// =============================================================================

// Caps returns the derived-category ceilings, in application order.
//
//	MNP_MVNO              <= MNP
//	ADDON_GIGA            <= TIED + UNTIED
//	PIU_SICURI_MOBILE_PRO <= TIED + UNTIED + SIM_IVA
//	PIU_SICURI_MOBILE     <= TIED + UNTIED + SIM_IVA - PIU_SICURI_MOBILE_PRO
func Caps() []generic.CapRule {
	lines := func(s *generic.VolumeSheet) decimal.Decimal {
		return s.Sum(CategoryTied, CategoryUntied)
	}
	insurable := func(s *generic.VolumeSheet) decimal.Decimal {
		return s.Sum(CategoryTied, CategoryUntied, CategorySimIVA)
	}
	return []generic.CapRule{
		{Name: "mnp_mvno", Target: CategoryMNPMVNO, Ceiling: func(s *generic.VolumeSheet) decimal.Decimal {
			return s.Pieces(CategoryMNP)
		}},
		{Name: "addon_giga", Target: CategoryAddonGiga, Ceiling: lines},
		{Name: "piu_sicuri_pro", Target: CategoryPiuSicuriPro, Ceiling: insurable},
		{Name: "piu_sicuri", Target: CategoryPiuSicuri, Ceiling: func(s *generic.VolumeSheet) decimal.Decimal {
			return insurable(s).Sub(s.Pieces(CategoryPiuSicuriPro))
		}},
	}
}
