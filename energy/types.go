// Package energy implements the energy-contracts track ("energia").
package energy

import (
	"github.com/shopspring/decimal"

	"github.com/warp/incentive-engine/generic"
)

const (
	Track   generic.TrackID = "energy"
	Section                 = "energia"

	// ContributionBusiness exports business contracts to cross-program bonuses.
	ContributionBusiness generic.ContributionID = "energy.business"
)

// Category is an energy contract category.
type Category string

func (c Category) CategoryID() string             { return string(c) }
func (c Category) CategoryTrack() generic.TrackID { return Track }

var _ generic.Category = Category("")

const (
	CategoryLuceConsumer   Category = "LUCE_CONSUMER"
	CategoryGasConsumer    Category = "GAS_CONSUMER"
	CategoryLuceBusiness   Category = "LUCE_BUSINESS"
	CategoryGasBusiness    Category = "GAS_BUSINESS"
	CategoryDomiciliazione Category = "DOMICILIAZIONE"
)

// Commodities are the categories that count as contracts.
var Commodities = []generic.Category{CategoryLuceConsumer, CategoryGasConsumer, CategoryLuceBusiness, CategoryGasBusiness}

// Categories lists every category in report order.
var Categories = []Category{
	CategoryLuceConsumer, CategoryGasConsumer, CategoryLuceBusiness, CategoryGasBusiness, CategoryDomiciliazione,
}

func init() {
	for _, c := range Categories {
		generic.RegisterCategory(c, generic.CategorySpec{})
	}
}

// Caps bounds direct-debit activations by the contracts they attach to.
func Caps() []generic.CapRule {
	return []generic.CapRule{{
		Name:   "domiciliazione",
		Target: CategoryDomiciliazione,
		Ceiling: func(s *generic.VolumeSheet) decimal.Decimal {
			return s.Sum(Commodities...)
		},
	}}
}
