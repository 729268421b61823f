package generic_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/warp/incentive-engine/generic"
)

// =============================================================================
// TEST INFRASTRUCTURE
// =============================================================================

const testTrack generic.TrackID = "testtrack"

type testCategory string

func (c testCategory) CategoryID() string             { return string(c) }
func (c testCategory) CategoryTrack() generic.TrackID { return testTrack }

const (
	catBase   testCategory = "BASE"
	catOther  testCategory = "OTHER"
	catAddon  testCategory = "ADDON"
	catGuard  testCategory = "GUARD"
	catBundle testCategory = "BUNDLE"
	catReload testCategory = "RELOAD"
)

func init() {
	generic.RegisterCategory(catBase, generic.CategorySpec{})
	generic.RegisterCategory(catOther, generic.CategorySpec{})
	generic.RegisterCategory(catAddon, generic.CategorySpec{})
	generic.RegisterCategory(catGuard, generic.CategorySpec{})
	generic.RegisterCategory(catBundle, generic.CategorySpec{Clusters: []string{"A", "B"}})
	generic.RegisterCategory(catReload, generic.CategorySpec{})
}

// cappedSheet caps ADDON at BASE+OTHER, then GUARD at BASE+OTHER-ADDON.
func cappedSheet() *generic.VolumeSheet {
	return generic.NewVolumeSheet(testTrack,
		generic.CapRule{
			Name:   "addon",
			Target: catAddon,
			Ceiling: func(s *generic.VolumeSheet) decimal.Decimal {
				return s.Sum(catBase, catOther)
			},
		},
		generic.CapRule{
			Name:   "guard",
			Target: catGuard,
			Ceiling: func(s *generic.VolumeSheet) decimal.Decimal {
				return s.Sum(catBase, catOther).Sub(s.Pieces(catAddon))
			},
		},
	)
}

func d(n int64) decimal.Decimal {
	return decimal.NewFromInt(n)
}

func ds(ns ...int64) []decimal.Decimal {
	out := make([]decimal.Decimal, len(ns))
	for i, n := range ns {
		out[i] = decimal.NewFromInt(n)
	}
	return out
}

func assertDec(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	assert.True(t, generic.MustParseDecimal(expected).Equal(actual), "expected %s, got %s", expected, actual.String())
}

func sellPoint(code, entity string) generic.SellPoint {
	return generic.SellPoint{
		Code:          code,
		Name:          "PDV " + code,
		LegalEntity:   entity,
		Position:      generic.PositionStreet,
		MobileCluster: "C1",
		VATCluster:    "STD",
	}
}
