package mobile_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/incentive-engine/generic"
	"github.com/warp/incentive-engine/mobile"
)

// =============================================================================
// TEST INFRASTRUCTURE
// =============================================================================

func snapshot(org generic.Layer) *generic.Snapshot {
	return generic.NewSnapshot(mobile.Defaults(), generic.NewLayer(generic.LayerSystem), org)
}

func noOverrides() generic.Layer {
	return generic.NewLayer(generic.LayerOrg)
}

func pos(code, cluster string) generic.SellPoint {
	return generic.SellPoint{Code: code, LegalEntity: "Rossi Srl", MobileCluster: cluster, VATCluster: "STD"}
}

func posScope(sp generic.SellPoint) generic.Scope {
	return generic.Scope{ID: sp.Code, Mode: generic.ModePOS, Period: generic.NewPeriod(2025, time.March), SellPoint: sp, WorkingDays: 20}
}

func rsScope(sps ...generic.SellPoint) generic.Scope {
	e := generic.GroupByEntity(sps)[0]
	return generic.Scope{ID: e.Lead().Code, Mode: generic.ModeRS, Period: generic.NewPeriod(2025, time.March), SellPoint: e.Lead(), Entity: e, WorkingDays: 20}
}

func sheetOf(t *testing.T, volumes map[mobile.Category]int64) *generic.VolumeSheet {
	t.Helper()
	sheet := mobile.Calculator{}.NewSheet()
	for c, n := range volumes {
		require.NoError(t, sheet.Set(c, "", decimal.NewFromInt(n)))
	}
	return sheet
}

func assertDec(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	assert.True(t, generic.MustParseDecimal(expected).Equal(actual), "expected %s, got %s", expected, actual.String())
}

func line(r generic.EvaluationResult, c mobile.Category) generic.DetailLine {
	for _, d := range r.Detail {
		if d.Category == string(c) {
			return d
		}
	}
	return generic.DetailLine{}
}

// =============================================================================
// TIER AND PREMIUM
// =============================================================================

func TestMobile_ExactFirstThresholdReachesTierOne(t *testing.T) {
	// GIVEN: TIED 50 + UNTIED 20 on a C1 POS (tier 1 at 70 points)
	sheet := sheetOf(t, map[mobile.Category]int64{mobile.CategoryTied: 50, mobile.CategoryUntied: 20})

	// WHEN: Evaluated
	r, err := mobile.Calculator{}.Evaluate(posScope(pos("P1", "C1")), sheet, snapshot(noOverrides()))
	require.NoError(t, err)

	// THEN: 70 points reach tier 1 and pay tier-1 rates
	assertDec(t, "70", r.Points)
	assert.Equal(t, 1, r.Tier)
	assert.Equal(t, 4, r.MaxTier)
	assertDec(t, "240", r.Premium)
	assertDec(t, "105", *r.NextThreshold)
	assertDec(t, "3.5", r.RunRate.PointsPerDay)
	assertDec(t, "100", *r.TargetPercent)
}

func TestMobile_OnePointShortStaysAtTierZero(t *testing.T) {
	sheet := sheetOf(t, map[mobile.Category]int64{mobile.CategoryTied: 49, mobile.CategoryUntied: 20})

	r, err := mobile.Calculator{}.Evaluate(posScope(pos("P1", "C1")), sheet, snapshot(noOverrides()))

	require.NoError(t, err)
	assert.Equal(t, 0, r.Tier)
	assertDec(t, "0", r.Premium)
	assertDec(t, "1", *r.GapToNext)
}

func TestMobile_PointsOnlyAndMoneyOnlyCategories(t *testing.T) {
	// GIVEN: Enough lines for tier 1, plus MNP_MVNO and ADDON_GIGA
	sheet := sheetOf(t, map[mobile.Category]int64{
		mobile.CategoryTied:      70,
		mobile.CategoryMNP:       10,
		mobile.CategoryMNPMVNO:   10,
		mobile.CategoryAddonGiga: 5,
	})

	r, err := mobile.Calculator{}.Evaluate(posScope(pos("P1", "C1")), sheet, snapshot(noOverrides()))
	require.NoError(t, err)

	// THEN: MNP_MVNO adds points but no money; ADDON_GIGA adds money but no points
	assertDec(t, "80", r.Points)
	assertDec(t, "5", line(r, mobile.CategoryMNPMVNO).Points)
	assertDec(t, "0", line(r, mobile.CategoryMNPMVNO).Premium)
	assertDec(t, "0", line(r, mobile.CategoryAddonGiga).Points)
	assertDec(t, "5", line(r, mobile.CategoryAddonGiga).Premium)
}

// =============================================================================
// CAPS
// =============================================================================

func TestMobile_PiuSicuriCapsChain(t *testing.T) {
	// GIVEN: 10 insurable lines, PRO 6 and PIU_SICURI 8 requested
	sheet := sheetOf(t, map[mobile.Category]int64{
		mobile.CategoryTied:         6,
		mobile.CategorySimIVA:       4,
		mobile.CategoryPiuSicuriPro: 6,
		mobile.CategoryPiuSicuri:    8,
		mobile.CategoryMNPMVNO:      3,
	})

	// THEN: PIU_SICURI is capped at 10 - 6; MNP_MVNO at MNP (0)
	assertDec(t, "6", sheet.Pieces(mobile.CategoryPiuSicuriPro))
	assertDec(t, "4", sheet.Pieces(mobile.CategoryPiuSicuri))
	assertDec(t, "0", sheet.Pieces(mobile.CategoryMNPMVNO))

	r, err := mobile.Calculator{}.Evaluate(posScope(pos("P1", "C1")), sheet, snapshot(noOverrides()))
	require.NoError(t, err)
	assert.Equal(t, "capped from 8 to 4", line(r, mobile.CategoryPiuSicuri).Note)
}

// =============================================================================
// RS MODE AND OVERRIDES
// =============================================================================

func TestMobile_RSLadderSumsMemberClusters(t *testing.T) {
	// GIVEN: An entity with a C1 and a C2 POS: ladder [120,185,235,290]
	scope := rsScope(pos("P1", "C1"), pos("P2", "C2"))
	sheet := sheetOf(t, map[mobile.Category]int64{mobile.CategoryTied: 119})

	r, err := mobile.Calculator{}.Evaluate(scope, sheet, snapshot(noOverrides()))
	require.NoError(t, err)
	assert.Equal(t, 0, r.Tier)

	_ = sheet.Set(mobile.CategoryTied, "", decimal.NewFromInt(120))
	r, err = mobile.Calculator{}.Evaluate(scope, sheet, snapshot(noOverrides()))
	require.NoError(t, err)
	assert.Equal(t, 1, r.Tier)
	assertDec(t, "120", r.Thresholds[0])
}

func TestMobile_OrgOverrideChangesWeights(t *testing.T) {
	// GIVEN: The org doubles TIED points
	org := noOverrides().SetScalar("mobile.puntiAttivazione.TIED", decimal.NewFromInt(2))
	snap := snapshot(org)
	sheet := sheetOf(t, map[mobile.Category]int64{mobile.CategoryTied: 35})

	r, err := mobile.Calculator{}.Evaluate(posScope(pos("P1", "C1")), sheet, snap)

	require.NoError(t, err)
	assert.Equal(t, 1, r.Tier)
	assert.True(t, snap.IsOverridden("mobile.puntiAttivazione.TIED"))
	assert.False(t, snap.IsOverridden("mobile.puntiAttivazione.UNTIED"))
}

func TestMobile_UnknownClusterIsConfigurationMissing(t *testing.T) {
	_, err := mobile.Calculator{}.Evaluate(posScope(pos("P1", "C9")), mobile.Calculator{}.NewSheet(), snapshot(noOverrides()))

	var cm *generic.ConfigMissingError
	require.True(t, errors.As(err, &cm))
	assert.Equal(t, "mobile.soglie.C9", cm.Path)
}

func TestMobile_DeterministicResults(t *testing.T) {
	sheet := sheetOf(t, map[mobile.Category]int64{mobile.CategoryTied: 80, mobile.CategorySimIVA: 12})
	snap := snapshot(noOverrides())

	a, err := mobile.Calculator{}.Evaluate(posScope(pos("P1", "C1")), sheet, snap)
	require.NoError(t, err)
	b, err := mobile.Calculator{}.Evaluate(posScope(pos("P1", "C1")), sheet, snap)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assertDec(t, "18", a.Contribution(mobile.ContributionSimIVA).Points)
}
