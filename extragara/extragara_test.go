package extragara_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/incentive-engine/extragara"
	"github.com/warp/incentive-engine/fixed"
	"github.com/warp/incentive-engine/generic"
	"github.com/warp/incentive-engine/mobile"
)

// =============================================================================
// TEST INFRASTRUCTURE
// =============================================================================

func snapshot(org generic.Layer) *generic.Snapshot {
	return generic.NewSnapshot(extragara.Defaults(), generic.NewLayer(generic.LayerSystem), org)
}

func sp(code, entity, vat string) generic.SellPoint {
	return generic.SellPoint{Code: code, LegalEntity: entity, VATCluster: vat}
}

func n(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

// result fakes a finished track result exporting one contribution.
func result(id generic.ContributionID, points, pieces float64) generic.EvaluationResult {
	return generic.EvaluationResult{
		Contributions: map[generic.ContributionID]generic.Contribution{id: {Points: n(points), Pieces: n(pieces)}},
	}
}

func input(entities []*generic.LegalEntity, results map[generic.TrackID]map[string]generic.EvaluationResult) generic.DependentInput {
	return generic.DependentInput{
		Mode:        generic.ModePOS,
		Period:      generic.NewPeriod(2025, time.September),
		Entities:    entities,
		Results:     results,
		WorkingDays: map[string]int{"P1": 20},
	}
}

// =============================================================================
// LADDERS
// =============================================================================

func TestLadder_MonoAndMultiPOS(t *testing.T) {
	snap := snapshot(generic.NewLayer(generic.LayerOrg))

	mono := generic.GroupByEntity([]generic.SellPoint{sp("P1", "Alfa", "BP_A")})[0]
	l, err := extragara.Ladder(mono, snap)
	require.NoError(t, err)
	assert.Equal(t, 4, l.MaxTier())
	assert.True(t, l.Thresholds[3].Equal(n(45)))

	multi := generic.GroupByEntity([]generic.SellPoint{sp("P1", "Beta", "STD"), sp("P2", "Beta", "STD"), sp("P3", "Beta", "STD")})[0]
	l, err = extragara.Ladder(multi, snap)
	require.NoError(t, err)
	assert.Equal(t, 3, l.MaxTier(), "nobp ladders have one tier fewer")
	assert.True(t, l.Thresholds[0].Equal(n(18)), "6 * 3 members")
}

func TestLadder_NoBPOverrideNeverReachesTierFour(t *testing.T) {
	// GIVEN: A non-BP entity whose override configures 4 tiers
	org := generic.NewLayer(generic.LayerOrg).SetLadder("extraGara.override.gamma_srl", n(5), n(10), n(15), n(20))
	e := generic.GroupByEntity([]generic.SellPoint{sp("P1", "Gamma S.r.l.", "STD")})[0]

	// WHEN: The ladder is resolved
	l, err := extragara.Ladder(e, snapshot(org))
	require.NoError(t, err)

	// THEN: The override applies but tier 4 stays disabled
	assert.True(t, l.Thresholds[0].Equal(n(5)))
	assert.False(t, l.Enabled(4))
	assert.Equal(t, 3, l.ReachedTier(n(1000)))
}

// =============================================================================
// EVALUATION
// =============================================================================

func TestEvaluate_WeightedPointsAndMemberPremium(t *testing.T) {
	// GIVEN: A mono-POS BP_A entity with 12 SIM IVA pieces (18 points) and 4 VAT lines (8 points)
	e := generic.GroupByEntity([]generic.SellPoint{sp("P1", "Alfa", "BP_A")})[0]
	results := map[generic.TrackID]map[string]generic.EvaluationResult{
		mobile.Track: {"P1": result(mobile.ContributionSimIVA, 18, 12)},
		fixed.Track:  {"P1": result(fixed.ContributionLineeIVA, 8, 4)},
	}

	// WHEN: Evaluated
	out, warnings, failures := extragara.Calculator{}.Evaluate(input([]*generic.LegalEntity{e}, results), snapshot(generic.NewLayer(generic.LayerOrg)))

	// THEN: 26 points reach tier 2 of [10,20,30,45]; 16 pieces * BP_A[2]=8
	require.Empty(t, failures)
	assert.Empty(t, warnings)
	require.Len(t, out, 1)
	assert.True(t, out[0].Points.Equal(n(26)))
	assert.Equal(t, 2, out[0].Tier)
	assert.True(t, out[0].Premium.Equal(n(128)), "premium %s", out[0].Premium)
	assert.Equal(t, "alfa", out[0].ScopeID)
}

func TestEvaluate_UnmatchedOverrideWarns(t *testing.T) {
	org := generic.NewLayer(generic.LayerOrg).SetLadder("extraGara.override.Nessuno SpA", n(1), n(2), n(3))
	e := generic.GroupByEntity([]generic.SellPoint{sp("P1", "Alfa", "STD")})[0]

	out, warnings, failures := extragara.Calculator{}.Evaluate(input([]*generic.LegalEntity{e}, nil), snapshot(org))

	assert.Empty(t, failures)
	require.Len(t, out, 1)
	require.Len(t, warnings, 1)
	assert.True(t, errors.Is(warnings[0], generic.ErrAmbiguousLegalEntity))
	assert.Equal(t, "Nessuno SpA", warnings[0].Scope)
}

func TestEvaluate_MissingPremiTableFailsEntityOnly(t *testing.T) {
	// GIVEN: One entity on an unconfigured VAT cluster with pieces, one fine
	bad := sp("P1", "Alfa", "BP_Z")
	good := sp("P2", "Beta", "STD")
	entities := generic.GroupByEntity([]generic.SellPoint{bad, good})
	results := map[generic.TrackID]map[string]generic.EvaluationResult{
		mobile.Track: {
			"P1": result(mobile.ContributionSimIVA, 15, 10),
			"P2": result(mobile.ContributionSimIVA, 15, 10),
		},
	}

	out, _, failures := extragara.Calculator{}.Evaluate(input(entities, results), snapshot(generic.NewLayer(generic.LayerOrg)))

	require.Len(t, failures, 1)
	assert.Equal(t, "alfa", failures[0].Scope)
	assert.True(t, errors.Is(failures[0], generic.ErrConfigurationMissing))
	require.Len(t, out, 1)
	assert.Equal(t, "beta", out[0].ScopeID)
}

func TestEvaluate_FailedInputFailsEntity(t *testing.T) {
	// GIVEN: Mobile could not be evaluated for P1 (unconfigured cluster), P2 is fine
	entities := generic.GroupByEntity([]generic.SellPoint{sp("P1", "Alfa", "STD"), sp("P2", "Beta", "STD")})
	in := input(entities, map[generic.TrackID]map[string]generic.EvaluationResult{
		mobile.Track: {"P2": result(mobile.ContributionSimIVA, 15, 10)},
	})
	in.Failed = map[generic.TrackID]map[string]error{
		mobile.Track: {"P1": &generic.ConfigMissingError{Path: "mobile.soglie.CX"}},
	}

	// WHEN: Evaluated
	out, _, failures := extragara.Calculator{}.Evaluate(in, snapshot(generic.NewLayer(generic.LayerOrg)))

	// THEN: Alfa fails with the input's cause instead of a zero bonus
	require.Len(t, failures, 1)
	assert.Equal(t, "alfa", failures[0].Scope)
	assert.True(t, errors.Is(failures[0], generic.ErrConfigurationMissing))
	assert.Contains(t, failures[0].Message, "mobile.soglie.CX")
	var incomplete *generic.IncompleteInputError
	require.True(t, errors.As(failures[0], &incomplete))
	assert.Equal(t, mobile.Track, incomplete.Track)
	assert.Equal(t, "P1", incomplete.Scope)

	// AND: Beta is still paid
	require.Len(t, out, 1)
	assert.Equal(t, "beta", out[0].ScopeID)
}
