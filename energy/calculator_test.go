package energy_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/incentive-engine/energy"
	"github.com/warp/incentive-engine/generic"
)

func snapshot() *generic.Snapshot {
	return generic.NewSnapshot(energy.Defaults(), generic.NewLayer(generic.LayerSystem), generic.NewLayer(generic.LayerOrg))
}

func entityScope(n int) generic.Scope {
	var sps []generic.SellPoint
	for i := 1; i <= n; i++ {
		sps = append(sps, generic.SellPoint{Code: fmt.Sprintf("P%d", i), LegalEntity: "Luce Srl"})
	}
	e := generic.GroupByEntity(sps)[0]
	return generic.Scope{ID: "P1", Mode: generic.ModeRS, Period: generic.NewPeriod(2025, time.May), SellPoint: e.Lead(), Entity: e, WorkingDays: 20}
}

func n(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestEnergy_FourPOSEntityNeedsSummedThreshold(t *testing.T) {
	// GIVEN: A 4-POS entity: tier 1 at 4 * 15 = 60 points
	scope := entityScope(4)

	cases := []struct {
		contracts int64
		tier      int
	}{
		{59, 0},
		{60, 1},
	}
	for _, tc := range cases {
		sheet := energy.Calculator{}.NewSheet()
		require.NoError(t, sheet.Set(energy.CategoryLuceConsumer, "", n(tc.contracts)))

		// WHEN: Evaluated
		r, err := energy.Calculator{}.Evaluate(scope, sheet, snapshot())
		require.NoError(t, err)

		// THEN: 59 stays below, 60 reaches tier 1
		assert.Equal(t, tc.tier, r.Tier, "%d contracts", tc.contracts)
		assert.True(t, r.Thresholds[0].Equal(n(60)))
	}
}

func TestEnergy_BonusLadderScalesWithPOSCount(t *testing.T) {
	snap := snapshot()

	one, err := energy.BonusLadder(1, 0, snap)
	require.NoError(t, err)
	assert.True(t, one.Thresholds[0].Equal(n(10)))

	three, err := energy.BonusLadder(3, 0, snap)
	require.NoError(t, err)
	assert.True(t, three.Thresholds[2].Equal(n(90)))

	// 3 * [10,20,30] + 2 * [6,12,18]
	five, err := energy.BonusLadder(3, 2, snap)
	require.NoError(t, err)
	assert.True(t, five.Thresholds[0].Equal(n(42)))
	assert.True(t, five.Thresholds[1].Equal(n(84)))
	assert.True(t, five.Thresholds[2].Equal(n(126)))
}

func TestEnergy_PremiumWithTrackBonus(t *testing.T) {
	// GIVEN: One POS, 12 business and 6 consumer contracts, 20 direct debits
	scope := entityScope(1)
	sheet := energy.Calculator{}.NewSheet()
	require.NoError(t, sheet.Set(energy.CategoryLuceBusiness, "", n(12)))
	require.NoError(t, sheet.Set(energy.CategoryGasConsumer, "", n(6)))
	require.NoError(t, sheet.Set(energy.CategoryDomiciliazione, "", n(20)))

	r, err := energy.Calculator{}.Evaluate(scope, sheet, snapshot())
	require.NoError(t, err)

	// THEN: Direct debits capped at 18 contracts; 18 points -> tier 1
	assert.True(t, sheet.Pieces(energy.CategoryDomiciliazione).Equal(n(18)))
	assert.Equal(t, 1, r.Tier)

	// premium = 12*12 + 6*8 + 18*2 = 228, bonus tier 1 (18 >= 10) -> 18*2 = 36
	require.Len(t, r.Bonuses, 1)
	assert.Equal(t, 1, r.Bonuses[0].Tier)
	assert.True(t, r.Premium.Equal(n(264)), "premium %s", r.Premium)
	assert.True(t, r.Contribution(energy.ContributionBusiness).Pieces.Equal(n(12)))
}

func TestEnergy_BonusBands(t *testing.T) {
	assertBands := func(scope generic.Scope, first, rest int) {
		t.Helper()
		f, r := energy.BonusBands(scope)
		assert.Equal(t, first, f, "first band of %s", scope.ID)
		assert.Equal(t, rest, r, "rest band of %s", scope.ID)
	}

	assertBands(entityScope(2), 2, 0)
	assertBands(entityScope(5), 3, 2)

	e := entityScope(4).Entity
	for i, sp := range e.Members {
		scope := generic.Scope{ID: sp.Code, Mode: generic.ModePOS, SellPoint: sp, Entity: e}
		if i < 3 {
			assertBands(scope, 1, 0)
		} else {
			assertBands(scope, 0, 1)
		}
	}
}

func TestEnergy_FourthPOSUsesBeyondThreeBonusLadder(t *testing.T) {
	// GIVEN: A 4-POS entity entered per POS, its 4th POS with 6 contracts
	e := entityScope(4).Entity
	fourth := e.Members[3]
	scope := generic.Scope{ID: fourth.Code, Mode: generic.ModePOS, Period: generic.NewPeriod(2025, time.May), SellPoint: fourth, Entity: e, WorkingDays: 20}
	sheet := energy.Calculator{}.NewSheet()
	require.NoError(t, sheet.Set(energy.CategoryLuceConsumer, "", n(6)))

	// WHEN: Evaluated
	r, err := energy.Calculator{}.Evaluate(scope, sheet, snapshot())
	require.NoError(t, err)

	// THEN: soglieOltre3 [6,12,18] applies: bonus tier 1 pays 6*2 = 12
	require.Len(t, r.Bonuses, 1)
	assert.Equal(t, 1, r.Bonuses[0].Tier)
	assert.True(t, r.Bonuses[0].Amount.Equal(n(12)), "bonus %s", r.Bonuses[0].Amount)

	// AND: the lead with the same volumes stays below soglieFinoA3 [10,20,30]
	lead := generic.Scope{ID: "P1", Mode: generic.ModePOS, Period: scope.Period, SellPoint: e.Lead(), Entity: e, WorkingDays: 20}
	leadSheet := energy.Calculator{}.NewSheet()
	require.NoError(t, leadSheet.Set(energy.CategoryLuceConsumer, "", n(6)))
	lr, err := energy.Calculator{}.Evaluate(lead, leadSheet, snapshot())
	require.NoError(t, err)
	assert.Empty(t, lr.Bonuses)
}
