package generic_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/incentive-engine/generic"
)

func flatCalculator() generic.FlatWeightsCalculator {
	return generic.FlatWeightsCalculator{
		TrackID:    testTrack,
		Section:    "flat",
		Categories: []generic.Category{catBase, catOther},
		Reload:     catReload,
		Exports:    map[generic.ContributionID]generic.Category{"flat.other": catOther},
	}
}

func flatSnapshot() *generic.Snapshot {
	def := generic.NewLayer(generic.LayerDefault).
		SetScalar("flat.punti.BASE", d(1)).
		SetScalar("flat.punti.OTHER", d(2)).
		SetScalar("flat.punti.RELOAD", d(1)).
		SetScalar("flat.premi.BASE", d(5)).
		SetScalar("flat.premi.OTHER", d(10)).
		SetLadder("flat.soglie", ds(10, 20, 35)...).
		SetLadder("flat.bonusSoglia", ds(0, 50, 120, 250)...).
		SetScalar("flat.reload.sogliaBase", d(10)).
		SetScalar("flat.reload.capPercent", d(15))
	return generic.NewSnapshot(def, generic.NewLayer(generic.LayerSystem), generic.NewLayer(generic.LayerOrg))
}

func posScope() generic.Scope {
	return generic.Scope{
		ID:          "P1",
		Mode:        generic.ModePOS,
		Period:      generic.NewPeriod(2025, time.March),
		SellPoint:   sellPoint("P1", "Rossi"),
		WorkingDays: 20,
	}
}

func TestFlat_ReloadCappedAtPercentOfBase(t *testing.T) {
	// GIVEN: 20 base points and 10 reload pieces
	calc := flatCalculator()
	sheet := calc.NewSheet()
	require.NoError(t, sheet.Set(catBase, "", d(10)))
	require.NoError(t, sheet.Set(catOther, "", d(5)))
	require.NoError(t, sheet.Set(catReload, "", d(10)))

	// WHEN: Evaluated
	r, err := calc.Evaluate(posScope(), sheet, flatSnapshot())
	require.NoError(t, err)

	// THEN: Reload credits 15% of 20 = 3 points
	assertDec(t, "23", r.Points)
	assert.Equal(t, 2, r.Tier)

	// AND: premium = 10*5 + 5*10 + bonusSoglia[2]=120; reload earns no money
	assertDec(t, "220", r.Premium)
	require.Len(t, r.Bonuses, 1)
	assertDec(t, "120", r.Bonuses[0].Amount)
	assertDec(t, "10", r.Contribution("flat.other").Points)
	assertDec(t, "1.15", r.RunRate.PointsPerDay)
}

func TestFlat_ReloadNotCreditedBelowBaseThreshold(t *testing.T) {
	calc := flatCalculator()
	sheet := calc.NewSheet()
	require.NoError(t, sheet.Set(catBase, "", d(9)))
	require.NoError(t, sheet.Set(catReload, "", d(10)))

	r, err := calc.Evaluate(posScope(), sheet, flatSnapshot())

	require.NoError(t, err)
	assertDec(t, "9", r.Points)
	assert.Equal(t, 0, r.Tier)
	assertDec(t, "45", r.Premium)
	require.NotNil(t, r.GapToNext)
	assertDec(t, "1", *r.GapToNext)
}

func TestFlat_MissingParameterFailsScope(t *testing.T) {
	calc := flatCalculator()
	def := generic.NewLayer(generic.LayerDefault).SetScalar("flat.punti.BASE", d(1))
	snap := generic.NewSnapshot(def, generic.NewLayer(generic.LayerSystem), generic.NewLayer(generic.LayerOrg))

	_, err := calc.Evaluate(posScope(), calc.NewSheet(), snap)

	assert.True(t, errors.Is(err, generic.ErrConfigurationMissing))
}
