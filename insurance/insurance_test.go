package insurance_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/incentive-engine/generic"
	"github.com/warp/incentive-engine/insurance"
)

func TestInsurance_ReloadCreditedWithinCap(t *testing.T) {
	// GIVEN: 10 CASA + 5 PRO = 20 base points, 6 RELOAD
	calc := insurance.Calculator()
	sheet := calc.NewSheet()
	require.NoError(t, sheet.Set(insurance.CategoryCasa, "", decimal.NewFromInt(10)))
	require.NoError(t, sheet.Set(insurance.CategoryPro, "", decimal.NewFromInt(5)))
	require.NoError(t, sheet.Set(insurance.CategoryReload, "", decimal.NewFromInt(6)))

	snap := generic.NewSnapshot(insurance.Defaults(), generic.NewLayer(generic.LayerSystem), generic.NewLayer(generic.LayerOrg))
	scope := generic.Scope{
		ID: "P1", Mode: generic.ModePOS, Period: generic.NewPeriod(2025, time.June),
		SellPoint: generic.SellPoint{Code: "P1", LegalEntity: "Casa Srl"},
	}

	// WHEN: Evaluated
	r, err := calc.Evaluate(scope, sheet, snap)
	require.NoError(t, err)

	// THEN: RELOAD credits min(6, 15% of 20) = 3 points -> 23 points, tier 2
	assert.True(t, r.Points.Equal(decimal.NewFromInt(23)), "points %s", r.Points)
	assert.Equal(t, 2, r.Tier)

	// AND: premium = 10*5 + 5*10 + bonusSoglia 120
	assert.True(t, r.Premium.Equal(decimal.NewFromInt(220)), "premium %s", r.Premium)
	assert.True(t, r.Contribution(insurance.ContributionPro).Points.Equal(decimal.NewFromInt(10)))
	assert.True(t, r.RunRate.PointsPerDay.IsZero(), "no working days, no run rate")
}
