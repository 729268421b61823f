package generic_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/warp/incentive-engine/generic"
)

func TestDailyRate_ZeroWorkingDaysIsZero(t *testing.T) {
	assertDec(t, "0", generic.DailyRate(d(100), 0))
	assertDec(t, "0", generic.DailyRate(d(100), -3))
	assertDec(t, "5", generic.DailyRate(d(100), 20))
	assertDec(t, "3.3333", generic.DailyRate(d(10), 3))
}

func TestForecastPercent_UndefinedWithoutTarget(t *testing.T) {
	_, ok := generic.ForecastPercent(d(10), d(0))
	assert.False(t, ok)

	pct, ok := generic.ForecastPercent(d(35), d(70))
	assert.True(t, ok)
	assertDec(t, "50", pct)
}

func TestProjectToPeriodEnd(t *testing.T) {
	assertDec(t, "40", generic.ProjectToPeriodEnd(d(20), 10, 20))
	assertDec(t, "0", generic.ProjectToPeriodEnd(d(20), 0, 20))
}
