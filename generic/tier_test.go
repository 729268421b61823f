package generic_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/incentive-engine/generic"
)

// =============================================================================
// TIER RESOLUTION
// =============================================================================

func TestReachedTier_ExactThresholdReachesTier(t *testing.T) {
	// GIVEN: The C1 mobile ladder
	ladder := generic.NewTierLadder(ds(70, 105, 135, 165)...)

	// THEN: Equality reaches the tier, one point less does not
	assert.Equal(t, 0, ladder.ReachedTier(d(69)))
	assert.Equal(t, 1, ladder.ReachedTier(d(70)))
	assert.Equal(t, 2, ladder.ReachedTier(d(134)))
	assert.Equal(t, 4, ladder.ReachedTier(d(500)))
}

func TestReachedTier_DisabledTierNeverReached(t *testing.T) {
	// GIVEN: Tier 4 disabled by a zero threshold
	ladder := generic.NewTierLadder(ds(10, 20, 30, 0)...)

	// WHEN: Points exceed every threshold
	tier := ladder.ReachedTier(d(1000))

	// THEN: The highest enabled tier is reached, never the disabled one
	assert.Equal(t, 3, tier)
	assert.Equal(t, 3, ladder.MaxTier())
	assert.False(t, ladder.Enabled(4))
}

func TestReachedTier_Monotonic(t *testing.T) {
	ladder := generic.NewTierLadder(ds(15, 25, 35)...)
	require.NoError(t, ladder.Validate(3, 5))

	prev := 0
	for p := int64(0); p <= 50; p++ {
		tier := ladder.ReachedTier(d(p))
		assert.GreaterOrEqual(t, tier, prev, "tier decreased at %d points", p)
		prev = tier
	}
}

func TestNext_ReportsGapToNextEnabledTier(t *testing.T) {
	ladder := generic.NewTierLadder(ds(70, 105, 135, 165)...)

	tier, threshold, gap, ok := ladder.Next(d(80))

	require.True(t, ok)
	assert.Equal(t, 2, tier)
	assertDec(t, "105", threshold)
	assertDec(t, "25", gap)

	_, _, _, ok = ladder.Next(d(165))
	assert.False(t, ok, "no next tier at the top")
}

// =============================================================================
// RESCALING
// =============================================================================

func TestDiscounted_LowersEveryThreshold(t *testing.T) {
	// GIVEN: A 10% POS discount
	ladder := generic.NewTierLadder(ds(70, 105, 0)...)

	// WHEN: Discounted
	out := ladder.Discounted(d(10))

	// THEN: Thresholds are 90%, disabled tiers stay disabled
	assertDec(t, "63", out.Thresholds[0])
	assertDec(t, "94.5", out.Thresholds[1])
	assertDec(t, "0", out.Thresholds[2])

	// AND: The original ladder is untouched
	assertDec(t, "70", ladder.Thresholds[0])
}

func TestSum_PreservesDisabledTiers(t *testing.T) {
	a := generic.NewTierLadder(ds(10, 20, 30, 0)...)
	b := generic.NewTierLadder(ds(5, 10, 15, 40)...)

	sum, err := a.Sum(b)

	require.NoError(t, err)
	assert.Equal(t, []string{"15", "30", "45", "0"}, ladderStrings(sum))
}

func TestSum_LengthMismatchFails(t *testing.T) {
	a := generic.NewTierLadder(ds(10, 20, 30)...)
	b := generic.NewTierLadder(ds(10, 20, 30, 40)...)

	_, err := a.Sum(b)

	assert.True(t, errors.Is(err, generic.ErrInvalidLadder))
}

func TestDisableFromAndPadded(t *testing.T) {
	ladder := generic.NewTierLadder(ds(8, 16, 25)...).Padded(4)
	assert.Equal(t, 4, ladder.Len())
	assert.Equal(t, 3, ladder.MaxTier())

	ladder = generic.NewTierLadder(ds(8, 16, 25, 40)...).DisableFrom(4)
	assert.Equal(t, 3, ladder.ReachedTier(d(100)))
}

// =============================================================================
// VALIDATION
// =============================================================================

func TestValidate_RejectsDecreasingThresholds(t *testing.T) {
	err := generic.NewTierLadder(ds(10, 30, 20)...).Validate(3, 5)
	assert.True(t, errors.Is(err, generic.ErrInvalidLadder))
}

func TestValidate_RejectsTierCount(t *testing.T) {
	assert.Error(t, generic.NewTierLadder(ds(10, 20)...).Validate(3, 5))
	assert.Error(t, generic.NewTierLadder(ds(1, 2, 3, 4, 5, 6)...).Validate(3, 5))
	assert.NoError(t, generic.NewTierLadder(ds(10, 0, 30)...).Validate(3, 5), "disabled tiers are skipped")
}

func TestLoadLadder_ReportsPath(t *testing.T) {
	snap := generic.NewSnapshot(
		generic.NewLayer(generic.LayerDefault).SetLadder("x.soglie", ds(30, 20, 10)...),
		generic.NewLayer(generic.LayerSystem),
		generic.NewLayer(generic.LayerOrg),
	)

	_, err := generic.LoadLadder(snap, "x.soglie", 3, 5)

	var le *generic.LadderError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, "x.soglie", le.Path)
}

func ladderStrings(l generic.TierLadder) []string {
	out := make([]string, len(l.Thresholds))
	for i, t := range l.Thresholds {
		out[i] = t.String()
	}
	return out
}
