package generic_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/incentive-engine/generic"
)

func layers() (generic.Layer, generic.Layer, generic.Layer) {
	def := generic.NewLayer(generic.LayerDefault).
		SetScalar("mobile.puntiAttivazione.TIED", d(1)).
		SetScalar("mobile.puntiAttivazione.MNP", generic.MustParseDecimal("0.5")).
		SetLadder("mobile.soglie.C1", ds(70, 105, 135, 165)...)
	sys := generic.NewLayer(generic.LayerSystem).
		SetScalar("mobile.puntiAttivazione.TIED", d(2))
	org := generic.NewLayer(generic.LayerOrg)
	return def, sys, org
}

// =============================================================================
// RESOLUTION ORDER
// =============================================================================

func TestResolve_InnermostLayerWins(t *testing.T) {
	// GIVEN: default TIED=1, system TIED=2
	def, sys, org := layers()
	org.SetScalar("mobile.puntiAttivazione.MNP", d(3))
	snap := generic.NewSnapshot(def, sys, org)

	// THEN: system beats default, org beats both
	v, err := snap.Resolve("mobile.puntiAttivazione.TIED")
	require.NoError(t, err)
	assertDec(t, "2", v)

	v, err = snap.Resolve("mobile.puntiAttivazione.MNP")
	require.NoError(t, err)
	assertDec(t, "3", v)
}

func TestResolve_MissingEverywhereIsConfigurationMissing(t *testing.T) {
	def, sys, org := layers()
	snap := generic.NewSnapshot(def, sys, org)

	_, err := snap.Resolve("mobile.puntiAttivazione.NOPE")

	var cm *generic.ConfigMissingError
	require.True(t, errors.As(err, &cm))
	assert.Equal(t, "mobile.puntiAttivazione.NOPE", cm.Path)
	assert.True(t, errors.Is(err, generic.ErrConfigurationMissing))
}

func TestResolve_KindMismatchIsConfigurationMissing(t *testing.T) {
	def, sys, org := layers()
	snap := generic.NewSnapshot(def, sys, org)

	_, err := snap.Resolve("mobile.soglie.C1")
	assert.True(t, errors.Is(err, generic.ErrConfigurationMissing))

	_, err = snap.ResolveLadder("mobile.puntiAttivazione.TIED")
	assert.True(t, errors.Is(err, generic.ErrConfigurationMissing))
}

func TestResolveLadder_WholeLadderReplaced(t *testing.T) {
	// GIVEN: A 4-tier default and a 3-tier system ladder at the same path
	def, sys, org := layers()
	sys.SetLadder("mobile.soglie.C1", ds(50, 90, 120)...)
	snap := generic.NewSnapshot(def, sys, org)

	// WHEN: Resolved
	ladder, err := snap.ResolveLadder("mobile.soglie.C1")

	// THEN: The system ladder replaces the default entirely, no 4th tier spliced in
	require.NoError(t, err)
	assert.Len(t, ladder, 3)
	assertDec(t, "120", ladder[2])
}

// =============================================================================
// OVERRIDDEN-NESS
// =============================================================================

func TestIsOverridden_ComparesWithDefaultOnly(t *testing.T) {
	def, sys, org := layers()
	// org equal to system but different from default: still overridden
	org.SetScalar("mobile.puntiAttivazione.TIED", d(2))
	// org equal to default: not overridden
	org.SetScalar("mobile.puntiAttivazione.MNP", generic.MustParseDecimal("0.50"))
	org.SetScalar("mobile.extra", d(1))
	snap := generic.NewSnapshot(def, sys, org)

	assert.True(t, snap.IsOverridden("mobile.puntiAttivazione.TIED"))
	assert.False(t, snap.IsOverridden("mobile.puntiAttivazione.MNP"))
	assert.True(t, snap.IsOverridden("mobile.extra"), "absent in defaults, present in override")
	assert.False(t, snap.IsOverridden("mobile.nowhere"))
	assert.False(t, snap.IsOverridden("mobile.soglie.C1"))
}

func TestSnapshot_IsImmutable(t *testing.T) {
	// GIVEN: A snapshot built from an org layer
	def, sys, org := layers()
	snap := generic.NewSnapshot(def, sys, org)

	// WHEN: The org layer is mutated afterwards
	org.SetScalar("mobile.puntiAttivazione.TIED", d(99))
	def.Values["mobile.soglie.C1"].Ladder[0] = d(1)

	// THEN: The snapshot still sees the original values
	v, _ := snap.Resolve("mobile.puntiAttivazione.TIED")
	assertDec(t, "2", v)
	ladder, _ := snap.ResolveLadder("mobile.soglie.C1")
	assertDec(t, "70", ladder[0])
}

func TestKeys_MatchesSegmentBoundary(t *testing.T) {
	def, sys, org := layers()
	org.SetLadder("mobile.soglieRS.rossi_srl", ds(100, 200, 300)...)
	org.SetScalar("mobilex.other", d(1))
	snap := generic.NewSnapshot(def, sys, org)

	keys := snap.Keys("mobile.soglieRS")
	assert.Equal(t, []string{"mobile.soglieRS.rossi_srl"}, keys)
	assert.NotContains(t, snap.Keys("mobile"), "mobilex.other")
}

func TestEffective_ListsSourceLayer(t *testing.T) {
	def, sys, org := layers()
	snap := generic.NewSnapshot(def, sys, org)

	byPath := make(map[string]generic.EffectiveValue)
	for _, ev := range snap.Effective() {
		byPath[ev.Path] = ev
	}

	assert.Equal(t, generic.LayerSystem, byPath["mobile.puntiAttivazione.TIED"].Source)
	assert.True(t, byPath["mobile.puntiAttivazione.TIED"].Overridden)
	assert.Equal(t, generic.LayerDefault, byPath["mobile.soglie.C1"].Source)
}

func TestRateAt_OutOfRangeTierIsMissing(t *testing.T) {
	def, sys, org := layers()
	def.SetLadder("mobile.premi.TIED", ds(0, 4, 6)...)
	snap := generic.NewSnapshot(def, sys, org)

	rate, err := generic.RateAt(snap, "mobile.premi.TIED", 2)
	require.NoError(t, err)
	assertDec(t, "6", rate)

	_, err = generic.RateAt(snap, "mobile.premi.TIED", 3)
	assert.True(t, errors.Is(err, generic.ErrConfigurationMissing))
}
