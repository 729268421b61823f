package generic_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/incentive-engine/generic"
)

// =============================================================================
// WRITE-TIME CAPS
// =============================================================================

func TestSheet_CapClampsDerivedCategory(t *testing.T) {
	// GIVEN: 6 base pieces
	sheet := cappedSheet()
	require.NoError(t, sheet.Set(catBase, "", d(6)))

	// WHEN: 10 add-ons are entered
	require.NoError(t, sheet.Set(catAddon, "", d(10)))

	// THEN: The add-on is clamped to its ceiling, the request is kept
	assertDec(t, "6", sheet.Pieces(catAddon))
	assertDec(t, "10", sheet.Requested(catAddon, ""))
	assert.Equal(t, "capped from 10 to 6", generic.ClampNote(sheet, catAddon, ""))
}

func TestSheet_CapsHoldForAnyOrdering(t *testing.T) {
	type write struct {
		c generic.Category
		n int64
	}
	orderings := [][]write{
		{{catBase, 4}, {catOther, 2}, {catAddon, 5}, {catGuard, 9}},
		{{catGuard, 9}, {catAddon, 5}, {catOther, 2}, {catBase, 4}},
		{{catAddon, 5}, {catBase, 4}, {catGuard, 9}, {catOther, 2}},
	}

	for i, writes := range orderings {
		sheet := cappedSheet()
		for _, w := range writes {
			require.NoError(t, sheet.Set(w.c, "", d(w.n)))

			// Invariant after every write
			base := sheet.Sum(catBase, catOther)
			assert.True(t, sheet.Pieces(catAddon).LessThanOrEqual(base), "ordering %d", i)
			assert.True(t, sheet.Pieces(catGuard).LessThanOrEqual(base.Sub(sheet.Pieces(catAddon))), "ordering %d", i)
		}

		// THEN: Every ordering converges to the same effective values
		assertDec(t, "5", sheet.Pieces(catAddon))
		assertDec(t, "1", sheet.Pieces(catGuard))
	}
}

func TestSheet_LoweringBaseReclampsDerived(t *testing.T) {
	sheet := cappedSheet()
	require.NoError(t, sheet.Set(catBase, "", d(10)))
	require.NoError(t, sheet.Set(catAddon, "", d(8)))
	assertDec(t, "8", sheet.Pieces(catAddon))

	require.NoError(t, sheet.Set(catBase, "", d(3)))

	assertDec(t, "3", sheet.Pieces(catAddon))
}

// =============================================================================
// BOUNDARY VALIDATION
// =============================================================================

func TestSheet_AddRawRejectsInvalidPieces(t *testing.T) {
	for _, pieces := range []float64{-1, math.NaN(), math.Inf(1), math.Inf(-1)} {
		sheet := cappedSheet()

		err := sheet.AddRaw(generic.RawVolume{Category: "BASE", Pieces: pieces})

		assert.True(t, errors.Is(err, generic.ErrInvalidVolume), "pieces %v", pieces)
		assert.True(t, sheet.IsEmpty(), "nothing stored for %v", pieces)
	}
}

func TestSheet_AddRawRejectsUnknownCategory(t *testing.T) {
	err := cappedSheet().AddRaw(generic.RawVolume{Category: "NOPE", Pieces: 1})
	assert.True(t, errors.Is(err, generic.ErrUnknownCategory))
}

func TestSheet_ClusterKeysValidated(t *testing.T) {
	sheet := cappedSheet()

	assert.NoError(t, sheet.Set(catBundle, "A", d(2)))
	assert.True(t, errors.Is(sheet.Set(catBundle, "Z", d(1)), generic.ErrInvalidVolume))
	assert.True(t, errors.Is(sheet.Set(catBundle, "", d(1)), generic.ErrInvalidVolume))
	assert.True(t, errors.Is(sheet.Set(catBase, "A", d(1)), generic.ErrInvalidVolume))
}

func TestSheet_AddAccumulatesDuplicateRows(t *testing.T) {
	sheet := cappedSheet()
	require.NoError(t, sheet.AddRaw(generic.RawVolume{Category: "BUNDLE", Cluster: "A", Pieces: 2}))
	require.NoError(t, sheet.AddRaw(generic.RawVolume{Category: "BUNDLE", Cluster: "A", Pieces: 3}))
	require.NoError(t, sheet.AddRaw(generic.RawVolume{Category: "BUNDLE", Cluster: "B", Pieces: 1}))

	assertDec(t, "5", sheet.PiecesAt(catBundle, "A"))
	assertDec(t, "6", sheet.Pieces(catBundle))
	assert.Len(t, sheet.Entries(), 2)
}

func TestSheet_CloneIsIndependent(t *testing.T) {
	sheet := cappedSheet()
	require.NoError(t, sheet.Set(catBase, "", d(5)))

	clone := sheet.Clone()
	require.NoError(t, clone.Set(catBase, "", d(1)))

	assertDec(t, "5", sheet.Pieces(catBase))
	assertDec(t, "1", clone.Pieces(catBase))
}
