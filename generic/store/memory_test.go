package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/incentive-engine/generic"
	"github.com/warp/incentive-engine/generic/store"
)

func TestMemory_LayersRoundTripAndIsolate(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()

	// GIVEN: An org layer saved
	org := generic.NewLayer(generic.LayerOrg).SetScalar("mobile.puntiAttivazione.TIED", decimal.NewFromInt(2))
	require.NoError(t, m.SaveLayer(ctx, "acme", org))

	// WHEN: The caller mutates its copy
	org.SetScalar("mobile.puntiAttivazione.TIED", decimal.NewFromInt(9))

	// THEN: The stored layer is unchanged and other orgs are empty
	got, err := m.LoadLayer(ctx, generic.LayerOrg, "acme")
	require.NoError(t, err)
	assert.True(t, got.Values["mobile.puntiAttivazione.TIED"].Scalar.Equal(decimal.NewFromInt(2)))

	other, err := m.LoadLayer(ctx, generic.LayerOrg, "globex")
	require.NoError(t, err)
	assert.Empty(t, other.Values)
}

func TestMemory_SellPointsUpsertByCode(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()

	require.NoError(t, m.SaveSellPoints(ctx, "acme", []generic.SellPoint{{Code: "P1", Name: "a"}, {Code: "P2"}}))
	require.NoError(t, m.SaveSellPoints(ctx, "acme", []generic.SellPoint{{Code: "P1", Name: "b"}, {Code: "P3"}}))

	sps, err := m.ListSellPoints(ctx, "acme")
	require.NoError(t, err)
	require.Len(t, sps, 3)
	assert.Equal(t, "b", sps[0].Name)
	assert.Equal(t, "P3", sps[2].Code)
}

func TestMemory_PreventiviNewestFirst(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	t0 := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, m.SavePreventivo(ctx, generic.Preventivo{ID: "a", Org: "acme", CreatedAt: t0}))
	require.NoError(t, m.SavePreventivo(ctx, generic.Preventivo{ID: "b", Org: "acme", CreatedAt: t0.Add(time.Hour)}))
	require.NoError(t, m.SavePreventivo(ctx, generic.Preventivo{ID: "c", Org: "other", CreatedAt: t0}))

	list, err := m.ListPreventivi(ctx, "acme")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].ID)

	_, err = m.GetPreventivo(ctx, "zzz")
	assert.True(t, errors.Is(err, generic.ErrNotFound))
}
