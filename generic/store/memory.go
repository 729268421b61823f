// Package store provides Store implementations.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/warp/incentive-engine/generic"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu         sync.RWMutex
	system     generic.Layer
	orgs       map[string]generic.Layer
	sellPoints map[string][]generic.SellPoint
	preventivi map[string]generic.Preventivo
}

var _ generic.Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		system:     generic.NewLayer(generic.LayerSystem),
		orgs:       make(map[string]generic.Layer),
		sellPoints: make(map[string][]generic.SellPoint),
		preventivi: make(map[string]generic.Preventivo),
	}
}

// LoadLayer returns a copy of the stored layer, or an empty one.
func (m *Memory) LoadLayer(_ context.Context, name generic.LayerName, org string) (generic.Layer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	switch name {
	case generic.LayerSystem:
		return generic.NewLayer(generic.LayerSystem).Merge(m.system), nil
	case generic.LayerOrg:
		out := generic.NewLayer(generic.LayerOrg)
		if l, ok := m.orgs[org]; ok {
			out = out.Merge(l)
		}
		return out, nil
	default:
		return generic.Layer{}, fmt.Errorf("%w: layer %q is not stored", generic.ErrInvalidInput, name)
	}
}

// SaveLayer replaces the stored layer.
func (m *Memory) SaveLayer(_ context.Context, org string, layer generic.Layer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch layer.Name {
	case generic.LayerSystem:
		m.system = generic.NewLayer(generic.LayerSystem).Merge(layer)
	case generic.LayerOrg:
		if org == "" {
			return fmt.Errorf("%w: org layer without org", generic.ErrInvalidInput)
		}
		m.orgs[org] = generic.NewLayer(generic.LayerOrg).Merge(layer)
	default:
		return fmt.Errorf("%w: layer %q is not stored", generic.ErrInvalidInput, layer.Name)
	}
	return nil
}

func (m *Memory) ListSellPoints(_ context.Context, org string) ([]generic.SellPoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]generic.SellPoint(nil), m.sellPoints[org]...), nil
}

// SaveSellPoints upserts by code.
func (m *Memory) SaveSellPoints(_ context.Context, org string, sellPoints []generic.SellPoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing := m.sellPoints[org]
	index := make(map[string]int, len(existing))
	for i, sp := range existing {
		index[sp.Code] = i
	}
	for _, sp := range sellPoints {
		if i, ok := index[sp.Code]; ok {
			existing[i] = sp
			continue
		}
		index[sp.Code] = len(existing)
		existing = append(existing, sp)
	}
	m.sellPoints[org] = existing
	return nil
}

func (m *Memory) SavePreventivo(_ context.Context, p generic.Preventivo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.Report = append([]byte(nil), p.Report...)
	m.preventivi[p.ID] = p
	return nil
}

func (m *Memory) GetPreventivo(_ context.Context, id string) (generic.Preventivo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.preventivi[id]
	if !ok {
		return generic.Preventivo{}, fmt.Errorf("%w: preventivo %s", generic.ErrNotFound, id)
	}
	return p, nil
}

// ListPreventivi returns an org's preventivi, newest first.
func (m *Memory) ListPreventivi(_ context.Context, org string) ([]generic.Preventivo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []generic.Preventivo
	for _, p := range m.preventivi {
		if p.Org == org {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
