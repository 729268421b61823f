/*
store.go - Persistence interfaces for the outer adapters

PURPOSE:
  The engine persists nothing. The deployment around it stores three things:
  the system and org override layers, the sell points of each org, and
  saved evaluations ("preventivi"). These interfaces sit between the API
  and the database so handlers can be tested against memory.

KEY INTERFACES:
  LayerStore:      System and per-org configuration layers
  SellPointStore:  Sell points of an org
  PreventivoStore: Saved evaluation reports (opaque JSON records)

NOT FOUND:
  Layers that were never saved load as empty layers; an org without
  overrides is normal. Missing preventivi return ErrNotFound.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite
  - generic/store/memory.go: In-memory for testing

SEE ALSO:
  - api/handlers.go: Uses Store
*/
package generic

import (
	"context"
	"time"
)

// =============================================================================
// STORES
// =============================================================================

// LayerStore persists override layers. The default layer lives in code and
// is never stored.
type LayerStore interface {
	// LoadLayer returns the system layer (org ignored) or an org layer.
	LoadLayer(ctx context.Context, name LayerName, org string) (Layer, error)

	// SaveLayer replaces a stored layer as a whole.
	SaveLayer(ctx context.Context, org string, layer Layer) error
}

// SellPointStore persists the sell points of an org.
type SellPointStore interface {
	ListSellPoints(ctx context.Context, org string) ([]SellPoint, error)

	// SaveSellPoints upserts by code, keeping existing order for known codes.
	SaveSellPoints(ctx context.Context, org string, sellPoints []SellPoint) error
}

// Preventivo is a saved evaluation. Report is the serialized report; the
// store treats it as opaque.
type Preventivo struct {
	ID        string    `json:"id"`
	Org       string    `json:"org"`
	Name      string    `json:"name"`
	Period    Period    `json:"period"`
	Mode      EntryMode `json:"mode"`
	CreatedAt time.Time `json:"created_at"`
	Report    []byte    `json:"-"`
}

// PreventivoStore persists saved evaluations.
type PreventivoStore interface {
	SavePreventivo(ctx context.Context, p Preventivo) error
	GetPreventivo(ctx context.Context, id string) (Preventivo, error)

	// ListPreventivi returns an org's preventivi, newest first.
	ListPreventivi(ctx context.Context, org string) ([]Preventivo, error)
}

// Store is everything the API persists.
type Store interface {
	LayerStore
	SellPointStore
	PreventivoStore
}
