/*
snapshot.go - Three-layer configuration resolution

PURPOSE:
  Resolves the effective value of every numeric parameter (threshold, point
  weight, multiplier, premium-per-piece) by merging three ordered layers:

    1. default  - hardcoded in the track packages
    2. system   - system-admin overrides
    3. org      - per-organization overrides

  The innermost non-empty layer wins.

KEY CONCEPTS:
  - Path: Dotted address of a leaf parameter, e.g. "mobile.puntiAttivazione.TIED"
  - Value: Either a scalar or a whole ladder
  - Snapshot: Immutable merge of the three layers for one evaluation

LADDERS:
  A ladder is ONE value. A layer that sets "mobile.soglie.C1" replaces the
  entire ladder; indices are never merged across layers, so a 3-tier system
  ladder can never be spliced with a 5-tier default.

OVERRIDDEN-NESS:
  IsOverridden compares the effective value with the default layer only. An
  org value equal to the system override but different from the default is
  still overridden.

IMMUTABILITY:
  NewSnapshot copies every layer. Mutating a Layer after building a snapshot
  is never visible to evaluations already holding the snapshot.

USAGE:
  snap := generic.NewSnapshot(factory.DefaultLayer(), systemLayer, orgLayer)
  w, err := snap.Resolve("mobile.puntiAttivazione.TIED")
  ladder, err := snap.ResolveLadder("mobile.soglie.C1")

SEE ALSO:
  - factory/config.go: Builds layers from JSON/YAML documents
  - errors.go: ConfigMissingError
*/
package generic

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PATHS AND VALUES
// =============================================================================

// Path joins segments into a dotted parameter path.
func Path(segments ...string) string {
	return strings.Join(segments, ".")
}

// Value is a leaf configuration value.
type Value struct {
	Scalar   decimal.Decimal   `json:"scalar,omitempty"`
	Ladder   []decimal.Decimal `json:"ladder,omitempty"`
	IsLadder bool              `json:"is_ladder"`
}

// ScalarValue wraps a scalar.
func ScalarValue(d decimal.Decimal) Value {
	return Value{Scalar: d}
}

// LadderValue wraps a ladder. The slice is copied.
func LadderValue(ds []decimal.Decimal) Value {
	return Value{Ladder: copyDecimals(ds), IsLadder: true}
}

// Equal compares two values by kind and content.
func (v Value) Equal(o Value) bool {
	if v.IsLadder != o.IsLadder {
		return false
	}
	if !v.IsLadder {
		return v.Scalar.Equal(o.Scalar)
	}
	if len(v.Ladder) != len(o.Ladder) {
		return false
	}
	for i := range v.Ladder {
		if !v.Ladder[i].Equal(o.Ladder[i]) {
			return false
		}
	}
	return true
}

func (v Value) String() string {
	if !v.IsLadder {
		return v.Scalar.String()
	}
	parts := make([]string, len(v.Ladder))
	for i, d := range v.Ladder {
		parts[i] = d.String()
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func (v Value) clone() Value {
	if v.IsLadder {
		return LadderValue(v.Ladder)
	}
	return v
}

// =============================================================================
// LAYER
// =============================================================================

// LayerName identifies one of the three configuration layers.
type LayerName string

const (
	LayerDefault LayerName = "default"
	LayerSystem  LayerName = "system"
	LayerOrg     LayerName = "org"
)

// Layer is a flat path -> value map for one override level.
type Layer struct {
	Name   LayerName
	Values map[string]Value
}

// NewLayer creates an empty layer.
func NewLayer(name LayerName) Layer {
	return Layer{Name: name, Values: make(map[string]Value)}
}

// SetScalar sets a scalar at path, replacing any previous value.
func (l Layer) SetScalar(path string, d decimal.Decimal) Layer {
	l.Values[path] = ScalarValue(d)
	return l
}

// SetLadder sets a whole ladder at path, replacing any previous value.
func (l Layer) SetLadder(path string, ds ...decimal.Decimal) Layer {
	l.Values[path] = LadderValue(ds)
	return l
}

// Merge copies every value of o into l. Values in o win.
func (l Layer) Merge(o Layer) Layer {
	for p, v := range o.Values {
		l.Values[p] = v.clone()
	}
	return l
}

// Paths returns the layer's paths sorted.
func (l Layer) Paths() []string {
	paths := make([]string, 0, len(l.Values))
	for p := range l.Values {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func (l Layer) clone() Layer {
	c := Layer{Name: l.Name, Values: make(map[string]Value, len(l.Values))}
	for p, v := range l.Values {
		c.Values[p] = v.clone()
	}
	return c
}

// =============================================================================
// RESOLVER
// =============================================================================

// Resolver is the read-only view calculators resolve parameters through.
type Resolver interface {
	Resolve(path string) (decimal.Decimal, error)
	ResolveLadder(path string) ([]decimal.Decimal, error)
	IsOverridden(path string) bool
	Has(path string) bool
	Keys(prefix string) []string
}

// EffectiveValue is one resolved leaf with its origin.
type EffectiveValue struct {
	Path       string    `json:"path"`
	Value      Value     `json:"value"`
	Source     LayerName `json:"source"`
	Overridden bool      `json:"overridden"`
}

// =============================================================================
// SNAPSHOT
// =============================================================================

// Snapshot is the immutable merged configuration of one evaluation.
type Snapshot struct {
	layers []Layer // innermost last: default, system, org
}

var _ Resolver = (*Snapshot)(nil)

// NewSnapshot copies the three layers into an immutable snapshot.
// Layers with a nil value map are treated as empty.
func NewSnapshot(defaults, system, org Layer) *Snapshot {
	defaults.Name, system.Name, org.Name = LayerDefault, LayerSystem, LayerOrg
	return &Snapshot{layers: []Layer{defaults.clone(), system.clone(), org.clone()}}
}

// Lookup returns the innermost value at path and the layer it came from.
func (s *Snapshot) Lookup(path string) (Value, LayerName, bool) {
	for i := len(s.layers) - 1; i >= 0; i-- {
		if v, ok := s.layers[i].Values[path]; ok {
			return v, s.layers[i].Name, true
		}
	}
	return Value{}, "", false
}

// Resolve returns the effective scalar at path.
func (s *Snapshot) Resolve(path string) (decimal.Decimal, error) {
	v, _, ok := s.Lookup(path)
	if !ok {
		return decimal.Zero, &ConfigMissingError{Path: path}
	}
	if v.IsLadder {
		return decimal.Zero, fmt.Errorf("%w: %s holds a ladder, not a scalar", ErrConfigurationMissing, path)
	}
	return v.Scalar, nil
}

// ResolveLadder returns a copy of the effective ladder at path.
func (s *Snapshot) ResolveLadder(path string) ([]decimal.Decimal, error) {
	v, _, ok := s.Lookup(path)
	if !ok {
		return nil, &ConfigMissingError{Path: path}
	}
	if !v.IsLadder {
		return nil, fmt.Errorf("%w: %s holds a scalar, not a ladder", ErrConfigurationMissing, path)
	}
	return copyDecimals(v.Ladder), nil
}

// IsOverridden reports whether the effective value differs from the default
// layer. A path only present in an override layer is overridden; a path
// present nowhere is not.
func (s *Snapshot) IsOverridden(path string) bool {
	v, src, ok := s.Lookup(path)
	if !ok {
		return false
	}
	if src == LayerDefault {
		return false
	}
	def, ok := s.layers[0].Values[path]
	if !ok {
		return true
	}
	return !v.Equal(def)
}

// Has reports whether any layer defines path.
func (s *Snapshot) Has(path string) bool {
	_, _, ok := s.Lookup(path)
	return ok
}

// Keys returns every path below prefix across all layers, sorted.
// Prefix "a.b" matches "a.b.c" but not "a.bc".
func (s *Snapshot) Keys(prefix string) []string {
	seen := make(map[string]bool)
	p := prefix
	if p != "" && !strings.HasSuffix(p, ".") {
		p += "."
	}
	for _, l := range s.layers {
		for path := range l.Values {
			if strings.HasPrefix(path, p) {
				seen[path] = true
			}
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Effective lists every effective leaf of the snapshot, sorted by path.
func (s *Snapshot) Effective() []EffectiveValue {
	keys := s.Keys("")
	out := make([]EffectiveValue, 0, len(keys))
	for _, k := range keys {
		v, src, _ := s.Lookup(k)
		out = append(out, EffectiveValue{
			Path:       k,
			Value:      v.clone(),
			Source:     src,
			Overridden: s.IsOverridden(k),
		})
	}
	return out
}

// =============================================================================
// HELPERS
// =============================================================================

func copyDecimals(ds []decimal.Decimal) []decimal.Decimal {
	if ds == nil {
		return nil
	}
	out := make([]decimal.Decimal, len(ds))
	copy(out, ds)
	return out
}

// RateAt returns the tier-indexed entry of a rate table at path.
// Index 0 is the rate below the first threshold.
func RateAt(cfg Resolver, path string, tier int) (decimal.Decimal, error) {
	table, err := cfg.ResolveLadder(path)
	if err != nil {
		return decimal.Zero, err
	}
	if tier < 0 || tier >= len(table) {
		return decimal.Zero, &ConfigMissingError{Path: fmt.Sprintf("%s[%d]", path, tier)}
	}
	return table[tier], nil
}
