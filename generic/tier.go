/*
tier.go - Tier ladders and tier resolution

PURPOSE:
  A TierLadder is an ascending sequence of thresholds ("soglie"). Every
  track resolves the tier its accumulated points reached with the same
  algorithm, so the tier semantics are identical across product lines.

RESOLUTION:
  Scan thresholds from highest to lowest; the first threshold that is
  strictly positive and <= accumulated is the reached tier (1-based).
  None reached -> tier 0.

  - Exact equality reaches the tier (>=, not >)
  - A threshold <= 0 disables that tier; it is never reached by default
  - Tiers are cumulative: reaching tier 3 implies surpassing tiers 1-2

MONOTONICITY:
  For a ladder whose enabled thresholds are non-decreasing, ReachedTier is
  monotonic non-decreasing in accumulated. Validate enforces the ordering.

RESCALING:
  Discounted(pct): every threshold * (1 - pct/100), used for POS discounts
  Scaled(k):       every threshold * k, used for POS-count ladders
  Sum(o):          element-wise sum, used for RS-mode ladders

EXAMPLE:
  ladder := generic.NewTierLadder(generic.Dec(70), generic.Dec(105), generic.Dec(135), generic.Dec(165))
  ladder.ReachedTier(generic.Dec(70))  // 1
  ladder.ReachedTier(generic.Dec(69))  // 0
*/
package generic

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MaxTiers is the largest ladder any track configures.
const MaxTiers = 5

var hundred = decimal.NewFromInt(100)

// TierLadder is an ordered sequence of thresholds.
type TierLadder struct {
	Thresholds []decimal.Decimal `json:"thresholds"`
}

// NewTierLadder builds a ladder from thresholds. The slice is copied.
func NewTierLadder(thresholds ...decimal.Decimal) TierLadder {
	return TierLadder{Thresholds: copyDecimals(thresholds)}
}

// Len returns the number of tiers, enabled or not.
func (l TierLadder) Len() int {
	return len(l.Thresholds)
}

// Enabled reports whether the 1-based tier can be reached at all.
func (l TierLadder) Enabled(tier int) bool {
	if tier < 1 || tier > len(l.Thresholds) {
		return false
	}
	return l.Thresholds[tier-1].IsPositive()
}

// Threshold returns the 1-based tier threshold.
func (l TierLadder) Threshold(tier int) decimal.Decimal {
	if tier < 1 || tier > len(l.Thresholds) {
		return decimal.Zero
	}
	return l.Thresholds[tier-1]
}

// ReachedTier returns the highest tier whose threshold is positive and
// <= accumulated, or 0.
func (l TierLadder) ReachedTier(accumulated decimal.Decimal) int {
	for i := len(l.Thresholds) - 1; i >= 0; i-- {
		t := l.Thresholds[i]
		if t.IsPositive() && accumulated.GreaterThanOrEqual(t) {
			return i + 1
		}
	}
	return 0
}

// MaxTier returns the highest enabled tier.
func (l TierLadder) MaxTier() int {
	for i := len(l.Thresholds) - 1; i >= 0; i-- {
		if l.Thresholds[i].IsPositive() {
			return i + 1
		}
	}
	return 0
}

// Next returns the first enabled tier above the one accumulated reaches,
// with its threshold and the gap to it. ok is false at the top.
func (l TierLadder) Next(accumulated decimal.Decimal) (tier int, threshold, gap decimal.Decimal, ok bool) {
	reached := l.ReachedTier(accumulated)
	for t := reached + 1; t <= len(l.Thresholds); t++ {
		th := l.Thresholds[t-1]
		if th.IsPositive() && th.GreaterThan(accumulated) {
			return t, th, th.Sub(accumulated), true
		}
	}
	return 0, decimal.Zero, decimal.Zero, false
}

// FirstTarget returns the lowest enabled threshold.
func (l TierLadder) FirstTarget() (decimal.Decimal, bool) {
	for _, t := range l.Thresholds {
		if t.IsPositive() {
			return t, true
		}
	}
	return decimal.Zero, false
}

// =============================================================================
// RESCALING
// =============================================================================

// Discounted lowers every threshold by pct percent. Zero or negative pct
// returns the ladder unchanged; disabled tiers stay disabled.
func (l TierLadder) Discounted(pct decimal.Decimal) TierLadder {
	if !pct.IsPositive() {
		return NewTierLadder(l.Thresholds...)
	}
	factor := hundred.Sub(pct).Div(hundred)
	if factor.IsNegative() {
		factor = decimal.Zero
	}
	return l.Scaled(factor)
}

// Scaled multiplies every threshold by factor.
func (l TierLadder) Scaled(factor decimal.Decimal) TierLadder {
	out := make([]decimal.Decimal, len(l.Thresholds))
	for i, t := range l.Thresholds {
		if !t.IsPositive() {
			out[i] = decimal.Zero
			continue
		}
		out[i] = t.Mul(factor)
	}
	return TierLadder{Thresholds: out}
}

// Sum adds another ladder element-wise. Ladders must have the same length.
// A tier disabled in either operand stays disabled.
func (l TierLadder) Sum(o TierLadder) (TierLadder, error) {
	if len(l.Thresholds) == 0 {
		return NewTierLadder(o.Thresholds...), nil
	}
	if len(l.Thresholds) != len(o.Thresholds) {
		return TierLadder{}, &LadderError{Reason: fmt.Sprintf("cannot sum ladders of %d and %d tiers", len(l.Thresholds), len(o.Thresholds))}
	}
	out := make([]decimal.Decimal, len(l.Thresholds))
	for i := range l.Thresholds {
		if !l.Thresholds[i].IsPositive() || !o.Thresholds[i].IsPositive() {
			out[i] = decimal.Zero
			continue
		}
		out[i] = l.Thresholds[i].Add(o.Thresholds[i])
	}
	return TierLadder{Thresholds: out}, nil
}

// DisableFrom disables every tier >= tier (1-based).
func (l TierLadder) DisableFrom(tier int) TierLadder {
	out := NewTierLadder(l.Thresholds...)
	for i := tier - 1; i < len(out.Thresholds); i++ {
		if i >= 0 {
			out.Thresholds[i] = decimal.Zero
		}
	}
	return out
}

// Padded extends the ladder with disabled tiers up to n.
func (l TierLadder) Padded(n int) TierLadder {
	out := NewTierLadder(l.Thresholds...)
	for len(out.Thresholds) < n {
		out.Thresholds = append(out.Thresholds, decimal.Zero)
	}
	return out
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks the tier count and that enabled thresholds never decrease.
func (l TierLadder) Validate(minTiers, maxTiers int) error {
	n := len(l.Thresholds)
	if n < minTiers || n > maxTiers {
		return &LadderError{Reason: fmt.Sprintf("expected %d..%d tiers, got %d", minTiers, maxTiers, n)}
	}
	var prev decimal.Decimal
	seen := false
	for i, t := range l.Thresholds {
		if !t.IsPositive() {
			continue
		}
		if seen && t.LessThan(prev) {
			return &LadderError{Reason: fmt.Sprintf("threshold %d (%s) below previous (%s)", i+1, t, prev)}
		}
		prev, seen = t, true
	}
	return nil
}

// LoadLadder resolves the ladder at path and validates its shape.
func LoadLadder(cfg Resolver, path string, minTiers, maxTiers int) (TierLadder, error) {
	ds, err := cfg.ResolveLadder(path)
	if err != nil {
		return TierLadder{}, err
	}
	l := TierLadder{Thresholds: ds}
	if err := l.Validate(minTiers, maxTiers); err != nil {
		if le, ok := err.(*LadderError); ok {
			le.Path = path
		}
		return TierLadder{}, err
	}
	return l, nil
}
