package generic

import (
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SCOPE - What one calculator call evaluates
// =============================================================================

// Scope is the POS or legal entity a calculator evaluates. Calculators are
// written once against Scope; the projector decides what a scope contains.
//
//   POS mode: SellPoint is the POS, POSCount is 1
//   RS mode:  SellPoint is the entity lead, Members are all entity POS
type Scope struct {
	ID          string
	Mode        EntryMode
	Period      Period
	SellPoint   SellPoint
	Entity      *LegalEntity
	WorkingDays int
}

// EntityName returns the legal-entity name of the scope.
func (s Scope) EntityName() string {
	if s.Entity != nil {
		return s.Entity.Name
	}
	return s.SellPoint.LegalEntity
}

// EntityKey returns the canonical legal-entity key of the scope.
func (s Scope) EntityKey() string {
	if s.Entity != nil {
		return s.Entity.Key
	}
	return s.SellPoint.EntityKey()
}

// Members returns the POS whose per-POS parameters the scope aggregates.
func (s Scope) Members() []SellPoint {
	if s.Mode == ModeRS && s.Entity != nil {
		return s.Entity.Members
	}
	return []SellPoint{s.SellPoint}
}

// MemberIndex returns the position of the scope's POS among the members of
// its legal entity, 0 for the lead or when the scope carries no entity.
func (s Scope) MemberIndex() int {
	if s.Entity == nil {
		return 0
	}
	for i, m := range s.Entity.Members {
		if m.Code == s.SellPoint.Code {
			return i
		}
	}
	return 0
}

// POSCount returns the number of POS the scope stands for.
func (s Scope) POSCount() int {
	return len(s.Members())
}

// Ladder resolves the threshold ladder of a track section for the scope.
//
// POS mode: the ladder at perPOS(pos), lowered by the POS discount.
// RS mode:  "<section>.soglieRS.<entity>" when configured, else the
//           element-wise sum of every member's discounted per-POS ladder.
func (s Scope) Ladder(cfg Resolver, section string, perPOS func(SellPoint) string, minTiers, maxTiers int) (TierLadder, error) {
	if s.Mode == ModeRS {
		if explicit, ok := EntityPath(cfg, Path(section, "soglieRS"), s.EntityKey()); ok {
			return LoadLadder(cfg, explicit, minTiers, maxTiers)
		}
	}

	var sum TierLadder
	for _, m := range s.Members() {
		l, err := LoadLadder(cfg, perPOS(m), minTiers, maxTiers)
		if err != nil {
			return TierLadder{}, err
		}
		sum, err = sum.Sum(l.Discounted(m.ThresholdDiscount))
		if err != nil {
			return TierLadder{}, err
		}
	}
	return sum, nil
}

// Target resolves a scalar target the same way Ladder resolves a ladder:
// explicit "<section>.<rsField>.<entityKey>" in RS mode, else the sum of the
// discounted per-POS targets.
func (s Scope) Target(cfg Resolver, section, rsField string, perPOS func(SellPoint) string) (decimal.Decimal, error) {
	if s.Mode == ModeRS {
		if explicit, ok := EntityPath(cfg, Path(section, rsField), s.EntityKey()); ok {
			return cfg.Resolve(explicit)
		}
	}

	total := decimal.Zero
	for _, m := range s.Members() {
		t, err := cfg.Resolve(perPOS(m))
		if err != nil {
			return decimal.Zero, err
		}
		if m.ThresholdDiscount.IsPositive() {
			t = t.Mul(hundred.Sub(m.ThresholdDiscount)).Div(hundred)
		}
		total = total.Add(t)
	}
	return total, nil
}

// =============================================================================
// ENTITY-KEYED PARAMETERS
// =============================================================================

// EntityPath finds the parameter below prefix whose last part names the
// entity. Names are matched by canonical key, so "x.Rossi S.r.l." and
// "x.rossi_srl" both address entity rossi_srl. The canonical spelling wins
// when both are configured.
func EntityPath(cfg Resolver, prefix, entityKey string) (string, bool) {
	exact := Path(prefix, entityKey)
	if cfg.Has(exact) {
		return exact, true
	}
	for _, p := range cfg.Keys(prefix) {
		if EntityKey(strings.TrimPrefix(p, prefix+".")) == entityKey {
			return p, true
		}
	}
	return "", false
}

// UnmatchedEntityPaths returns the parameters below prefix that name no
// entity of the evaluation, as AmbiguousEntityError values.
func UnmatchedEntityPaths(cfg Resolver, prefix, use string, entities []*LegalEntity) []*AmbiguousEntityError {
	known := make(map[string]bool, len(entities))
	for _, e := range entities {
		known[e.Key] = true
	}
	var out []*AmbiguousEntityError
	for _, p := range cfg.Keys(prefix) {
		name := strings.TrimPrefix(p, prefix+".")
		if key := EntityKey(name); !known[key] {
			out = append(out, &AmbiguousEntityError{Name: name, Key: key, Use: use})
		}
	}
	return out
}
