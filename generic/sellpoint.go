package generic

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// =============================================================================
// SELL POINT (PDV)
// =============================================================================

// Position is where a point of sale is located.
type Position string

const (
	PositionStreet         Position = "street"
	PositionShoppingCenter Position = "shopping_center"
)

// SellPoint is a single retail point of sale.
type SellPoint struct {
	Code        string   `json:"code"`
	Name        string   `json:"name"`
	LegalEntity string   `json:"legal_entity"`
	Position    Position `json:"position"`

	MobileCluster       string `json:"mobile_cluster"`
	FixedCluster        string `json:"fixed_cluster"`
	CustomerBaseCluster string `json:"customer_base_cluster"`
	VATCluster          string `json:"vat_cluster"`
	CalendarRef         string `json:"calendar_ref,omitempty"`

	// ThresholdDiscount lowers this POS's threshold ladders by a percentage.
	ThresholdDiscount decimal.Decimal `json:"threshold_discount"`
}

// EntityKey returns the canonical key of the POS's legal entity.
func (sp SellPoint) EntityKey() string {
	return EntityKey(sp.LegalEntity)
}

// HasBusinessPromoter reports whether the POS carries the Business-Promoter
// flag, i.e. its VAT cluster is one of the BP clusters.
func (sp SellPoint) HasBusinessPromoter() bool {
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(sp.VATCluster)), "BP")
}

// Validate checks identity and discount range. A discount of 100 would zero
// every threshold and disable the whole ladder, so the range is [0, 100).
func (sp SellPoint) Validate() error {
	if strings.TrimSpace(sp.Code) == "" {
		return fmt.Errorf("%w: sell point without code", ErrInvalidInput)
	}
	if EntityKey(sp.LegalEntity) == "" {
		return fmt.Errorf("%w: sell point %s has no legal entity", ErrInvalidInput, sp.Code)
	}
	if sp.ThresholdDiscount.IsNegative() || sp.ThresholdDiscount.GreaterThanOrEqual(hundred) {
		return fmt.Errorf("%w: sell point %s discount %s outside [0, 100)", ErrInvalidInput, sp.Code, sp.ThresholdDiscount)
	}
	if sp.Position != "" && sp.Position != PositionStreet && sp.Position != PositionShoppingCenter {
		return fmt.Errorf("%w: sell point %s position %q", ErrInvalidInput, sp.Code, sp.Position)
	}
	return nil
}

// =============================================================================
// LEGAL ENTITY (RAGIONE SOCIALE)
// =============================================================================

// LegalEntity is the set of sell points sharing a normalized legal-entity
// name. It has no identity beyond its key.
type LegalEntity struct {
	Name    string      `json:"name"` // As first encountered
	Key     string      `json:"key"`
	Members []SellPoint `json:"members"`
}

// Lead returns the first member; RS-mode entity volumes are attributed to it.
func (e *LegalEntity) Lead() SellPoint {
	return e.Members[0]
}

// Size returns the number of member POS.
func (e *LegalEntity) Size() int {
	return len(e.Members)
}

// HasBusinessPromoter reports whether any member carries the BP flag.
func (e *LegalEntity) HasBusinessPromoter() bool {
	for _, m := range e.Members {
		if m.HasBusinessPromoter() {
			return true
		}
	}
	return false
}

// MemberCodes returns the member POS codes in order.
func (e *LegalEntity) MemberCodes() []string {
	codes := make([]string, len(e.Members))
	for i, m := range e.Members {
		codes[i] = m.Code
	}
	return codes
}

// GroupByEntity groups sell points by entity key, preserving the order in
// which entities and members first appear.
func GroupByEntity(sellPoints []SellPoint) []*LegalEntity {
	var out []*LegalEntity
	byKey := make(map[string]*LegalEntity)
	for _, sp := range sellPoints {
		key := sp.EntityKey()
		e, ok := byKey[key]
		if !ok {
			e = &LegalEntity{Name: strings.TrimSpace(sp.LegalEntity), Key: key}
			byKey[key] = e
			out = append(out, e)
		}
		e.Members = append(e.Members, sp)
	}
	return out
}

// =============================================================================
// NAME NORMALIZATION
// =============================================================================

// EntityKey returns the canonical matching key for a free-text legal-entity
// name: accents stripped, case folded, punctuation dropped, whitespace runs
// collapsed to "_". "Rossi S.r.l." and "ROSSI  SRL" both yield "rossi_srl".
func EntityKey(name string) string {
	// Transformers and casers keep state; build them per call.
	stripMarks := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	s, _, err := transform.String(stripMarks, name)
	if err != nil {
		s = name
	}
	s = cases.Fold().String(s)

	var b strings.Builder
	sep := false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if sep && b.Len() > 0 {
				b.WriteByte('_')
			}
			sep = false
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '_':
			sep = true
		}
	}
	return b.String()
}
