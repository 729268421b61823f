/*
Package generic provides the core incentive computation engine.

PURPOSE:
  This package contains the track-agnostic types and algorithms every
  commission calculator is written against. Whether the product line is
  mobile SIMs, fixed lines, energy contracts or insurance policies, the same
  machinery resolves configuration, validates volumes, applies write-time
  caps, resolves tiers and normalizes run rates.

KEY CONCEPTS IN THIS FILE (types.go):
  - Category: A track-specific volume category (SIM subtype, line technology...)
  - VolumeEntry: A validated (category, cluster key, pieces) row
  - EvaluationResult: The read-only output of one calculator for one scope
  - Contribution: Points/pieces a track exports to dependent calculators

DESIGN PRINCIPLES:
  1. Purity: Calculators are functions of (sheet, scope, config) -> result
  2. Precision: Uses decimal.Decimal for points, thresholds and money
  3. Type Safety: Each track owns its Category enumeration
  4. Traceability: Every result carries a per-category detail breakdown

USAGE:
  sheet := mobile.Calculator{}.NewSheet()
  _ = sheet.Set(mobile.CategoryTied, "", generic.Dec(50))
  result, err := mobile.Calculator{}.Evaluate(scope, sheet, snapshot)

SEE ALSO:
  - snapshot.go: Three-layer configuration resolution
  - tier.go: Tier ladders and tier resolution
  - projection.go: POS/RS normalization boundary
*/
package generic

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

// TrackID identifies a product line ("pista").
type TrackID string

// ContributionID names a point/piece figure a track exports to dependents.
type ContributionID string

// EntryMode is the granularity at which volumes were entered.
type EntryMode string

const (
	ModePOS EntryMode = "pos" // Volumes per point of sale
	ModeRS  EntryMode = "rs"  // Volumes per legal entity (Ragione Sociale)
)

// Valid reports whether m is a known entry mode.
func (m EntryMode) Valid() bool {
	return m == ModePOS || m == ModeRS
}

// Category identifies a volume category of one track.
// The generic package has NO knowledge of concrete categories.
//
// Track packages implement this:
//
//   // In mobile/types.go
//   type Category string
//   func (c Category) CategoryID() string       { return string(c) }
//   func (c Category) CategoryTrack() generic.TrackID { return Track }
//   const CategoryTied Category = "TIED"
//
type Category interface {
	// CategoryID returns the code used in configuration paths and input rows.
	CategoryID() string

	// CategoryTrack returns the track this category belongs to.
	CategoryTrack() TrackID
}

// =============================================================================
// VOLUMES
// =============================================================================

// RawVolume is an unvalidated input row as it arrives from collaborators.
type RawVolume struct {
	Category string  `json:"category" yaml:"category"`
	Cluster  string  `json:"cluster,omitempty" yaml:"cluster,omitempty"`
	Pieces   float64 `json:"pieces" yaml:"pieces"`
}

// VolumeEntry is a validated volume row. Pieces is never negative.
type VolumeEntry struct {
	Category Category
	Cluster  string
	Pieces   decimal.Decimal
}

// Key returns the sheet key for the entry: CATEGORY or CATEGORY.CLUSTER.
func (v VolumeEntry) Key() string {
	return EntryKey(v.Category, v.Cluster)
}

// EntryKey builds the sheet key for a category and optional cluster key.
func EntryKey(c Category, cluster string) string {
	if cluster == "" {
		return c.CategoryID()
	}
	return c.CategoryID() + "." + cluster
}

// =============================================================================
// EVALUATION RESULT
// =============================================================================

// Contribution is the figure a track exports for cross-program calculators.
type Contribution struct {
	Points decimal.Decimal `json:"points"`
	Pieces decimal.Decimal `json:"pieces"`
}

// Add returns the element-wise sum.
func (c Contribution) Add(o Contribution) Contribution {
	return Contribution{Points: c.Points.Add(o.Points), Pieces: c.Pieces.Add(o.Pieces)}
}

// DetailLine is one category's contribution to a result.
type DetailLine struct {
	Category string          `json:"category"`
	Cluster  string          `json:"cluster,omitempty"`
	Pieces   decimal.Decimal `json:"pieces"`
	Points   decimal.Decimal `json:"points"`
	Premium  decimal.Decimal `json:"premium"`
	Note     string          `json:"note,omitempty"`
}

// BonusLine is a lump-sum or per-piece bonus that is not tied to one category.
type BonusLine struct {
	Name   string          `json:"name"`
	Basis  decimal.Decimal `json:"basis"`
	Tier   int             `json:"tier"`
	Amount decimal.Decimal `json:"amount"`
}

// RunRate is an accumulated figure normalized by working days.
type RunRate struct {
	PointsPerDay decimal.Decimal `json:"points_per_day"`
	PiecesPerDay decimal.Decimal `json:"pieces_per_day"`
}

// EvaluationResult is the output of one calculator for one scope.
// Results are produced fresh on every evaluation and never mutated.
type EvaluationResult struct {
	Track       TrackID   `json:"track"`
	ScopeID     string    `json:"scope_id"`
	Mode        EntryMode `json:"mode"`
	LegalEntity string    `json:"legal_entity"`
	Period      Period    `json:"period"`

	Points  decimal.Decimal `json:"points"`
	Tier    int             `json:"tier"`
	MaxTier int             `json:"max_tier"`
	Premium decimal.Decimal `json:"premium"`

	Thresholds    []decimal.Decimal `json:"thresholds,omitempty"`
	NextThreshold *decimal.Decimal  `json:"next_threshold,omitempty"`
	GapToNext     *decimal.Decimal  `json:"gap_to_next,omitempty"`
	TargetPercent *decimal.Decimal  `json:"target_percent,omitempty"`
	RunRate       RunRate           `json:"run_rate"`

	Detail        []DetailLine                    `json:"detail"`
	Bonuses       []BonusLine                     `json:"bonuses,omitempty"`
	Contributions map[ContributionID]Contribution `json:"contributions,omitempty"`

	// AttributedTo is set on RS-mode member POS whose entity volumes are
	// reported on the lead POS instead.
	AttributedTo string   `json:"attributed_to,omitempty"`
	Warnings     []string `json:"warnings,omitempty"`
}

// TotalPieces sums the pieces of every detail line.
func (r EvaluationResult) TotalPieces() decimal.Decimal {
	total := decimal.Zero
	for _, d := range r.Detail {
		total = total.Add(d.Pieces)
	}
	return total
}

// Contribution returns an exported figure, zero when the track did not export it.
func (r EvaluationResult) Contribution(id ContributionID) Contribution {
	if c, ok := r.Contributions[id]; ok {
		return c
	}
	return Contribution{Points: decimal.Zero, Pieces: decimal.Zero}
}

// EmptyResult returns a zero result for a scope. Used for unattributed RS
// members and for scopes degraded by a warning.
func EmptyResult(track TrackID, scope Scope) EvaluationResult {
	return EvaluationResult{
		Track:       track,
		ScopeID:     scope.ID,
		Mode:        scope.Mode,
		LegalEntity: scope.EntityName(),
		Period:      scope.Period,
		Points:      decimal.Zero,
		Premium:     decimal.Zero,
		RunRate:     RunRate{PointsPerDay: decimal.Zero, PiecesPerDay: decimal.Zero},
		Detail:      []DetailLine{},
	}
}

// =============================================================================
// DECIMAL HELPERS
// =============================================================================

// Dec converts an integer to a decimal.
func Dec(n int64) decimal.Decimal {
	return decimal.NewFromInt(n)
}

// MustParseDecimal parses s, returning zero on malformed input.
func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Money rounds an amount to cents.
func Money(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Ptr returns a pointer to a copy of d.
func Ptr(d decimal.Decimal) *decimal.Decimal {
	return &d
}

// Decimals converts float literals to decimals. Used for hardcoded defaults.
func Decimals(vals ...float64) []decimal.Decimal {
	out := make([]decimal.Decimal, len(vals))
	for i, v := range vals {
		out[i] = decimal.NewFromFloat(v)
	}
	return out
}

// F converts one float literal to a decimal.
func F(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}
