/*
sheet.go - Volume sheets with write-time caps

PURPOSE:
  A VolumeSheet holds the validated volumes of one scope for one track.
  Some categories are derived caps of others (an add-on cannot exceed the
  lines it is sold on). Caps are enforced when volumes are WRITTEN, so a
  calculator never sees a value above its ceiling.

HOW CAPS WORK:
  The sheet keeps two views:
  - requested: what the operator entered
  - effective: requested values after every cap rule, recomputed on each write

  Recomputing from the requested view keeps the effective result the same
  whatever order updates arrive in: entering the add-on before its base
  lines gives the same effective value as entering it after.

BOUNDARY VALIDATION:
  AddRaw rejects negative, NaN and infinite piece counts with
  InvalidVolumeError before anything is stored. Calculators never coerce.

EXAMPLE:
  sheet := generic.NewVolumeSheet("fixed", generic.CapRule{
      Target:  fixed.CategoryPiuSicuri,
      Ceiling: func(s *generic.VolumeSheet) decimal.Decimal { return s.Sum(core...) },
  })
  sheet.Set(fixed.CategoryPiuSicuri, "", generic.Dec(10))
  sheet.Set(fixed.CategoryFTTH, "", generic.Dec(6))
  sheet.Pieces(fixed.CategoryPiuSicuri) // 6
*/
package generic

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CAP RULES
// =============================================================================

// CapRule bounds every entry of Target by a ceiling computed from the
// sheet's effective values. Rules are applied in declaration order, so a
// rule may depend on a target capped by an earlier rule.
type CapRule struct {
	Name    string
	Target  Category
	Ceiling func(s *VolumeSheet) decimal.Decimal
}

// =============================================================================
// VOLUME SHEET
// =============================================================================

// VolumeSheet is the set of volumes of one scope for one track.
type VolumeSheet struct {
	track     TrackID
	caps      []CapRule
	order     []string
	entries   map[string]VolumeEntry // requested
	effective map[string]decimal.Decimal
}

// NewVolumeSheet creates an empty sheet with the track's cap rules.
func NewVolumeSheet(track TrackID, caps ...CapRule) *VolumeSheet {
	return &VolumeSheet{
		track:     track,
		caps:      caps,
		entries:   make(map[string]VolumeEntry),
		effective: make(map[string]decimal.Decimal),
	}
}

// Track returns the track the sheet belongs to.
func (s *VolumeSheet) Track() TrackID {
	return s.track
}

// Set replaces the requested pieces of a category (and cluster key).
func (s *VolumeSheet) Set(c Category, cluster string, pieces decimal.Decimal) error {
	if err := s.check(c, cluster, pieces); err != nil {
		return err
	}
	s.put(c, cluster, pieces)
	s.recompute()
	return nil
}

// Add adds pieces to the requested value of a category (and cluster key).
func (s *VolumeSheet) Add(c Category, cluster string, pieces decimal.Decimal) error {
	if err := s.check(c, cluster, pieces); err != nil {
		return err
	}
	key := EntryKey(c, cluster)
	if prev, ok := s.entries[key]; ok {
		pieces = prev.Pieces.Add(pieces)
	}
	s.put(c, cluster, pieces)
	s.recompute()
	return nil
}

// AddRaw validates an input row and adds it.
func (s *VolumeSheet) AddRaw(rv RawVolume) error {
	if math.IsNaN(rv.Pieces) || math.IsInf(rv.Pieces, 0) {
		return &InvalidVolumeError{Track: s.track, Category: rv.Category, Cluster: rv.Cluster, Reason: "piece count is not finite"}
	}
	if rv.Pieces < 0 {
		return &InvalidVolumeError{Track: s.track, Category: rv.Category, Cluster: rv.Cluster, Reason: fmt.Sprintf("negative piece count %v", rv.Pieces)}
	}
	c, _, err := LookupCategory(s.track, rv.Category)
	if err != nil {
		return err
	}
	return s.Add(c, rv.Cluster, decimal.NewFromFloat(rv.Pieces))
}

func (s *VolumeSheet) check(c Category, cluster string, pieces decimal.Decimal) error {
	if c.CategoryTrack() != s.track {
		return &UnknownCategoryError{Track: s.track, Category: c.CategoryID()}
	}
	_, spec, err := LookupCategory(s.track, c.CategoryID())
	if err != nil {
		return err
	}
	if !spec.AllowsCluster(cluster) {
		reason := fmt.Sprintf("cluster key %q not allowed", cluster)
		if cluster == "" {
			reason = "cluster key required"
		}
		return &InvalidVolumeError{Track: s.track, Category: c.CategoryID(), Cluster: cluster, Reason: reason}
	}
	if pieces.IsNegative() {
		return &InvalidVolumeError{Track: s.track, Category: c.CategoryID(), Cluster: cluster, Reason: "negative piece count " + pieces.String()}
	}
	return nil
}

func (s *VolumeSheet) put(c Category, cluster string, pieces decimal.Decimal) {
	key := EntryKey(c, cluster)
	if _, ok := s.entries[key]; !ok {
		s.order = append(s.order, key)
	}
	s.entries[key] = VolumeEntry{Category: c, Cluster: cluster, Pieces: pieces}
}

// recompute rebuilds the effective view from the requested one.
func (s *VolumeSheet) recompute() {
	for key, e := range s.entries {
		s.effective[key] = e.Pieces
	}
	for _, rule := range s.caps {
		ceiling := rule.Ceiling(s)
		if ceiling.IsNegative() {
			ceiling = decimal.Zero
		}
		// A ceiling applies to the category total; with cluster keys the
		// excess is removed from the last entered keys first.
		remaining := ceiling
		for _, key := range s.order {
			e := s.entries[key]
			if e.Category.CategoryID() != rule.Target.CategoryID() {
				continue
			}
			v := s.effective[key]
			if v.GreaterThan(remaining) {
				v = remaining
			}
			s.effective[key] = v
			remaining = remaining.Sub(v)
		}
	}
}

// =============================================================================
// READS
// =============================================================================

// Pieces returns the effective pieces of a category across cluster keys.
func (s *VolumeSheet) Pieces(c Category) decimal.Decimal {
	total := decimal.Zero
	for _, key := range s.order {
		if s.entries[key].Category.CategoryID() == c.CategoryID() {
			total = total.Add(s.effective[key])
		}
	}
	return total
}

// PiecesAt returns the effective pieces of one category and cluster key.
func (s *VolumeSheet) PiecesAt(c Category, cluster string) decimal.Decimal {
	if v, ok := s.effective[EntryKey(c, cluster)]; ok {
		return v
	}
	return decimal.Zero
}

// Requested returns what was entered for a category and cluster key before caps.
func (s *VolumeSheet) Requested(c Category, cluster string) decimal.Decimal {
	if e, ok := s.entries[EntryKey(c, cluster)]; ok {
		return e.Pieces
	}
	return decimal.Zero
}

// Sum returns the effective pieces of several categories.
func (s *VolumeSheet) Sum(cs ...Category) decimal.Decimal {
	total := decimal.Zero
	for _, c := range cs {
		total = total.Add(s.Pieces(c))
	}
	return total
}

// Entries returns the effective entries in the order they were first entered.
func (s *VolumeSheet) Entries() []VolumeEntry {
	out := make([]VolumeEntry, 0, len(s.order))
	for _, key := range s.order {
		e := s.entries[key]
		e.Pieces = s.effective[key]
		out = append(out, e)
	}
	return out
}

// IsEmpty reports whether nothing was entered.
func (s *VolumeSheet) IsEmpty() bool {
	return len(s.order) == 0
}

// Clone returns an independent copy sharing the cap rules.
func (s *VolumeSheet) Clone() *VolumeSheet {
	c := NewVolumeSheet(s.track, s.caps...)
	c.order = append(c.order, s.order...)
	for k, v := range s.entries {
		c.entries[k] = v
	}
	for k, v := range s.effective {
		c.effective[k] = v
	}
	return c
}
