/*
projection.go - POS/RS normalization boundary

PURPOSE:
  Volumes arrive at one of two granularities:
  - POS mode: rows keyed by sell-point code
  - RS mode:  rows keyed by legal-entity (Ragione Sociale) name

  The projector turns either shape into ONE canonical view: a list of scopes,
  each with a validated, capped VolumeSheet per track. Calculators are
  written once against that view and never branch on entry mode except
  through Scope.

RS FAN-OUT:
  In RS mode every member POS of an entity receives the SAME entity rows; the
  rows are not divided among members. Only the lead (first member) is
  attributed. Other members are views with Attributed=false and
  AttributedTo=<lead code>, and evaluate to zero-point results, so entity
  totals are never double counted.

LOOKUP WARNINGS:
  - RS name matching no POS after normalization -> AmbiguousLegalEntity
  - POS code matching no POS                    -> UnknownSellPoint

  The rows are dropped with a warning; nothing else is affected.

FAILURES:
  An invalid row (negative, NaN, unknown category, bad cluster key) fails the
  whole (track, scope) pair. The scope keeps its other tracks.

EXAMPLE:
  proj, err := generic.Project(generic.ProjectionInput{
      Mode:       generic.ModeRS,
      Period:     generic.NewPeriod(2025, time.March),
      SellPoints: sellPoints,
      Volumes:    map[generic.TrackID]map[string][]generic.RawVolume{
          "mobile": {"Rossi S.r.l.": {{Category: "TIED", Pieces: 50}}},
      },
      Sheets: map[generic.TrackID]generic.SheetFactory{"mobile": mobile.Calculator{}.NewSheet},
  })

SEE ALSO:
  - scope.go: Scope and ladder resolution for RS scopes
  - sheet.go: VolumeSheet validation and caps
  - engine/engine.go: Runs calculators over the projection
*/
package generic

import (
	"fmt"
	"sort"
)

// =============================================================================
// PROJECTION INPUT / OUTPUT
// =============================================================================

// SheetFactory returns an empty sheet with a track's cap rules.
type SheetFactory func() *VolumeSheet

// ProjectionInput is everything the projector needs. It is not modified.
type ProjectionInput struct {
	Mode       EntryMode
	Period     Period
	SellPoints []SellPoint

	// WorkingDays by POS code. Missing codes have 0 working days.
	WorkingDays map[string]int

	// Volumes by track, then by POS code (POS mode) or RS name (RS mode).
	Volumes map[TrackID]map[string][]RawVolume

	// Sheets holds one factory per evaluated track.
	Sheets map[TrackID]SheetFactory
}

// ScopeView is one POS of the canonical view.
type ScopeView struct {
	Scope Scope

	// Attributed is false for RS-mode members other than the lead.
	Attributed   bool
	AttributedTo string

	Sheets   map[TrackID]*VolumeSheet
	Failures map[TrackID]error
}

// Projection is the canonical scoped view of one evaluation input.
type Projection struct {
	Mode     EntryMode
	Period   Period
	Views    []*ScopeView
	Entities []*LegalEntity
	Warnings []Issue
}

// View returns the view of a POS code.
func (p *Projection) View(code string) (*ScopeView, bool) {
	for _, v := range p.Views {
		if v.Scope.SellPoint.Code == code {
			return v, true
		}
	}
	return nil, false
}

// Entity returns the entity with a canonical key.
func (p *Projection) Entity(key string) (*LegalEntity, bool) {
	for _, e := range p.Entities {
		if e.Key == key {
			return e, true
		}
	}
	return nil, false
}

// Tracks returns the projected tracks sorted.
func (p *Projection) Tracks() []TrackID {
	seen := make(map[TrackID]bool)
	for _, v := range p.Views {
		for t := range v.Sheets {
			seen[t] = true
		}
	}
	out := make([]TrackID, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// =============================================================================
// PROJECT
// =============================================================================

// Project validates the input and builds the canonical view. The returned
// error is reserved for input that cannot be evaluated at all; row-level
// problems become warnings and failures on the projection.
func Project(in ProjectionInput) (*Projection, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	entities := GroupByEntity(in.SellPoints)
	proj := &Projection{Mode: in.Mode, Period: in.Period, Entities: entities}

	byCode := make(map[string]*ScopeView, len(in.SellPoints))
	byKey := make(map[string]*LegalEntity, len(entities))
	for _, e := range entities {
		byKey[e.Key] = e
		lead := e.Lead()
		for i, sp := range e.Members {
			view := &ScopeView{
				Scope: Scope{
					ID:          sp.Code,
					Mode:        in.Mode,
					Period:      in.Period,
					SellPoint:   sp,
					Entity:      e,
					WorkingDays: in.WorkingDays[sp.Code],
				},
				Attributed: in.Mode == ModePOS || i == 0,
				Sheets:     make(map[TrackID]*VolumeSheet),
				Failures:   make(map[TrackID]error),
			}
			if in.Mode == ModeRS {
				// Entity figures are normalized by the lead's working days.
				view.Scope.WorkingDays = in.WorkingDays[lead.Code]
				if i > 0 {
					view.AttributedTo = lead.Code
				}
			}
			byCode[sp.Code] = view
		}
	}
	for _, sp := range in.SellPoints {
		proj.Views = append(proj.Views, byCode[sp.Code])
	}

	for _, track := range sortedTracks(in.Sheets) {
		newSheet := in.Sheets[track]
		for _, v := range proj.Views {
			v.Sheets[track] = newSheet()
		}

		rows := in.Volumes[track]
		for _, key := range sortedKeys(rows) {
			switch in.Mode {
			case ModePOS:
				view, ok := byCode[key]
				if !ok {
					err := fmt.Errorf("%w: volumes for %q", ErrUnknownSellPoint, key)
					proj.Warnings = append(proj.Warnings, NewIssue(track, key, err))
					continue
				}
				fill(view, track, rows[key])

			case ModeRS:
				e, ok := byKey[EntityKey(key)]
				if !ok {
					err := &AmbiguousEntityError{Name: key, Key: EntityKey(key), Use: "rs volumes"}
					proj.Warnings = append(proj.Warnings, NewIssue(track, key, err))
					continue
				}
				lead := byCode[e.Lead().Code]
				fill(lead, track, rows[key])
			}
		}

		if in.Mode == ModeRS {
			fanOut(proj, track)
		}
	}

	return proj, nil
}

// fill adds rows to a view's sheet, recording the first invalid row as the
// (track, scope) failure.
func fill(view *ScopeView, track TrackID, rows []RawVolume) {
	if view.Failures[track] != nil {
		return
	}
	sheet := view.Sheets[track]
	for _, rv := range rows {
		if err := sheet.AddRaw(rv); err != nil {
			view.Failures[track] = err
			return
		}
	}
}

// fanOut gives every member a copy of its lead's entity sheet.
func fanOut(proj *Projection, track TrackID) {
	for _, e := range proj.Entities {
		lead, _ := proj.View(e.Lead().Code)
		for _, sp := range e.Members[1:] {
			member, _ := proj.View(sp.Code)
			member.Sheets[track] = lead.Sheets[track].Clone()
		}
	}
}

func validateInput(in ProjectionInput) error {
	if !in.Mode.Valid() {
		return fmt.Errorf("%w: entry mode %q", ErrInvalidInput, in.Mode)
	}
	if !in.Period.Valid() {
		return fmt.Errorf("%w: period %s", ErrInvalidInput, in.Period)
	}
	if len(in.SellPoints) == 0 {
		return fmt.Errorf("%w: no sell points", ErrInvalidInput)
	}
	seen := make(map[string]bool, len(in.SellPoints))
	for _, sp := range in.SellPoints {
		if err := sp.Validate(); err != nil {
			return err
		}
		if seen[sp.Code] {
			return fmt.Errorf("%w: duplicate sell point %s", ErrInvalidInput, sp.Code)
		}
		seen[sp.Code] = true
	}
	for code, days := range in.WorkingDays {
		if days < 0 {
			return fmt.Errorf("%w: sell point %s has %d working days", ErrInvalidInput, code, days)
		}
	}
	for track := range in.Volumes {
		if _, ok := in.Sheets[track]; !ok {
			return fmt.Errorf("%w: volumes for unknown track %q", ErrInvalidInput, track)
		}
	}
	return nil
}

func sortedTracks(m map[TrackID]SheetFactory) []TrackID {
	out := make([]TrackID, 0, len(m))
	for t := range m {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func sortedKeys(m map[string][]RawVolume) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
