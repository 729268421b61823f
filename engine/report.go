package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/incentive-engine/generic"
)

// =============================================================================
// REPORT
// =============================================================================

// Report is the outcome of one evaluation.
type Report struct {
	ID          string            `json:"id"`
	GeneratedAt time.Time         `json:"generated_at"`
	Mode        generic.EntryMode `json:"mode"`
	Period      generic.Period    `json:"period"`

	// Results holds one result per POS for every per-scope track, in
	// sell-point order.
	Results map[generic.TrackID][]generic.EvaluationResult `json:"results"`

	// Bonuses holds one result per legal entity for every cross-program
	// calculator.
	Bonuses map[generic.TrackID][]generic.EvaluationResult `json:"bonuses,omitempty"`

	SellPoints  []SellPointTotal                    `json:"sell_points"`
	Entities    []EntityTotal                       `json:"entities"`
	TrackTotals map[generic.TrackID]decimal.Decimal `json:"track_totals"`
	Total       decimal.Decimal                     `json:"total"`

	Warnings []generic.Issue `json:"warnings"`
	Failures []generic.Issue `json:"failures"`
}

// SellPointTotal is the premium attributed to one POS.
type SellPointTotal struct {
	Code        string                              `json:"code"`
	LegalEntity string                              `json:"legal_entity"`
	ByTrack     map[generic.TrackID]decimal.Decimal `json:"by_track"`
	Premium     decimal.Decimal                     `json:"premium"`
}

// EntityTotal is the premium of one legal entity: its members' track
// results plus its cross-program bonuses.
type EntityTotal struct {
	Key     string                              `json:"key"`
	Name    string                              `json:"name"`
	Members []string                            `json:"members"`
	ByTrack map[generic.TrackID]decimal.Decimal `json:"by_track"`
	Premium decimal.Decimal                     `json:"premium"`
}

// Result returns the result of a track for a scope id.
func (r *Report) Result(track generic.TrackID, scopeID string) (generic.EvaluationResult, bool) {
	for _, res := range r.Results[track] {
		if res.ScopeID == scopeID {
			return res, true
		}
	}
	for _, res := range r.Bonuses[track] {
		if res.ScopeID == scopeID {
			return res, true
		}
	}
	return generic.EvaluationResult{}, false
}

// Entity returns the totals of an entity by canonical key.
func (r *Report) Entity(key string) (EntityTotal, bool) {
	for _, e := range r.Entities {
		if e.Key == key {
			return e, true
		}
	}
	return EntityTotal{}, false
}

// totals fills the per-POS, per-entity, per-track and grand totals.
func (r *Report) totals(proj *generic.Projection) {
	r.TrackTotals = make(map[generic.TrackID]decimal.Decimal)
	r.Total = decimal.Zero

	byCode := make(map[string]*SellPointTotal, len(proj.Views))
	for _, v := range proj.Views {
		sp := v.Scope.SellPoint
		r.SellPoints = append(r.SellPoints, SellPointTotal{
			Code:        sp.Code,
			LegalEntity: v.Scope.EntityName(),
			ByTrack:     make(map[generic.TrackID]decimal.Decimal),
			Premium:     decimal.Zero,
		})
	}
	for i := range r.SellPoints {
		byCode[r.SellPoints[i].Code] = &r.SellPoints[i]
	}

	byKey := make(map[string]*EntityTotal, len(proj.Entities))
	for _, e := range proj.Entities {
		r.Entities = append(r.Entities, EntityTotal{
			Key:     e.Key,
			Name:    e.Name,
			Members: e.MemberCodes(),
			ByTrack: make(map[generic.TrackID]decimal.Decimal),
			Premium: decimal.Zero,
		})
	}
	for i := range r.Entities {
		byKey[r.Entities[i].Key] = &r.Entities[i]
	}
	entityOf := make(map[string]string, len(proj.Views))
	for _, e := range proj.Entities {
		for _, code := range e.MemberCodes() {
			entityOf[code] = e.Key
		}
	}

	add := func(m map[generic.TrackID]decimal.Decimal, t generic.TrackID, d decimal.Decimal) {
		if cur, ok := m[t]; ok {
			m[t] = cur.Add(d)
			return
		}
		m[t] = d
	}

	for track, results := range r.Results {
		for _, res := range results {
			if pt, ok := byCode[res.ScopeID]; ok {
				add(pt.ByTrack, track, res.Premium)
				pt.Premium = pt.Premium.Add(res.Premium)
			}
			if et, ok := byKey[entityOf[res.ScopeID]]; ok {
				add(et.ByTrack, track, res.Premium)
				et.Premium = et.Premium.Add(res.Premium)
			}
			add(r.TrackTotals, track, res.Premium)
			r.Total = r.Total.Add(res.Premium)
		}
	}
	for track, results := range r.Bonuses {
		for _, res := range results {
			if et, ok := byKey[res.ScopeID]; ok {
				add(et.ByTrack, track, res.Premium)
				et.Premium = et.Premium.Add(res.Premium)
			}
			add(r.TrackTotals, track, res.Premium)
			r.Total = r.Total.Add(res.Premium)
		}
	}
}
