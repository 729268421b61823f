package generic

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// CALCULATOR CONTRACTS
// =============================================================================

// Calculator computes one track's result for one scope.
//
// Implementations are pure: the result depends only on the arguments, and
// the same arguments always produce the same result. The order inside every
// implementation is fixed: caps (applied by the sheet) -> points -> ladder ->
// tier -> tier-dependent premium.
type Calculator interface {
	Track() TrackID
	NewSheet() *VolumeSheet
	Evaluate(scope Scope, sheet *VolumeSheet, cfg Resolver) (EvaluationResult, error)
}

// DependentInput is what a cross-program calculator sees: every entity and
// the finished results of the tracks it declared.
type DependentInput struct {
	Mode     EntryMode
	Period   Period
	Entities []*LegalEntity

	// Results by track, then by POS code.
	Results map[TrackID]map[string]EvaluationResult

	// Failed holds the cause of every (track, scope) the declared tracks
	// could not evaluate, by track, then by scope id.
	Failed map[TrackID]map[string]error

	// WorkingDays by POS code.
	WorkingDays map[string]int
}

// MemberFailure returns why a track has no result for a member POS, or nil.
func (in DependentInput) MemberFailure(track TrackID, code string) error {
	if err, ok := in.Failed[track][code]; ok {
		return &IncompleteInputError{Track: track, Scope: code, Err: err}
	}
	return nil
}

// MemberContribution returns a member POS's exported figure from a track.
// A member without a result contributes zero; callers check MemberFailure
// first to tell a failed input from an empty one.
func (in DependentInput) MemberContribution(track TrackID, code string, id ContributionID) Contribution {
	r, ok := in.Results[track][code]
	if !ok {
		return Contribution{Points: decimal.Zero, Pieces: decimal.Zero}
	}
	return r.Contribution(id)
}

// DependentCalculator computes a result per legal entity from the results
// of other tracks. It runs only after every track in DependsOn finished.
type DependentCalculator interface {
	Track() TrackID
	DependsOn() []TrackID
	Evaluate(in DependentInput, cfg Resolver) (results []EvaluationResult, warnings []Issue, failures []Issue)
}

// =============================================================================
// RESULT HELPERS
// =============================================================================

// NewResult starts a result for a scope with zeroed figures.
func NewResult(track TrackID, scope Scope) EvaluationResult {
	r := EmptyResult(track, scope)
	r.Contributions = make(map[ContributionID]Contribution)
	return r
}

// ApplyLadder records the tier reached by points on ladder, with the next
// threshold, the gap to it and the progress toward the first threshold.
func (r *EvaluationResult) ApplyLadder(ladder TierLadder) {
	r.Tier = ladder.ReachedTier(r.Points)
	r.MaxTier = ladder.MaxTier()
	r.Thresholds = copyDecimals(ladder.Thresholds)
	if _, th, gap, ok := ladder.Next(r.Points); ok {
		r.NextThreshold = Ptr(th)
		r.GapToNext = Ptr(gap)
	}
	if first, ok := ladder.FirstTarget(); ok {
		if pct, ok := ForecastPercent(r.Points, first); ok {
			r.TargetPercent = Ptr(pct)
		}
	}
}

// Finish rounds the premium to cents and normalizes run rates.
func (r *EvaluationResult) Finish(workingDays int) {
	r.Premium = Money(r.Premium)
	r.RunRate = NewRunRate(r.Points, r.TotalPieces(), workingDays)
}

// Export records a contribution for dependent calculators.
func (r *EvaluationResult) Export(id ContributionID, points, pieces decimal.Decimal) {
	if r.Contributions == nil {
		r.Contributions = make(map[ContributionID]Contribution)
	}
	r.Contributions[id] = Contribution{Points: points, Pieces: pieces}
}

// Unattributed returns the zero result of an RS-mode member whose entity
// volumes are reported on the lead.
func Unattributed(track TrackID, scope Scope, lead string) EvaluationResult {
	r := EmptyResult(track, scope)
	r.AttributedTo = lead
	return r
}

// ClampNote describes a cap that lowered a category, or returns "".
func ClampNote(sheet *VolumeSheet, c Category, cluster string) string {
	requested := sheet.Requested(c, cluster)
	effective := sheet.PiecesAt(c, cluster)
	if requested.Equal(effective) {
		return ""
	}
	return "capped from " + requested.String() + " to " + effective.String()
}
