/*
calculator.go - Energy track calculator

PURPOSE:
  Pays a tier-dependent premium per energy contract and a track bonus that
  scales with the number of POS the scope stands for.

MAIN LADDER:
  energia.soglie is a per-POS ladder. An RS scope sums it over its members
  (or uses energia.soglieRS.<entityKey>), so a 4-POS entity needs 60 points
  for tier 1 on the default [15,25,35].

TRACK BONUS:
  first, rest = POS of the scope among the first 3 of the entity, and beyond
  threshold_i = soglieFinoA3_i * first + soglieOltre3_i * rest
  bonus       = contracts * bonusPista.premi[bonus tier]

  RS mode:  first = min(n,3), rest = max(n-3,0) with n the entity POS count
  POS mode: the POS alone, in the band of its position inside its entity,
            so the 4th member of an entity is held to soglieOltre3

  The bonus tier is resolved on contracts, not points.
*/
package energy

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/warp/incentive-engine/generic"
)

// Calculator is the energy track calculator.
type Calculator struct{}

var _ generic.Calculator = Calculator{}

func (Calculator) Track() generic.TrackID { return Track }

func (Calculator) NewSheet() *generic.VolumeSheet {
	return generic.NewVolumeSheet(Track, Caps()...)
}

func (Calculator) Evaluate(scope generic.Scope, sheet *generic.VolumeSheet, cfg generic.Resolver) (generic.EvaluationResult, error) {
	r := generic.NewResult(Track, scope)

	points := make(map[Category]decimal.Decimal, len(Categories))
	for _, c := range Categories {
		w, err := cfg.Resolve(generic.Path(Section, "punti", string(c)))
		if err != nil {
			return generic.EvaluationResult{}, err
		}
		points[c] = sheet.Pieces(c).Mul(w)
		r.Points = r.Points.Add(points[c])
	}

	soglie := generic.Path(Section, "soglie")
	ladder, err := scope.Ladder(cfg, Section, func(generic.SellPoint) string { return soglie }, 3, generic.MaxTiers)
	if err != nil {
		return generic.EvaluationResult{}, err
	}
	r.ApplyLadder(ladder)

	for _, c := range Categories {
		rate, err := generic.RateAt(cfg, generic.Path(Section, "premi", string(c)), r.Tier)
		if err != nil {
			return generic.EvaluationResult{}, err
		}
		pieces := sheet.Pieces(c)
		premium := pieces.Mul(rate)
		r.Premium = r.Premium.Add(premium)
		r.Detail = append(r.Detail, generic.DetailLine{
			Category: string(c),
			Pieces:   pieces,
			Points:   points[c],
			Premium:  premium,
			Note:     generic.ClampNote(sheet, c, ""),
		})
	}

	first, rest := BonusBands(scope)
	bonus, err := trackBonus(first, rest, sheet.Sum(Commodities...), cfg)
	if err != nil {
		return generic.EvaluationResult{}, err
	}
	if bonus.Amount.IsPositive() {
		r.Bonuses = append(r.Bonuses, bonus)
		r.Premium = r.Premium.Add(bonus.Amount)
	}

	business := []generic.Category{CategoryLuceBusiness, CategoryGasBusiness}
	r.Export(ContributionBusiness, points[CategoryLuceBusiness].Add(points[CategoryGasBusiness]), sheet.Sum(business...))
	r.Finish(scope.WorkingDays)
	return r, nil
}

// BonusBands counts the POS of a scope that fall among the first three of
// their entity and those beyond.
func BonusBands(scope generic.Scope) (first, rest int) {
	if scope.Mode == generic.ModeRS {
		n := scope.POSCount()
		return min(n, 3), max(n-3, 0)
	}
	if scope.MemberIndex() < 3 {
		return 1, 0
	}
	return 0, 1
}

// BonusLadder returns the track-bonus ladder for first POS in the first
// band and rest beyond it.
func BonusLadder(first, rest int, cfg generic.Resolver) (generic.TierLadder, error) {
	upTo3, err := generic.LoadLadder(cfg, generic.Path(Section, "bonusPista", "soglieFinoA3"), 1, generic.MaxTiers)
	if err != nil {
		return generic.TierLadder{}, err
	}
	beyond3, err := generic.LoadLadder(cfg, generic.Path(Section, "bonusPista", "soglieOltre3"), 1, generic.MaxTiers)
	if err != nil {
		return generic.TierLadder{}, err
	}
	if upTo3.Len() != beyond3.Len() {
		return generic.TierLadder{}, &generic.LadderError{
			Path:   generic.Path(Section, "bonusPista"),
			Reason: fmt.Sprintf("soglieFinoA3 has %d tiers, soglieOltre3 %d", upTo3.Len(), beyond3.Len()),
		}
	}

	// A band with no POS contributes nothing; Sum would read its zeros as
	// disabled tiers.
	var ladder generic.TierLadder
	if first > 0 {
		ladder = upTo3.Scaled(generic.Dec(int64(first)))
	}
	if rest > 0 {
		return ladder.Sum(beyond3.Scaled(generic.Dec(int64(rest))))
	}
	return ladder, nil
}

func trackBonus(first, rest int, contracts decimal.Decimal, cfg generic.Resolver) (generic.BonusLine, error) {
	ladder, err := BonusLadder(first, rest, cfg)
	if err != nil {
		return generic.BonusLine{}, err
	}
	tier := ladder.ReachedTier(contracts)
	rate, err := generic.RateAt(cfg, generic.Path(Section, "bonusPista", "premi"), tier)
	if err != nil {
		return generic.BonusLine{}, err
	}
	return generic.BonusLine{
		Name:   "bonusPista",
		Basis:  contracts,
		Tier:   tier,
		Amount: contracts.Mul(rate),
	}, nil
}
