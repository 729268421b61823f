/*
calculator.go - Mobile track calculator

PURPOSE:
  Turns SIM activations into points, resolves the tier on the POS cluster
  ladder and pays a tier-dependent premium per piece.

FORMULA:
  points  = sum(pieces[c] * puntiAttivazione.c)    ADDON_GIGA excluded
  ladder  = soglie.<MobileCluster>                 (RS: soglieRS or member sum)
  tier    = ladder.ReachedTier(points)
  premium = sum(pieces[c] * premi.c[tier])         MNP_MVNO excluded

  Caps are applied by the sheet before any of this runs.

EXAMPLE:
  TIED 50 + UNTIED 20 on C1 [70,105,135,165]
  -> 70 points, tier 1, premium 50*4 + 20*2 = 240
*/
package mobile

import (
	"github.com/shopspring/decimal"

	"github.com/warp/incentive-engine/generic"
)

// Calculator is the mobile track calculator.
type Calculator struct{}

var _ generic.Calculator = Calculator{}

func (Calculator) Track() generic.TrackID { return Track }

// NewSheet returns an empty sheet with the mobile caps.
func (Calculator) NewSheet() *generic.VolumeSheet {
	return generic.NewVolumeSheet(Track, Caps()...)
}

// Evaluate computes the mobile result of a scope.
func (Calculator) Evaluate(scope generic.Scope, sheet *generic.VolumeSheet, cfg generic.Resolver) (generic.EvaluationResult, error) {
	r := generic.NewResult(Track, scope)

	points := make(map[Category]decimal.Decimal, len(Categories))
	for _, c := range Categories {
		if !c.earnsPoints() {
			continue
		}
		w, err := cfg.Resolve(generic.Path(Section, "puntiAttivazione", string(c)))
		if err != nil {
			return generic.EvaluationResult{}, err
		}
		points[c] = sheet.Pieces(c).Mul(w)
		r.Points = r.Points.Add(points[c])
	}

	ladder, err := scope.Ladder(cfg, Section, func(sp generic.SellPoint) string {
		return generic.Path(Section, "soglie", sp.MobileCluster)
	}, 3, generic.MaxTiers)
	if err != nil {
		return generic.EvaluationResult{}, err
	}
	r.ApplyLadder(ladder)

	for _, c := range Categories {
		pieces := sheet.Pieces(c)
		premium := decimal.Zero
		if c.earnsPremium() {
			rate, err := generic.RateAt(cfg, generic.Path(Section, "premi", string(c)), r.Tier)
			if err != nil {
				return generic.EvaluationResult{}, err
			}
			premium = pieces.Mul(rate)
		}
		r.Premium = r.Premium.Add(premium)

		p, ok := points[c]
		if !ok {
			p = decimal.Zero
		}
		r.Detail = append(r.Detail, generic.DetailLine{
			Category: string(c),
			Pieces:   pieces,
			Points:   p,
			Premium:  premium,
			Note:     generic.ClampNote(sheet, c, ""),
		})
	}

	r.Export(ContributionSimIVA, points[CategorySimIVA], sheet.Pieces(CategorySimIVA))
	r.Finish(scope.WorkingDays)
	return r, nil
}
