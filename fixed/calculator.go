package fixed

import (
	"github.com/shopspring/decimal"

	"github.com/warp/incentive-engine/generic"
)

// Calculator is the fixed-line track calculator.
//
//	points  = sum(pieces[c] * punti.c)
//	ladder  = soglie.<FixedCluster>
//	premium = sum(pieces[c] * premi.c[tier])
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

	ladder, err := scope.Ladder(cfg, Section, func(sp generic.SellPoint) string {
		return generic.Path(Section, "soglie", sp.FixedCluster)
	}, 3, generic.MaxTiers)
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

	r.Export(ContributionLineeIVA, points[CategoryLineaIVA], sheet.Pieces(CategoryLineaIVA))
	r.Finish(scope.WorkingDays)
	return r, nil
}
