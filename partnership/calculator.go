package partnership

import (
	"github.com/shopspring/decimal"

	"github.com/warp/incentive-engine/generic"
)

// Calculator is the partnership track calculator.
//
// Unlike other tracks the tier premium is a discrete lump sum: reaching
// the 80% tier pays premio80, reaching 100% pays premio100 instead, and
// anything in between pays premio80 only.
type Calculator struct{}

var _ generic.Calculator = Calculator{}

func (Calculator) Track() generic.TrackID { return Track }

func (Calculator) NewSheet() *generic.VolumeSheet {
	return generic.NewVolumeSheet(Track)
}

func (Calculator) Evaluate(scope generic.Scope, sheet *generic.VolumeSheet, cfg generic.Resolver) (generic.EvaluationResult, error) {
	r := generic.NewResult(Track, scope)

	for _, line := range Lines() {
		w, err := cfg.Resolve(generic.Path(Section, "punti", line.Key()))
		if err != nil {
			return generic.EvaluationResult{}, err
		}
		rate, err := cfg.Resolve(generic.Path(Section, "premi", line.Key()))
		if err != nil {
			return generic.EvaluationResult{}, err
		}
		pieces := sheet.PiecesAt(line.Category, line.Cluster)
		points := pieces.Mul(w)
		premium := pieces.Mul(rate)
		r.Points = r.Points.Add(points)
		r.Premium = r.Premium.Add(premium)
		r.Detail = append(r.Detail, generic.DetailLine{
			Category: string(line.Category),
			Cluster:  line.Cluster,
			Pieces:   pieces,
			Points:   points,
			Premium:  premium,
		})
	}

	ladder, err := Ladder(scope, cfg)
	if err != nil {
		return generic.EvaluationResult{}, err
	}
	r.ApplyLadder(ladder)

	var lump string
	switch r.Tier {
	case 1:
		lump = "premio80"
	case 2:
		lump = "premio100"
	}
	if lump != "" {
		amount, err := cfg.Resolve(generic.Path(Section, lump))
		if err != nil {
			return generic.EvaluationResult{}, err
		}
		r.Bonuses = append(r.Bonuses, generic.BonusLine{Name: lump, Basis: r.Points, Tier: r.Tier, Amount: amount})
		r.Premium = r.Premium.Add(amount)
	}

	r.Finish(scope.WorkingDays)
	return r, nil
}

// Ladder returns the two-tier ladder [pct*T, T] for the scope's target T.
func Ladder(scope generic.Scope, cfg generic.Resolver) (generic.TierLadder, error) {
	target, err := scope.Target(cfg, Section, "targetRS", func(sp generic.SellPoint) string {
		return generic.Path(Section, "target", sp.CustomerBaseCluster)
	})
	if err != nil {
		return generic.TierLadder{}, err
	}
	pct, err := cfg.Resolve(generic.Path(Section, "sogliaPercent"))
	if err != nil {
		return generic.TierLadder{}, err
	}
	first := target.Mul(pct).Div(decimal.NewFromInt(100))
	ladder := generic.NewTierLadder(first, target)
	if err := ladder.Validate(2, 2); err != nil {
		return generic.TierLadder{}, err
	}
	return ladder, nil
}
