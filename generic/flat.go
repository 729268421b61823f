/*
flat.go - Flat-weights calculator shared by insurance-like tracks

PURPOSE:
  Some tracks pay a flat premium per piece plus a lump sum for the tier
  reached, with points computed from flat per-category weights. They differ
  only in categories and configuration section, so one parameterized
  calculator serves them all.

FORMULA:
  base     = sum(pieces[c] * punti.c)            for every non-reload c
  reload   = pieces[RELOAD] * punti.RELOAD
  credited = min(reload, base * reload.capPercent / 100)   if base >= reload.sogliaBase
           = 0                                             otherwise
  points   = base + credited
  tier     = ladder(soglie).ReachedTier(points)
  premium  = sum(pieces[c] * premi.c) + bonusSoglia[tier]

  RELOAD is points-only: it never earns a per-piece premium.

CONFIGURATION (under the track section):
  punti.<CAT>, premi.<CAT>, soglie, soglieRS.<entityKey>, bonusSoglia,
  reload.sogliaBase, reload.capPercent

SEE ALSO:
  - insurance/calculator.go, protecta/calculator.go: Concrete instances
*/
package generic

import (
	"github.com/shopspring/decimal"
)

// FlatWeightsCalculator is a Calculator driven entirely by its fields.
type FlatWeightsCalculator struct {
	TrackID TrackID
	Section string

	// Categories lists the premium-earning categories in report order.
	Categories []Category

	// Reload is the points-only category, nil when the track has none.
	Reload Category

	// Exports maps exported contributions to the category they report.
	Exports map[ContributionID]Category
}

var _ Calculator = FlatWeightsCalculator{}

func (f FlatWeightsCalculator) Track() TrackID {
	return f.TrackID
}

func (f FlatWeightsCalculator) NewSheet() *VolumeSheet {
	return NewVolumeSheet(f.TrackID)
}

// Evaluate computes the scope result.
func (f FlatWeightsCalculator) Evaluate(scope Scope, sheet *VolumeSheet, cfg Resolver) (EvaluationResult, error) {
	r := NewResult(f.TrackID, scope)
	points := make(map[string]decimal.Decimal, len(f.Categories))

	base := decimal.Zero
	for _, c := range f.Categories {
		w, err := cfg.Resolve(Path(f.Section, "punti", c.CategoryID()))
		if err != nil {
			return EvaluationResult{}, err
		}
		p := sheet.Pieces(c).Mul(w)
		points[c.CategoryID()] = p
		base = base.Add(p)
	}

	credited := decimal.Zero
	var reloadLine *DetailLine
	if f.Reload != nil {
		var err error
		credited, reloadLine, err = f.reload(sheet, base, cfg)
		if err != nil {
			return EvaluationResult{}, err
		}
	}
	r.Points = base.Add(credited)

	ladder, err := scope.Ladder(cfg, f.Section, func(SellPoint) string { return Path(f.Section, "soglie") }, 3, MaxTiers)
	if err != nil {
		return EvaluationResult{}, err
	}
	r.ApplyLadder(ladder)

	for _, c := range f.Categories {
		rate, err := cfg.Resolve(Path(f.Section, "premi", c.CategoryID()))
		if err != nil {
			return EvaluationResult{}, err
		}
		pieces := sheet.Pieces(c)
		premium := pieces.Mul(rate)
		r.Premium = r.Premium.Add(premium)
		r.Detail = append(r.Detail, DetailLine{
			Category: c.CategoryID(),
			Pieces:   pieces,
			Points:   points[c.CategoryID()],
			Premium:  premium,
		})
	}
	if reloadLine != nil {
		r.Detail = append(r.Detail, *reloadLine)
	}

	bonus, err := RateAt(cfg, Path(f.Section, "bonusSoglia"), r.Tier)
	if err != nil {
		return EvaluationResult{}, err
	}
	if bonus.IsPositive() {
		r.Bonuses = append(r.Bonuses, BonusLine{Name: "bonusSoglia", Basis: r.Points, Tier: r.Tier, Amount: bonus})
		r.Premium = r.Premium.Add(bonus)
	}

	for id, c := range f.Exports {
		r.Export(id, points[c.CategoryID()], sheet.Pieces(c))
	}

	r.Finish(scope.WorkingDays)
	return r, nil
}

// reload returns the creditable reload points and their detail line.
func (f FlatWeightsCalculator) reload(sheet *VolumeSheet, base decimal.Decimal, cfg Resolver) (decimal.Decimal, *DetailLine, error) {
	w, err := cfg.Resolve(Path(f.Section, "punti", f.Reload.CategoryID()))
	if err != nil {
		return decimal.Zero, nil, err
	}
	minBase, err := cfg.Resolve(Path(f.Section, "reload", "sogliaBase"))
	if err != nil {
		return decimal.Zero, nil, err
	}
	capPct, err := cfg.Resolve(Path(f.Section, "reload", "capPercent"))
	if err != nil {
		return decimal.Zero, nil, err
	}

	pieces := sheet.Pieces(f.Reload)
	raw := pieces.Mul(w)
	credited := decimal.Zero
	note := ""
	switch {
	case raw.IsZero():
	case base.LessThan(minBase):
		note = "base points below " + minBase.String() + ", reload not credited"
	default:
		ceiling := base.Mul(capPct).Div(hundred)
		credited = decimal.Min(raw, ceiling)
		if credited.LessThan(raw) {
			note = "reload capped at " + capPct.String() + "% of base points"
		}
	}
	return credited, &DetailLine{
		Category: f.Reload.CategoryID(),
		Pieces:   pieces,
		Points:   credited,
		Premium:  decimal.Zero,
		Note:     note,
	}, nil
}
