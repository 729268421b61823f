/*
Package extragara implements the cross-program VAT bonus ("Extra-Gara IVA").

PURPOSE:
  Rewards a legal entity for business (VAT) sales across tracks. It reads
  the contributions other tracks exported and never recomputes them, so it
  runs only after those tracks finished.

INPUTS (declared):
  mobile.sim_iva, fixed.linee_iva, energy.business, insurance.pro, protecta.shop

FORMULA (per entity):
  points  = sum(extraGara.pesi.<input> * contribution points of every member)
  hasBP   = any member carries the Business-Promoter flag
  ladder  = 1 member:  soglie.monopos.{bp|nobp}
            n members: soglie.multipos.{bp|nobp} * n
            override.<entity> replaces either
  tier 4 is disabled when !hasBP, whatever the ladder or override says
  premium = sum over members(member pieces * premi.<member VATCluster>[tier])

FAILURES:
  An entity fails when any declared input failed for one of its members:
  the bonus is never paid on a partial sum. The failure wraps the input's
  cause.

WARNINGS:
  An override naming no entity of the evaluation is reported as
  AmbiguousLegalEntity and otherwise ignored.
*/
package extragara

import (
	"github.com/shopspring/decimal"

	"github.com/warp/incentive-engine/energy"
	"github.com/warp/incentive-engine/fixed"
	"github.com/warp/incentive-engine/generic"
	"github.com/warp/incentive-engine/insurance"
	"github.com/warp/incentive-engine/mobile"
	"github.com/warp/incentive-engine/protecta"
)

const (
	Track   generic.TrackID = "extragara"
	Section                 = "extraGara"

	// bpTier is the tier reserved to entities with a Business Promoter.
	bpTier = 4

	defaultVATCluster = "STD"
)

// Input is one contribution the bonus consumes.
type Input struct {
	Track        generic.TrackID
	Contribution generic.ContributionID
	Weight       string // key under extraGara.pesi
}

// Inputs lists the contributions in report order.
var Inputs = []Input{
	{mobile.Track, mobile.ContributionSimIVA, "mobileSimIva"},
	{fixed.Track, fixed.ContributionLineeIVA, "fissoLineeIva"},
	{energy.Track, energy.ContributionBusiness, "energiaBusiness"},
	{insurance.Track, insurance.ContributionPro, "assicurazioniPro"},
	{protecta.Track, protecta.ContributionShop, "protectaShop"},
}

// Calculator is the cross-program bonus calculator.
type Calculator struct{}

var _ generic.DependentCalculator = Calculator{}

func (Calculator) Track() generic.TrackID { return Track }

// DependsOn returns the tracks whose results must be complete first.
func (Calculator) DependsOn() []generic.TrackID {
	out := make([]generic.TrackID, len(Inputs))
	for i, in := range Inputs {
		out[i] = in.Track
	}
	return out
}

// Evaluate computes one result per legal entity.
func (c Calculator) Evaluate(in generic.DependentInput, cfg generic.Resolver) ([]generic.EvaluationResult, []generic.Issue, []generic.Issue) {
	var (
		results  []generic.EvaluationResult
		warnings []generic.Issue
		failures []generic.Issue
	)

	overrides := generic.Path(Section, "override")
	for _, err := range generic.UnmatchedEntityPaths(cfg, overrides, "extra-gara override", in.Entities) {
		warnings = append(warnings, generic.NewIssue(Track, err.Name, err))
	}

	for _, e := range in.Entities {
		r, err := c.evaluateEntity(in, e, cfg)
		if err != nil {
			failures = append(failures, generic.NewIssue(Track, e.Key, err))
			continue
		}
		results = append(results, r)
	}
	return results, warnings, failures
}

func (Calculator) evaluateEntity(in generic.DependentInput, e *generic.LegalEntity, cfg generic.Resolver) (generic.EvaluationResult, error) {
	lead := e.Lead()
	r := generic.NewResult(Track, generic.Scope{
		ID:        e.Key,
		Mode:      in.Mode,
		Period:    in.Period,
		SellPoint: lead,
		Entity:    e,
	})

	memberPieces := make([]decimal.Decimal, len(e.Members))
	for i := range memberPieces {
		memberPieces[i] = decimal.Zero
	}

	for _, input := range Inputs {
		w, err := cfg.Resolve(generic.Path(Section, "pesi", input.Weight))
		if err != nil {
			return generic.EvaluationResult{}, err
		}
		total := generic.Contribution{Points: decimal.Zero, Pieces: decimal.Zero}
		for i, m := range e.Members {
			if err := in.MemberFailure(input.Track, m.Code); err != nil {
				return generic.EvaluationResult{}, err
			}
			contrib := in.MemberContribution(input.Track, m.Code, input.Contribution)
			total = total.Add(contrib)
			memberPieces[i] = memberPieces[i].Add(contrib.Pieces)
		}
		points := total.Points.Mul(w)
		r.Points = r.Points.Add(points)
		r.Detail = append(r.Detail, generic.DetailLine{
			Category: string(input.Contribution),
			Pieces:   total.Pieces,
			Points:   points,
			Premium:  decimal.Zero,
		})
	}

	ladder, err := Ladder(e, cfg)
	if err != nil {
		return generic.EvaluationResult{}, err
	}
	r.ApplyLadder(ladder)

	for i, m := range e.Members {
		if memberPieces[i].IsZero() {
			continue
		}
		cluster := m.VATCluster
		if cluster == "" {
			cluster = defaultVATCluster
		}
		rate, err := generic.RateAt(cfg, generic.Path(Section, "premi", cluster), r.Tier)
		if err != nil {
			return generic.EvaluationResult{}, err
		}
		amount := memberPieces[i].Mul(rate)
		r.Bonuses = append(r.Bonuses, generic.BonusLine{
			Name:   "premio." + m.Code,
			Basis:  memberPieces[i],
			Tier:   r.Tier,
			Amount: amount,
		})
		r.Premium = r.Premium.Add(amount)
	}

	r.Finish(in.WorkingDays[lead.Code])
	return r, nil
}

// Ladder returns the entity's threshold ladder.
func Ladder(e *generic.LegalEntity, cfg generic.Resolver) (generic.TierLadder, error) {
	hasBP := e.HasBusinessPromoter()
	flag := "nobp"
	if hasBP {
		flag = "bp"
	}

	var ladder generic.TierLadder
	if path, ok := generic.EntityPath(cfg, generic.Path(Section, "override"), e.Key); ok {
		l, err := generic.LoadLadder(cfg, path, 1, generic.MaxTiers)
		if err != nil {
			return generic.TierLadder{}, err
		}
		ladder = l
	} else if e.Size() == 1 {
		l, err := generic.LoadLadder(cfg, generic.Path(Section, "soglie", "monopos", flag), 3, generic.MaxTiers)
		if err != nil {
			return generic.TierLadder{}, err
		}
		ladder = l
	} else {
		l, err := generic.LoadLadder(cfg, generic.Path(Section, "soglie", "multipos", flag), 3, generic.MaxTiers)
		if err != nil {
			return generic.TierLadder{}, err
		}
		ladder = l.Scaled(generic.Dec(int64(e.Size())))
	}

	if !hasBP {
		ladder = ladder.Padded(bpTier).DisableFrom(bpTier)
	}
	return ladder, nil
}

// Defaults returns the hardcoded default parameters of the bonus.
func Defaults() generic.Layer {
	l := generic.NewLayer(generic.LayerDefault)
	weights := map[string]float64{
		"mobileSimIva": 1, "fissoLineeIva": 1, "energiaBusiness": 1, "assicurazioniPro": 0.5, "protectaShop": 0.5,
	}
	for k, w := range weights {
		l.SetScalar(generic.Path(Section, "pesi", k), generic.F(w))
	}
	l.SetLadder(generic.Path(Section, "soglie", "monopos", "bp"), generic.Decimals(10, 20, 30, 45)...)
	l.SetLadder(generic.Path(Section, "soglie", "monopos", "nobp"), generic.Decimals(8, 16, 25)...)
	l.SetLadder(generic.Path(Section, "soglie", "multipos", "bp"), generic.Decimals(8, 16, 24, 36)...)
	l.SetLadder(generic.Path(Section, "soglie", "multipos", "nobp"), generic.Decimals(6, 12, 20)...)
	l.SetLadder(generic.Path(Section, "premi", "BP_A"), generic.Decimals(0, 5, 8, 12, 16)...)
	l.SetLadder(generic.Path(Section, "premi", "BP_B"), generic.Decimals(0, 4, 7, 10, 14)...)
	l.SetLadder(generic.Path(Section, "premi", "STD"), generic.Decimals(0, 3, 5, 8, 8)...)
	return l
}
