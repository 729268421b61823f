/*
Package engine orchestrates one incentive evaluation.

PURPOSE:
  Wires the projector, the per-track calculators and the cross-program
  calculators into one call:

    input -> Project -> stage 0 (every track, in parallel)
                     -> stage 1..n (dependents, after their inputs)
                     -> Report

DEPENDENCY GRAPH:
  Dependencies are declared by the dependent calculators (DependsOn) and
  resolved into stages when the engine is built. Unknown or cyclic
  dependencies are rejected by New, never discovered mid-evaluation.

CONCURRENCY:
  Calculators are pure and synchronous. The engine runs each track of a
  stage in its own goroutine (errgroup) and waits for the stage before
  starting the next. Every goroutine writes only its own track's slot.

FAILURE SCOPING:
  A calculator error fails that (track, scope) only; the report lists it
  and every other scope and track is still computed. Evaluate returns an
  error only for input that cannot be projected or a cancelled context.

CONFIGURATION:
  The caller builds the snapshot once; every calculator of the evaluation
  reads the same immutable Resolver.

USAGE:
  eng := engine.Default()
  snap := generic.NewSnapshot(factory.DefaultLayer(), system, org)
  report, err := eng.Evaluate(ctx, input, snap)
*/
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/warp/incentive-engine/energy"
	"github.com/warp/incentive-engine/extragara"
	"github.com/warp/incentive-engine/fixed"
	"github.com/warp/incentive-engine/generic"
	"github.com/warp/incentive-engine/insurance"
	"github.com/warp/incentive-engine/mobile"
	"github.com/warp/incentive-engine/partnership"
	"github.com/warp/incentive-engine/protecta"
)

// =============================================================================
// INPUT
// =============================================================================

// Input is one evaluation request.
type Input struct {
	Mode        generic.EntryMode
	Period      generic.Period
	SellPoints  []generic.SellPoint
	WorkingDays map[string]int

	// Volumes by track, then by POS code or RS name depending on Mode.
	Volumes map[generic.TrackID]map[string][]generic.RawVolume
}

// =============================================================================
// ENGINE
// =============================================================================

// Engine evaluates a fixed set of calculators.
type Engine struct {
	calculators map[generic.TrackID]generic.Calculator
	dependents  map[generic.TrackID]generic.DependentCalculator
	stages      [][]generic.TrackID

	now   func() time.Time
	newID func() string
}

// New builds an engine and its dependency stages.
func New(calculators []generic.Calculator, dependents ...generic.DependentCalculator) (*Engine, error) {
	e := &Engine{
		calculators: make(map[generic.TrackID]generic.Calculator, len(calculators)),
		dependents:  make(map[generic.TrackID]generic.DependentCalculator, len(dependents)),
		now:         time.Now,
		newID:       uuid.NewString,
	}
	for _, c := range calculators {
		if _, dup := e.calculators[c.Track()]; dup {
			return nil, fmt.Errorf("%w: duplicate calculator %s", generic.ErrInvalidInput, c.Track())
		}
		e.calculators[c.Track()] = c
	}
	for _, d := range dependents {
		_, dupCalc := e.calculators[d.Track()]
		_, dupDep := e.dependents[d.Track()]
		if dupCalc || dupDep {
			return nil, fmt.Errorf("%w: duplicate calculator %s", generic.ErrInvalidInput, d.Track())
		}
		e.dependents[d.Track()] = d
	}

	st, err := stages(e.calculators, e.dependents)
	if err != nil {
		return nil, err
	}
	e.stages = st
	return e, nil
}

// Default returns the engine with every track and the Extra-Gara bonus.
func Default() *Engine {
	e, err := New([]generic.Calculator{
		mobile.Calculator{},
		fixed.Calculator{},
		energy.Calculator{},
		insurance.Calculator(),
		protecta.Calculator(),
		partnership.Calculator{},
	}, extragara.Calculator{})
	if err != nil {
		panic(err) // static wiring
	}
	return e
}

// Stages returns the evaluation stages in order.
func (e *Engine) Stages() [][]generic.TrackID {
	out := make([][]generic.TrackID, len(e.stages))
	for i, s := range e.stages {
		out[i] = append([]generic.TrackID(nil), s...)
	}
	return out
}

// Tracks returns the per-scope tracks.
func (e *Engine) Tracks() []generic.TrackID {
	return append([]generic.TrackID(nil), e.stages[0]...)
}

// =============================================================================
// EVALUATE
// =============================================================================

// entityParams lists the parameters keyed by legal-entity name, per track.
// A key naming no entity of the evaluation is a setup mistake worth a
// warning: the entity it was meant for silently uses the summed ladder.
var entityParams = []struct {
	track  generic.TrackID
	prefix string
}{
	{mobile.Track, generic.Path(mobile.Section, "soglieRS")},
	{fixed.Track, generic.Path(fixed.Section, "soglieRS")},
	{energy.Track, generic.Path(energy.Section, "soglieRS")},
	{insurance.Track, generic.Path(insurance.Section, "soglieRS")},
	{protecta.Track, generic.Path(protecta.Section, "soglieRS")},
	{partnership.Track, generic.Path(partnership.Section, "targetRS")},
}

func unmatchedEntityParams(cfg generic.Resolver, entities []*generic.LegalEntity) []generic.Issue {
	var out []generic.Issue
	for _, p := range entityParams {
		for _, err := range generic.UnmatchedEntityPaths(cfg, p.prefix, "rs thresholds", entities) {
			out = append(out, generic.NewIssue(p.track, err.Name, err))
		}
	}
	return out
}

// trackOutcome is what one goroutine produces for one track.
type trackOutcome struct {
	results  []generic.EvaluationResult
	warnings []generic.Issue
	failures []generic.Issue
}

// Evaluate runs a full evaluation against one configuration snapshot.
func (e *Engine) Evaluate(ctx context.Context, in Input, cfg generic.Resolver) (*Report, error) {
	sheets := make(map[generic.TrackID]generic.SheetFactory, len(e.calculators))
	for t, c := range e.calculators {
		sheets[t] = c.NewSheet
	}

	proj, err := generic.Project(generic.ProjectionInput{
		Mode:        in.Mode,
		Period:      in.Period,
		SellPoints:  in.SellPoints,
		WorkingDays: in.WorkingDays,
		Volumes:     in.Volumes,
		Sheets:      sheets,
	})
	if err != nil {
		return nil, err
	}

	report := &Report{
		ID:          e.newID(),
		GeneratedAt: e.now().UTC(),
		Mode:        in.Mode,
		Period:      in.Period,
		Results:     make(map[generic.TrackID][]generic.EvaluationResult),
		Bonuses:     make(map[generic.TrackID][]generic.EvaluationResult),
		Warnings:    append([]generic.Issue{}, proj.Warnings...),
		Failures:    []generic.Issue{},
	}
	report.Warnings = append(report.Warnings, unmatchedEntityParams(cfg, proj.Entities)...)

	// byScope indexes finished per-scope results for dependents, failed
	// the causes of the scopes a track could not evaluate.
	byScope := make(map[generic.TrackID]map[string]generic.EvaluationResult)
	failed := make(map[generic.TrackID]map[string]error)

	for i, stage := range e.stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		outcomes := make([]trackOutcome, len(stage))
		g, gctx := errgroup.WithContext(ctx)
		for j, track := range stage {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				if i == 0 {
					outcomes[j] = e.runTrack(e.calculators[track], proj, cfg)
					return nil
				}
				outcomes[j] = e.runDependent(e.dependents[track], proj, byScope, failed, in.WorkingDays, cfg)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		for j, track := range stage {
			o := outcomes[j]
			if i == 0 {
				report.Results[track] = o.results
			} else {
				report.Bonuses[track] = o.results
			}
			report.Warnings = append(report.Warnings, o.warnings...)
			report.Failures = append(report.Failures, o.failures...)

			idx := make(map[string]generic.EvaluationResult, len(o.results))
			for _, r := range o.results {
				idx[r.ScopeID] = r
			}
			byScope[track] = idx

			causes := make(map[string]error, len(o.failures))
			for _, f := range o.failures {
				causes[f.Scope] = f.Err
			}
			failed[track] = causes
		}
	}

	report.totals(proj)
	return report, nil
}

// runTrack evaluates one track over every scope of the projection.
func (e *Engine) runTrack(calc generic.Calculator, proj *generic.Projection, cfg generic.Resolver) trackOutcome {
	track := calc.Track()
	var out trackOutcome
	for _, v := range proj.Views {
		if err := v.Failures[track]; err != nil {
			out.failures = append(out.failures, generic.NewIssue(track, v.Scope.ID, err))
			continue
		}
		if !v.Attributed {
			out.results = append(out.results, generic.Unattributed(track, v.Scope, v.AttributedTo))
			continue
		}

		r, err := calc.Evaluate(v.Scope, v.Sheets[track], cfg)
		switch {
		case err == nil:
			out.results = append(out.results, r)
		case generic.IsWarning(err):
			empty := generic.EmptyResult(track, v.Scope)
			empty.Warnings = append(empty.Warnings, err.Error())
			out.results = append(out.results, empty)
			out.warnings = append(out.warnings, generic.NewIssue(track, v.Scope.ID, err))
		default:
			out.failures = append(out.failures, generic.NewIssue(track, v.Scope.ID, err))
		}
	}
	return out
}

// runDependent evaluates a cross-program calculator on finished results.
// byScope and failed are only written between stages, so reading them here
// is safe.
func (e *Engine) runDependent(dep generic.DependentCalculator, proj *generic.Projection, byScope map[generic.TrackID]map[string]generic.EvaluationResult, failed map[generic.TrackID]map[string]error, days map[string]int, cfg generic.Resolver) trackOutcome {
	results := make(map[generic.TrackID]map[string]generic.EvaluationResult, len(dep.DependsOn()))
	inputFailed := make(map[generic.TrackID]map[string]error, len(dep.DependsOn()))
	for _, t := range dep.DependsOn() {
		results[t] = byScope[t]
		inputFailed[t] = failed[t]
	}

	rs, warnings, failures := dep.Evaluate(generic.DependentInput{
		Mode:        proj.Mode,
		Period:      proj.Period,
		Entities:    proj.Entities,
		Results:     results,
		Failed:      inputFailed,
		WorkingDays: days,
	}, cfg)
	return trackOutcome{results: rs, warnings: warnings, failures: failures}
}
