package engine

import (
	"fmt"
	"sort"

	"github.com/warp/incentive-engine/generic"
)

// =============================================================================
// DEPENDENCY GRAPH
// =============================================================================

// stages orders calculators into Kahn stages: stage 0 holds every
// independent track, each later stage holds dependents whose inputs are all
// in earlier stages. Tracks inside a stage are sorted and may run in
// parallel.
func stages(calcs map[generic.TrackID]generic.Calculator, deps map[generic.TrackID]generic.DependentCalculator) ([][]generic.TrackID, error) {
	first := make([]generic.TrackID, 0, len(calcs))
	for t := range calcs {
		first = append(first, t)
	}
	sortTracks(first)
	out := [][]generic.TrackID{first}

	indegree := make(map[generic.TrackID]int, len(deps))
	dependents := make(map[generic.TrackID][]generic.TrackID)
	for t, d := range deps {
		indegree[t] = 0
		for _, in := range d.DependsOn() {
			if in == t {
				return nil, fmt.Errorf("%w: %s depends on itself", generic.ErrInvalidInput, t)
			}
			if _, ok := calcs[in]; ok {
				continue
			}
			if _, ok := deps[in]; !ok {
				return nil, fmt.Errorf("%w: %s depends on unknown track %s", generic.ErrInvalidInput, t, in)
			}
			indegree[t]++
			dependents[in] = append(dependents[in], t)
		}
	}

	var ready []generic.TrackID
	for t, n := range indegree {
		if n == 0 {
			ready = append(ready, t)
		}
	}
	placed := 0
	for len(ready) > 0 {
		sortTracks(ready)
		out = append(out, ready)
		placed += len(ready)

		var next []generic.TrackID
		for _, t := range ready {
			for _, d := range dependents[t] {
				indegree[d]--
				if indegree[d] == 0 {
					next = append(next, d)
				}
			}
		}
		ready = next
	}

	if placed != len(deps) {
		return nil, fmt.Errorf("%w: dependency cycle among cross-program calculators", generic.ErrInvalidInput)
	}
	return out, nil
}

func sortTracks(ts []generic.TrackID) {
	sort.Slice(ts, func(i, j int) bool { return ts[i] < ts[j] })
}
