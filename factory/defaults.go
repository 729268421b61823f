package factory

import (
	"github.com/warp/incentive-engine/energy"
	"github.com/warp/incentive-engine/extragara"
	"github.com/warp/incentive-engine/fixed"
	"github.com/warp/incentive-engine/generic"
	"github.com/warp/incentive-engine/insurance"
	"github.com/warp/incentive-engine/mobile"
	"github.com/warp/incentive-engine/partnership"
	"github.com/warp/incentive-engine/protecta"
)

// DefaultLayer merges the hardcoded defaults of every track and of the
// Extra-Gara bonus. Each call returns a fresh layer.
func DefaultLayer() generic.Layer {
	l := generic.NewLayer(generic.LayerDefault)
	for _, d := range []func() generic.Layer{
		mobile.Defaults,
		fixed.Defaults,
		energy.Defaults,
		insurance.Defaults,
		protecta.Defaults,
		partnership.Defaults,
		extragara.Defaults,
	} {
		l.Merge(d())
	}
	return l
}

// Snapshot builds the snapshot of an evaluation from the stored override
// layers. Either layer may be the zero Layer.
func Snapshot(system, org generic.Layer) *generic.Snapshot {
	return generic.NewSnapshot(DefaultLayer(), system, org)
}
