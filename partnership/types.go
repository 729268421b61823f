// Package partnership implements the customer-base partnership track.
//
// Rows carry a cluster sub-key for CAMBIO_OFFERTA (A, B, C) and
// DEVICE_BUNDLE (SMARTPHONE, TABLET, WEARABLE). The track has a single
// target per POS instead of a ladder: 80% of it pays a first lump sum,
// 100% a second.
package partnership

import "github.com/warp/incentive-engine/generic"

const (
	Track   generic.TrackID = "partnership"
	Section                 = "partnership"
)

// Category is a partnership event category.
type Category string

func (c Category) CategoryID() string             { return string(c) }
func (c Category) CategoryTrack() generic.TrackID { return Track }

const (
	CategoryCambioOfferta      Category = "CAMBIO_OFFERTA"
	CategoryDeviceBundle       Category = "DEVICE_BUNDLE"
	CategoryRicaricaAutomatica Category = "RICARICA_AUTOMATICA"
	CategoryFibraUpsell        Category = "FIBRA_UPSELL"
)

// Cluster keys.
var (
	OfferClusters  = []string{"A", "B", "C"}
	DeviceClusters = []string{"SMARTPHONE", "TABLET", "WEARABLE"}
)

// Line is one (category, cluster) pair the track pays.
type Line struct {
	Category Category
	Cluster  string
}

// Key returns the configuration key: CAT or CAT.CLUSTER.
func (l Line) Key() string {
	return generic.EntryKey(l.Category, l.Cluster)
}

// Lines lists every payable line in report order.
func Lines() []Line {
	var out []Line
	for _, cl := range OfferClusters {
		out = append(out, Line{CategoryCambioOfferta, cl})
	}
	for _, cl := range DeviceClusters {
		out = append(out, Line{CategoryDeviceBundle, cl})
	}
	return append(out, Line{CategoryRicaricaAutomatica, ""}, Line{CategoryFibraUpsell, ""})
}

func init() {
	generic.RegisterCategory(CategoryCambioOfferta, generic.CategorySpec{Clusters: OfferClusters})
	generic.RegisterCategory(CategoryDeviceBundle, generic.CategorySpec{Clusters: DeviceClusters})
	generic.RegisterCategory(CategoryRicaricaAutomatica, generic.CategorySpec{})
	generic.RegisterCategory(CategoryFibraUpsell, generic.CategorySpec{})
}

// Defaults returns the hardcoded default parameters of the track.
//
//	partnership.punti.<CAT>[.<CL>]     points per event
//	partnership.premi.<CAT>[.<CL>]     premium per event, always paid
//	partnership.target.<CBCluster>     per-POS target
//	partnership.targetRS.<entityKey>   explicit entity target
//	partnership.sogliaPercent          first tier as a percentage of target
//	partnership.premio80/premio100     lump sums for the two tiers
func Defaults() generic.Layer {
	l := generic.NewLayer(generic.LayerDefault)

	values := map[string][2]float64{ // points, premium
		"CAMBIO_OFFERTA.A":         {1, 2},
		"CAMBIO_OFFERTA.B":         {1.5, 3},
		"CAMBIO_OFFERTA.C":         {2, 4},
		"DEVICE_BUNDLE.SMARTPHONE": {2, 5},
		"DEVICE_BUNDLE.TABLET":     {1.5, 3},
		"DEVICE_BUNDLE.WEARABLE":   {1, 2},
		"RICARICA_AUTOMATICA":      {0.5, 1},
		"FIBRA_UPSELL":             {1.5, 3},
	}
	for key, v := range values {
		l.SetScalar(generic.Path(Section, "punti", key), generic.F(v[0]))
		l.SetScalar(generic.Path(Section, "premi", key), generic.F(v[1]))
	}

	l.SetScalar(generic.Path(Section, "target", "CB1"), generic.F(60))
	l.SetScalar(generic.Path(Section, "target", "CB2"), generic.F(40))
	l.SetScalar(generic.Path(Section, "target", "CB3"), generic.F(25))
	l.SetScalar(generic.Path(Section, "sogliaPercent"), generic.F(80))
	l.SetScalar(generic.Path(Section, "premio80"), generic.F(150))
	l.SetScalar(generic.Path(Section, "premio100"), generic.F(300))
	return l
}
