package factory

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/warp/incentive-engine/engine"
	"github.com/warp/incentive-engine/generic"
)

// =============================================================================
// INPUT DOCUMENTS
// =============================================================================

// SellPointDoc is the document form of a sell point.
type SellPointDoc struct {
	Code                string  `json:"code" yaml:"code"`
	Name                string  `json:"name,omitempty" yaml:"name,omitempty"`
	LegalEntity         string  `json:"legal_entity" yaml:"legal_entity"`
	Position            string  `json:"position,omitempty" yaml:"position,omitempty"`
	MobileCluster       string  `json:"mobile_cluster,omitempty" yaml:"mobile_cluster,omitempty"`
	FixedCluster        string  `json:"fixed_cluster,omitempty" yaml:"fixed_cluster,omitempty"`
	CustomerBaseCluster string  `json:"customer_base_cluster,omitempty" yaml:"customer_base_cluster,omitempty"`
	VATCluster          string  `json:"vat_cluster,omitempty" yaml:"vat_cluster,omitempty"`
	CalendarRef         string  `json:"calendar_ref,omitempty" yaml:"calendar_ref,omitempty"`
	ThresholdDiscount   float64 `json:"threshold_discount,omitempty" yaml:"threshold_discount,omitempty"`
}

// InputDocument is the document form of an evaluation request.
//
//	mode: rs
//	period: "2025-03"
//	sell_points:
//	  - {code: P1, legal_entity: Rossi Srl, mobile_cluster: C1}
//	working_days: {P1: 22}
//	volumes:
//	  mobile:
//	    Rossi Srl: [{category: TIED, pieces: 50}]
type InputDocument struct {
	Mode        string                                    `json:"mode" yaml:"mode"`
	Period      string                                    `json:"period" yaml:"period"`
	SellPoints  []SellPointDoc                            `json:"sell_points" yaml:"sell_points"`
	WorkingDays map[string]int                            `json:"working_days,omitempty" yaml:"working_days,omitempty"`
	Volumes     map[string]map[string][]generic.RawVolume `json:"volumes,omitempty" yaml:"volumes,omitempty"`
}

// ParseInput reads an input document and converts it.
func ParseInput(data []byte, format Format) (engine.Input, error) {
	var doc InputDocument
	if err := decodeInto(data, format, &doc); err != nil {
		return engine.Input{}, err
	}
	return doc.ToInput()
}

// ToInput converts the document. Mode defaults to POS.
func (d InputDocument) ToInput() (engine.Input, error) {
	mode := generic.EntryMode(strings.ToLower(strings.TrimSpace(d.Mode)))
	if mode == "" {
		mode = generic.ModePOS
	}
	if !mode.Valid() {
		return engine.Input{}, fmt.Errorf("%w: entry mode %q", generic.ErrInvalidInput, d.Mode)
	}
	period, err := generic.ParsePeriod(d.Period)
	if err != nil {
		return engine.Input{}, err
	}

	in := engine.Input{
		Mode:        mode,
		Period:      period,
		SellPoints:  make([]generic.SellPoint, len(d.SellPoints)),
		WorkingDays: make(map[string]int, len(d.WorkingDays)),
		Volumes:     make(map[generic.TrackID]map[string][]generic.RawVolume, len(d.Volumes)),
	}
	for i, sp := range d.SellPoints {
		in.SellPoints[i] = sp.SellPoint()
	}
	for code, days := range d.WorkingDays {
		in.WorkingDays[code] = days
	}
	for track, rows := range d.Volumes {
		in.Volumes[generic.TrackID(track)] = rows
	}
	return in, nil
}

// SellPoint converts the document form.
func (d SellPointDoc) SellPoint() generic.SellPoint {
	return generic.SellPoint{
		Code:                strings.TrimSpace(d.Code),
		Name:                d.Name,
		LegalEntity:         d.LegalEntity,
		Position:            generic.Position(d.Position),
		MobileCluster:       d.MobileCluster,
		FixedCluster:        d.FixedCluster,
		CustomerBaseCluster: d.CustomerBaseCluster,
		VATCluster:          d.VATCluster,
		CalendarRef:         d.CalendarRef,
		ThresholdDiscount:   decimal.NewFromFloat(d.ThresholdDiscount),
	}
}

// SellPointDocOf is the inverse of SellPointDoc.SellPoint.
func SellPointDocOf(sp generic.SellPoint) SellPointDoc {
	discount, _ := sp.ThresholdDiscount.Float64()
	return SellPointDoc{
		Code:                sp.Code,
		Name:                sp.Name,
		LegalEntity:         sp.LegalEntity,
		Position:            string(sp.Position),
		MobileCluster:       sp.MobileCluster,
		FixedCluster:        sp.FixedCluster,
		CustomerBaseCluster: sp.CustomerBaseCluster,
		VATCluster:          sp.VATCluster,
		CalendarRef:         sp.CalendarRef,
		ThresholdDiscount:   discount,
	}
}

func decodeInto(data []byte, format Format, v any) error {
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, v); err != nil {
			return fmt.Errorf("%w: yaml: %v", generic.ErrInvalidInput, err)
		}
	case FormatJSON, "":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(v); err != nil {
			return fmt.Errorf("%w: json: %v", generic.ErrInvalidInput, err)
		}
	default:
		return fmt.Errorf("%w: unknown document format %q", generic.ErrInvalidInput, format)
	}
	return nil
}
