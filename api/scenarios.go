/*
scenarios.go - Demo scenarios for testing and demonstrations

PURPOSE:
  Provides pre-built evaluation inputs that exercise specific engine
  behaviors. Scenarios are evaluated against the stored configuration of an
  org, so they double as a quick check after editing a layer.

AVAILABLE SCENARIOS:
  single-pos:        One street POS, mobile and fixed volumes
  rs-chain:          Three POS of one legal entity entered in RS mode
  business-promoter: BP entity reaching the reserved Extra-Gara tier
  capped-addons:     Add-on volumes above their caps

USAGE VIA API:
  POST /api/scenarios/rs-chain/evaluate?org=acme

ADDING NEW SCENARIOS:
  1. Add an entry to 'scenarios' with a name and an input document
  2. Keep the input self-contained: sell points included

SEE ALSO:
  - handlers.go: Shared evaluation path
*/
package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/warp/incentive-engine/factory"
	"github.com/warp/incentive-engine/generic"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

type scenario struct {
	ScenarioDTO
	Input factory.InputDocument
}

type rows = []generic.RawVolume

var scenarios = []scenario{
	{
		ScenarioDTO: ScenarioDTO{
			Name:        "single-pos",
			Title:       "Single POS",
			Description: "One street POS reaching mobile tier 1 and fixed tier 2",
			Mode:        generic.ModePOS,
		},
		Input: factory.InputDocument{
			Mode:   "pos",
			Period: "2025-03",
			SellPoints: []factory.SellPointDoc{
				{Code: "PDV001", Name: "Roma Centro", LegalEntity: "Rossi Telefonia S.r.l.", Position: "street",
					MobileCluster: "C1", FixedCluster: "F1", CustomerBaseCluster: "CB1", VATCluster: "STD"},
			},
			WorkingDays: map[string]int{"PDV001": 22},
			Volumes: map[string]map[string]rows{
				"mobile": {"PDV001": {{Category: "TIED", Pieces: 50}, {Category: "UNTIED", Pieces: 20}, {Category: "SIM_IVA", Pieces: 4}}},
				"fixed":  {"PDV001": {{Category: "FTTH", Pieces: 20}, {Category: "FTTC", Pieces: 17}, {Category: "LINEA_IVA", Pieces: 2}}},
			},
		},
	},
	{
		ScenarioDTO: ScenarioDTO{
			Name:        "rs-chain",
			Title:       "Legal entity with three shops",
			Description: "Volumes entered per legal entity; ladders are the sum of the member ladders",
			Mode:        generic.ModeRS,
		},
		Input: factory.InputDocument{
			Mode:   "rs",
			Period: "2025-03",
			SellPoints: []factory.SellPointDoc{
				{Code: "PDV101", LegalEntity: "Bianchi Group S.p.A.", Position: "shopping_center",
					MobileCluster: "C1", FixedCluster: "F2", CustomerBaseCluster: "CB1", VATCluster: "STD"},
				{Code: "PDV102", LegalEntity: "BIANCHI GROUP SPA", Position: "street",
					MobileCluster: "C2", FixedCluster: "F2", CustomerBaseCluster: "CB2", VATCluster: "STD", ThresholdDiscount: 10},
				{Code: "PDV103", LegalEntity: "Bianchi Group SpA", Position: "street",
					MobileCluster: "C3", FixedCluster: "F3", CustomerBaseCluster: "CB3", VATCluster: "STD"},
			},
			WorkingDays: map[string]int{"PDV101": 22, "PDV102": 22, "PDV103": 20},
			Volumes: map[string]map[string]rows{
				"mobile":      {"Bianchi Group S.p.A.": {{Category: "TIED", Pieces: 120}, {Category: "MNP", Pieces: 60}}},
				"energy":      {"Bianchi Group S.p.A.": {{Category: "LUCE_CONSUMER", Pieces: 40}, {Category: "GAS_BUSINESS", Pieces: 12}}},
				"insurance":   {"Bianchi Group S.p.A.": {{Category: "CASA", Pieces: 6}, {Category: "PRO", Pieces: 3}}},
				"partnership": {"Bianchi Group S.p.A.": {{Category: "CAMBIO_OFFERTA", Cluster: "B", Pieces: 40}, {Category: "DEVICE_BUNDLE", Cluster: "SMARTPHONE", Pieces: 20}}},
			},
		},
	},
	{
		ScenarioDTO: ScenarioDTO{
			Name:        "business-promoter",
			Title:       "Business Promoter",
			Description: "Business products across tracks; only BP entities can reach Extra-Gara tier 4",
			Mode:        generic.ModePOS,
		},
		Input: factory.InputDocument{
			Mode:   "pos",
			Period: "2025-04",
			SellPoints: []factory.SellPointDoc{
				{Code: "PDV201", LegalEntity: "Verdi Business Srl", MobileCluster: "C2", FixedCluster: "F1",
					CustomerBaseCluster: "CB2", VATCluster: "BP_A"},
			},
			WorkingDays: map[string]int{"PDV201": 21},
			Volumes: map[string]map[string]rows{
				"mobile":    {"PDV201": {{Category: "SIM_IVA", Pieces: 20}}},
				"fixed":     {"PDV201": {{Category: "LINEA_IVA", Pieces: 10}}},
				"energy":    {"PDV201": {{Category: "LUCE_BUSINESS", Pieces: 6}}},
				"insurance": {"PDV201": {{Category: "PRO", Pieces: 4}}},
				"protecta":  {"PDV201": {{Category: "SHOP", Pieces: 2}}},
			},
		},
	},
	{
		ScenarioDTO: ScenarioDTO{
			Name:        "capped-addons",
			Title:       "Capped add-ons",
			Description: "Add-ons above their base products are lowered before points are computed",
			Mode:        generic.ModePOS,
		},
		Input: factory.InputDocument{
			Mode:   "pos",
			Period: "2025-03",
			SellPoints: []factory.SellPointDoc{
				{Code: "PDV301", LegalEntity: "Neri Snc", MobileCluster: "C3", FixedCluster: "F3",
					CustomerBaseCluster: "CB3", VATCluster: "STD"},
			},
			WorkingDays: map[string]int{"PDV301": 20},
			Volumes: map[string]map[string]rows{
				"mobile": {"PDV301": {{Category: "TIED", Pieces: 30}, {Category: "PIU_SICURI_MOBILE", Pieces: 45}}},
				"fixed":  {"PDV301": {{Category: "FTTH", Pieces: 6}, {Category: "PIU_SICURI_CASA_UFFICIO", Pieces: 10}}},
				"energy": {"PDV301": {{Category: "LUCE_CONSUMER", Pieces: 5}, {Category: "DOMICILIAZIONE", Pieces: 9}}},
			},
		},
	},
}

func findScenario(name string) (scenario, bool) {
	for _, s := range scenarios {
		if s.Name == name {
			return s, true
		}
	}
	return scenario{}, false
}

// =============================================================================
// HANDLERS
// =============================================================================

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	out := make([]ScenarioDTO, len(scenarios))
	for i, s := range scenarios {
		out[i] = s.ScenarioDTO
	}
	writeJSON(w, http.StatusOK, out)
}

// EvaluateScenario evaluates a scenario against an org's configuration.
func (h *Handler) EvaluateScenario(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	s, ok := findScenario(name)
	if !ok {
		h.writeError(w, r, notFound(fmt.Errorf("scenario %q", name)))
		return
	}

	org := h.orgOr(r.URL.Query().Get("org"))
	report, err := h.evaluate(r.Context(), org, s.Input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, EvaluationResponse{Report: report})
}
