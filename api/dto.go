/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Engine types that are
  already a stable contract (engine.Report, generic.SellPoint) are returned
  as-is; everything else goes through a DTO.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

SEE ALSO:
  - handlers.go: Uses these types
  - factory/input.go: InputDocument, SellPointDoc
*/
package api

import (
	"github.com/goccy/go-json"

	"github.com/warp/incentive-engine/engine"
	"github.com/warp/incentive-engine/factory"
	"github.com/warp/incentive-engine/generic"
)

// =============================================================================
// EVALUATIONS
// =============================================================================

// EvaluateRequest is the body of POST /api/evaluations and
// POST /api/orgs/{org}/preventivi.
//
// When sell_points is empty the org's stored sell points are used.
type EvaluateRequest struct {
	factory.InputDocument

	Org  string `json:"org,omitempty"`
	Name string `json:"name,omitempty"`
	Save bool   `json:"save,omitempty"`
}

// EvaluationResponse wraps a report with the id it was saved under.
type EvaluationResponse struct {
	PreventivoID string         `json:"preventivo_id,omitempty"`
	Report       *engine.Report `json:"report"`
}

// =============================================================================
// CONFIGURATION
// =============================================================================

// EffectiveValueDTO is one resolved parameter.
type EffectiveValueDTO struct {
	Path       string            `json:"path"`
	Value      any               `json:"value"`
	Source     generic.LayerName `json:"source"`
	Overridden bool              `json:"overridden"`
}

// EffectiveConfigResponse lists every effective parameter of an org.
type EffectiveConfigResponse struct {
	Org    string              `json:"org"`
	Values []EffectiveValueDTO `json:"values"`
}

// LayerDTO is a stored override layer.
type LayerDTO struct {
	Name   generic.LayerName `json:"name"`
	Org    string            `json:"org,omitempty"`
	Values map[string]any    `json:"values"`
}

func toEffectiveDTO(ev generic.EffectiveValue) EffectiveValueDTO {
	return EffectiveValueDTO{
		Path:       ev.Path,
		Value:      factory.ValueDocument(ev.Value),
		Source:     ev.Source,
		Overridden: ev.Overridden,
	}
}

// =============================================================================
// PREVENTIVI
// =============================================================================

// PreventivoDTO is a saved evaluation. Report is omitted in listings.
type PreventivoDTO struct {
	ID        string            `json:"id"`
	Org       string            `json:"org"`
	Name      string            `json:"name"`
	Period    string            `json:"period"`
	Mode      generic.EntryMode `json:"mode"`
	CreatedAt string            `json:"created_at"`
	Report    json.RawMessage   `json:"report,omitempty"`
}

func toPreventivoDTO(p generic.Preventivo) PreventivoDTO {
	dto := PreventivoDTO{
		ID:        p.ID,
		Org:       p.Org,
		Name:      p.Name,
		Period:    p.Period.String(),
		Mode:      p.Mode,
		CreatedAt: p.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
	if len(p.Report) > 0 {
		dto.Report = json.RawMessage(p.Report)
	}
	return dto
}

// =============================================================================
// SCENARIOS & ERRORS
// =============================================================================

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	Name        string            `json:"name"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Mode        generic.EntryMode `json:"mode"`
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}
