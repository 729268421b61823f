/*
handlers.go - HTTP API handlers for the incentive engine

PURPOSE:
  Exposes evaluations, configuration layers, sell points and saved
  evaluations ("preventivi") over REST. Handlers parse requests, build the
  configuration snapshot from the store and delegate to the engine.

ENDPOINTS:
  Evaluations:
    POST   /api/evaluations                   Evaluate an input document

  Configuration:
    GET    /api/config/system                 Stored system layer
    PUT    /api/config/system                 Replace the system layer
    GET    /api/config/orgs/{org}             Stored org layer
    PUT    /api/config/orgs/{org}             Replace an org layer
    GET    /api/config/orgs/{org}/effective   Every effective parameter
    GET    /api/config/orgs/{org}/resolve     One parameter (?path=)

  Sell points:
    GET    /api/orgs/{org}/sellpoints         List
    POST   /api/orgs/{org}/sellpoints         Upsert by code

  Preventivi:
    GET    /api/orgs/{org}/preventivi         List, newest first
    POST   /api/orgs/{org}/preventivi         Evaluate and save
    GET    /api/preventivi/{id}               One, with its report

  Scenarios:
    GET    /api/scenarios                     List demo scenarios
    POST   /api/scenarios/{name}/evaluate     Evaluate one (?org=)

ERROR HANDLING:
  Errors are returned as JSON with a stable code:
  - 400: Invalid input or volumes
  - 404: Unknown preventivo, scenario or parameter path
  - 422: Configuration missing or malformed for a whole request
  - 500: Internal errors

  Configuration missing for one (track, scope) is NOT an HTTP error: the
  report is returned with the failure listed.

SECURITY NOTE:
  No authentication middleware. The org is taken from the path or body.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenarios
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/warp/incentive-engine/engine"
	"github.com/warp/incentive-engine/factory"
	"github.com/warp/incentive-engine/generic"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 8 << 20

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store      generic.Store
	Engine     *engine.Engine
	DefaultOrg string

	log   *zap.Logger
	now   func() time.Time
	newID func() string
}

// NewHandler creates a handler over a store and an engine.
func NewHandler(store generic.Store, eng *engine.Engine, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		Store:      store,
		Engine:     eng,
		DefaultOrg: "default",
		log:        log,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// snapshot builds the configuration snapshot of an org from the store.
func (h *Handler) snapshot(ctx context.Context, org string) (*generic.Snapshot, error) {
	system, err := h.Store.LoadLayer(ctx, generic.LayerSystem, "")
	if err != nil {
		return nil, eris.Wrap(err, "api: load system layer")
	}
	orgLayer, err := h.Store.LoadLayer(ctx, generic.LayerOrg, org)
	if err != nil {
		return nil, eris.Wrapf(err, "api: load %s layer", org)
	}
	return factory.Snapshot(system, orgLayer), nil
}

func (h *Handler) orgOr(org string) string {
	if strings.TrimSpace(org) == "" {
		return h.DefaultOrg
	}
	return org
}

// =============================================================================
// EVALUATIONS
// =============================================================================

// Evaluate runs an evaluation, saving it when the request asks to.
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req EvaluateRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	req.Org = h.orgOr(req.Org)
	h.evaluateAndRespond(w, r, req)
}

// CreatePreventivo evaluates and always saves under the path org.
func (h *Handler) CreatePreventivo(w http.ResponseWriter, r *http.Request) {
	var req EvaluateRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	req.Org = chi.URLParam(r, "org")
	req.Save = true
	h.evaluateAndRespond(w, r, req)
}

func (h *Handler) evaluateAndRespond(w http.ResponseWriter, r *http.Request, req EvaluateRequest) {
	ctx := r.Context()
	report, err := h.evaluate(ctx, req.Org, req.InputDocument)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := EvaluationResponse{Report: report}
	if req.Save {
		id, err := h.save(ctx, req.Org, req.Name, report)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		resp.PreventivoID = id
	}

	h.log.Info("evaluation complete",
		zap.String("org", req.Org),
		zap.String("report_id", report.ID),
		zap.String("period", report.Period.String()),
		zap.String("mode", string(report.Mode)),
		zap.String("total", report.Total.String()),
		zap.Int("warnings", len(report.Warnings)),
		zap.Int("failures", len(report.Failures)),
	)

	status := http.StatusOK
	if req.Save {
		status = http.StatusCreated
	}
	writeJSON(w, status, resp)
}

// evaluate converts a document, fills in stored sell points and runs the
// engine against the org's snapshot.
func (h *Handler) evaluate(ctx context.Context, org string, doc factory.InputDocument) (*engine.Report, error) {
	in, err := doc.ToInput()
	if err != nil {
		return nil, err
	}
	if len(in.SellPoints) == 0 {
		sps, err := h.Store.ListSellPoints(ctx, org)
		if err != nil {
			return nil, eris.Wrap(err, "api: load sell points")
		}
		in.SellPoints = sps
	}
	snap, err := h.snapshot(ctx, org)
	if err != nil {
		return nil, err
	}
	return h.Engine.Evaluate(ctx, in, snap)
}

func (h *Handler) save(ctx context.Context, org, name string, report *engine.Report) (string, error) {
	data, err := json.Marshal(report)
	if err != nil {
		return "", eris.Wrap(err, "api: encode report")
	}
	if strings.TrimSpace(name) == "" {
		name = report.Period.String()
	}
	p := generic.Preventivo{
		ID:        h.newID(),
		Org:       org,
		Name:      name,
		Period:    report.Period,
		Mode:      report.Mode,
		CreatedAt: h.now().UTC(),
		Report:    data,
	}
	if err := h.Store.SavePreventivo(ctx, p); err != nil {
		return "", eris.Wrap(err, "api: save preventivo")
	}
	return p.ID, nil
}

// =============================================================================
// CONFIGURATION
// =============================================================================

// GetSystemLayer returns the stored system layer.
func (h *Handler) GetSystemLayer(w http.ResponseWriter, r *http.Request) {
	h.getLayer(w, r, generic.LayerSystem, "")
}

// PutSystemLayer replaces the system layer.
func (h *Handler) PutSystemLayer(w http.ResponseWriter, r *http.Request) {
	h.putLayer(w, r, generic.LayerSystem, "")
}

// GetOrgLayer returns the stored org layer.
func (h *Handler) GetOrgLayer(w http.ResponseWriter, r *http.Request) {
	h.getLayer(w, r, generic.LayerOrg, chi.URLParam(r, "org"))
}

// PutOrgLayer replaces an org layer.
func (h *Handler) PutOrgLayer(w http.ResponseWriter, r *http.Request) {
	h.putLayer(w, r, generic.LayerOrg, chi.URLParam(r, "org"))
}

func (h *Handler) getLayer(w http.ResponseWriter, r *http.Request, name generic.LayerName, org string) {
	layer, err := h.Store.LoadLayer(r.Context(), name, org)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, LayerDTO{Name: name, Org: org, Values: factory.LayerDocument(layer)})
}

// putLayer accepts a JSON or YAML layer document, chosen by Content-Type.
func (h *Handler) putLayer(w http.ResponseWriter, r *http.Request, name generic.LayerName, org string) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.writeError(w, r, badRequest(err))
		return
	}
	format := factory.FormatJSON
	if strings.Contains(r.Header.Get("Content-Type"), "yaml") {
		format = factory.FormatYAML
	}

	layer, err := factory.ParseLayer(name, data, format)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.Store.SaveLayer(r.Context(), org, layer); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.log.Info("configuration layer replaced",
		zap.String("layer", string(name)),
		zap.String("org", org),
		zap.Int("paths", len(layer.Values)),
	)
	writeJSON(w, http.StatusOK, LayerDTO{Name: name, Org: org, Values: factory.LayerDocument(layer)})
}

// GetEffectiveConfig lists every parameter of an org with its source layer.
func (h *Handler) GetEffectiveConfig(w http.ResponseWriter, r *http.Request) {
	org := chi.URLParam(r, "org")
	snap, err := h.snapshot(r.Context(), org)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	prefix := r.URL.Query().Get("prefix")
	var values []EffectiveValueDTO
	for _, ev := range snap.Effective() {
		if prefix != "" && ev.Path != prefix && !strings.HasPrefix(ev.Path, prefix+".") {
			continue
		}
		values = append(values, toEffectiveDTO(ev))
	}
	if values == nil {
		values = []EffectiveValueDTO{}
	}
	writeJSON(w, http.StatusOK, EffectiveConfigResponse{Org: org, Values: values})
}

// ResolveConfig returns one effective parameter.
func (h *Handler) ResolveConfig(w http.ResponseWriter, r *http.Request) {
	org := chi.URLParam(r, "org")
	path := strings.TrimSpace(r.URL.Query().Get("path"))
	if path == "" {
		h.writeError(w, r, badRequest(errors.New("path query parameter is required")))
		return
	}
	snap, err := h.snapshot(r.Context(), org)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	v, src, ok := snap.Lookup(path)
	if !ok {
		h.writeError(w, r, notFound(&generic.ConfigMissingError{Path: path}))
		return
	}
	writeJSON(w, http.StatusOK, EffectiveValueDTO{
		Path:       path,
		Value:      factory.ValueDocument(v),
		Source:     src,
		Overridden: snap.IsOverridden(path),
	})
}

// =============================================================================
// SELL POINTS
// =============================================================================

// ListSellPoints returns an org's sell points.
func (h *Handler) ListSellPoints(w http.ResponseWriter, r *http.Request) {
	sps, err := h.Store.ListSellPoints(r.Context(), chi.URLParam(r, "org"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	docs := make([]factory.SellPointDoc, len(sps))
	for i, sp := range sps {
		docs[i] = factory.SellPointDocOf(sp)
	}
	writeJSON(w, http.StatusOK, docs)
}

// SaveSellPoints validates and upserts sell points.
func (h *Handler) SaveSellPoints(w http.ResponseWriter, r *http.Request) {
	var docs []factory.SellPointDoc
	if err := decodeBody(r, &docs); err != nil {
		h.writeError(w, r, err)
		return
	}
	if len(docs) == 0 {
		h.writeError(w, r, badRequest(errors.New("no sell points")))
		return
	}

	sps := make([]generic.SellPoint, len(docs))
	seen := make(map[string]bool, len(docs))
	for i, d := range docs {
		sp := d.SellPoint()
		if err := sp.Validate(); err != nil {
			h.writeError(w, r, err)
			return
		}
		if seen[sp.Code] {
			h.writeError(w, r, badRequest(errors.New("duplicate sell point "+sp.Code)))
			return
		}
		seen[sp.Code] = true
		sps[i] = sp
	}

	org := chi.URLParam(r, "org")
	if err := h.Store.SaveSellPoints(r.Context(), org, sps); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.ListSellPoints(w, r)
}

// =============================================================================
// PREVENTIVI
// =============================================================================

// ListPreventivi returns an org's saved evaluations without reports.
func (h *Handler) ListPreventivi(w http.ResponseWriter, r *http.Request) {
	ps, err := h.Store.ListPreventivi(r.Context(), chi.URLParam(r, "org"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	dtos := make([]PreventivoDTO, len(ps))
	for i, p := range ps {
		p.Report = nil
		dtos[i] = toPreventivoDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetPreventivo returns one saved evaluation with its report.
func (h *Handler) GetPreventivo(w http.ResponseWriter, r *http.Request) {
	p, err := h.Store.GetPreventivo(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPreventivoDTO(p))
}

// Healthz reports liveness.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return badRequest(err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// requestError pins an HTTP status on an error that carries no engine
// sentinel.
type requestError struct {
	status int
	err    error
}

func (e *requestError) Error() string { return e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

func badRequest(err error) error {
	return &requestError{status: http.StatusBadRequest, err: err}
}

func notFound(err error) error {
	return &requestError{status: http.StatusNotFound, err: err}
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	var re *requestError
	switch {
	case errors.As(err, &re):
		return re.status
	case errors.Is(err, generic.ErrNotFound):
		return http.StatusNotFound
	case generic.IsBlocking(err):
		return http.StatusUnprocessableEntity
	case generic.IsClientError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func codeFor(err error, status int) string {
	if code := generic.ErrorCode(err); code != "internal" {
		return code
	}
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	resp := ErrorResponse{Error: http.StatusText(status), Code: codeFor(err, status), Details: err.Error()}

	fields := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		h.log.Error("request failed", fields...)
		resp.Details = ""
	} else {
		h.log.Warn("request rejected", fields...)
	}
	writeJSON(w, status, resp)
}
