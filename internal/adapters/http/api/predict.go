package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/okian/winrate/internal/domain/features"
	"github.com/okian/winrate/internal/domain/match"
	"github.com/okian/winrate/pkg/logger"
)

// PredictHandler handles full and partial prediction requests.
type PredictHandler struct {
	deps Dependencies
	log  logger.Logger
}

// NewPredictHandler creates a new predict handler.
func NewPredictHandler(deps Dependencies, log logger.Logger) *PredictHandler {
	return &PredictHandler{deps: deps, log: log}
}

// HandlePredict handles POST /predict requests.
func (h *PredictHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	const op = "api.predict"
	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	v, err := req.vector()
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	pred, err := h.deps.PredictFull(r.Context(), v)
	if err != nil {
		writeServiceError(r.Context(), h.log, w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, pred)
}

// HandlePredictPartial handles POST /predict/partial requests.
func (h *PredictHandler) HandlePredictPartial(w http.ResponseWriter, r *http.Request) {
	const op = "api.predict_partial"
	var req partialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	champion := strings.TrimSpace(req.Champion)
	if champion == "" {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w: champion", ErrBadRequest, ErrMissingField))
		return
	}
	pred, err := h.deps.PredictPartial(r.Context(), champion, req.overrides())
	if err != nil {
		writeServiceError(r.Context(), h.log, w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, pred)
}

// metricFields are the eight numeric metrics of a request. Nil means absent.
type metricFields struct {
	Kills       *float64 `json:"kills"`
	Deaths      *float64 `json:"deaths"`
	Assists     *float64 `json:"assists"`
	GoldPerMin  *float64 `json:"goldPerMin"`
	CSPerMin    *float64 `json:"csPerMin"`
	DmgPerMin   *float64 `json:"dmgPerMin"`
	VisionScore *float64 `json:"visionScore"`
	XPPerMin    *float64 `json:"xpPerMin"`
}

func (m metricFields) values() [match.NumMetrics]*float64 {
	return [match.NumMetrics]*float64{
		match.Kills:       m.Kills,
		match.Deaths:      m.Deaths,
		match.Assists:     m.Assists,
		match.GoldPerMin:  m.GoldPerMin,
		match.CSPerMin:    m.CSPerMin,
		match.DmgPerMin:   m.DmgPerMin,
		match.VisionScore: m.VisionScore,
		match.XPPerMin:    m.XPPerMin,
	}
}

// predictRequest mirrors the OpenAPI schema for POST /predict. Champion,
// role, both runes and every metric are required; queueId and patch are
// optional and default to 0 and "".
type predictRequest struct {
	Champion    *string `json:"champion"`
	Role        *string `json:"role"`
	RunePrimary *int    `json:"runePrimary"`
	RuneSub     *int    `json:"runeSub"`
	QueueID     int     `json:"queueId"`
	Patch       string  `json:"patch"`
	metricFields
}

func (p predictRequest) vector() (features.Vector, error) {
	var missing []string
	if p.Champion == nil || strings.TrimSpace(*p.Champion) == "" {
		missing = append(missing, match.ColChampion)
	}
	if p.Role == nil {
		missing = append(missing, match.ColRole)
	}
	if p.RunePrimary == nil {
		missing = append(missing, match.ColRunePrimary)
	}
	if p.RuneSub == nil {
		missing = append(missing, match.ColRuneSub)
	}
	values := p.values()
	for i, v := range values {
		if v == nil {
			missing = append(missing, match.Metric(i).Column())
		}
	}
	if len(missing) > 0 {
		return features.Vector{}, fmt.Errorf("%w: %w: %s", ErrBadRequest, ErrMissingField, strings.Join(missing, ", "))
	}

	v := features.Vector{
		Champion:    strings.TrimSpace(*p.Champion),
		Role:        match.Role(*p.Role),
		RunePrimary: *p.RunePrimary,
		RuneSub:     *p.RuneSub,
		QueueID:     p.QueueID,
		Patch:       p.Patch,
	}
	for i, val := range values {
		v.Stats[i] = *val
	}
	return v, nil
}

// partialRequest mirrors the OpenAPI schema for POST /predict/partial. Only
// champion is required; an empty role counts as absent.
type partialRequest struct {
	Champion    string  `json:"champion"`
	Role        *string `json:"role"`
	RunePrimary *int    `json:"runePrimary"`
	RuneSub     *int    `json:"runeSub"`
	QueueID     *int    `json:"queueId"`
	Patch       *string `json:"patch"`
	metricFields
}

func (p partialRequest) overrides() features.Overrides {
	o := features.Overrides{
		RunePrimary: p.RunePrimary,
		RuneSub:     p.RuneSub,
		QueueID:     p.QueueID,
		Patch:       p.Patch,
		Stats:       p.values(),
	}
	if p.Role != nil && strings.TrimSpace(*p.Role) != "" {
		o.Role = p.Role
	}
	return o
}
