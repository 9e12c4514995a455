package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/okian/winrate/pkg/logger"
)

// DefaultsHandler serves the fallback values used by partial predictions.
type DefaultsHandler struct {
	deps Dependencies
	log  logger.Logger
}

// NewDefaultsHandler creates a new defaults handler.
func NewDefaultsHandler(deps Dependencies, log logger.Logger) *DefaultsHandler {
	return &DefaultsHandler{deps: deps, log: log}
}

// HandleGlobal handles GET /defaults requests.
func (h *DefaultsHandler) HandleGlobal(w http.ResponseWriter, r *http.Request) {
	d, err := h.deps.GlobalDefaults(r.Context())
	if err != nil {
		writeServiceError(r.Context(), h.log, w, "api.defaults", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// HandleChampion handles GET /defaults/{champion} requests. A champion with
// no matches is a 404 rather than a silent fallback.
func (h *DefaultsHandler) HandleChampion(w http.ResponseWriter, r *http.Request) {
	const op = "api.defaults_champion"
	champion := chi.URLParam(r, "champion")
	if champion == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	d, err := h.deps.ChampionDefaults(r.Context(), champion)
	if err != nil {
		writeServiceError(r.Context(), h.log, w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}
