package api

import (
	"net/http"

	"github.com/okian/winrate/pkg/logger"
)

// TrainHandler handles training requests.
type TrainHandler struct {
	deps Dependencies
	log  logger.Logger
}

// NewTrainHandler creates a new train handler.
func NewTrainHandler(deps Dependencies, log logger.Logger) *TrainHandler {
	return &TrainHandler{deps: deps, log: log}
}

// HandleTrain handles POST /train requests. The run is synchronous and the
// response is the training report.
func (h *TrainHandler) HandleTrain(w http.ResponseWriter, r *http.Request) {
	const op = "api.train"
	rep, err := h.deps.Train(r.Context())
	if err != nil {
		writeServiceError(r.Context(), h.log, w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}
