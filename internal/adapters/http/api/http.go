// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/okian/winrate/internal/adapters/dataset"
	"github.com/okian/winrate/internal/adapters/repository"
	service "github.com/okian/winrate/internal/app"
	"github.com/okian/winrate/internal/domain/defaults"
	"github.com/okian/winrate/internal/domain/evaluate"
	"github.com/okian/winrate/internal/domain/features"
	"github.com/okian/winrate/internal/domain/match"
	"github.com/okian/winrate/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	StatsProvider

	// Train fits and stores a new model.
	Train(ctx context.Context) (service.Report, error)

	// Predictions against the stored model.
	PredictFull(ctx context.Context, v features.Vector) (service.Prediction, error)
	PredictPartial(ctx context.Context, champion string, o features.Overrides) (service.Prediction, error)

	// Read operations expose the fallback values.
	GlobalDefaults(ctx context.Context) (defaults.Defaults, error)
	ChampionDefaults(ctx context.Context, champion string) (defaults.Defaults, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	trainHandler    *TrainHandler
	predictHandler  *PredictHandler
	defaultsHandler *DefaultsHandler

	corsOrigins []string
	log         logger.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithCORSOrigins sets the allowed CORS origins.
func WithCORSOrigins(origins ...string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.corsOrigins = origins
		}
	}
}

// WithLogger sets the logger used for failed requests.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		corsOrigins: []string{"*"},
		log:         logger.Get(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(deps)
	s.trainHandler = NewTrainHandler(deps, s.log)
	s.predictHandler = NewPredictHandler(deps, s.log)
	s.defaultsHandler = NewDefaultsHandler(deps, s.log)
	return s
}

// Handler returns a router with the shared middleware stack and every route.
// Callers may mount more routes on it.
func (s *Server) Handler(ctx context.Context) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	s.Register(ctx, r)
	return r
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(_ context.Context, r chi.Router) {
	r.With(MetricsMiddleware("healthz")).Get("/healthz", s.healthHandler.HandleHealth)
	r.With(MetricsMiddleware("stats")).Get("/stats", s.statsHandler.HandleStats)
	r.With(MetricsMiddleware("train")).Post("/train", s.trainHandler.HandleTrain)
	r.With(MetricsMiddleware("predict")).Post("/predict", s.predictHandler.HandlePredict)
	r.With(MetricsMiddleware("predict_partial")).Post("/predict/partial", s.predictHandler.HandlePredictPartial)
	r.With(MetricsMiddleware("defaults")).Get("/defaults", s.defaultsHandler.HandleGlobal)
	r.With(MetricsMiddleware("defaults_champion")).Get("/defaults/{champion}", s.defaultsHandler.HandleChampion)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeJSON writes v with status. A value that cannot be encoded is
// answered with a 500 instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		b, _ = json.Marshal(errorResponse{Code: "internal_error", Message: "encode response: " + err.Error()})
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(append(b, '\n'))
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// statusFor translates service errors into an HTTP status and error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, service.ErrMissingChampion):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, service.ErrUnknownChampion):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, dataset.ErrDatasetNotFound), errors.Is(err, repository.ErrModelNotFound):
		return http.StatusNotFound, "missing_input"
	case errors.Is(err, match.ErrSchemaViolation), errors.Is(err, match.ErrInvalidValue):
		return http.StatusUnprocessableEntity, "schema_violation"
	case errors.Is(err, evaluate.ErrInsufficientData):
		return http.StatusUnprocessableEntity, "insufficient_data"
	}
	return http.StatusInternalServerError, "internal_error"
}

func writeServiceError(ctx context.Context, log logger.Logger, w http.ResponseWriter, op string, err error) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error(ctx, "request failed", logger.String("op", op), logger.Error(err))
	}
	writeError(w, status, code, err)
}
