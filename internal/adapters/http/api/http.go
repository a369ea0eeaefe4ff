// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/okian/houseprice/internal/domain/limits"
	"github.com/okian/houseprice/internal/domain/model"
	"github.com/okian/houseprice/internal/domain/pricing"
)

// maxBodyBytes caps request bodies; a full batch of features fits comfortably.
const maxBodyBytes = 4 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	ReportDependencies
	LegacyDependencies
	ModelDependencies
	ValuationDependencies
}

// Server wires HTTP routes for the valuation API.
type Server struct {
	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
	predictHandler    *PredictHandler
	legacyHandler     *LegacyHandler
	modelHandler      *ModelHandler
	valuationsHandler *ValuationsHandler
}

// ServerOption configures the Server.
type ServerOption func(*serverOptions)

type serverOptions struct {
	now func() time.Time
}

// WithClock overrides the clock used to date report file names.
func WithClock(now func() time.Time) ServerOption {
	return func(o *serverOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...ServerOption) *Server {
	o := serverOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &Server{
		healthHandler:     NewHealthHandler(),
		statsHandler:      NewStatsHandler(statsProvider),
		predictHandler:    NewPredictHandler(deps, o.now),
		legacyHandler:     NewLegacyHandler(deps),
		modelHandler:      NewModelHandler(deps),
		valuationsHandler: NewValuationsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/predict", MetricsMiddleware(s.predictHandler.HandlePredict, "predict"))
	mux.HandleFunc("/report", MetricsMiddleware(s.predictHandler.HandleReport, "report"))
	mux.HandleFunc("/prever", MetricsMiddleware(s.legacyHandler.HandlePrever, "prever"))
	mux.HandleFunc("/importance", MetricsMiddleware(s.modelHandler.HandleImportance, "importance"))
	mux.HandleFunc("/model", MetricsMiddleware(s.modelHandler.HandleModel, "model"))
	mux.HandleFunc("/valuations", MetricsMiddleware(s.valuationsHandler.HandleSubmit, "valuations"))
	mux.HandleFunc("/valuations/", MetricsMiddleware(s.valuationsHandler.HandleGet, "valuation"))
}

type errorResponse struct {
	Code       string             `json:"code"`
	Message    string             `json:"message"`
	Violations []limits.Violation `json:"violations,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	resp := errorResponse{Code: code, Message: msg}
	var vs limits.Violations
	if errors.As(err, &vs) {
		resp.Violations = vs
	}
	writeJSON(w, status, resp)
}

// writeKind maps an error built with NewKind or WrapKind to its status and code.
func writeKind(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrOutOfRange):
		writeError(w, http.StatusUnprocessableEntity, "out_of_range", err)
	case errors.Is(err, ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid_input", err)
	case errors.Is(err, ErrBadRequest):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, ErrBackpressure):
		writeError(w, http.StatusTooManyRequests, "backpressure", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

// classify assigns an API kind to a domain error.
func classify(op string, err error) error {
	switch {
	case errors.Is(err, limits.ErrOutOfRange):
		return WrapKind(op, ErrOutOfRange, err)
	case errors.Is(err, pricing.ErrInvalidInput):
		return WrapKind(op, ErrInvalidInput, err)
	case errors.Is(err, model.ErrJobNotFound):
		return WrapKind(op, ErrNotFound, err)
	case errors.Is(err, model.ErrBackpressure):
		return WrapKind(op, ErrBackpressure, err)
	case errors.Is(err, model.ErrEmptyBatch), errors.Is(err, model.ErrBatchTooLarge):
		return WrapKind(op, ErrBadRequest, err)
	default:
		return Wrap(op, err)
	}
}

// decodeJSON reads one JSON value from the request body. Type mismatches
// on a field are reported as invalid input naming that field.
func decodeJSON(op string, w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return WrapKind(op, ErrInvalidInput, fmt.Errorf("%s: expected a number, got %s", typeErr.Field, typeErr.Value))
		}
		return WrapKind(op, ErrBadRequest, err)
	}
	return nil
}
