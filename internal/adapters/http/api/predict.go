package api

import (
	"context"
	"net/http"
	"time"

	"github.com/okian/houseprice/internal/domain/pricing"
	"github.com/okian/houseprice/internal/domain/types"
)

// PredictDependencies defines what POST /predict needs.
type PredictDependencies interface {
	Predict(ctx context.Context, f pricing.Features) (pricing.Prediction, error)
}

// ReportDependencies defines what POST /report needs.
type ReportDependencies interface {
	PredictDependencies
	Report(ctx context.Context, p pricing.Prediction) string
}

// PredictHandler serves predictions and their text reports.
type PredictHandler struct {
	deps ReportDependencies
	now  func() time.Time
}

// NewPredictHandler creates a new predict handler.
func NewPredictHandler(deps ReportDependencies, now func() time.Time) *PredictHandler {
	return &PredictHandler{deps: deps, now: now}
}

// HandlePredict handles POST /predict requests.
func (h *PredictHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	const op = "api.predict"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	p, err := h.predict(op, w, r)
	if err != nil {
		writeKind(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.NewPrediction(p))
}

// HandleReport handles POST /report requests.
func (h *PredictHandler) HandleReport(w http.ResponseWriter, r *http.Request) {
	const op = "api.report"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	p, err := h.predict(op, w, r)
	if err != nil {
		writeKind(w, err)
		return
	}
	report := h.deps.Report(r.Context(), p)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+pricing.ReportFileName(h.now())+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(report))
}

func (h *PredictHandler) predict(op string, w http.ResponseWriter, r *http.Request) (pricing.Prediction, error) {
	var f pricing.Features
	if err := decodeJSON(op, w, r, &f); err != nil {
		return pricing.Prediction{}, err
	}
	p, err := h.deps.Predict(r.Context(), f)
	if err != nil {
		return pricing.Prediction{}, classify(op, err)
	}
	return p, nil
}
