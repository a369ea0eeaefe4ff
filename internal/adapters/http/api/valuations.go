package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/okian/houseprice/internal/domain/model"
	"github.com/okian/houseprice/internal/domain/pricing"
	"github.com/okian/houseprice/internal/domain/types"
)

// ValuationDependencies defines what the batch routes need.
type ValuationDependencies interface {
	SubmitValuation(ctx context.Context, requestID string, items []pricing.Features) (jobID string, duplicate bool, err error)
	Valuation(ctx context.Context, jobID string) (model.Job, error)
}

// ValuationsHandler accepts batches and reports their progress.
type ValuationsHandler struct {
	deps ValuationDependencies
}

// NewValuationsHandler creates a new valuations handler.
func NewValuationsHandler(deps ValuationDependencies) *ValuationsHandler {
	return &ValuationsHandler{deps: deps}
}

// HandleSubmit handles POST /valuations requests.
func (h *ValuationsHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit_valuation"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req types.ValuationRequest
	if err := decodeJSON(op, w, r, &req); err != nil {
		writeKind(w, err)
		return
	}
	req.RequestID = strings.TrimSpace(req.RequestID)
	if strings.Contains(req.RequestID, "/") {
		writeKind(w, NewKind(op, ErrBadRequest))
		return
	}

	jobID, dup, err := h.deps.SubmitValuation(r.Context(), req.RequestID, req.Items)
	if err != nil {
		writeKind(w, classify(op, err))
		return
	}
	if dup {
		writeJSON(w, http.StatusOK, types.ValuationAck{Status: "duplicate", JobID: jobID, Duplicate: true})
		return
	}
	w.Header().Set("Location", "/valuations/"+jobID)
	writeJSON(w, http.StatusAccepted, types.ValuationAck{Status: "accepted", JobID: jobID})
}

// HandleGet handles GET /valuations/{id} requests.
func (h *ValuationsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_valuation"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/valuations/")
	if id == "" || strings.Contains(id, "/") {
		writeKind(w, NewKind(op, ErrBadRequest))
		return
	}
	job, err := h.deps.Valuation(r.Context(), id)
	if err != nil {
		writeKind(w, classify(op, err))
		return
	}
	writeJSON(w, http.StatusOK, types.NewValuation(job))
}
